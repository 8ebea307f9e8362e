package main

import (
	"flag"
	"log"

	"github.com/rmax-ai/resilord/pkg/mcp"
)

func main() {
	var resultsDir string
	flag.StringVar(&resultsDir, "results", "results", "Directory containing simulation result artifacts")
	flag.Parse()

	s := mcp.NewServer(resultsDir)
	if err := s.Serve(); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
