package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/rmax-ai/resilord/pkg/blob"
	"github.com/rmax-ai/resilord/pkg/reports"
)

func main() {
	var (
		resultsDir  string
		summaryFile string
		htmlFile    string
		csvFile     string
		title       string
	)

	flag.StringVar(&resultsDir, "results", "results", "Directory containing simulation result artifacts")
	flag.StringVar(&summaryFile, "summary", "", "Optional gate evaluation summary to embed")
	flag.StringVar(&htmlFile, "html", "resilience_report.html", "Output path for the HTML report")
	flag.StringVar(&csvFile, "csv", "", "Optional output path for a CSV export of the table")
	flag.StringVar(&title, "title", "", "Report title (default: Resilience report)")
	flag.Parse()

	ctx := context.Background()
	resultStore := blob.NewLocalStore(resultsDir)

	htmlReport := reports.NewHTMLReport(resultStore, summaryFile, title)
	if err := writeReport(ctx, htmlReport, htmlFile); err != nil {
		log.Fatalf("Failed to generate HTML report: %v", err)
	}
	fmt.Printf("[report] HTML report written to %s\n", htmlFile)

	if csvFile != "" {
		if err := writeReport(ctx, reports.NewCSVReport(resultStore), csvFile); err != nil {
			log.Fatalf("Failed to generate CSV export: %v", err)
		}
		fmt.Printf("[report] CSV export written to %s\n", csvFile)
	}
}

func writeReport(ctx context.Context, gen reports.Generator, path string) error {
	reader, err := gen.Generate(ctx)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := io.Copy(file, reader); err != nil {
		return err
	}
	return file.Close()
}
