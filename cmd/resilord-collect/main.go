package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmax-ai/resilord/pkg/collector"
)

func main() {
	var (
		jaegerURL    string
		targetURL    string
		outFile      string
		wrkBin       string
		luaScript    string
		threads      int
		connections  int
		rate         int
		duration     time.Duration
		cooldown     time.Duration
		lookback     time.Duration
		timeout      time.Duration
		skipWorkload bool
		watch        time.Duration
		metricsAddr  string
	)

	flag.StringVar(&jaegerURL, "jaeger", "http://localhost:16686", "Base URL of the Jaeger query service")
	flag.StringVar(&targetURL, "target", "http://localhost:8080/index.html", "URL the workload generator drives")
	flag.StringVar(&outFile, "out", "dependency_graph.json", "Output path for the dependency graph snapshot")
	flag.StringVar(&wrkBin, "wrk-bin", "./wrk", "Path to the wrk2 binary")
	flag.StringVar(&luaScript, "script", "./wrk2/scripts/social-network/compose-post.lua", "Lua script passed to wrk2")
	flag.IntVar(&threads, "threads", 2, "wrk2 thread count")
	flag.IntVar(&connections, "connections", 32, "wrk2 connection count")
	flag.IntVar(&rate, "rate", 300, "wrk2 request rate per second")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Workload duration")
	flag.DurationVar(&cooldown, "cooldown", 15*time.Second, "Wait after the workload so traces land in the collector")
	flag.DurationVar(&lookback, "lookback", time.Hour, "Dependency query lookback window")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "HTTP timeout for collector requests")
	flag.BoolVar(&skipWorkload, "skip-workload", false, "Skip the wrk2 run and only fetch dependencies")
	flag.DurationVar(&watch, "watch", 0, "Repeat collection on this interval (0 runs once)")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while watching")
	flag.Parse()

	round := func(ctx context.Context) error {
		if !skipWorkload {
			cfg := collector.WorkloadConfig{
				WrkBin:      wrkBin,
				LuaScript:   luaScript,
				TargetURL:   targetURL,
				Threads:     threads,
				Connections: connections,
				Rate:        rate,
				Duration:    duration,
			}
			log.Printf("[collect] running workload against %s for %s", targetURL, duration)
			if err := collector.RunWorkload(ctx, cfg); err != nil {
				return err
			}
			log.Printf("[collect] cooling down for %s", cooldown)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cooldown):
			}
		}

		payload, err := collector.FetchDependencies(ctx, jaegerURL, lookback, timeout)
		if err != nil {
			return err
		}
		if err := collector.SaveDependencies(payload, outFile); err != nil {
			return err
		}
		log.Printf("[collect] dependency graph written to %s", outFile)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch > 0 {
		if err := collector.Watch(ctx, watch, metricsAddr, round); err != nil && err != context.Canceled {
			log.Fatalf("Watch loop stopped: %v", err)
		}
		return
	}

	if err := round(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Collection failed: %v\n", err)
		os.Exit(1)
	}
}
