package collector

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Watch repeats a collection round on a fixed interval until the context
// is canceled. A round failure is logged and the loop keeps going; the
// next round may succeed once the collector recovers. When metricsAddr
// is non-empty a /metrics endpoint is served for the duration.
func Watch(ctx context.Context, interval time.Duration, metricsAddr string, round func(context.Context) error) error {
	var server *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		server = &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("[collect] metrics server error: %v", err)
			}
		}()
		defer server.Close()
	}

	if err := round(ctx); err != nil {
		log.Printf("[collect] round failed: %v", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := round(ctx); err != nil {
				log.Printf("[collect] round failed: %v", err)
			}
		}
	}
}
