package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewHandler returns a mux exposing the gatherer on /metrics plus any extra
// routes keyed by path.
func NewHandler(g prometheus.Gatherer, routes map[string]http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	for path, h := range routes {
		mux.Handle(path, h)
	}
	return mux
}

// StartPromServer serves the default Prometheus registry and routes on addr
// until ctx is canceled.
func StartPromServer(ctx context.Context, addr string, routes map[string]http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: NewHandler(prometheus.DefaultGatherer, routes), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
