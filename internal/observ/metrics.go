package observ

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry holds every phphint metric. It is separate from the default
// registry so embedding programs decide what they expose.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	RuleDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "phphint_rule_seconds",
		Help:    "Time spent running one rule over one file.",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"rule", "kind"})

	FindingsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "phphint_findings_total",
		Help: "Findings reported by a rule after suppressions.",
	}, []string{"rule", "severity"})

	SuppressedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "phphint_suppressed_total",
		Help: "Findings dropped by phphint-ignore comments.",
	}, []string{"rule"})

	RulePanicsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "phphint_rule_panics_total",
		Help: "Rule invocations that panicked and were isolated.",
	}, []string{"rule"})

	CancelledPassesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "phphint_cancelled_passes_total",
		Help: "Analysis passes abandoned because their context was cancelled.",
	}, []string{"kind"})

	FilesTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "phphint_files_total",
		Help: "Files analysed, by outcome.",
	}, []string{"outcome"})

	WatcherEventsTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "phphint_watcher_events_total",
		Help: "File system events received by the watcher.",
	})
)

// Handler serves Registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string, log zerolog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server starting")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
