// Package metrics exposes timer and automation counters for Prometheus.
package metrics

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// sessionsArmed tracks how many countdowns were started
	sessionsArmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotkeytimer_sessions_armed_total",
		Help: "The total number of countdown sessions armed",
	})

	sessionsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotkeytimer_sessions_cancelled_total",
		Help: "The total number of countdown sessions cancelled before expiry",
	})

	expiries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotkeytimer_expiries_total",
		Help: "The total number of countdowns that reached zero",
	})

	// automationTargets tracks per-window automation results by outcome
	automationTargets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotkeytimer_automation_targets_total",
		Help: "The total number of windows processed by automation, by outcome",
	}, []string{"outcome"})

	countdownSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hotkeytimer_countdown_seconds",
		Help:    "The actual (jittered) duration of armed countdowns",
		Buckets: prometheus.ExponentialBuckets(15, 2, 8),
	})
)

// SessionArmed records a new countdown of the given length.
func SessionArmed(seconds float64) {
	sessionsArmed.Inc()
	countdownSeconds.Observe(seconds)
}

// SessionCancelled records a countdown stopped by the user.
func SessionCancelled() { sessionsCancelled.Inc() }

// Expired records a countdown reaching zero.
func Expired() { expiries.Inc() }

// TargetProcessed records one automation result.
func TargetProcessed(outcome string) {
	automationTargets.WithLabelValues(outcome).Inc()
}

// Serve starts a separate HTTP server for metrics. Anything registered on the default
// mux (build info, licenses) is served alongside. An empty addr disables it.
func Serve(addr string, lg *log.Logger) {
	if addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", http.DefaultServeMux)

	go func() {
		lg.Info("starting metrics server", "addr", addr, "path", "/metrics")
		if err := http.ListenAndServe(addr, mux); err != nil {
			lg.Error("metrics server failed", "err", err)
		}
	}()
}
