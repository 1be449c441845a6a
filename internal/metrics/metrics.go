// Package metrics provides Prometheus instrumentation for the simulator.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PriceTicks counts routine price evolution ticks.
	PriceTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionsim_price_ticks_total",
		Help: "Total routine price ticks applied",
	})

	// NewsShocks counts applied news shocks by category and polarity.
	NewsShocks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_news_shocks_total",
		Help: "Total news shocks applied",
	}, []string{"category", "polarity"})

	// EmptyEventTicks counts event ticks where no template matched the polarity.
	EmptyEventTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionsim_empty_event_ticks_total",
		Help: "Event ticks that produced no news",
	})

	// OptionsBought counts purchased option units by asset.
	OptionsBought = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_options_bought_total",
		Help: "Option units purchased",
	}, []string{"asset"})

	// PremiumPaid tracks cumulative premium paid.
	PremiumPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "optionsim_premium_paid_total",
		Help: "Cumulative premium paid in currency units",
	})

	// Exercises counts committed exercise decisions by outcome.
	Exercises = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_exercises_total",
		Help: "Exercise commits by outcome",
	}, []string{"outcome"})

	// Rejections counts rejected commands by reason.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_rejections_total",
		Help: "Commands rejected by the ledger or the phase controller",
	}, []string{"reason"})

	// Phase is 1 for the current phase and 0 for the others.
	Phase = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optionsim_phase",
		Help: "Current game phase",
	}, []string{"phase"})

	// Capital tracks the player's cash balance.
	Capital = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "optionsim_capital",
		Help: "Player capital",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "optionsim_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optionsim_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optionsim_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// SetPhase marks name as the current phase.
func SetPhase(name string, all []string) {
	for _, p := range all {
		v := 0.0
		if p == name {
			v = 1
		}
		Phase.WithLabelValues(p).Set(v)
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Route pattern keeps the label set small.
		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
