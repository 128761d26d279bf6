package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidhire",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liquidhire",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "liquidhire",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "liquidhire",
		Name:      "interview_active_sessions",
		Help:      "Live interview sessions currently attached to this instance",
	})

	interviewTurns = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "liquidhire",
		Name:      "interview_turns_total",
		Help:      "Candidate answers submitted across all sessions",
	})

	scoringFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "liquidhire",
		Name:      "interview_scoring_failures_total",
		Help:      "End-of-interview scoring calls that fell back to an unscored record",
	})

	proctorFlags = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidhire",
		Name:      "proctor_flags_total",
		Help:      "Proctoring findings by reason",
	}, []string{"reason"})

	providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liquidhire",
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of LLM provider calls in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
	}, []string{"provider", "outcome"})
)

// SessionStarted / SessionClosed track the live session gauge.
func SessionStarted() { activeSessions.Inc() }
func SessionClosed()  { activeSessions.Dec() }

// TurnSubmitted counts one candidate answer round-trip.
func TurnSubmitted() { interviewTurns.Inc() }

// ScoringFailed counts a scoring call that degraded to the fallback result.
func ScoringFailed() { scoringFailures.Inc() }

// ProctorFlagged counts one proctoring finding.
func ProctorFlagged(reason string) { proctorFlags.WithLabelValues(reason).Inc() }

// ObserveProviderCall records one LLM call's latency and outcome.
func ObserveProviderCall(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerLatency.WithLabelValues(provider, outcome).Observe(time.Since(start).Seconds())
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack must pass through for the live-session websocket upgrade.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.Inc()
			defer httpInFlight.Dec()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"method": r.Method,
				"path":   r.URL.Path,
				"status": strconv.Itoa(rec.status),
			}
			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
