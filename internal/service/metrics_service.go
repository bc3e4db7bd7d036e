package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// lifecycle sweep.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	sweepDuration   prometheus.Observer
	sweepRuns       *prometheus.CounterVec
	sweepCompleted  prometheus.Counter
	sweepTimedOut   prometheus.Counter
	invitationsSent prometheus.Counter
	acceptOutcomes  *prometheus.CounterVec
}

// NewMetricsService registers the collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "lifecycle_sweep_duration_seconds",
		Help:    "Duration of lifecycle sweep runs",
		Buckets: prometheus.DefBuckets,
	})

	sweepRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_sweep_runs_total",
		Help: "Total lifecycle sweep runs by outcome",
	}, []string{"outcome"})

	sweepCompleted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_sweep_completed_total",
		Help: "Requests moved to COMPLETED by the sweep",
	})

	sweepTimedOut := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "lifecycle_sweep_timed_out_total",
		Help: "Requests moved to TIMED_OUT by the sweep",
	})

	invitationsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invitations_sent_total",
		Help: "Invitation tokens issued to scribes",
	})

	acceptOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invitation_accepts_total",
		Help: "Invitation accept attempts by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sweepDuration, sweepRuns,
		sweepCompleted, sweepTimedOut, invitationsSent, acceptOutcomes, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		sweepDuration:   sweepDuration,
		sweepRuns:       sweepRuns,
		sweepCompleted:  sweepCompleted,
		sweepTimedOut:   sweepTimedOut,
		invitationsSent: invitationsSent,
		acceptOutcomes:  acceptOutcomes,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSweep records one sweep run and the rows it transitioned.
func (m *MetricsService) ObserveSweep(completed, timedOut int64, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(duration.Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.sweepRuns.WithLabelValues(outcome).Inc()
	m.sweepCompleted.Add(float64(completed))
	m.sweepTimedOut.Add(float64(timedOut))
}

// ObserveInvitations counts issued invitation tokens.
func (m *MetricsService) ObserveInvitations(count int) {
	if m == nil {
		return
	}
	m.invitationsSent.Add(float64(count))
}

// ObserveAccept counts an accept attempt. outcome is "won", "lost" or
// "rejected".
func (m *MetricsService) ObserveAccept(outcome string) {
	if m == nil {
		return
	}
	m.acceptOutcomes.WithLabelValues(outcome).Inc()
}
