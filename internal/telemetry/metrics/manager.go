package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests        *prometheus.CounterVec
	CounterSubmissions     *prometheus.CounterVec
	CounterCancelledLoads  prometheus.Counter
	CounterStaleResponses  prometheus.Counter
	CounterReportedErrors  prometheus.Counter
	CounterViewInvalidated *prometheus.CounterVec

	// gauges
	GaugeInflightRequests prometheus.Gauge
	GaugeModalOpen        prometheus.Gauge

	// histograms
	HistogramRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("gymlog", "test_client", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("gymlog", "test_client", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backend_request",
		Help:      "The total number of requests sent to the workout backend",
	}, []string{"endpoint", "status"})
	counterSubmissions := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "form_submission",
		Help:      "The total number of intercepted form submissions",
	}, []string{"form", "result"})
	counterCancelledLoads := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "modal_load_cancelled",
		Help:      "The total number of in-flight modal loads cancelled by a newer load or a close",
	})
	counterStaleResponses := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "modal_stale_response",
		Help:      "The total number of late responses dropped instead of overwriting newer modal content",
	})
	counterReportedErrors := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "reported_errors",
		Help:      "The total number of errors routed to the error surface",
	})
	counterViewInvalidated := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "view_invalidated",
		Help:      "The total number of view refreshes after a successful mutation",
	}, []string{"view"})

	gaugeInflightRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "inflight_requests",
		Help:      "Current number of backend requests in flight",
	})
	gaugeModalOpen := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "modal_open",
		Help:      "Shows whether the shared modal is open",
	})

	histogramRequestDuration := factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backend_request_duration_seconds",
		Help:      "Histogram of backend response time in seconds",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"endpoint", "method", "status_code"})

	return &Manager{
		CounterRequests:          counterRequests,
		CounterSubmissions:       counterSubmissions,
		CounterCancelledLoads:    counterCancelledLoads,
		CounterStaleResponses:    counterStaleResponses,
		CounterReportedErrors:    counterReportedErrors,
		CounterViewInvalidated:   counterViewInvalidated,
		GaugeInflightRequests:    gaugeInflightRequests,
		GaugeModalOpen:           gaugeModalOpen,
		HistogramRequestDuration: histogramRequestDuration,
	}
}
