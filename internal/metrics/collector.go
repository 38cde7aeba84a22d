// Package metrics provides the optional Prometheus instrumentation of the
// client. This package is internal; consumers enable it through
// tripo.WithMetrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records API call and download metrics. All methods are safe on
// a nil receiver so call sites never need a guard.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	downloadsTotal  *prometheus.CounterVec
	watchMessages   prometheus.Counter
}

// NewCollector registers the SDK metrics on reg under the tripo namespace.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tripo",
				Name:      "api_requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "tripo",
				Name:      "api_request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		downloadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "tripo",
				Name:      "downloads_total",
				Help:      "Total number of artifact downloads",
			},
			[]string{"result"},
		),
		watchMessages: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "tripo",
				Name:      "watch_messages_total",
				Help:      "Total number of task updates received over WebSocket",
			},
		),
	}
}

// ObserveRequest records one API round trip. status 0 means the request
// never produced an HTTP response.
func (c *Collector) ObserveRequest(method, endpoint string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// ObserveDownload records one artifact download outcome.
func (c *Collector) ObserveDownload(ok bool) {
	if c == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	c.downloadsTotal.WithLabelValues(result).Inc()
}

// ObserveWatchMessage records one update received on a watch stream.
func (c *Collector) ObserveWatchMessage() {
	if c == nil {
		return
	}
	c.watchMessages.Inc()
}
