package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveRequest("GET", "task", 200, 50*time.Millisecond)
	c.ObserveRequest("GET", "task", 200, 30*time.Millisecond)
	c.ObserveRequest("POST", "task", 429, 10*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.requestsTotal.WithLabelValues("GET", "task", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "task", "429")))
}

func TestCollector_ObserveDownload(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveDownload(true)
	c.ObserveDownload(false)
	c.ObserveDownload(false)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.downloadsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.downloadsTotal.WithLabelValues("failure")))
}

func TestCollector_NilReceiverIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveRequest("GET", "task", 200, time.Millisecond)
	c.ObserveDownload(true)
	c.ObserveWatchMessage()
}
