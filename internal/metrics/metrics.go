package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcome labels
const (
	OutcomeKnowledgeBase = "knowledge_base"
	OutcomeFallback      = "fallback"
	OutcomeError         = "error"
)

var (
	// resolutionsTotal counts resolved queries by outcome.
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetqa",
		Subsystem: "resolver",
		Name:      "resolutions_total",
		Help:      "Resolved queries by outcome",
	}, []string{"outcome"})

	// fallbackLatencySeconds measures fallback calls by provider.
	fallbackLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sheetqa",
		Subsystem: "fallback",
		Name:      "latency_seconds",
		Help:      "Fallback call latency",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"provider"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetqa",
		Subsystem: "knowledge",
		Name:      "refreshes_total",
		Help:      "Knowledge base loads by source and result",
	}, []string{"source", "result"})

	knowledgeFacts = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sheetqa",
		Subsystem: "knowledge",
		Name:      "facts",
		Help:      "Facts in the current knowledge base snapshot",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sheetqa",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method and status class",
	}, []string{"method", "class"})
)

func RecordResolution(outcome string) {
	resolutionsTotal.WithLabelValues(outcome).Inc()
}

func RecordFallbackLatency(provider string, d time.Duration) {
	fallbackLatencySeconds.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordRefresh counts a load attempt; size is only applied on success.
func RecordRefresh(source string, err error, size int) {
	if err != nil {
		refreshesTotal.WithLabelValues(source, "error").Inc()
		return
	}
	refreshesTotal.WithLabelValues(source, "ok").Inc()
	knowledgeFacts.Set(float64(size))
}

func RecordHTTPRequest(method string, status int) {
	class := "2xx"
	switch {
	case status >= 500:
		class = "5xx"
	case status >= 400:
		class = "4xx"
	case status >= 300:
		class = "3xx"
	}
	httpRequestsTotal.WithLabelValues(method, class).Inc()
}
