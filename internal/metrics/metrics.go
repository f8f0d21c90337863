package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var pipelineStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "pipeline_stage_duration_seconds",
	Help:    "Time spent in each document pipeline stage.",
	Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300},
}, []string{"stage", "outcome"})

var providerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "provider_latency_seconds",
	Help:    "Latency of LLM provider calls.",
	Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30, 60},
}, []string{"operation"})

var chatRoundsTotal = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "chat_tool_rounds",
	Help:    "Tool calling rounds used per chat turn.",
	Buckets: []float64{1, 2, 3, 4, 5},
})

var toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "tool_calls_total",
	Help: "Tool invocations labelled by tool name and outcome",
}, []string{"tool", "outcome"})

var queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "task_queue_depth",
	Help: "Number of pipeline tasks waiting to be processed",
})

var documentsUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "documents_uploaded_total",
	Help: "Total number of documents accepted for processing",
})

func ObservePipelineStage(stage, outcome string, elapsed time.Duration) {
	pipelineStageDuration.WithLabelValues(stage, outcome).Observe(elapsed.Seconds())
}

func ObserveProviderCall(operation string, elapsed time.Duration) {
	providerLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func ObserveChatRounds(rounds int) {
	chatRoundsTotal.Observe(float64(rounds))
}

func RecordToolCall(tool, outcome string) {
	toolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

func SetQueueDepth(pending int64) {
	queueDepth.Set(float64(pending))
}

func IncrementDocumentsUploaded() {
	documentsUploadedTotal.Inc()
}
