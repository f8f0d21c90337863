package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func sampleCount(t *testing.T, m prometheus.Metric) uint64 {
	t.Helper()
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("failed to read metric: %v", err)
	}
	return pb.GetHistogram().GetSampleCount()
}

func TestRecordToolCall(t *testing.T) {
	counter := toolCallsTotal.WithLabelValues("get_recent_labs", "ok")
	before := testutil.ToFloat64(counter)

	RecordToolCall("get_recent_labs", "ok")

	if got := testutil.ToFloat64(counter); got != before+1 {
		t.Errorf("expected counter to go from %v to %v, got %v", before, before+1, got)
	}
}

func TestObserveChatRounds(t *testing.T) {
	before := sampleCount(t, chatRoundsTotal)

	ObserveChatRounds(3)

	if got := sampleCount(t, chatRoundsTotal); got != before+1 {
		t.Errorf("expected %d observations, got %d", before+1, got)
	}
}

func TestObserveProviderCall(t *testing.T) {
	child := providerLatency.WithLabelValues("chat").(prometheus.Metric)
	before := sampleCount(t, child)

	ObserveProviderCall("chat", 250*time.Millisecond)

	if got := sampleCount(t, child); got != before+1 {
		t.Errorf("expected %d observations, got %d", before+1, got)
	}
}

func TestObservePipelineStage(t *testing.T) {
	child := pipelineStageDuration.WithLabelValues("parse_document", "ok").(prometheus.Metric)
	before := sampleCount(t, child)

	ObservePipelineStage("parse_document", "ok", time.Second)

	if got := sampleCount(t, child); got != before+1 {
		t.Errorf("expected %d observations, got %d", before+1, got)
	}
}
