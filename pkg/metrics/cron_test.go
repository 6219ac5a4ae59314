package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsCountsRunsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("streak-reset", 250*time.Millisecond)
	m.IncSuccess("streak-reset")
	m.IncSuccess("streak-reset")
	m.IncFailure("streak-reset")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got := counterValue(t, families, "ecocampus_cron_job_runs_total", map[string]string{"job": "streak-reset", "result": "success"}); got != 2 {
		t.Fatalf("expected 2 successful runs, got %f", got)
	}
	if got := counterValue(t, families, "ecocampus_cron_job_runs_total", map[string]string{"job": "streak-reset", "result": "failure"}); got != 1 {
		t.Fatalf("expected 1 failed run, got %f", got)
	}
	if got := histogramSum(t, families, "ecocampus_cron_job_duration_seconds", "streak-reset"); got <= 0 {
		t.Fatalf("expected positive duration sum, got %f", got)
	}
}

func TestCronJobMetricsLabelsEmptyJobUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got := counterValue(t, families, "ecocampus_cron_job_runs_total", map[string]string{"job": "unknown", "result": "success"}); got != 1 {
		t.Fatalf("expected unknown job counted once, got %f", got)
	}
}

func TestCronJobMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewCronJobMetrics(nil)
	m.ObserveDuration("streak-reset", time.Second)
	m.IncSuccess("streak-reset")
	m.IncFailure("streak-reset")
}

func counterValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelsMatch(metric.GetLabel(), labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("counter %q with labels %v not found", name, labels)
	return 0
}

func histogramSum(t *testing.T, families []*dto.MetricFamily, name, job string) float64 {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if labelsMatch(metric.GetLabel(), map[string]string{"job": job}) {
				return metric.GetHistogram().GetSampleSum()
			}
		}
	}
	t.Fatalf("histogram %q for job %q not found", name, job)
	return 0
}

func labelsMatch(pairs []*dto.LabelPair, want map[string]string) bool {
	got := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		got[pair.GetName()] = pair.GetValue()
	}
	for name, value := range want {
		if got[name] != value {
			return false
		}
	}
	return true
}
