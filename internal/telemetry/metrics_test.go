package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/tabdeck/pkg/reactive"
	"github.com/vango-dev/tabdeck/pkg/reconcile"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestMetricsObservesRuntime(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	rt := reactive.NewRuntime(reactive.WithObserver(m))

	count := reactive.NewSignal(rt, 0)
	rt.CreateEffect(func() reactive.Cleanup {
		count.Get()
		return nil
	})
	count.Set(1)
	count.Set(2)

	if got := metricCounterValue(t, m.signalWrites); got != 2 {
		t.Errorf("signal_writes_total = %v, want 2", got)
	}
	// One initial run plus one per write.
	if got := metricCounterValue(t, m.effectRuns); got != 3 {
		t.Errorf("effect_runs_total = %v, want 3", got)
	}
	if got := metricHistogramCount(t, m.effectDuration); got != 3 {
		t.Errorf("effect_duration_seconds count = %d, want 3", got)
	}
}

func TestMetricsObservesReconciler(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))
	r := reconcile.New(
		func(n int) int { return n },
		func(n int) int { return n * 10 },
		reconcile.WithName("numbers"),
		reconcile.WithObserver(m),
	)

	if _, err := r.Reconcile([]int{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Reconcile([]int{3, 1}); err != nil {
		t.Fatal(err)
	}

	if got := metricCounterValue(t, m.reconcilePasses.WithLabelValues("numbers")); got != 2 {
		t.Errorf("passes = %v, want 2", got)
	}
	want := map[string]float64{"create": 3, "reuse": 2, "dispose": 1}
	for op, n := range want {
		if got := metricCounterValue(t, m.reconcileViews.WithLabelValues("numbers", op)); got != n {
			t.Errorf("views{op=%s} = %v, want %v", op, got, n)
		}
	}
}

func TestMetricsRecorders(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	m.RecordRequest("/api/state", "200", 5*time.Millisecond)
	m.RecordRequest("", "404", time.Millisecond)
	m.RecordSubscribe()
	m.RecordSubscribe()
	m.RecordUnsubscribe()
	m.RecordDroppedSnapshot()
	m.RecordReload()

	if got := metricCounterValue(t, m.requests.WithLabelValues("/api/state", "200")); got != 1 {
		t.Errorf("requests{/api/state,200} = %v", got)
	}
	if got := metricCounterValue(t, m.requests.WithLabelValues("unmatched", "404")); got != 1 {
		t.Errorf("requests{unmatched,404} = %v", got)
	}
	if got := metricGaugeValue(t, m.subscribers); got != 1 {
		t.Errorf("subscribers = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.droppedSnapshots); got != 1 {
		t.Errorf("snapshots_dropped_total = %v", got)
	}
	if got := metricCounterValue(t, m.reloads); got != 1 {
		t.Errorf("documents_reloaded_total = %v", got)
	}
}

func TestNewMetricsRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("deck"))
	m.RecordReload()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "deck_documents_reloaded_total" {
			found = true
		}
	}
	if !found {
		t.Error("deck_documents_reloaded_total not registered")
	}
}

func TestStartSpan(t *testing.T) {
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02},
		SpanID:     trace.SpanID{0x03},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), parent)

	ctx, span := StartSpan(ctx, "open")
	defer span.End()

	if !trace.SpanFromContext(ctx).SpanContext().Equal(span.SpanContext()) {
		t.Error("span not stored in the returned context")
	}
	if got := span.SpanContext().TraceID(); got != parent.TraceID() {
		t.Errorf("TraceID = %s, want the parent's %s", got, parent.TraceID())
	}
}

type recordingSpan struct {
	trace.Span
	errs   []error
	status codes.Code
	desc   string
	ended  bool
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.errs = append(s.errs, err)
}

func (s *recordingSpan) SetStatus(code codes.Code, desc string) {
	s.status, s.desc = code, desc
}

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func TestEndSpan(t *testing.T) {
	boom := errors.New("boom")
	failed := &recordingSpan{}
	EndSpan(failed, boom)
	if len(failed.errs) != 1 || failed.errs[0] != boom {
		t.Errorf("recorded errors = %v", failed.errs)
	}
	if failed.status != codes.Error || failed.desc != "boom" || !failed.ended {
		t.Errorf("failed span = %+v", failed)
	}

	ok := &recordingSpan{}
	EndSpan(ok, nil)
	if len(ok.errs) != 0 || ok.status != codes.Ok || !ok.ended {
		t.Errorf("ok span = %+v", ok)
	}
}
