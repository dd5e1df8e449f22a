package observability

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/apptemplate/component"
	"github.com/kbukum/apptemplate/pipeline"
)

// newTestTelemetry wires in-memory exporters and restores the global
// providers when the test ends.
func newTestTelemetry(t *testing.T) (*Telemetry, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	})

	spans := tracetest.NewInMemoryExporter()
	reader := sdkmetric.NewManualReader()
	tel := New(Config{Enabled: true}, Identity{Service: "apptemplate", Version: "0.1.0", Environment: "test"})
	tel.newSpanExporter = func(context.Context, Config) (sdktrace.SpanExporter, error) { return spans, nil }
	tel.newMetricReader = func(context.Context, Config) (sdkmetric.Reader, error) { return reader, nil }
	return tel, spans, reader
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.MetricInterval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should not be validated, got %v", err)
	}

	cfg.Enabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := Config{Enabled: true, Endpoint: "no-port", SampleRate: 2}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"endpoint", "sample_rate"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected %q in %q", field, err.Error())
		}
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{0.5, "ParentBased"},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprint(tc.rate), func(t *testing.T) {
			if got := sampler(tc.rate).Description(); !strings.HasPrefix(got, tc.want) {
				t.Errorf("expected %s sampler, got %s", tc.want, got)
			}
		})
	}
}

func TestLifecycle(t *testing.T) {
	tel, _, _ := newTestTelemetry(t)
	ctx := context.Background()

	if h := tel.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %+v", h)
	}
	if err := tel.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if h := tel.Health(ctx); !h.Healthy() {
		t.Errorf("expected healthy after start, got %+v", h)
	}
	if err := tel.Stop(ctx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if err := tel.Stop(ctx); err != nil {
		t.Errorf("second Stop should be a no-op, got %v", err)
	}
	if d := tel.Describe(); d.Details != "localhost:4318" {
		t.Errorf("unexpected description %+v", d)
	}
}

func TestStartExporterError(t *testing.T) {
	tel, _, _ := newTestTelemetry(t)
	tel.newMetricReader = func(context.Context, Config) (sdkmetric.Reader, error) {
		return nil, fmt.Errorf("bad endpoint")
	}
	if err := tel.Start(context.Background()); err == nil || !strings.Contains(err.Error(), "metric reader") {
		t.Errorf("expected metric reader error, got %v", err)
	}
}

func TestMapConcurrentIsExported(t *testing.T) {
	tel, spans, reader := newTestTelemetry(t)
	ctx := context.Background()
	if err := tel.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer tel.Stop(ctx)

	source := pipeline.FromSlice([]int{1, 2, 3}).Iter(ctx)
	out, err := pipeline.MapConcurrent(ctx, source, func(_ context.Context, n int) ([]int, error) {
		return []int{n, n}, nil
	}, 2)
	if err != nil || len(out) != 6 {
		t.Fatalf("unexpected result %v, %v", out, err)
	}

	if err := tel.tp.ForceFlush(ctx); err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, s := range spans.GetSpans() {
		if s.Name != "pipeline.MapConcurrent" {
			continue
		}
		found = true
		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range s.Attributes {
			attrs[kv.Key] = kv.Value
		}
		if attrs["pipeline.concurrency"].AsInt64() != 2 || attrs["pipeline.items_consumed"].AsInt64() != 3 {
			t.Errorf("unexpected span attributes %v", s.Attributes)
		}
		if svc, ok := s.Resource.Set().Value("service.name"); !ok || svc.AsString() != "apptemplate" {
			t.Errorf("expected service.name resource, got %v", s.Resource)
		}
	}
	if !found {
		t.Fatal("expected a pipeline.MapConcurrent span")
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}
	if got := counterTotal(rm, "pipeline.map.items"); got != 3 {
		t.Errorf("expected 3 items counted, got %d", got)
	}
	if got := counterTotal(rm, "pipeline.map.outputs"); got != 6 {
		t.Errorf("expected 6 outputs counted, got %d", got)
	}
}

func counterTotal(rm metricdata.ResourceMetrics, name string) int64 {
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
			}
		}
	}
	return total
}
