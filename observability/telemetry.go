package observability

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/apptemplate/component"
	"github.com/kbukum/apptemplate/logger"
)

const componentName = "telemetry"

// Identity is the service identity attached to every span and metric.
type Identity struct {
	Service     string
	Version     string
	Environment string
}

// Telemetry installs global OpenTelemetry tracer and meter providers while
// it is started. Spans and metrics produced through the otel API anywhere in
// the process, such as those of pipeline.MapConcurrent, are exported over
// OTLP HTTP.
type Telemetry struct {
	cfg Config
	id  Identity
	log *logger.Logger

	newSpanExporter func(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error)
	newMetricReader func(ctx context.Context, cfg Config) (sdkmetric.Reader, error)

	mu sync.Mutex
	tp *sdktrace.TracerProvider
	mp *sdkmetric.MeterProvider
}

var (
	_ component.Component   = (*Telemetry)(nil)
	_ component.Describable = (*Telemetry)(nil)
)

// New creates the telemetry component. Defaults are applied to a copy of cfg.
func New(cfg Config, id Identity) *Telemetry {
	cfg.ApplyDefaults()
	return &Telemetry{
		cfg:             cfg,
		id:              id,
		log:             logger.Get(componentName),
		newSpanExporter: otlpSpanExporter,
		newMetricReader: otlpMetricReader,
	}
}

func otlpSpanExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func otlpMetricReader(ctx context.Context, cfg Config) (sdkmetric.Reader, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.MetricInterval)), nil
}

// Name implements component.Component.
func (t *Telemetry) Name() string { return componentName }

// Start creates the exporters and installs the global providers.
func (t *Telemetry) Start(ctx context.Context) error {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", t.id.Service),
			attribute.String("service.version", t.id.Version),
			attribute.String("deployment.environment", t.id.Environment),
		),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return fmt.Errorf("creating resource: %w", err)
	}

	spanExporter, err := t.newSpanExporter(ctx, t.cfg)
	if err != nil {
		return fmt.Errorf("creating trace exporter: %w", err)
	}
	reader, err := t.newMetricReader(ctx, t.cfg)
	if err != nil {
		_ = spanExporter.Shutdown(ctx)
		return fmt.Errorf("creating metric reader: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(t.cfg.SampleRate)),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.mu.Lock()
	t.tp, t.mp = tp, mp
	t.mu.Unlock()

	t.log.Info("Telemetry initialized", logger.Fields(
		"endpoint", t.cfg.Endpoint,
		"sample_rate", t.cfg.SampleRate,
	))
	return nil
}

func sampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

// Stop flushes pending telemetry and shuts the providers down.
func (t *Telemetry) Stop(ctx context.Context) error {
	t.mu.Lock()
	tp, mp := t.tp, t.mp
	t.tp, t.mp = nil, nil
	t.mu.Unlock()

	if tp == nil {
		return nil
	}
	return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
}

// Health reports whether the providers are installed.
func (t *Telemetry) Health(context.Context) component.Health {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tp == nil {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

// Describe implements component.Describable.
func (t *Telemetry) Describe() component.Description {
	return component.Description{Type: "otlp", Details: t.cfg.Endpoint}
}
