// Package telemetry exports analysis metrics through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const meterName = "rbi-inspect"

// Config configures the meter provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	OTLPEndpoint   string // e.g. "localhost:4317"; empty keeps metrics in process
	Insecure       bool
	Interval       time.Duration
}

// Provider owns the meter provider and the RBI instruments. It implements
// application.Metrics.
type Provider struct {
	mp     *sdkmetric.MeterProvider
	logger *slog.Logger

	analyses metric.Int64Counter
	failures metric.Int64Counter
	pof      metric.Float64Histogram
	overdue  atomic.Int64
}

// New builds a provider. Extra readers (tests use a ManualReader) are
// attached next to the OTLP exporter when one is configured.
func New(ctx context.Context, cfg Config, readers ...sdkmetric.Reader) (*Provider, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = meterName
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	for _, r := range readers {
		opts = append(opts, sdkmetric.WithReader(r))
	}
	if cfg.OTLPEndpoint != "" {
		expOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.Insecure {
			expOpts = append(expOpts, otlpmetricgrpc.WithInsecure())
		}
		exp, err := otlpmetricgrpc.New(ctx, expOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create metric exporter: %w", err)
		}
		interval := cfg.Interval
		if interval <= 0 {
			interval = 30 * time.Second
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(interval))))
	}

	p := &Provider{
		mp:     sdkmetric.NewMeterProvider(opts...),
		logger: slog.Default().With("component", "telemetry"),
	}
	otel.SetMeterProvider(p.mp)
	if err := p.initInstruments(); err != nil {
		return nil, err
	}
	p.logger.InfoContext(ctx, "telemetry initialized", "service", cfg.ServiceName, "endpoint", cfg.OTLPEndpoint)
	return p, nil
}

func (p *Provider) initInstruments() error {
	meter := p.mp.Meter(meterName)
	var err error
	if p.analyses, err = meter.Int64Counter("rbi.analyses",
		metric.WithDescription("Persisted RBI analyses"),
		metric.WithUnit("{analysis}")); err != nil {
		return fmt.Errorf("failed to create analyses counter: %w", err)
	}
	if p.failures, err = meter.Int64Counter("rbi.analysis.failures",
		metric.WithDescription("Rejected or failed RBI analysis requests"),
		metric.WithUnit("{request}")); err != nil {
		return fmt.Errorf("failed to create failures counter: %w", err)
	}
	if p.pof, err = meter.Float64Histogram("rbi.pof",
		metric.WithDescription("Combined probability of failure per analysis"),
		metric.WithExplicitBucketBoundaries(0.2, 0.4, 0.6, 0.8, 1)); err != nil {
		return fmt.Errorf("failed to create pof histogram: %w", err)
	}
	if _, err = meter.Int64ObservableGauge("rbi.inspections.overdue",
		metric.WithDescription("Overdue inspections seen by the last sweep"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(p.overdue.Load())
			return nil
		})); err != nil {
		return fmt.Errorf("failed to create overdue gauge: %w", err)
	}
	return nil
}

func (p *Provider) AnalysisRecorded(ctx context.Context, riskCategory string, pof float64) {
	p.analyses.Add(ctx, 1, metric.WithAttributes(attribute.String("risk_category", riskCategory)))
	p.pof.Record(ctx, pof)
}

func (p *Provider) AnalysisFailed(ctx context.Context, kind string) {
	p.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (p *Provider) OverdueInspections(_ context.Context, n int) {
	p.overdue.Store(int64(n))
}

// Shutdown flushes and stops the exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.mp.Shutdown(ctx)
}
