// internal/common/observability/metrics.go
package observability

import (
	"context"
	"log"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Options struct {
	ServiceName string
	// JaegerEndpoint enables span export when set, e.g. http://jaeger:14268/api/traces.
	JaegerEndpoint string
	// Registerer defaults to the Prometheus default registerer.
	Registerer prom.Registerer
	// SpanProcessor is an extra processor, used by tests to record spans.
	SpanProcessor sdktrace.SpanProcessor
}

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	runCounter     otelmetric.Int64Counter
	runDuration    otelmetric.Float64Histogram
	resultCounter  otelmetric.Int64Counter
}

func New(serviceName string) *Observability {
	return NewWithOptions(Options{ServiceName: serviceName})
}

// NewWithOptions never fails: exporter errors are logged and the affected
// instruments fall back to no-ops.
func NewWithOptions(opts Options) *Observability {
	res := resource.NewSchemaless(attribute.String("service.name", opts.ServiceName))
	o := &Observability{tracer: noop.NewTracerProvider().Tracer(opts.ServiceName)}

	exporterOpts := []prometheus.Option{}
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(opts.Registerer))
	}

	if exporter, err := prometheus.New(exporterOpts...); err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
	} else {
		o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
		otel.SetMeterProvider(o.meterProvider)

		// Underscored names are exposed unchanged under the classic scheme.
		meter := o.meterProvider.Meter(opts.ServiceName)
		o.runCounter, _ = meter.Int64Counter(
			"search_runs",
			otelmetric.WithDescription("Number of package search runs"),
		)
		o.runDuration, _ = meter.Float64Histogram(
			"search_run_duration",
			otelmetric.WithDescription("Package search run duration"),
			otelmetric.WithUnit("ms"),
		)
		o.resultCounter, _ = meter.Int64Counter(
			"search_results_delivered",
			otelmetric.WithDescription("Package results delivered to the output sink"),
		)
	}

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if opts.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(opts.JaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
		}
	}
	if opts.SpanProcessor != nil {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(opts.SpanProcessor))
	}
	o.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(opts.ServiceName)

	return o
}

// StartSpan starts a span as a child of whatever span ctx carries.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("").Start(ctx, name)
	}
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordRun(ctx context.Context, trigger, status string, duration time.Duration, delivered int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("status", status),
	)
	if o.runCounter != nil {
		o.runCounter.Add(ctx, 1, attrs)
	}
	if o.runDuration != nil {
		o.runDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
	if o.resultCounter != nil && delivered > 0 {
		o.resultCounter.Add(ctx, int64(delivered), otelmetric.WithAttributes(attribute.String("trigger", trigger)))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
