package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"resumatch/internal/config"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultInstanceID         = "resumatch-1"
	defaultCollectionInterval = 15 * time.Second
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// ObservabilityManager owns the tracer and meter providers and every
// exporter behind them. A nil or disabled manager hands out no-op tracers
// and empty metrics.
type ObservabilityManager struct {
	config         ObservabilityConfig
	fullConfig     *config.Config
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
}

// NewObservabilityManager sets up tracing and metrics for obsConfig
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}
	if !obsConfig.Enabled {
		return om, nil
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"resource", om.initResource},
		{"tracing", om.initTracing},
		{"metrics", om.initMetrics},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			_ = om.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to initialize %s: %w", step.name, err)
		}
	}
	return om, nil
}

func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.instanceID()),
		),
	)
	if err != nil {
		return err
	}
	om.resource = res
	return nil
}

func (om *ObservabilityManager) initTracing() error {
	opts := []trace.TracerProviderOption{
		trace.WithResource(om.resource),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	}

	exporter, err := om.spanExporter()
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}
	// Spans are still sampled and propagated without an exporter.
	if exporter != nil {
		opts = append(opts, trace.WithBatcher(exporter))
	}

	tp := trace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// spanExporter picks console output over OTLP; nil means no export
func (om *ObservabilityManager) spanExporter() (trace.SpanExporter, error) {
	if om.config.ConsoleOutput {
		var opts []stdouttrace.Option
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		return stdouttrace.New(opts...)
	}

	otlp, ok := om.otlp()
	if !ok {
		return nil, nil
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(otlp.Endpoint)}
	if otlp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlp.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlp.Headers))
	}
	return otlptracehttp.New(context.Background(), opts...)
}

func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(om.config.ServiceName))
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// metricReaders returns one reader per enabled sink. A manual reader keeps
// the provider valid when nothing is exported.
func (om *ObservabilityManager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	interval := sdkmetric.WithInterval(om.collectionInterval())

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, interval))
	}

	if otlp, ok := om.otlp(); ok {
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpointURL(otlp.Endpoint)}
		if otlp.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		if len(otlp.Headers) > 0 {
			opts = append(opts, otlpmetrichttp.WithHeaders(otlp.Headers))
		}
		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("OTLP metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, interval))
	}

	if om.config.Prometheus.Enabled {
		reader, mux, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("prometheus exporter: %w", err)
		}
		server, err := StartPrometheusServer(mux, om.config.Prometheus.Port)
		if err != nil {
			return nil, fmt.Errorf("prometheus server: %w", err)
		}
		if server != nil {
			om.shutdownFuncs = append(om.shutdownFuncs, server.Shutdown)
		}
		readers = append(readers, reader)
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om == nil || om.metrics == nil {
		return &Metrics{}
	}
	return om.metrics
}

// HTTPMiddleware wraps handlers with otelhttp, or passes them through when disabled
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if om == nil || !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om == nil || om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown flushes and stops exporters in the order they were started
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	if om == nil {
		return nil
	}
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	om.shutdownFuncs = nil
	return nil
}

func (om *ObservabilityManager) otlp() (config.OTLPConfig, bool) {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return config.OTLPConfig{}, false
	}
	return om.fullConfig.Observability.OTLP, true
}

func (om *ObservabilityManager) instanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	return defaultInstanceID
}

func (om *ObservabilityManager) collectionInterval() time.Duration {
	if om.fullConfig != nil && om.fullConfig.Observability.Metrics.CollectionInterval > 0 {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	return defaultCollectionInterval
}
