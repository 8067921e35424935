package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metric2 "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// Provider bundles the meter provider and, when prometheus is enabled,
// the scrape handler for its registry.
type Provider struct {
	MetricProvider
	handler http.Handler
}

// Handler serves the prometheus exposition format. It answers 404 when
// no prometheus reader is configured.
func (p *Provider) Handler() http.Handler {
	if p.handler == nil {
		return http.NotFoundHandler()
	}
	return p.handler
}

func getReaders(ctx context.Context, cfg Config) ([]metric2.Reader, http.Handler, error) {
	var (
		readers []metric2.Reader
		handler http.Handler
	)

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
			if err != nil {
				return nil, nil, fmt.Errorf("prometheus exporter: %w", err)
			}

			readers = append(readers, promExporter)
			handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}

			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
			}

			readers = append(readers, metric2.NewPeriodicReader(exp))
		default:
			return nil, nil, fmt.Errorf("unknown metric provider %q", provider.Provider)
		}
	}

	return readers, handler, nil
}

// NewMetricProvider builds a meter provider from the configured readers
// and installs it as the global OTEL meter provider. With no readers the
// global provider is left as the no-op default.
func NewMetricProvider(options ...OptionFn) (*Provider, error) {
	var cfg Config

	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, handler, err := getReaders(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	metricsOps := []metric2.Option{
		metric2.WithResource(resource.NewSchemaless(semconv.ServiceNameKey.String(cfg.ServiceName))),
	}
	for _, reader := range readers {
		metricsOps = append(metricsOps, metric2.WithReader(reader))
	}

	meterProvider := metric2.NewMeterProvider(metricsOps...)

	if len(readers) > 0 {
		otel.SetMeterProvider(meterProvider)
	}

	return &Provider{MetricProvider: meterProvider, handler: handler}, nil
}
