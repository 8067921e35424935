package metrics

// ProviderKind names a metric reader.
type ProviderKind string

const (
	PrometheusProvider ProviderKind = "prometheus"
	OtelCollector      ProviderKind = "otlp"
)

type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

// ProviderCfg configures one reader. Endpoint, Headers and Insecure only
// apply to OtelCollector.
type ProviderCfg struct {
	Provider ProviderKind
	Endpoint string
	Headers  map[string]string
	Insecure bool
}

// Readers is the reader selection carried by the telemetry config.
type Readers struct {
	Prometheus   bool
	OTLP         bool
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool
}

type OptionFn func(config Config) Config

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

// WithReaders appends a reader for every enabled entry of r.
func WithReaders(r Readers) OptionFn {
	return func(config Config) Config {
		if r.Prometheus {
			config.Provider = append(config.Provider, ProviderCfg{Provider: PrometheusProvider})
		}
		if r.OTLP {
			config.Provider = append(config.Provider, ProviderCfg{
				Provider: OtelCollector,
				Endpoint: r.OTLPEndpoint,
				Headers:  r.OTLPHeaders,
				Insecure: r.OTLPInsecure,
			})
		}
		return config
	}
}
