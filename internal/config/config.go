// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig                 `mapstructure:"app"`
	Server     ServerConfig              `mapstructure:"server"`
	Synthetics SyntheticsConfig          `mapstructure:"synthetics"`
	Exchanges  map[string]ExchangeConfig `mapstructure:"exchanges"`
	Watch      WatchConfig               `mapstructure:"watch"`
	Telemetry  TelemetryConfig           `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"` // empty = stderr
}

// ServerConfig holds the HTTP API listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SyntheticsConfig holds the synthetic orderbook limits and fee defaults.
type SyntheticsConfig struct {
	DefaultDepth         int           `mapstructure:"default_depth"`
	MaxDepth             int           `mapstructure:"max_depth"`
	MinLegs              int           `mapstructure:"min_legs"`
	MaxLegs              int           `mapstructure:"max_legs"`
	MinFillRatio         float64       `mapstructure:"min_fill_ratio"`
	LegTimeout           time.Duration `mapstructure:"leg_timeout"`
	DefaultCommissionBps float64       `mapstructure:"default_commission_bps"`
	TaxRate              float64       `mapstructure:"tax_rate"` // KDV on commission, display only
}

// ExchangeConfig holds per-venue settings.
type ExchangeConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	CommissionBps     float64       `mapstructure:"commission_bps"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

// WatchLeg is one leg of the live view chain.
type WatchLeg struct {
	Exchange string `mapstructure:"exchange"`
	Symbol   string `mapstructure:"symbol"`
	Side     string `mapstructure:"side"`
}

// WatchConfig holds the live view settings.
type WatchConfig struct {
	Legs     []WatchLeg    `mapstructure:"legs"`
	Depth    int           `mapstructure:"depth"`
	Interval time.Duration `mapstructure:"interval"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ServiceName       string `mapstructure:"service_name"`
	TraceProvider     string `mapstructure:"trace_provider"` // zipkin, console, otlp-grpc, otlp-http, none
	OTLPEndpoint      string `mapstructure:"otlp_endpoint"`
	OTLPHeaders       string `mapstructure:"otlp_headers"`
	PrometheusEnabled bool   `mapstructure:"prometheus_enabled"`
	OTLPMetrics       bool   `mapstructure:"otlp_metrics"`
}

// ExchangeNames returns the configured exchange identifiers, sorted.
func (c *Config) ExchangeNames() []string {
	names := make([]string, 0, len(c.Exchanges))
	for name := range c.Exchanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CommissionBps returns the configured bps per exchange.
func (c *Config) CommissionBps() map[string]float64 {
	out := make(map[string]float64, len(c.Exchanges))
	for name, ex := range c.Exchanges {
		out[name] = ex.CommissionBps
	}
	return out
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SYN")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SYN_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SYN_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SYN_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "SYN_LOG_FILE")

	// Server
	v.BindEnv("server.port", "SYN_PORT", "PORT")

	// Synthetics
	v.BindEnv("synthetics.leg_timeout", "SYN_LEG_TIMEOUT")
	v.BindEnv("synthetics.default_commission_bps", "SYN_DEFAULT_COMMISSION_BPS")
	v.BindEnv("synthetics.tax_rate", "SYN_TAX_RATE", "KDV_RATE")

	// Exchanges
	for name := range defaultExchanges {
		v.BindEnv("exchanges."+name+".base_url", envName(name, "BASE_URL"))
		v.BindEnv("exchanges."+name+".commission_bps", envName(name, "COMMISSION_BPS"))
	}

	// Telemetry
	v.BindEnv("telemetry.enabled", "SYN_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SYN_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.trace_provider", "SYN_TRACE_PROVIDER")
	v.BindEnv("telemetry.otlp_endpoint", "SYN_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "SYN_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

// envName builds e.g. BINANCE_COMMISSION_BPS.
func envName(exchange, key string) string {
	return strings.ToUpper(exchange) + "_" + key
}

var defaultExchanges = map[string]ExchangeConfig{
	"binance":  {BaseURL: "https://api.binance.com", CommissionBps: 10, RequestsPerMinute: 1200, Timeout: 10 * time.Second},
	"cointr":   {BaseURL: "https://api.cointr.com", CommissionBps: 15, RequestsPerMinute: 600, Timeout: 10 * time.Second},
	"whitebit": {BaseURL: "https://whitebit.com", CommissionBps: 10, RequestsPerMinute: 600, Timeout: 10 * time.Second},
	"okx":      {BaseURL: "https://www.okx.com", CommissionBps: 10, RequestsPerMinute: 600, Timeout: 10 * time.Second},
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "synthetic-orderbook")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Synthetics defaults
	v.SetDefault("synthetics.default_depth", 20)
	v.SetDefault("synthetics.max_depth", 100)
	v.SetDefault("synthetics.min_legs", 2)
	v.SetDefault("synthetics.max_legs", 6)
	v.SetDefault("synthetics.min_fill_ratio", 0.95)
	v.SetDefault("synthetics.leg_timeout", "10s")
	v.SetDefault("synthetics.default_commission_bps", 10)
	v.SetDefault("synthetics.tax_rate", 0.20)

	// Exchange defaults
	for name, ex := range defaultExchanges {
		v.SetDefault("exchanges."+name+".base_url", ex.BaseURL)
		v.SetDefault("exchanges."+name+".commission_bps", ex.CommissionBps)
		v.SetDefault("exchanges."+name+".requests_per_minute", ex.RequestsPerMinute)
		v.SetDefault("exchanges."+name+".timeout", ex.Timeout.String())
	}

	// Watch defaults: ETH/TRY via USDT
	v.SetDefault("watch.legs", []map[string]string{
		{"exchange": "binance", "symbol": "ETHUSDT", "side": "buy"},
		{"exchange": "binance", "symbol": "USDTTRY", "side": "buy"},
	})
	v.SetDefault("watch.depth", 10)
	v.SetDefault("watch.interval", "5s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "synthetic-orderbook")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_enabled", true)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be positive")
	}

	s := c.Synthetics
	if s.MinLegs < 2 {
		return fmt.Errorf("synthetics.min_legs must be at least 2")
	}
	if s.MaxLegs < s.MinLegs {
		return fmt.Errorf("synthetics.max_legs (%d) must be >= min_legs (%d)", s.MaxLegs, s.MinLegs)
	}
	if s.MaxDepth <= 0 {
		return fmt.Errorf("synthetics.max_depth must be positive")
	}
	if s.DefaultDepth <= 0 || s.DefaultDepth > s.MaxDepth {
		return fmt.Errorf("synthetics.default_depth must be in [1, %d]", s.MaxDepth)
	}
	if s.MinFillRatio <= 0 || s.MinFillRatio > 1 {
		return fmt.Errorf("synthetics.min_fill_ratio must be in (0, 1]")
	}
	if s.DefaultCommissionBps < 0 {
		return fmt.Errorf("synthetics.default_commission_bps cannot be negative")
	}
	if s.TaxRate < 0 {
		return fmt.Errorf("synthetics.tax_rate cannot be negative")
	}

	if len(c.Exchanges) == 0 {
		return fmt.Errorf("exchanges cannot be empty")
	}
	for name, ex := range c.Exchanges {
		if ex.CommissionBps < 0 {
			return fmt.Errorf("exchanges.%s.commission_bps cannot be negative", name)
		}
		if ex.BaseURL == "" {
			return fmt.Errorf("exchanges.%s.base_url is required", name)
		}
	}

	return nil
}
