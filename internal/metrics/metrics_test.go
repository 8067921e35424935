package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewMetricProvider_Prometheus(t *testing.T) {
	p, err := NewMetricProvider(
		WithServiceName("synthetics-test"),
		WithReaders(Readers{Prometheus: true}),
	)
	if err != nil {
		t.Fatalf("NewMetricProvider: %v", err)
	}
	defer p.Shutdown(context.Background())

	counter, err := p.Meter("test").Int64Counter("synthetics_test_total")
	if err != nil {
		t.Fatalf("Int64Counter: %v", err)
	}
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "synthetics_test") {
		t.Errorf("exposition missing counter:\n%s", rec.Body.String())
	}
}

func TestNewMetricProvider_NoReaders(t *testing.T) {
	p, err := NewMetricProvider(WithServiceName("synthetics-test"))
	if err != nil {
		t.Fatalf("NewMetricProvider: %v", err)
	}
	defer p.Shutdown(context.Background())

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestNewMetricProvider_UnknownProvider(t *testing.T) {
	_, err := NewMetricProvider(WithProviderConfig(ProviderCfg{Provider: "statsd"}))
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestWithReaders(t *testing.T) {
	tests := []struct {
		name string
		r    Readers
		want []ProviderKind
	}{
		{name: "none", r: Readers{}},
		{name: "prometheus", r: Readers{Prometheus: true}, want: []ProviderKind{PrometheusProvider}},
		{name: "both", r: Readers{Prometheus: true, OTLP: true, OTLPEndpoint: "http://collector:4317"}, want: []ProviderKind{PrometheusProvider, OtelCollector}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := WithReaders(tt.r)(Config{})
			if len(cfg.Provider) != len(tt.want) {
				t.Fatalf("got %d providers, want %d", len(cfg.Provider), len(tt.want))
			}
			for i, kind := range tt.want {
				if cfg.Provider[i].Provider != kind {
					t.Errorf("provider %d = %s, want %s", i, cfg.Provider[i].Provider, kind)
				}
			}
		})
	}
}
