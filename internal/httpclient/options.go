// Package httpclient provides an OTEL-instrumented HTTP client for venue REST APIs.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	client         *http.Client
	meterProvider  metric.MeterProvider
	venue          string
	roundTripper   http.RoundTripper
	requestTimeout *time.Duration
	headers        map[string]string
	baseURL        string
	errorHandler   ResponseErrorHandler
	tracer         trace.Tracer
}

// Option configures a Client.
type Option func(*options)

func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithHTTPClient uses c instead of a fresh client. Its transport is wrapped.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.client = c
	}
}

// WithMeterProvider sets the OTEL meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithVenue sets the venue name for metrics and traces.
func WithVenue(name string) Option {
	return func(o *options) {
		o.venue = name
	}
}

// WithRoundTripper sets a custom HTTP transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.roundTripper = rt
	}
}

// WithRequestTimeout sets the per-request timeout. Zero keeps the default.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.requestTimeout = &timeout
		}
	}
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithBaseURL sets the URL relative paths are resolved against.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = url
	}
}

// WithResponseErrorHandler replaces DefaultErrorHandler.
func WithResponseErrorHandler(h ResponseErrorHandler) Option {
	return func(o *options) {
		o.errorHandler = h
	}
}

// WithTracer sets the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}
