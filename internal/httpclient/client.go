package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultDialKeepAlive         = 10 * time.Second
	defaultRequestTimeout        = 10 * time.Second
	defaultMaxIdleConns          = 0
	defaultMaxConnsPerHost       = 5
	defaultIdleConnTimeout       = 2 * time.Minute
	defaultExpectContinueTimeout = 100 * time.Millisecond

	// maxBodyBytes caps how much of a venue response is read.
	maxBodyBytes = 8 << 20

	metricRequestCounter = "http_client_requests_total"
	metricRequestLatency = "http_client_request_duration_seconds"

	instrumentationName = "venue_http_client"
)

// Client issues instrumented requests against one venue's REST API.
type Client struct {
	client       *http.Client
	venue        string
	baseURL      string
	headers      map[string]string
	errorHandler ResponseErrorHandler
	tracer       trace.Tracer
	requests     metric.Int64Counter
	latency      metric.Float64Histogram
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// New creates a client. The transport is always wrapped with otelhttp.
func New(opts ...Option) (*Client, error) {
	options := newOptions(opts...)

	httpClient := options.client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	if options.roundTripper != nil {
		httpClient.Transport = options.roundTripper
	} else if httpClient.Transport == nil {
		httpClient.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				KeepAlive: defaultDialKeepAlive,
			}).DialContext,
			MaxIdleConns:          defaultMaxIdleConns,
			MaxConnsPerHost:       defaultMaxConnsPerHost,
			IdleConnTimeout:       defaultIdleConnTimeout,
			ExpectContinueTimeout: defaultExpectContinueTimeout,
		}
	}

	if options.requestTimeout != nil {
		httpClient.Timeout = *options.requestTimeout
	}

	httpClient.Transport = otelhttp.NewTransport(
		httpClient.Transport,
		otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
			return otelhttptrace.NewClientTrace(ctx)
		}),
	)

	venue := options.venue
	if venue == "" {
		venue = "default"
	}

	meterProvider := options.meterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}
	meter := meterProvider.Meter(
		instrumentationName,
		metric.WithInstrumentationAttributes(attribute.String("venue", venue)),
	)

	requests, err := meter.Int64Counter(metricRequestCounter,
		metric.WithDescription("Total number of venue HTTP requests"))
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram(metricRequestLatency,
		metric.WithDescription("Venue HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	tracer := options.tracer
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(instrumentationName)
	}

	errorHandler := options.errorHandler
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return &Client{
		client:       httpClient,
		venue:        venue,
		baseURL:      strings.TrimSuffix(options.baseURL, "/"),
		headers:      copyHeaders(options.headers),
		errorHandler: errorHandler,
		tracer:       tracer,
		requests:     requests,
		latency:      latency,
	}, nil
}

// HTTPClient returns the instrumented *http.Client, for SDKs that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.client
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Venue returns the name used in metrics and spans.
func (c *Client) Venue() string {
	return c.venue
}

// Get performs a GET of path relative to the base URL. Status codes rejected
// by the error handler are returned as errors alongside the response.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	fullURL := c.resolve(path, query)

	ctx, span := c.tracer.Start(ctx, "venue.http.get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", http.MethodGet),
			attribute.String("http.url", fullURL),
			attribute.String("venue", c.venue),
		),
	)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create request")
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.recordError(ctx, span, err, time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	elapsed := time.Since(start)
	if err != nil {
		c.recordError(ctx, span, err, elapsed)
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Duration:   elapsed,
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if handlerErr := c.errorHandler(resp.StatusCode, body); handlerErr != nil {
		span.SetStatus(codes.Error, handlerErr.Error())
		c.record(ctx, false, resp.StatusCode, elapsed)
		return response, handlerErr
	}

	c.record(ctx, true, resp.StatusCode, elapsed)
	return response, nil
}

// GetJSON performs Get and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Get(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &DecodeError{Venue: c.venue, Err: err}
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	full := path
	if c.baseURL != "" && !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		full = c.baseURL + "/" + strings.TrimPrefix(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + query.Encode()
	}
	return full
}

func (c *Client) recordError(ctx context.Context, span trace.Span, err error, elapsed time.Duration) {
	span.RecordError(err)

	var netErr net.Error
	if errors.Is(err, context.Canceled) {
		span.SetAttributes(attribute.Bool("context.cancelled", true))
	}
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		span.SetAttributes(attribute.Bool("request.timeout", true))
	}

	span.SetStatus(codes.Error, err.Error())
	c.record(ctx, false, 0, elapsed)
}

func (c *Client) record(ctx context.Context, success bool, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("venue", c.venue),
		attribute.Bool("success", success),
		attribute.Int("status", status),
	)
	c.requests.Add(ctx, 1, attrs)
	c.latency.Record(ctx, elapsed.Seconds(), attrs)
}

func copyHeaders(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
