package app

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeOK          = "ok"
	outcomeInvalid     = "invalid"
	outcomeUnavailable = "unavailable"
)

type instruments struct {
	requests    metric.Int64Counter
	unavailable metric.Int64Counter
	levels      metric.Int64Counter
	duration    metric.Float64Histogram
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	requests, err := meter.Int64Counter("synthetics_requests_total",
		metric.WithDescription("Synthetic orderbook requests by outcome"))
	if err != nil {
		return nil, err
	}

	unavailable, err := meter.Int64Counter("synthetics_leg_unavailable_total",
		metric.WithDescription("Leg fetches that failed or timed out"))
	if err != nil {
		return nil, err
	}

	levels, err := meter.Int64Counter("synthetics_levels_emitted_total",
		metric.WithDescription("Synthetic levels returned by side"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("synthetics_build_duration_seconds",
		metric.WithDescription("Time to fetch and price a synthetic orderbook"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &instruments{
		requests:    requests,
		unavailable: unavailable,
		levels:      levels,
		duration:    duration,
	}, nil
}

func (m *instruments) request(ctx context.Context, outcome string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *instruments) legUnavailable(ctx context.Context, exchange string) {
	m.unavailable.Add(ctx, 1, metric.WithAttributes(attribute.String("exchange", exchange)))
}

func (m *instruments) emitted(ctx context.Context, side string, n int) {
	m.levels.Add(ctx, int64(n), metric.WithAttributes(attribute.String("side", side)))
}

func (m *instruments) observe(ctx context.Context, seconds float64, pair string) {
	m.duration.Record(ctx, seconds, metric.WithAttributes(attribute.String("pair", pair)))
}
