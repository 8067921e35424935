package venue

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/circuitbreaker"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/health"
	"github.com/fd1az/synthetic-orderbook/internal/httpclient"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
	"github.com/fd1az/synthetic-orderbook/internal/ratelimit"
)

type route struct {
	adapter Adapter
	breaker *circuitbreaker.Breaker[*domain.Orderbook]
}

// Router implements the orderbook provider port over a set of adapters.
type Router struct {
	routes   map[domain.Exchange]*route
	limits   *ratelimit.Set
	registry *currency.Registry
	log      logger.LoggerInterface
}

// RouterConfig configures a Router.
type RouterConfig struct {
	// RequestsPerMinute per exchange; missing venues get FallbackPerMinute.
	RequestsPerMinute map[domain.Exchange]int
	FallbackPerMinute int
	// Breaker overrides the breaker defaults; Name is set per venue.
	Breaker *circuitbreaker.Config
}

// NewRouter creates a Router. Registering two adapters for one exchange is an
// error.
func NewRouter(cfg RouterConfig, registry *currency.Registry, log logger.LoggerInterface, adapters ...Adapter) (*Router, error) {
	budgets := make(map[string]int, len(cfg.RequestsPerMinute))
	for e, rpm := range cfg.RequestsPerMinute {
		budgets[e.String()] = rpm
	}

	r := &Router{
		routes:   make(map[domain.Exchange]*route, len(adapters)),
		limits:   ratelimit.NewSet(budgets, cfg.FallbackPerMinute),
		registry: registry,
		log:      log,
	}

	for _, a := range adapters {
		e := a.Exchange()
		if _, dup := r.routes[e]; dup {
			return nil, fmt.Errorf("duplicate adapter for %s", e)
		}

		bc := circuitbreaker.DefaultConfig(e.String())
		if cfg.Breaker != nil {
			bc = *cfg.Breaker
			bc.Name = e.String()
		}
		bc.IsSuccessful = countsAsSuccess
		bc.OnStateChange = func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "venue circuit state changed",
				"exchange", name, "from", from.String(), "to", to.String())
		}

		r.routes[e] = &route{
			adapter: a,
			breaker: circuitbreaker.New[*domain.Orderbook](bc),
		}
	}

	return r, nil
}

// countsAsSuccess keeps caller cancellations from tripping a venue breaker.
func countsAsSuccess(err error) bool {
	return err == nil || errors.Is(err, context.Canceled)
}

// Exchanges returns the routed exchanges, sorted.
func (r *Router) Exchanges() []domain.Exchange {
	out := make([]domain.Exchange, 0, len(r.routes))
	for e := range r.routes {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FetchOrderbook fetches symbol from exchange. Every failure is an
// *apperror.AppError.
func (r *Router) FetchOrderbook(ctx context.Context, exchange domain.Exchange, symbol string, depth int) (*domain.Orderbook, error) {
	rt, ok := r.routes[exchange]
	if !ok {
		return nil, apperror.New(apperror.CodeUnsupportedExchange, apperror.WithContext(exchange.String()))
	}

	split := r.registry.Split(symbol)
	venueSymbol := rt.adapter.FormatSymbol(split)
	errCtx := exchange.String() + " " + venueSymbol

	if err := r.limits.Wait(ctx, exchange.String()); err != nil {
		return nil, apperror.New(apperror.CodeRateLimitExceeded,
			apperror.WithContext(errCtx), apperror.WithCause(err))
	}

	book, err := rt.breaker.Execute(func() (*domain.Orderbook, error) {
		return rt.adapter.Fetch(ctx, venueSymbol, depth)
	})
	if err != nil {
		r.log.Debug(ctx, "orderbook fetch failed", "exchange", exchange, "symbol", venueSymbol, "error", err)
		return nil, classify(ctx, err, errCtx)
	}

	book.Symbol = split.Symbol
	return book, nil
}

func classify(ctx context.Context, err error, errCtx string) error {
	var se *httpclient.StatusError

	switch {
	case circuitbreaker.IsRejection(err):
		return apperror.New(apperror.CodeCircuitOpen, apperror.WithContext(errCtx), apperror.WithCause(err))
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperror.New(apperror.CodeServiceTimeout, apperror.WithContext(errCtx), apperror.WithCause(err))
	case errors.As(err, &se) && se.RateLimited():
		return apperror.New(apperror.CodeRateLimitExceeded, apperror.WithContext(errCtx), apperror.WithCause(err))
	case apperror.IsAppError(err):
		return apperror.Wrap(err, apperror.CodeOrderbookFetchFailed, errCtx)
	default:
		return apperror.External(apperror.CodeOrderbookFetchFailed, errCtx, err)
	}
}

// HealthChecks reports each venue healthy unless its breaker is open.
func (r *Router) HealthChecks() map[string]health.CheckFunc {
	checks := make(map[string]health.CheckFunc, len(r.routes))
	for e, rt := range r.routes {
		breaker := rt.breaker
		checks["venue."+e.String()] = func(context.Context) (bool, string) {
			if breaker.IsOpen() {
				return false, "circuit open"
			}
			return true, breaker.State().String()
		}
	}
	return checks
}
