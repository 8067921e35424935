// Package synthetics implements the synthetic orderbook bounded context.
package synthetics

import (
	"context"
	"fmt"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/app"
	synDI "github.com/fd1az/synthetic-orderbook/business/synthetics/di"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/httpapi"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue/binance"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue/cointr"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue/okx"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue/whitebit"
	"github.com/fd1az/synthetic-orderbook/internal/config"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/di"
	"github.com/fd1az/synthetic-orderbook/internal/health"
	"github.com/fd1az/synthetic-orderbook/internal/httpclient"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
	"github.com/fd1az/synthetic-orderbook/internal/monolith"
)

// fallbackRequestsPerMinute applies to venues without a configured budget.
const fallbackRequestsPerMinute = 600

// Module implements the synthetics bounded context.
type Module struct{}

// RegisterServices registers all synthetics services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Venue adapters, one per configured exchange - private dependency
	di.RegisterToken(c, synDI.Adapters, func(sr di.ServiceRegistry) []venue.Adapter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		adapters, err := NewAdapters(cfg)
		if err != nil {
			panic("failed to create venue adapters: " + err.Error())
		}
		if len(adapters) == 0 {
			log.Warn(context.Background(), "no supported exchanges configured")
		}
		return adapters
	})

	// Venue router (rate limits + circuit breakers) - private dependency
	di.RegisterToken(c, synDI.VenueRouter, func(sr di.ServiceRegistry) *venue.Router {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		currencies := sr.Get("currencies").(*currency.Registry)

		rpm := make(map[domain.Exchange]int, len(cfg.Exchanges))
		for name, ex := range cfg.Exchanges {
			if e, ok := domain.ParseExchange(name); ok {
				rpm[e] = ex.RequestsPerMinute
			}
		}

		router, err := venue.NewRouter(venue.RouterConfig{
			RequestsPerMinute: rpm,
			FallbackPerMinute: fallbackRequestsPerMinute,
		}, currencies, log, synDI.GetAdapters(sr)...)
		if err != nil {
			panic("failed to create venue router: " + err.Error())
		}
		return router
	})

	di.RegisterToken(c, synDI.Commissions, func(sr di.ServiceRegistry) *domain.CommissionTable {
		cfg := sr.Get("config").(*config.Config)

		table, err := NewCommissionTable(cfg)
		if err != nil {
			panic("failed to create commission table: " + err.Error())
		}
		return table
	})

	// Synthetics service (public - exposed to other modules)
	di.RegisterToken(c, synDI.SyntheticsService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		currencies := sr.Get("currencies").(*currency.Registry)

		svc, err := app.NewService(ServiceConfig(cfg), synDI.GetVenueRouter(sr), synDI.GetCommissions(sr), currencies, log)
		if err != nil {
			panic("failed to create synthetics service: " + err.Error())
		}
		return svc
	})

	di.RegisterToken(c, synDI.HTTPHandler, func(sr di.ServiceRegistry) *httpapi.Handler {
		log := sr.Get("logger").(logger.LoggerInterface)
		return httpapi.NewHandler(synDI.GetSyntheticsService(sr), log)
	})

	return nil
}

// Startup resolves the service graph and registers the venue health checks
// with the shared checker, when one is registered as "health".
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	router := synDI.GetVenueRouter(sr)
	synDI.GetSyntheticsService(sr)

	if sr.Has("health") {
		checker := sr.Get("health").(*health.Checker)
		checker.RegisterChecks(router.HealthChecks())
	}

	log.Info(ctx, "synthetics module started", "exchanges", router.Exchanges())
	return nil
}

// NewAdapters builds one adapter per configured supported exchange, each
// with its own instrumented HTTP client. Unknown exchange names are an error.
func NewAdapters(cfg *config.Config) ([]venue.Adapter, error) {
	adapters := make([]venue.Adapter, 0, len(cfg.Exchanges))

	for _, name := range cfg.ExchangeNames() {
		ex := cfg.Exchanges[name]

		e, ok := domain.ParseExchange(name)
		if !ok {
			return nil, fmt.Errorf("exchange %q has no orderbook adapter", name)
		}

		client, err := httpclient.New(
			httpclient.WithVenue(e.String()),
			httpclient.WithBaseURL(ex.BaseURL),
			httpclient.WithRequestTimeout(ex.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("http client for %s: %w", name, err)
		}

		switch e {
		case domain.Binance:
			adapters = append(adapters, binance.New(client))
		case domain.CoinTR:
			adapters = append(adapters, cointr.New(client))
		case domain.WhiteBit:
			adapters = append(adapters, whitebit.New(client))
		case domain.OKX:
			adapters = append(adapters, okx.New(client))
		}
	}

	return adapters, nil
}

// NewCommissionTable builds the shared table from the exchange and
// synthetics sections.
func NewCommissionTable(cfg *config.Config) (*domain.CommissionTable, error) {
	bps := make(map[domain.Exchange]float64, len(cfg.Exchanges))
	for name, ex := range cfg.Exchanges {
		if e, ok := domain.ParseExchange(name); ok {
			bps[e] = ex.CommissionBps
		}
	}
	return domain.NewCommissionTable(bps, cfg.Synthetics.DefaultCommissionBps, cfg.Synthetics.TaxRate)
}

// ServiceConfig maps the synthetics config section onto the service limits.
func ServiceConfig(cfg *config.Config) app.Config {
	s := cfg.Synthetics
	return app.Config{
		DefaultDepth: s.DefaultDepth,
		MaxDepth:     s.MaxDepth,
		MinLegs:      s.MinLegs,
		MaxLegs:      s.MaxLegs,
		MinFillRatio: s.MinFillRatio,
		LegTimeout:   s.LegTimeout,
	}
}
