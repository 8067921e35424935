// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"errors"
	"io"

	"github.com/fd1az/synthetic-orderbook/internal/config"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/di"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	Currencies() *currency.Registry
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type app struct {
	config     *config.Config
	logger     logger.LoggerInterface
	currencies *currency.Registry
	container  di.Container
	closers    []io.Closer
}

// New creates a new Monolith instance with the default currency registry.
func New(cfg *config.Config, log logger.LoggerInterface) *app {
	currencies := currency.DefaultRegistry()

	container := di.NewContainer()

	container.Register("config", cfg)
	container.Register("logger", log)
	container.Register("currencies", currencies)

	return &app{
		config:     cfg,
		logger:     log,
		currencies: currencies,
		container:  container,
	}
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) Currencies() *currency.Registry {
	return a.currencies
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// Container returns the DI container for module registration.
func (a *app) Container() di.Container {
	return a.container
}

// OnClose registers a resource released by Close, in reverse order.
func (a *app) OnClose(c io.Closer) {
	a.closers = append(a.closers, c)
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close releases registered resources and joins their errors.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
