// Package di provides a small dependency injection container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves registered services by name.
type ServiceRegistry interface {
	Get(name string) any
	Has(name string) bool
}

// Container registers services and lazily resolves providers.
type Container interface {
	ServiceRegistry
	Register(name string, value any)
	RegisterProvider(name string, provider func(ServiceRegistry) any)
}

type entry struct {
	once     sync.Once
	provider func(ServiceRegistry) any
	value    any
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

// Register stores a ready-made value under name.
func (c *container) Register(name string, value any) {
	e := &entry{value: value}
	e.once.Do(func() {})

	c.mu.Lock()
	c.entries[name] = e
	c.mu.Unlock()
}

// RegisterProvider stores a provider that runs once, on first Get.
func (c *container) RegisterProvider(name string, provider func(ServiceRegistry) any) {
	c.mu.Lock()
	c.entries[name] = &entry{provider: provider}
	c.mu.Unlock()
}

// Has reports whether name is registered.
func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Get resolves name, running its provider on first use. It panics on unknown
// names because a missing registration is a wiring bug.
func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("di: service %q is not registered", name))
	}

	e.once.Do(func() {
		e.value = e.provider(c)
	})
	return e.value
}

// Token is a typed key for a service.
type Token[T any] struct {
	name string
}

// NewToken creates a token with the given name.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registration name of the token.
func (t Token[T]) Name() string {
	return t.name
}

// RegisterToken registers a typed provider.
func RegisterToken[T any](c Container, token Token[T], provider func(ServiceRegistry) T) {
	c.RegisterProvider(token.name, func(sr ServiceRegistry) any {
		return provider(sr)
	})
}

// GetToken resolves a typed service.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	v, ok := sr.Get(token.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type", token.name))
	}
	return v
}
