// Package currency holds the known currency codes and splits trading-pair
// symbols into base and quote.
package currency

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Kind classifies a currency.
type Kind string

const (
	KindCrypto     Kind = "crypto"
	KindStablecoin Kind = "stablecoin"
	KindFiat       Kind = "fiat"
)

// Currency is metadata for one currency code.
type Currency struct {
	code string
	name string
	kind Kind
	// quoteRank orders suffix matching; zero means not a quote currency.
	quoteRank int
}

// New creates a currency that is never matched as a quote suffix.
func New(code, name string, kind Kind) *Currency {
	if code == "" {
		panic("currency: empty code")
	}
	return &Currency{code: strings.ToUpper(code), name: name, kind: kind}
}

// NewQuote creates a currency matched as a quote suffix with the given rank
// (1 is tried first).
func NewQuote(code, name string, kind Kind, rank int) *Currency {
	if rank < 1 {
		panic("currency: quote rank must be >= 1")
	}
	c := New(code, name, kind)
	c.quoteRank = rank
	return c
}

// Code returns the upper-case ticker, e.g. "USDT".
func (c *Currency) Code() string { return c.code }

// Name returns the display name, falling back to the code.
func (c *Currency) Name() string {
	if c.name == "" {
		return c.code
	}
	return c.name
}

// Kind returns the currency classification.
func (c *Currency) Kind() Kind { return c.kind }

// IsQuote reports whether the currency takes part in suffix matching.
func (c *Currency) IsQuote() bool { return c.quoteRank > 0 }

func (c *Currency) String() string { return c.code }

// Registry is a thread-safe set of known currencies.
type Registry struct {
	mu     sync.RWMutex
	byCode map[string]*Currency
	quotes []*Currency
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byCode: make(map[string]*Currency)}
}

// Register adds c. It panics on duplicate codes.
func (r *Registry) Register(c *Currency) {
	if c == nil {
		panic("currency: cannot register nil currency")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[c.code]; exists {
		panic(fmt.Sprintf("currency: %s already registered", c.code))
	}
	r.byCode[c.code] = c

	if c.IsQuote() {
		r.quotes = append(r.quotes, c)
		sort.SliceStable(r.quotes, func(i, j int) bool {
			return r.quotes[i].quoteRank < r.quotes[j].quoteRank
		})
	}
}

// Get looks up a currency by code, case-insensitively.
func (r *Registry) Get(code string) (*Currency, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byCode[strings.ToUpper(code)]
	return c, ok
}

// Quotes returns the quote currencies in matching order.
func (r *Registry) Quotes() []*Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Currency, len(r.quotes))
	copy(out, r.quotes)
	return out
}

// Count returns the number of registered currencies.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}

// DefaultRegistry returns the registry used in production. Quote matching
// order is USDT, TRY, USD, EUR, BTC, ETH.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewQuote("USDT", "Tether", KindStablecoin, 1))
	r.Register(NewQuote("TRY", "Turkish Lira", KindFiat, 2))
	r.Register(NewQuote("USD", "US Dollar", KindFiat, 3))
	r.Register(NewQuote("EUR", "Euro", KindFiat, 4))
	r.Register(NewQuote("BTC", "Bitcoin", KindCrypto, 5))
	r.Register(NewQuote("ETH", "Ethereum", KindCrypto, 6))
	r.Register(New("USDC", "USD Coin", KindStablecoin))
	r.Register(New("SOL", "Solana", KindCrypto))
	r.Register(New("XRP", "XRP", KindCrypto))
	r.Register(New("AVAX", "Avalanche", KindCrypto))
	r.Register(New("TRX", "Tron", KindCrypto))
	return r
}
