// Package venue routes orderbook fetches to per-exchange adapters behind rate
// limiting and circuit breaking.
package venue

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
)

// Adapter fetches orderbooks from one exchange's public API.
type Adapter interface {
	// Exchange identifies the venue.
	Exchange() domain.Exchange
	// FormatSymbol renders a split symbol in the venue's convention.
	FormatSymbol(s currency.Split) string
	// Fetch returns a normalized book of at most limit levels per side.
	Fetch(ctx context.Context, symbol string, limit int) (*domain.Orderbook, error)
}

// ParseLevels converts [price, quantity, ...] string rows. Extra columns are
// ignored.
func ParseLevels(rows [][]string) ([]domain.Level, error) {
	levels := make([]domain.Level, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("level %d: expected price and quantity, got %d fields", i, len(row))
		}
		price, err := decimal.NewFromString(row[0])
		if err != nil {
			return nil, fmt.Errorf("level %d: price %q: %w", i, row[0], err)
		}
		qty, err := decimal.NewFromString(row[1])
		if err != nil {
			return nil, fmt.Errorf("level %d: quantity %q: %w", i, row[1], err)
		}
		levels = append(levels, domain.Level{Price: price.InexactFloat64(), Quantity: qty.InexactFloat64()})
	}
	return levels, nil
}

// ClampLimit bounds a requested level count to [1, max].
func ClampLimit(limit, max int) int {
	switch {
	case limit < 1:
		return 1
	case limit > max:
		return max
	default:
		return limit
	}
}
