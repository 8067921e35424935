// Package app contains the synthetic orderbook application service and its ports.
package app

import (
	"context"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
)

// OrderbookProvider fetches one normalized orderbook snapshot.
type OrderbookProvider interface {
	// FetchOrderbook returns at most depth levels per side. Any error marks the
	// leg unavailable; it must return once ctx is done.
	FetchOrderbook(ctx context.Context, exchange domain.Exchange, symbol string, depth int) (*domain.Orderbook, error)
}
