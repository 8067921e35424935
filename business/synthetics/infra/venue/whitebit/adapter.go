// Package whitebit fetches spot orderbooks from the WhiteBIT v4 public API.
package whitebit

import (
	"context"
	"net/url"
	"strconv"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue"
	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/httpclient"
)

const (
	orderbookPath = "/api/v4/public/orderbook/"
	maxLimit      = 100
)

type orderbookResponse struct {
	Ticker    string     `json:"ticker_id"`
	Timestamp int64      `json:"timestamp"`
	Asks      [][]string `json:"asks"`
	Bids      [][]string `json:"bids"`
}

// Adapter reads /api/v4/public/orderbook/{market}.
type Adapter struct {
	http *httpclient.Client
}

var _ venue.Adapter = (*Adapter)(nil)

// New creates an adapter.
func New(http *httpclient.Client) *Adapter {
	return &Adapter{http: http}
}

// Exchange implements venue.Adapter.
func (a *Adapter) Exchange() domain.Exchange { return domain.WhiteBit }

// FormatSymbol renders "ETH_USDT".
func (a *Adapter) FormatSymbol(s currency.Split) string {
	return s.Format("_")
}

// Fetch implements venue.Adapter.
func (a *Adapter) Fetch(ctx context.Context, market string, limit int) (*domain.Orderbook, error) {
	query := url.Values{"limit": {strconv.Itoa(venue.ClampLimit(limit, maxLimit))}}

	var resp orderbookResponse
	if err := a.http.GetJSON(ctx, orderbookPath+url.PathEscape(market), query, &resp); err != nil {
		return nil, err
	}

	if resp.Asks == nil && resp.Bids == nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithMessage("whitebit response has no asks or bids"),
			apperror.WithContext(market),
		)
	}

	asks, err := venue.ParseLevels(resp.Asks)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("whitebit asks"), apperror.WithCause(err))
	}
	bids, err := venue.ParseLevels(resp.Bids)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("whitebit bids"), apperror.WithCause(err))
	}

	return domain.NewOrderbook(domain.WhiteBit, market, asks, bids, limit), nil
}
