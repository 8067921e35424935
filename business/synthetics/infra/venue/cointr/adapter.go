// Package cointr fetches spot orderbooks from the CoinTR v2 API.
package cointr

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
	orderbookPath = "/api/v2/spot/market/orderbook"
	maxLimit      = 150
	codeSuccess   = "00000"
)

type orderbookResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Asks [][]string `json:"asks"`
		Bids [][]string `json:"bids"`
	} `json:"data"`
}

// Adapter reads the unaggregated (step0) book.
type Adapter struct {
	http *httpclient.Client
}

var _ venue.Adapter = (*Adapter)(nil)

// New creates an adapter.
func New(http *httpclient.Client) *Adapter {
	return &Adapter{http: http}
}

// Exchange implements venue.Adapter.
func (a *Adapter) Exchange() domain.Exchange { return domain.CoinTR }

// FormatSymbol renders "USDTTRY".
func (a *Adapter) FormatSymbol(s currency.Split) string {
	return s.Format("")
}

// Fetch implements venue.Adapter.
func (a *Adapter) Fetch(ctx context.Context, symbol string, limit int) (*domain.Orderbook, error) {
	query := url.Values{
		"symbol": {symbol},
		"type":   {"step0"},
		"limit":  {strconv.Itoa(venue.ClampLimit(limit, maxLimit))},
	}

	var resp orderbookResponse
	if err := a.http.GetJSON(ctx, orderbookPath, query, &resp); err != nil {
		return nil, err
	}

	if resp.Code != codeSuccess || resp.Data == nil {
		return nil, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithMessage("cointr error "+resp.Code+": "+resp.Msg),
			apperror.WithContext(symbol),
		)
	}

	asks, err := venue.ParseLevels(resp.Data.Asks)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("cointr asks"), apperror.WithCause(err))
	}
	bids, err := venue.ParseLevels(resp.Data.Bids)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("cointr bids"), apperror.WithCause(err))
	}

	return domain.NewOrderbook(domain.CoinTR, symbol, asks, bids, limit), nil
}
