// Package binance fetches spot orderbooks through the go-binance SDK.
package binance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gbinance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/infra/venue"
	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/httpclient"
)

// DefaultBaseURL is the public spot REST endpoint.
const DefaultBaseURL = "https://api.binance.com"

// allowedLimits are the depth sizes the endpoint accepts.
var allowedLimits = []int{5, 10, 20, 50, 100, 500, 1000, 5000}

// Adapter reads /api/v3/depth.
type Adapter struct {
	client *gbinance.Client
}

var _ venue.Adapter = (*Adapter)(nil)

// New creates an adapter whose SDK client sends requests through http.
func New(http *httpclient.Client) *Adapter {
	client := gbinance.NewClient("", "")
	client.HTTPClient = http.HTTPClient()
	if base := http.BaseURL(); base != "" {
		client.BaseURL = base
	} else {
		client.BaseURL = DefaultBaseURL
	}
	return &Adapter{client: client}
}

// Exchange implements venue.Adapter.
func (a *Adapter) Exchange() domain.Exchange { return domain.Binance }

// FormatSymbol renders "ETHUSDT".
func (a *Adapter) FormatSymbol(s currency.Split) string {
	return s.Format("")
}

// Fetch implements venue.Adapter.
func (a *Adapter) Fetch(ctx context.Context, symbol string, limit int) (*domain.Orderbook, error) {
	res, err := a.client.NewDepthService().
		Symbol(strings.ToUpper(symbol)).
		Limit(SnapLimit(limit)).
		Do(ctx)
	if err != nil {
		var apiErr *common.APIError
		if errors.As(err, &apiErr) {
			return nil, apperror.New(apperror.CodeVenueAPIError,
				apperror.WithMessage(fmt.Sprintf("binance error %d: %s", apiErr.Code, apiErr.Message)),
				apperror.WithContext(symbol),
				apperror.WithCause(err),
			)
		}
		return nil, err
	}

	asks := make([][]string, len(res.Asks))
	for i, l := range res.Asks {
		asks[i] = []string{l.Price, l.Quantity}
	}
	bids := make([][]string, len(res.Bids))
	for i, l := range res.Bids {
		bids[i] = []string{l.Price, l.Quantity}
	}

	askLevels, err := venue.ParseLevels(asks)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("binance asks"), apperror.WithCause(err))
	}
	bidLevels, err := venue.ParseLevels(bids)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("binance bids"), apperror.WithCause(err))
	}

	return domain.NewOrderbook(domain.Binance, symbol, askLevels, bidLevels, limit), nil
}

// SnapLimit rounds limit up to the nearest accepted depth size.
func SnapLimit(limit int) int {
	for _, v := range allowedLimits {
		if limit <= v {
			return v
		}
	}
	return allowedLimits[len(allowedLimits)-1]
}
