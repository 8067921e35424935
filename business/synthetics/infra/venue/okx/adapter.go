// Package okx fetches spot orderbooks from the OKX v5 market API.
package okx

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
	booksPath   = "/api/v5/market/books"
	maxLimit    = 400
	codeSuccess = "0"
)

// Rows are [price, size, deprecated, order count].
type booksResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
	Data []struct {
		Asks [][]string `json:"asks"`
		Bids [][]string `json:"bids"`
		Ts   string     `json:"ts"`
	} `json:"data"`
}

// Adapter reads /api/v5/market/books.
type Adapter struct {
	http *httpclient.Client
}

var _ venue.Adapter = (*Adapter)(nil)

// New creates an adapter.
func New(http *httpclient.Client) *Adapter {
	return &Adapter{http: http}
}

// Exchange implements venue.Adapter.
func (a *Adapter) Exchange() domain.Exchange { return domain.OKX }

// FormatSymbol renders "ETH-USDT".
func (a *Adapter) FormatSymbol(s currency.Split) string {
	return s.Format("-")
}

// Fetch implements venue.Adapter.
func (a *Adapter) Fetch(ctx context.Context, instID string, limit int) (*domain.Orderbook, error) {
	query := url.Values{
		"instId": {instID},
		"sz":     {strconv.Itoa(venue.ClampLimit(limit, maxLimit))},
	}

	var resp booksResponse
	if err := a.http.GetJSON(ctx, booksPath, query, &resp); err != nil {
		return nil, err
	}

	if resp.Code != codeSuccess || len(resp.Data) == 0 {
		return nil, apperror.New(apperror.CodeVenueAPIError,
			apperror.WithMessage("okx error "+resp.Code+": "+resp.Msg),
			apperror.WithContext(instID),
		)
	}

	book := resp.Data[0]
	asks, err := venue.ParseLevels(book.Asks)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("okx asks"), apperror.WithCause(err))
	}
	bids, err := venue.ParseLevels(book.Bids)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidOrderbook, apperror.WithContext("okx bids"), apperror.WithCause(err))
	}

	return domain.NewOrderbook(domain.OKX, instID, asks, bids, limit), nil
}
