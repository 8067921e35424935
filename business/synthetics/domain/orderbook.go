package domain

import (
	"sort"
	"time"
)

// Level is one (price, quantity) entry of an orderbook.
type Level struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// Notional returns price × quantity.
func (l Level) Notional() float64 {
	return l.Price * l.Quantity
}

// Orderbook is the normalized snapshot every venue adapter returns: asks
// ascending, bids descending, only positive prices and quantities.
type Orderbook struct {
	Exchange  Exchange  `json:"exchange"`
	Symbol    string    `json:"symbol"`
	Asks      []Level   `json:"asks"`
	Bids      []Level   `json:"bids"`
	Timestamp time.Time `json:"timestamp"`
}

// NewOrderbook builds a normalized book from raw levels, truncated to limit
// per side (limit <= 0 keeps everything).
func NewOrderbook(exchange Exchange, symbol string, asks, bids []Level, limit int) *Orderbook {
	asks = positive(asks)
	bids = positive(bids)

	sort.SliceStable(asks, func(i, j int) bool { return asks[i].Price < asks[j].Price })
	sort.SliceStable(bids, func(i, j int) bool { return bids[i].Price > bids[j].Price })

	return &Orderbook{
		Exchange:  exchange,
		Symbol:    symbol,
		Asks:      head(asks, limit),
		Bids:      head(bids, limit),
		Timestamp: time.Now().UTC(),
	}
}

// BestAsk returns the lowest ask.
func (o *Orderbook) BestAsk() (Level, bool) {
	if o == nil || len(o.Asks) == 0 {
		return Level{}, false
	}
	return o.Asks[0], true
}

// BestBid returns the highest bid.
func (o *Orderbook) BestBid() (Level, bool) {
	if o == nil || len(o.Bids) == 0 {
		return Level{}, false
	}
	return o.Bids[0], true
}

// IsEmpty reports whether both sides are empty.
func (o *Orderbook) IsEmpty() bool {
	return o == nil || (len(o.Asks) == 0 && len(o.Bids) == 0)
}

func positive(levels []Level) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		if l.Price > 0 && l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}

func head(levels []Level, n int) []Level {
	if n <= 0 || len(levels) <= n {
		return levels
	}
	return levels[:n]
}
