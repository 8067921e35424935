// Package domain contains the synthetic orderbook construction core: legs,
// price levels, commissions, liquidity consumption and chain pricing.
package domain

import "strings"

// Exchange identifies a supported venue.
type Exchange string

const (
	Binance  Exchange = "binance"
	CoinTR   Exchange = "cointr"
	WhiteBit Exchange = "whitebit"
	OKX      Exchange = "okx"
)

// SupportedExchanges lists every venue with an orderbook adapter.
var SupportedExchanges = []Exchange{Binance, CoinTR, WhiteBit, OKX}

// ParseExchange normalizes s and reports whether it is supported.
func ParseExchange(s string) (Exchange, bool) {
	e := Exchange(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range SupportedExchanges {
		if e == known {
			return e, true
		}
	}
	return e, false
}

func (e Exchange) String() string { return string(e) }

// Side is the trading side declared on a leg. The pricer does not branch on
// it: asks always price buying the chain's base, bids price selling it.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// SupportedSides lists the accepted leg sides.
var SupportedSides = []Side{SideBuy, SideSell}

// ParseSide normalizes s and reports whether it is buy or sell.
func ParseSide(s string) (Side, bool) {
	side := Side(strings.ToLower(strings.TrimSpace(s)))
	return side, side == SideBuy || side == SideSell
}

// Leg is one validated hop of a synthetic chain.
type Leg struct {
	Exchange Exchange
	Symbol   string
	Side     Side
}

// Chain limits.
const (
	MinLegs      = 2
	MaxLegs      = 6
	DefaultDepth = 20
	MaxDepth     = 100
)

// FetchDepth is the number of levels requested per leg for a synthetic book
// of the given depth. The extra levels leave room for starting levels that
// fail the slippage gate.
func FetchDepth(depth int) int {
	return depth * 2
}
