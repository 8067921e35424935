package httpapi

import "github.com/fd1az/synthetic-orderbook/business/synthetics/app"

// Example is a ready-made chain request.
type Example struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Legs         []app.LegRequest `json:"legs"`
	ExpectedPair string           `json:"expected_pair"`
}

// Examples returns the sample chains served by /api/synthetics/examples.
func Examples() []Example {
	return []Example{
		{
			Name:        "ETH/TRY via USDT",
			Description: "ETH to TRY through USDT (Binance + CoinTR)",
			Legs: []app.LegRequest{
				{Exchange: "binance", Symbol: "ETHUSDT", Side: "sell"},
				{Exchange: "cointr", Symbol: "USDTTRY", Side: "sell"},
			},
			ExpectedPair: "ETHTRY",
		},
		{
			Name:        "BTC/TRY via USDT",
			Description: "BTC to TRY through USDT (Binance + CoinTR)",
			Legs: []app.LegRequest{
				{Exchange: "binance", Symbol: "BTCUSDT", Side: "sell"},
				{Exchange: "cointr", Symbol: "USDTTRY", Side: "sell"},
			},
			ExpectedPair: "BTCTRY",
		},
		{
			Name:        "Multi-hop",
			Description: "3-leg chain across Binance, OKX and WhiteBIT",
			Legs: []app.LegRequest{
				{Exchange: "binance", Symbol: "ETHUSDT", Side: "sell"},
				{Exchange: "okx", Symbol: "USDTTRY", Side: "sell"},
				{Exchange: "whitebit", Symbol: "TRYETH", Side: "buy"},
			},
			ExpectedPair: "ETHETH",
		},
	}
}
