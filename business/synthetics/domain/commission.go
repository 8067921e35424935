package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultCommissionBps applies to exchanges missing from the table.
const DefaultCommissionBps = 10.0

const bpsDivisor = 10000.0

// CommissionRate is the fee looked up for one exchange.
type CommissionRate struct {
	Bps float64
	// Defaulted is set when the exchange was not configured.
	Defaulted bool
}

// Factor returns 1 + bps/10000.
func (r CommissionRate) Factor() float64 {
	return 1 + r.Bps/bpsDivisor
}

// CommissionTable maps exchanges to trading fees. It is built once and only
// read afterwards, so concurrent use needs no locking.
type CommissionTable struct {
	bps        map[Exchange]float64
	defaultBps float64
	taxRate    float64
}

// NewCommissionTable validates and copies the given rates. taxRate is the
// consumption tax charged on commission (KDV), used only by Breakdown.
func NewCommissionTable(bps map[Exchange]float64, defaultBps, taxRate float64) (*CommissionTable, error) {
	if defaultBps < 0 {
		return nil, fmt.Errorf("default commission bps cannot be negative: %v", defaultBps)
	}
	if taxRate < 0 {
		return nil, fmt.Errorf("tax rate cannot be negative: %v", taxRate)
	}

	table := make(map[Exchange]float64, len(bps))
	for e, v := range bps {
		if v < 0 {
			return nil, fmt.Errorf("commission bps for %s cannot be negative: %v", e, v)
		}
		table[e] = v
	}

	return &CommissionTable{bps: table, defaultBps: defaultBps, taxRate: taxRate}, nil
}

// Rate returns the configured rate for e, or the default flagged as such.
func (t *CommissionTable) Rate(e Exchange) CommissionRate {
	if v, ok := t.bps[e]; ok {
		return CommissionRate{Bps: v}
	}
	return CommissionRate{Bps: t.defaultBps, Defaulted: true}
}

// Bps returns the fee in basis points for e.
func (t *CommissionTable) Bps(e Exchange) float64 {
	return t.Rate(e).Bps
}

// Factor returns the multiplicative fee adjustment for e.
func (t *CommissionTable) Factor(e Exchange) float64 {
	return t.Rate(e).Factor()
}

// TaxRate returns the tax-on-commission rate.
func (t *CommissionTable) TaxRate() float64 {
	return t.taxRate
}

// Rates returns a copy of every configured rate.
func (t *CommissionTable) Rates() map[Exchange]float64 {
	out := make(map[Exchange]float64, len(t.bps))
	for e, v := range t.bps {
		out[e] = v
	}
	return out
}

// FeeBreakdown itemizes the fees of one level for display.
type FeeBreakdown struct {
	RawPrice   float64 `json:"raw_price"`
	Commission float64 `json:"commission"`
	Tax        float64 `json:"kdv"`
	NetPrice   float64 `json:"net_price"`
	TotalFees  float64 `json:"total_fees"`
}

// Breakdown computes commission on amount, tax on that commission and the
// price net of both. It is informational and never feeds chain pricing.
func (t *CommissionTable) Breakdown(e Exchange, price, amount float64) FeeBreakdown {
	bps := decimal.NewFromFloat(t.Bps(e))
	p := decimal.NewFromFloat(price)

	commission := decimal.NewFromFloat(amount).Mul(bps).Div(decimal.NewFromFloat(bpsDivisor))
	tax := commission.Mul(decimal.NewFromFloat(t.taxRate))
	total := commission.Add(tax)

	return FeeBreakdown{
		RawPrice:   price,
		Commission: commission.InexactFloat64(),
		Tax:        tax.InexactFloat64(),
		NetPrice:   p.Sub(total).InexactFloat64(),
		TotalFees:  total.InexactFloat64(),
	}
}
