package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// DefaultMinFillRatio is the share of a leg's required amount that must be
// fillable for a candidate chain to survive.
const DefaultMinFillRatio = 0.95

const roundPlaces = 8

// SyntheticLevel is one output level, amount in units of the chain's base.
type SyntheticLevel struct {
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

// LegBook is the fetched liquidity of one leg, in chain order.
type LegBook struct {
	Exchange Exchange
	Asks     []Level
	Bids     []Level
}

// LegBookFrom adapts a normalized orderbook.
func LegBookFrom(ob *Orderbook) LegBook {
	return LegBook{Exchange: ob.Exchange, Asks: ob.Asks, Bids: ob.Bids}
}

// ChainPricer turns a list of leg books into synthetic levels.
type ChainPricer struct {
	commissions  *CommissionTable
	minFillRatio float64
}

// NewChainPricer creates a pricer. A ratio outside (0, 1] uses the default.
func NewChainPricer(commissions *CommissionTable, minFillRatio float64) *ChainPricer {
	if minFillRatio <= 0 || minFillRatio > 1 {
		minFillRatio = DefaultMinFillRatio
	}
	return &ChainPricer{commissions: commissions, minFillRatio: minFillRatio}
}

// Asks prices buying the chain's base by walking every leg's asks in order.
// Each of up to 2×depth starting asks of leg one is carried through the chain;
// a candidate is dropped when any later leg fills less than the minimum
// ratio of what it needs. Output is ascending by price, at most depth levels.
func (p *ChainPricer) Asks(legs []LegBook, depth int) []SyntheticLevel {
	return p.price(legs, depth, func(b LegBook) []Level { return b.Asks }, false, ascending)
}

// Bids prices selling the chain's base through every leg's bids. Later legs
// only see their first 2×depth bids. Output is descending by price.
func (p *ChainPricer) Bids(legs []LegBook, depth int) []SyntheticLevel {
	return p.price(legs, depth, func(b LegBook) []Level { return b.Bids }, true, descending)
}

type levelOrder func(a, b SyntheticLevel) bool

func ascending(a, b SyntheticLevel) bool  { return a.Price < b.Price }
func descending(a, b SyntheticLevel) bool { return a.Price > b.Price }

func (p *ChainPricer) price(
	legs []LegBook,
	depth int,
	side func(LegBook) []Level,
	truncateLater bool,
	order levelOrder,
) []SyntheticLevel {
	if len(legs) == 0 || depth <= 0 {
		return []SyntheticLevel{}
	}

	starts := head(side(legs[0]), FetchDepth(depth))
	firstFactor := p.commissions.Factor(legs[0].Exchange)

	rest := make([][]Level, len(legs)-1)
	factors := make([]float64, len(legs)-1)
	for i, leg := range legs[1:] {
		levels := side(leg)
		if truncateLater {
			levels = head(levels, FetchDepth(depth))
		}
		rest[i] = levels
		factors[i] = p.commissions.Factor(leg.Exchange)
	}

	out := make([]SyntheticLevel, 0, depth)
	for _, start := range starts {
		if lvl, ok := p.walk(start, firstFactor, rest, factors); ok {
			out = append(out, lvl)
			if len(out) >= depth {
				break
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return order(out[i], out[j]) })
	if len(out) > depth {
		out = out[:depth]
	}
	return out
}

// walk carries one starting level through the remaining legs.
func (p *ChainPricer) walk(start Level, firstFactor float64, rest [][]Level, factors []float64) (SyntheticLevel, bool) {
	amount := start.Quantity
	entry := start.Price * firstFactor
	chain := entry
	need := amount * entry

	for i, levels := range rest {
		fill := Consume(levels, need)
		if fill.Filled <= 0 || fill.Filled < need*p.minFillRatio {
			return SyntheticLevel{}, false
		}

		legPrice := fill.WeightedAverage() * factors[i]
		chain *= legPrice
		need = fill.Filled * legPrice
		amount = min(amount, fill.Filled/entry)
	}

	if amount <= 0 {
		return SyntheticLevel{}, false
	}

	return SyntheticLevel{Price: round8(chain), Amount: round8(amount)}, true
}

func round8(v float64) float64 {
	return decimal.NewFromFloat(v).Round(roundPlaces).InexactFloat64()
}
