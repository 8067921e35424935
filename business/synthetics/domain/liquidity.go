package domain

// Fill is the result of consuming orderbook levels.
type Fill struct {
	Filled   float64
	Consumed []Level
}

// WeightedAverage returns the quantity-weighted price of the consumed
// levels, or 0 when nothing was filled.
func (f Fill) WeightedAverage() float64 {
	if f.Filled <= 0 {
		return 0
	}
	var cost float64
	for _, l := range f.Consumed {
		cost += l.Notional()
	}
	return cost / f.Filled
}

// Consume walks levels best-first taking min(remaining, level quantity) at
// each until target is met or the levels run out. A short fill is not an
// error; callers decide whether it is enough.
func Consume(levels []Level, target float64) Fill {
	if target <= 0 {
		return Fill{}
	}

	remaining := target
	consumed := make([]Level, 0, 4)

	for _, l := range levels {
		if remaining <= 0 {
			break
		}
		take := min(remaining, l.Quantity)
		consumed = append(consumed, Level{Price: l.Price, Quantity: take})
		remaining -= take
	}

	return Fill{Filled: target - remaining, Consumed: consumed}
}
