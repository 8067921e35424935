package domain

import (
	"math"
	"reflect"
	"testing"
)

func mustTable(t testing.TB) *CommissionTable {
	t.Helper()
	table, err := NewCommissionTable(map[Exchange]float64{
		Binance: 10,
		CoinTR:  15,
	}, DefaultCommissionBps, 0.20)
	if err != nil {
		t.Fatalf("NewCommissionTable: %v", err)
	}
	return table
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func lv(price, qty float64) Level {
	return Level{Price: price, Quantity: qty}
}

func TestChainPricer_Asks(t *testing.T) {
	pricer := NewChainPricer(mustTable(t), DefaultMinFillRatio)

	tests := []struct {
		name  string
		legs  []LegBook
		depth int
		want  []SyntheticLevel
	}{
		{
			// 2000 × 1.001 × 34.50 × 1.0015
			name: "two_leg_compounding",
			legs: []LegBook{
				{Exchange: Binance, Asks: []Level{lv(2000, 1)}},
				{Exchange: CoinTR, Asks: []Level{lv(34.50, 10000)}},
			},
			depth: 20,
			want:  []SyntheticLevel{{Price: 69172.6035, Amount: 1}},
		},
		{
			// 1000 @ 34.50 + 1002 @ 34.60 = 69169.2 TRY, × 1.0015
			name: "weighted_average_across_levels",
			legs: []LegBook{
				{Exchange: Binance, Asks: []Level{lv(2000, 1)}},
				{Exchange: CoinTR, Asks: []Level{lv(34.50, 1000), lv(34.60, 5000)}},
			},
			depth: 20,
			want:  []SyntheticLevel{{Price: 69272.9538, Amount: 1}},
		},
		{
			// 1950 of 2002 USDT is above the 95% gate; amount shrinks to 1950/2002.
			name: "bottleneck_limits_amount",
			legs: []LegBook{
				{Exchange: Binance, Asks: []Level{lv(2000, 1)}},
				{Exchange: CoinTR, Asks: []Level{lv(34.50, 1950)}},
			},
			depth: 20,
			want:  []SyntheticLevel{{Price: 69172.6035, Amount: 0.97402597}},
		},
		{
			name: "slippage_gate_drops_large_start",
			legs: []LegBook{
				{Exchange: Binance, Asks: []Level{lv(2000, 1), lv(2001, 100)}},
				{Exchange: CoinTR, Asks: []Level{lv(34.50, 5000)}},
			},
			depth: 20,
			want:  []SyntheticLevel{{Price: 69172.6035, Amount: 1}},
		},
		{
			name: "three_leg_chain",
			legs: []LegBook{
				{Exchange: Binance, Asks: []Level{lv(0.05, 2)}},
				{Exchange: Binance, Asks: []Level{lv(60000, 1)}},
				{Exchange: CoinTR, Asks: []Level{lv(34.50, 1_000_000)}},
			},
			depth: 5,
			want:  []SyntheticLevel{{Price: 103862.66415525, Amount: 2}},
		},
		{
			name: "unknown_exchange_uses_default_rate",
			legs: []LegBook{
				{Exchange: OKX, Asks: []Level{lv(2000, 1)}},
				{Exchange: CoinTR, Asks: []Level{lv(34.50, 10000)}},
			},
			depth: 20,
			// OKX is not in the table: 10 bps default, same as binance.
			want: []SyntheticLevel{{Price: 69172.6035, Amount: 1}},
		},
		{
			name: "empty_later_leg_yields_nothing",
			legs: []LegBook{
				{Exchange: Binance, Asks: []Level{lv(2000, 1)}},
				{Exchange: CoinTR},
			},
			depth: 20,
			want:  []SyntheticLevel{},
		},
		{
			name:  "no_legs",
			legs:  nil,
			depth: 20,
			want:  []SyntheticLevel{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricer.Asks(tt.legs, tt.depth)
			assertLevels(t, got, tt.want)
		})
	}
}

func TestChainPricer_AsksDepthAndOrder(t *testing.T) {
	pricer := NewChainPricer(mustTable(t), DefaultMinFillRatio)

	legs := []LegBook{
		{Exchange: Binance, Asks: []Level{lv(2000, 1), lv(2001, 2), lv(2002, 3), lv(2003, 4), lv(2004, 5)}},
		{Exchange: CoinTR, Asks: []Level{lv(34.50, 1000), lv(34.51, 2000), lv(34.52, 3000), lv(34.53, 4000), lv(34.54, 5000)}},
	}

	got := pricer.Asks(legs, 2)
	if len(got) != 2 {
		t.Fatalf("got %d levels, want 2", len(got))
	}
	if got[0].Price >= got[1].Price {
		t.Errorf("asks not ascending: %v", got)
	}
	if got[0].Price < 60000 || got[0].Price > 80000 {
		t.Errorf("first ask %v outside expected ETH/TRY range", got[0].Price)
	}
	if got[0].Amount != 1 {
		t.Errorf("first amount = %v, want 1", got[0].Amount)
	}

	all := pricer.Asks(legs, 20)
	for i := 1; i < len(all); i++ {
		if all[i-1].Price > all[i].Price {
			t.Fatalf("asks not sorted at %d: %v", i, all)
		}
	}
}

func TestChainPricer_Bids(t *testing.T) {
	pricer := NewChainPricer(mustTable(t), DefaultMinFillRatio)

	tests := []struct {
		name  string
		legs  []LegBook
		depth int
		want  []SyntheticLevel
	}{
		{
			// 1999 × 1.001 × 34.49 × 1.0015
			name: "two_leg",
			legs: []LegBook{
				{Exchange: Binance, Bids: []Level{lv(1999, 1)}},
				{Exchange: CoinTR, Bids: []Level{lv(34.49, 10000)}},
			},
			depth: 20,
			want:  []SyntheticLevel{{Price: 69117.97719327, Amount: 1}},
		},
		{
			name: "descending_order",
			legs: []LegBook{
				{Exchange: Binance, Bids: []Level{lv(1998, 1), lv(1999, 1)}},
				{Exchange: CoinTR, Bids: []Level{lv(34.49, 10000)}},
			},
			depth: 20,
			want: []SyntheticLevel{
				{Price: 69117.97719327, Amount: 1},
				{Price: 69083.40091653, Amount: 1},
			},
		},
		{
			// Only the first 2×depth bids of the second leg count: 1000 of 2001 USDT.
			name: "later_leg_truncated_to_fetch_depth",
			legs: []LegBook{
				{Exchange: Binance, Bids: []Level{lv(1999, 1)}},
				{Exchange: CoinTR, Bids: []Level{lv(34.49, 500), lv(34.48, 500), lv(34.47, 10000)}},
			},
			depth: 1,
			want:  []SyntheticLevel{},
		},
		{
			name: "slippage_gate",
			legs: []LegBook{
				{Exchange: Binance, Bids: []Level{lv(1999, 1), lv(1998, 50)}},
				{Exchange: CoinTR, Bids: []Level{lv(34.49, 10000)}},
			},
			depth: 20,
			want:  []SyntheticLevel{{Price: 69117.97719327, Amount: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricer.Bids(tt.legs, tt.depth)
			assertLevels(t, got, tt.want)
		})
	}
}

func TestChainPricer_AsksLaterLegNotTruncated(t *testing.T) {
	pricer := NewChainPricer(mustTable(t), DefaultMinFillRatio)

	legs := []LegBook{
		{Exchange: Binance, Asks: []Level{lv(2000, 1)}},
		{Exchange: CoinTR, Asks: []Level{lv(34.50, 500), lv(34.51, 500), lv(34.52, 10000)}},
	}

	if got := pricer.Asks(legs, 1); len(got) != 1 {
		t.Errorf("got %d asks, want 1 (ask side uses the full later book)", len(got))
	}
}

func TestChainPricer_Idempotent(t *testing.T) {
	pricer := NewChainPricer(mustTable(t), DefaultMinFillRatio)

	legs := []LegBook{
		{
			Exchange: Binance,
			Asks:     []Level{lv(2000, 1), lv(2001, 2), lv(2002, 3)},
			Bids:     []Level{lv(1999, 1), lv(1998, 2), lv(1997, 3)},
		},
		{
			Exchange: CoinTR,
			Asks:     []Level{lv(34.50, 1000), lv(34.51, 2000), lv(34.52, 3000)},
			Bids:     []Level{lv(34.49, 1000), lv(34.48, 2000), lv(34.47, 3000)},
		},
	}

	firstAsks, firstBids := pricer.Asks(legs, 10), pricer.Bids(legs, 10)
	secondAsks, secondBids := pricer.Asks(legs, 10), pricer.Bids(legs, 10)

	if !reflect.DeepEqual(firstAsks, secondAsks) || !reflect.DeepEqual(firstBids, secondBids) {
		t.Error("identical inputs produced different levels")
	}
}

func TestNewChainPricer_InvalidRatioUsesDefault(t *testing.T) {
	for _, ratio := range []float64{0, -1, 1.5} {
		p := NewChainPricer(mustTable(t), ratio)
		if p.minFillRatio != DefaultMinFillRatio {
			t.Errorf("ratio %v: got %v, want default", ratio, p.minFillRatio)
		}
	}
}

func assertLevels(t *testing.T, got, want []SyntheticLevel) {
	t.Helper()
	if got == nil {
		t.Fatal("levels must never be nil")
	}
	if len(got) != len(want) {
		t.Fatalf("got %d levels %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if !approx(got[i].Price, want[i].Price) || !approx(got[i].Amount, want[i].Amount) {
			t.Errorf("level %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func BenchmarkChainPricer_Asks(b *testing.B) {
	pricer := NewChainPricer(mustTable(b), DefaultMinFillRatio)

	asks1 := make([]Level, 200)
	asks2 := make([]Level, 200)
	for i := range asks1 {
		asks1[i] = lv(2000+float64(i), 1+float64(i%5))
		asks2[i] = lv(34.50+float64(i)/100, 1000+float64(i*10))
	}
	legs := []LegBook{{Exchange: Binance, Asks: asks1}, {Exchange: CoinTR, Asks: asks2}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pricer.Asks(legs, 100)
	}
}
