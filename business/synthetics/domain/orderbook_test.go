package domain

import "testing"

func TestNewOrderbook_Normalizes(t *testing.T) {
	asks := []Level{lv(2002, 1), lv(2000, 1), lv(0, 5), lv(2001, 0), lv(2001, 2)}
	bids := []Level{lv(1997, 1), lv(1999, 1), lv(-1, 1), lv(1998, 3)}

	ob := NewOrderbook(Binance, "ETHUSDT", asks, bids, 0)

	wantAsks := []float64{2000, 2001, 2002}
	if len(ob.Asks) != len(wantAsks) {
		t.Fatalf("asks = %v, want prices %v", ob.Asks, wantAsks)
	}
	for i, p := range wantAsks {
		if ob.Asks[i].Price != p {
			t.Errorf("ask %d = %v, want %v", i, ob.Asks[i].Price, p)
		}
	}

	wantBids := []float64{1999, 1998, 1997}
	if len(ob.Bids) != len(wantBids) {
		t.Fatalf("bids = %v, want prices %v", ob.Bids, wantBids)
	}
	for i, p := range wantBids {
		if ob.Bids[i].Price != p {
			t.Errorf("bid %d = %v, want %v", i, ob.Bids[i].Price, p)
		}
	}

	if ob.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestNewOrderbook_Limit(t *testing.T) {
	asks := []Level{lv(3, 1), lv(1, 1), lv(2, 1)}
	bids := []Level{lv(0.5, 1), lv(0.9, 1), lv(0.7, 1)}

	ob := NewOrderbook(OKX, "ETH-USDT", asks, bids, 2)

	if len(ob.Asks) != 2 || ob.Asks[0].Price != 1 || ob.Asks[1].Price != 2 {
		t.Errorf("asks = %v", ob.Asks)
	}
	if len(ob.Bids) != 2 || ob.Bids[0].Price != 0.9 || ob.Bids[1].Price != 0.7 {
		t.Errorf("bids = %v", ob.Bids)
	}
}

func TestOrderbook_Best(t *testing.T) {
	var nilBook *Orderbook
	if _, ok := nilBook.BestAsk(); ok {
		t.Error("nil book has best ask")
	}
	if !nilBook.IsEmpty() {
		t.Error("nil book not empty")
	}

	ob := NewOrderbook(Binance, "ETHUSDT", []Level{lv(2000, 1)}, nil, 0)
	if ask, ok := ob.BestAsk(); !ok || ask.Price != 2000 {
		t.Errorf("BestAsk = %v, %v", ask, ok)
	}
	if _, ok := ob.BestBid(); ok {
		t.Error("unexpected best bid")
	}
	if ob.IsEmpty() {
		t.Error("book with asks reported empty")
	}
}

func TestFetchDepth(t *testing.T) {
	if FetchDepth(DefaultDepth) != 40 {
		t.Errorf("FetchDepth(%d) = %d", DefaultDepth, FetchDepth(DefaultDepth))
	}
}

func TestParseExchangeAndSide(t *testing.T) {
	tests := []struct {
		in   string
		want Exchange
		ok   bool
	}{
		{"binance", Binance, true},
		{" CoinTR ", CoinTR, true},
		{"WhiteBit", WhiteBit, true},
		{"okx", OKX, true},
		{"kraken", Exchange("kraken"), false},
		{"", Exchange(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseExchange(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseExchange(%q) = %q, %v", tt.in, got, ok)
			}
		})
	}

	for in, ok := range map[string]bool{"buy": true, "SELL": true, " Buy ": true, "hold": false, "": false} {
		if _, got := ParseSide(in); got != ok {
			t.Errorf("ParseSide(%q) ok = %v, want %v", in, got, ok)
		}
	}
}
