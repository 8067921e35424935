package currency

import "testing"

func TestRegistry_Split(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name       string
		symbol     string
		wantBase   string
		wantQuote  string
		wantMethod SplitMethod
	}{
		{"usdt_quote", "ETHUSDT", "ETH", "USDT", SplitQuoteSuffix},
		{"try_quote", "USDTTRY", "USDT", "TRY", SplitQuoteSuffix},
		{"eur_quote", "USDTEUR", "USDT", "EUR", SplitQuoteSuffix},
		{"btc_quote", "ETHBTC", "ETH", "BTC", SplitQuoteSuffix},
		{"dash_separator", "eth-usdt", "ETH", "USDT", SplitQuoteSuffix},
		{"underscore_separator", "BTC_TRY", "BTC", "TRY", SplitQuoteSuffix},
		{"usdt_wins_over_usd", "SOLUSDT", "SOL", "USDT", SplitQuoteSuffix},
		{"plain_usd", "BTCUSD", "BTC", "USD", SplitQuoteSuffix},
		// "XUSDT" ends in USDT but leaves a one-letter base; nothing else matches.
		{"short_base_falls_back_unsplit", "XUSDT", "XUSDT", "", SplitUnsplit},
		{"fixed_width_fallback", "ABCDEFGH", "ABCDE", "FGH", SplitFixedWidth},
		{"short_unknown_unsplit", "ABCDE", "ABCDE", "", SplitUnsplit},
		{"empty", "", "", "", SplitUnsplit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Split(tt.symbol)
			if got.Base != tt.wantBase || got.Quote != tt.wantQuote {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tt.symbol, got.Base, got.Quote, tt.wantBase, tt.wantQuote)
			}
			if got.Method != tt.wantMethod {
				t.Errorf("Split(%q).Method = %s, want %s", tt.symbol, got.Method, tt.wantMethod)
			}
			if got.IsFallback() != (tt.wantMethod != SplitQuoteSuffix) {
				t.Errorf("Split(%q).IsFallback() = %v", tt.symbol, got.IsFallback())
			}
		})
	}
}

func TestSplit_Format(t *testing.T) {
	r := DefaultRegistry()

	if got := r.Split("ETHUSDT").Format("_"); got != "ETH_USDT" {
		t.Errorf("Format(_) = %q, want ETH_USDT", got)
	}
	if got := r.Split("usdt-try").Format("-"); got != "USDT-TRY" {
		t.Errorf("Format(-) = %q, want USDT-TRY", got)
	}
	if got := r.Split("ABCDE").Format("-"); got != "ABCDE" {
		t.Errorf("Format on unsplit = %q, want ABCDE", got)
	}
}

func TestRegistry_QuotesOrder(t *testing.T) {
	want := []string{"USDT", "TRY", "USD", "EUR", "BTC", "ETH"}
	quotes := DefaultRegistry().Quotes()

	if len(quotes) != len(want) {
		t.Fatalf("got %d quotes, want %d", len(quotes), len(want))
	}
	for i, q := range quotes {
		if q.Code() != want[i] {
			t.Errorf("quote[%d] = %s, want %s", i, q.Code(), want[i])
		}
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	r := NewRegistry()
	r.Register(New("ABC", "", KindCrypto))
	r.Register(New("abc", "", KindCrypto))
}

func TestRegistry_Get(t *testing.T) {
	r := DefaultRegistry()
	c, ok := r.Get("try")
	if !ok {
		t.Fatal("TRY not found")
	}
	if c.Name() != "Turkish Lira" || c.Kind() != KindFiat || !c.IsQuote() {
		t.Errorf("unexpected TRY metadata: %s %s %v", c.Name(), c.Kind(), c.IsQuote())
	}
	usdc, _ := r.Get("USDC")
	if usdc.IsQuote() {
		t.Error("USDC must not be a quote currency")
	}
}
