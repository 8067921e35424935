package currency

import "strings"

// SplitMethod tells how a symbol was split.
type SplitMethod string

const (
	// SplitQuoteSuffix matched a known quote currency.
	SplitQuoteSuffix SplitMethod = "quote_suffix"
	// SplitFixedWidth took the last three characters as quote.
	SplitFixedWidth SplitMethod = "fixed_width"
	// SplitUnsplit left the whole symbol as base with an empty quote.
	SplitUnsplit SplitMethod = "unsplit"
)

// minBaseLen is the shortest base accepted after stripping a quote suffix.
const minBaseLen = 2

// Split is a base/quote decomposition of a symbol.
type Split struct {
	Symbol string
	Base   string
	Quote  string
	Method SplitMethod
}

// IsFallback reports whether the split did not come from a known quote.
func (s Split) IsFallback() bool {
	return s.Method != SplitQuoteSuffix
}

// NormalizeSymbol upper-cases s and removes separators ("ETH-USDT",
// "eth_usdt" and "ETH/USDT" all become "ETHUSDT").
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", "/", "").Replace(s)
}

// Split decomposes symbol by matching quote suffixes in rank order. When no
// suffix leaves a base of at least two characters, symbols of six or more
// characters are split three from the end and shorter ones are not split.
func (r *Registry) Split(symbol string) Split {
	s := NormalizeSymbol(symbol)

	for _, q := range r.Quotes() {
		if strings.HasSuffix(s, q.code) {
			base := s[:len(s)-len(q.code)]
			if len(base) >= minBaseLen {
				return Split{Symbol: s, Base: base, Quote: q.code, Method: SplitQuoteSuffix}
			}
		}
	}

	if len(s) >= 6 {
		return Split{Symbol: s, Base: s[:len(s)-3], Quote: s[len(s)-3:], Method: SplitFixedWidth}
	}

	return Split{Symbol: s, Base: s, Quote: "", Method: SplitUnsplit}
}

// Format renders a split with the given separator, e.g. "ETH_USDT". When the
// symbol could not be split the normalized symbol is returned.
func (s Split) Format(sep string) string {
	if s.Quote == "" {
		return s.Symbol
	}
	return s.Base + sep + s.Quote
}
