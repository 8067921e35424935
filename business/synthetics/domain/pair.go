package domain

import "github.com/fd1az/synthetic-orderbook/internal/currency"

// PairDerivation records how the synthetic pair was labelled.
type PairDerivation struct {
	BaseMethod  currency.SplitMethod `json:"base_method"`
	QuoteMethod currency.SplitMethod `json:"quote_method"`
}

// IsFallback reports whether either side came from a fallback split.
func (d PairDerivation) IsFallback() bool {
	return d.BaseMethod != currency.SplitQuoteSuffix || d.QuoteMethod != currency.SplitQuoteSuffix
}

// SyntheticPair is the derived pair of a chain.
type SyntheticPair struct {
	Symbol     string
	Base       string
	Quote      string
	Derivation PairDerivation
}

// DerivePair takes the base of the first symbol and the quote of the last.
func DerivePair(registry *currency.Registry, firstSymbol, lastSymbol string) SyntheticPair {
	first := registry.Split(firstSymbol)
	last := registry.Split(lastSymbol)

	return SyntheticPair{
		Symbol: first.Base + last.Quote,
		Base:   first.Base,
		Quote:  last.Quote,
		Derivation: PairDerivation{
			BaseMethod:  first.Method,
			QuoteMethod: last.Method,
		},
	}
}
