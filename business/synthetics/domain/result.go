package domain

import "encoding/json"

// ResultNote is attached to every successful result.
const ResultNote = "tax ignored; per-leg commissions applied"

// LegStatus reports one leg of a result.
type LegStatus struct {
	Exchange      Exchange `json:"exchange"`
	Symbol        string   `json:"symbol"`
	CommissionBps float64  `json:"commission_bps"`
	Available     bool     `json:"available"`
	// DefaultCommission is set when CommissionBps came from the default rate.
	DefaultCommission bool `json:"-"`
	// Err holds the fetch failure of an unavailable leg.
	Err error `json:"-"`
}

// Result is the outcome of one synthetic orderbook request.
type Result struct {
	Success       bool             `json:"success"`
	Error         string           `json:"error,omitempty"`
	SyntheticPair string           `json:"synthetic_pair"`
	Base          string           `json:"base"`
	Quote         string           `json:"quote"`
	Asks          []SyntheticLevel `json:"asks"`
	Bids          []SyntheticLevel `json:"bids"`
	Legs          []LegStatus      `json:"legs"`
	Note          string           `json:"note"`
	Derivation    PairDerivation   `json:"-"`
}

// FailedResult builds the validation failure shape.
func FailedResult(msg string) *Result {
	return &Result{
		Success: false,
		Error:   msg,
		Legs:    []LegStatus{},
	}
}

// AllAvailable reports whether every leg was fetched.
func (r *Result) AllAvailable() bool {
	for _, l := range r.Legs {
		if !l.Available {
			return false
		}
	}
	return true
}

// UnavailableLegs counts legs that could not be fetched.
func (r *Result) UnavailableLegs() int {
	n := 0
	for _, l := range r.Legs {
		if !l.Available {
			n++
		}
	}
	return n
}

type failureJSON struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Legs    []LegStatus `json:"legs"`
}

// MarshalJSON writes only success, error and legs for failed results.
func (r *Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		legs := r.Legs
		if legs == nil {
			legs = []LegStatus{}
		}
		return json.Marshal(failureJSON{Success: false, Error: r.Error, Legs: legs})
	}

	type plain Result
	out := plain(*r)
	if out.Asks == nil {
		out.Asks = []SyntheticLevel{}
	}
	if out.Bids == nil {
		out.Bids = []SyntheticLevel{}
	}
	return json.Marshal(out)
}
