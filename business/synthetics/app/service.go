package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/internal/apm"
	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
)

const instrumentationName = "github.com/fd1az/synthetic-orderbook/business/synthetics"

// Config holds the request limits of the service.
type Config struct {
	DefaultDepth int
	MaxDepth     int
	MinLegs      int
	MaxLegs      int
	MinFillRatio float64
	// LegTimeout bounds each leg fetch; zero leaves it to the provider.
	LegTimeout time.Duration
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		DefaultDepth: domain.DefaultDepth,
		MaxDepth:     domain.MaxDepth,
		MinLegs:      domain.MinLegs,
		MaxLegs:      domain.MaxLegs,
		MinFillRatio: domain.DefaultMinFillRatio,
		LegTimeout:   10 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DefaultDepth <= 0 {
		c.DefaultDepth = d.DefaultDepth
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
	if c.DefaultDepth > c.MaxDepth {
		c.DefaultDepth = c.MaxDepth
	}
	if c.MinLegs < 2 {
		c.MinLegs = d.MinLegs
	}
	if c.MaxLegs < c.MinLegs {
		c.MaxLegs = d.MaxLegs
	}
	if c.MinFillRatio <= 0 || c.MinFillRatio > 1 {
		c.MinFillRatio = d.MinFillRatio
	}
	return c
}

// LegRequest is one unvalidated leg as received from a caller.
type LegRequest struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
}

// Request asks for a synthetic orderbook over an ordered chain of legs.
type Request struct {
	Legs  []LegRequest `json:"legs"`
	Depth int          `json:"depth"`
}

// Service builds synthetic orderbooks.
type Service struct {
	cfg         Config
	provider    OrderbookProvider
	commissions *domain.CommissionTable
	pricer      *domain.ChainPricer
	registry    *currency.Registry
	log         logger.LoggerInterface
	tracer      apm.Tracer
	metrics     *instruments
}

// NewService creates a Service. The commission table is shared read-only by
// every request.
func NewService(
	cfg Config,
	provider OrderbookProvider,
	commissions *domain.CommissionTable,
	registry *currency.Registry,
	log logger.LoggerInterface,
) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("orderbook provider is required")
	}
	if commissions == nil {
		return nil, fmt.Errorf("commission table is required")
	}
	if registry == nil {
		registry = currency.DefaultRegistry()
	}

	m, err := newInstruments(otel.Meter(instrumentationName))
	if err != nil {
		return nil, fmt.Errorf("create instruments: %w", err)
	}

	cfg = cfg.withDefaults()

	return &Service{
		cfg:         cfg,
		provider:    provider,
		commissions: commissions,
		pricer:      domain.NewChainPricer(commissions, cfg.MinFillRatio),
		registry:    registry,
		log:         log,
		tracer:      apm.NewTracer(instrumentationName),
		metrics:     m,
	}, nil
}

// Config returns the effective limits.
func (s *Service) Config() Config {
	return s.cfg
}

// Commissions returns the shared commission table.
func (s *Service) Commissions() *domain.CommissionTable {
	return s.commissions
}

// Create validates req, fetches every leg concurrently and prices both sides
// of the chain. A validation failure returns the failure result together with
// an INVALID_SYNTHETIC_REQUEST error; unavailable legs are reported in the
// result and never returned as an error.
func (s *Service) Create(ctx context.Context, req Request) (*domain.Result, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "synthetics.Create")
	defer span.End()

	start := time.Now()

	legs, depth, err := s.validate(req)
	if err != nil {
		span.NoticeError(err)
		s.metrics.request(ctx, outcomeInvalid)
		s.log.Warn(ctx, "synthetic request rejected", err.LogArgs()...)
		return domain.FailedResult(err.Message), err
	}

	pair := domain.DerivePair(s.registry, legs[0].Symbol, legs[len(legs)-1].Symbol)
	if pair.Derivation.IsFallback() {
		s.log.Warn(ctx, "synthetic pair derived by fallback split",
			"pair", pair.Symbol,
			"base_method", pair.Derivation.BaseMethod,
			"quote_method", pair.Derivation.QuoteMethod,
		)
	}

	span.SetAttributes(
		attribute.String("synthetic.pair", pair.Symbol),
		attribute.Int("synthetic.legs", len(legs)),
		attribute.Int("synthetic.depth", depth),
	)

	books := s.fetchAll(ctx, legs, domain.FetchDepth(depth))

	result := &domain.Result{
		Success:       true,
		SyntheticPair: pair.Symbol,
		Base:          pair.Base,
		Quote:         pair.Quote,
		Asks:          []domain.SyntheticLevel{},
		Bids:          []domain.SyntheticLevel{},
		Legs:          make([]domain.LegStatus, len(legs)),
		Note:          domain.ResultNote,
		Derivation:    pair.Derivation,
	}

	legBooks := make([]domain.LegBook, len(legs))
	for i, leg := range legs {
		rate := s.commissions.Rate(leg.Exchange)
		status := domain.LegStatus{
			Exchange:          leg.Exchange,
			Symbol:            leg.Symbol,
			CommissionBps:     rate.Bps,
			DefaultCommission: rate.Defaulted,
			Available:         books[i].err == nil && books[i].book != nil,
			Err:               books[i].err,
		}
		result.Legs[i] = status

		if !status.Available {
			s.metrics.legUnavailable(ctx, leg.Exchange.String())
			s.log.Warn(ctx, "leg unavailable",
				"leg", i+1,
				"exchange", leg.Exchange,
				"symbol", leg.Symbol,
				"error", books[i].err,
			)
			continue
		}
		legBooks[i] = domain.LegBookFrom(books[i].book)
	}

	outcome := outcomeUnavailable
	if result.AllAvailable() {
		outcome = outcomeOK
		result.Asks = s.pricer.Asks(legBooks, depth)
		result.Bids = s.pricer.Bids(legBooks, depth)
	} else {
		span.AddEvent("chain not priced: leg unavailable")
	}

	s.metrics.request(ctx, outcome)
	s.metrics.emitted(ctx, "ask", len(result.Asks))
	s.metrics.emitted(ctx, "bid", len(result.Bids))
	s.metrics.observe(ctx, time.Since(start).Seconds(), pair.Symbol)

	s.log.Info(ctx, "synthetic orderbook built",
		"pair", pair.Symbol,
		"legs", len(legs),
		"depth", depth,
		"asks", len(result.Asks),
		"bids", len(result.Bids),
		"unavailable", result.UnavailableLegs(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}

// validate checks the leg count first, then collects every per-leg problem.
func (s *Service) validate(req Request) ([]domain.Leg, int, *apperror.AppError) {
	if len(req.Legs) < s.cfg.MinLegs {
		return nil, 0, apperror.Validation(apperror.CodeInvalidSyntheticRequest,
			fmt.Sprintf("At least %d legs required", s.cfg.MinLegs))
	}
	if len(req.Legs) > s.cfg.MaxLegs {
		return nil, 0, apperror.Validation(apperror.CodeInvalidSyntheticRequest,
			fmt.Sprintf("Maximum %d legs allowed", s.cfg.MaxLegs))
	}

	var problems []string
	legs := make([]domain.Leg, 0, len(req.Legs))

	for i, raw := range req.Legs {
		n := i + 1
		var leg domain.Leg
		valid := true

		switch name := strings.TrimSpace(raw.Exchange); {
		case name == "":
			problems = append(problems, fmt.Sprintf("Leg %d: exchange is required", n))
			valid = false
		default:
			exchange, ok := domain.ParseExchange(name)
			if !ok {
				problems = append(problems, fmt.Sprintf("Leg %d: unsupported exchange '%s'", n, name))
				valid = false
			}
			leg.Exchange = exchange
		}

		if symbol := currency.NormalizeSymbol(raw.Symbol); symbol == "" {
			problems = append(problems, fmt.Sprintf("Leg %d: symbol is required", n))
			valid = false
		} else {
			leg.Symbol = symbol
		}

		switch side := strings.TrimSpace(raw.Side); {
		case side == "":
			problems = append(problems, fmt.Sprintf("Leg %d: side is required", n))
			valid = false
		default:
			parsed, ok := domain.ParseSide(side)
			if !ok {
				problems = append(problems, fmt.Sprintf("Leg %d: side must be 'buy' or 'sell'", n))
				valid = false
			}
			leg.Side = parsed
		}

		if valid {
			legs = append(legs, leg)
		}
	}

	if req.Depth < 0 {
		problems = append(problems, fmt.Sprintf("Depth must be between 1 and %d", s.cfg.MaxDepth))
	}

	if len(problems) > 0 {
		return nil, 0, apperror.Validation(apperror.CodeInvalidSyntheticRequest, strings.Join(problems, "; "))
	}

	return legs, s.effectiveDepth(req.Depth), nil
}

func (s *Service) effectiveDepth(depth int) int {
	switch {
	case depth == 0:
		return s.cfg.DefaultDepth
	case depth > s.cfg.MaxDepth:
		return s.cfg.MaxDepth
	default:
		return depth
	}
}

type fetched struct {
	book *domain.Orderbook
	err  error
}

type bookKey struct {
	exchange domain.Exchange
	symbol   string
}

// fetchAll issues one fetch per distinct (exchange, symbol) and waits for all
// of them. A failing or slow fetch never cancels its siblings.
func (s *Service) fetchAll(ctx context.Context, legs []domain.Leg, fetchDepth int) []fetched {
	keys := make([]bookKey, 0, len(legs))
	index := make(map[bookKey]int, len(legs))
	for _, leg := range legs {
		k := bookKey{exchange: leg.Exchange, symbol: leg.Symbol}
		if _, seen := index[k]; !seen {
			index[k] = len(keys)
			keys = append(keys, k)
		}
	}

	unique := make([]fetched, len(keys))
	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func(i int, k bookKey) {
			defer wg.Done()
			unique[i] = s.fetchOne(ctx, k, fetchDepth)
		}(i, k)
	}
	wg.Wait()

	out := make([]fetched, len(legs))
	for i, leg := range legs {
		out[i] = unique[index[bookKey{exchange: leg.Exchange, symbol: leg.Symbol}]]
	}
	return out
}

func (s *Service) fetchOne(ctx context.Context, k bookKey, depth int) (res fetched) {
	defer func() {
		if r := recover(); r != nil {
			res = fetched{err: fmt.Errorf("orderbook provider panicked: %v", r)}
		}
	}()

	if s.cfg.LegTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.LegTimeout)
		defer cancel()
	}

	book, err := s.provider.FetchOrderbook(ctx, k.exchange, k.symbol, depth)
	if err == nil && book == nil {
		err = apperror.New(apperror.CodeInvalidOrderbook,
			apperror.WithContext(k.exchange.String()+" "+k.symbol),
			apperror.WithStatusCode(http.StatusBadGateway),
		)
	}
	return fetched{book: book, err: err}
}

// BookView is a single venue orderbook with the fee breakdown of its best
// levels.
type BookView struct {
	*domain.Orderbook
	CommissionBps float64             `json:"commission_bps"`
	BestAskFees   *domain.FeeBreakdown `json:"best_ask_fees,omitempty"`
	BestBidFees   *domain.FeeBreakdown `json:"best_bid_fees,omitempty"`
}

// Orderbook fetches one venue book without chaining it. Fees are per unit
// of price.
func (s *Service) Orderbook(ctx context.Context, exchange, symbol string, limit int) (*BookView, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "synthetics.Orderbook")
	defer span.End()

	e, ok := domain.ParseExchange(exchange)
	if !ok {
		err := apperror.New(apperror.CodeUnsupportedExchange,
			apperror.WithMessage(fmt.Sprintf("unsupported exchange '%s'", exchange)))
		span.NoticeError(err)
		return nil, err
	}

	sym := currency.NormalizeSymbol(symbol)
	if sym == "" {
		return nil, apperror.Validation(apperror.CodeRequiredField, "symbol is required")
	}
	if limit < 0 {
		return nil, apperror.Validation(apperror.CodeInvalidInput, "limit cannot be negative")
	}

	res := s.fetchOne(ctx, bookKey{exchange: e, symbol: sym}, s.effectiveDepth(limit))
	if res.err != nil {
		span.NoticeError(res.err)
		if apperror.IsAppError(res.err) {
			return nil, apperror.Wrap(res.err, apperror.CodeOrderbookFetchFailed, e.String()+" "+sym)
		}
		return nil, apperror.External(apperror.CodeOrderbookFetchFailed, e.String()+" "+sym, res.err)
	}

	view := &BookView{Orderbook: res.book, CommissionBps: s.commissions.Bps(e)}
	if ask, ok := res.book.BestAsk(); ok {
		fees := s.commissions.Breakdown(e, ask.Price, ask.Price)
		view.BestAskFees = &fees
	}
	if bid, ok := res.book.BestBid(); ok {
		fees := s.commissions.Breakdown(e, bid.Price, bid.Price)
		view.BestBidFees = &fees
	}
	return view, nil
}
