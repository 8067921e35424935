package app

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/currency"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

// fakeProvider serves canned books keyed by "exchange:SYMBOL".
type fakeProvider struct {
	mu     sync.Mutex
	books  map[string]*domain.Orderbook
	errs   map[string]error
	delay  map[string]time.Duration
	calls  map[string]int
	depths []int
	total  atomic.Int32
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		books: make(map[string]*domain.Orderbook),
		errs:  make(map[string]error),
		delay: make(map[string]time.Duration),
		calls: make(map[string]int),
	}
}

func (f *fakeProvider) set(e domain.Exchange, symbol string, asks, bids []domain.Level) {
	f.books[string(e)+":"+symbol] = domain.NewOrderbook(e, symbol, asks, bids, 0)
}

func (f *fakeProvider) FetchOrderbook(ctx context.Context, e domain.Exchange, symbol string, depth int) (*domain.Orderbook, error) {
	key := string(e) + ":" + symbol
	f.total.Add(1)

	f.mu.Lock()
	f.calls[key]++
	f.depths = append(f.depths, depth)
	book, err, delay := f.books[key], f.errs[key], f.delay[key]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errors.New("no book for " + key)
	}
	return book, nil
}

func newTestService(t *testing.T, p OrderbookProvider, cfg Config) *Service {
	t.Helper()
	table, err := domain.NewCommissionTable(map[domain.Exchange]float64{
		domain.Binance:  10,
		domain.CoinTR:   15,
		domain.WhiteBit: 10,
		domain.OKX:      10,
	}, domain.DefaultCommissionBps, 0.20)
	if err != nil {
		t.Fatalf("commission table: %v", err)
	}
	svc, err := NewService(cfg, p, table, currency.DefaultRegistry(), &mockLogger{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func ethTryProvider() *fakeProvider {
	p := newFakeProvider()
	p.set(domain.Binance, "ETHUSDT",
		[]domain.Level{{Price: 2000, Quantity: 1}},
		[]domain.Level{{Price: 1999, Quantity: 1}},
	)
	p.set(domain.CoinTR, "USDTTRY",
		[]domain.Level{{Price: 34.50, Quantity: 10000}},
		[]domain.Level{{Price: 34.49, Quantity: 10000}},
	)
	return p
}

func ethTryRequest() Request {
	return Request{
		Legs: []LegRequest{
			{Exchange: "binance", Symbol: "ETHUSDT", Side: "buy"},
			{Exchange: "cointr", Symbol: "USDTTRY", Side: "buy"},
		},
		Depth: 20,
	}
}

func TestService_Create(t *testing.T) {
	svc := newTestService(t, ethTryProvider(), DefaultConfig())

	res, err := svc.Create(context.Background(), ethTryRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !res.Success {
		t.Fatal("expected success")
	}
	if res.SyntheticPair != "ETHTRY" || res.Base != "ETH" || res.Quote != "TRY" {
		t.Errorf("pair = %s (%s/%s)", res.SyntheticPair, res.Base, res.Quote)
	}
	if res.Note != domain.ResultNote {
		t.Errorf("note = %q", res.Note)
	}

	if len(res.Asks) != 1 || math.Abs(res.Asks[0].Price-69172.6035) > 1e-6 || res.Asks[0].Amount != 1 {
		t.Errorf("asks = %+v", res.Asks)
	}
	if len(res.Bids) != 1 || math.Abs(res.Bids[0].Price-69117.97719327) > 1e-6 {
		t.Errorf("bids = %+v", res.Bids)
	}

	wantLegs := []struct {
		exchange domain.Exchange
		symbol   string
		bps      float64
	}{
		{domain.Binance, "ETHUSDT", 10},
		{domain.CoinTR, "USDTTRY", 15},
	}
	if len(res.Legs) != len(wantLegs) {
		t.Fatalf("legs = %+v", res.Legs)
	}
	for i, want := range wantLegs {
		got := res.Legs[i]
		if got.Exchange != want.exchange || got.Symbol != want.symbol || got.CommissionBps != want.bps || !got.Available {
			t.Errorf("leg %d = %+v", i, got)
		}
	}
}

func TestService_CreateValidation(t *testing.T) {
	leg := LegRequest{Exchange: "binance", Symbol: "ETHUSDT", Side: "buy"}

	tests := []struct {
		name    string
		req     Request
		wantMsg []string
	}{
		{
			name:    "one_leg",
			req:     Request{Legs: []LegRequest{leg}},
			wantMsg: []string{"At least 2 legs required"},
		},
		{
			name:    "no_legs",
			req:     Request{},
			wantMsg: []string{"At least 2 legs required"},
		},
		{
			name:    "seven_legs",
			req:     Request{Legs: []LegRequest{leg, leg, leg, leg, leg, leg, leg}},
			wantMsg: []string{"Maximum 6 legs allowed"},
		},
		{
			name: "missing_side",
			req: Request{Legs: []LegRequest{
				leg,
				{Exchange: "cointr", Symbol: "USDTTRY"},
			}},
			wantMsg: []string{"Leg 2: side is required"},
		},
		{
			name: "missing_exchange_and_symbol",
			req: Request{Legs: []LegRequest{
				{Symbol: "ETHUSDT", Side: "buy"},
				{Exchange: "cointr", Side: "buy"},
			}},
			wantMsg: []string{"Leg 1: exchange is required", "Leg 2: symbol is required"},
		},
		{
			name: "unsupported_exchange",
			req: Request{Legs: []LegRequest{
				leg,
				{Exchange: "kraken", Symbol: "USDTTRY", Side: "buy"},
			}},
			wantMsg: []string{"Leg 2: unsupported exchange 'kraken'"},
		},
		{
			name: "bad_side",
			req: Request{Legs: []LegRequest{
				{Exchange: "binance", Symbol: "ETHUSDT", Side: "hold"},
				leg,
			}},
			wantMsg: []string{"Leg 1: side must be 'buy' or 'sell'"},
		},
		{
			name:    "negative_depth",
			req:     Request{Legs: []LegRequest{leg, leg}, Depth: -1},
			wantMsg: []string{"Depth must be between 1 and 100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFakeProvider()
			svc := newTestService(t, p, DefaultConfig())

			res, err := svc.Create(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if apperror.GetCode(err) != apperror.CodeInvalidSyntheticRequest {
				t.Errorf("code = %s", apperror.GetCode(err))
			}
			if apperror.StatusCode(err) != 400 {
				t.Errorf("status = %d", apperror.StatusCode(err))
			}
			if res == nil || res.Success {
				t.Fatalf("result = %+v", res)
			}
			if len(res.Legs) != 0 {
				t.Errorf("failure carries legs: %+v", res.Legs)
			}
			for _, want := range tt.wantMsg {
				if !strings.Contains(res.Error, want) {
					t.Errorf("error %q missing %q", res.Error, want)
				}
			}
			if p.total.Load() != 0 {
				t.Errorf("validation failure fetched %d books", p.total.Load())
			}
		})
	}
}

func TestService_CreateAggregatesLegErrors(t *testing.T) {
	svc := newTestService(t, newFakeProvider(), DefaultConfig())

	res, _ := svc.Create(context.Background(), Request{Legs: []LegRequest{
		{Exchange: "kraken", Symbol: "ETHUSDT", Side: "buy"},
		{Exchange: "binance", Symbol: "USDTTRY"},
	}})

	want := "Leg 1: unsupported exchange 'kraken'; Leg 2: side is required"
	if res.Error != want {
		t.Errorf("error = %q, want %q", res.Error, want)
	}
}

func TestService_CreatePartialUnavailability(t *testing.T) {
	p := ethTryProvider()
	p.errs["cointr:USDTTRY"] = errors.New("connection refused")
	svc := newTestService(t, p, DefaultConfig())

	res, err := svc.Create(context.Background(), ethTryRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !res.Success {
		t.Error("unavailable leg must not fail the request")
	}
	if len(res.Asks) != 0 || len(res.Bids) != 0 {
		t.Errorf("asks=%v bids=%v, want empty", res.Asks, res.Bids)
	}
	if res.Asks == nil || res.Bids == nil {
		t.Error("asks and bids must be empty lists, not nil")
	}
	if !res.Legs[0].Available || res.Legs[1].Available {
		t.Errorf("availability = %v/%v", res.Legs[0].Available, res.Legs[1].Available)
	}
	if res.Legs[1].Err == nil {
		t.Error("leg error not recorded")
	}
}

func TestService_CreateLegTimeout(t *testing.T) {
	p := ethTryProvider()
	p.delay["cointr:USDTTRY"] = time.Second

	cfg := DefaultConfig()
	cfg.LegTimeout = 20 * time.Millisecond
	svc := newTestService(t, p, cfg)

	start := time.Now()
	res, err := svc.Create(context.Background(), ethTryRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("timed-out leg blocked for %v", elapsed)
	}
	if res.Legs[1].Available {
		t.Error("slow leg reported available")
	}
	if !res.Legs[0].Available {
		t.Error("fast sibling leg was cancelled")
	}
}

func TestService_CreateDepth(t *testing.T) {
	tests := []struct {
		name      string
		depth     int
		wantFetch int
	}{
		{name: "default", depth: 0, wantFetch: 40},
		{name: "explicit", depth: 5, wantFetch: 10},
		{name: "clamped", depth: 500, wantFetch: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ethTryProvider()
			svc := newTestService(t, p, DefaultConfig())

			req := ethTryRequest()
			req.Depth = tt.depth
			if _, err := svc.Create(context.Background(), req); err != nil {
				t.Fatalf("Create: %v", err)
			}

			for _, d := range p.depths {
				if d != tt.wantFetch {
					t.Errorf("fetch depth = %d, want %d", d, tt.wantFetch)
				}
			}
		})
	}
}

func TestService_CreateDedupesLegs(t *testing.T) {
	p := newFakeProvider()
	p.set(domain.Binance, "BTCUSDT",
		[]domain.Level{{Price: 60000, Quantity: 1}},
		[]domain.Level{{Price: 59990, Quantity: 1}},
	)
	p.set(domain.Binance, "USDTBTC",
		[]domain.Level{{Price: 0.0000166, Quantity: 100000}},
		[]domain.Level{{Price: 0.0000165, Quantity: 100000}},
	)
	svc := newTestService(t, p, DefaultConfig())

	_, err := svc.Create(context.Background(), Request{Legs: []LegRequest{
		{Exchange: "binance", Symbol: "BTCUSDT", Side: "sell"},
		{Exchange: "binance", Symbol: "USDTBTC", Side: "buy"},
		{Exchange: "binance", Symbol: "BTCUSDT", Side: "sell"},
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if got := p.calls["binance:BTCUSDT"]; got != 1 {
		t.Errorf("BTCUSDT fetched %d times, want 1", got)
	}
	if got := p.total.Load(); got != 2 {
		t.Errorf("total fetches = %d, want 2", got)
	}
}

func TestService_CreateNormalizesInput(t *testing.T) {
	svc := newTestService(t, ethTryProvider(), DefaultConfig())

	res, err := svc.Create(context.Background(), Request{Legs: []LegRequest{
		{Exchange: " Binance ", Symbol: "eth-usdt", Side: "BUY"},
		{Exchange: "COINTR", Symbol: "usdt_try", Side: "Sell"},
	}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !res.AllAvailable() {
		t.Errorf("legs = %+v", res.Legs)
	}
	if res.Legs[0].Symbol != "ETHUSDT" || res.Legs[1].Symbol != "USDTTRY" {
		t.Errorf("symbols = %s, %s", res.Legs[0].Symbol, res.Legs[1].Symbol)
	}
}

func TestService_CreateIdempotent(t *testing.T) {
	p := newFakeProvider()
	p.set(domain.Binance, "ETHUSDT",
		[]domain.Level{{Price: 2000, Quantity: 1}, {Price: 2001, Quantity: 2}, {Price: 2002, Quantity: 3}},
		[]domain.Level{{Price: 1999, Quantity: 1}, {Price: 1998, Quantity: 2}},
	)
	p.set(domain.CoinTR, "USDTTRY",
		[]domain.Level{{Price: 34.50, Quantity: 5000}, {Price: 34.51, Quantity: 10000}},
		[]domain.Level{{Price: 34.49, Quantity: 5000}, {Price: 34.48, Quantity: 10000}},
	)
	svc := newTestService(t, p, DefaultConfig())

	first, _ := svc.Create(context.Background(), ethTryRequest())
	second, _ := svc.Create(context.Background(), ethTryRequest())

	if !reflect.DeepEqual(first.Asks, second.Asks) || !reflect.DeepEqual(first.Bids, second.Bids) {
		t.Errorf("results differ:\n%+v\n%+v", first, second)
	}
}

func TestService_Orderbook(t *testing.T) {
	svc := newTestService(t, ethTryProvider(), DefaultConfig())

	view, err := svc.Orderbook(context.Background(), "binance", "ETH-USDT", 10)
	if err != nil {
		t.Fatalf("Orderbook: %v", err)
	}
	if view.CommissionBps != 10 {
		t.Errorf("bps = %v", view.CommissionBps)
	}
	if view.BestAskFees == nil || math.Abs(view.BestAskFees.Commission-2) > 1e-9 {
		t.Errorf("ask fees = %+v", view.BestAskFees)
	}
	if view.BestBidFees == nil {
		t.Error("missing bid fees")
	}

	if _, err := svc.Orderbook(context.Background(), "kraken", "ETHUSDT", 10); apperror.GetCode(err) != apperror.CodeUnsupportedExchange {
		t.Errorf("unsupported exchange err = %v", err)
	}
	if _, err := svc.Orderbook(context.Background(), "okx", "ETHUSDT", 10); apperror.GetCode(err) != apperror.CodeOrderbookFetchFailed {
		t.Errorf("missing book err = %v", err)
	}
}

func TestNewService_RequiresDependencies(t *testing.T) {
	table, _ := domain.NewCommissionTable(nil, 10, 0.2)
	if _, err := NewService(DefaultConfig(), nil, table, nil, &mockLogger{}); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := NewService(DefaultConfig(), newFakeProvider(), nil, nil, &mockLogger{}); err == nil {
		t.Error("expected error for nil commission table")
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	got := Config{DefaultDepth: 500, MaxDepth: 50}.withDefaults()
	if got.DefaultDepth != 50 {
		t.Errorf("DefaultDepth = %d, want clamped to 50", got.DefaultDepth)
	}
	if got.MinLegs != domain.MinLegs || got.MaxLegs != domain.MaxLegs {
		t.Errorf("legs = %d..%d", got.MinLegs, got.MaxLegs)
	}
	if got.MinFillRatio != domain.DefaultMinFillRatio {
		t.Errorf("ratio = %v", got.MinFillRatio)
	}
}
