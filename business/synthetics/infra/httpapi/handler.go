// Package httpapi exposes the synthetic orderbook service over REST.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/fd1az/synthetic-orderbook/business/synthetics/app"
	"github.com/fd1az/synthetic-orderbook/business/synthetics/domain"
	"github.com/fd1az/synthetic-orderbook/internal/apperror"
	"github.com/fd1az/synthetic-orderbook/internal/logger"
)

const (
	maxBodyBytes = 1 << 20
	configNote   = "KDV is ignored in synthetic calculations; only exchange commissions applied"
)

// SyntheticsService is the application surface the handlers need.
type SyntheticsService interface {
	Create(ctx context.Context, req app.Request) (*domain.Result, error)
	Orderbook(ctx context.Context, exchange, symbol string, limit int) (*app.BookView, error)
	Config() app.Config
	Commissions() *domain.CommissionTable
}

// Handler serves the synthetics and orderbook endpoints.
type Handler struct {
	svc SyntheticsService
	log logger.LoggerInterface
}

func NewHandler(svc SyntheticsService, log logger.LoggerInterface) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the API routes on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/synthetics/orderbook", h.CreateSynthetic).Methods(http.MethodPost)
	api.HandleFunc("/synthetics/config", h.GetConfig).Methods(http.MethodGet)
	api.HandleFunc("/synthetics/examples", h.GetExamples).Methods(http.MethodGet)
	api.HandleFunc("/orderbook/{exchange}", h.GetOrderbook).Methods(http.MethodGet)
}

func (h *Handler) CreateSynthetic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req app.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.log.Warn(ctx, "malformed synthetic request", "error", err)
		writeJSON(w, http.StatusBadRequest, domain.FailedResult(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	res, err := h.svc.Create(ctx, req)
	if err != nil {
		if res == nil {
			res = domain.FailedResult(err.Error())
		}
		writeJSON(w, apperror.StatusCode(err), res)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type configLimits struct {
	MinLegs      int `json:"min_legs"`
	MaxLegs      int `json:"max_legs"`
	MaxDepth     int `json:"max_depth"`
	DefaultDepth int `json:"default_depth"`
}

type configResponse struct {
	Success            bool                        `json:"success"`
	SupportedExchanges []domain.Exchange           `json:"supported_exchanges"`
	CommissionRates    map[domain.Exchange]float64 `json:"commission_rates"`
	Limits             configLimits                `json:"limits"`
	SupportedSides     []domain.Side               `json:"supported_sides"`
	Note               string                      `json:"note"`
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.svc.Config()
	table := h.svc.Commissions()

	rates := make(map[domain.Exchange]float64, len(domain.SupportedExchanges))
	for _, e := range domain.SupportedExchanges {
		rates[e] = table.Bps(e)
	}

	writeJSON(w, http.StatusOK, configResponse{
		Success:            true,
		SupportedExchanges: domain.SupportedExchanges,
		CommissionRates:    rates,
		Limits: configLimits{
			MinLegs:      cfg.MinLegs,
			MaxLegs:      cfg.MaxLegs,
			MaxDepth:     cfg.MaxDepth,
			DefaultDepth: cfg.DefaultDepth,
		},
		SupportedSides: domain.SupportedSides,
		Note:           configNote,
	})
}

func (h *Handler) GetExamples(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"examples": Examples(),
	})
}

type orderbookResponse struct {
	Success  bool          `json:"success"`
	Exchange string        `json:"exchange"`
	Symbol   string        `json:"symbol"`
	Data     *app.BookView `json:"data"`
}

func (h *Handler) GetOrderbook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	exchange := mux.Vars(r)["exchange"]
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, h.log, apperror.Validation(apperror.CodeInvalidFormat, "limit must be an integer"))
			return
		}
		limit = n
	}

	view, err := h.svc.Orderbook(ctx, exchange, q.Get("symbol"), limit)
	if err != nil {
		writeError(ctx, w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, orderbookResponse{
		Success:  true,
		Exchange: view.Exchange.String(),
		Symbol:   view.Symbol,
		Data:     view,
	})
}
