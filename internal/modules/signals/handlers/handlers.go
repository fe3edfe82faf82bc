// Package handlers provides HTTP handlers for signal ingestion and browsing.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hadoku/trader/internal/domain"
	"github.com/hadoku/trader/internal/modules/signals"
)

const dateLayout = "2006-01-02"

// Handler handles signal HTTP requests
type Handler struct {
	repo *signals.Repository
	log  zerolog.Logger
}

// NewHandler creates a new signals handler
func NewHandler(repo *signals.Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "signals").Logger(),
	}
}

type ingestRequest struct {
	Ticker          string  `json:"ticker"`
	Action          string  `json:"action"`
	AssetType       string  `json:"asset_type"`
	TradeDate       string  `json:"trade_date"`
	DisclosureDate  string  `json:"disclosure_date"`
	TradePrice      float64 `json:"trade_price"`
	DisclosurePrice float64 `json:"disclosure_price"`
	SizeMin         float64 `json:"size_min"`
	Politician      string  `json:"politician"`
	Source          string  `json:"source"`
}

// HandleIngest handles POST /api/signals
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var request ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if request.Ticker == "" {
		h.writeError(w, http.StatusBadRequest, "Ticker is required")
		return
	}
	action := domain.Action(request.Action)
	if action != domain.ActionBuy && action != domain.ActionSell {
		h.writeError(w, http.StatusBadRequest, "Action must be buy or sell")
		return
	}

	tradeDate, err := time.Parse(dateLayout, request.TradeDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid trade_date: "+err.Error())
		return
	}
	disclosureDate, err := time.Parse(dateLayout, request.DisclosureDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid disclosure_date: "+err.Error())
		return
	}
	if disclosureDate.Before(tradeDate) {
		h.writeError(w, http.StatusBadRequest, "Disclosure date cannot precede trade date")
		return
	}

	sig := domain.RawSignal{
		Ticker:          request.Ticker,
		Action:          action,
		AssetType:       domain.AssetType(request.AssetType),
		TradeDate:       tradeDate,
		DisclosureDate:  disclosureDate,
		TradePrice:      request.TradePrice,
		DisclosurePrice: request.DisclosurePrice,
		SizeMin:         request.SizeMin,
		Politician:      request.Politician,
		Source:          request.Source,
	}

	if err := h.repo.Insert(sig); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to store signal: "+err.Error())
		return
	}

	h.log.Info().
		Str("ticker", sig.Ticker).
		Str("action", string(sig.Action)).
		Str("politician", sig.Politician).
		Msg("Signal ingested")

	h.writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

// HandleList handles GET /api/signals
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter := signals.ListFilter{
		Ticker:     r.URL.Query().Get("ticker"),
		Politician: r.URL.Query().Get("politician"),
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		from, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid from date: "+err.Error())
			return
		}
		filter.From = from
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, err := time.Parse(dateLayout, raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid to date: "+err.Error())
			return
		}
		filter.To = to
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			h.writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = limit
	}

	list, err := h.repo.List(filter)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list signals: "+err.Error())
		return
	}
	if list == nil {
		list = []domain.RawSignal{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"signals": list,
		"count":   len(list),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
