package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trogers1052/pnl-service/internal/database"
	"github.com/trogers1052/pnl-service/internal/engine"
	"github.com/trogers1052/pnl-service/internal/kafka"
	"github.com/trogers1052/pnl-service/internal/models"
	"github.com/trogers1052/pnl-service/internal/redis"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine   *engine.Engine
	db       *database.DB
	producer *kafka.Producer
	redis    *redis.Client
	log      *zap.SugaredLogger
}

// NewHandler creates a new Handler. Everything except the engine may be
// nil; the affected endpoints degrade accordingly.
func NewHandler(eng *engine.Engine, db *database.DB, producer *kafka.Producer, redisClient *redis.Client, log *zap.SugaredLogger) *Handler {
	return &Handler{
		engine:   eng,
		db:       db,
		producer: producer,
		redis:    redisClient,
		log:      log,
	}
}

// GetAccountPnL handles GET /api/v1/pnl
func (h *Handler) GetAccountPnL(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.GetAccountSummary())
}

// GetSymbolPnL handles GET /api/v1/pnl/{symbol}
func (h *Handler) GetSymbolPnL(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	respondJSON(w, http.StatusOK, h.engine.GetPnLBySymbol(symbol))
}

// GetPositions handles GET /api/v1/positions with an optional
// filter=open|long|short query parameter
func (h *Handler) GetPositions(w http.ResponseWriter, r *http.Request) {
	var positions map[string]models.Position

	switch filter := r.URL.Query().Get("filter"); filter {
	case "", "open":
		positions = h.engine.GetOpenPositions()
	case "long":
		positions = h.engine.GetLongPositions()
	case "short":
		positions = h.engine.GetShortPositions()
	default:
		http.Error(w, "invalid filter: "+filter, http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, positions)
}

// GetPosition handles GET /api/v1/positions/{symbol}. Symbols that have
// never traded return a zero-valued position.
func (h *Handler) GetPosition(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	respondJSON(w, http.StatusOK, h.engine.GetPosition(symbol))
}

// SubmitTrade handles POST /api/v1/trades
func (h *Handler) SubmitTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol  string          `json:"symbol"`
		Side    string          `json:"side"`
		Qty     decimal.Decimal `json:"qty"`
		Price   decimal.Decimal `json:"price"`
		OrderID string          `json:"order_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	trade := models.NewTrade(
		strings.ToUpper(req.Symbol),
		models.Side(strings.ToUpper(req.Side)),
		req.Qty,
		req.Price,
	)
	trade.OrderID = req.OrderID

	if err := h.engine.OnTrade(trade); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pos := h.engine.GetPosition(trade.Symbol)
	pnl := h.engine.GetPnLBySymbol(trade.Symbol)

	if h.producer != nil {
		if err := h.producer.PublishPnLUpdate(r.Context(), h.engine.AccountID(), pos, pnl); err != nil {
			h.log.Warnw("failed to publish pnl update", "symbol", trade.Symbol, "error", err)
		}
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"trade_id": trade.TradeID,
		"position": pos,
		"pnl":      pnl,
	})
}

// SubmitPrice handles POST /api/v1/prices
func (h *Handler) SubmitPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string          `json:"symbol"`
		Price  decimal.Decimal `json:"price"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Symbol == "" {
		http.Error(w, "symbol is required", http.StatusBadRequest)
		return
	}

	h.engine.OnPrice(strings.ToUpper(req.Symbol), req.Price)
	w.WriteHeader(http.StatusNoContent)
}

// GetTotalNotional handles POST /api/v1/notional. The caller supplies
// the price map; positions missing from it are valued at zero.
func (h *Handler) GetTotalNotional(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prices map[string]decimal.Decimal `json:"prices"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"total_notional": h.engine.GetTotalNotional(req.Prices),
	})
}

// GetSummary handles GET /api/v1/summary with an optional symbol query
// parameter, returning the same text the engine logs
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.URL.Query().Get("symbol"))
	text := h.engine.LogSummary(symbol)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text + "\n"))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":     "healthy",
		"account_id": h.engine.AccountID(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"services":   map[string]string{},
	}
	services := health["services"].(map[string]string)
	degraded := false

	// Persistence and cache are optional sinks: absent means the
	// service runs engine-only, unreachable means degraded.
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			services["postgres"] = "unhealthy: " + err.Error()
			degraded = true
		} else {
			services["postgres"] = "healthy"
		}
	} else {
		services["postgres"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
			degraded = true
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	if h.producer != nil {
		services["kafka"] = "configured"
	} else {
		services["kafka"] = "not configured"
	}

	if degraded {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
