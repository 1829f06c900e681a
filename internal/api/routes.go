package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// PnL routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/pnl", handler.GetAccountPnL).Methods("GET")
	api.HandleFunc("/pnl/{symbol}", handler.GetSymbolPnL).Methods("GET")
	api.HandleFunc("/positions", handler.GetPositions).Methods("GET")
	api.HandleFunc("/positions/{symbol}", handler.GetPosition).Methods("GET")
	api.HandleFunc("/trades", handler.SubmitTrade).Methods("POST")
	api.HandleFunc("/prices", handler.SubmitPrice).Methods("POST")
	api.HandleFunc("/notional", handler.GetTotalNotional).Methods("POST")
	api.HandleFunc("/summary", handler.GetSummary).Methods("GET")

	return r
}
