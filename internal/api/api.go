package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"folio/pkg/folio"
)

// NewRouter builds the HTTP API router.
func NewRouter(core *folio.Core, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logRequests(logger))
	r.Use(recoverPanics(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	h := &handler{core: core}

	r.Get("/api/health", h.health)

	// Dictionaries
	r.Get("/api/currencies", h.getCurrencies)
	r.Put("/api/currencies", h.saveCurrency)
	r.Delete("/api/currencies/{code}", h.deleteCurrency)
	r.Get("/api/categories", h.getCategories)
	r.Put("/api/categories", h.saveCategory)
	r.Delete("/api/categories/{code}", h.deleteCategory)
	r.Get("/api/instrument-types", h.getInstrumentTypes)

	// Instruments
	r.Get("/api/instruments", h.getInstruments)
	r.Get("/api/instruments/{symbol}", h.getInstrument)
	r.Put("/api/instruments", h.saveInstrument)
	r.Delete("/api/instruments/{symbol}", h.deleteInstrument)
	r.Get("/api/instruments/{symbol}/prices", h.getInstrumentPrices)
	r.Post("/api/instruments/{symbol}/prices", h.addInstrumentPrice)

	// Portfolios
	r.Get("/api/portfolios", h.getPortfolios)
	r.Get("/api/portfolios/{name}", h.getPortfolio)
	r.Put("/api/portfolios", h.savePortfolio)
	r.Delete("/api/portfolios/{name}", h.deletePortfolio)
	r.Get("/api/portfolios/{name}/positions", h.getPositions)
	r.Get("/api/portfolios/{name}/operations", h.getOperations)
	r.Post("/api/portfolios/{name}/reinit", h.reinitPortfolio)
	r.Post("/api/portfolios/{name}/positions/{symbol}/toggle-exclude", h.toggleExclude)

	// Operations
	r.Post("/api/operations/add-money", h.addMoney)
	r.Post("/api/operations/withdraw-money", h.withdrawMoney)
	r.Post("/api/operations/tax", h.tax)
	r.Post("/api/operations/buy", h.buyInstrument)
	r.Post("/api/operations/buy-bond", h.buyBond)
	r.Post("/api/operations/sell", h.sellInstrument)
	r.Post("/api/operations/sell-bond", h.sellBond)
	r.Post("/api/operations/dividend", h.dividend)
	r.Post("/api/operations/coupon", h.coupon)
	r.Post("/api/operations/bond-redemption", h.bondRedemption)
	r.Post("/api/operations/conversion", h.instrumentConversion)
	r.Delete("/api/operations/{uid}", h.deleteOperation)

	// Reports
	r.Get("/api/portfolios/{name}/rebalance", h.rebalance)
	r.Get("/api/portfolios/{name}/distribution/accounting", h.distributionAccounting)
	r.Get("/api/portfolios/{name}/distribution/actual", h.distributionActual)
	r.Get("/api/portfolios/{name}/distribution/target", h.distributionTarget)

	return r
}

type handler struct {
	core *folio.Core
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if noter, ok := w.(errorNoter); ok {
		noter.noteError("", message)
	}
	writeJSON(w, status, map[string]string{"error": message})
}
