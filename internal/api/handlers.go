package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/pkg/folio"
)

const timeFormat = "2006-01-02 15:04:05"

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Dictionaries

func (h *handler) getCurrencies(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetCurrencies()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) saveCurrency(w http.ResponseWriter, r *http.Request) {
	var payload currencyPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.SaveCurrency(folio.Currency{
		Code:       payload.Code,
		Name:       payload.Name,
		ISONumCode: payload.ISONumCode,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) deleteCurrency(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeleteCurrency(chi.URLParam(r, "code"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "currency not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *handler) getCategories(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetCategories()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) saveCategory(w http.ResponseWriter, r *http.Request) {
	var payload categoryPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.SaveCategory(folio.InstrumentCategory{
		Code: payload.Code,
		Name: payload.Name,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeleteCategory(chi.URLParam(r, "code"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *handler) getInstrumentTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, folio.InstrumentTypes)
}

// Instruments

func (h *handler) getInstruments(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetInstruments()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getInstrument(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetInstrument(chi.URLParam(r, "symbol"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "instrument not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) saveInstrument(w http.ResponseWriter, r *http.Request) {
	var payload instrumentPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.SaveInstrument(folio.SaveInstrumentRequest{
		Symbol:       payload.Symbol,
		Name:         payload.Name,
		CurrencyCode: payload.CurrencyCode,
		Type:         payload.Type,
		CategoryCode: payload.CategoryCode,
		ISIN:         payload.ISIN,
		ParValue:     payload.ParValue,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) deleteInstrument(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeleteInstrument(chi.URLParam(r, "symbol"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "instrument not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *handler) getInstrumentPrices(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetInstrumentPrices(chi.URLParam(r, "symbol"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) addInstrumentPrice(w http.ResponseWriter, r *http.Request) {
	var payload instrumentPricePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.AddInstrumentPrice(folio.AddInstrumentPriceRequest{
		Symbol:                  chi.URLParam(r, "symbol"),
		Price:                   payload.Price,
		IsPercent:               payload.IsPercent,
		AccumulatedCouponIncome: payload.AccumulatedCouponIncome,
		WhenAdd:                 whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Portfolios

func (h *handler) getPortfolios(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetPortfolios()
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getPortfolio(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.GetPortfolio(chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) savePortfolio(w http.ResponseWriter, r *http.Request) {
	var payload portfolioPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.SavePortfolio(folio.SavePortfolioRequest{
		Name:               payload.Name,
		CurrencyCode:       payload.CurrencyCode,
		TargetDistribution: payload.TargetDistribution,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) deletePortfolio(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeletePortfolio(chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "portfolio not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *handler) getPositions(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.Positions(chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) getOperations(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.ProcessedOperations(chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) reinitPortfolio(w http.ResponseWriter, r *http.Request) {
	if err := h.core.Reinit(chi.URLParam(r, "name")); err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reinitialized": true})
}

func (h *handler) toggleExclude(w http.ResponseWriter, r *http.Request) {
	err := h.core.ToggleExcludeFromDistribution(chi.URLParam(r, "symbol"), chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"toggled": true})
}

// Operations

func (h *handler) addMoney(w http.ResponseWriter, r *http.Request) {
	var payload moneyPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.AddMoney(folio.AddMoneyRequest{
		PortfolioName: payload.PortfolioName,
		Value:         payload.Value,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) withdrawMoney(w http.ResponseWriter, r *http.Request) {
	var payload moneyPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.WithdrawMoney(folio.WithdrawMoneyRequest{
		PortfolioName: payload.PortfolioName,
		Value:         payload.Value,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) tax(w http.ResponseWriter, r *http.Request) {
	var payload moneyPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.Tax(folio.TaxRequest{
		PortfolioName: payload.PortfolioName,
		Value:         payload.Value,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) buyInstrument(w http.ResponseWriter, r *http.Request) {
	var payload tradePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.BuyInstrument(folio.BuyInstrumentRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		Quantity:      payload.Quantity,
		Price:         payload.Price,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) buyBond(w http.ResponseWriter, r *http.Request) {
	var payload bondTradePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.BuyBond(folio.BuyBondRequest{
		PortfolioName:           payload.PortfolioName,
		Symbol:                  payload.Symbol,
		Quantity:                payload.Quantity,
		Percent:                 payload.Percent,
		AccumulatedCouponIncome: payload.AccumulatedCouponIncome,
		WhenAdd:                 whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) sellInstrument(w http.ResponseWriter, r *http.Request) {
	var payload tradePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.SellInstrument(folio.SellInstrumentRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		Quantity:      payload.Quantity,
		Price:         payload.Price,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) sellBond(w http.ResponseWriter, r *http.Request) {
	var payload bondTradePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.SellBond(folio.SellBondRequest{
		PortfolioName:           payload.PortfolioName,
		Symbol:                  payload.Symbol,
		Quantity:                payload.Quantity,
		Percent:                 payload.Percent,
		AccumulatedCouponIncome: payload.AccumulatedCouponIncome,
		WhenAdd:                 whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) dividend(w http.ResponseWriter, r *http.Request) {
	var payload tradePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.Dividend(folio.DividendRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		Quantity:      payload.Quantity,
		Price:         payload.Price,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) coupon(w http.ResponseWriter, r *http.Request) {
	var payload tradePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.Coupon(folio.CouponRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		Quantity:      payload.Quantity,
		Price:         payload.Price,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) bondRedemption(w http.ResponseWriter, r *http.Request) {
	var payload bondRedemptionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.BondRedemption(folio.BondRedemptionRequest{
		PortfolioName:           payload.PortfolioName,
		Symbol:                  payload.Symbol,
		AccumulatedCouponIncome: payload.AccumulatedCouponIncome,
		WhenAdd:                 whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) instrumentConversion(w http.ResponseWriter, r *http.Request) {
	var payload conversionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	whenAdd, err := parseWhenAdd(payload.WhenAdd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.InstrumentConversion(folio.InstrumentConversionRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		NewQuantity:   payload.NewQuantity,
		WhenAdd:       whenAdd,
	})
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) deleteOperation(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.core.DeleteOperation(chi.URLParam(r, "uid"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "operation not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Reports

func (h *handler) rebalance(w http.ResponseWriter, r *http.Request) {
	useMoney := r.URL.Query().Get("use-money") == "1" || r.URL.Query().Get("use-money") == "true"
	result, err := h.core.Rebalance(chi.URLParam(r, "name"), useMoney)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) distributionAccounting(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.DistributionByAccountingPrice(chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) distributionActual(w http.ResponseWriter, r *http.Request) {
	at, err := parseWhenAdd(queryParam(r, "at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.core.DistributionByActualPrice(chi.URLParam(r, "name"), at)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handler) distributionTarget(w http.ResponseWriter, r *http.Request) {
	result, err := h.core.TargetDistribution(chi.URLParam(r, "name"))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

// parseWhenAdd parses an optional request timestamp. Nil means now.
func parseWhenAdd(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(timeFormat, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func queryParam(r *http.Request, name string) *string {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil
	}
	return &value
}
