package api

import (
	"folio/pkg/folio"
)

type currencyPayload struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ISONumCode string `json:"iso_num_code"`
}

type categoryPayload struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type instrumentPayload struct {
	Symbol       string        `json:"symbol"`
	Name         string        `json:"name"`
	CurrencyCode string        `json:"currency_code"`
	Type         string        `json:"type"`
	CategoryCode string        `json:"category_code"`
	ISIN         *string       `json:"isin"`
	ParValue     *folio.Amount `json:"par_value"`
}

type instrumentPricePayload struct {
	Price                   folio.Amount `json:"price"`
	IsPercent               bool         `json:"is_percent"`
	AccumulatedCouponIncome folio.Amount `json:"accumulated_coupon_income"`
	WhenAdd                 *string      `json:"when_add"`
}

type portfolioPayload struct {
	Name               string                          `json:"name"`
	CurrencyCode       string                          `json:"currency_code"`
	TargetDistribution []folio.TargetDistributionEntry `json:"target_distribution"`
}

type moneyPayload struct {
	PortfolioName string       `json:"portfolio_name"`
	Value         folio.Amount `json:"value"`
	WhenAdd       *string      `json:"when_add"`
}

type tradePayload struct {
	PortfolioName string       `json:"portfolio_name"`
	Symbol        string       `json:"symbol"`
	Quantity      int64        `json:"quantity"`
	Price         folio.Amount `json:"price"`
	WhenAdd       *string      `json:"when_add"`
}

type bondTradePayload struct {
	PortfolioName           string       `json:"portfolio_name"`
	Symbol                  string       `json:"symbol"`
	Quantity                int64        `json:"quantity"`
	Percent                 folio.Amount `json:"percent"`
	AccumulatedCouponIncome folio.Amount `json:"accumulated_coupon_income"`
	WhenAdd                 *string      `json:"when_add"`
}

type bondRedemptionPayload struct {
	PortfolioName           string       `json:"portfolio_name"`
	Symbol                  string       `json:"symbol"`
	AccumulatedCouponIncome folio.Amount `json:"accumulated_coupon_income"`
	WhenAdd                 *string      `json:"when_add"`
}

type conversionPayload struct {
	PortfolioName string  `json:"portfolio_name"`
	Symbol        string  `json:"symbol"`
	NewQuantity   int64   `json:"new_quantity"`
	WhenAdd       *string `json:"when_add"`
}
