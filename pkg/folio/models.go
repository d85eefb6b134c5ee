package folio

import "time"

// Instrument types.
const (
	TypeShare = "SHARE"
	TypeBond  = "BOND"
	TypeETF   = "ETF"
)

// InstrumentTypes lists the supported instrument types.
var InstrumentTypes = []string{TypeShare, TypeBond, TypeETF}

// Operation types.
const (
	OpAddMoney       = "ADD_MONEY"
	OpWithdrawMoney  = "WITHDRAW_MONEY"
	OpBuy            = "BUY"
	OpSell           = "SELL"
	OpDividend       = "DIVIDEND"
	OpCoupon         = "COUPON"
	OpBondRedemption = "BOND_REDEMPTION"
	OpTax            = "TAX"
	OpConversion     = "INSTRUMENT_CONVERSION"
)

// typesWithoutCoupon are the types tradable with a plain unit price.
func typesWithoutCoupon() []string { return []string{TypeShare, TypeETF} }

// typesWithCoupon are the types quoted as percent of par and paying coupons.
func typesWithCoupon() []string { return []string{TypeBond} }

// typesWithDividend are the types eligible for dividend operations.
func typesWithDividend() []string { return []string{TypeShare} }

// Currency is immutable reference data.
type Currency struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	ISONumCode string `json:"iso_num_code"`
}

// InstrumentCategory groups instruments for target distributions.
type InstrumentCategory struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Instrument is a tradable financial instrument.
type Instrument struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrencyCode string  `json:"currency_code"`
	Type         string  `json:"type"`
	CategoryCode string  `json:"category_code"`
	ISIN         *string `json:"isin,omitempty"`
	ParValue     *Amount `json:"par_value,omitempty"`
}

// TargetDistributionEntry declares a desired percent of portfolio value
// for one instrument category.
type TargetDistributionEntry struct {
	CategoryCode string `json:"category_code"`
	CategoryName string `json:"category_name,omitempty"`
	Percent      Amount `json:"percent"`
}

// Portfolio aggregates a money balance, positions and an operations ledger.
type Portfolio struct {
	Name               string                    `json:"name"`
	CurrencyCode       string                    `json:"currency_code"`
	AvailableMoney     Amount                    `json:"available_money"`
	TargetDistribution []TargetDistributionEntry `json:"target_distribution,omitempty"`
}

// InstrumentPosition is the holding of one instrument in one portfolio.
type InstrumentPosition struct {
	PortfolioName           string `json:"portfolio_name"`
	Symbol                  string `json:"symbol"`
	Name                    string `json:"name"`
	Type                    string `json:"type"`
	CategoryCode            string `json:"category_code"`
	Quantity                int64  `json:"quantity"`
	AccountingPrice         Amount `json:"accounting_price"`
	ExcludeFromDistribution bool   `json:"exclude_from_distribution"`
}

// Operation is one ledger entry. Money-only operations carry no symbol.
type Operation struct {
	ID                      int64   `json:"id"`
	UID                     string  `json:"uid"`
	PortfolioName           string  `json:"portfolio_name"`
	Symbol                  *string `json:"symbol,omitempty"`
	Type                    string  `json:"type"`
	Quantity                int64   `json:"quantity"`
	Price                   Amount  `json:"price"`
	AccumulatedCouponIncome Amount  `json:"accumulated_coupon_income"`
	Percent                 *Amount `json:"percent,omitempty"`
	Deleted                 bool    `json:"deleted"`
	Processed               bool    `json:"processed"`
	WhenAdd                 string  `json:"when_add"`
}

// TotalPrice is price multiplied by quantity.
func (o Operation) TotalPrice() Amount {
	return o.Price.MulInt(o.Quantity)
}

// InstrumentPrice is one time-stamped market price sample.
type InstrumentPrice struct {
	ID                      int64  `json:"id"`
	Symbol                  string `json:"symbol"`
	Price                   Amount `json:"price"`
	AccumulatedCouponIncome Amount `json:"accumulated_coupon_income"`
	WhenAdd                 string `json:"when_add"`
}

// AddMoneyRequest defines inputs for a money deposit.
type AddMoneyRequest struct {
	PortfolioName string
	Value         Amount
	WhenAdd       *time.Time
}

// WithdrawMoneyRequest defines inputs for a money withdrawal.
type WithdrawMoneyRequest struct {
	PortfolioName string
	Value         Amount
	WhenAdd       *time.Time
}

// TaxRequest defines inputs for a tax or fee payment.
type TaxRequest struct {
	PortfolioName string
	Value         Amount
	WhenAdd       *time.Time
}

// BuyInstrumentRequest defines inputs for a share/ETF purchase.
type BuyInstrumentRequest struct {
	PortfolioName string
	Symbol        string
	Quantity      int64
	Price         Amount
	WhenAdd       *time.Time
}

// SellInstrumentRequest defines inputs for a share/ETF sale.
type SellInstrumentRequest struct {
	PortfolioName string
	Symbol        string
	Quantity      int64
	Price         Amount
	WhenAdd       *time.Time
}

// BuyBondRequest defines inputs for a bond purchase quoted as percent of par.
type BuyBondRequest struct {
	PortfolioName           string
	Symbol                  string
	Quantity                int64
	Percent                 Amount
	AccumulatedCouponIncome Amount
	WhenAdd                 *time.Time
}

// SellBondRequest defines inputs for a bond sale quoted as percent of par.
type SellBondRequest struct {
	PortfolioName           string
	Symbol                  string
	Quantity                int64
	Percent                 Amount
	AccumulatedCouponIncome Amount
	WhenAdd                 *time.Time
}

// DividendRequest defines inputs for a dividend payment.
type DividendRequest struct {
	PortfolioName string
	Symbol        string
	Quantity      int64
	Price         Amount
	WhenAdd       *time.Time
}

// CouponRequest defines inputs for a coupon payment.
type CouponRequest struct {
	PortfolioName string
	Symbol        string
	Quantity      int64
	Price         Amount
	WhenAdd       *time.Time
}

// BondRedemptionRequest defines inputs for redeeming an entire bond position at par.
type BondRedemptionRequest struct {
	PortfolioName           string
	Symbol                  string
	AccumulatedCouponIncome Amount
	WhenAdd                 *time.Time
}

// InstrumentConversionRequest defines inputs for a split/conversion that
// changes the held quantity without cash movement.
type InstrumentConversionRequest struct {
	PortfolioName string
	Symbol        string
	NewQuantity   int64
	WhenAdd       *time.Time
}

// OperationResult mirrors the applied operation plus portfolio context.
type OperationResult struct {
	UID                     string  `json:"uid"`
	PortfolioName           string  `json:"portfolio_name"`
	CurrencyCode            string  `json:"currency_code"`
	Type                    string  `json:"type"`
	Symbol                  string  `json:"symbol,omitempty"`
	Quantity                int64   `json:"quantity"`
	Price                   Amount  `json:"price"`
	Total                   Amount  `json:"total"`
	AccumulatedCouponIncome Amount  `json:"accumulated_coupon_income"`
	Percent                 *Amount `json:"percent,omitempty"`
	WhenAdd                 string  `json:"when_add"`
}

// RebalanceOperation is one buy/sell suggestion for a category.
type RebalanceOperation struct {
	CategoryCode string `json:"category_code"`
	CategoryName string `json:"category_name"`
	Operation    string `json:"operation"`
	Sum          Amount `json:"sum"`
}

// RebalanceProposition is the full set of suggestions for a portfolio.
type RebalanceProposition struct {
	PortfolioName string               `json:"portfolio_name"`
	Operations    []RebalanceOperation `json:"operations"`
}

// Distribution maps category code to a percent of portfolio value.
type Distribution struct {
	PortfolioName     string            `json:"portfolio_name"`
	PercentByCategory map[string]Amount `json:"percent_by_category"`
}
