package mobile

import (
	"encoding/json"
	"time"

	"folio/pkg/folio"
)

// Core wraps the Folio core for gomobile bindings.
type Core struct {
	core *folio.Core
}

// Open initializes the core with a database path.
func Open(dbPath string) (*Core, error) {
	core, err := folio.Open(dbPath)
	if err != nil {
		return nil, err
	}
	return &Core{core: core}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// GetPortfoliosJSON returns all portfolios as JSON.
func (c *Core) GetPortfoliosJSON() (string, error) {
	data, err := c.core.GetPortfolios()
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GetPositionsJSON returns portfolio positions as JSON.
func (c *Core) GetPositionsJSON(portfolioName string) (string, error) {
	data, err := c.core.Positions(portfolioName)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// GetOperationsJSON returns the portfolio operation history as JSON.
func (c *Core) GetOperationsJSON(portfolioName string) (string, error) {
	data, err := c.core.ProcessedOperations(portfolioName)
	if err != nil {
		return "", err
	}
	return marshalJSON(data)
}

// AddMoneyJSON registers a money deposit from JSON and returns the result.
func (c *Core) AddMoneyJSON(payloadJSON string) (string, error) {
	var payload moneyPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return "", err
	}
	when, err := parseWhen(payload.WhenAdd)
	if err != nil {
		return "", err
	}
	result, err := c.core.AddMoney(folio.AddMoneyRequest{
		PortfolioName: payload.PortfolioName,
		Value:         payload.Value,
		WhenAdd:       when,
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// WithdrawMoneyJSON registers a money withdrawal from JSON.
func (c *Core) WithdrawMoneyJSON(payloadJSON string) (string, error) {
	var payload moneyPayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return "", err
	}
	when, err := parseWhen(payload.WhenAdd)
	if err != nil {
		return "", err
	}
	result, err := c.core.WithdrawMoney(folio.WithdrawMoneyRequest{
		PortfolioName: payload.PortfolioName,
		Value:         payload.Value,
		WhenAdd:       when,
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// BuyInstrumentJSON executes a buy operation from JSON.
func (c *Core) BuyInstrumentJSON(payloadJSON string) (string, error) {
	var payload tradePayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return "", err
	}
	when, err := parseWhen(payload.WhenAdd)
	if err != nil {
		return "", err
	}
	result, err := c.core.BuyInstrument(folio.BuyInstrumentRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		Quantity:      payload.Quantity,
		Price:         payload.Price,
		WhenAdd:       when,
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// SellInstrumentJSON executes a sell operation from JSON.
func (c *Core) SellInstrumentJSON(payloadJSON string) (string, error) {
	var payload tradePayload
	if err := json.Unmarshal([]byte(payloadJSON), &payload); err != nil {
		return "", err
	}
	when, err := parseWhen(payload.WhenAdd)
	if err != nil {
		return "", err
	}
	result, err := c.core.SellInstrument(folio.SellInstrumentRequest{
		PortfolioName: payload.PortfolioName,
		Symbol:        payload.Symbol,
		Quantity:      payload.Quantity,
		Price:         payload.Price,
		WhenAdd:       when,
	})
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// DeleteOperation soft-deletes an operation by uid.
func (c *Core) DeleteOperation(uid string) (bool, error) {
	return c.core.DeleteOperation(uid)
}

// RebalanceJSON returns rebalance suggestions as JSON.
func (c *Core) RebalanceJSON(portfolioName string, useAvailableMoney bool) (string, error) {
	result, err := c.core.Rebalance(portfolioName, useAvailableMoney)
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// DistributionJSON returns the accounting-price distribution as JSON.
func (c *Core) DistributionJSON(portfolioName string) (string, error) {
	result, err := c.core.DistributionByAccountingPrice(portfolioName)
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

func parseWhen(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02 15:04:05", *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
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
