package folio

import (
	"database/sql"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Rebalance operation kinds.
const (
	RebalanceBuy  = "BUY"
	RebalanceSell = "SELL"
)

// Rebalance compares the portfolio's actual per-category market value against
// its declared target distribution and suggests BUY/SELL amounts per category.
// Positions flagged exclude-from-distribution are ignored. When
// useAvailableMoney is set, the cash balance joins the target base. A
// portfolio without a target distribution yields an empty proposition.
func (c *Core) Rebalance(portfolioName string, useAvailableMoney bool) (*RebalanceProposition, error) {
	var proposition RebalanceProposition
	err := c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		portfolio, err := loadPortfolio(tx, name)
		if err != nil {
			return err
		}
		proposition.PortfolioName = portfolio.Name
		if len(portfolio.TargetDistribution) == 0 {
			return nil
		}

		positions, err := loadPositions(tx, name)
		if err != nil {
			return err
		}
		at := c.now()
		actualByCategory, err := c.categoryValues(tx, positions, func(p InstrumentPosition) (Amount, error) {
			return c.actualPrice(tx, p, at)
		})
		if err != nil {
			return err
		}

		totalActual := decimal.Zero
		for _, value := range actualByCategory {
			totalActual = totalActual.Add(value.Decimal)
		}

		// Target values: the market-value share and the cash share are
		// floor-rounded independently before summing.
		targetByCategory := make(map[string]Amount, len(portfolio.TargetDistribution))
		for _, entry := range portfolio.TargetDistribution {
			target := entry.Percent.Decimal.Mul(totalActual).Shift(-2).RoundFloor(c.scale)
			if useAvailableMoney {
				cashShare := entry.Percent.Decimal.Mul(portfolio.AvailableMoney.Decimal).Shift(-2).RoundFloor(c.scale)
				target = target.Add(cashShare)
			}
			targetByCategory[entry.CategoryCode] = Amount{target}
		}

		names, err := categoryNames(tx)
		if err != nil {
			return err
		}

		for _, code := range sortedKeys(actualByCategory) {
			actual := actualByCategory[code]
			diff := targetByCategory[code].Decimal.Sub(actual.Decimal)
			switch {
			case diff.Sign() > 0:
				proposition.Operations = append(proposition.Operations, RebalanceOperation{
					CategoryCode: code,
					CategoryName: names[code],
					Operation:    RebalanceBuy,
					Sum:          Amount{diff},
				})
			case diff.Sign() < 0:
				proposition.Operations = append(proposition.Operations, RebalanceOperation{
					CategoryCode: code,
					CategoryName: names[code],
					Operation:    RebalanceSell,
					Sum:          Amount{diff.Abs()},
				})
			}
		}

		// Target-only categories with nothing held become full buys.
		for _, code := range sortedKeys(targetByCategory) {
			if _, held := actualByCategory[code]; held {
				continue
			}
			target := targetByCategory[code]
			if target.Sign() > 0 {
				proposition.Operations = append(proposition.Operations, RebalanceOperation{
					CategoryCode: code,
					CategoryName: names[code],
					Operation:    RebalanceBuy,
					Sum:          target,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &proposition, nil
}

// DistributionByAccountingPrice reports the percent of portfolio value held
// per category, valued at weighted-average cost.
func (c *Core) DistributionByAccountingPrice(portfolioName string) (*Distribution, error) {
	return c.distribution(portfolioName, func(tx *sql.Tx, p InstrumentPosition) (Amount, error) {
		return p.AccountingPrice, nil
	})
}

// DistributionByActualPrice reports the percent of portfolio value held per
// category at market prices. at nil means now; positions without a price
// sample fall back to their accounting price.
func (c *Core) DistributionByActualPrice(portfolioName string, at *time.Time) (*Distribution, error) {
	reference := c.now()
	if at != nil {
		reference = *at
	}
	return c.distribution(portfolioName, func(tx *sql.Tx, p InstrumentPosition) (Amount, error) {
		return c.actualPrice(tx, p, reference)
	})
}

// TargetDistribution reports the declared target percents of a portfolio.
func (c *Core) TargetDistribution(portfolioName string) (*Distribution, error) {
	var dist Distribution
	err := c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		portfolio, err := loadPortfolio(tx, name)
		if err != nil {
			return err
		}
		dist.PortfolioName = portfolio.Name
		dist.PercentByCategory = make(map[string]Amount, len(portfolio.TargetDistribution))
		for _, entry := range portfolio.TargetDistribution {
			dist.PercentByCategory[entry.CategoryCode] = entry.Percent
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dist, nil
}

func (c *Core) distribution(portfolioName string, priceFn func(*sql.Tx, InstrumentPosition) (Amount, error)) (*Distribution, error) {
	var dist Distribution
	err := c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		positions, err := loadPositions(tx, name)
		if err != nil {
			return err
		}
		valueByCategory, err := c.categoryValues(tx, positions, func(p InstrumentPosition) (Amount, error) {
			return priceFn(tx, p)
		})
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, value := range valueByCategory {
			total = total.Add(value.Decimal)
		}

		dist.PortfolioName = name
		dist.PercentByCategory = make(map[string]Amount, len(valueByCategory))
		if total.Sign() == 0 {
			return nil
		}
		for code, value := range valueByCategory {
			share := divFloor(value.Decimal, total, c.scale).Mul(oneHundred)
			dist.PercentByCategory[code] = Amount{share}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dist, nil
}

// categoryValues accumulates price × quantity per category over the
// non-excluded positions.
func (c *Core) categoryValues(tx *sql.Tx, positions []InstrumentPosition, priceFn func(InstrumentPosition) (Amount, error)) (map[string]Amount, error) {
	values := make(map[string]Amount)
	for _, position := range positions {
		if position.ExcludeFromDistribution || position.Quantity == 0 {
			continue
		}
		price, err := priceFn(position)
		if err != nil {
			return nil, err
		}
		value := price.MulInt(position.Quantity)
		values[position.CategoryCode] = values[position.CategoryCode].Add(value)
	}
	return values, nil
}

// actualPrice resolves the most recent price sample at or before the
// reference time, falling back to the position's accounting price.
func (c *Core) actualPrice(tx *sql.Tx, position InstrumentPosition, at time.Time) (Amount, error) {
	var price Amount
	err := tx.QueryRow(`
		SELECT price FROM instrument_prices
		WHERE symbol = ? AND when_add <= ?
		ORDER BY when_add DESC, id DESC
		LIMIT 1
	`, position.Symbol, at.Format(timeFormat)).Scan(&price)
	if err == sql.ErrNoRows {
		return position.AccountingPrice, nil
	}
	if err != nil {
		return Amount{}, WrapError(ErrCodeDatabase, "query instrument price", err)
	}
	return price, nil
}

func categoryNames(tx *sql.Tx) (map[string]string, error) {
	rows, err := tx.Query("SELECT code, name FROM instrument_categories")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query categories", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var code, name string
		if err := rows.Scan(&code, &name); err != nil {
			return nil, err
		}
		names[code] = name
	}
	return names, rows.Err()
}

func sortedKeys(m map[string]Amount) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
