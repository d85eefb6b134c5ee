package folio

import (
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
)

// SavePortfolioRequest defines inputs to create or update a portfolio.
// TargetDistribution nil leaves the stored distribution untouched; a
// non-nil slice replaces it (empty clears it). Available money is never
// set on save.
type SavePortfolioRequest struct {
	Name               string
	CurrencyCode       string
	TargetDistribution []TargetDistributionEntry
}

// SavePortfolio inserts or updates a portfolio. Declared target distribution
// percents must sum to 0 or 100.
func (c *Core) SavePortfolio(req SavePortfolioRequest) (*Portfolio, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.CurrencyCode = normalizeCode(req.CurrencyCode)
	if req.Name == "" {
		return nil, NewError(ErrCodeInvalidInput, "portfolio name required")
	}

	if req.TargetDistribution != nil {
		sum := decimal.Zero
		for _, entry := range req.TargetDistribution {
			sum = sum.Add(entry.Percent.Decimal)
		}
		if sum.Sign() != 0 && !sum.Equal(oneHundred) {
			return nil, NewError(ErrCodeUnexpectedValue,
				"target distribution percents must sum to 0 or 100, got "+sum.String())
		}
	}

	var saved Portfolio
	err := c.withTx(func(tx *sql.Tx) error {
		ok, err := currencyExists(tx, req.CurrencyCode)
		if err != nil {
			return err
		}
		if !ok {
			return errCurrencyNotFound(req.CurrencyCode)
		}

		_, err = tx.Exec(`
			INSERT INTO portfolios (name, currency_code)
			VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET currency_code = excluded.currency_code
		`, req.Name, req.CurrencyCode)
		if err != nil {
			return WrapError(ErrCodeDatabase, "save portfolio", err)
		}

		if req.TargetDistribution != nil {
			if _, err := tx.Exec("DELETE FROM target_distributions WHERE portfolio_name = ?", req.Name); err != nil {
				return WrapError(ErrCodeDatabase, "clear target distribution", err)
			}
			for _, entry := range req.TargetDistribution {
				code := normalizeCode(entry.CategoryCode)
				ok, err := categoryExists(tx, code)
				if err != nil {
					return err
				}
				if !ok {
					return errCategoryNotFound(code)
				}
				percentValue, _ := entry.Percent.Value()
				if _, err := tx.Exec(`
					INSERT INTO target_distributions (portfolio_name, category_code, percent)
					VALUES (?, ?, ?)
				`, req.Name, code, percentValue); err != nil {
					return WrapError(ErrCodeDatabase, "save target distribution", err)
				}
			}
		}

		loaded, err := loadPortfolio(tx, req.Name)
		if err != nil {
			return err
		}
		saved = *loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// GetPortfolios returns all portfolios with their target distributions.
func (c *Core) GetPortfolios() ([]Portfolio, error) {
	var result []Portfolio
	err := c.withTx(func(tx *sql.Tx) error {
		rows, err := tx.Query("SELECT name FROM portfolios ORDER BY name")
		if err != nil {
			return WrapError(ErrCodeDatabase, "query portfolios", err)
		}
		defer rows.Close()

		var names []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for _, name := range names {
			portfolio, err := loadPortfolio(tx, name)
			if err != nil {
				return err
			}
			result = append(result, *portfolio)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetPortfolio fetches a portfolio by name, nil when absent.
func (c *Core) GetPortfolio(name string) (*Portfolio, error) {
	var portfolio *Portfolio
	err := c.withTx(func(tx *sql.Tx) error {
		loaded, err := loadPortfolio(tx, strings.TrimSpace(name))
		if err != nil {
			if IsErrorCode(err, ErrCodePortfolioNotFound) {
				return nil
			}
			return err
		}
		portfolio = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return portfolio, nil
}

// DeletePortfolio removes a portfolio with its positions, operations and
// target distribution.
func (c *Core) DeletePortfolio(name string) (bool, error) {
	result, err := c.db.Exec("DELETE FROM portfolios WHERE name = ?", strings.TrimSpace(name))
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete portfolio", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Positions returns all instrument positions in a portfolio ordered by symbol.
func (c *Core) Positions(portfolioName string) ([]InstrumentPosition, error) {
	var positions []InstrumentPosition
	err := c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		positions, err = loadPositions(tx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// ProcessedOperations returns the processed operations of a portfolio,
// newest first.
func (c *Core) ProcessedOperations(portfolioName string) ([]Operation, error) {
	var operations []Operation
	err := c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}

		rows, err := tx.Query(`
			SELECT id, uid, portfolio_name, symbol, type, quantity, price,
				accumulated_coupon_income, percent, deleted, processed, when_add
			FROM operations
			WHERE portfolio_name = ? AND processed = 1
			ORDER BY when_add DESC, id DESC
		`, name)
		if err != nil {
			return WrapError(ErrCodeDatabase, "query operations", err)
		}
		defer rows.Close()

		for rows.Next() {
			op, err := scanOperation(rows.Scan)
			if err != nil {
				return err
			}
			operations = append(operations, *op)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return operations, nil
}

// Reinit deletes all operations and positions of a portfolio and resets its
// available money to zero.
func (c *Core) Reinit(portfolioName string) error {
	return c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM operations WHERE portfolio_name = ?", name); err != nil {
			return WrapError(ErrCodeDatabase, "delete operations", err)
		}
		if _, err := tx.Exec("DELETE FROM positions WHERE portfolio_name = ?", name); err != nil {
			return WrapError(ErrCodeDatabase, "delete positions", err)
		}
		if _, err := tx.Exec("UPDATE portfolios SET available_money = '0' WHERE name = ?", name); err != nil {
			return WrapError(ErrCodeDatabase, "reset available money", err)
		}
		return nil
	})
}

// ToggleExcludeFromDistribution flips the exclude flag on one position.
func (c *Core) ToggleExcludeFromDistribution(symbol, portfolioName string) error {
	symbol = normalizeSymbol(symbol)
	return c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		result, err := tx.Exec(`
			UPDATE positions SET exclude_from_distribution = 1 - exclude_from_distribution
			WHERE portfolio_name = ? AND symbol = ?
		`, name, symbol)
		if err != nil {
			return WrapError(ErrCodeDatabase, "toggle exclude flag", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return errPositionNotFound(name, symbol)
		}
		return nil
	})
}

// resolvePortfolioName applies the configured default when the request
// omits a name and verifies the portfolio exists.
func (c *Core) resolvePortfolioName(tx *sql.Tx, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = c.defaultPortfolio
	}
	if name == "" {
		return "", NewError(ErrCodeInvalidInput, "portfolio name required and no default portfolio configured")
	}
	var found string
	err := tx.QueryRow("SELECT name FROM portfolios WHERE name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return "", errPortfolioNotFound(name)
	}
	if err != nil {
		return "", err
	}
	return found, nil
}

func loadPortfolio(tx *sql.Tx, name string) (*Portfolio, error) {
	var portfolio Portfolio
	err := tx.QueryRow(`
		SELECT name, currency_code, available_money FROM portfolios WHERE name = ?
	`, name).Scan(&portfolio.Name, &portfolio.CurrencyCode, &portfolio.AvailableMoney)
	if err == sql.ErrNoRows {
		return nil, errPortfolioNotFound(name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(`
		SELECT d.category_code, c.name, d.percent
		FROM target_distributions d
		JOIN instrument_categories c ON c.code = d.category_code
		WHERE d.portfolio_name = ?
		ORDER BY d.category_code
	`, name)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query target distribution", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry TargetDistributionEntry
		if err := rows.Scan(&entry.CategoryCode, &entry.CategoryName, &entry.Percent); err != nil {
			return nil, err
		}
		portfolio.TargetDistribution = append(portfolio.TargetDistribution, entry)
	}
	return &portfolio, rows.Err()
}

func loadPositions(tx *sql.Tx, portfolioName string) ([]InstrumentPosition, error) {
	rows, err := tx.Query(`
		SELECT p.portfolio_name, p.symbol, i.name, i.type, i.category_code,
			p.quantity, p.accounting_price, p.exclude_from_distribution
		FROM positions p
		JOIN instruments i ON i.symbol = p.symbol
		WHERE p.portfolio_name = ?
		ORDER BY p.symbol
	`, portfolioName)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query positions", err)
	}
	defer rows.Close()

	var positions []InstrumentPosition
	for rows.Next() {
		var p InstrumentPosition
		if err := rows.Scan(&p.PortfolioName, &p.Symbol, &p.Name, &p.Type, &p.CategoryCode,
			&p.Quantity, &p.AccountingPrice, &p.ExcludeFromDistribution); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

func scanOperation(scan func(...any) error) (*Operation, error) {
	var op Operation
	var symbol sql.NullString
	var percent sql.NullString
	if err := scan(&op.ID, &op.UID, &op.PortfolioName, &symbol, &op.Type, &op.Quantity,
		&op.Price, &op.AccumulatedCouponIncome, &percent, &op.Deleted, &op.Processed,
		&op.WhenAdd); err != nil {
		return nil, err
	}
	if symbol.Valid {
		op.Symbol = &symbol.String
	}
	if percent.Valid {
		var amount Amount
		if err := amount.Scan(percent.String); err != nil {
			return nil, err
		}
		op.Percent = &amount
	}
	return &op, nil
}
