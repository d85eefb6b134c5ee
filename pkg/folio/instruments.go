package folio

import (
	"database/sql"
	"strings"
	"time"
)

// SaveInstrumentRequest defines inputs to create or update an instrument.
// ParValue is required when Type is BOND and ignored otherwise.
type SaveInstrumentRequest struct {
	Symbol       string
	Name         string
	CurrencyCode string
	Type         string
	CategoryCode string
	ISIN         *string
	ParValue     *Amount
}

// SaveInstrument inserts or updates an instrument. Shares and ETFs carry no
// par value; use SaveBond for bonds.
func (c *Core) SaveInstrument(req SaveInstrumentRequest) (*Instrument, error) {
	req.Type = normalizeType(req.Type)
	if req.Type == TypeBond {
		return c.saveInstrument(req)
	}
	req.ParValue = nil
	return c.saveInstrument(req)
}

// SaveBond inserts or updates a bond instrument with its par value.
func (c *Core) SaveBond(req SaveInstrumentRequest) (*Instrument, error) {
	req.Type = TypeBond
	return c.saveInstrument(req)
}

func (c *Core) saveInstrument(req SaveInstrumentRequest) (*Instrument, error) {
	req.Symbol = normalizeSymbol(req.Symbol)
	req.CurrencyCode = normalizeCode(req.CurrencyCode)
	req.CategoryCode = normalizeCode(req.CategoryCode)
	if req.Symbol == "" {
		return nil, NewError(ErrCodeInvalidInput, "symbol required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewError(ErrCodeInvalidInput, "instrument name required")
	}
	if !isValidInstrumentType(req.Type) {
		return nil, NewError(ErrCodeTypeNotFound, "unknown instrument type "+req.Type)
	}
	if req.Type == TypeBond && req.ParValue == nil {
		return nil, NewError(ErrCodeInvalidInput, "par value required for bonds")
	}

	var saved Instrument
	err := c.withTx(func(tx *sql.Tx) error {
		ok, err := currencyExists(tx, req.CurrencyCode)
		if err != nil {
			return err
		}
		if !ok {
			return errCurrencyNotFound(req.CurrencyCode)
		}
		ok, err = categoryExists(tx, req.CategoryCode)
		if err != nil {
			return err
		}
		if !ok {
			return errCategoryNotFound(req.CategoryCode)
		}

		var parValue any
		if req.ParValue != nil {
			parValue, _ = req.ParValue.Value()
		}
		_, err = tx.Exec(`
			INSERT INTO instruments (symbol, name, currency_code, type, category_code, isin, par_value)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(symbol) DO UPDATE SET
				name = excluded.name,
				currency_code = excluded.currency_code,
				type = excluded.type,
				category_code = excluded.category_code,
				isin = excluded.isin,
				par_value = excluded.par_value
		`, req.Symbol, req.Name, req.CurrencyCode, req.Type, req.CategoryCode,
			nullString(req.ISIN), parValue)
		if err != nil {
			return WrapError(ErrCodeDatabase, "save instrument", err)
		}

		loaded, err := loadInstrument(tx, req.Symbol)
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

// GetInstruments returns all instruments ordered by symbol.
func (c *Core) GetInstruments() ([]Instrument, error) {
	rows, err := c.db.Query(`
		SELECT symbol, name, currency_code, type, category_code, isin, par_value
		FROM instruments ORDER BY symbol
	`)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query instruments", err)
	}
	defer rows.Close()

	var result []Instrument
	for rows.Next() {
		instrument, err := scanInstrument(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *instrument)
	}
	return result, rows.Err()
}

// GetInstrument fetches a single instrument by symbol, nil when absent.
func (c *Core) GetInstrument(symbol string) (*Instrument, error) {
	row := c.db.QueryRow(`
		SELECT symbol, name, currency_code, type, category_code, isin, par_value
		FROM instruments WHERE symbol = ?
	`, normalizeSymbol(symbol))
	instrument, err := scanInstrument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return instrument, nil
}

// DeleteInstrument removes an instrument by symbol.
func (c *Core) DeleteInstrument(symbol string) (bool, error) {
	result, err := c.db.Exec("DELETE FROM instruments WHERE symbol = ?", normalizeSymbol(symbol))
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete instrument", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// AddInstrumentPriceRequest defines inputs for recording a price sample.
// When IsPercent is set the price is quoted as percent of par, which is
// only valid for bonds.
type AddInstrumentPriceRequest struct {
	Symbol                  string
	Price                   Amount
	IsPercent               bool
	AccumulatedCouponIncome Amount
	WhenAdd                 *time.Time
}

// AddInstrumentPrice records a market price sample for an instrument.
func (c *Core) AddInstrumentPrice(req AddInstrumentPriceRequest) (*InstrumentPrice, error) {
	req.Symbol = normalizeSymbol(req.Symbol)
	var sample InstrumentPrice
	err := c.withTx(func(tx *sql.Tx) error {
		instrument, err := loadInstrument(tx, req.Symbol)
		if err != nil {
			return err
		}

		price := req.Price
		if req.IsPercent {
			if !typeIn(instrument.Type, typesWithCoupon()) {
				return errUnsupportedType(instrument.Type)
			}
			price = percentOfPar(*instrument.ParValue, req.Price, c.scale)
		}
		whenAdd := c.whenAdd(req.WhenAdd)

		priceValue, _ := price.Value()
		aciValue, _ := req.AccumulatedCouponIncome.Value()
		result, err := tx.Exec(`
			INSERT INTO instrument_prices (symbol, price, accumulated_coupon_income, when_add)
			VALUES (?, ?, ?, ?)
		`, req.Symbol, priceValue, aciValue, whenAdd)
		if err != nil {
			return WrapError(ErrCodeDatabase, "insert price", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		sample = InstrumentPrice{
			ID:                      id,
			Symbol:                  req.Symbol,
			Price:                   price,
			AccumulatedCouponIncome: req.AccumulatedCouponIncome,
			WhenAdd:                 whenAdd,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// GetInstrumentPrices returns all price samples for a symbol, oldest first.
func (c *Core) GetInstrumentPrices(symbol string) ([]InstrumentPrice, error) {
	symbol = normalizeSymbol(symbol)
	instrument, err := c.GetInstrument(symbol)
	if err != nil {
		return nil, err
	}
	if instrument == nil {
		return nil, errInstrumentNotFound(symbol)
	}

	rows, err := c.db.Query(`
		SELECT id, symbol, price, accumulated_coupon_income, when_add
		FROM instrument_prices WHERE symbol = ? ORDER BY when_add, id
	`, symbol)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query prices", err)
	}
	defer rows.Close()

	var result []InstrumentPrice
	for rows.Next() {
		var p InstrumentPrice
		if err := rows.Scan(&p.ID, &p.Symbol, &p.Price, &p.AccumulatedCouponIncome, &p.WhenAdd); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// loadInstrument resolves a symbol inside a transaction or fails with
// INSTRUMENT_NOT_FOUND.
func loadInstrument(tx *sql.Tx, symbol string) (*Instrument, error) {
	row := tx.QueryRow(`
		SELECT symbol, name, currency_code, type, category_code, isin, par_value
		FROM instruments WHERE symbol = ?
	`, symbol)
	instrument, err := scanInstrument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, errInstrumentNotFound(symbol)
	}
	if err != nil {
		return nil, err
	}
	return instrument, nil
}

func scanInstrument(scan func(...any) error) (*Instrument, error) {
	var instrument Instrument
	var isin sql.NullString
	var parValue sql.NullString
	if err := scan(&instrument.Symbol, &instrument.Name, &instrument.CurrencyCode,
		&instrument.Type, &instrument.CategoryCode, &isin, &parValue); err != nil {
		return nil, err
	}
	if isin.Valid {
		instrument.ISIN = &isin.String
	}
	if parValue.Valid {
		var amount Amount
		if err := amount.Scan(parValue.String); err != nil {
			return nil, err
		}
		instrument.ParValue = &amount
	}
	return &instrument, nil
}

// percentOfPar converts a percent-of-par quote to a unit price,
// floor-rounded at the configured scale.
func percentOfPar(par, percent Amount, scale int32) Amount {
	return Amount{par.Decimal.Mul(percent.Decimal).Shift(-2).RoundFloor(scale)}
}
