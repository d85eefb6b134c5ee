package folio

import (
	"database/sql"
	"strings"
)

// SaveCurrency inserts or updates a currency dictionary entry.
func (c *Core) SaveCurrency(currency Currency) (*Currency, error) {
	currency.Code = normalizeCode(currency.Code)
	if currency.Code == "" {
		return nil, NewError(ErrCodeInvalidInput, "currency code required")
	}
	if strings.TrimSpace(currency.Name) == "" {
		return nil, NewError(ErrCodeInvalidInput, "currency name required")
	}
	_, err := c.db.Exec(`
		INSERT INTO currencies (code, name, iso_num_code)
		VALUES (?, ?, ?)
		ON CONFLICT(code) DO UPDATE SET
			name = excluded.name,
			iso_num_code = excluded.iso_num_code
	`, currency.Code, currency.Name, currency.ISONumCode)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "save currency", err)
	}
	return &currency, nil
}

// GetCurrencies returns all currencies ordered by code.
func (c *Core) GetCurrencies() ([]Currency, error) {
	rows, err := c.db.Query("SELECT code, name, iso_num_code FROM currencies ORDER BY code")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query currencies", err)
	}
	defer rows.Close()

	var result []Currency
	for rows.Next() {
		var cur Currency
		if err := rows.Scan(&cur.Code, &cur.Name, &cur.ISONumCode); err != nil {
			return nil, err
		}
		result = append(result, cur)
	}
	return result, rows.Err()
}

// DeleteCurrency removes a currency by code. It reports whether a row was deleted.
func (c *Core) DeleteCurrency(code string) (bool, error) {
	result, err := c.db.Exec("DELETE FROM currencies WHERE code = ?", normalizeCode(code))
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete currency", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SaveCategory inserts or updates an instrument category.
func (c *Core) SaveCategory(category InstrumentCategory) (*InstrumentCategory, error) {
	category.Code = normalizeCode(category.Code)
	if category.Code == "" {
		return nil, NewError(ErrCodeInvalidInput, "category code required")
	}
	if strings.TrimSpace(category.Name) == "" {
		return nil, NewError(ErrCodeInvalidInput, "category name required")
	}
	_, err := c.db.Exec(`
		INSERT INTO instrument_categories (code, name)
		VALUES (?, ?)
		ON CONFLICT(code) DO UPDATE SET name = excluded.name
	`, category.Code, category.Name)
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "save category", err)
	}
	return &category, nil
}

// GetCategories returns all instrument categories ordered by code.
func (c *Core) GetCategories() ([]InstrumentCategory, error) {
	rows, err := c.db.Query("SELECT code, name FROM instrument_categories ORDER BY code")
	if err != nil {
		return nil, WrapError(ErrCodeDatabase, "query categories", err)
	}
	defer rows.Close()

	var result []InstrumentCategory
	for rows.Next() {
		var cat InstrumentCategory
		if err := rows.Scan(&cat.Code, &cat.Name); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

// DeleteCategory removes an instrument category by code.
func (c *Core) DeleteCategory(code string) (bool, error) {
	result, err := c.db.Exec("DELETE FROM instrument_categories WHERE code = ?", normalizeCode(code))
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete category", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func currencyExists(tx *sql.Tx, code string) (bool, error) {
	var one int
	err := tx.QueryRow("SELECT 1 FROM currencies WHERE code = ?", code).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func categoryExists(tx *sql.Tx, code string) (bool, error) {
	var one int
	err := tx.QueryRow("SELECT 1 FROM instrument_categories WHERE code = ?", code).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
