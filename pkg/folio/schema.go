package folio

import "database/sql"

func initDatabase(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS currencies (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			iso_num_code TEXT NOT NULL DEFAULT ''
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS instrument_categories (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS instruments (
			symbol TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			currency_code TEXT NOT NULL REFERENCES currencies(code),
			type TEXT NOT NULL CHECK(type IN ('SHARE', 'BOND', 'ETF')),
			category_code TEXT NOT NULL REFERENCES instrument_categories(code),
			isin TEXT,
			par_value TEXT
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS portfolios (
			name TEXT PRIMARY KEY,
			currency_code TEXT NOT NULL REFERENCES currencies(code),
			available_money TEXT NOT NULL DEFAULT '0'
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS positions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			portfolio_name TEXT NOT NULL REFERENCES portfolios(name) ON DELETE CASCADE,
			symbol TEXT NOT NULL REFERENCES instruments(symbol),
			quantity INTEGER NOT NULL DEFAULT 0 CHECK(quantity >= 0),
			accounting_price TEXT NOT NULL DEFAULT '0',
			exclude_from_distribution INTEGER NOT NULL DEFAULT 0,
			UNIQUE(portfolio_name, symbol)
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS operations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uid TEXT NOT NULL UNIQUE,
			portfolio_name TEXT NOT NULL REFERENCES portfolios(name) ON DELETE CASCADE,
			symbol TEXT REFERENCES instruments(symbol),
			type TEXT NOT NULL,
			quantity INTEGER NOT NULL DEFAULT 1 CHECK(quantity >= 0),
			price TEXT NOT NULL DEFAULT '0',
			accumulated_coupon_income TEXT NOT NULL DEFAULT '0',
			percent TEXT,
			deleted INTEGER NOT NULL DEFAULT 0,
			processed INTEGER NOT NULL DEFAULT 0,
			when_add DATETIME NOT NULL
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE INDEX IF NOT EXISTS idx_operations_portfolio_symbol
		ON operations(portfolio_name, symbol, type)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS instrument_prices (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol TEXT NOT NULL REFERENCES instruments(symbol) ON DELETE CASCADE,
			price TEXT NOT NULL,
			accumulated_coupon_income TEXT NOT NULL DEFAULT '0',
			when_add DATETIME NOT NULL
		)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE INDEX IF NOT EXISTS idx_instrument_prices_symbol_when
		ON instrument_prices(symbol, when_add)
	`); err != nil {
		return err
	}

	if err := exec(tx, `
		CREATE TABLE IF NOT EXISTS target_distributions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			portfolio_name TEXT NOT NULL REFERENCES portfolios(name) ON DELETE CASCADE,
			category_code TEXT NOT NULL REFERENCES instrument_categories(code),
			percent TEXT NOT NULL,
			UNIQUE(portfolio_name, category_code)
		)
	`); err != nil {
		return err
	}

	return tx.Commit()
}

func exec(tx *sql.Tx, query string) error {
	_, err := tx.Exec(query)
	return err
}
