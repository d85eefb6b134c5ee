package folio

import (
	"os"
	"path/filepath"
	"testing"
)

// setupTestDB creates a temporary database for testing and returns a Core
// instance. The caller should defer cleanup() to remove the temp file.
func setupTestDB(t *testing.T) (*Core, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "folio-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(tmpDir, "test.db")
	core, err := Open(dbPath)
	if err != nil {
		os.RemoveAll(tmpDir)
		t.Fatalf("failed to open test db: %v", err)
	}

	cleanup := func() {
		core.Close()
		os.RemoveAll(tmpDir)
	}

	return core, cleanup
}

// seedDictionaries creates the USD currency plus STOCKS and BONDS categories.
func seedDictionaries(t *testing.T, core *Core) {
	t.Helper()
	if _, err := core.SaveCurrency(Currency{Code: "USD", Name: "US Dollar", ISONumCode: "840"}); err != nil {
		t.Fatalf("failed to seed currency: %v", err)
	}
	for _, cat := range []InstrumentCategory{
		{Code: "STOCKS", Name: "Stocks"},
		{Code: "BONDS", Name: "Bonds"},
	} {
		if _, err := core.SaveCategory(cat); err != nil {
			t.Fatalf("failed to seed category %s: %v", cat.Code, err)
		}
	}
}

// testShare creates a SHARE instrument in the STOCKS category.
func testShare(t *testing.T, core *Core, symbol string) {
	t.Helper()
	_, err := core.SaveInstrument(SaveInstrumentRequest{
		Symbol:       symbol,
		Name:         symbol + " test share",
		CurrencyCode: "USD",
		Type:         TypeShare,
		CategoryCode: "STOCKS",
	})
	if err != nil {
		t.Fatalf("failed to create test share %s: %v", symbol, err)
	}
}

// testETF creates an ETF instrument in the given category.
func testETF(t *testing.T, core *Core, symbol, category string) {
	t.Helper()
	_, err := core.SaveInstrument(SaveInstrumentRequest{
		Symbol:       symbol,
		Name:         symbol + " test fund",
		CurrencyCode: "USD",
		Type:         TypeETF,
		CategoryCode: category,
	})
	if err != nil {
		t.Fatalf("failed to create test ETF %s: %v", symbol, err)
	}
}

// testBond creates a BOND instrument with the given par value.
func testBond(t *testing.T, core *Core, symbol, par string) {
	t.Helper()
	parValue := NewAmount(par)
	_, err := core.SaveBond(SaveInstrumentRequest{
		Symbol:       symbol,
		Name:         symbol + " test bond",
		CurrencyCode: "USD",
		CategoryCode: "BONDS",
		ParValue:     &parValue,
	})
	if err != nil {
		t.Fatalf("failed to create test bond %s: %v", symbol, err)
	}
}

// testPortfolio creates a portfolio without a target distribution.
func testPortfolio(t *testing.T, core *Core, name string) {
	t.Helper()
	_, err := core.SavePortfolio(SavePortfolioRequest{Name: name, CurrencyCode: "USD"})
	if err != nil {
		t.Fatalf("failed to create test portfolio %s: %v", name, err)
	}
}

// fundPortfolio deposits money so subsequent buys succeed.
func fundPortfolio(t *testing.T, core *Core, name, value string) {
	t.Helper()
	if _, err := core.AddMoney(AddMoneyRequest{PortfolioName: name, Value: NewAmount(value)}); err != nil {
		t.Fatalf("failed to fund portfolio %s: %v", name, err)
	}
}

// availableMoney reads the current money balance of a portfolio.
func availableMoney(t *testing.T, core *Core, name string) Amount {
	t.Helper()
	portfolio, err := core.GetPortfolio(name)
	if err != nil {
		t.Fatalf("failed to load portfolio %s: %v", name, err)
	}
	if portfolio == nil {
		t.Fatalf("portfolio %s not found", name)
	}
	return portfolio.AvailableMoney
}

// positionFor finds a single position, nil when the instrument is not held.
func positionFor(t *testing.T, core *Core, portfolioName, symbol string) *InstrumentPosition {
	t.Helper()
	positions, err := core.Positions(portfolioName)
	if err != nil {
		t.Fatalf("failed to load positions: %v", err)
	}
	for i := range positions {
		if positions[i].Symbol == symbol {
			return &positions[i]
		}
	}
	return nil
}

// assertNoError fails the test if err is not nil.
func assertNoError(t *testing.T, err error, msg string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: unexpected error: %v", msg, err)
	}
}

// assertErrorCode fails the test unless err carries the expected code.
func assertErrorCode(t *testing.T, err error, code ErrorCode, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("%s: expected %s error but got nil", msg, code)
	}
	if !IsErrorCode(err, code) {
		t.Fatalf("%s: expected error code %s, got: %v", msg, code, err)
	}
}

// assertAmount fails the test unless the amount equals the decimal literal.
func assertAmount(t *testing.T, got Amount, want, msg string) {
	t.Helper()
	if !got.Decimal.Equal(NewAmount(want).Decimal) {
		t.Errorf("%s: got %s, want %s", msg, got.Decimal.String(), want)
	}
}
