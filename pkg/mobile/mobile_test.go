package mobile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"folio/pkg/folio"
)

func setupMobileCore(t *testing.T) (*Core, func()) {
	t.Helper()
	tmp := t.TempDir()
	dbPath := filepath.Join(tmp, "test.db")
	core, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	cleanup := func() {
		_ = core.Close()
		_ = os.RemoveAll(tmp)
	}
	return core, cleanup
}

func seedMobileCore(t *testing.T, core *Core) {
	t.Helper()
	if _, err := core.core.SaveCurrency(folio.Currency{Code: "USD", Name: "US Dollar"}); err != nil {
		t.Fatalf("SaveCurrency: %v", err)
	}
	if _, err := core.core.SaveCategory(folio.InstrumentCategory{Code: "STOCKS", Name: "Stocks"}); err != nil {
		t.Fatalf("SaveCategory: %v", err)
	}
	if _, err := core.core.SaveInstrument(folio.SaveInstrumentRequest{
		Symbol: "AAPL", Name: "Apple", CurrencyCode: "USD",
		Type: folio.TypeShare, CategoryCode: "STOCKS",
	}); err != nil {
		t.Fatalf("SaveInstrument: %v", err)
	}
	if _, err := core.core.SavePortfolio(folio.SavePortfolioRequest{Name: "main", CurrencyCode: "USD"}); err != nil {
		t.Fatalf("SavePortfolio: %v", err)
	}
}

func TestMobileCoreJSONFlows(t *testing.T) {
	core, cleanup := setupMobileCore(t)
	defer cleanup()
	seedMobileCore(t, core)

	resp, err := core.AddMoneyJSON(`{"portfolio_name":"main","value":1000}`)
	if err != nil {
		t.Fatalf("AddMoneyJSON: %v", err)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		t.Fatalf("unmarshal add-money response: %v", err)
	}
	if result["uid"] == nil || result["uid"] == "" {
		t.Fatalf("expected uid in response, got %v", result)
	}

	resp, err = core.BuyInstrumentJSON(`{"portfolio_name":"main","symbol":"AAPL","quantity":3,"price":15}`)
	if err != nil {
		t.Fatalf("BuyInstrumentJSON: %v", err)
	}
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		t.Fatalf("unmarshal buy response: %v", err)
	}
	buyUID, _ := result["uid"].(string)
	if buyUID == "" {
		t.Fatalf("expected uid in buy response")
	}

	resp, err = core.GetPositionsJSON("main")
	if err != nil {
		t.Fatalf("GetPositionsJSON: %v", err)
	}
	var positions []map[string]any
	if err := json.Unmarshal([]byte(resp), &positions); err != nil {
		t.Fatalf("unmarshal positions: %v", err)
	}
	if len(positions) != 1 {
		t.Fatalf("expected one position, got %d", len(positions))
	}

	resp, err = core.SellInstrumentJSON(`{"portfolio_name":"main","symbol":"AAPL","quantity":1,"price":20}`)
	if err != nil {
		t.Fatalf("SellInstrumentJSON: %v", err)
	}

	resp, err = core.GetOperationsJSON("main")
	if err != nil {
		t.Fatalf("GetOperationsJSON: %v", err)
	}
	var operations []map[string]any
	if err := json.Unmarshal([]byte(resp), &operations); err != nil {
		t.Fatalf("unmarshal operations: %v", err)
	}
	if len(operations) != 3 {
		t.Fatalf("expected three operations, got %d", len(operations))
	}

	resp, err = core.RebalanceJSON("main", false)
	if err != nil {
		t.Fatalf("RebalanceJSON: %v", err)
	}
	resp, err = core.DistributionJSON("main")
	if err != nil {
		t.Fatalf("DistributionJSON: %v", err)
	}
	var dist map[string]any
	if err := json.Unmarshal([]byte(resp), &dist); err != nil {
		t.Fatalf("unmarshal distribution: %v", err)
	}

	resp, err = core.GetPortfoliosJSON()
	if err != nil {
		t.Fatalf("GetPortfoliosJSON: %v", err)
	}

	deleted, err := core.DeleteOperation(buyUID)
	if err != nil {
		t.Fatalf("DeleteOperation: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to return true")
	}
}

func TestMobileCoreInvalidJSON(t *testing.T) {
	core, cleanup := setupMobileCore(t)
	defer cleanup()

	if _, err := core.AddMoneyJSON("{bad json}"); err == nil {
		t.Fatalf("expected error for invalid money JSON")
	}
	if _, err := core.BuyInstrumentJSON("{bad json}"); err == nil {
		t.Fatalf("expected error for invalid trade JSON")
	}
	if _, err := core.AddMoneyJSON(`{"portfolio_name":"main","value":1,"when_add":"not-a-date"}`); err == nil {
		t.Fatalf("expected error for invalid timestamp")
	}
	if _, err := core.WithdrawMoneyJSON(`{"portfolio_name":"ghost","value":1}`); err == nil {
		t.Fatalf("expected error for unknown portfolio")
	}
}

func TestMobileCoreCloseNil(t *testing.T) {
	var c *Core
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
