package folio

import (
	"testing"
)

func TestSaveCurrency_And_Delete(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := core.SaveCurrency(Currency{Code: "usd", Name: "US Dollar", ISONumCode: "840"})
	assertNoError(t, err, "SaveCurrency")

	currencies, err := core.GetCurrencies()
	assertNoError(t, err, "GetCurrencies")
	if len(currencies) != 1 || currencies[0].Code != "USD" {
		t.Fatalf("expected normalized USD currency, got %+v", currencies)
	}

	// Upsert updates the name in place.
	_, err = core.SaveCurrency(Currency{Code: "USD", Name: "United States Dollar", ISONumCode: "840"})
	assertNoError(t, err, "SaveCurrency update")
	currencies, _ = core.GetCurrencies()
	if len(currencies) != 1 || currencies[0].Name != "United States Dollar" {
		t.Errorf("expected updated name, got %+v", currencies)
	}

	deleted, err := core.DeleteCurrency("USD")
	assertNoError(t, err, "DeleteCurrency")
	if !deleted {
		t.Error("expected currency to be deleted")
	}
	deleted, _ = core.DeleteCurrency("USD")
	if deleted {
		t.Error("expected second delete to report no change")
	}
}

func TestSaveCurrency_Validation(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := core.SaveCurrency(Currency{Code: "", Name: "Nameless"})
	assertErrorCode(t, err, ErrCodeInvalidInput, "empty code")
	_, err = core.SaveCurrency(Currency{Code: "USD", Name: "  "})
	assertErrorCode(t, err, ErrCodeInvalidInput, "blank name")
}

func TestSaveInstrument_RequiresDictionaries(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := core.SaveInstrument(SaveInstrumentRequest{
		Symbol:       "AAPL",
		Name:         "Apple",
		CurrencyCode: "USD",
		Type:         TypeShare,
		CategoryCode: "STOCKS",
	})
	assertErrorCode(t, err, ErrCodeCurrencyNotFound, "unknown currency")

	_, err = core.SaveCurrency(Currency{Code: "USD", Name: "US Dollar"})
	assertNoError(t, err, "SaveCurrency")

	_, err = core.SaveInstrument(SaveInstrumentRequest{
		Symbol:       "AAPL",
		Name:         "Apple",
		CurrencyCode: "USD",
		Type:         TypeShare,
		CategoryCode: "STOCKS",
	})
	assertErrorCode(t, err, ErrCodeCategoryNotFound, "unknown category")
}

func TestSaveInstrument_TypeHandling(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()
	seedDictionaries(t, core)

	_, err := core.SaveInstrument(SaveInstrumentRequest{
		Symbol:       "AAPL",
		Name:         "Apple",
		CurrencyCode: "USD",
		Type:         "share",
		CategoryCode: "STOCKS",
	})
	assertNoError(t, err, "SaveInstrument with lowercase type")

	instrument, err := core.GetInstrument("aapl")
	assertNoError(t, err, "GetInstrument")
	if instrument == nil {
		t.Fatal("instrument not found")
	}
	if instrument.Type != TypeShare {
		t.Errorf("expected normalized type SHARE, got %s", instrument.Type)
	}
	if instrument.ParValue != nil {
		t.Error("share carries no par value")
	}

	_, err = core.SaveInstrument(SaveInstrumentRequest{
		Symbol:       "WAT",
		Name:         "What",
		CurrencyCode: "USD",
		Type:         "CRYPTO",
		CategoryCode: "STOCKS",
	})
	assertErrorCode(t, err, ErrCodeTypeNotFound, "unknown type")
}

func TestSaveBond_RequiresParValue(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()
	seedDictionaries(t, core)

	_, err := core.SaveBond(SaveInstrumentRequest{
		Symbol:       "GOVT1",
		Name:         "Treasury",
		CurrencyCode: "USD",
		CategoryCode: "BONDS",
	})
	assertErrorCode(t, err, ErrCodeInvalidInput, "bond without par value")

	par := NewAmount("1000")
	bond, err := core.SaveBond(SaveInstrumentRequest{
		Symbol:       "GOVT1",
		Name:         "Treasury",
		CurrencyCode: "USD",
		CategoryCode: "BONDS",
		ParValue:     &par,
	})
	assertNoError(t, err, "SaveBond")
	if bond.ParValue == nil {
		t.Fatal("expected par value on bond")
	}
	assertAmount(t, *bond.ParValue, "1000", "par value")
}

func TestAddInstrumentPrice_PercentQuote(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()
	seedDictionaries(t, core)
	testShare(t, core, "AAPL")
	testBond(t, core, "GOVT1", "1000")

	sample, err := core.AddInstrumentPrice(AddInstrumentPriceRequest{
		Symbol:    "GOVT1",
		Price:     NewAmount("101.5"),
		IsPercent: true,
	})
	assertNoError(t, err, "percent quote for bond")
	assertAmount(t, sample.Price, "1015", "percent quote converted to unit price")

	_, err = core.AddInstrumentPrice(AddInstrumentPriceRequest{
		Symbol:    "AAPL",
		Price:     NewAmount("101.5"),
		IsPercent: true,
	})
	assertErrorCode(t, err, ErrCodeUnsupportedType, "percent quote for share")

	_, err = core.AddInstrumentPrice(AddInstrumentPriceRequest{
		Symbol: "NOPE",
		Price:  NewAmount("1"),
	})
	assertErrorCode(t, err, ErrCodeInstrumentNotFound, "price for unknown instrument")
}

func TestGetInstrumentPrices_OldestFirst(t *testing.T) {
	core, cleanup := setupTestDB(t)
	defer cleanup()
	seedDictionaries(t, core)
	testShare(t, core, "AAPL")

	for _, price := range []string{"10", "11", "12"} {
		_, err := core.AddInstrumentPrice(AddInstrumentPriceRequest{
			Symbol: "AAPL",
			Price:  NewAmount(price),
		})
		assertNoError(t, err, "AddInstrumentPrice "+price)
	}

	samples, err := core.GetInstrumentPrices("AAPL")
	assertNoError(t, err, "GetInstrumentPrices")
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	assertAmount(t, samples[0].Price, "10", "first sample")
	assertAmount(t, samples[2].Price, "12", "last sample")

	_, err = core.GetInstrumentPrices("NOPE")
	assertErrorCode(t, err, ErrCodeInstrumentNotFound, "prices for unknown instrument")
}
