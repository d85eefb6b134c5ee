package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"folio/pkg/folio"
)

func TestMapErrorCodeToHTTPStatus(t *testing.T) {
	cases := []struct {
		code folio.ErrorCode
		want int
	}{
		{folio.ErrCodeInvalidInput, http.StatusBadRequest},
		{folio.ErrCodeUnexpectedValue, http.StatusBadRequest},
		{folio.ErrCodeInsufficientMoney, http.StatusBadRequest},
		{folio.ErrCodeInsufficientAmount, http.StatusBadRequest},
		{folio.ErrCodePortfolioNotFound, http.StatusNotFound},
		{folio.ErrCodeInstrumentNotFound, http.StatusNotFound},
		{folio.ErrCodePositionNotFound, http.StatusNotFound},
		{folio.ErrCodeCurrencyNotFound, http.StatusNotFound},
		{folio.ErrCodeCategoryNotFound, http.StatusNotFound},
		{folio.ErrCodeTypeNotFound, http.StatusNotFound},
		{folio.ErrCodeUnsupportedType, http.StatusUnprocessableEntity},
		{folio.ErrCodeDatabase, http.StatusInternalServerError},
		{folio.ErrorCode("UNKNOWN"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := mapErrorCodeToHTTPStatus(tc.code); got != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.code, tc.want, got)
		}
	}
}

func TestWriteErrorResponse(t *testing.T) {
	recorder := httptest.NewRecorder()
	writeErrorResponse(recorder, http.StatusBadRequest, folio.NewError(folio.ErrCodePortfolioNotFound, "portfolio missing not found"))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ErrorCode != string(folio.ErrCodePortfolioNotFound) {
		t.Errorf("expected PORTFOLIO_NOT_FOUND, got %q", resp.ErrorCode)
	}
	if resp.Code != http.StatusNotFound {
		t.Errorf("expected code 404 in body, got %d", resp.Code)
	}

	// Plain errors keep the caller's status and carry no business code.
	recorder = httptest.NewRecorder()
	writeErrorResponse(recorder, http.StatusBadRequest, errors.New("boom"))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	resp = ErrorResponse{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ErrorCode != "" {
		t.Errorf("expected empty error code, got %q", resp.ErrorCode)
	}
}
