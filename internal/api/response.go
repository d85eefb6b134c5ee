package api

import (
	"errors"
	"net/http"

	"folio/pkg/folio"
)

// ErrorResponse is the error envelope carrying the business error code.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// writeErrorResponse writes an error response, mapping structured business
// errors to their HTTP status.
func writeErrorResponse(w http.ResponseWriter, httpStatus int, err error) {
	response := ErrorResponse{
		Code:    httpStatus,
		Message: err.Error(),
	}

	var folioErr *folio.Error
	if errors.As(err, &folioErr) {
		response.ErrorCode = string(folioErr.Code)
		httpStatus = mapErrorCodeToHTTPStatus(folioErr.Code)
		response.Code = httpStatus
	}

	if noter, ok := w.(errorNoter); ok {
		noter.noteError(response.ErrorCode, response.Message)
	}
	writeJSON(w, httpStatus, response)
}

// mapErrorCodeToHTTPStatus maps business error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code folio.ErrorCode) int {
	switch code {
	case folio.ErrCodeInvalidInput, folio.ErrCodeUnexpectedValue,
		folio.ErrCodeInsufficientMoney, folio.ErrCodeInsufficientAmount:
		return http.StatusBadRequest
	case folio.ErrCodePortfolioNotFound, folio.ErrCodeInstrumentNotFound,
		folio.ErrCodePositionNotFound, folio.ErrCodeCurrencyNotFound,
		folio.ErrCodeCategoryNotFound, folio.ErrCodeTypeNotFound:
		return http.StatusNotFound
	case folio.ErrCodeUnsupportedType:
		return http.StatusUnprocessableEntity
	case folio.ErrCodeDatabase:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
