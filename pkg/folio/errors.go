package folio

import (
	"errors"
	"fmt"
)

// ErrorCode defines error classification codes for structured error handling.
type ErrorCode string

// Error codes for rejected preconditions and plumbing failures.
const (
	ErrCodePortfolioNotFound  ErrorCode = "PORTFOLIO_NOT_FOUND"
	ErrCodeInstrumentNotFound ErrorCode = "INSTRUMENT_NOT_FOUND"
	ErrCodeUnsupportedType    ErrorCode = "UNSUPPORTED_INSTRUMENT_TYPE"
	ErrCodeInsufficientMoney  ErrorCode = "INSUFFICIENT_MONEY"
	ErrCodeInsufficientAmount ErrorCode = "INSUFFICIENT_AMOUNT"
	ErrCodePositionNotFound   ErrorCode = "POSITION_NOT_FOUND"
	ErrCodeUnexpectedValue    ErrorCode = "UNEXPECTED_VALUE"
	ErrCodeCurrencyNotFound   ErrorCode = "CURRENCY_NOT_FOUND"
	ErrCodeCategoryNotFound   ErrorCode = "CATEGORY_NOT_FOUND"
	ErrCodeTypeNotFound       ErrorCode = "INSTRUMENT_TYPE_NOT_FOUND"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeDatabase           ErrorCode = "DATABASE_ERROR"
)

// Error represents a structured error with classification code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Is and errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with classification code and additional context.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// IsErrorCode checks if an error matches a specific error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func errPortfolioNotFound(name string) *Error {
	return NewError(ErrCodePortfolioNotFound, fmt.Sprintf("portfolio %q not found", name))
}

func errInstrumentNotFound(symbol string) *Error {
	return NewError(ErrCodeInstrumentNotFound, fmt.Sprintf("instrument %q not found", symbol))
}

func errUnsupportedType(instrumentType string) *Error {
	return NewError(ErrCodeUnsupportedType, fmt.Sprintf("operation not permitted for instrument type %s", instrumentType))
}

func errInsufficientMoney(portfolioName string) *Error {
	return NewError(ErrCodeInsufficientMoney, fmt.Sprintf("insufficient money in portfolio %q", portfolioName))
}

func errInsufficientAmount(portfolioName, symbol string) *Error {
	return NewError(ErrCodeInsufficientAmount, fmt.Sprintf("insufficient amount of %q in portfolio %q", symbol, portfolioName))
}

func errPositionNotFound(portfolioName, symbol string) *Error {
	return NewError(ErrCodePositionNotFound, fmt.Sprintf("no position for %q in portfolio %q", symbol, portfolioName))
}

func errCurrencyNotFound(code string) *Error {
	return NewError(ErrCodeCurrencyNotFound, fmt.Sprintf("currency %q not found", code))
}

func errCategoryNotFound(code string) *Error {
	return NewError(ErrCodeCategoryNotFound, fmt.Sprintf("instrument category %q not found", code))
}
