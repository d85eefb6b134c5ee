package folio

import (
	"database/sql"
	"strings"
)

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeType(instrumentType string) string {
	return strings.ToUpper(strings.TrimSpace(instrumentType))
}

func isValidInstrumentType(instrumentType string) bool {
	for _, t := range InstrumentTypes {
		if t == instrumentType {
			return true
		}
	}
	return false
}

func typeIn(instrumentType string, allowed []string) bool {
	for _, t := range allowed {
		if t == instrumentType {
			return true
		}
	}
	return false
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	if strings.TrimSpace(*value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
