package folio

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount wraps decimal.Decimal for monetary values and prices.
// JSON marshaling outputs a plain number, storage uses the exact decimal
// string representation so no precision is lost through SQLite.
type Amount struct {
	decimal.Decimal
}

// MarshalJSON outputs as a JSON number (not a string).
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// Scan implements sql.Scanner, reading TEXT/REAL/INTEGER columns.
func (a *Amount) Scan(src any) error {
	if src == nil {
		a.Decimal = decimal.Zero
		return nil
	}
	switch v := src.(type) {
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("scan amount %q: %w", v, err)
		}
		a.Decimal = d
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("scan amount %q: %w", v, err)
		}
		a.Decimal = d
		return nil
	case float64:
		a.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		a.Decimal = decimal.NewFromInt(v)
		return nil
	}
	return a.Decimal.Scan(src)
}

// Value implements driver.Valuer for database writes.
func (a Amount) Value() (driver.Value, error) {
	return a.Decimal.String(), nil
}

// FloorScale truncates the amount toward negative infinity at scale decimal places.
func (a Amount) FloorScale(scale int32) Amount {
	return Amount{a.Decimal.RoundFloor(scale)}
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return Amount{a.Decimal.Add(b.Decimal)}
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return Amount{a.Decimal.Sub(b.Decimal)}
}

// MulInt returns a multiplied by an integer quantity.
func (a Amount) MulInt(n int64) Amount {
	return Amount{a.Decimal.Mul(decimal.NewFromInt(n))}
}

// ZeroAmount returns the zero amount.
func ZeroAmount() Amount {
	return Amount{decimal.Zero}
}

// NewAmount creates an Amount from a decimal string, panicking on invalid input.
// Intended for constants and tests.
func NewAmount(s string) Amount {
	return Amount{decimal.RequireFromString(s)}
}

// NewAmountFromInt creates an Amount from an int64.
func NewAmountFromInt(i int64) Amount {
	return Amount{decimal.NewFromInt(i)}
}

var oneHundred = decimal.NewFromInt(100)

// divFloor divides a by b and floors the quotient at scale decimal places.
// QuoRem truncates toward zero, so negative quotients with a remainder are
// nudged down one unit in the last place to match floor semantics.
func divFloor(a, b decimal.Decimal, scale int32) decimal.Decimal {
	q, r := a.QuoRem(b, scale)
	if r.Sign() != 0 && a.Sign()*b.Sign() < 0 {
		q = q.Sub(decimal.New(1, -scale))
	}
	return q
}
