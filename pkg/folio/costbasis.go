package folio

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// accountingPrice recomputes the weighted-average cost basis per unit for one
// instrument in one portfolio: the sum of processed, non-deleted BUY totals
// minus the sum of processed, non-deleted SELL totals, divided by the
// post-mutation quantity and floored at the configured scale. A quantity of
// zero yields zero. The function only reads history; the caller stores the
// result on the position.
func (c *Core) accountingPrice(tx *sql.Tx, portfolioName, symbol string, quantity int64) (Amount, error) {
	if quantity == 0 {
		return ZeroAmount(), nil
	}

	rows, err := tx.Query(`
		SELECT type, quantity, price
		FROM operations
		WHERE portfolio_name = ? AND symbol = ?
			AND type IN (?, ?)
			AND processed = 1 AND deleted = 0
	`, portfolioName, symbol, OpBuy, OpSell)
	if err != nil {
		return ZeroAmount(), WrapError(ErrCodeDatabase, "query operation history", err)
	}
	defer rows.Close()

	netValue := decimal.Zero
	for rows.Next() {
		var opType string
		var opQuantity int64
		var price Amount
		if err := rows.Scan(&opType, &opQuantity, &price); err != nil {
			return ZeroAmount(), err
		}
		total := price.Decimal.Mul(decimal.NewFromInt(opQuantity))
		if opType == OpBuy {
			netValue = netValue.Add(total)
		} else {
			netValue = netValue.Sub(total)
		}
	}
	if err := rows.Err(); err != nil {
		return ZeroAmount(), err
	}

	return Amount{divFloor(netValue, decimal.NewFromInt(quantity), c.scale)}, nil
}
