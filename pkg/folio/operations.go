package folio

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// The operation processor. Each entry point resolves the portfolio (falling
// back to the configured default), validates its preconditions in order,
// persists the operation record and applies the balance and position effects
// in one transaction. A failed precondition leaves no state change behind.

// AddMoney deposits money into a portfolio.
func (c *Core) AddMoney(req AddMoneyRequest) (*OperationResult, error) {
	if req.Value.Sign() < 0 {
		return nil, NewError(ErrCodeInvalidInput, "value must not be negative")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		op := c.newOperation(p.Name, OpAddMoney, nil, 1, req.Value, req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		return op, c.addMoney(tx, p, op.TotalPrice())
	})
}

// WithdrawMoney withdraws money from a portfolio.
func (c *Core) WithdrawMoney(req WithdrawMoneyRequest) (*OperationResult, error) {
	if req.Value.Sign() < 0 {
		return nil, NewError(ErrCodeInvalidInput, "value must not be negative")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		if err := checkMoneySufficient(p, req.Value); err != nil {
			return nil, err
		}
		op := c.newOperation(p.Name, OpWithdrawMoney, nil, 1, req.Value, req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		return op, c.subtractMoney(tx, p, op.TotalPrice())
	})
}

// Tax records a tax or fee payment out of a portfolio.
func (c *Core) Tax(req TaxRequest) (*OperationResult, error) {
	if req.Value.Sign() < 0 {
		return nil, NewError(ErrCodeInvalidInput, "value must not be negative")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		if err := checkMoneySufficient(p, req.Value); err != nil {
			return nil, err
		}
		op := c.newOperation(p.Name, OpTax, nil, 1, req.Value, req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		return op, c.subtractMoney(tx, p, op.TotalPrice())
	})
}

// BuyInstrument buys a share or ETF at a unit price.
func (c *Core) BuyInstrument(req BuyInstrumentRequest) (*OperationResult, error) {
	if err := checkQuantityPrice(req.Quantity, req.Price); err != nil {
		return nil, err
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithoutCoupon()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		op := c.newOperation(p.Name, OpBuy, &instrument.Symbol, req.Quantity, req.Price, req.WhenAdd)
		if err := checkMoneySufficient(p, op.TotalPrice()); err != nil {
			return nil, err
		}
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		if err := c.subtractMoney(tx, p, op.TotalPrice()); err != nil {
			return nil, err
		}
		return op, c.applyBuyToPosition(tx, p.Name, op)
	})
}

// BuyBond buys a bond quoted as percent of par, paying accumulated coupon
// income on top of the clean price.
func (c *Core) BuyBond(req BuyBondRequest) (*OperationResult, error) {
	if err := checkQuantityPrice(req.Quantity, req.Percent); err != nil {
		return nil, err
	}
	if req.AccumulatedCouponIncome.Sign() < 0 {
		return nil, NewError(ErrCodeInvalidInput, "accumulated coupon income must not be negative")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithCoupon()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		price := percentOfPar(*instrument.ParValue, req.Percent, c.scale)
		op := c.newOperation(p.Name, OpBuy, &instrument.Symbol, req.Quantity, price, req.WhenAdd)
		op.AccumulatedCouponIncome = req.AccumulatedCouponIncome
		op.Percent = &req.Percent

		required := op.TotalPrice().Add(op.AccumulatedCouponIncome)
		if err := checkMoneySufficient(p, required); err != nil {
			return nil, err
		}
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		if err := c.subtractMoney(tx, p, required); err != nil {
			return nil, err
		}
		return op, c.applyBuyToPosition(tx, p.Name, op)
	})
}

// SellInstrument sells a share or ETF at a unit price.
func (c *Core) SellInstrument(req SellInstrumentRequest) (*OperationResult, error) {
	if err := checkQuantityPrice(req.Quantity, req.Price); err != nil {
		return nil, err
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithoutCoupon()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		if _, err := c.requirePosition(tx, p.Name, instrument.Symbol, req.Quantity); err != nil {
			return nil, err
		}
		op := c.newOperation(p.Name, OpSell, &instrument.Symbol, req.Quantity, req.Price, req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		if err := c.addMoney(tx, p, op.TotalPrice()); err != nil {
			return nil, err
		}
		return op, c.applySellToPosition(tx, p.Name, op)
	})
}

// SellBond sells a bond quoted as percent of par, receiving accumulated
// coupon income on top of the clean price.
func (c *Core) SellBond(req SellBondRequest) (*OperationResult, error) {
	if err := checkQuantityPrice(req.Quantity, req.Percent); err != nil {
		return nil, err
	}
	if req.AccumulatedCouponIncome.Sign() < 0 {
		return nil, NewError(ErrCodeInvalidInput, "accumulated coupon income must not be negative")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithCoupon()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		if _, err := c.requirePosition(tx, p.Name, instrument.Symbol, req.Quantity); err != nil {
			return nil, err
		}
		price := percentOfPar(*instrument.ParValue, req.Percent, c.scale)
		op := c.newOperation(p.Name, OpSell, &instrument.Symbol, req.Quantity, price, req.WhenAdd)
		op.AccumulatedCouponIncome = req.AccumulatedCouponIncome
		op.Percent = &req.Percent
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		if err := c.addMoney(tx, p, op.TotalPrice().Add(op.AccumulatedCouponIncome)); err != nil {
			return nil, err
		}
		return op, c.applySellToPosition(tx, p.Name, op)
	})
}

// Dividend records a dividend payment for a held share.
func (c *Core) Dividend(req DividendRequest) (*OperationResult, error) {
	if err := checkQuantityPrice(req.Quantity, req.Price); err != nil {
		return nil, err
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithDividend()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		if _, err := c.requirePosition(tx, p.Name, instrument.Symbol, req.Quantity); err != nil {
			return nil, err
		}
		op := c.newOperation(p.Name, OpDividend, &instrument.Symbol, req.Quantity, req.Price, req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		return op, c.addMoney(tx, p, op.TotalPrice())
	})
}

// Coupon records a coupon payment for a held bond.
func (c *Core) Coupon(req CouponRequest) (*OperationResult, error) {
	if err := checkQuantityPrice(req.Quantity, req.Price); err != nil {
		return nil, err
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithCoupon()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		if _, err := c.requirePosition(tx, p.Name, instrument.Symbol, req.Quantity); err != nil {
			return nil, err
		}
		op := c.newOperation(p.Name, OpCoupon, &instrument.Symbol, req.Quantity, req.Price, req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		return op, c.addMoney(tx, p, op.TotalPrice())
	})
}

// BondRedemption redeems the entire held quantity of a bond at par.
func (c *Core) BondRedemption(req BondRedemptionRequest) (*OperationResult, error) {
	if req.AccumulatedCouponIncome.Sign() < 0 {
		return nil, NewError(ErrCodeInvalidInput, "accumulated coupon income must not be negative")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		if !typeIn(instrument.Type, typesWithCoupon()) {
			return nil, errUnsupportedType(instrument.Type)
		}
		position, err := c.findPosition(tx, p.Name, instrument.Symbol)
		if err != nil {
			return nil, err
		}
		if position == nil {
			return nil, errPositionNotFound(p.Name, instrument.Symbol)
		}

		op := c.newOperation(p.Name, OpBondRedemption, &instrument.Symbol, position.Quantity, *instrument.ParValue, req.WhenAdd)
		op.AccumulatedCouponIncome = req.AccumulatedCouponIncome
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		if err := c.addMoney(tx, p, op.TotalPrice().Add(op.AccumulatedCouponIncome)); err != nil {
			return nil, err
		}
		return op, c.storePosition(tx, p.Name, instrument.Symbol, 0, ZeroAmount())
	})
}

// InstrumentConversion replaces the held quantity of an instrument (split,
// merge, ticker conversion) without moving cash. The existing cost basis is
// spread over the new quantity.
func (c *Core) InstrumentConversion(req InstrumentConversionRequest) (*OperationResult, error) {
	if req.NewQuantity < 1 {
		return nil, NewError(ErrCodeInvalidInput, "new quantity must be at least 1")
	}
	return c.runOperation(req.PortfolioName, func(tx *sql.Tx, p *Portfolio) (*Operation, error) {
		instrument, err := loadInstrument(tx, normalizeSymbol(req.Symbol))
		if err != nil {
			return nil, err
		}
		position, err := c.findPosition(tx, p.Name, instrument.Symbol)
		if err != nil {
			return nil, err
		}
		if position == nil {
			return nil, errPositionNotFound(p.Name, instrument.Symbol)
		}

		op := c.newOperation(p.Name, OpConversion, &instrument.Symbol, req.NewQuantity, ZeroAmount(), req.WhenAdd)
		if err := insertOperation(tx, op); err != nil {
			return nil, err
		}
		newPrice, err := c.accountingPrice(tx, p.Name, instrument.Symbol, req.NewQuantity)
		if err != nil {
			return nil, err
		}
		return op, c.storePosition(tx, p.Name, instrument.Symbol, req.NewQuantity, newPrice)
	})
}

// DeleteOperation soft-deletes an operation by its public identifier.
// Already-applied balance and position effects stay in place; only future
// cost-basis recomputations skip the record.
func (c *Core) DeleteOperation(uid string) (bool, error) {
	result, err := c.db.Exec("UPDATE operations SET deleted = 1 WHERE uid = ? AND deleted = 0", uid)
	if err != nil {
		return false, WrapError(ErrCodeDatabase, "delete operation", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// runOperation wraps the shared portfolio resolution and result assembly
// around one operation kind.
func (c *Core) runOperation(portfolioName string, fn func(*sql.Tx, *Portfolio) (*Operation, error)) (*OperationResult, error) {
	var result OperationResult
	err := c.withTx(func(tx *sql.Tx) error {
		name, err := c.resolvePortfolioName(tx, portfolioName)
		if err != nil {
			return err
		}
		portfolio, err := loadPortfolio(tx, name)
		if err != nil {
			return err
		}

		op, err := fn(tx, portfolio)
		if err != nil {
			return err
		}

		result = OperationResult{
			UID:                     op.UID,
			PortfolioName:           portfolio.Name,
			CurrencyCode:            portfolio.CurrencyCode,
			Type:                    op.Type,
			Quantity:                op.Quantity,
			Price:                   op.Price,
			Total:                   op.TotalPrice(),
			AccumulatedCouponIncome: op.AccumulatedCouponIncome,
			Percent:                 op.Percent,
			WhenAdd:                 op.WhenAdd,
		}
		if op.Symbol != nil {
			result.Symbol = *op.Symbol
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("operation processed",
		"uid", result.UID,
		"portfolio", result.PortfolioName,
		"type", result.Type,
		"symbol", result.Symbol,
		"quantity", result.Quantity,
		"total", result.Total)
	return &result, nil
}

func (c *Core) newOperation(portfolioName, opType string, symbol *string, quantity int64, price Amount, whenAdd *time.Time) *Operation {
	return &Operation{
		UID:                     uuid.NewString(),
		PortfolioName:           portfolioName,
		Symbol:                  symbol,
		Type:                    opType,
		Quantity:                quantity,
		Price:                   price,
		AccumulatedCouponIncome: ZeroAmount(),
		Processed:               true,
		WhenAdd:                 c.whenAdd(whenAdd),
	}
}

func insertOperation(tx *sql.Tx, op *Operation) error {
	priceValue, _ := op.Price.Value()
	aciValue, _ := op.AccumulatedCouponIncome.Value()
	var percentValue any
	if op.Percent != nil {
		percentValue, _ = op.Percent.Value()
	}
	result, err := tx.Exec(`
		INSERT INTO operations (uid, portfolio_name, symbol, type, quantity, price,
			accumulated_coupon_income, percent, deleted, processed, when_add)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, 1, ?)
	`, op.UID, op.PortfolioName, nullString(op.Symbol), op.Type, op.Quantity,
		priceValue, aciValue, percentValue, op.WhenAdd)
	if err != nil {
		return WrapError(ErrCodeDatabase, "insert operation", err)
	}
	op.ID, err = result.LastInsertId()
	return err
}

func checkQuantityPrice(quantity int64, price Amount) error {
	if quantity < 1 {
		return NewError(ErrCodeInvalidInput, "quantity must be at least 1")
	}
	if price.Sign() < 0 {
		return NewError(ErrCodeInvalidInput, "price must not be negative")
	}
	return nil
}

func checkMoneySufficient(p *Portfolio, required Amount) error {
	if p.AvailableMoney.Cmp(required.Decimal) < 0 {
		return errInsufficientMoney(p.Name)
	}
	return nil
}

func (c *Core) addMoney(tx *sql.Tx, p *Portfolio, value Amount) error {
	return c.storeMoney(tx, p, p.AvailableMoney.Add(value))
}

func (c *Core) subtractMoney(tx *sql.Tx, p *Portfolio, value Amount) error {
	return c.storeMoney(tx, p, p.AvailableMoney.Sub(value))
}

func (c *Core) storeMoney(tx *sql.Tx, p *Portfolio, money Amount) error {
	moneyValue, _ := money.Value()
	if _, err := tx.Exec("UPDATE portfolios SET available_money = ? WHERE name = ?", moneyValue, p.Name); err != nil {
		return WrapError(ErrCodeDatabase, "update available money", err)
	}
	p.AvailableMoney = money
	return nil
}

// positionState is the mutable slice of a position row.
type positionState struct {
	Quantity        int64
	AccountingPrice Amount
}

func (c *Core) findPosition(tx *sql.Tx, portfolioName, symbol string) (*positionState, error) {
	var state positionState
	err := tx.QueryRow(`
		SELECT quantity, accounting_price FROM positions
		WHERE portfolio_name = ? AND symbol = ?
	`, portfolioName, symbol).Scan(&state.Quantity, &state.AccountingPrice)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// requirePosition loads a position and checks it holds at least quantity units.
func (c *Core) requirePosition(tx *sql.Tx, portfolioName, symbol string, quantity int64) (*positionState, error) {
	position, err := c.findPosition(tx, portfolioName, symbol)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, errPositionNotFound(portfolioName, symbol)
	}
	if position.Quantity < quantity {
		return nil, errInsufficientAmount(portfolioName, symbol)
	}
	return position, nil
}

func (c *Core) storePosition(tx *sql.Tx, portfolioName, symbol string, quantity int64, price Amount) error {
	priceValue, _ := price.Value()
	_, err := tx.Exec(`
		INSERT INTO positions (portfolio_name, symbol, quantity, accounting_price)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(portfolio_name, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			accounting_price = excluded.accounting_price
	`, portfolioName, symbol, quantity, priceValue)
	if err != nil {
		return WrapError(ErrCodeDatabase, "store position", err)
	}
	return nil
}

// applyBuyToPosition increases the held quantity and recomputes the cost
// basis from the full history. The operation record is already inserted, so
// the recomputation sees the buy being applied.
func (c *Core) applyBuyToPosition(tx *sql.Tx, portfolioName string, op *Operation) error {
	position, err := c.findPosition(tx, portfolioName, *op.Symbol)
	if err != nil {
		return err
	}
	if position == nil {
		// First buy: the operation price is the accounting price.
		return c.storePosition(tx, portfolioName, *op.Symbol, op.Quantity, op.Price)
	}
	newQuantity := position.Quantity + op.Quantity
	newPrice, err := c.accountingPrice(tx, portfolioName, *op.Symbol, newQuantity)
	if err != nil {
		return err
	}
	return c.storePosition(tx, portfolioName, *op.Symbol, newQuantity, newPrice)
}

// applySellToPosition decreases the held quantity, recomputing the cost basis
// or resetting it to zero when the position is emptied.
func (c *Core) applySellToPosition(tx *sql.Tx, portfolioName string, op *Operation) error {
	position, err := c.findPosition(tx, portfolioName, *op.Symbol)
	if err != nil {
		return err
	}
	if position == nil {
		return errPositionNotFound(portfolioName, *op.Symbol)
	}
	newQuantity := position.Quantity - op.Quantity
	newPrice, err := c.accountingPrice(tx, portfolioName, *op.Symbol, newQuantity)
	if err != nil {
		return err
	}
	return c.storePosition(tx, portfolioName, *op.Symbol, newQuantity, newPrice)
}
