package carryforward

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Carryforward is the reconciliation record closing out one site-day.
// Amount is signed: positive is a surplus, negative a deficit.
type Carryforward struct {
	ID                      uuid.UUID
	SiteID                  uuid.UUID
	FromDate                civil.Date
	ToDate                  civil.Date
	IncomeAmount            decimal.Decimal
	ExpenseAmount           decimal.Decimal
	Amount                  decimal.Decimal
	AppliedAt               *time.Time
	AdjustmentTransactionID uuid.NullUUID
	CreatedAt               time.Time
}

// Pending reports whether the carryforward has not yet been folded into a budget.
func (c *Carryforward) Pending() bool {
	return c.AppliedAt == nil
}

// IsSurplus reports whether the carryforward adds to the next day's budget.
func (c *Carryforward) IsSurplus() bool {
	return c.Amount.IsPositive()
}

// CarryforwardCreate is the input for recording a carryforward.
type CarryforwardCreate struct {
	SiteID        uuid.UUID
	FromDate      civil.Date
	ToDate        civil.Date
	IncomeAmount  decimal.Decimal
	ExpenseAmount decimal.Decimal
	Amount        decimal.Decimal
}

// CarryforwardFilter specifies filters for listing carryforwards.
// From/To bound FromDate and are inclusive.
type CarryforwardFilter struct {
	SiteID      *uuid.UUID
	From        *civil.Date
	To          *civil.Date
	PendingOnly bool
	Limit       int
}

// Columns lists the selected and returned columns, in row order.
var Columns = []any{
	"id", "site_id", "from_date", "to_date", "income_amount", "expense_amount",
	"amount", "applied_at", "adjustment_transaction_id", "created_at",
}

type row struct {
	ID                      uuid.UUID       `db:"id"`
	SiteID                  uuid.UUID       `db:"site_id"`
	FromDate                time.Time       `db:"from_date"`
	ToDate                  time.Time       `db:"to_date"`
	IncomeAmount            decimal.Decimal `db:"income_amount"`
	ExpenseAmount           decimal.Decimal `db:"expense_amount"`
	Amount                  decimal.Decimal `db:"amount"`
	AppliedAt               sql.NullTime    `db:"applied_at"`
	AdjustmentTransactionID uuid.NullUUID   `db:"adjustment_transaction_id"`
	CreatedAt               time.Time       `db:"created_at"`
}

func rowToCarryforward(r row) *Carryforward {
	c := &Carryforward{
		ID:                      r.ID,
		SiteID:                  r.SiteID,
		FromDate:                civil.DateOf(r.FromDate),
		ToDate:                  civil.DateOf(r.ToDate),
		IncomeAmount:            r.IncomeAmount,
		ExpenseAmount:           r.ExpenseAmount,
		Amount:                  r.Amount,
		AdjustmentTransactionID: r.AdjustmentTransactionID,
		CreatedAt:               r.CreatedAt,
	}
	if r.AppliedAt.Valid {
		appliedAt := r.AppliedAt.Time
		c.AppliedAt = &appliedAt
	}
	return c
}
