package carryforward

import (
	"time"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// Carryforward is the API response model for a carryforward record.
type Carryforward struct {
	ID                      string `json:"id" doc:"Carryforward UUID"`
	SiteID                  string `json:"siteID" doc:"Site UUID"`
	FromDate                string `json:"fromDate" doc:"Day that was closed out (YYYY-MM-DD)"`
	ToDate                  string `json:"toDate" doc:"Day the amount carries into (YYYY-MM-DD)"`
	IncomeAmount            string `json:"incomeAmount" doc:"Base inward total of fromDate"`
	ExpenseAmount           string `json:"expenseAmount" doc:"Outward total of fromDate"`
	Amount                  string `json:"amount" doc:"Signed net: positive surplus, negative deficit"`
	Pending                 bool   `json:"pending" doc:"True until folded into a budget"`
	AppliedAt               string `json:"appliedAt,omitempty" doc:"RFC3339 time it was applied"`
	AdjustmentTransactionID string `json:"adjustmentTransactionID,omitempty" doc:"Adjustment transaction created when applied"`
	CreatedAt               string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPICarryforward(c *carryforward.Carryforward) *Carryforward {
	if c == nil {
		return nil
	}
	out := &Carryforward{
		ID:            c.ID.String(),
		SiteID:        c.SiteID.String(),
		FromDate:      c.FromDate.String(),
		ToDate:        c.ToDate.String(),
		IncomeAmount:  c.IncomeAmount.String(),
		ExpenseAmount: c.ExpenseAmount.String(),
		Amount:        c.Amount.String(),
		Pending:       c.Pending(),
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
	if c.AppliedAt != nil {
		out.AppliedAt = c.AppliedAt.Format(time.RFC3339)
	}
	if c.AdjustmentTransactionID.Valid {
		out.AdjustmentTransactionID = c.AdjustmentTransactionID.UUID.String()
	}
	return out
}

// Entry is a ledger entry created by a budget application.
type Entry struct {
	ID       string `json:"id" doc:"Transaction UUID"`
	Type     string `json:"type" doc:"INWARD or OUTWARD"`
	Amount   string `json:"amount" doc:"Positive decimal amount"`
	Category string `json:"category" doc:"Category"`
	Date     string `json:"date" doc:"Attributed date (YYYY-MM-DD)"`
}

func toAPIEntry(tx *transaction.Transaction) *Entry {
	if tx == nil {
		return nil
	}
	return &Entry{
		ID:       tx.ID.String(),
		Type:     string(tx.Type),
		Amount:   tx.Amount.String(),
		Category: tx.Category,
		Date:     tx.Date.String(),
	}
}

// Application is the API view of a budget application.
type Application struct {
	Budget         *Entry        `json:"budget" doc:"The base budget entry"`
	Adjustment     *Entry        `json:"adjustment,omitempty" doc:"Carryforward adjustment, absent when nothing was pending"`
	Carryforward   *Carryforward `json:"carryforward,omitempty" doc:"The carryforward that was applied"`
	EffectiveTotal string        `json:"effectiveTotal" doc:"Budget plus signed carryforward; may be negative"`
}

func toAPIApplication(app *ledger.Application) Application {
	return Application{
		Budget:         toAPIEntry(app.Budget),
		Adjustment:     toAPIEntry(app.Adjustment),
		Carryforward:   toAPICarryforward(app.Carryforward),
		EffectiveTotal: app.EffectiveTotal().String(),
	}
}
