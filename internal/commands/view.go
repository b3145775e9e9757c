package commands

import (
	"time"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

type siteView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	ManagerID string `json:"managerID"`
	Status    string `json:"status"`
}

func toSiteView(s *site.Site) siteView {
	return siteView{
		ID:        s.ID.String(),
		Name:      s.Name,
		Location:  s.Location,
		ManagerID: s.ManagerID.String(),
		Status:    string(s.Status),
	}
}

type carryforwardView struct {
	ID        string `json:"id"`
	SiteID    string `json:"siteID"`
	FromDate  string `json:"fromDate"`
	ToDate    string `json:"toDate"`
	Income    string `json:"incomeAmount"`
	Expense   string `json:"expenseAmount"`
	Amount    string `json:"amount"`
	Pending   bool   `json:"pending"`
	AppliedAt string `json:"appliedAt,omitempty"`
}

func toCarryforwardView(c *carryforward.Carryforward) *carryforwardView {
	if c == nil {
		return nil
	}
	view := &carryforwardView{
		ID:       c.ID.String(),
		SiteID:   c.SiteID.String(),
		FromDate: c.FromDate.String(),
		ToDate:   c.ToDate.String(),
		Income:   c.IncomeAmount.String(),
		Expense:  c.ExpenseAmount.String(),
		Amount:   c.Amount.String(),
		Pending:  c.Pending(),
	}
	if c.AppliedAt != nil {
		view.AppliedAt = c.AppliedAt.Format(time.RFC3339)
	}
	return view
}

type applicationView struct {
	BudgetID       string            `json:"budgetID"`
	AdjustmentID   string            `json:"adjustmentID,omitempty"`
	Carryforward   *carryforwardView `json:"carryforward,omitempty"`
	EffectiveTotal string            `json:"effectiveTotal"`
}

func toApplicationView(app *ledger.Application) applicationView {
	view := applicationView{
		BudgetID:       app.Budget.ID.String(),
		Carryforward:   toCarryforwardView(app.Carryforward),
		EffectiveTotal: app.EffectiveTotal().String(),
	}
	if app.Adjustment != nil {
		view.AdjustmentID = app.Adjustment.ID.String()
	}
	return view
}
