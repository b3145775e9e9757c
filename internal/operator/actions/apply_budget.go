package actions

import (
	"context"

	"github.com/carson-networks/site-ledger/internal/ledger"
)

// ApplyBudget records a base budget and folds in the pending carryforward.
type ApplyBudget struct {
	Entry ledger.BudgetEntry

	Application *ledger.Application
}

func (a *ApplyBudget) Name() string { return "ApplyBudget" }

func (a *ApplyBudget) Perform(ctx context.Context, store ledger.Store) error {
	app, err := ledger.ApplyPending(ctx, store, a.Entry)
	if err != nil {
		return err
	}
	a.Application = app
	return nil
}
