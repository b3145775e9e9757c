package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// DefaultBudgetCategory is used when a budget entry names no category.
const DefaultBudgetCategory = "Budget"

var now = time.Now

// BudgetEntry is an admin's base inward budget for one site-day.
type BudgetEntry struct {
	SiteID      uuid.UUID
	ManagerID   uuid.UUID
	Date        civil.Date
	Amount      decimal.Decimal
	Category    string
	Description string
}

// Application is the outcome of ApplyPending. Adjustment and Carryforward are
// nil when no pending carryforward existed.
type Application struct {
	Budget       *transaction.Transaction
	Adjustment   *transaction.Transaction
	Carryforward *carryforward.Carryforward
}

// EffectiveTotal is the base budget plus the signed carryforward. It may be
// negative when a deficit exceeds the new budget.
func (a *Application) EffectiveTotal() decimal.Decimal {
	total := a.Budget.Amount
	if a.Carryforward != nil {
		total = total.Add(a.Carryforward.Amount)
	}
	return total
}

func (e BudgetEntry) validate() error {
	if e.SiteID == uuid.Nil {
		return invalidf("site is required")
	}
	if e.ManagerID == uuid.Nil {
		return invalidf("manager is required")
	}
	if e.Date.IsZero() || !e.Date.IsValid() {
		return invalidf("budget date is required")
	}
	if !validAmount(e.Amount) {
		return invalidf("budget amount must be positive with at most %d decimal places, got %s", amountScale, e.Amount)
	}
	if strings.EqualFold(strings.TrimSpace(e.Category), transaction.CategoryCarryforward) {
		return ErrReservedCategory
	}
	return nil
}

// ApplyPending records a site's base budget for a day and folds in the most
// recent pending carryforward as a second, "Carryforward"-tagged entry:
// inward for a surplus, outward for a deficit.
//
// A site has at most one base budget per date; a second attempt fails with a
// DuplicateBudgetError. The carryforward is marked applied in the same unit of
// work, so deleting the adjustment later does not make it pending again.
func ApplyPending(ctx context.Context, s Store, entry BudgetEntry) (*Application, error) {
	if err := entry.validate(); err != nil {
		return nil, err
	}
	if err := requireSite(ctx, s, entry.SiteID); err != nil {
		return nil, err
	}
	if err := s.LockSiteDay(ctx, entry.SiteID, entry.Date); err != nil {
		return nil, err
	}

	if err := ensureNoBudget(ctx, s, entry.SiteID, entry.Date); err != nil {
		return nil, err
	}

	pending, err := s.FindPendingCarryforward(ctx, entry.SiteID, entry.Date)
	if err != nil {
		return nil, err
	}

	category := strings.TrimSpace(entry.Category)
	if category == "" {
		category = DefaultBudgetCategory
	}
	budget, err := s.InsertTransaction(ctx, &transaction.TransactionCreate{
		SiteID:      entry.SiteID,
		ManagerID:   entry.ManagerID,
		Type:        transaction.TypeInward,
		Amount:      entry.Amount,
		Category:    category,
		Description: entry.Description,
		Date:        entry.Date,
	})
	if err != nil {
		return nil, err
	}

	app := &Application{Budget: budget}
	if pending == nil || pending.Amount.IsZero() {
		return app, nil
	}

	adjustment, err := applyCarryforward(ctx, s, entry, pending)
	if err != nil {
		return nil, err
	}
	app.Adjustment = adjustment
	app.Carryforward = pending
	return app, nil
}

func ensureNoBudget(ctx context.Context, s Store, siteID uuid.UUID, date civil.Date) error {
	inward := transaction.TypeInward
	excluded := transaction.CategoryCarryforward
	filter := transaction.OnDate(siteID, date)
	filter.Type = &inward
	filter.ExcludeCategory = &excluded
	filter.Limit = 1

	existing, err := s.QueryTransactions(ctx, filter)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return &DuplicateBudgetError{SiteID: siteID, Date: date, ExistingID: existing[0].ID}
	}
	return nil
}

func applyCarryforward(ctx context.Context, s Store, entry BudgetEntry, pending *carryforward.Carryforward) (*transaction.Transaction, error) {
	adjType := transaction.TypeInward
	description := fmt.Sprintf("Carryforward surplus from %s", pending.FromDate)
	if pending.Amount.IsNegative() {
		adjType = transaction.TypeOutward
		description = fmt.Sprintf("Carryforward deficit from %s", pending.FromDate)
	}

	adjustment, err := findAdjustment(ctx, s, entry.SiteID, entry.Date, adjType)
	if err != nil {
		return nil, err
	}
	if adjustment == nil {
		adjustment, err = s.InsertTransaction(ctx, &transaction.TransactionCreate{
			SiteID:      entry.SiteID,
			ManagerID:   entry.ManagerID,
			Type:        adjType,
			Amount:      pending.Amount.Abs(),
			Category:    transaction.CategoryCarryforward,
			Description: description,
			Date:        entry.Date,
		})
		if err != nil {
			return nil, err
		}
	}

	appliedAt := now().UTC()
	if err := s.MarkCarryforwardApplied(ctx, pending.ID, entry.Date, adjustment.ID, appliedAt); err != nil {
		return nil, err
	}
	pending.ToDate = entry.Date
	pending.AppliedAt = &appliedAt
	pending.AdjustmentTransactionID = uuid.NullUUID{UUID: adjustment.ID, Valid: true}
	return adjustment, nil
}

func findAdjustment(ctx context.Context, s Store, siteID uuid.UUID, date civil.Date, adjType transaction.Type) (*transaction.Transaction, error) {
	category := transaction.CategoryCarryforward
	filter := transaction.OnDate(siteID, date)
	filter.Type = &adjType
	filter.Category = &category
	filter.Limit = 1

	existing, err := s.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return existing[0], nil
}

// PendingCarryforward returns the carryforward a budget on budgetDate would
// consume, or nil.
func PendingCarryforward(ctx context.Context, r Reader, siteID uuid.UUID, budgetDate civil.Date) (*carryforward.Carryforward, error) {
	if err := requireSite(ctx, r, siteID); err != nil {
		return nil, err
	}
	return r.FindPendingCarryforward(ctx, siteID, budgetDate)
}
