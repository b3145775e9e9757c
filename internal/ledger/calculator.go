package ledger

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

// Reconcile closes out date for the site and returns its carryforward record.
//
// It is idempotent per (site, date): an existing record is returned unchanged.
// A nil record with a nil error means there was nothing to carry forward,
// either because the day had no budget and no carryforward inward or because
// the day balanced. Whether date has actually concluded is the caller's decision.
func Reconcile(ctx context.Context, s Store, siteID uuid.UUID, date civil.Date) (*carryforward.Carryforward, error) {
	record, _, err := ReconcileWithOutcome(ctx, s, siteID, date)
	return record, err
}

// ReconcileWithOutcome is Reconcile that also reports whether this call
// inserted the record. It is false when the record already existed or when a
// concurrent unit of work won the insert.
func ReconcileWithOutcome(ctx context.Context, s Store, siteID uuid.UUID, date civil.Date) (*carryforward.Carryforward, bool, error) {
	if err := requireSite(ctx, s, siteID); err != nil {
		return nil, false, err
	}

	existing, err := s.FindCarryforward(ctx, siteID, date)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	totals, err := aggregate(ctx, s, siteID, date)
	if err != nil {
		return nil, false, err
	}
	if totals.BudgetEntries == 0 && totals.CarryforwardInward.IsZero() {
		return nil, false, nil
	}

	net := totals.Net()
	if net.IsZero() {
		return nil, false, nil
	}

	created, err := s.InsertCarryforward(ctx, &carryforward.CarryforwardCreate{
		SiteID:        siteID,
		FromDate:      date,
		ToDate:        date.AddDays(1),
		IncomeAmount:  totals.Inward,
		ExpenseAmount: totals.Outward,
		Amount:        net,
	})
	if errors.Is(err, ErrDuplicateReconciliation) {
		winner, findErr := s.FindCarryforward(ctx, siteID, date)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner == nil {
			return nil, false, fmt.Errorf("carryforward for site %s on %s reported as duplicate but not found: %w", siteID, date, ErrConflict)
		}
		return winner, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}
