package ledger

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// DailyTotals are the sums for one site on one attributed date.
//
// Inward is the base figure: it excludes carryforward adjustments so that a
// surplus carried into the day is not counted twice when the day is closed.
// Outward counts every outward entry, deficit adjustments included.
type DailyTotals struct {
	SiteID             uuid.UUID
	Date               civil.Date
	Inward             decimal.Decimal
	Outward            decimal.Decimal
	CarryforwardInward decimal.Decimal
	BudgetEntries      int
}

// Net is Inward minus Outward.
func (d DailyTotals) Net() decimal.Decimal {
	return d.Inward.Sub(d.Outward)
}

// Available is what the site could spend that day, surplus adjustments included.
func (d DailyTotals) Available() decimal.Decimal {
	return d.Inward.Add(d.CarryforwardInward).Sub(d.Outward)
}

// Aggregate sums a site's transactions attributed to date. It is a pure read.
func Aggregate(ctx context.Context, r Reader, siteID uuid.UUID, date civil.Date) (DailyTotals, error) {
	if err := requireSite(ctx, r, siteID); err != nil {
		return DailyTotals{}, err
	}
	return aggregate(ctx, r, siteID, date)
}

func aggregate(ctx context.Context, r Reader, siteID uuid.UUID, date civil.Date) (DailyTotals, error) {
	totals := DailyTotals{
		SiteID:             siteID,
		Date:               date,
		Inward:             decimal.Zero,
		Outward:            decimal.Zero,
		CarryforwardInward: decimal.Zero,
	}

	txs, err := r.QueryTransactions(ctx, transaction.OnDate(siteID, date))
	if err != nil {
		return DailyTotals{}, err
	}

	for _, tx := range txs {
		// Accounting groups strictly by attributed date.
		if tx.SiteID != siteID || tx.Date != date {
			continue
		}
		switch tx.Type {
		case transaction.TypeInward:
			if tx.IsCarryforward() {
				totals.CarryforwardInward = totals.CarryforwardInward.Add(tx.Amount)
				continue
			}
			totals.Inward = totals.Inward.Add(tx.Amount)
			totals.BudgetEntries++
		case transaction.TypeOutward:
			totals.Outward = totals.Outward.Add(tx.Amount)
		}
	}
	return totals, nil
}

func requireSite(ctx context.Context, r Reader, siteID uuid.UUID) error {
	found, err := r.FindSite(ctx, siteID)
	if err != nil {
		return err
	}
	if found == nil {
		return &NotFoundError{Kind: "site", ID: siteID}
	}
	return nil
}
