package ledger

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// MonthSummary aggregates the carryforwards closed out in one calendar month.
type MonthSummary struct {
	Month string // YYYY-MM
	Count int
	Total decimal.Decimal
}

// History is a read-only view over carryforward records.
type History struct {
	Carryforwards []*carryforward.Carryforward
	Total         decimal.Decimal
	Surplus       decimal.Decimal
	Deficit       decimal.Decimal
	Sites         int // distinct sites with at least one record
	Months        []MonthSummary
}

// CarryforwardHistory lists carryforwards newest first with their totals.
// A nil SiteID in the filter covers every site.
func CarryforwardHistory(ctx context.Context, r Reader, filter *carryforward.CarryforwardFilter) (*History, error) {
	if filter != nil && filter.SiteID != nil {
		if err := requireSite(ctx, r, *filter.SiteID); err != nil {
			return nil, err
		}
	}
	records, err := r.QueryCarryforwards(ctx, filter)
	if err != nil {
		return nil, err
	}

	history := &History{
		Carryforwards: records,
		Total:         decimal.Zero,
		Surplus:       decimal.Zero,
		Deficit:       decimal.Zero,
	}
	sites := make(map[uuid.UUID]struct{})
	months := make(map[string]*MonthSummary)
	for _, cf := range records {
		sites[cf.SiteID] = struct{}{}
		history.Total = history.Total.Add(cf.Amount)
		if cf.Amount.IsPositive() {
			history.Surplus = history.Surplus.Add(cf.Amount)
		} else {
			history.Deficit = history.Deficit.Add(cf.Amount.Abs())
		}

		key := fmt.Sprintf("%04d-%02d", cf.FromDate.Year, int(cf.FromDate.Month))
		month, ok := months[key]
		if !ok {
			month = &MonthSummary{Month: key, Total: decimal.Zero}
			months[key] = month
		}
		month.Count++
		month.Total = month.Total.Add(cf.Amount)
	}

	history.Sites = len(sites)
	history.Months = make([]MonthSummary, 0, len(months))
	for _, month := range months {
		history.Months = append(history.Months, *month)
	}
	sort.Slice(history.Months, func(i, j int) bool {
		return history.Months[i].Month > history.Months[j].Month
	})
	return history, nil
}

// SiteSummary is the raw inward/outward position of a site over a date range.
type SiteSummary struct {
	SiteID  uuid.UUID
	From    *civil.Date
	To      *civil.Date
	Inward  decimal.Decimal
	Outward decimal.Decimal
	Entries int
}

// Net is Inward minus Outward.
func (s SiteSummary) Net() decimal.Decimal {
	return s.Inward.Sub(s.Outward)
}

// SummarizeSite totals every transaction of the site in [from, to]; nil bounds are open.
// Carryforward adjustments are included, matching what the site ledger shows.
func SummarizeSite(ctx context.Context, r Reader, siteID uuid.UUID, from, to *civil.Date) (SiteSummary, error) {
	if err := requireSite(ctx, r, siteID); err != nil {
		return SiteSummary{}, err
	}
	txs, err := r.QueryTransactions(ctx, &transaction.TransactionFilter{SiteID: &siteID, From: from, To: to})
	if err != nil {
		return SiteSummary{}, err
	}

	summary := SiteSummary{SiteID: siteID, From: from, To: to, Inward: decimal.Zero, Outward: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeInward:
			summary.Inward = summary.Inward.Add(tx.Amount)
		case transaction.TypeOutward:
			summary.Outward = summary.Outward.Add(tx.Amount)
		}
		summary.Entries++
	}
	return summary, nil
}
