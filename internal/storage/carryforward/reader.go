package carryforward

import (
	"context"
	"database/sql"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

const tableName = "carryforwards"

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindBySiteAndDate returns the carryforward closing out fromDate for the site, or nil.
func (r *Reader) FindBySiteAndDate(ctx context.Context, siteID uuid.UUID, fromDate civil.Date) (*Carryforward, error) {
	query := psql.Select(
		sm.Columns(Columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("site_id").EQ(psql.Arg(siteID))),
		sm.Where(psql.Quote("from_date").EQ(psql.Arg(fromDate.String()))),
	)
	return r.one(ctx, query)
}

// FindPending returns the most recent unapplied carryforward for the site
// closing out a day strictly before budgetDate, or nil.
func (r *Reader) FindPending(ctx context.Context, siteID uuid.UUID, budgetDate civil.Date) (*Carryforward, error) {
	return r.one(ctx, psql.Select(pendingMods(siteID, budgetDate)...))
}

// List returns carryforwards matching the filter, newest from_date first.
func (r *Reader) List(ctx context.Context, filter *CarryforwardFilter) ([]*Carryforward, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(Columns...),
		sm.From(tableName),
	}
	if filter != nil {
		if filter.SiteID != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("site_id").EQ(psql.Arg(*filter.SiteID))))
		}
		if filter.From != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("from_date").GTE(psql.Arg(filter.From.String()))))
		}
		if filter.To != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("from_date").LTE(psql.Arg(filter.To.String()))))
		}
		if filter.PendingOnly {
			queryMods = append(queryMods, sm.Where(psql.Quote("applied_at").IsNull()))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("from_date")).Desc(),
		sm.OrderBy(psql.Quote("site_id")).Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	result := make([]*Carryforward, len(rows))
	for i, found := range rows {
		result[i] = rowToCarryforward(found)
	}
	return result, nil
}

func (r *Reader) one(ctx context.Context, query bob.Query) (*Carryforward, error) {
	found, err := bob.One(ctx, r.exec, query, scan.StructMapper[row]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToCarryforward(found), nil
}

func pendingMods(siteID uuid.UUID, budgetDate civil.Date) []bob.Mod[*dialect.SelectQuery] {
	return []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(Columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("site_id").EQ(psql.Arg(siteID))),
		sm.Where(psql.Quote("from_date").LT(psql.Arg(budgetDate.String()))),
		sm.Where(psql.Quote("applied_at").IsNull()),
		sm.OrderBy(psql.Quote("from_date")).Desc(),
		sm.Limit(1),
	}
}
