package transaction

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

const tableName = "transactions"

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindByID returns the transaction with the given ID, or nil when it does not exist.
func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := psql.Select(
		sm.Columns(Columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	found, err := bob.One(ctx, r.exec, query, scan.StructMapper[row]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToTransaction(found), nil
}

// List returns transactions matching the filter, newest attributed date first.
// Nil filter returns all.
func (r *Reader) List(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(Columns...),
		sm.From(tableName),
	}
	if filter != nil {
		queryMods = append(queryMods, filterMods(filter)...)
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("date")).Desc(),
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	result := make([]*Transaction, len(rows))
	for i, found := range rows {
		result[i] = rowToTransaction(found)
	}
	return result, nil
}

func filterMods(filter *TransactionFilter) []bob.Mod[*dialect.SelectQuery] {
	var queryMods []bob.Mod[*dialect.SelectQuery]
	if filter.SiteID != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("site_id").EQ(psql.Arg(*filter.SiteID))))
	}
	if filter.ManagerID != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("manager_id").EQ(psql.Arg(*filter.ManagerID))))
	}
	if filter.From != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("date").GTE(psql.Arg(filter.From.String()))))
	}
	if filter.To != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("date").LTE(psql.Arg(filter.To.String()))))
	}
	if filter.Type != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("type").EQ(psql.Arg(string(*filter.Type)))))
	}
	if filter.Category != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("category").EQ(psql.Arg(*filter.Category))))
	}
	if filter.ExcludeCategory != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("category").NE(psql.Arg(*filter.ExcludeCategory))))
	}
	if filter.MaxCreationTime != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime))))
	}
	if filter.Limit > 0 {
		queryMods = append(queryMods, sm.Limit(filter.Limit))
	}
	if filter.Offset > 0 {
		queryMods = append(queryMods, sm.Offset(filter.Offset))
	}
	return queryMods
}
