package site

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

const tableName = "sites"

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindByID returns the site with the given ID, or nil when it does not exist.
func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Site, error) {
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
	return rowToSite(found), nil
}

// List returns sites ordered by name.
func (r *Reader) List(ctx context.Context, filter *SiteFilter) ([]*Site, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(Columns...),
		sm.From(tableName),
	}
	if filter != nil && filter.Status != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("status").EQ(psql.Arg(string(*filter.Status)))))
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	result := make([]*Site, len(rows))
	for i, found := range rows {
		result[i] = rowToSite(found)
	}
	return result, nil
}
