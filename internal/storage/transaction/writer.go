package transaction

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"
)

type Writer struct {
	tx bob.Tx
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// Insert creates a new transaction and returns the stored row.
func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error) {
	var description sql.NullString
	if create.Description != "" {
		description = sql.NullString{String: create.Description, Valid: true}
	}

	query := psql.Insert(
		im.Into(tableName, "site_id", "manager_id", "laborer_id", "type", "amount", "category", "description", "date"),
		im.Values(psql.Arg(
			create.SiteID,
			create.ManagerID,
			create.LaborerID,
			string(create.Type),
			create.Amount,
			create.Category,
			description,
			create.Date.String(),
		)),
		im.Returning(Columns...),
	)
	inserted, err := bob.One(ctx, w.tx, query, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowToTransaction(inserted), nil
}

// Delete removes a transaction and returns the deleted row, or nil when it did not exist.
func (w *Writer) Delete(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		dm.Returning(Columns...),
	)
	deleted, err := bob.One(ctx, w.tx, query, scan.StructMapper[row]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rowToTransaction(deleted), nil
}
