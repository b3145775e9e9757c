package carryforward

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

// ErrAlreadyRecorded is returned by Insert when (site_id, from_date) already has a record.
var ErrAlreadyRecorded = errors.New("carryforward already recorded")

// ErrAlreadyApplied is returned by MarkApplied when the record is no longer pending.
var ErrAlreadyApplied = errors.New("carryforward already applied")

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

// Insert records a carryforward. A concurrent or earlier record for the same
// (site_id, from_date) wins and ErrAlreadyRecorded is returned.
func (w *Writer) Insert(ctx context.Context, create *CarryforwardCreate) (*Carryforward, error) {
	query := psql.Insert(
		im.Into(tableName, "site_id", "from_date", "to_date", "income_amount", "expense_amount", "amount"),
		im.Values(psql.Arg(
			create.SiteID,
			create.FromDate.String(),
			create.ToDate.String(),
			create.IncomeAmount,
			create.ExpenseAmount,
			create.Amount,
		)),
		im.OnConflict("site_id", "from_date").DoNothing(),
		im.Returning(Columns...),
	)
	inserted, err := bob.One(ctx, w.tx, query, scan.StructMapper[row]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyRecorded
	}
	if err != nil {
		return nil, err
	}
	return rowToCarryforward(inserted), nil
}

// FindPending is the writer variant of Reader.FindPending; it locks the row
// so two budgets cannot consume the same carryforward.
func (w *Writer) FindPending(ctx context.Context, siteID uuid.UUID, budgetDate civil.Date) (*Carryforward, error) {
	queryMods := append(pendingMods(siteID, budgetDate), sm.ForUpdate())
	return w.one(ctx, psql.Select(queryMods...))
}

// MarkApplied records that the carryforward was folded into the budget on toDate.
func (w *Writer) MarkApplied(ctx context.Context, id uuid.UUID, toDate civil.Date, adjustmentID uuid.UUID, appliedAt time.Time) error {
	query := psql.Update(
		um.Table(tableName),
		um.SetCol("to_date").ToArg(toDate.String()),
		um.SetCol("applied_at").ToArg(appliedAt),
		um.SetCol("adjustment_transaction_id").ToArg(adjustmentID),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("applied_at").IsNull()),
	)
	result, err := bob.Exec(ctx, w.tx, query)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAlreadyApplied
	}
	return nil
}
