package storage

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// Writer is a unit of work over one database transaction.
type Writer struct {
	tx           bob.Tx
	Site         *site.Writer
	Transaction  *transaction.Writer
	Carryforward *carryforward.Writer
}

var _ ledger.UnitOfWork = (*Writer)(nil)

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx:           tx,
		Site:         site.NewWriter(tx),
		Transaction:  transaction.NewWriter(tx),
		Carryforward: carryforward.NewWriter(tx),
	}
}

func (w *Writer) Commit() error {
	return wrapErr("Commit", w.tx.Commit(context.Background()))
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}

func (w *Writer) FindSite(ctx context.Context, id uuid.UUID) (*site.Site, error) {
	found, err := w.Site.FindByID(ctx, id)
	return found, wrapErr("FindSite", err)
}

func (w *Writer) ListSites(ctx context.Context, filter *site.SiteFilter) ([]*site.Site, error) {
	found, err := w.Site.List(ctx, filter)
	return found, wrapErr("ListSites", err)
}

func (w *Writer) FindTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	found, err := w.Transaction.FindByID(ctx, id)
	return found, wrapErr("FindTransaction", err)
}

func (w *Writer) QueryTransactions(ctx context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	found, err := w.Transaction.List(ctx, filter)
	return found, wrapErr("QueryTransactions", err)
}

func (w *Writer) FindCarryforward(ctx context.Context, siteID uuid.UUID, fromDate civil.Date) (*carryforward.Carryforward, error) {
	found, err := w.Carryforward.FindBySiteAndDate(ctx, siteID, fromDate)
	return found, wrapErr("FindCarryforward", err)
}

func (w *Writer) FindPendingCarryforward(ctx context.Context, siteID uuid.UUID, budgetDate civil.Date) (*carryforward.Carryforward, error) {
	found, err := w.Carryforward.FindPending(ctx, siteID, budgetDate)
	return found, wrapErr("FindPendingCarryforward", err)
}

func (w *Writer) QueryCarryforwards(ctx context.Context, filter *carryforward.CarryforwardFilter) ([]*carryforward.Carryforward, error) {
	found, err := w.Carryforward.List(ctx, filter)
	return found, wrapErr("QueryCarryforwards", err)
}

func (w *Writer) InsertSite(ctx context.Context, create *site.SiteCreate) (*site.Site, error) {
	created, err := w.Site.Insert(ctx, create)
	return created, wrapErr("InsertSite", err)
}

func (w *Writer) InsertTransaction(ctx context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	created, err := w.Transaction.Insert(ctx, create)
	return created, wrapErr("InsertTransaction", err)
}

func (w *Writer) DeleteTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	deleted, err := w.Transaction.Delete(ctx, id)
	return deleted, wrapErr("DeleteTransaction", err)
}

func (w *Writer) InsertCarryforward(ctx context.Context, create *carryforward.CarryforwardCreate) (*carryforward.Carryforward, error) {
	created, err := w.Carryforward.Insert(ctx, create)
	return created, wrapErr("InsertCarryforward", err)
}

func (w *Writer) MarkCarryforwardApplied(ctx context.Context, id uuid.UUID, toDate civil.Date, adjustmentID uuid.UUID, appliedAt time.Time) error {
	return wrapErr("MarkCarryforwardApplied", w.Carryforward.MarkApplied(ctx, id, toDate, adjustmentID, appliedAt))
}

// LockSiteDay takes a transaction-scoped advisory lock on (site, date).
func (w *Writer) LockSiteDay(ctx context.Context, siteID uuid.UUID, date civil.Date) error {
	key := "site-day:" + siteID.String() + ":" + date.String()
	query := psql.RawQuery("SELECT pg_advisory_xact_lock(hashtext(?))", key)
	_, err := bob.Exec(ctx, w.tx, query)
	return wrapErr("LockSiteDay", err)
}
