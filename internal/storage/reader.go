package storage

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// Reader serves the read side of the Ledger Store outside any unit of work.
type Reader struct {
	Sites         *site.Reader
	Transactions  *transaction.Reader
	Carryforwards *carryforward.Reader
	timeout       time.Duration
}

var _ ledger.Reader = (*Reader)(nil)

func NewReader(exec bob.Executor, timeout time.Duration) *Reader {
	return &Reader{
		Sites:         site.NewReader(exec),
		Transactions:  transaction.NewReader(exec),
		Carryforwards: carryforward.NewReader(exec),
		timeout:       timeout,
	}
}

func (r *Reader) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Reader) FindSite(ctx context.Context, id uuid.UUID) (*site.Site, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Sites.FindByID(ctx, id)
	return found, wrapErr("FindSite", err)
}

func (r *Reader) ListSites(ctx context.Context, filter *site.SiteFilter) ([]*site.Site, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Sites.List(ctx, filter)
	return found, wrapErr("ListSites", err)
}

func (r *Reader) FindTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Transactions.FindByID(ctx, id)
	return found, wrapErr("FindTransaction", err)
}

func (r *Reader) QueryTransactions(ctx context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Transactions.List(ctx, filter)
	return found, wrapErr("QueryTransactions", err)
}

func (r *Reader) FindCarryforward(ctx context.Context, siteID uuid.UUID, fromDate civil.Date) (*carryforward.Carryforward, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Carryforwards.FindBySiteAndDate(ctx, siteID, fromDate)
	return found, wrapErr("FindCarryforward", err)
}

func (r *Reader) FindPendingCarryforward(ctx context.Context, siteID uuid.UUID, budgetDate civil.Date) (*carryforward.Carryforward, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Carryforwards.FindPending(ctx, siteID, budgetDate)
	return found, wrapErr("FindPendingCarryforward", err)
}

func (r *Reader) QueryCarryforwards(ctx context.Context, filter *carryforward.CarryforwardFilter) ([]*carryforward.Carryforward, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()
	found, err := r.Carryforwards.List(ctx, filter)
	return found, wrapErr("QueryCarryforwards", err)
}
