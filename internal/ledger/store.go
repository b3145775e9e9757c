// Package ledger is the carryforward reconciliation engine: it aggregates a
// site's day, closes the day into a carryforward record exactly once, and folds
// pending carryforwards into the next budget entry.
//
// The engine holds no state. Every operation receives the Ledger Store it runs
// against; write operations expect a Store scoped to a single unit of work.
package ledger

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// Reader is the read side of the Ledger Store.
// Find methods return nil and no error when nothing matches.
type Reader interface {
	FindSite(ctx context.Context, id uuid.UUID) (*site.Site, error)
	ListSites(ctx context.Context, filter *site.SiteFilter) ([]*site.Site, error)
	FindTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	QueryTransactions(ctx context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error)
	FindCarryforward(ctx context.Context, siteID uuid.UUID, fromDate civil.Date) (*carryforward.Carryforward, error)
	FindPendingCarryforward(ctx context.Context, siteID uuid.UUID, budgetDate civil.Date) (*carryforward.Carryforward, error)
	QueryCarryforwards(ctx context.Context, filter *carryforward.CarryforwardFilter) ([]*carryforward.Carryforward, error)
}

// Store is the Ledger Store as seen from inside a unit of work.
type Store interface {
	Reader

	InsertSite(ctx context.Context, create *site.SiteCreate) (*site.Site, error)
	InsertTransaction(ctx context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)

	// InsertCarryforward returns ErrDuplicateReconciliation when a record for
	// (site_id, from_date) already exists or won a concurrent race.
	InsertCarryforward(ctx context.Context, create *carryforward.CarryforwardCreate) (*carryforward.Carryforward, error)

	// MarkCarryforwardApplied returns ErrConflict when the record is no longer pending.
	MarkCarryforwardApplied(ctx context.Context, id uuid.UUID, toDate civil.Date, adjustmentID uuid.UUID, appliedAt time.Time) error

	// LockSiteDay serialises check-then-write sequences on one (site, date)
	// until the unit of work ends.
	LockSiteDay(ctx context.Context, siteID uuid.UUID, date civil.Date) error
}

// UnitOfWork is a Store whose writes become visible together on Commit.
type UnitOfWork interface {
	Store
	Commit() error
	Rollback() error
}
