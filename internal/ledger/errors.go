package ledger

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
)

var (
	// ErrStoreUnavailable wraps store I/O failures and timeouts. The engine never retries.
	ErrStoreUnavailable = errors.New("ledger store unavailable")

	// ErrDuplicateReconciliation is the storage-level conflict on (site_id, from_date).
	// Reconcile resolves it by returning the winning record.
	ErrDuplicateReconciliation = errors.New("carryforward already recorded for site and date")

	ErrDuplicateBudget  = errors.New("budget already recorded for site and date")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflicting ledger write")
	ErrInvalidEntry     = errors.New("invalid ledger entry")
	ErrReservedCategory = errors.New("category is reserved for carryforward adjustments")
	ErrNotCreator       = errors.New("only the creating manager may delete a transaction")
)

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Kind string
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateBudgetError is returned when a site already has a base budget on a date.
// It matches ErrDuplicateBudget.
type DuplicateBudgetError struct {
	SiteID     uuid.UUID
	Date       civil.Date
	ExistingID uuid.UUID
}

func (e *DuplicateBudgetError) Error() string {
	return fmt.Sprintf("site %s already has a budget on %s (transaction %s)", e.SiteID, e.Date, e.ExistingID)
}

func (e *DuplicateBudgetError) Is(target error) bool {
	return target == ErrDuplicateBudget
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntry, fmt.Sprintf(format, args...))
}
