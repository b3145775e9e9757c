package storage

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

const (
	uniqueViolation = pq.ErrorCode("23505")
	integrityClass  = pq.ErrorClass("23")
)

// wrapErr translates driver and table errors into ledger error kinds.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, carryforward.ErrAlreadyRecorded) {
		return ledger.ErrDuplicateReconciliation
	}
	if errors.Is(err, carryforward.ErrAlreadyApplied) {
		return fmt.Errorf("%s: %w", op, ledger.ErrConflict)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s: %w: %s", op, ledger.ErrConflict, pqErr.Constraint)
		}
		if pqErr.Code.Class() == integrityClass {
			return fmt.Errorf("%s: %w: %s", op, ledger.ErrInvalidEntry, pqErr.Message)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ledger.ErrStoreUnavailable, err)
}
