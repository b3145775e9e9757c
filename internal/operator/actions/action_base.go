package actions

import (
	"context"

	"github.com/carson-networks/site-ledger/internal/ledger"
)

// IAction is one unit of ledger work. Perform runs inside a unit of work that
// the operator commits only when it returns nil.
type IAction interface {
	Name() string
	Perform(ctx context.Context, store ledger.Store) error
}
