package actions

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

// Reconcile closes out one site-day. Carryforward stays nil when the day had
// nothing to carry. Created is set only when this unit of work inserted it.
type Reconcile struct {
	SiteID uuid.UUID
	Date   civil.Date

	Carryforward *carryforward.Carryforward
	Created      bool
}

func (r *Reconcile) Name() string { return "Reconcile" }

func (r *Reconcile) Perform(ctx context.Context, store ledger.Store) error {
	record, created, err := ledger.ReconcileWithOutcome(ctx, store, r.SiteID, r.Date)
	if err != nil {
		return err
	}
	r.Carryforward = record
	r.Created = created
	return nil
}
