package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

type DeleteTransaction struct {
	TransactionID uuid.UUID
	ManagerID     uuid.UUID

	Deleted *transaction.Transaction
}

func (d *DeleteTransaction) Name() string { return "DeleteTransaction" }

func (d *DeleteTransaction) Perform(ctx context.Context, store ledger.Store) error {
	deleted, err := ledger.DeleteTransaction(ctx, store, d.TransactionID, d.ManagerID)
	if err != nil {
		return err
	}
	d.Deleted = deleted
	return nil
}
