package actions

import (
	"context"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

type RecordTransaction struct {
	Create transaction.TransactionCreate

	Transaction *transaction.Transaction
}

func (r *RecordTransaction) Name() string { return "RecordTransaction" }

func (r *RecordTransaction) Perform(ctx context.Context, store ledger.Store) error {
	created, err := ledger.RecordTransaction(ctx, store, &r.Create)
	if err != nil {
		return err
	}
	r.Transaction = created
	return nil
}
