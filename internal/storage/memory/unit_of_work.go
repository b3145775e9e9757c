package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

var errFinished = errors.New("unit of work already finished")

type unitOfWork struct {
	store    *Store
	state    *state
	finished bool
}

var _ ledger.UnitOfWork = (*unitOfWork)(nil)

func (u *unitOfWork) Commit() error {
	if u.finished {
		return errFinished
	}
	u.finished = true

	u.store.mu.Lock()
	u.store.state = u.state
	u.store.mu.Unlock()

	<-u.store.sem
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.finished {
		return errFinished
	}
	u.finished = true
	<-u.store.sem
	return nil
}

func (u *unitOfWork) FindSite(_ context.Context, id uuid.UUID) (*site.Site, error) {
	return u.state.findSite(id), nil
}

func (u *unitOfWork) ListSites(_ context.Context, filter *site.SiteFilter) ([]*site.Site, error) {
	return u.state.listSites(filter), nil
}

func (u *unitOfWork) FindTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return u.state.findTransaction(id), nil
}

func (u *unitOfWork) QueryTransactions(_ context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	return u.state.queryTransactions(filter), nil
}

func (u *unitOfWork) FindCarryforward(_ context.Context, siteID uuid.UUID, fromDate civil.Date) (*carryforward.Carryforward, error) {
	return u.state.findCarryforward(siteID, fromDate), nil
}

func (u *unitOfWork) FindPendingCarryforward(_ context.Context, siteID uuid.UUID, budgetDate civil.Date) (*carryforward.Carryforward, error) {
	return u.state.findPending(siteID, budgetDate), nil
}

func (u *unitOfWork) QueryCarryforwards(_ context.Context, filter *carryforward.CarryforwardFilter) ([]*carryforward.Carryforward, error) {
	return u.state.queryCarryforwards(filter), nil
}

func (u *unitOfWork) InsertSite(_ context.Context, create *site.SiteCreate) (*site.Site, error) {
	status := create.Status
	if status == "" {
		status = site.StatusActive
	}
	created := &site.Site{
		ID:        newID(),
		Name:      create.Name,
		Location:  create.Location,
		ManagerID: create.ManagerID,
		Status:    status,
		CreatedAt: nowUTC(),
	}
	u.state.sites[created.ID] = created
	siteCopy := *created
	return &siteCopy, nil
}

func (u *unitOfWork) InsertTransaction(_ context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	// Mirrors the partial unique index on carryforward adjustments.
	if create.Category == transaction.CategoryCarryforward {
		for _, tx := range u.state.transactions {
			if tx.SiteID == create.SiteID && tx.Date == create.Date && tx.Type == create.Type && tx.IsCarryforward() {
				return nil, fmt.Errorf("%w: carryforward adjustment already exists for site %s on %s", ledger.ErrConflict, create.SiteID, create.Date)
			}
		}
	}

	created := &transaction.Transaction{
		ID:          newID(),
		SiteID:      create.SiteID,
		ManagerID:   create.ManagerID,
		LaborerID:   create.LaborerID,
		Type:        create.Type,
		Amount:      create.Amount,
		Category:    create.Category,
		Description: create.Description,
		Date:        create.Date,
		CreatedAt:   nowUTC(),
	}
	u.state.transactions = append(u.state.transactions, created)
	txCopy := *created
	return &txCopy, nil
}

func (u *unitOfWork) DeleteTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	for i, tx := range u.state.transactions {
		if tx.ID != id {
			continue
		}
		remaining := make([]*transaction.Transaction, 0, len(u.state.transactions)-1)
		remaining = append(remaining, u.state.transactions[:i]...)
		remaining = append(remaining, u.state.transactions[i+1:]...)
		u.state.transactions = remaining
		// Mirrors ON DELETE SET NULL on adjustment_transaction_id.
		for _, cf := range u.state.carryforwards {
			if cf.AdjustmentTransactionID.Valid && cf.AdjustmentTransactionID.UUID == id {
				cf.AdjustmentTransactionID = uuid.NullUUID{}
			}
		}
		txCopy := *tx
		return &txCopy, nil
	}
	return nil, nil
}

func (u *unitOfWork) InsertCarryforward(_ context.Context, create *carryforward.CarryforwardCreate) (*carryforward.Carryforward, error) {
	if u.state.findCarryforward(create.SiteID, create.FromDate) != nil {
		return nil, ledger.ErrDuplicateReconciliation
	}
	created := &carryforward.Carryforward{
		ID:            newID(),
		SiteID:        create.SiteID,
		FromDate:      create.FromDate,
		ToDate:        create.ToDate,
		IncomeAmount:  create.IncomeAmount,
		ExpenseAmount: create.ExpenseAmount,
		Amount:        create.Amount,
		CreatedAt:     nowUTC(),
	}
	u.state.carryforwards = append(u.state.carryforwards, created)
	cfCopy := *created
	return &cfCopy, nil
}

func (u *unitOfWork) MarkCarryforwardApplied(_ context.Context, id uuid.UUID, toDate civil.Date, adjustmentID uuid.UUID, appliedAt time.Time) error {
	for _, cf := range u.state.carryforwards {
		if cf.ID != id {
			continue
		}
		if !cf.Pending() {
			return fmt.Errorf("%w: carryforward %s already applied", ledger.ErrConflict, id)
		}
		cf.ToDate = toDate
		cf.AppliedAt = &appliedAt
		cf.AdjustmentTransactionID = uuid.NullUUID{UUID: adjustmentID, Valid: true}
		return nil
	}
	return &ledger.NotFoundError{Kind: "carryforward", ID: id}
}

// LockSiteDay is a no-op: the open unit of work already excludes all others.
func (u *unitOfWork) LockSiteDay(_ context.Context, _ uuid.UUID, _ civil.Date) error {
	return nil
}
