package memory

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

var testDate = civil.Date{Year: 2025, Month: time.June, Day: 1}

func seedSite(t *testing.T, s *Store) *site.Site {
	t.Helper()
	uow, err := s.Write(context.Background())
	require.NoError(t, err)
	created, err := uow.InsertSite(context.Background(), &site.SiteCreate{Name: "Depot", ManagerID: uuid.Must(uuid.NewV4())})
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	return created
}

func TestStore_CommitPublishesWrites(t *testing.T) {
	s := New()
	created := seedSite(t, s)

	found, err := s.FindSite(context.Background(), created.ID)

	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, site.StatusActive, found.Status)
}

func TestStore_RollbackDiscardsWrites(t *testing.T) {
	s := New()
	created := seedSite(t, s)

	uow, err := s.Write(context.Background())
	require.NoError(t, err)
	_, err = uow.InsertTransaction(context.Background(), &transaction.TransactionCreate{
		SiteID:   created.ID,
		Type:     transaction.TypeInward,
		Amount:   decimal.NewFromInt(100),
		Category: "Budget",
		Date:     testDate,
	})
	require.NoError(t, err)
	require.NoError(t, uow.Rollback())

	txs, err := s.QueryTransactions(context.Background(), transaction.OnDate(created.ID, testDate))
	require.NoError(t, err)
	assert.Empty(t, txs)
	assert.ErrorIs(t, uow.Commit(), errFinished)
}

func TestStore_WriteWaitsForOpenUnitOfWork(t *testing.T) {
	s := New()
	first, err := s.Write(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = s.Write(ctx)
	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)

	require.NoError(t, first.Rollback())
	second, err := s.Write(context.Background())
	require.NoError(t, err)
	require.NoError(t, second.Rollback())
}

func TestStore_CarryforwardUniqueness(t *testing.T) {
	s := New()
	created := seedSite(t, s)
	create := &carryforward.CarryforwardCreate{
		SiteID:   created.ID,
		FromDate: testDate,
		ToDate:   testDate.AddDays(1),
		Amount:   decimal.NewFromInt(50),
	}

	uow, err := s.Write(context.Background())
	require.NoError(t, err)
	defer func() { _ = uow.Rollback() }()

	first, err := uow.InsertCarryforward(context.Background(), create)
	require.NoError(t, err)
	_, err = uow.InsertCarryforward(context.Background(), create)
	assert.ErrorIs(t, err, ledger.ErrDuplicateReconciliation)

	adjustmentID := uuid.Must(uuid.NewV4())
	require.NoError(t, uow.MarkCarryforwardApplied(context.Background(), first.ID, testDate.AddDays(2), adjustmentID, time.Now()))
	err = uow.MarkCarryforwardApplied(context.Background(), first.ID, testDate.AddDays(2), adjustmentID, time.Now())
	assert.ErrorIs(t, err, ledger.ErrConflict)
}

func TestStore_DeleteTransactionClearsAdjustmentReference(t *testing.T) {
	s := New()
	created := seedSite(t, s)

	uow, err := s.Write(context.Background())
	require.NoError(t, err)
	cf, err := uow.InsertCarryforward(context.Background(), &carryforward.CarryforwardCreate{
		SiteID: created.ID, FromDate: testDate, ToDate: testDate.AddDays(1), Amount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	adjustment, err := uow.InsertTransaction(context.Background(), &transaction.TransactionCreate{
		SiteID:   created.ID,
		Type:     transaction.TypeInward,
		Amount:   decimal.NewFromInt(10),
		Category: transaction.CategoryCarryforward,
		Date:     testDate.AddDays(1),
	})
	require.NoError(t, err)
	appliedAt := time.Now()
	require.NoError(t, uow.MarkCarryforwardApplied(context.Background(), cf.ID, testDate.AddDays(1), adjustment.ID, appliedAt))
	require.NoError(t, uow.Commit())

	uow, err = s.Write(context.Background())
	require.NoError(t, err)
	deleted, err := uow.DeleteTransaction(context.Background(), adjustment.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.NoError(t, uow.Commit())

	found, err := s.FindCarryforward(context.Background(), created.ID, testDate)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.False(t, found.AdjustmentTransactionID.Valid)
	assert.False(t, found.Pending(), "stays applied")
}

func TestStore_CommittedStateIsIsolatedFromOpenWork(t *testing.T) {
	s := New()
	created := seedSite(t, s)

	uow, err := s.Write(context.Background())
	require.NoError(t, err)
	cf, err := uow.InsertCarryforward(context.Background(), &carryforward.CarryforwardCreate{
		SiteID: created.ID, FromDate: testDate, ToDate: testDate.AddDays(1), Amount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	found, err := s.FindCarryforward(context.Background(), created.ID, testDate)
	require.NoError(t, err)
	assert.Nil(t, found, "not visible before commit")

	require.NoError(t, uow.Commit())
	found, err = s.FindCarryforward(context.Background(), created.ID, testDate)
	require.NoError(t, err)
	assert.Equal(t, cf.ID, found.ID)
}

func TestStore_QueryTransactionsPaging(t *testing.T) {
	s := New()
	created := seedSite(t, s)
	uow, err := s.Write(context.Background())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := uow.InsertTransaction(context.Background(), &transaction.TransactionCreate{
			SiteID:   created.ID,
			Type:     transaction.TypeOutward,
			Amount:   decimal.NewFromInt(int64(i + 1)),
			Category: "Labor",
			Date:     testDate.AddDays(i),
		})
		require.NoError(t, err)
	}
	require.NoError(t, uow.Commit())

	page, err := s.QueryTransactions(context.Background(), &transaction.TransactionFilter{SiteID: &created.ID, Limit: 2, Offset: 1})

	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, testDate.AddDays(3), page[0].Date, "newest date first")
	assert.Equal(t, testDate.AddDays(2), page[1].Date)
}

func TestStore_QueryTransactionsOrdersByDateThenCreation(t *testing.T) {
	s := New()
	created := seedSite(t, s)
	insert := func(date civil.Date) *transaction.Transaction {
		uow, err := s.Write(context.Background())
		require.NoError(t, err)
		tx, err := uow.InsertTransaction(context.Background(), &transaction.TransactionCreate{
			SiteID:   created.ID,
			Type:     transaction.TypeOutward,
			Amount:   decimal.NewFromInt(1),
			Category: "Labor",
			Date:     date,
		})
		require.NoError(t, err)
		require.NoError(t, uow.Commit())
		time.Sleep(2 * time.Millisecond)
		return tx
	}
	later := insert(testDate.AddDays(1))
	older := insert(testDate)
	newer := insert(testDate)

	txs, err := s.QueryTransactions(context.Background(), &transaction.TransactionFilter{SiteID: &created.ID})

	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, later.ID, txs[0].ID, "attributed date wins over creation time")
	assert.Equal(t, newer.ID, txs[1].ID)
	assert.Equal(t, older.ID, txs[2].ID)
}
