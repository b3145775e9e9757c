package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/site-ledger/internal/events"
	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/logging"
	"github.com/carson-networks/site-ledger/internal/operator"
	"github.com/carson-networks/site-ledger/internal/operator/actions"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/memory"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

var (
	day1 = civil.Date{Year: 2025, Month: time.June, Day: 1}
	day2 = civil.Date{Year: 2025, Month: time.June, Day: 2}
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event *events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type mockProcessor struct {
	mock.Mock
}

func (m *mockProcessor) Process(ctx context.Context, action actions.IAction) error {
	args := m.Called(ctx, action)
	return args.Error(0)
}

type testEnv struct {
	svc       *Service
	store     *memory.Store
	publisher *mockPublisher
	manager   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logging.SetupLogging("error")
	store := memory.New()
	delegator := operator.NewOperatorDelegator(store, 2, time.Second, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	publisher := new(mockPublisher)
	return &testEnv{
		svc:       NewService(store, delegator, publisher, 4, logger),
		store:     store,
		publisher: publisher,
		manager:   uuid.Must(uuid.NewV4()),
	}
}

func (e *testEnv) site(t *testing.T, name string, status site.Status) uuid.UUID {
	t.Helper()
	created, err := e.svc.Site.CreateSite(context.Background(), site.SiteCreate{Name: name, ManagerID: e.manager, Status: status})
	require.NoError(t, err)
	return created.ID
}

func (e *testEnv) entry(t *testing.T, siteID uuid.UUID, typ transaction.Type, amount string, date civil.Date) Transaction {
	t.Helper()
	created, err := e.svc.Transaction.CreateTransaction(context.Background(), Transaction{
		SiteID:    siteID,
		ManagerID: e.manager,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
		Category:  "Materials",
		Date:      date,
	})
	require.NoError(t, err)
	return created
}

// -- Site tests --

func TestSiteService_GetMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Site.GetSite(context.Background(), uuid.Must(uuid.NewV4()))

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestSiteService_ListByStatus(t *testing.T) {
	env := newTestEnv(t)
	env.site(t, "Alpha", site.StatusActive)
	env.site(t, "Bravo", site.StatusOnHold)

	active := site.StatusActive
	sites, err := env.svc.Site.ListSites(context.Background(), &active)

	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "Alpha", sites[0].Name)
}

// -- Ledger tests --

func TestLedgerService_ReconcilePublishesOnce(t *testing.T) {
	env := newTestEnv(t)
	siteID := env.site(t, "Alpha", "")
	env.entry(t, siteID, transaction.TypeInward, "5000", day1)
	env.entry(t, siteID, transaction.TypeOutward, "3000", day1)
	env.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *events.Event) bool {
		return e.Type == events.TypeCarryforwardReconciled &&
			e.SiteID == siteID &&
			e.Date == day1 &&
			e.Amount.Equal(decimal.NewFromInt(2000))
	})).Return(nil).Once()

	first, err := env.svc.Ledger.Reconcile(context.Background(), siteID, day1)
	require.NoError(t, err)
	second, err := env.svc.Ledger.Reconcile(context.Background(), siteID, day1)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	env.publisher.AssertExpectations(t)
}

func TestLedgerService_ConcurrentReconcilePublishesOnce(t *testing.T) {
	env := newTestEnv(t)
	siteID := env.site(t, "Alpha", "")
	env.entry(t, siteID, transaction.TypeInward, "5000", day1)
	env.entry(t, siteID, transaction.TypeOutward, "3000", day1)
	env.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	const callers = 16
	ids := make([]uuid.UUID, callers)
	var g errgroup.Group
	for i := 0; i < callers; i++ {
		g.Go(func() error {
			record, err := env.svc.Ledger.Reconcile(context.Background(), siteID, day1)
			if err != nil {
				return err
			}
			if record == nil {
				return errors.New("expected a carryforward record")
			}
			ids[i] = record.ID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	env.publisher.AssertNumberOfCalls(t, "Publish", 1)
}

func TestLedgerService_ReconcileNothingToCarry(t *testing.T) {
	env := newTestEnv(t)
	siteID := env.site(t, "Alpha", "")

	record, err := env.svc.Ledger.Reconcile(context.Background(), siteID, day1)

	require.NoError(t, err)
	assert.Nil(t, record)
	env.publisher.AssertNotCalled(t, "Publish")
}

func TestLedgerService_ApplyBudgetPublishFailureIsNotFatal(t *testing.T) {
	env := newTestEnv(t)
	siteID := env.site(t, "Alpha", "")
	env.entry(t, siteID, transaction.TypeInward, "2000", day1)
	env.entry(t, siteID, transaction.TypeOutward, "2700", day1)
	env.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *events.Event) bool {
		return e.Type == events.TypeCarryforwardReconciled
	})).Return(nil)
	env.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(e *events.Event) bool {
		return e.Type == events.TypeBudgetApplied &&
			e.Amount.Equal(decimal.NewFromInt(-700)) &&
			e.EffectiveTotal.Equal(decimal.NewFromInt(800))
	})).Return(errors.New("broker down"))

	_, err := env.svc.Ledger.Reconcile(context.Background(), siteID, day1)
	require.NoError(t, err)
	app, err := env.svc.Ledger.ApplyBudget(context.Background(), ledger.BudgetEntry{
		SiteID: siteID, ManagerID: env.manager, Date: day2, Amount: decimal.NewFromInt(1500),
	})

	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(app.EffectiveTotal()))
	env.publisher.AssertExpectations(t)
}

func TestLedgerService_ReconcileDay(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	busy := env.site(t, "Alpha", site.StatusActive)
	quiet := env.site(t, "Bravo", site.StatusActive)
	paused := env.site(t, "Charlie", site.StatusOnHold)
	for _, id := range []uuid.UUID{busy, paused} {
		env.entry(t, id, transaction.TypeInward, "1000", day1)
		env.entry(t, id, transaction.TypeOutward, "400", day1)
	}

	results, err := env.svc.Ledger.ReconcileDay(context.Background(), day1)

	require.NoError(t, err)
	require.Len(t, results, 2)
	bySite := map[uuid.UUID]SiteReconciliation{}
	for _, r := range results {
		assert.NoError(t, r.Err)
		bySite[r.SiteID] = r
	}
	require.NotNil(t, bySite[busy].Carryforward)
	assert.True(t, decimal.NewFromInt(600).Equal(bySite[busy].Carryforward.Amount))
	assert.Nil(t, bySite[quiet].Carryforward)

	found, err := env.store.FindCarryforward(context.Background(), paused, day1)
	require.NoError(t, err)
	assert.Nil(t, found, "on-hold sites are skipped")
}

func TestLedgerService_HistoryAndPending(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	siteID := env.site(t, "Alpha", "")
	env.entry(t, siteID, transaction.TypeInward, "5000", day1)
	env.entry(t, siteID, transaction.TypeOutward, "3000", day1)
	record, err := env.svc.Ledger.Reconcile(context.Background(), siteID, day1)
	require.NoError(t, err)

	pending, err := env.svc.Ledger.Pending(context.Background(), siteID, day2)
	require.NoError(t, err)
	assert.Equal(t, record.ID, pending.ID)

	history, err := env.svc.Ledger.History(context.Background(), &carryforward.CarryforwardFilter{SiteID: &siteID})
	require.NoError(t, err)
	assert.Len(t, history.Carryforwards, 1)
	assert.True(t, decimal.NewFromInt(2000).Equal(history.Surplus))
}

func TestLedgerService_ProcessorError(t *testing.T) {
	processor := new(mockProcessor)
	processor.On("Process", mock.Anything, mock.AnythingOfType("*actions.ApplyBudget")).
		Return(ledger.ErrStoreUnavailable)
	svc := NewLedgerService(memory.New(), processor, events.NopPublisher{}, 1, logging.SetupLogging("error"))

	app, err := svc.ApplyBudget(context.Background(), ledger.BudgetEntry{})

	assert.ErrorIs(t, err, ledger.ErrStoreUnavailable)
	assert.Nil(t, app)
	processor.AssertExpectations(t)
}

// -- Transaction tests --

func TestTransactionService_DeleteByOtherManager(t *testing.T) {
	env := newTestEnv(t)
	siteID := env.site(t, "Alpha", "")
	created := env.entry(t, siteID, transaction.TypeOutward, "50", day1)

	err := env.svc.Transaction.DeleteTransaction(context.Background(), created.ID, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ledger.ErrNotCreator)

	require.NoError(t, env.svc.Transaction.DeleteTransaction(context.Background(), created.ID, env.manager))
	_, err = env.svc.Transaction.GetTransaction(context.Background(), created.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestTransactionService_ListPaginates(t *testing.T) {
	env := newTestEnv(t)
	siteID := env.site(t, "Alpha", "")
	other := env.site(t, "Bravo", "")
	for i := 0; i < 5; i++ {
		env.entry(t, siteID, transaction.TypeOutward, "10", day1.AddDays(i))
	}
	env.entry(t, other, transaction.TypeOutward, "10", day1)

	query := TransactionQuery{SiteID: &siteID}
	page1, cursor, err := env.svc.Transaction.ListTransactions(context.Background(), query, &TransactionCursor{Limit: 2, MaxCreationTime: time.Now()})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, 2, cursor.Position)

	// Written after the snapshot, so later pages do not see it.
	env.entry(t, siteID, transaction.TypeOutward, "10", day1)

	page2, cursor, err := env.svc.Transaction.ListTransactions(context.Background(), query, cursor)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	require.NotNil(t, cursor)

	page3, cursor, err := env.svc.Transaction.ListTransactions(context.Background(), query, cursor)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Nil(t, cursor)

	seen := map[uuid.UUID]bool{}
	for _, tx := range append(append(page1, page2...), page3...) {
		assert.Equal(t, siteID, tx.SiteID)
		assert.False(t, seen[tx.ID])
		seen[tx.ID] = true
	}
}

func TestTransactionService_ListDefaults(t *testing.T) {
	env := newTestEnv(t)

	txs, cursor, err := env.svc.Transaction.ListTransactions(context.Background(), TransactionQuery{}, nil)

	assert.NoError(t, err)
	assert.Nil(t, txs)
	assert.Nil(t, cursor)
}
