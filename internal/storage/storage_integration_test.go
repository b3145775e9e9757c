//go:build integration

package storage_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/operator"
	"github.com/carson-networks/site-ledger/internal/operator/actions"
	"github.com/carson-networks/site-ledger/internal/storage"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

var (
	june1 = civil.Date{Year: 2025, Month: time.June, Day: 1}
	june2 = civil.Date{Year: 2025, Month: time.June, Day: 2}
)

type pgEnv struct {
	storage   *storage.Storage
	delegator *operator.OperatorDelegator
	manager   uuid.UUID
}

func newPGEnv(t *testing.T) *pgEnv {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("testpassword"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)

	result, err := storage.RunMigrations(db)
	require.NoError(t, err)
	assert.Equal(t, uint(0), result.PreVersion)
	assert.Equal(t, uint(3), result.PostVersion)

	s := storage.NewStorageFromDB(db, 5*time.Second)
	t.Cleanup(func() { _ = s.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	delegator := operator.NewOperatorDelegator(s, 4, 10*time.Second, logger)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	return &pgEnv{storage: s, delegator: delegator, manager: uuid.Must(uuid.NewV4())}
}

func (e *pgEnv) site(t *testing.T) uuid.UUID {
	t.Helper()
	action := &actions.CreateSite{Create: site.SiteCreate{Name: "Harbour Tower", ManagerID: e.manager}}
	require.NoError(t, e.delegator.Process(context.Background(), action))
	return action.Site.ID
}

func (e *pgEnv) budget(siteID uuid.UUID, date civil.Date, amount int64) (*ledger.Application, error) {
	action := &actions.ApplyBudget{Entry: ledger.BudgetEntry{
		SiteID:    siteID,
		ManagerID: e.manager,
		Date:      date,
		Amount:    decimal.NewFromInt(amount),
	}}
	err := e.delegator.Process(context.Background(), action)
	return action.Application, err
}

func (e *pgEnv) spend(t *testing.T, siteID uuid.UUID, date civil.Date, amount int64) {
	t.Helper()
	action := &actions.RecordTransaction{Create: transaction.TransactionCreate{
		SiteID:    siteID,
		ManagerID: e.manager,
		Type:      transaction.TypeOutward,
		Amount:    decimal.NewFromInt(amount),
		Category:  "Materials",
		Date:      date,
	}}
	require.NoError(t, e.delegator.Process(context.Background(), action))
}

func TestPostgres_ReconcileAndApply(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()
	siteID := env.site(t)

	_, err := env.budget(siteID, june1, 5000)
	require.NoError(t, err)
	env.spend(t, siteID, june1, 3000)

	reconcile := &actions.Reconcile{SiteID: siteID, Date: june1}
	require.NoError(t, env.delegator.Process(ctx, reconcile))
	require.NotNil(t, reconcile.Carryforward)
	assert.True(t, reconcile.Carryforward.Amount.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, june2, reconcile.Carryforward.ToDate)

	app, err := env.budget(siteID, june2, 1000)
	require.NoError(t, err)
	require.NotNil(t, app.Adjustment)
	assert.Equal(t, transaction.CategoryCarryforward, app.Adjustment.Category)
	assert.True(t, app.EffectiveTotal().Equal(decimal.NewFromInt(3000)))

	stored, err := env.storage.FindCarryforward(ctx, siteID, june1)
	require.NoError(t, err)
	assert.False(t, stored.Pending())
	assert.Equal(t, app.Adjustment.ID, stored.AdjustmentTransactionID.UUID)

	totals, err := ledger.Aggregate(ctx, env.storage, siteID, june2)
	require.NoError(t, err)
	assert.True(t, totals.Inward.Equal(decimal.NewFromInt(1000)))
	assert.True(t, totals.CarryforwardInward.Equal(decimal.NewFromInt(2000)))
}

func TestPostgres_ConcurrentReconcilesRecordOnce(t *testing.T) {
	env := newPGEnv(t)
	siteID := env.site(t)
	_, err := env.budget(siteID, june1, 700)
	require.NoError(t, err)

	const callers = 8
	ids := make([]uuid.UUID, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			action := &actions.Reconcile{SiteID: siteID, Date: june1}
			if assert.NoError(t, env.delegator.Process(context.Background(), action)) {
				ids[i] = action.Carryforward.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	records, err := env.storage.QueryCarryforwards(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPostgres_ConcurrentBudgetsOneWins(t *testing.T) {
	env := newPGEnv(t)
	siteID := env.site(t)
	_, err := env.budget(siteID, june1, 900)
	require.NoError(t, err)
	require.NoError(t, env.delegator.Process(context.Background(), &actions.Reconcile{SiteID: siteID, Date: june1}))

	const callers = 4
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.budget(siteID, june2, 100)
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ledger.ErrDuplicateBudget)
	}
	assert.Equal(t, 1, succeeded)

	adjustments, err := env.storage.QueryTransactions(context.Background(), &transaction.TransactionFilter{
		SiteID:   &siteID,
		Category: ptr(transaction.CategoryCarryforward),
	})
	require.NoError(t, err)
	assert.Len(t, adjustments, 1)
}

func TestPostgres_IntegrityErrorsAreInvalidEntries(t *testing.T) {
	env := newPGEnv(t)
	ctx := context.Background()

	uow, err := env.storage.Write(ctx)
	require.NoError(t, err)
	defer uow.Rollback()

	_, err = uow.InsertTransaction(ctx, &transaction.TransactionCreate{
		SiteID:    uuid.Must(uuid.NewV4()),
		ManagerID: env.manager,
		Type:      transaction.TypeOutward,
		Amount:    decimal.NewFromInt(10),
		Category:  "Materials",
		Date:      june1,
	})
	assert.ErrorIs(t, err, ledger.ErrInvalidEntry)
}

func ptr[T any](v T) *T {
	return &v
}
