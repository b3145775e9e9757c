package events

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_JSONShape(t *testing.T) {
	effective := decimal.RequireFromString("3000")
	event := &Event{
		Type:           TypeBudgetApplied,
		SiteID:         uuid.Must(uuid.NewV4()),
		Date:           civil.Date{Year: 2025, Month: time.June, Day: 2},
		CarryforwardID: uuid.NullUUID{UUID: uuid.Must(uuid.NewV4()), Valid: true},
		Amount:         decimal.RequireFromString("2000"),
		EffectiveTotal: &effective,
		OccurredAt:     time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC),
	}

	body, err := event.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"date":"2025-06-02"`)
	assert.Contains(t, string(body), `"amount":"2000"`)
	assert.Contains(t, string(body), `"transactionID":null`)

	decoded, err := FromJSON(body)
	require.NoError(t, err)
	assert.Equal(t, event.Date, decoded.Date)
	assert.True(t, effective.Equal(*decoded.EffectiveTotal))
}

func TestEvent_OmitsEffectiveTotalForReconciliation(t *testing.T) {
	event := &Event{Type: TypeCarryforwardReconciled, Amount: decimal.NewFromInt(-700)}

	body, err := event.ToJSON()

	require.NoError(t, err)
	assert.NotContains(t, string(body), "effectiveTotal")
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), &Event{}))
}

func TestNewPublisher_NoURLIsNop(t *testing.T) {
	publisher, release := NewPublisher("", "site-ledger", logrus.New())
	defer release()

	assert.IsType(t, NopPublisher{}, publisher)
	assert.NoError(t, publisher.Publish(context.Background(), &Event{Type: TypeCarryforwardReconciled}))
}
