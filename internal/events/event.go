// Package events publishes ledger events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

const (
	TypeCarryforwardReconciled = "carryforward.reconciled"
	TypeBudgetApplied          = "budget.applied"
)

// Event is the JSON body of a ledger event. Amount is the signed carryforward;
// EffectiveTotal is set only for budget.applied.
type Event struct {
	Type           string           `json:"type"`
	SiteID         uuid.UUID        `json:"siteID"`
	Date           civil.Date       `json:"date"`
	CarryforwardID uuid.NullUUID    `json:"carryforwardID"`
	TransactionID  uuid.NullUUID    `json:"transactionID"`
	Amount         decimal.Decimal  `json:"amount"`
	EffectiveTotal *decimal.Decimal `json:"effectiveTotal,omitempty"`
	OccurredAt     time.Time        `json:"occurredAt"`
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func FromJSON(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Publisher delivers events. Callers treat a failed publish as non-fatal.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *Event) error { return nil }
