package transaction

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Type is the direction of a transaction.
type Type string

const (
	TypeInward  Type = "INWARD"
	TypeOutward Type = "OUTWARD"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeInward || t == TypeOutward
}

// CategoryCarryforward marks an entry as a reconciliation adjustment.
// It is reserved: organic entries may not use it.
const CategoryCarryforward = "Carryforward"

// Transaction represents a ledger transaction record.
type Transaction struct {
	ID          uuid.UUID
	SiteID      uuid.UUID
	ManagerID   uuid.UUID
	LaborerID   uuid.NullUUID
	Type        Type
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        civil.Date
	CreatedAt   time.Time
}

// IsCarryforward reports whether the transaction is a carryforward adjustment.
func (t *Transaction) IsCarryforward() bool {
	return t.Category == CategoryCarryforward
}

// TransactionCreate is the input for creating a new transaction.
type TransactionCreate struct {
	SiteID      uuid.UUID
	ManagerID   uuid.UUID
	LaborerID   uuid.NullUUID
	Type        Type
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        civil.Date
}

// TransactionFilter specifies filters for querying transactions.
// Date bounds are inclusive and apply to the attributed date, never to CreatedAt.
type TransactionFilter struct {
	SiteID          *uuid.UUID
	ManagerID       *uuid.UUID
	From            *civil.Date
	To              *civil.Date
	Type            *Type
	Category        *string
	ExcludeCategory *string
	MaxCreationTime *time.Time
	Limit           int
	Offset          int
}

// OnDate is a convenience filter for one site on one attributed date.
func OnDate(siteID uuid.UUID, date civil.Date) *TransactionFilter {
	return &TransactionFilter{SiteID: &siteID, From: &date, To: &date}
}

// Columns lists the selected and returned columns, in row order.
var Columns = []any{
	"id", "site_id", "manager_id", "laborer_id", "type", "amount",
	"category", "description", "date", "created_at",
}

type row struct {
	ID          uuid.UUID       `db:"id"`
	SiteID      uuid.UUID       `db:"site_id"`
	ManagerID   uuid.UUID       `db:"manager_id"`
	LaborerID   uuid.NullUUID   `db:"laborer_id"`
	Type        string          `db:"type"`
	Amount      decimal.Decimal `db:"amount"`
	Category    string          `db:"category"`
	Description sql.NullString  `db:"description"`
	Date        time.Time       `db:"date"`
	CreatedAt   time.Time       `db:"created_at"`
}

func rowToTransaction(r row) *Transaction {
	return &Transaction{
		ID:          r.ID,
		SiteID:      r.SiteID,
		ManagerID:   r.ManagerID,
		LaborerID:   r.LaborerID,
		Type:        Type(r.Type),
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description.String,
		Date:        civil.DateOf(r.Date),
		CreatedAt:   r.CreatedAt,
	}
}
