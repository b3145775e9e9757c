package service

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// Transaction represents a transaction in the service layer.
type Transaction struct {
	ID          uuid.UUID
	SiteID      uuid.UUID
	ManagerID   uuid.UUID
	LaborerID   uuid.NullUUID
	Type        transaction.Type
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        civil.Date
	CreatedAt   time.Time
}

// TransactionQuery narrows a transaction listing. Nil fields are unrestricted.
type TransactionQuery struct {
	SiteID    *uuid.UUID
	ManagerID *uuid.UUID
	From      *civil.Date
	To        *civil.Date
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxCreationTime so subsequent pages are consistent.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

func fromStorageTransaction(row *transaction.Transaction) Transaction {
	return Transaction{
		ID:          row.ID,
		SiteID:      row.SiteID,
		ManagerID:   row.ManagerID,
		LaborerID:   row.LaborerID,
		Type:        row.Type,
		Amount:      row.Amount,
		Category:    row.Category,
		Description: row.Description,
		Date:        row.Date,
		CreatedAt:   row.CreatedAt,
	}
}
