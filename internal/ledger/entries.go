package ledger

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// amountScale matches the NUMERIC(14, 2) amount columns.
const amountScale = 2

// validAmount reports whether amount is positive and carries no more than
// amountScale significant decimal places. Trailing zeros are allowed.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(amountScale))
}

// RecordTransaction stores an organic inward or outward entry made by a manager.
// The "Carryforward" category is reserved for the Applier.
func RecordTransaction(ctx context.Context, s Store, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	if !create.Type.Valid() {
		return nil, invalidf("unknown transaction type %q", create.Type)
	}
	if !validAmount(create.Amount) {
		return nil, invalidf("amount must be positive with at most %d decimal places, got %s", amountScale, create.Amount)
	}
	if create.ManagerID == uuid.Nil {
		return nil, invalidf("manager is required")
	}
	if create.Date.IsZero() || !create.Date.IsValid() {
		return nil, invalidf("date is required")
	}
	create.Category = strings.TrimSpace(create.Category)
	if create.Category == "" {
		return nil, invalidf("category is required")
	}
	if strings.EqualFold(create.Category, transaction.CategoryCarryforward) {
		return nil, ErrReservedCategory
	}
	if err := requireSite(ctx, s, create.SiteID); err != nil {
		return nil, err
	}
	return s.InsertTransaction(ctx, create)
}

// DeleteTransaction removes a transaction on behalf of its creator.
// Carryforward records consumed through a deleted adjustment stay applied.
func DeleteTransaction(ctx context.Context, s Store, id uuid.UUID, managerID uuid.UUID) (*transaction.Transaction, error) {
	found, err := s.FindTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &NotFoundError{Kind: "transaction", ID: id}
	}
	if found.ManagerID != managerID {
		return nil, ErrNotCreator
	}
	deleted, err := s.DeleteTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, &NotFoundError{Kind: "transaction", ID: id}
	}
	return deleted, nil
}

// CreateSite registers a site so that ledger entries can reference it.
func CreateSite(ctx context.Context, s Store, create *site.SiteCreate) (*site.Site, error) {
	create.Name = strings.TrimSpace(create.Name)
	if create.Name == "" {
		return nil, invalidf("site name is required")
	}
	if create.ManagerID == uuid.Nil {
		return nil, invalidf("site manager is required")
	}
	if create.Status == "" {
		create.Status = site.StatusActive
	}
	if !create.Status.Valid() {
		return nil, invalidf("unknown site status %q", create.Status)
	}
	return s.InsertSite(ctx, create)
}
