package transaction

import (
	"time"

	"github.com/carson-networks/site-ledger/internal/service"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID          string `json:"id" doc:"Transaction UUID"`
	SiteID      string `json:"siteID" doc:"Site UUID"`
	ManagerID   string `json:"managerID" doc:"UUID of the manager who recorded it"`
	LaborerID   string `json:"laborerID,omitempty" doc:"Laborer UUID, if any"`
	Type        string `json:"type" enum:"INWARD,OUTWARD" doc:"Direction of the money"`
	Amount      string `json:"amount" doc:"Positive decimal amount"`
	Category    string `json:"category" doc:"Category; Carryforward marks a reconciliation adjustment"`
	Description string `json:"description,omitempty" doc:"Free-text description"`
	Date        string `json:"date" doc:"Attributed calendar date (YYYY-MM-DD)"`
	CreatedAt   string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPITransaction(tx service.Transaction) Transaction {
	out := Transaction{
		ID:          tx.ID.String(),
		SiteID:      tx.SiteID.String(),
		ManagerID:   tx.ManagerID.String(),
		Type:        string(tx.Type),
		Amount:      tx.Amount.String(),
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date.String(),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.LaborerID.Valid {
		out.LaborerID = tx.LaborerID.UUID.String()
	}
	return out
}
