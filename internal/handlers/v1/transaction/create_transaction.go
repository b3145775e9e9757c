package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

// CreateTransactionBody is the request body for creating a transaction.
type CreateTransactionBody struct {
	SiteID      string `json:"siteID" format:"uuid" required:"true" doc:"Site UUID"`
	ManagerID   string `json:"managerID" format:"uuid" required:"true" doc:"UUID of the recording manager"`
	LaborerID   string `json:"laborerID,omitempty" doc:"Optional laborer UUID"`
	Type        string `json:"type" enum:"INWARD,OUTWARD" required:"true" doc:"Direction of the money"`
	Amount      string `json:"amount" required:"true" doc:"Positive decimal amount"`
	Category    string `json:"category" minLength:"1" required:"true" doc:"Category name"`
	Description string `json:"description,omitempty" doc:"Free-text description"`
	Date        string `json:"date" format:"date" required:"true" doc:"Attributed calendar date (YYYY-MM-DD)"`
}

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	Body CreateTransactionBody
}

// CreateTransactionOutput is the Huma output for creating a transaction.
type CreateTransactionOutput struct {
	Status int `json:"-"`
	Body   Transaction
}

// transactionCreator is the interface for recording transactions.
type transactionCreator interface {
	CreateTransaction(ctx context.Context, tx service.Transaction) (service.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transaction.
type CreateTransactionHandler struct {
	TransactionService transactionCreator
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transaction",
		Method:        http.MethodPost,
		Path:          "/v1/transaction",
		Summary:       "Record transaction",
		Description:   "Records an inward or outward entry for a site. The Carryforward category is reserved.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

// parseCreateTransactionInput parses and validates the API input.
func parseCreateTransactionInput(input *CreateTransactionInput) (service.Transaction, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.Body.SiteID)
	if err != nil {
		return service.Transaction{}, err
	}
	managerID, err := apiutil.ParseUUID("managerID", input.Body.ManagerID)
	if err != nil {
		return service.Transaction{}, err
	}
	var laborerID uuid.NullUUID
	if input.Body.LaborerID != "" {
		id, err := apiutil.ParseUUID("laborerID", input.Body.LaborerID)
		if err != nil {
			return service.Transaction{}, err
		}
		laborerID = uuid.NullUUID{UUID: id, Valid: true}
	}
	amount, err := apiutil.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return service.Transaction{}, err
	}
	if !amount.IsPositive() {
		return service.Transaction{}, huma.NewError(http.StatusBadRequest, "amount must be positive")
	}
	date, err := apiutil.ParseDate("date", input.Body.Date)
	if err != nil {
		return service.Transaction{}, err
	}

	return service.Transaction{
		SiteID:      siteID,
		ManagerID:   managerID,
		LaborerID:   laborerID,
		Type:        transaction.Type(input.Body.Type),
		Amount:      amount,
		Category:    input.Body.Category,
		Description: input.Body.Description,
		Date:        date,
	}, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	tx, err := parseCreateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	created, err := h.TransactionService.CreateTransaction(ctx, tx)
	if err != nil {
		return nil, apiutil.Error("failed to create transaction", err)
	}

	return &CreateTransactionOutput{Status: http.StatusCreated, Body: toAPITransaction(created)}, nil
}
