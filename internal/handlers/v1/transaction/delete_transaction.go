package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/logging"
)

// DeleteTransactionInput is the Huma input for deleting a transaction.
type DeleteTransactionInput struct {
	TransactionID string `path:"transactionID" format:"uuid" doc:"Transaction UUID"`
	ManagerID     string `query:"managerID" format:"uuid" required:"true" doc:"UUID of the manager requesting the delete"`
}

type transactionDeleter interface {
	DeleteTransaction(ctx context.Context, id, managerID uuid.UUID) error
}

// DeleteTransactionHandler handles DELETE /v1/transaction/{transactionID}.
type DeleteTransactionHandler struct {
	TransactionService transactionDeleter
}

func NewDeleteTransactionHandler(svc transactionDeleter) *DeleteTransactionHandler {
	return &DeleteTransactionHandler{TransactionService: svc}
}

func (h *DeleteTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-transaction",
		Method:        http.MethodDelete,
		Path:          "/v1/transaction/{transactionID}",
		Summary:       "Delete transaction",
		Description:   "Deletes a transaction. Only the manager who recorded it may delete it.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeleteTransactionHandler) handle(ctx context.Context, input *DeleteTransactionInput) (*struct{}, error) {
	id, err := apiutil.ParseUUID("transactionID", input.TransactionID)
	if err != nil {
		return nil, err
	}
	managerID, err := apiutil.ParseUUID("managerID", input.ManagerID)
	if err != nil {
		return nil, err
	}

	if logData := logging.GetLogData(ctx); logData != nil {
		logData.AddData("transactionID", id.String())
	}
	if err := h.TransactionService.DeleteTransaction(ctx, id, managerID); err != nil {
		return nil, apiutil.Error("failed to delete transaction", err)
	}
	return nil, nil
}
