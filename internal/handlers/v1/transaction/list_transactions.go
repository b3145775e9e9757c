package transaction

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/logging"
	"github.com/carson-networks/site-ledger/internal/service"
)

// ListTransactionsCursor is echoed back by clients to fetch the next page.
// MaxCreationTime pins the snapshot taken when the first page was served.
type ListTransactionsCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Offset of the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Snapshot bound on createdAt"`
}

type ListTransactionsBody struct {
	SiteID    string                  `json:"siteID,omitempty" doc:"Only transactions of this site"`
	ManagerID string                  `json:"managerID,omitempty" doc:"Only transactions recorded by this manager"`
	From      string                  `json:"from,omitempty" doc:"Earliest attributed date, inclusive (YYYY-MM-DD)"`
	To        string                  `json:"to,omitempty" doc:"Latest attributed date, inclusive (YYYY-MM-DD)"`
	Cursor    *ListTransactionsCursor `json:"cursor,omitempty" doc:"nextCursor of the previous page"`
}

type ListTransactionsInput struct {
	Body ListTransactionsBody
}

type ListTransactionsResponseBody struct {
	Transactions []Transaction           `json:"transactions" doc:"Newest attributed date first"`
	NextCursor   *ListTransactionsCursor `json:"nextCursor,omitempty" doc:"Absent on the last page"`
}

type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

type transactionLister interface {
	ListTransactions(ctx context.Context, query service.TransactionQuery, cursor *service.TransactionCursor) ([]service.Transaction, *service.TransactionCursor, error)
}

// ListTransactionsHandler handles POST /v1/transaction/list.
type ListTransactionsHandler struct {
	TransactionService transactionLister
}

func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{TransactionService: svc}
}

func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/transaction/list",
		Summary:     "List transactions",
		Description: "Filters the site ledger and pages through it with a cursor.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseListTransactionsInput(input *ListTransactionsInput) (query service.TransactionQuery, cursor *service.TransactionCursor, err error) {
	body := input.Body
	if body.SiteID != "" {
		siteID, err := apiutil.ParseUUID("siteID", body.SiteID)
		if err != nil {
			return query, nil, err
		}
		query.SiteID = &siteID
	}
	if body.ManagerID != "" {
		managerID, err := apiutil.ParseUUID("managerID", body.ManagerID)
		if err != nil {
			return query, nil, err
		}
		query.ManagerID = &managerID
	}
	if query.From, err = apiutil.ParseOptionalDate("from", body.From); err != nil {
		return query, nil, err
	}
	if query.To, err = apiutil.ParseOptionalDate("to", body.To); err != nil {
		return query, nil, err
	}

	cursor, err = cursorFromAPI(body.Cursor)
	return query, cursor, err
}

// cursorFromAPI returns nil for a first-page request.
func cursorFromAPI(c *ListTransactionsCursor) (*service.TransactionCursor, error) {
	if c == nil {
		return nil, nil
	}
	if c.Position < 0 {
		return nil, huma.NewError(http.StatusBadRequest, "cursor position must be non-negative")
	}
	snapshot, err := time.Parse(time.RFC3339Nano, c.MaxCreationTime)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", err)
	}
	return &service.TransactionCursor{
		Position:        c.Position,
		Limit:           c.Limit,
		MaxCreationTime: snapshot,
	}, nil
}

func cursorToAPI(c *service.TransactionCursor) *ListTransactionsCursor {
	if c == nil {
		return nil
	}
	return &ListTransactionsCursor{
		Position:        c.Position,
		Limit:           c.Limit,
		MaxCreationTime: c.MaxCreationTime.Format(time.RFC3339Nano),
	}
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	query, cursor, err := parseListTransactionsInput(input)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	stopTimer := func() {}
	if logData != nil {
		stopTimer = logData.AddTiming("listTransactionsMs")
	}
	page, next, err := h.TransactionService.ListTransactions(ctx, query, cursor)
	stopTimer()
	if err != nil {
		return nil, apiutil.Error("failed to list transactions", err)
	}
	if logData != nil {
		logData.AddData("transactionCount", len(page))
	}

	out := &ListTransactionsOutput{}
	out.Body.Transactions = make([]Transaction, len(page))
	for i, tx := range page {
		out.Body.Transactions[i] = toAPITransaction(tx)
	}
	out.Body.NextCursor = cursorToAPI(next)
	return out, nil
}
