package carryforward

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

type budgetApplier interface {
	ApplyBudget(ctx context.Context, entry ledger.BudgetEntry) (*ledger.Application, error)
	Pending(ctx context.Context, siteID uuid.UUID, date civil.Date) (*carryforward.Carryforward, error)
}

// BudgetHandler serves budget entry and the pending lookup.
type BudgetHandler struct {
	LedgerService budgetApplier
}

func NewBudgetHandler(svc budgetApplier) *BudgetHandler {
	return &BudgetHandler{LedgerService: svc}
}

func (h *BudgetHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "apply-budget",
		Method:        http.MethodPost,
		Path:          "/v1/site/{siteID}/budget",
		Summary:       "Enter a daily budget",
		Description:   "Records the base budget for a day and applies the most recent pending carryforward.",
		Tags:          []string{"Carryforwards"},
		DefaultStatus: http.StatusCreated,
	}, h.apply)

	huma.Register(api, huma.Operation{
		OperationID: "pending-carryforward",
		Method:      http.MethodGet,
		Path:        "/v1/site/{siteID}/carryforward/pending",
		Summary:     "Pending carryforward",
		Description: "Returns the carryforward a budget on the given date would apply.",
		Tags:        []string{"Carryforwards"},
	}, h.pending)
}

type ApplyBudgetBody struct {
	ManagerID   string `json:"managerID" format:"uuid" required:"true" doc:"UUID of the admin entering the budget"`
	Date        string `json:"date" format:"date" required:"true" doc:"Budget date (YYYY-MM-DD)"`
	Amount      string `json:"amount" required:"true" doc:"Positive base budget amount"`
	Category    string `json:"category,omitempty" doc:"Category, defaults to Budget"`
	Description string `json:"description,omitempty" doc:"Free-text description"`
}

type ApplyBudgetInput struct {
	SiteID string `path:"siteID" format:"uuid" doc:"Site UUID"`
	Body   ApplyBudgetBody
}

type ApplyBudgetOutput struct {
	Body Application
}

func parseApplyBudgetInput(input *ApplyBudgetInput) (ledger.BudgetEntry, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
	if err != nil {
		return ledger.BudgetEntry{}, err
	}
	managerID, err := apiutil.ParseUUID("managerID", input.Body.ManagerID)
	if err != nil {
		return ledger.BudgetEntry{}, err
	}
	date, err := apiutil.ParseDate("date", input.Body.Date)
	if err != nil {
		return ledger.BudgetEntry{}, err
	}
	amount, err := apiutil.ParseAmount("amount", input.Body.Amount)
	if err != nil {
		return ledger.BudgetEntry{}, err
	}
	return ledger.BudgetEntry{
		SiteID:      siteID,
		ManagerID:   managerID,
		Date:        date,
		Amount:      amount,
		Category:    input.Body.Category,
		Description: input.Body.Description,
	}, nil
}

func (h *BudgetHandler) apply(ctx context.Context, input *ApplyBudgetInput) (*ApplyBudgetOutput, error) {
	entry, err := parseApplyBudgetInput(input)
	if err != nil {
		return nil, err
	}

	app, err := h.LedgerService.ApplyBudget(ctx, entry)
	if err != nil {
		return nil, apiutil.Error("failed to apply budget", err)
	}
	return &ApplyBudgetOutput{Body: toAPIApplication(app)}, nil
}

type PendingInput struct {
	SiteID string `path:"siteID" format:"uuid" doc:"Site UUID"`
	Date   string `query:"date" format:"date" required:"true" doc:"Prospective budget date (YYYY-MM-DD)"`
}

type PendingOutput struct {
	Body struct {
		Carryforward *Carryforward `json:"carryforward,omitempty" doc:"Absent when nothing is pending"`
	}
}

func (h *BudgetHandler) pending(ctx context.Context, input *PendingInput) (*PendingOutput, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
	if err != nil {
		return nil, err
	}
	date, err := apiutil.ParseDate("date", input.Date)
	if err != nil {
		return nil, err
	}

	record, err := h.LedgerService.Pending(ctx, siteID, date)
	if err != nil {
		return nil, apiutil.Error("failed to look up pending carryforward", err)
	}

	out := &PendingOutput{}
	out.Body.Carryforward = toAPICarryforward(record)
	return out, nil
}
