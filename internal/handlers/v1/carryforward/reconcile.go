package carryforward

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/logging"
	"github.com/carson-networks/site-ledger/internal/service"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

type reconciler interface {
	Reconcile(ctx context.Context, siteID uuid.UUID, date civil.Date) (*carryforward.Carryforward, error)
	ReconcileDay(ctx context.Context, date civil.Date) ([]service.SiteReconciliation, error)
}

// ReconcileHandler serves POST /v1/site/{siteID}/reconcile and POST /v1/reconcile.
type ReconcileHandler struct {
	LedgerService reconciler
}

func NewReconcileHandler(svc reconciler) *ReconcileHandler {
	return &ReconcileHandler{LedgerService: svc}
}

func (h *ReconcileHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "reconcile-site-day",
		Method:      http.MethodPost,
		Path:        "/v1/site/{siteID}/reconcile",
		Summary:     "Reconcile a site-day",
		Description: "Closes out the date for the site. Repeated calls return the same record.",
		Tags:        []string{"Carryforwards"},
	}, h.reconcile)

	huma.Register(api, huma.Operation{
		OperationID: "reconcile-day",
		Method:      http.MethodPost,
		Path:        "/v1/reconcile",
		Summary:     "Reconcile every active site",
		Description: "Closes out the date for every ACTIVE site. Per-site failures are reported, not fatal.",
		Tags:        []string{"Carryforwards"},
	}, h.reconcileDay)
}

type ReconcileBody struct {
	Date string `json:"date" format:"date" required:"true" doc:"Day to close out (YYYY-MM-DD)"`
}

type ReconcileInput struct {
	SiteID string `path:"siteID" format:"uuid" doc:"Site UUID"`
	Body   ReconcileBody
}

type ReconcileOutput struct {
	Body struct {
		Carryforward *Carryforward `json:"carryforward,omitempty" doc:"Absent when the day had no budget or balanced to zero"`
	}
}

func (h *ReconcileHandler) reconcile(ctx context.Context, input *ReconcileInput) (*ReconcileOutput, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
	if err != nil {
		return nil, err
	}
	date, err := apiutil.ParseDate("date", input.Body.Date)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	var stopTimer func()
	if logData != nil {
		logData.AddData("siteID", siteID.String())
		logData.AddData("date", date.String())
		stopTimer = logData.AddTiming("reconcileMs")
	}
	record, err := h.LedgerService.Reconcile(ctx, siteID, date)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, apiutil.Error("failed to reconcile", err)
	}

	out := &ReconcileOutput{}
	out.Body.Carryforward = toAPICarryforward(record)
	return out, nil
}

type ReconcileDayInput struct {
	Body ReconcileBody
}

type SiteResult struct {
	SiteID       string        `json:"siteID" doc:"Site UUID"`
	Carryforward *Carryforward `json:"carryforward,omitempty" doc:"Record, when one was created or already existed"`
	Error        string        `json:"error,omitempty" doc:"Failure for this site"`
}

type ReconcileDayOutput struct {
	Body struct {
		Date    string       `json:"date" doc:"Reconciled day"`
		Results []SiteResult `json:"results" doc:"One entry per active site"`
	}
}

func (h *ReconcileHandler) reconcileDay(ctx context.Context, input *ReconcileDayInput) (*ReconcileDayOutput, error) {
	date, err := apiutil.ParseDate("date", input.Body.Date)
	if err != nil {
		return nil, err
	}

	results, err := h.LedgerService.ReconcileDay(ctx, date)
	if err != nil {
		return nil, apiutil.Error("failed to reconcile day", err)
	}

	out := &ReconcileDayOutput{}
	out.Body.Date = date.String()
	out.Body.Results = make([]SiteResult, len(results))
	for i, r := range results {
		out.Body.Results[i] = SiteResult{
			SiteID:       r.SiteID.String(),
			Carryforward: toAPICarryforward(r.Carryforward),
		}
		if r.Err != nil {
			out.Body.Results[i].Error = r.Err.Error()
		}
	}
	return out, nil
}
