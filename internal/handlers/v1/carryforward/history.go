package carryforward

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
)

type historian interface {
	History(ctx context.Context, filter *carryforward.CarryforwardFilter) (*ledger.History, error)
}

// HistoryHandler serves GET /v1/carryforward/history.
type HistoryHandler struct {
	LedgerService historian
}

func NewHistoryHandler(svc historian) *HistoryHandler {
	return &HistoryHandler{LedgerService: svc}
}

func (h *HistoryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "carryforward-history",
		Method:      http.MethodGet,
		Path:        "/v1/carryforward/history",
		Summary:     "Carryforward history",
		Description: "Lists carryforward records newest first with totals and a monthly summary.",
		Tags:        []string{"Carryforwards"},
	}, h.handle)
}

type HistoryInput struct {
	SiteID      string `query:"siteID" doc:"Only this site; all sites when empty"`
	From        string `query:"from" doc:"Earliest fromDate, inclusive (YYYY-MM-DD)"`
	To          string `query:"to" doc:"Latest fromDate, inclusive (YYYY-MM-DD)"`
	PendingOnly bool   `query:"pendingOnly" doc:"Only records not yet applied"`
	Limit       int    `query:"limit" minimum:"0" maximum:"1000" doc:"Maximum records, 0 for no limit"`
}

type MonthSummary struct {
	Month string `json:"month" doc:"YYYY-MM"`
	Count int    `json:"count" doc:"Records closed out that month"`
	Total string `json:"total" doc:"Signed total"`
}

type HistoryOutput struct {
	Body struct {
		Carryforwards []Carryforward `json:"carryforwards" doc:"Records, newest fromDate first"`
		Count         int            `json:"count" doc:"Number of records"`
		Total         string         `json:"total" doc:"Signed total"`
		Surplus       string         `json:"surplus" doc:"Sum of positive records"`
		Deficit       string         `json:"deficit" doc:"Magnitude of the sum of negative records"`
		Sites         int            `json:"sites" doc:"Distinct sites with at least one record"`
		Months        []MonthSummary `json:"months" doc:"Per-month summary, newest first"`
	}
}

func parseHistoryInput(input *HistoryInput) (*carryforward.CarryforwardFilter, error) {
	filter := &carryforward.CarryforwardFilter{
		PendingOnly: input.PendingOnly,
		Limit:       input.Limit,
	}
	if input.SiteID != "" {
		siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
		if err != nil {
			return nil, err
		}
		filter.SiteID = &siteID
	}
	var err error
	if filter.From, err = apiutil.ParseOptionalDate("from", input.From); err != nil {
		return nil, err
	}
	if filter.To, err = apiutil.ParseOptionalDate("to", input.To); err != nil {
		return nil, err
	}
	return filter, nil
}

func (h *HistoryHandler) handle(ctx context.Context, input *HistoryInput) (*HistoryOutput, error) {
	filter, err := parseHistoryInput(input)
	if err != nil {
		return nil, err
	}

	history, err := h.LedgerService.History(ctx, filter)
	if err != nil {
		return nil, apiutil.Error("failed to load carryforward history", err)
	}

	out := &HistoryOutput{}
	out.Body.Carryforwards = make([]Carryforward, len(history.Carryforwards))
	for i, c := range history.Carryforwards {
		out.Body.Carryforwards[i] = *toAPICarryforward(c)
	}
	out.Body.Count = len(history.Carryforwards)
	out.Body.Total = history.Total.String()
	out.Body.Surplus = history.Surplus.String()
	out.Body.Deficit = history.Deficit.String()
	out.Body.Sites = history.Sites
	out.Body.Months = make([]MonthSummary, len(history.Months))
	for i, m := range history.Months {
		out.Body.Months[i] = MonthSummary{Month: m.Month, Count: m.Count, Total: m.Total.String()}
	}
	return out, nil
}
