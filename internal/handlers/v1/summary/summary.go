package summary

import (
	"context"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/ledger"
)

type ledgerReader interface {
	Daily(ctx context.Context, siteID uuid.UUID, date civil.Date) (ledger.DailyTotals, error)
	Summary(ctx context.Context, siteID uuid.UUID, from, to *civil.Date) (ledger.SiteSummary, error)
}

// Handler serves the read-only site totals.
type Handler struct {
	LedgerService ledgerReader
}

func NewHandler(svc ledgerReader) *Handler {
	return &Handler{LedgerService: svc}
}

func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "daily-totals",
		Method:      http.MethodGet,
		Path:        "/v1/site/{siteID}/daily",
		Summary:     "Daily totals",
		Description: "Inward and outward totals of one site-day. Inward excludes carryforward adjustments.",
		Tags:        []string{"Summary"},
	}, h.daily)

	huma.Register(api, huma.Operation{
		OperationID: "site-summary",
		Method:      http.MethodGet,
		Path:        "/v1/site/{siteID}/summary",
		Summary:     "Site summary",
		Description: "Inward and outward totals of a site over an optional date range.",
		Tags:        []string{"Summary"},
	}, h.summary)
}

type DailyInput struct {
	SiteID string `path:"siteID" format:"uuid" doc:"Site UUID"`
	Date   string `query:"date" format:"date" required:"true" doc:"Day (YYYY-MM-DD)"`
}

type DailyOutput struct {
	Body struct {
		SiteID             string `json:"siteID" doc:"Site UUID"`
		Date               string `json:"date" doc:"Day"`
		Inward             string `json:"inward" doc:"Base inward total"`
		Outward            string `json:"outward" doc:"Outward total, deficit adjustments included"`
		CarryforwardInward string `json:"carryforwardInward" doc:"Surplus adjustments attributed to the day"`
		Net                string `json:"net" doc:"Inward minus outward"`
		Available          string `json:"available" doc:"Net plus surplus adjustments"`
		HasBudget          bool   `json:"hasBudget" doc:"Whether a base budget was entered for the day"`
	}
}

func (h *Handler) daily(ctx context.Context, input *DailyInput) (*DailyOutput, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
	if err != nil {
		return nil, err
	}
	date, err := apiutil.ParseDate("date", input.Date)
	if err != nil {
		return nil, err
	}

	totals, err := h.LedgerService.Daily(ctx, siteID, date)
	if err != nil {
		return nil, apiutil.Error("failed to load daily totals", err)
	}

	out := &DailyOutput{}
	out.Body.SiteID = totals.SiteID.String()
	out.Body.Date = totals.Date.String()
	out.Body.Inward = totals.Inward.String()
	out.Body.Outward = totals.Outward.String()
	out.Body.CarryforwardInward = totals.CarryforwardInward.String()
	out.Body.Net = totals.Net().String()
	out.Body.Available = totals.Available().String()
	out.Body.HasBudget = totals.BudgetEntries > 0
	return out, nil
}

type SummaryInput struct {
	SiteID string `path:"siteID" format:"uuid" doc:"Site UUID"`
	From   string `query:"from" doc:"Earliest date, inclusive (YYYY-MM-DD)"`
	To     string `query:"to" doc:"Latest date, inclusive (YYYY-MM-DD)"`
}

type SummaryOutput struct {
	Body struct {
		SiteID  string `json:"siteID" doc:"Site UUID"`
		From    string `json:"from,omitempty" doc:"Lower bound when given"`
		To      string `json:"to,omitempty" doc:"Upper bound when given"`
		Inward  string `json:"inward" doc:"Inward total, adjustments included"`
		Outward string `json:"outward" doc:"Outward total, adjustments included"`
		Net     string `json:"net" doc:"Inward minus outward"`
		Entries int    `json:"entries" doc:"Number of transactions"`
	}
}

func (h *Handler) summary(ctx context.Context, input *SummaryInput) (*SummaryOutput, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
	if err != nil {
		return nil, err
	}
	from, err := apiutil.ParseOptionalDate("from", input.From)
	if err != nil {
		return nil, err
	}
	to, err := apiutil.ParseOptionalDate("to", input.To)
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, huma.Error400BadRequest("to must not be before from")
	}

	s, err := h.LedgerService.Summary(ctx, siteID, from, to)
	if err != nil {
		return nil, apiutil.Error("failed to summarize site", err)
	}

	out := &SummaryOutput{}
	out.Body.SiteID = s.SiteID.String()
	if s.From != nil {
		out.Body.From = s.From.String()
	}
	if s.To != nil {
		out.Body.To = s.To.String()
	}
	out.Body.Inward = s.Inward.String()
	out.Body.Outward = s.Outward.String()
	out.Body.Net = s.Net().String()
	out.Body.Entries = s.Entries
	return out, nil
}
