package site

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/handlers/v1/apiutil"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

// Site is the API response model for a site.
type Site struct {
	ID        string `json:"id" doc:"Site UUID"`
	Name      string `json:"name" doc:"Site name"`
	Location  string `json:"location,omitempty" doc:"Site location"`
	ManagerID string `json:"managerID" doc:"UUID of the site manager"`
	Status    string `json:"status" enum:"ACTIVE,COMPLETED,ON_HOLD" doc:"Lifecycle status"`
	CreatedAt string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPISite(s *site.Site) Site {
	return Site{
		ID:        s.ID.String(),
		Name:      s.Name,
		Location:  s.Location,
		ManagerID: s.ManagerID.String(),
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
	}
}

type siteService interface {
	CreateSite(ctx context.Context, create site.SiteCreate) (*site.Site, error)
	GetSite(ctx context.Context, id uuid.UUID) (*site.Site, error)
	ListSites(ctx context.Context, status *site.Status) ([]*site.Site, error)
}

// Handler serves the site endpoints.
type Handler struct {
	SiteService siteService
}

func NewHandler(svc siteService) *Handler {
	return &Handler{SiteService: svc}
}

func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-site",
		Method:        http.MethodPost,
		Path:          "/v1/site",
		Summary:       "Create site",
		Tags:          []string{"Sites"},
		DefaultStatus: http.StatusCreated,
	}, h.create)

	huma.Register(api, huma.Operation{
		OperationID: "get-site",
		Method:      http.MethodGet,
		Path:        "/v1/site/{siteID}",
		Summary:     "Get site",
		Tags:        []string{"Sites"},
	}, h.get)

	huma.Register(api, huma.Operation{
		OperationID: "list-sites",
		Method:      http.MethodGet,
		Path:        "/v1/site",
		Summary:     "List sites",
		Tags:        []string{"Sites"},
	}, h.list)
}

type CreateSiteBody struct {
	Name      string `json:"name" minLength:"1" required:"true" doc:"Site name"`
	Location  string `json:"location,omitempty" doc:"Site location"`
	ManagerID string `json:"managerID" format:"uuid" required:"true" doc:"UUID of the site manager"`
	Status    string `json:"status,omitempty" enum:"ACTIVE,COMPLETED,ON_HOLD" doc:"Initial status, defaults to ACTIVE"`
}

type CreateSiteInput struct {
	Body CreateSiteBody
}

type SiteOutput struct {
	Body Site
}

func (h *Handler) create(ctx context.Context, input *CreateSiteInput) (*SiteOutput, error) {
	managerID, err := apiutil.ParseUUID("managerID", input.Body.ManagerID)
	if err != nil {
		return nil, err
	}

	created, err := h.SiteService.CreateSite(ctx, site.SiteCreate{
		Name:      input.Body.Name,
		Location:  input.Body.Location,
		ManagerID: managerID,
		Status:    site.Status(input.Body.Status),
	})
	if err != nil {
		return nil, apiutil.Error("failed to create site", err)
	}
	return &SiteOutput{Body: toAPISite(created)}, nil
}

type GetSiteInput struct {
	SiteID string `path:"siteID" format:"uuid" doc:"Site UUID"`
}

func (h *Handler) get(ctx context.Context, input *GetSiteInput) (*SiteOutput, error) {
	siteID, err := apiutil.ParseUUID("siteID", input.SiteID)
	if err != nil {
		return nil, err
	}

	found, err := h.SiteService.GetSite(ctx, siteID)
	if err != nil {
		return nil, apiutil.Error("failed to get site", err)
	}
	return &SiteOutput{Body: toAPISite(found)}, nil
}

type ListSitesInput struct {
	Status string `query:"status" enum:"ACTIVE,COMPLETED,ON_HOLD" doc:"Only sites in this status"`
}

type ListSitesOutput struct {
	Body struct {
		Sites []Site `json:"sites" doc:"Sites ordered by name"`
	}
}

func (h *Handler) list(ctx context.Context, input *ListSitesInput) (*ListSitesOutput, error) {
	var status *site.Status
	if input.Status != "" {
		s := site.Status(input.Status)
		status = &s
	}

	sites, err := h.SiteService.ListSites(ctx, status)
	if err != nil {
		return nil, apiutil.Error("failed to list sites", err)
	}

	out := &ListSitesOutput{}
	out.Body.Sites = make([]Site, len(sites))
	for i, s := range sites {
		out.Body.Sites[i] = toAPISite(s)
	}
	return out, nil
}
