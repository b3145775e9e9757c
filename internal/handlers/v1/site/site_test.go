package site

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

type mockSiteService struct {
	mock.Mock
}

func (m *mockSiteService) CreateSite(ctx context.Context, create site.SiteCreate) (*site.Site, error) {
	args := m.Called(ctx, create)
	created, _ := args.Get(0).(*site.Site)
	return created, args.Error(1)
}

func (m *mockSiteService) GetSite(ctx context.Context, id uuid.UUID) (*site.Site, error) {
	args := m.Called(ctx, id)
	found, _ := args.Get(0).(*site.Site)
	return found, args.Error(1)
}

func (m *mockSiteService) ListSites(ctx context.Context, status *site.Status) ([]*site.Site, error) {
	args := m.Called(ctx, status)
	sites, _ := args.Get(0).([]*site.Site)
	return sites, args.Error(1)
}

func newTestAPI(t *testing.T, svc siteService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewHandler(svc).Register(api)
	return api
}

func sampleSite() *site.Site {
	return &site.Site{
		ID:        uuid.Must(uuid.NewV4()),
		Name:      "Harbour Tower",
		Location:  "Pier 4",
		ManagerID: uuid.Must(uuid.NewV4()),
		Status:    site.StatusActive,
		CreatedAt: time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC),
	}
}

func TestHTTP_CreateSite_Success(t *testing.T) {
	created := sampleSite()
	mockSvc := new(mockSiteService)
	mockSvc.On("CreateSite", mock.Anything, mock.MatchedBy(func(c site.SiteCreate) bool {
		return c.Name == "Harbour Tower" && c.ManagerID == created.ManagerID && c.Status == ""
	})).Return(created, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/site", CreateSiteBody{
		Name:      "Harbour Tower",
		ManagerID: created.ManagerID.String(),
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Site
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, created.ID.String(), body.ID)
	assert.Equal(t, "ACTIVE", body.Status)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateSite_InvalidStatus(t *testing.T) {
	mockSvc := new(mockSiteService)

	resp := newTestAPI(t, mockSvc).Post("/v1/site", CreateSiteBody{
		Name:      "Harbour Tower",
		ManagerID: uuid.Must(uuid.NewV4()).String(),
		Status:    "DEMOLISHED",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "CreateSite")
}

func TestHTTP_GetSite_NotFound(t *testing.T) {
	id := uuid.Must(uuid.NewV4())
	mockSvc := new(mockSiteService)
	mockSvc.On("GetSite", mock.Anything, id).Return(nil, &ledger.NotFoundError{Kind: "site", ID: id})

	resp := newTestAPI(t, mockSvc).Get("/v1/site/" + id.String())

	assert.Equal(t, http.StatusNotFound, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListSites_FiltersByStatus(t *testing.T) {
	mockSvc := new(mockSiteService)
	mockSvc.On("ListSites", mock.Anything, mock.MatchedBy(func(s *site.Status) bool {
		return s != nil && *s == site.StatusOnHold
	})).Return([]*site.Site{sampleSite()}, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/site?status=ON_HOLD")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Sites []Site `json:"sites"`
	}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Sites, 1)
	mockSvc.AssertExpectations(t)
}
