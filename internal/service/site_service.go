package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/operator/actions"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

// SiteService manages construction sites.
type SiteService struct {
	reader    ledger.Reader
	processor Processor
	logger    *logrus.Logger
}

func NewSiteService(reader ledger.Reader, processor Processor, logger *logrus.Logger) *SiteService {
	return &SiteService{reader: reader, processor: processor, logger: logger}
}

func (s *SiteService) CreateSite(ctx context.Context, create site.SiteCreate) (*site.Site, error) {
	action := &actions.CreateSite{Create: create}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"siteID": action.Site.ID,
		"status": action.Site.Status,
	}).Info("SiteService.CreateSite.created")
	return action.Site, nil
}

// GetSite returns the site or a NotFoundError.
func (s *SiteService) GetSite(ctx context.Context, id uuid.UUID) (*site.Site, error) {
	found, err := s.reader.FindSite(ctx, id)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, &ledger.NotFoundError{Kind: "site", ID: id}
	}
	return found, nil
}

// ListSites returns every site, optionally only those in status.
func (s *SiteService) ListSites(ctx context.Context, status *site.Status) ([]*site.Site, error) {
	return s.reader.ListSites(ctx, &site.SiteFilter{Status: status})
}
