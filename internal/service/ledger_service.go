package service

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/site-ledger/internal/events"
	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/operator/actions"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
)

// LedgerService exposes the carryforward engine.
type LedgerService struct {
	reader    ledger.Reader
	processor Processor
	publisher events.Publisher
	fanOut    int
	logger    *logrus.Logger
}

// NewLedgerService creates a LedgerService. fanOut bounds how many sites
// ReconcileDay reconciles at once.
func NewLedgerService(reader ledger.Reader, processor Processor, publisher events.Publisher, fanOut int, logger *logrus.Logger) *LedgerService {
	if fanOut < 1 {
		fanOut = 1
	}
	return &LedgerService{
		reader:    reader,
		processor: processor,
		publisher: publisher,
		fanOut:    fanOut,
		logger:    logger,
	}
}

// Reconcile closes out date for the site. A nil record means nothing was carried.
func (s *LedgerService) Reconcile(ctx context.Context, siteID uuid.UUID, date civil.Date) (*carryforward.Carryforward, error) {
	action := &actions.Reconcile{SiteID: siteID, Date: date}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, err
	}

	record := action.Carryforward
	fields := logrus.Fields{"siteID": siteID, "date": date.String()}
	if record == nil {
		s.logger.WithFields(fields).Info("LedgerService.Reconcile.nothingToCarry")
		return nil, nil
	}

	fields["carryforwardID"] = record.ID
	fields["amount"] = record.Amount.String()
	if !action.Created {
		s.logger.WithFields(fields).Debug("LedgerService.Reconcile.alreadyRecorded")
		return record, nil
	}

	s.logger.WithFields(fields).Info("LedgerService.Reconcile.recorded")
	s.publish(ctx, &events.Event{
		Type:           events.TypeCarryforwardReconciled,
		SiteID:         siteID,
		Date:           date,
		CarryforwardID: uuid.NullUUID{UUID: record.ID, Valid: true},
		Amount:         record.Amount,
		OccurredAt:     record.CreatedAt,
	})
	return record, nil
}

// ApplyBudget records the base budget and folds in the pending carryforward.
func (s *LedgerService) ApplyBudget(ctx context.Context, entry ledger.BudgetEntry) (*ledger.Application, error) {
	action := &actions.ApplyBudget{Entry: entry}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, err
	}

	app := action.Application
	effective := app.EffectiveTotal()
	fields := logrus.Fields{
		"siteID":         entry.SiteID,
		"date":           entry.Date.String(),
		"budgetID":       app.Budget.ID,
		"effectiveTotal": effective.String(),
	}
	event := &events.Event{
		Type:           events.TypeBudgetApplied,
		SiteID:         entry.SiteID,
		Date:           entry.Date,
		TransactionID:  uuid.NullUUID{UUID: app.Budget.ID, Valid: true},
		EffectiveTotal: &effective,
		OccurredAt:     app.Budget.CreatedAt,
	}
	if app.Carryforward != nil {
		fields["carryforwardID"] = app.Carryforward.ID
		fields["carryforwardAmount"] = app.Carryforward.Amount.String()
		event.CarryforwardID = uuid.NullUUID{UUID: app.Carryforward.ID, Valid: true}
		event.Amount = app.Carryforward.Amount
	}
	s.logger.WithFields(fields).Info("LedgerService.ApplyBudget.applied")
	s.publish(ctx, event)
	return app, nil
}

// Pending returns the carryforward a budget on date would consume, or nil.
func (s *LedgerService) Pending(ctx context.Context, siteID uuid.UUID, date civil.Date) (*carryforward.Carryforward, error) {
	return ledger.PendingCarryforward(ctx, s.reader, siteID, date)
}

// Daily returns the site's totals for one attributed date.
func (s *LedgerService) Daily(ctx context.Context, siteID uuid.UUID, date civil.Date) (ledger.DailyTotals, error) {
	return ledger.Aggregate(ctx, s.reader, siteID, date)
}

func (s *LedgerService) History(ctx context.Context, filter *carryforward.CarryforwardFilter) (*ledger.History, error) {
	return ledger.CarryforwardHistory(ctx, s.reader, filter)
}

func (s *LedgerService) Summary(ctx context.Context, siteID uuid.UUID, from, to *civil.Date) (ledger.SiteSummary, error) {
	return ledger.SummarizeSite(ctx, s.reader, siteID, from, to)
}

// SiteReconciliation is one site's outcome within ReconcileDay.
type SiteReconciliation struct {
	SiteID       uuid.UUID
	Carryforward *carryforward.Carryforward
	Err          error
}

// ReconcileDay reconciles every active site for date. A failing site does not
// stop the others; its error is reported in its result. The returned error is
// set only when the sites could not be listed or ctx ended.
func (s *LedgerService) ReconcileDay(ctx context.Context, date civil.Date) ([]SiteReconciliation, error) {
	active := site.StatusActive
	sites, err := s.reader.ListSites(ctx, &site.SiteFilter{Status: &active})
	if err != nil {
		return nil, err
	}

	results := make([]SiteReconciliation, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOut)
	for i, st := range sites {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			record, err := s.Reconcile(gctx, st.ID, date)
			results[i] = SiteReconciliation{SiteID: st.ID, Carryforward: record, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"date":   date.String(),
		"sites":  len(sites),
		"failed": failed,
	}).Info("LedgerService.ReconcileDay.complete")
	return results, nil
}

func (s *LedgerService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"eventType": event.Type,
			"siteID":    event.SiteID,
		}).Warn("LedgerService.publish.failed")
	}
}
