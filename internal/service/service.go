package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/site-ledger/internal/events"
	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/operator/actions"
)

// Processor runs a write action in its own unit of work.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Service holds all business logic services.
type Service struct {
	Site        *SiteService
	Transaction *TransactionService
	Ledger      *LedgerService
}

// NewService wires the services. Reads go straight to reader; writes go
// through processor.
func NewService(reader ledger.Reader, processor Processor, publisher events.Publisher, fanOut int, logger *logrus.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		Site:        NewSiteService(reader, processor, logger),
		Transaction: NewTransactionService(reader, processor, logger),
		Ledger:      NewLedgerService(reader, processor, publisher, fanOut, logger),
	}
}
