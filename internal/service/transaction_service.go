package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/operator/actions"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

var now = time.Now

// TransactionService handles organic ledger entries.
type TransactionService struct {
	reader    ledger.Reader
	processor Processor
	logger    *logrus.Logger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(reader ledger.Reader, processor Processor, logger *logrus.Logger) *TransactionService {
	return &TransactionService{reader: reader, processor: processor, logger: logger}
}

// CreateTransaction records a manager's entry and returns it as stored.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx Transaction) (Transaction, error) {
	action := &actions.RecordTransaction{Create: transaction.TransactionCreate{
		SiteID:      tx.SiteID,
		ManagerID:   tx.ManagerID,
		LaborerID:   tx.LaborerID,
		Type:        tx.Type,
		Amount:      tx.Amount,
		Category:    tx.Category,
		Description: tx.Description,
		Date:        tx.Date,
	}}
	if err := s.processor.Process(ctx, action); err != nil {
		return Transaction{}, err
	}

	s.logger.WithFields(logrus.Fields{
		"transactionID": action.Transaction.ID,
		"siteID":        action.Transaction.SiteID,
		"type":          action.Transaction.Type,
		"date":          action.Transaction.Date.String(),
	}).Info("TransactionService.CreateTransaction.recorded")
	return fromStorageTransaction(action.Transaction), nil
}

// DeleteTransaction removes a transaction on behalf of managerID, who must have created it.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id, managerID uuid.UUID) error {
	action := &actions.DeleteTransaction{TransactionID: id, ManagerID: managerID}
	if err := s.processor.Process(ctx, action); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"transactionID": id,
		"siteID":        action.Deleted.SiteID,
		"category":      action.Deleted.Category,
	}).Info("TransactionService.DeleteTransaction.deleted")
	return nil
}

// GetTransaction returns one transaction or a NotFoundError.
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (Transaction, error) {
	found, err := s.reader.FindTransaction(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	if found == nil {
		return Transaction{}, &ledger.NotFoundError{Kind: "transaction", ID: id}
	}
	return fromStorageTransaction(found), nil
}

// ListTransactions returns a page of transactions using cursor-based pagination.
func (s *TransactionService) ListTransactions(ctx context.Context, query TransactionQuery, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	limit := defaultLimit
	offset := 0
	// The first page pins the snapshot so later pages ignore newer rows.
	maxCreationTime := now().UTC()
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = cursor.MaxCreationTime
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}

	filter := &transaction.TransactionFilter{
		SiteID:          query.SiteID,
		ManagerID:       query.ManagerID,
		From:            query.From,
		To:              query.To,
		Limit:           limit + 1,
		Offset:          offset,
		MaxCreationTime: &maxCreationTime,
	}

	rows, err := s.reader.QueryTransactions(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &TransactionCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: maxCreationTime,
		}
	}

	convertedTransactions := make([]Transaction, len(rows))
	for i, row := range rows {
		convertedTransactions[i] = fromStorageTransaction(row)
	}

	return convertedTransactions, nextCursor, nil
}
