package storage

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/site-ledger/internal/config"
	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/memory"
)

// Backend is a ledger store that reads directly and writes through units of work.
type Backend interface {
	ledger.Reader
	Write(ctx context.Context) (ledger.UnitOfWork, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Backend = (*Storage)(nil)
	_ Backend = (*memory.Store)(nil)
)

// Open builds the configured backend. Postgres is migrated to the latest schema first.
func Open(env *config.Config, logger *logrus.Logger) (Backend, error) {
	if env.Backend == config.BackendMemory {
		logger.Warn("storage.Open.memory backend selected, nothing is persisted")
		return memory.New(), nil
	}

	s, err := NewStorage(env)
	if err != nil {
		return nil, err
	}
	result, err := RunMigrations(s.DB)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"preMigrationVersion":  result.PreVersion,
		"postMigrationVersion": result.PostVersion,
	}).Info("storage.Open.migrated")
	return s, nil
}
