package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/site-ledger/internal/config"
	"github.com/carson-networks/site-ledger/internal/ledger"
)

// Storage is the Postgres ledger store. Reads go through the embedded Reader.
type Storage struct {
	*Reader
	DB      *sql.DB
	exec    bob.DB
	timeout time.Duration
}

// ConnectionString builds the lib/pq DSN from the environment config.
func ConnectionString(env *config.Config) string {
	return "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"
}

func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", ConnectionString(env))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return NewStorageFromDB(db, env.StoreTimeout), nil
}

// NewStorageFromDB wraps an open database. Reads issued through Reader are
// bounded by timeout; units of work are bounded by their caller's context.
func NewStorageFromDB(db *sql.DB, timeout time.Duration) *Storage {
	exec := bob.NewDB(db)
	return &Storage{
		DB:      db,
		Reader:  NewReader(exec, timeout),
		exec:    exec,
		timeout: timeout,
	}
}

// Write begins a database transaction and returns it as a unit of work.
func (s *Storage) Write(ctx context.Context) (ledger.UnitOfWork, error) {
	tx, err := s.exec.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapErr("storage.Write", err)
	}
	return NewWriter(tx), nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping checks the database is reachable within the store timeout.
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return wrapErr("storage.Ping", err)
	}
	return nil
}
