// Package memory is an in-process Ledger Store. It backs local development and
// the engine tests. Units of work are serialised: only one may be open at a
// time, and its writes are staged on a copy that replaces the committed state
// on Commit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/site-ledger/internal/ledger"
	"github.com/carson-networks/site-ledger/internal/storage/carryforward"
	"github.com/carson-networks/site-ledger/internal/storage/site"
	"github.com/carson-networks/site-ledger/internal/storage/transaction"
)

type Store struct {
	mu    sync.RWMutex
	state *state

	// sem admits one unit of work at a time.
	sem chan struct{}
}

var _ ledger.Reader = (*Store)(nil)

func New() *Store {
	return &Store{
		state: newState(),
		sem:   make(chan struct{}, 1),
	}
}

// Write opens a unit of work, waiting for any open one to finish or for ctx to expire.
func (s *Store) Write(ctx context.Context) (ledger.UnitOfWork, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for unit of work: %v", ledger.ErrStoreUnavailable, ctx.Err())
	}

	s.mu.RLock()
	staged := s.state.clone()
	s.mu.RUnlock()

	return &unitOfWork{store: s, state: staged}, nil
}

func (s *Store) read() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) FindSite(_ context.Context, id uuid.UUID) (*site.Site, error) {
	return s.read().findSite(id), nil
}

func (s *Store) ListSites(_ context.Context, filter *site.SiteFilter) ([]*site.Site, error) {
	return s.read().listSites(filter), nil
}

func (s *Store) FindTransaction(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.read().findTransaction(id), nil
}

func (s *Store) QueryTransactions(_ context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	return s.read().queryTransactions(filter), nil
}

func (s *Store) FindCarryforward(_ context.Context, siteID uuid.UUID, fromDate civil.Date) (*carryforward.Carryforward, error) {
	return s.read().findCarryforward(siteID, fromDate), nil
}

func (s *Store) FindPendingCarryforward(_ context.Context, siteID uuid.UUID, budgetDate civil.Date) (*carryforward.Carryforward, error) {
	return s.read().findPending(siteID, budgetDate), nil
}

func (s *Store) QueryCarryforwards(_ context.Context, filter *carryforward.CarryforwardFilter) ([]*carryforward.Carryforward, error) {
	return s.read().queryCarryforwards(filter), nil
}

// state is never mutated once committed; units of work mutate their own clone.
type state struct {
	sites         map[uuid.UUID]*site.Site
	transactions  []*transaction.Transaction
	carryforwards []*carryforward.Carryforward
}

func newState() *state {
	return &state{sites: make(map[uuid.UUID]*site.Site)}
}

func (st *state) clone() *state {
	cloned := &state{
		sites:         make(map[uuid.UUID]*site.Site, len(st.sites)),
		transactions:  append([]*transaction.Transaction(nil), st.transactions...),
		carryforwards: make([]*carryforward.Carryforward, len(st.carryforwards)),
	}
	for id, found := range st.sites {
		cloned.sites[id] = found
	}
	// Carryforwards are updated in place when applied, so each gets its own copy.
	for i, cf := range st.carryforwards {
		cfCopy := *cf
		cloned.carryforwards[i] = &cfCopy
	}
	return cloned
}

func (st *state) findSite(id uuid.UUID) *site.Site {
	found, ok := st.sites[id]
	if !ok {
		return nil
	}
	siteCopy := *found
	return &siteCopy
}

func (st *state) listSites(filter *site.SiteFilter) []*site.Site {
	var result []*site.Site
	for _, found := range st.sites {
		if filter != nil && filter.Status != nil && found.Status != *filter.Status {
			continue
		}
		siteCopy := *found
		result = append(result, &siteCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID.String() < result[j].ID.String()
	})
	return result
}

func (st *state) findTransaction(id uuid.UUID) *transaction.Transaction {
	for _, tx := range st.transactions {
		if tx.ID == id {
			txCopy := *tx
			return &txCopy
		}
	}
	return nil
}

func (st *state) queryTransactions(filter *transaction.TransactionFilter) []*transaction.Transaction {
	var result []*transaction.Transaction
	for _, tx := range st.transactions {
		if filter != nil && !matchTransaction(tx, filter) {
			continue
		}
		txCopy := *tx
		result = append(result, &txCopy)
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Date != b.Date {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})
	if filter == nil {
		return result
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result
}

func matchTransaction(tx *transaction.Transaction, filter *transaction.TransactionFilter) bool {
	switch {
	case filter.SiteID != nil && tx.SiteID != *filter.SiteID:
		return false
	case filter.ManagerID != nil && tx.ManagerID != *filter.ManagerID:
		return false
	case filter.From != nil && tx.Date.Before(*filter.From):
		return false
	case filter.To != nil && tx.Date.After(*filter.To):
		return false
	case filter.Type != nil && tx.Type != *filter.Type:
		return false
	case filter.Category != nil && tx.Category != *filter.Category:
		return false
	case filter.ExcludeCategory != nil && tx.Category == *filter.ExcludeCategory:
		return false
	case filter.MaxCreationTime != nil && tx.CreatedAt.After(*filter.MaxCreationTime):
		return false
	}
	return true
}

func (st *state) findCarryforward(siteID uuid.UUID, fromDate civil.Date) *carryforward.Carryforward {
	for _, cf := range st.carryforwards {
		if cf.SiteID == siteID && cf.FromDate == fromDate {
			cfCopy := *cf
			return &cfCopy
		}
	}
	return nil
}

func (st *state) findPending(siteID uuid.UUID, budgetDate civil.Date) *carryforward.Carryforward {
	var latest *carryforward.Carryforward
	for _, cf := range st.carryforwards {
		if cf.SiteID != siteID || !cf.Pending() || !cf.FromDate.Before(budgetDate) {
			continue
		}
		if latest == nil || cf.FromDate.After(latest.FromDate) {
			latest = cf
		}
	}
	if latest == nil {
		return nil
	}
	cfCopy := *latest
	return &cfCopy
}

func (st *state) queryCarryforwards(filter *carryforward.CarryforwardFilter) []*carryforward.Carryforward {
	var result []*carryforward.Carryforward
	for _, cf := range st.carryforwards {
		if filter != nil {
			if filter.SiteID != nil && cf.SiteID != *filter.SiteID {
				continue
			}
			if filter.From != nil && cf.FromDate.Before(*filter.From) {
				continue
			}
			if filter.To != nil && cf.FromDate.After(*filter.To) {
				continue
			}
			if filter.PendingOnly && !cf.Pending() {
				continue
			}
		}
		cfCopy := *cf
		result = append(result, &cfCopy)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].FromDate != result[j].FromDate {
			return result[i].FromDate.After(result[j].FromDate)
		}
		return result[i].SiteID.String() < result[j].SiteID.String()
	})
	if filter != nil && filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result
}

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Ping always succeeds; the store lives in process.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
