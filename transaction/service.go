// Package transaction provides the TransactionService implementation,
// including dashboard aggregation over the cached ledger.
package transaction

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/entitycache"
)

const kind = "transaction"

// Backend is the remote store contract for transactions.
// Implementations: supabase/ (hosted REST store), fake/ (testing).
type Backend interface {
	// List returns up to limit transactions, newest first.
	List(ctx context.Context, limit int) ([]hostwise.Transaction, error)

	// ListByProperty returns a property's transactions.
	ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Transaction, error)

	// ListByType returns income or expense entries.
	ListByType(ctx context.Context, typ hostwise.TransactionType) ([]hostwise.Transaction, error)

	// ListInRange returns transactions dated within [from, to].
	ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Transaction, error)

	// Get returns one transaction, or ErrNotFound.
	Get(ctx context.Context, id string) (*hostwise.Transaction, error)

	Insert(ctx context.Context, input hostwise.TransactionInput) (*hostwise.Transaction, error)
	Update(ctx context.Context, id string, patch hostwise.TransactionPatch) (*hostwise.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// Service implements hostwise.TransactionService with a configurable backend.
type Service struct {
	backend Backend
	cache   *entitycache.Cache[hostwise.Transaction]
	limit   int
}

// compile-time check
var _ hostwise.TransactionService = (*Service)(nil)

// Option configures the Service.
type Option func(*settings)

type settings struct {
	ttl      time.Duration
	limit    int
	logger   *slog.Logger
	recorder entitycache.Recorder
	clock    func() time.Time
}

// WithCacheTTL sets the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithListLimit caps full list fetches.
func WithListLimit(limit int) Option {
	return func(s *settings) { s.limit = limit }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRecorder sets the cache observability recorder.
func WithRecorder(r entitycache.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithClock overrides the cache time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// New creates a transaction service over the given backend.
func New(backend Backend, opts ...Option) *Service {
	cfg := settings{
		ttl:    hostwise.DefaultCacheTTL,
		limit:  hostwise.DefaultTransactionListLimit,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}

	svc := &Service{backend: backend, limit: cfg.limit}
	cacheOpts := []entitycache.Option[hostwise.Transaction]{
		entitycache.WithLogger[hostwise.Transaction](cfg.logger),
		entitycache.WithClock[hostwise.Transaction](cfg.clock),
	}
	if cfg.recorder != nil {
		cacheOpts = append(cacheOpts, entitycache.WithRecorder[hostwise.Transaction](cfg.recorder))
	}
	svc.cache = entitycache.New(kind, cfg.ttl, func(ctx context.Context) ([]hostwise.Transaction, error) {
		return backend.List(ctx, svc.limit)
	}, cacheOpts...)
	return svc
}

// List returns the cached transaction list, fetching through on a cold or
// stale cache.
func (s *Service) List(ctx context.Context, forceRefresh bool) ([]hostwise.Transaction, error) {
	records, err := s.cache.Get(ctx, forceRefresh)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// GetByID scans the warm cache first; on a cold cache it performs a remote
// point lookup. An absent row maps to (nil, nil).
func (s *Service) GetByID(ctx context.Context, id string) (*hostwise.Transaction, error) {
	if records, ok := s.cache.Peek(); ok {
		for i := range records {
			if records[i].ID == id {
				t := records[i]
				return &t, nil
			}
		}
	}

	t, err := s.backend.Get(ctx, id)
	if errors.Is(err, hostwise.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "get", Kind: kind, Err: err}
	}
	return t, nil
}

// ListByProperty prefers filtering the warm cache; on a cold cache it
// issues a scoped remote query.
func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Transaction, error) {
	if records, ok := s.cache.Peek(); ok {
		return filter(records, func(t hostwise.Transaction) bool {
			return t.PropertyID == propertyID
		}), nil
	}

	records, err := s.backend.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// ListByType prefers filtering the warm cache; on a cold cache it issues a
// scoped remote query.
func (s *Service) ListByType(ctx context.Context, typ hostwise.TransactionType) ([]hostwise.Transaction, error) {
	if records, ok := s.cache.Peek(); ok {
		return filter(records, func(t hostwise.Transaction) bool {
			return t.Type == typ
		}), nil
	}

	records, err := s.backend.ListByType(ctx, typ)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// ListInRange returns transactions dated within [from, to], preferring the
// warm cache.
func (s *Service) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Transaction, error) {
	if records, ok := s.cache.Peek(); ok {
		return filter(records, func(t hostwise.Transaction) bool {
			return !t.Date.Before(from) && !t.Date.After(to)
		}), nil
	}

	records, err := s.backend.ListInRange(ctx, from, to)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// Summarize totals income and expenses for one property over [from, to].
// An empty propertyID aggregates across all properties.
func (s *Service) Summarize(ctx context.Context, propertyID string, from, to hostwise.Date) (*hostwise.TransactionSummary, error) {
	records, err := s.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &hostwise.TransactionSummary{
		Income:   decimal.Zero,
		Expenses: decimal.Zero,
	}
	for _, t := range records {
		if propertyID != "" && t.PropertyID != propertyID {
			continue
		}
		summary.Count++
		switch t.Type {
		case hostwise.TransactionTypeIncome:
			summary.Income = summary.Income.Add(t.Amount)
		case hostwise.TransactionTypeExpense:
			summary.Expenses = summary.Expenses.Add(t.Amount)
		}
	}
	summary.Net = summary.Income.Sub(summary.Expenses)
	return summary, nil
}

// Create writes remotely first and invalidates the cache on success.
func (s *Service) Create(ctx context.Context, input hostwise.TransactionInput) (*hostwise.Transaction, error) {
	t, err := s.backend.Insert(ctx, input)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "create", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return t, nil
}

// Update writes remotely first and invalidates the cache on success.
func (s *Service) Update(ctx context.Context, id string, patch hostwise.TransactionPatch) (*hostwise.Transaction, error) {
	t, err := s.backend.Update(ctx, id, patch)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "update", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return t, nil
}

// Delete removes remotely first and invalidates the cache on success.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return &hostwise.PersistenceError{Op: "delete", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return nil
}

// Invalidate clears the cache.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}

func filter(records []hostwise.Transaction, keep func(hostwise.Transaction) bool) []hostwise.Transaction {
	out := make([]hostwise.Transaction, 0, len(records))
	for _, t := range records {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
