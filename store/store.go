// Package store keeps the authoritative in-memory copy of a user's
// portfolios and persists it through a journal.
//
// Mutations apply to memory first and return immediately; the new document
// is then written behind by a single worker, in mutation order. A failed
// write is logged and never rolls memory back. Changes made elsewhere
// arrive through Listen and replace the local copy according to the
// ConflictPolicy.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rustyeddy/tracker/journal"
	"github.com/rustyeddy/tracker/ledger"
	"github.com/rustyeddy/tracker/portfolio"
	"go.uber.org/zap"
)

var (
	ErrPortfolioNotFound = errors.New("portfolio not found")
	ErrPortfolioExists   = errors.New("portfolio already exists")
	ErrClosed            = errors.New("store is closed")
)

const (
	writeQueueSize = 256
	writeTimeout   = 30 * time.Second
)

type Store struct {
	j      journal.Journal
	user   string
	log    *zap.Logger
	policy ConflictPolicy
	now    func() time.Time

	mu     sync.Mutex
	byID   map[string]portfolio.Portfolio
	order  []string
	closed bool

	writes chan write
	done   chan struct{}
}

// write is one queued persistence call: a save when p is set, a flush
// barrier when flushed is set, a delete otherwise.
type write struct {
	p        *portfolio.Portfolio
	deleteID string
	flushed  chan struct{}
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithPolicy(p ConflictPolicy) Option {
	return func(s *Store) { s.policy = p }
}

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns an empty store for userID. Call Load to read the journal and
// Close to drain pending writes.
func New(j journal.Journal, userID string, opts ...Option) *Store {
	s := &Store{
		j:      j,
		user:   userID,
		log:    zap.NewNop(),
		policy: LastWriteWins,
		now:    time.Now,
		byID:   map[string]portfolio.Portfolio{},
		writes: make(chan write, writeQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(zap.String("user", userID))

	go s.run()
	return s
}

// Load replaces the in-memory copy with what the journal holds.
func (s *Store) Load(ctx context.Context) error {
	all, err := s.j.LoadAll(ctx, s.user)
	if err != nil {
		return fmt.Errorf("load store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID = make(map[string]portfolio.Portfolio, len(all))
	s.order = s.order[:0]
	for _, p := range all {
		if _, dup := s.byID[p.ID]; !dup {
			s.order = append(s.order, p.ID)
		}
		s.byID[p.ID] = p
	}
	s.log.Debug("store loaded", zap.Int("portfolios", len(s.order)))
	return nil
}

// Create adds a new portfolio.
func (s *Store) Create(p portfolio.Portfolio) (portfolio.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return portfolio.Portfolio{}, ErrClosed
	}
	if _, ok := s.byID[p.ID]; ok {
		return portfolio.Portfolio{}, fmt.Errorf("create portfolio: %w: %q", ErrPortfolioExists, p.ID)
	}

	p = p.Clone()
	p.Version++
	p.UpdatedAt = s.now()
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	s.enqueueSave(p)
	return p.Clone(), nil
}

func (s *Store) Get(portfolioID string) (portfolio.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[portfolioID]
	if !ok {
		return portfolio.Portfolio{}, fmt.Errorf("get portfolio: %w: %q", ErrPortfolioNotFound, portfolioID)
	}
	return p.Clone(), nil
}

// List returns every portfolio in creation order.
func (s *Store) List() []portfolio.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]portfolio.Portfolio, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, s.byID[pid].Clone())
	}
	return out
}

// Update applies u to the portfolio and returns the new state. When u
// fails nothing changes.
func (s *Store) Update(portfolioID string, u ledger.Updater) (portfolio.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return portfolio.Portfolio{}, ErrClosed
	}
	cur, ok := s.byID[portfolioID]
	if !ok {
		return portfolio.Portfolio{}, fmt.Errorf("update portfolio: %w: %q", ErrPortfolioNotFound, portfolioID)
	}

	next, err := u(cur.Clone())
	if err != nil {
		return cur.Clone(), err
	}
	next.ID = cur.ID
	next.Version = cur.Version + 1
	next.UpdatedAt = s.now()

	s.byID[portfolioID] = next
	s.enqueueSave(next)
	return next.Clone(), nil
}

func (s *Store) Delete(portfolioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if _, ok := s.byID[portfolioID]; !ok {
		return fmt.Errorf("delete portfolio: %w: %q", ErrPortfolioNotFound, portfolioID)
	}
	s.remove(portfolioID)
	s.enqueue(write{deleteID: portfolioID})
	return nil
}

// remove must be called with s.mu held.
func (s *Store) remove(portfolioID string) {
	delete(s.byID, portfolioID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == portfolioID })
}

// enqueueSave must be called with s.mu held so writes keep mutation order.
func (s *Store) enqueueSave(p portfolio.Portfolio) {
	p = p.Clone()
	s.enqueue(write{p: &p})
}

func (s *Store) enqueue(w write) {
	s.writes <- w
}

func (s *Store) run() {
	defer close(s.done)
	for w := range s.writes {
		s.persist(w)
	}
}

func (s *Store) persist(w write) {
	if w.flushed != nil {
		close(w.flushed)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if w.p == nil {
		if err := s.j.Delete(ctx, s.user, w.deleteID); err != nil {
			s.log.Error("delete portfolio", zap.String("portfolio", w.deleteID), zap.Error(err))
		}
		return
	}
	if err := s.j.Save(ctx, s.user, *w.p); err != nil {
		s.log.Error("save portfolio",
			zap.String("portfolio", w.p.ID),
			zap.Int64("version", w.p.Version),
			zap.Error(err))
		return
	}
	s.log.Debug("portfolio saved", zap.String("portfolio", w.p.ID), zap.Int64("version", w.p.Version))
}

// Flush waits until every write queued before the call has been
// attempted.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	if !s.closed {
		done = make(chan struct{})
		s.enqueue(write{flushed: done})
	}
	s.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting mutations and waits for queued writes.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.writes)
	s.mu.Unlock()

	<-s.done
	return nil
}
