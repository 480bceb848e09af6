package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rustyeddy/tracker/journal"
	"go.uber.org/zap"
)

// ConflictPolicy decides whether a remote document replaces the local one.
type ConflictPolicy int

const (
	// LastWriteWins applies every remote document as it arrives.
	LastWriteWins ConflictPolicy = iota
	// RejectStale ignores remote documents older than the local copy.
	RejectStale
)

func (p ConflictPolicy) String() string {
	switch p {
	case RejectStale:
		return "reject-stale"
	default:
		return "last-write-wins"
	}
}

// ParsePolicy accepts the names printed by String. Empty means
// LastWriteWins.
func ParsePolicy(s string) (ConflictPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "last-write-wins":
		return LastWriteWins, nil
	case "reject-stale":
		return RejectStale, nil
	default:
		return LastWriteWins, fmt.Errorf("unknown conflict policy %q", s)
	}
}

// Listen applies remote changes until ctx is done or the feed ends. It
// blocks; run it on its own goroutine. notify, when not nil, is called
// after every applied change.
func (s *Store) Listen(ctx context.Context, notify func(journal.Change)) error {
	feed, err := s.j.Watch(ctx, s.user)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	for c := range feed {
		if s.apply(c) && notify != nil {
			notify(c)
		}
	}
	if err := ctx.Err(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// apply merges one remote change and reports whether memory changed.
func (s *Store) apply(c journal.Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With(zap.String("portfolio", c.PortfolioID), zap.String("origin", c.Origin))

	switch c.Kind {
	case journal.Deleted:
		if _, ok := s.byID[c.PortfolioID]; !ok {
			return false
		}
		s.remove(c.PortfolioID)
		log.Info("remote delete applied")
		return true

	case journal.Saved:
		local, ok := s.byID[c.PortfolioID]
		if ok && s.policy == RejectStale && c.Portfolio.Version < local.Version {
			log.Info("stale remote portfolio ignored",
				zap.Int64("remote_version", c.Portfolio.Version),
				zap.Int64("local_version", local.Version))
			return false
		}
		if !ok {
			s.order = append(s.order, c.PortfolioID)
		}
		s.byID[c.PortfolioID] = c.Portfolio.Clone()
		log.Info("remote portfolio applied", zap.Int64("version", c.Portfolio.Version))
		return true
	}
	return false
}
