// Package journal persists portfolio documents, one per user and portfolio,
// and reports changes made by other writers.
//
// Every backend stores the encoded document and decodes it through
// portfolio.Decode on read, so older documents are upgraded on load and
// written back in the current schema.
package journal

import (
	"context"
	"time"

	"github.com/rustyeddy/tracker/pkg/id"
	"github.com/rustyeddy/tracker/portfolio"
	"go.uber.org/zap"
)

// Kind says what happened to a portfolio.
type Kind string

const (
	Saved   Kind = "saved"
	Deleted Kind = "deleted"
)

// DefaultPollInterval is how often a SQLite Watch looks for new rows.
const DefaultPollInterval = 2 * time.Second

// Change is one remote write observed by Watch. Portfolio is empty for
// deletions.
type Change struct {
	Kind        Kind
	PortfolioID string
	Portfolio   portfolio.Portfolio
	Origin      string
}

type Journal interface {
	// Save replaces the stored document wholesale.
	Save(ctx context.Context, userID string, p portfolio.Portfolio) error
	// Delete removes a portfolio. Deleting a missing portfolio is not an
	// error.
	Delete(ctx context.Context, userID, portfolioID string) error
	// LoadAll returns every portfolio of the user.
	LoadAll(ctx context.Context, userID string) ([]portfolio.Portfolio, error)
	// Watch streams changes written by other journal instances until ctx
	// is done. The channel is closed afterwards.
	Watch(ctx context.Context, userID string) (<-chan Change, error)
	Close() error
}

// Option configures a backend.
type Option func(*options)

type options struct {
	log    *zap.Logger
	origin string
	poll   time.Duration
	prefix string
}

// WithLogger sets the logger used for skipped documents and feed errors.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithOrigin names this writer. Watch never reports changes carrying the
// same origin. Defaults to a fresh id per instance.
func WithOrigin(origin string) Option {
	return func(o *options) { o.origin = origin }
}

// WithPollInterval sets how often the SQLite feed checks for new rows.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.poll = d
		}
	}
}

// WithKeyPrefix sets the Redis key namespace.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		log:    zap.NewNop(),
		poll:   DefaultPollInterval,
		prefix: "tracker",
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.origin == "" {
		o.origin = id.New()
	}
	return o
}

// rawDoc is a stored document before decoding.
type rawDoc struct {
	id   string
	data []byte
}

// decodeAll decodes stored documents in order. Undecodable documents are
// logged and skipped; the ones that needed an upgrade are returned again
// in migrated so the caller can write them back.
func decodeAll(log *zap.Logger, userID string, raws []rawDoc) (out, migrated []portfolio.Portfolio) {
	out = make([]portfolio.Portfolio, 0, len(raws))
	for _, r := range raws {
		p, m, err := portfolio.Decode(r.data)
		if err != nil {
			log.Warn("skipping unreadable portfolio",
				zap.String("user", userID),
				zap.String("portfolio", r.id),
				zap.Error(err))
			continue
		}
		out = append(out, p)
		if m {
			migrated = append(migrated, p)
		}
	}
	return out, migrated
}

// writeBack saves upgraded documents. Failures only cost a repeat upgrade
// on the next load, so they are logged.
func writeBack(ctx context.Context, j Journal, log *zap.Logger, userID string, migrated []portfolio.Portfolio) {
	for _, p := range migrated {
		if err := j.Save(ctx, userID, p); err != nil {
			log.Warn("write back upgraded portfolio",
				zap.String("user", userID),
				zap.String("portfolio", p.ID),
				zap.Error(err))
			continue
		}
		log.Info("upgraded stored portfolio",
			zap.String("user", userID),
			zap.String("portfolio", p.ID),
			zap.Int("schema", portfolio.SchemaVersion))
	}
}
