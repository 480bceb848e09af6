package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tracker/portfolio"
	"go.uber.org/zap"
)

// SQLite keeps documents in a local database file. Several processes may
// share the file; Watch polls for rows written by other origins.
type SQLite struct {
	db  *sql.DB
	opt options
}

var _ Journal = (*SQLite)(nil)

func NewSQLite(path string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db, opt: buildOptions(opts)}, nil
}

// dsn enables WAL and a busy timeout so a polling reader and a writer can
// share the file.
func dsn(path string) string {
	if strings.Contains(path, "?") || path == ":memory:" {
		return path
	}
	return path + "?_journal_mode=WAL&_busy_timeout=5000"
}

func (j *SQLite) Save(ctx context.Context, userID string, p portfolio.Portfolio) error {
	data, err := portfolio.Encode(p)
	if err != nil {
		return fmt.Errorf("save portfolio %q: %w", p.ID, err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO portfolios
		(user_id, portfolio_id, version, updated_at, origin, deleted, seq, document)
		VALUES (?, ?, ?, ?, ?, 0, (SELECT COALESCE(MAX(seq), 0) + 1 FROM portfolios), ?)
		ON CONFLICT(user_id, portfolio_id) DO UPDATE SET
			version = excluded.version,
			updated_at = excluded.updated_at,
			origin = excluded.origin,
			deleted = 0,
			seq = excluded.seq,
			document = excluded.document`,
		userID, p.ID, p.Version, p.UpdatedAt.UnixMilli(), j.opt.origin, string(data),
	)
	if err != nil {
		return fmt.Errorf("save portfolio %q: %w", p.ID, err)
	}
	return nil
}

func (j *SQLite) Delete(ctx context.Context, userID, portfolioID string) error {
	_, err := j.db.ExecContext(ctx, `
		UPDATE portfolios
		SET deleted = 1, origin = ?, updated_at = ?,
			seq = (SELECT COALESCE(MAX(seq), 0) + 1 FROM portfolios)
		WHERE user_id = ? AND portfolio_id = ? AND deleted = 0`,
		j.opt.origin, time.Now().UnixMilli(), userID, portfolioID,
	)
	if err != nil {
		return fmt.Errorf("delete portfolio %q: %w", portfolioID, err)
	}
	return nil
}

// LoadAll returns the user's portfolios in the order they were first saved.
func (j *SQLite) LoadAll(ctx context.Context, userID string) ([]portfolio.Portfolio, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT portfolio_id, document
		FROM portfolios
		WHERE user_id = ? AND deleted = 0
		ORDER BY rowid ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}
	defer rows.Close()

	var raws []rawDoc
	for rows.Next() {
		var r rawDoc
		var doc string
		if err := rows.Scan(&r.id, &doc); err != nil {
			return nil, fmt.Errorf("load portfolios: %w", err)
		}
		r.data = []byte(doc)
		raws = append(raws, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load portfolios: %w", err)
	}
	rows.Close()

	out, migrated := decodeAll(j.opt.log, userID, raws)
	writeBack(ctx, j, j.opt.log, userID, migrated)
	return out, nil
}

func (j *SQLite) Watch(ctx context.Context, userID string) (<-chan Change, error) {
	var last int64
	if err := j.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM portfolios`).Scan(&last); err != nil {
		return nil, fmt.Errorf("watch portfolios: %w", err)
	}

	ch := make(chan Change)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(j.opt.poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			changes, next, err := j.changesSince(ctx, userID, last)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				j.opt.log.Warn("poll portfolio changes", zap.String("user", userID), zap.Error(err))
				continue
			}
			last = next

			for _, c := range changes {
				select {
				case ch <- c:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// changesSince returns rows of other origins written after seq, and the
// highest seq seen for the user.
func (j *SQLite) changesSince(ctx context.Context, userID string, seq int64) ([]Change, int64, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT portfolio_id, origin, deleted, seq, document
		FROM portfolios
		WHERE user_id = ? AND seq > ?
		ORDER BY seq ASC`, userID, seq)
	if err != nil {
		return nil, seq, err
	}
	defer rows.Close()

	var out []Change
	for rows.Next() {
		var (
			pid, origin, doc string
			deleted          bool
			rowSeq           int64
		)
		if err := rows.Scan(&pid, &origin, &deleted, &rowSeq, &doc); err != nil {
			return nil, seq, err
		}
		seq = max(seq, rowSeq)
		if origin == j.opt.origin {
			continue
		}
		if deleted {
			out = append(out, Change{Kind: Deleted, PortfolioID: pid, Origin: origin})
			continue
		}
		p, _, err := portfolio.Decode([]byte(doc))
		if err != nil {
			j.opt.log.Warn("skipping unreadable change",
				zap.String("user", userID),
				zap.String("portfolio", pid),
				zap.Error(err))
			continue
		}
		out = append(out, Change{Kind: Saved, PortfolioID: pid, Portfolio: p, Origin: origin})
	}
	return out, seq, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
