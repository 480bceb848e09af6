// journal/schema.go
package journal

// Schema creates the SQLite document table. Deleted rows are kept as
// tombstones so Watch can report the deletion; seq orders every write.
const Schema = `
CREATE TABLE IF NOT EXISTS portfolios (
	user_id TEXT NOT NULL,
	portfolio_id TEXT NOT NULL,
	version INTEGER NOT NULL,
	updated_at INTEGER NOT NULL,
	origin TEXT NOT NULL,
	deleted INTEGER NOT NULL DEFAULT 0,
	seq INTEGER NOT NULL,
	document TEXT NOT NULL,
	PRIMARY KEY (user_id, portfolio_id)
);

CREATE INDEX IF NOT EXISTS idx_portfolios_seq ON portfolios(user_id, seq);
`
