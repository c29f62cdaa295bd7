package sqlite

import "database/sql"

// schema sets up the export ledger. It runs on startup.
const schema = `
CREATE TABLE IF NOT EXISTS exports (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    filename TEXT NOT NULL,
    participant_count INTEGER NOT NULL,
    total_original INTEGER NOT NULL,
    total_after_discount INTEGER NOT NULL,
    bytes INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    error TEXT,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exports_created_at ON exports(created_at);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
