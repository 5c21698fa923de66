package models

import (
	"database/sql"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

// migrateDB creates the schema if it does not exist yet
func migrateDB(conn *sql.DB) error {
	// DuckDB has no autoincrement; ids come from a sequence
	if _, err := conn.Exec("CREATE SEQUENCE IF NOT EXISTS uploads_id_seq START 1"); err != nil {
		logger.LogErr(err, "failed to create sequence", "sequence", "uploads_id_seq")
	}

	uploadsTableSQL := `
	CREATE TABLE IF NOT EXISTS uploads (
		id INTEGER PRIMARY KEY DEFAULT nextval('uploads_id_seq'),
		guid VARCHAR(40) UNIQUE NOT NULL,
		filename VARCHAR(255) NOT NULL,
		file_path TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := conn.Exec(uploadsTableSQL); err != nil {
		return serr.Wrap(err, "failed to create uploads table")
	}

	if _, err := conn.Exec("CREATE INDEX IF NOT EXISTS idx_uploads_filename ON uploads(filename)"); err != nil {
		logger.LogErr(err, "failed to create index", "index", "idx_uploads_filename")
	}

	return nil
}
