package models

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
)

var (
	db   *sql.DB
	dbMu sync.RWMutex // writers hold the lock; readers share it
)

// InitDB opens the DuckDB file at path and runs migrations
func InitDB(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return serr.Wrap(err, "failed to create database directory")
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return serr.Wrap(err, "failed to open database")
	}

	if err := migrateDB(conn); err != nil {
		conn.Close()
		return serr.Wrap(err, "failed to migrate database")
	}

	dbMu.Lock()
	db = conn
	dbMu.Unlock()

	logger.Info("Database ready", "path", path)
	return nil
}

// CloseDB closes the database connection
func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db != nil {
		if err := db.Close(); err != nil {
			logger.LogErr(err, "failed to close database")
		}
		db = nil
	}
}

// WriteThrough runs a write statement under the write lock
func WriteThrough(query string, args ...interface{}) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if db == nil {
		return serr.New("database not initialized")
	}

	if _, err := db.Exec(query, args...); err != nil {
		return serr.Wrap(err, "failed to write")
	}
	return nil
}

// ReadRows runs a query under the read lock
func ReadRows(query string, args ...interface{}) (*sql.Rows, error) {
	dbMu.RLock()
	defer dbMu.RUnlock()

	if db == nil {
		return nil, serr.New("database not initialized")
	}
	return db.Query(query, args...)
}
