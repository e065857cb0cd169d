package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const dbFileName = "assessments.db"

// Pool limits. SQLite serializes writers, so a small pool is enough.
const (
	maxOpenConns    = 4
	maxIdleConns    = 2
	connMaxLifetime = 5 * time.Minute
)

// DB wraps the sqlite connection together with its prepared statements.
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewDB opens (creating if needed) the assessment store under dataDir and
// applies the schema.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "database: create data directory")
	}

	dbPath := filepath.Join(dataDir, dbFileName)
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "database: open")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, eris.Wrap(err, "database: ping")
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	db := &DB{
		DB:       sqlDB,
		prepared: make(map[string]*sql.Stmt),
	}
	if err := db.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := db.initPreparedStatements(); err != nil {
		_ = db.Close()
		return nil, err
	}

	zap.L().Info("Assessment store opened",
		zap.String("path", dbPath),
		zap.Int("max_open_conns", maxOpenConns),
	)
	return db, nil
}

func (db *DB) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS assessments (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL, -- unix milliseconds, UTC
			risk_level TEXT NOT NULL,
			composite_score REAL NOT NULL,
			confidence REAL NOT NULL,
			recommend_retest BOOLEAN NOT NULL DEFAULT FALSE,
			result TEXT NOT NULL -- JSON encoded risk output
		)`,
		`CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments(created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return eris.Wrap(err, "database: migrate")
		}
	}
	return nil
}

const (
	stmtInsert = "insert_assessment"
	stmtGet    = "get_assessment"
	stmtList   = "list_assessments"
	stmtDelete = "delete_assessment"
	stmtPurge  = "purge_assessments"
	stmtCount  = "count_assessments"
)

func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		stmtInsert: `INSERT INTO assessments (id, created_at, risk_level, composite_score, confidence, recommend_retest, result)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stmtGet: `SELECT id, created_at, result FROM assessments WHERE id = ?`,
		stmtList: `SELECT id, created_at, risk_level, composite_score, confidence, recommend_retest
			FROM assessments ORDER BY created_at DESC LIMIT ?`,
		stmtDelete: `DELETE FROM assessments WHERE id = ?`,
		stmtPurge:  `DELETE FROM assessments WHERE created_at < ?`,
		stmtCount:  `SELECT COUNT(*) FROM assessments`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return eris.Wrapf(err, "database: prepare %s", name)
		}
		db.prepared[name] = stmt
	}
	return nil
}

// GetPreparedStatement returns the named statement.
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, ok := db.prepared[name]
	if !ok {
		return nil, eris.Errorf("database: prepared statement %s not found", name)
	}
	return stmt, nil
}

func (db *DB) GetPoolStats() map[string]any {
	stats := db.Stats()
	return map[string]any{
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"max_open_connections": maxOpenConns,
		"wait_count":           stats.WaitCount,
		"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
	}
}

// Close releases the prepared statements and the connection pool.
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			zap.L().Warn("Failed to close prepared statement", zap.String("name", name), zap.Error(err))
		}
	}
	db.prepared = make(map[string]*sql.Stmt)
	return db.DB.Close()
}

// IsTransient reports whether err is a lock contention error worth retrying.
func IsTransient(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}
