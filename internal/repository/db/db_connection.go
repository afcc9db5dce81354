package db

import (
	"database/sql"
	"fmt"

	"pondwatch"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	sqlDB, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	sqlDB.SetMaxOpenConns(1) // SQLite is not great with many writers
	sqlDB.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	if _, err := sqlDB.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("set PRAGMA foreign_keys=ON: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if err := ensureSchema(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite: %w: %w", pondwatch.ErrStoreUnavailable, err)
	}

	return sqlDB, nil
}

const sqliteDriverName = "sqlite"

const schemaNotifications = `
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    message TEXT NOT NULL,
    type TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    expiry INTEGER NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT 0,
    condition TEXT NOT NULL DEFAULT 'normal'
);
`

const schemaNotificationsIndex = `
CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications (created_at);
`

const schemaSensorState = `
CREATE TABLE IF NOT EXISTS sensor_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    temp_c REAL NOT NULL,
    ph REAL NOT NULL,
    water_level_cm REAL NOT NULL,
    observed_at TIMESTAMP NOT NULL
);
`

const schemaSensorReadings = `
CREATE TABLE IF NOT EXISTS sensor_readings (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    temp_c REAL NOT NULL,
    ph REAL NOT NULL,
    water_level_cm REAL NOT NULL,
    observed_at TIMESTAMP NOT NULL
);
`

const schemaControlState = `
CREATE TABLE IF NOT EXISTS control_state (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    mode BOOLEAN NOT NULL,
    cutoff BOOLEAN NOT NULL,
    heater BOOLEAN NOT NULL,
    peltier BOOLEAN NOT NULL,
    pump BOOLEAN NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(sqlDB *sql.DB) error {
	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaNotifications,
		schemaNotificationsIndex,
		schemaSensorState,
		schemaSensorReadings,
		schemaControlState,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
