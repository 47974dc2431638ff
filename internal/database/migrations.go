package database

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/apex/log"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Migrations is the built-in schema history of the point store
var Migrations = []Migration{
	{
		Version: 1,
		Name:    "001_create_track_points",
		SQL: `CREATE TABLE IF NOT EXISTS track_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			longitude REAL NOT NULL,
			latitude REAL NOT NULL,
			dataTime INTEGER
		)`,
	},
	{
		Version: 2,
		Name:    "002_index_track_points_time",
		SQL:     `CREATE INDEX IF NOT EXISTS idx_track_points_time ON track_points (dataTime)`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db         *sql.DB
	migrations []Migration
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB, migrations []Migration) *MigrationManager {
	sorted := append([]Migration(nil), migrations...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Version < sorted[j].Version
	})
	return &MigrationManager{
		db:         db,
		migrations: sorted,
	}
}

// Migrate brings db up to the latest point store schema
func Migrate(db *sql.DB) error {
	return NewMigrationManager(db, Migrations).RunMigrations()
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns the set of applied migration versions
func (m *MigrationManager) GetAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// ApplyMigration applies a single migration and records it
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	err := Transaction(m.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(migration.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
		}
		if _, err := tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.WithField("version", migration.Version).Infof("applied migration %s", migration.Name)
	return nil
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations() error {
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if applied[migration.Version] {
			log.WithField("version", migration.Version).Debugf("skipping applied migration %s", migration.Name)
			continue
		}
		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
	}

	return nil
}
