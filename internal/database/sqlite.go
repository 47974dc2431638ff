package database

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/apex/log"
	_ "modernc.org/sqlite"
)

var (
	db   *sql.DB
	once sync.Once
)

// Config holds database configuration
type Config struct {
	Path     string
	ReadOnly bool
}

// Open opens a SQLite database and applies the connection pragmas
func Open(cfg Config) (*sql.DB, error) {
	dsn := cfg.Path
	if cfg.ReadOnly {
		dsn = "file:" + cfg.Path + "?mode=ro"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Path, err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	if !cfg.ReadOnly {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Path, err)
	}

	return conn, nil
}

// Init initializes the shared database connection
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		db, err = Open(cfg)
		if err != nil {
			return
		}
		log.WithField("path", cfg.Path).Info("database initialized")
	})

	return err
}

// GetDB returns the database instance
func GetDB() *sql.DB {
	if db == nil {
		log.Fatal("Database not initialized. Call Init() first.")
	}
	return db
}

// Close closes the database connection
func Close() error {
	if db != nil {
		return db.Close()
	}
	return nil
}

// Transaction executes a function within a database transaction
func Transaction(conn *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
