package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// Configured reports whether any Postgres settings are present in the
// environment. Persistence is optional; without settings the batch
// runner simply skips the database sink.
func Configured() bool {
	return os.Getenv("DATABASE_URL") != "" || os.Getenv("DB_HOST") != ""
}

// NewDB creates a new database connection
func NewDB() (*DB, error) {
	// Get connection string from environment variable
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Try to build from individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "maps_scraper")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "maps_scraper")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=maps_scraper",
			host, port, user, password, dbname, sslmode)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	// Try to create the schema (but don't fail if we lack permission;
	// it usually already exists)
	_, err := db.conn.Exec(`CREATE SCHEMA IF NOT EXISTS maps_scraper`)
	if err != nil {
		log.Printf("Note: Could not create schema (may already exist): %v\n", err)
	}

	_, err = db.conn.Exec(`SET search_path TO maps_scraper`)
	if err != nil {
		return fmt.Errorf("failed to set search path: %w", err)
	}

	// Create runs table: one row per keyword per batch
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id SERIAL PRIMARY KEY,
			batch_id UUID NOT NULL,
			keyword TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'created',
			records_count INTEGER NOT NULL DEFAULT 0,
			attempted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_run_status CHECK (status IN ('created', 'in_progress', 'done', 'degraded', 'no_results', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	// Create businesses table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS businesses (
			id SERIAL PRIMARY KEY,
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			website TEXT,
			phone TEXT,
			maps_link TEXT NOT NULL,
			email TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create businesses table: %w", err)
	}

	// Create indexes
	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_batch_id ON runs(batch_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on runs.batch_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on runs.status: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_businesses_run_id ON businesses(run_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on businesses.run_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_businesses_website ON businesses(website) WHERE website IS NOT NULL`)
	if err != nil {
		log.Printf("Warning: Failed to create index on businesses.website: %v\n", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}
