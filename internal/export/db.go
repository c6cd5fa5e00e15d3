package export

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/vonshlovens/zettelkasten/internal/config"
)

// DB wraps the connection pool to the Postgres sink.
type DB struct {
	Pool   *pgxpool.Pool
	config *config.DatabaseConfig
	Schema string
}

// New opens a connection pool against cfg and verifies it with a ping.
func New(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("connected to export database",
		"host", cfg.Host,
		"database", cfg.Database,
		"schema", cfg.Schema)

	return &DB{Pool: pool, config: cfg, Schema: cfg.Schema}, nil
}

// Close releases the connection pool.
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		slog.Info("export database connection closed")
	}
}

// Ping checks whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// EnsureSchema creates the configured schema if it doesn't already exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db.Schema == "" {
		return nil
	}
	_, err := db.Pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", db.Schema))
	if err != nil {
		return fmt.Errorf("failed to create schema %s: %w", db.Schema, err)
	}
	slog.Info("schema ready", "schema", db.Schema)
	return nil
}

// RunMigrations applies every pending goose migration in migrationsDir
// against the configured schema, creating it first if needed.
func (db *DB) RunMigrations(ctx context.Context, migrationsDir string) error {
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	stdDB, err := sql.Open("pgx", db.config.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open stdlib connection: %w", err)
	}
	defer stdDB.Close()

	if db.Schema != "" {
		goose.SetTableName(db.Schema + ".goose_db_version")
	}

	if err := goose.Up(stdDB, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("migrations completed successfully", "schema", db.Schema)
	return nil
}

// MigrationStatus reports the current migration state to stdout via goose.
func (db *DB) MigrationStatus(migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	stdDB, err := sql.Open("pgx", db.config.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to open stdlib connection: %w", err)
	}
	defer stdDB.Close()

	if db.Schema != "" {
		goose.SetTableName(db.Schema + ".goose_db_version")
	}

	return goose.Status(stdDB, migrationsDir)
}

// Status summarizes the export sink's current contents.
type Status struct {
	Connected    bool
	LastSyncTime *time.Time
	TotalRecords int
}

// GetStatus reports record count and most recent sync time.
func (db *DB) GetStatus(ctx context.Context) (*Status, error) {
	status := &Status{Connected: true}

	var count int
	if err := db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM zettels").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	status.TotalRecords = count

	var lastSync *time.Time
	if err := db.Pool.QueryRow(ctx, "SELECT MAX(synced_at) FROM zettels").Scan(&lastSync); err != nil {
		slog.Warn("failed to get last sync time", "error", err)
	}
	status.LastSyncTime = lastSync

	return status, nil
}
