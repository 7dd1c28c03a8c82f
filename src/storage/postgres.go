package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config *models.MConfig
	DB     *sqlx.DB
	Schema string
	Logger *logger.Logger
	repo   *snapshotRepository
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	// One schema per executable, so several dashboards can share a database
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	if log == nil {
		log = logger.NewNop("PostgresStore")
	}

	return &PostgresStore{
		Config: cfg,
		Schema: SchemaName(name),
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

// SchemaName turns an executable name into a lower-case Postgres identifier.
func SchemaName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "market_dashboard"
	}
	return b.String()
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	d.repo = &snapshotRepository{
		db:        db,
		rowsTable: fmt.Sprintf(`"%s"."market_snapshot"`, d.Schema),
		metaTable: fmt.Sprintf(`"%s"."market_snapshot_meta"`, d.Schema),
		logger:    d.Logger,
	}
	if err := d.repo.createTables(context.Background()); err != nil {
		return err
	}

	d.Logger.Info("PostgresStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Name() string {
	return "postgres"
}

// -----------------------------------------------------------------------------

// Supports is true for every asset class; FetchSnapshot fails for one that
// was never saved.
func (d *PostgresStore) Supports(assetClass string) bool {
	return true
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveSnapshot(ctx context.Context, snap *models.MRawSnapshot) error {
	if d.repo == nil {
		return fmt.Errorf("postgres store is not initialized")
	}
	return d.repo.save(ctx, snap)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	if d.repo == nil {
		return nil, fmt.Errorf("postgres store is not initialized")
	}
	return d.repo.load(ctx, assetClass)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
