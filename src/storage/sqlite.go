package storage

import (
	"context"
	"fmt"

	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sqlx.DB
	Logger *logger.Logger
	repo   *snapshotRepository
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	if cfg.Storage.DBPath == "" {
		return nil, fmt.Errorf("sqlite store needs storage.db_path")
	}
	if log == nil {
		log = logger.NewNop("SQLiteStore")
	}
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	d.repo = &snapshotRepository{
		db:        db,
		rowsTable: "market_snapshot",
		metaTable: "market_snapshot_meta",
		logger:    d.Logger,
	}
	if err := d.repo.createTables(context.Background()); err != nil {
		return err
	}

	d.Logger.Info("SQLite store ready at %s", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Name() string {
	return "sqlite"
}

// -----------------------------------------------------------------------------

// Supports is true for every asset class; FetchSnapshot fails for one that
// was never saved.
func (d *SQLiteStore) Supports(assetClass string) bool {
	return true
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveSnapshot(ctx context.Context, snap *models.MRawSnapshot) error {
	if d.repo == nil {
		return fmt.Errorf("sqlite store is not initialized")
	}
	return d.repo.save(ctx, snap)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	if d.repo == nil {
		return nil, fmt.Errorf("sqlite store is not initialized")
	}
	return d.repo.load(ctx, assetClass)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
