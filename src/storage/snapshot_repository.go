package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"

	"github.com/jmoiron/sqlx"
)

// snapshotRecord is one stored provider row. Values are kept as text and typed
// again on ingestion, so the store never changes what the provider sent.
type snapshotRecord struct {
	AssetClass      string         `db:"asset_class"`
	Position        int            `db:"position"`
	Symbol          sql.NullString `db:"symbol"`
	ClosePrice      sql.NullString `db:"close_price"`
	Value           sql.NullString `db:"value"`
	Volume          sql.NullString `db:"volume"`
	NumberTrades    sql.NullString `db:"number_trades"`
	FirstPrice      sql.NullString `db:"first_price"`
	LastTrade       sql.NullString `db:"last_trade"`
	LowPrice        sql.NullString `db:"low_price"`
	HighPrice       sql.NullString `db:"high_price"`
	YesterdayPrice  sql.NullString `db:"yesterday_price"`
	EPS             sql.NullString `db:"eps"`
	NumberShares    sql.NullString `db:"number_shares"`
	TypeOfAsset     sql.NullString `db:"type_of_asset"`
	BaseVolume      sql.NullString `db:"base_volume"`
	MaxAllowedPrice sql.NullString `db:"max_allowed_price"`
	MinAllowedPrice sql.NullString `db:"min_allowed_price"`
}

// snapshotMeta remembers which columns the provider actually sent.
type snapshotMeta struct {
	AssetClass string `db:"asset_class"`
	Source     string `db:"source"`
	Columns    string `db:"columns"`
	SavedAt    int64  `db:"saved_at"`
}

// storedColumns are the provider columns persisted by the store, in table order.
var storedColumns = []string{
	"symbol", "close_price", "value", "volume", "number_trades", "first_price",
	"last_trade", "low_price", "high_price", "yesterday_price", "eps",
	"number_shares", "type_of_asset", "base_volume", "max_allowed_price", "min_allowed_price",
}

// -----------------------------------------------------------------------------

func (r *snapshotRecord) fields() map[string]*sql.NullString {
	return map[string]*sql.NullString{
		"symbol":            &r.Symbol,
		"close_price":       &r.ClosePrice,
		"value":             &r.Value,
		"volume":            &r.Volume,
		"number_trades":     &r.NumberTrades,
		"first_price":       &r.FirstPrice,
		"last_trade":        &r.LastTrade,
		"low_price":         &r.LowPrice,
		"high_price":        &r.HighPrice,
		"yesterday_price":   &r.YesterdayPrice,
		"eps":               &r.EPS,
		"number_shares":     &r.NumberShares,
		"type_of_asset":     &r.TypeOfAsset,
		"base_volume":       &r.BaseVolume,
		"max_allowed_price": &r.MaxAllowedPrice,
		"min_allowed_price": &r.MinAllowedPrice,
	}
}

// -----------------------------------------------------------------------------

// snapshotRepository holds the SQL shared by the SQLite and Postgres stores.
type snapshotRepository struct {
	db        *sqlx.DB
	rowsTable string
	metaTable string
	logger    *logger.Logger
}

// -----------------------------------------------------------------------------

func (r *snapshotRepository) createTables(ctx context.Context) error {
	var cols []string
	for _, c := range storedColumns {
		cols = append(cols, fmt.Sprintf("%s TEXT", c))
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			asset_class TEXT NOT NULL,
			position INTEGER NOT NULL,
			%s,
			PRIMARY KEY (asset_class, position)
		);
	`, r.rowsTable, strings.Join(cols, ",\n\t\t\t"))
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.rowsTable, err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			asset_class TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			columns TEXT NOT NULL,
			saved_at BIGINT NOT NULL
		);
	`, r.metaTable)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.metaTable, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// save replaces every stored row of the asset class in one transaction.
func (r *snapshotRepository) save(ctx context.Context, snap *models.MRawSnapshot) error {
	if snap == nil || snap.AssetClass == "" {
		return helpers.NewStorageError("save snapshot", errors.New("snapshot has no asset class"))
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return helpers.NewStorageError("begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE asset_class = ?", r.rowsTable)), snap.AssetClass); err != nil {
		return helpers.NewStorageError("delete rows", err)
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind(fmt.Sprintf("DELETE FROM %s WHERE asset_class = ?", r.metaTable)), snap.AssetClass); err != nil {
		return helpers.NewStorageError("delete meta", err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (asset_class, position, %s) VALUES (:asset_class, :position, :%s)",
		r.rowsTable, strings.Join(storedColumns, ", "), strings.Join(storedColumns, ", :"))

	stmt, err := tx.PrepareNamedContext(ctx, insert)
	if err != nil {
		return helpers.NewStorageError("prepare insert", err)
	}
	defer stmt.Close()

	for i, rec := range snap.Records {
		row := snapshotRecord{AssetClass: snap.AssetClass, Position: i}
		fields := row.fields()
		for key, val := range rec {
			if f, ok := fields[key]; ok {
				*f = toNullString(val)
			}
		}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return helpers.NewStorageError(fmt.Sprintf("insert row %d", i), err)
		}
	}

	var kept []string
	for _, c := range snap.Columns {
		if _, ok := (&snapshotRecord{}).fields()[c]; ok {
			kept = append(kept, c)
		}
	}

	meta := snapshotMeta{
		AssetClass: snap.AssetClass,
		Source:     snap.Source,
		Columns:    strings.Join(kept, ","),
		SavedAt:    time.Now().Unix(),
	}
	metaInsert := fmt.Sprintf("INSERT INTO %s (asset_class, source, columns, saved_at) VALUES (:asset_class, :source, :columns, :saved_at)", r.metaTable)
	if _, err := tx.NamedExecContext(ctx, metaInsert, meta); err != nil {
		return helpers.NewStorageError("insert meta", err)
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewStorageError("commit", err)
	}

	r.logger.Info("Saved %d rows for %s", len(snap.Records), snap.AssetClass)
	return nil
}

// -----------------------------------------------------------------------------

// load returns the stored snapshot with rows in their original order.
func (r *snapshotRepository) load(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	var meta snapshotMeta
	err := r.db.GetContext(ctx, &meta, r.db.Rebind(fmt.Sprintf("SELECT asset_class, source, columns, saved_at FROM %s WHERE asset_class = ?", r.metaTable)), assetClass)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helpers.NewStorageError("load snapshot", fmt.Errorf("no snapshot stored for %q", assetClass))
	}
	if err != nil {
		return nil, helpers.NewStorageError("load meta", err)
	}

	var rows []snapshotRecord
	query := fmt.Sprintf("SELECT asset_class, position, %s FROM %s WHERE asset_class = ? ORDER BY position", strings.Join(storedColumns, ", "), r.rowsTable)
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), assetClass); err != nil {
		return nil, helpers.NewStorageError("load rows", err)
	}

	var columns []string
	if meta.Columns != "" {
		columns = strings.Split(meta.Columns, ",")
	}

	snap := &models.MRawSnapshot{
		AssetClass: assetClass,
		Source:     meta.Source,
		Columns:    columns,
		Records:    make([]map[string]interface{}, 0, len(rows)),
	}
	for i := range rows {
		fields := rows[i].fields()
		rec := make(map[string]interface{}, len(columns))
		for _, c := range columns {
			if v := fields[c]; v.Valid {
				rec[c] = v.String
			} else {
				rec[c] = nil
			}
		}
		snap.Records = append(snap.Records, rec)
	}
	return snap, nil
}

// -----------------------------------------------------------------------------

func toNullString(v interface{}) sql.NullString {
	switch val := v.(type) {
	case nil:
		return sql.NullString{}
	case string:
		return sql.NullString{String: val, Valid: true}
	case json.Number:
		return sql.NullString{String: val.String(), Valid: true}
	case float64:
		if math.IsNaN(val) {
			return sql.NullString{}
		}
		return sql.NullString{String: strconv.FormatFloat(val, 'f', -1, 64), Valid: true}
	case float32:
		if math.IsNaN(float64(val)) {
			return sql.NullString{}
		}
		return sql.NullString{String: strconv.FormatFloat(float64(val), 'f', -1, 32), Valid: true}
	default:
		return sql.NullString{String: fmt.Sprint(val), Valid: true}
	}
}
