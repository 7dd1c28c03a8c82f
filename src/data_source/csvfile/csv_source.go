package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// AssetClassPlaceholder in a source path is replaced by the requested asset class.
const AssetClassPlaceholder = "{asset_class}"

// CSVSource reads a snapshot exported as CSV. The header row carries the
// provider column names; empty cells are null.
type CSVSource struct {
	SourceConfig models.MSourceConfig
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewCSVSource(cfg *models.MConfig, sourceCfg models.MSourceConfig) *CSVSource {
	return &CSVSource{
		SourceConfig: sourceCfg,
		Logger:       logger.NewLogger(cfg, "CSVSource-"+sourceCfg.Name),
	}
}

// -----------------------------------------------------------------------------

func (s *CSVSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *CSVSource) Supports(assetClass string) bool {
	return datasource.SupportsAssetClass(s.SourceConfig.AssetClasses, assetClass)
}

// -----------------------------------------------------------------------------

func (s *CSVSource) FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, helpers.NewProviderError(s.Name(), err)
	}

	path := strings.ReplaceAll(s.SourceConfig.Path, AssetClassPlaceholder, assetClass)
	snap, err := ReadFile(path)
	if err != nil {
		return nil, helpers.NewProviderError(s.Name(), err)
	}

	snap.AssetClass = assetClass
	snap.Source = s.Name()
	s.Logger.Debug("Read %d rows for %s from %s", len(snap.Records), assetClass, path)
	return snap, nil
}

// -----------------------------------------------------------------------------

// ReadFile loads a CSV snapshot from disk.
func ReadFile(path string) (*models.MRawSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}

// -----------------------------------------------------------------------------

// Read parses a CSV snapshot. Every row must have as many fields as the header.
func Read(r io.Reader) (*models.MRawSnapshot, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	snap := &models.MRawSnapshot{Columns: columns, Records: []map[string]interface{}{}}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if fields[i] == "" {
				record[col] = nil
				continue
			}
			record[col] = fields[i]
		}
		snap.Records = append(snap.Records, record)
	}

	return snap, nil
}
