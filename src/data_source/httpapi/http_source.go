package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	datasource "market-dashboard/src/data_source"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

// AssetClassPlaceholder in a source URL is replaced by the requested asset class.
const AssetClassPlaceholder = "{asset_class}"

// HTTPSource reads a snapshot from a JSON market API. The body is either an
// array of records or an object holding that array under "data".
type HTTPSource struct {
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

func NewHTTPSource(cfg *models.MConfig, sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager) *HTTPSource {
	return &HTTPSource{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       logger.NewLogger(cfg, "HTTPSource-"+sourceCfg.Name),
	}
}

// -----------------------------------------------------------------------------

func (s *HTTPSource) Name() string {
	return s.SourceConfig.Name
}

// -----------------------------------------------------------------------------

func (s *HTTPSource) Supports(assetClass string) bool {
	return datasource.SupportsAssetClass(s.SourceConfig.AssetClasses, assetClass)
}

// -----------------------------------------------------------------------------

// FetchSnapshot requests the asset class table and keeps the provider's column
// names in order of first appearance.
func (s *HTTPSource) FetchSnapshot(ctx context.Context, assetClass string) (*models.MRawSnapshot, error) {
	url := strings.ReplaceAll(s.SourceConfig.URL, AssetClassPlaceholder, assetClass)

	params := map[string]string{"asset_class": assetClass}
	if s.SourceConfig.APIKey != "" {
		params["apikey"] = s.SourceConfig.APIKey
	}

	body, err := s.Network.Get(ctx, url, params)
	if err != nil {
		return nil, helpers.NewProviderError(s.Name(), err)
	}

	columns, records, err := DecodeRecords(body)
	if err != nil {
		return nil, helpers.NewProviderError(s.Name(), err)
	}

	s.Logger.Debug("Fetched %d rows for %s", len(records), assetClass)
	return &models.MRawSnapshot{
		AssetClass: assetClass,
		Source:     s.Name(),
		Columns:    columns,
		Records:    records,
	}, nil
}

// -----------------------------------------------------------------------------

// DecodeRecords parses a JSON table. Numbers are kept as json.Number so that
// integer columns are not rounded through float64.
func DecodeRecords(body []byte) ([]string, []map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil, fmt.Errorf("empty response body")
	}

	var rawRecords []json.RawMessage
	if trimmed[0] == '{' {
		var envelope struct {
			Data []json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, nil, fmt.Errorf("decode envelope: %w", err)
		}
		if envelope.Data == nil {
			return nil, nil, fmt.Errorf("response object has no data array")
		}
		rawRecords = envelope.Data
	} else if err := json.Unmarshal(trimmed, &rawRecords); err != nil {
		return nil, nil, fmt.Errorf("decode records: %w", err)
	}

	var columns []string
	seen := make(map[string]bool)
	records := make([]map[string]interface{}, 0, len(rawRecords))

	for i, raw := range rawRecords {
		keys, record, err := decodeObject(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", i, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
		records = append(records, record)
	}

	return columns, records, nil
}

// -----------------------------------------------------------------------------

// decodeObject walks one JSON object token by token to keep its key order.
func decodeObject(raw json.RawMessage) ([]string, map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	record := make(map[string]interface{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}

		var value interface{}
		if err := dec.Decode(&value); err != nil {
			return nil, nil, fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := record[key]; !dup {
			keys = append(keys, key)
		}
		record[key] = value
	}
	return keys, record, nil
}
