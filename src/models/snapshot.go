package models

// MRawSnapshot is one point-in-time market table as handed over by a provider.
// Records are keyed by provider column name (e.g. "close_price"); a column is
// present only if it is listed in Columns.
type MRawSnapshot struct {
	AssetClass string                   `json:"asset_class"`
	Source     string                   `json:"source"`
	Columns    []string                 `json:"columns"`
	Records    []map[string]interface{} `json:"records"`
}

// -----------------------------------------------------------------------------

// HasColumn reports whether the provider declared the given column.
func (s *MRawSnapshot) HasColumn(name string) bool {
	for _, c := range s.Columns {
		if c == name {
			return true
		}
	}
	return false
}
