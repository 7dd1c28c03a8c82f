package snapshot

import (
	"errors"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"

	"github.com/guregu/null/v6"
)

// Row is one validated, typed snapshot row.
type Row struct {
	Symbol            string      `json:"Symbol"`
	ClosePrice        float64     `json:"Close Price"`
	TradeValue        float64     `json:"Trade Value"`
	TradeVolume       float64     `json:"Trade Volume"`
	TradesCount       int64       `json:"Trades Count"`
	FirstPrice        float64     `json:"First Price"`
	LastTrade         float64     `json:"Last Trade"`
	LowPrice          float64     `json:"Low Price"`
	HighPrice         float64     `json:"High Price"`
	YesterdayPrice    float64     `json:"Yesterday Price"`
	EPS               null.Float  `json:"EPS"`
	SharesOutstanding float64     `json:"Shares Outstanding"`
	TypeOfAsset       null.String `json:"type_of_asset"`
	BaseVolume        null.Float  `json:"Base Volume"`
	MaxPrice          null.Float  `json:"Max Price"`
	MinPrice          null.Float  `json:"Min Price"`
}

// Snapshot is an ingested market table. Column problems are kept per column so
// that each derived output can fail on its own.
type Snapshot struct {
	AssetClass string
	Source     string
	rows       []Row
	columnErrs map[string]error
}

// -----------------------------------------------------------------------------

// Ingest renames provider columns and converts every record to a typed Row.
// Missing or malformed columns never abort ingestion; they are reported by
// Require for the outputs that depend on them.
func Ingest(raw *models.MRawSnapshot) (*Snapshot, error) {
	if raw == nil {
		return nil, helpers.NewProviderError("snapshot", errors.New("provider returned no table"))
	}

	s := &Snapshot{
		AssetClass: raw.AssetClass,
		Source:     raw.Source,
		rows:       make([]Row, len(raw.Records)),
		columnErrs: make(map[string]error),
	}

	// An empty record list with no declared columns (e.g. a JSON "[]") carries
	// no schema to check.
	undeclared := len(raw.Records) == 0 && len(raw.Columns) == 0

	for _, col := range Columns {
		if undeclared {
			continue
		}
		if !raw.HasColumn(col.Key) {
			if !col.Optional {
				s.columnErrs[col.Label] = helpers.NewSchemaError(col.Label)
			}
			continue
		}

		for i, rec := range raw.Records {
			if err := assign(&s.rows[i], col, rec[col.Key]); err != nil {
				s.columnErrs[col.Label] = helpers.NewDataTypeError(col.Label, symbolOf(rec), rec[col.Key])
				break
			}
		}
	}

	return s, nil
}

// -----------------------------------------------------------------------------

var errBadValue = errors.New("bad value")

func assign(row *Row, col Column, val interface{}) error {
	switch col.Kind {
	case KindString:
		text, ok := toText(val)
		if !ok {
			return errBadValue
		}
		row.setString(col, text)

	case KindNullableString:
		if isNull(val) {
			return nil
		}
		text, _ := toText(val)
		row.setNullString(col, null.StringFrom(text))

	case KindFloat:
		f, ok := toFloat(val)
		if !ok {
			return errBadValue
		}
		row.setFloat(col, f)

	case KindNullableFloat:
		if isNull(val) {
			return nil
		}
		f, ok := toFloat(val)
		if !ok {
			return errBadValue
		}
		row.setNullFloat(col, null.FloatFrom(f))

	case KindInt:
		n, ok := toInt(val)
		if !ok {
			return errBadValue
		}
		row.TradesCount = n
	}
	return nil
}

// -----------------------------------------------------------------------------

func (r *Row) setString(col Column, v string) {
	if col == ColSymbol {
		r.Symbol = v
	}
}

func (r *Row) setNullString(col Column, v null.String) {
	if col == ColTypeOfAsset {
		r.TypeOfAsset = v
	}
}

func (r *Row) setFloat(col Column, v float64) {
	switch col {
	case ColClosePrice:
		r.ClosePrice = v
	case ColTradeValue:
		r.TradeValue = v
	case ColTradeVolume:
		r.TradeVolume = v
	case ColFirstPrice:
		r.FirstPrice = v
	case ColLastTrade:
		r.LastTrade = v
	case ColLowPrice:
		r.LowPrice = v
	case ColHighPrice:
		r.HighPrice = v
	case ColYesterdayPrice:
		r.YesterdayPrice = v
	case ColSharesOutstanding:
		r.SharesOutstanding = v
	}
}

func (r *Row) setNullFloat(col Column, v null.Float) {
	switch col {
	case ColEPS:
		r.EPS = v
	case ColBaseVolume:
		r.BaseVolume = v
	case ColMaxPrice:
		r.MaxPrice = v
	case ColMinPrice:
		r.MinPrice = v
	}
}

// -----------------------------------------------------------------------------

func symbolOf(rec map[string]interface{}) string {
	if text, ok := toText(rec[ColSymbol.Key]); ok {
		return text
	}
	return ""
}

// -----------------------------------------------------------------------------

// Len returns the number of rows.
func (s *Snapshot) Len() int {
	return len(s.rows)
}

// Rows returns a copy of the rows in table order.
func (s *Snapshot) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Require returns the first column error among cols, in the order given.
func (s *Snapshot) Require(cols ...Column) error {
	for _, c := range cols {
		if err, ok := s.columnErrs[c.Label]; ok {
			return err
		}
	}
	return nil
}

// ColumnErrors returns all column problems in table order.
func (s *Snapshot) ColumnErrors() []error {
	var errs []error
	for _, c := range Columns {
		if err, ok := s.columnErrs[c.Label]; ok {
			errs = append(errs, err)
		}
	}
	return errs
}

// -----------------------------------------------------------------------------

// FromRows builds a snapshot from already typed rows with every column present.
func FromRows(assetClass string, rows []Row) *Snapshot {
	s := &Snapshot{
		AssetClass: assetClass,
		rows:       make([]Row, len(rows)),
		columnErrs: make(map[string]error),
	}
	copy(s.rows, rows)
	return s
}
