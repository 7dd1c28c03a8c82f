package snapshot

// Kind is the semantic type of a snapshot column.
type Kind int

const (
	KindString Kind = iota
	KindNullableString
	KindFloat
	KindNullableFloat
	KindInt
)

// Column maps a provider column to its display name.
type Column struct {
	Key      string
	Label    string
	Kind     Kind
	Optional bool
}

// Snapshot columns. Labels are the names shown on the dashboard.
var (
	ColSymbol            = Column{Key: "symbol", Label: "Symbol", Kind: KindString}
	ColClosePrice        = Column{Key: "close_price", Label: "Close Price", Kind: KindFloat}
	ColTradeValue        = Column{Key: "value", Label: "Trade Value", Kind: KindFloat}
	ColTradeVolume       = Column{Key: "volume", Label: "Trade Volume", Kind: KindFloat}
	ColTradesCount       = Column{Key: "number_trades", Label: "Trades Count", Kind: KindInt}
	ColFirstPrice        = Column{Key: "first_price", Label: "First Price", Kind: KindFloat}
	ColLastTrade         = Column{Key: "last_trade", Label: "Last Trade", Kind: KindFloat}
	ColLowPrice          = Column{Key: "low_price", Label: "Low Price", Kind: KindFloat}
	ColHighPrice         = Column{Key: "high_price", Label: "High Price", Kind: KindFloat}
	ColYesterdayPrice    = Column{Key: "yesterday_price", Label: "Yesterday Price", Kind: KindFloat}
	ColEPS               = Column{Key: "eps", Label: "EPS", Kind: KindNullableFloat}
	ColSharesOutstanding = Column{Key: "number_shares", Label: "Shares Outstanding", Kind: KindFloat}
	ColTypeOfAsset       = Column{Key: "type_of_asset", Label: "type_of_asset", Kind: KindNullableString}
	ColBaseVolume        = Column{Key: "base_volume", Label: "Base Volume", Kind: KindNullableFloat, Optional: true}
	ColMaxPrice          = Column{Key: "max_allowed_price", Label: "Max Price", Kind: KindNullableFloat, Optional: true}
	ColMinPrice          = Column{Key: "min_allowed_price", Label: "Min Price", Kind: KindNullableFloat, Optional: true}
)

// Columns lists every known column in table order.
var Columns = []Column{
	ColSymbol,
	ColClosePrice,
	ColTradeValue,
	ColTradeVolume,
	ColTradesCount,
	ColFirstPrice,
	ColLastTrade,
	ColLowPrice,
	ColHighPrice,
	ColYesterdayPrice,
	ColEPS,
	ColSharesOutstanding,
	ColTypeOfAsset,
	ColBaseVolume,
	ColMaxPrice,
	ColMinPrice,
}

// ProviderKeys returns the provider column names in table order.
func ProviderKeys() []string {
	keys := make([]string, len(Columns))
	for i, c := range Columns {
		keys[i] = c.Key
	}
	return keys
}

// DisplayNames maps provider column names to dashboard labels.
func DisplayNames() map[string]string {
	names := make(map[string]string, len(Columns))
	for _, c := range Columns {
		names[c.Key] = c.Label
	}
	return names
}
