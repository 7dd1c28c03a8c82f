package models

// MConfig Structure
type MConfig struct {
	Name              string            `yaml:"name" validate:"required"`
	Host              string            `yaml:"host" validate:"required"`
	Port              int               `yaml:"port" validate:"gt=1024,lte=65535"`
	LogLevel          string            `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR debug info warning error"`
	GrpcHost          string            `yaml:"grpc_host"`
	GrpcPort          int               `yaml:"grpc_port" validate:"gte=0,lte=65535"`
	DefaultAssetClass string            `yaml:"default_asset_class" validate:"required"`
	Market            MMarketConfig     `yaml:"market"`
	Storage           MStorageConfig    `yaml:"storage"`
	Network           MNetworkConfig    `yaml:"network"`
	DataSource        MDataSourceConfig `yaml:"data_source"`
	Charts            MChartsConfig     `yaml:"charts"`
}

type MMarketConfig struct {
	// MIC code (ISO 10383) used for the trading session badge, e.g. "xnys".
	MIC string `yaml:"mic"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type" validate:"omitempty,oneof=sqlite postgres"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Proxies        []string `yaml:"proxies"`
	RequestTimeout int      `yaml:"timeout" validate:"gt=0"`
	MaxRetries     int      `yaml:"retries" validate:"gte=0"`
	UserAgent      string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	Sources []MSourceConfig `yaml:"sources" validate:"required,min=1,dive"`
}

type MSourceConfig struct {
	Name         string   `yaml:"name" validate:"required"`
	Type         string   `yaml:"type" validate:"required,oneof=http csv sqlite postgres"`
	URL          string   `yaml:"url"`
	Path         string   `yaml:"path"`
	APIKey       string   `yaml:"api_key"` // Optional
	AssetClasses []string `yaml:"asset_classes"`
}

// MChartsConfig holds the top-N sizes of the bar leaderboards.
type MChartsConfig struct {
	RatioTopN int `yaml:"ratio_top_n" validate:"gte=0"`
	ValueTopN int `yaml:"value_top_n" validate:"gte=0"`
	RangeTopN int `yaml:"range_top_n" validate:"gte=0"`
	AssetTopN int `yaml:"asset_top_n" validate:"gte=0"`
}
