package config

import (
	"fmt"
	"os"

	"market-dashboard/src/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment override, e.g. DASHBOARD_PORT.
const EnvPrefix = "DASHBOARD"

// Default bar chart sizes
const (
	DefaultRatioTopN = 20
	DefaultValueTopN = 15
	DefaultRangeTopN = 15
	DefaultAssetTopN = 15
)

// -----------------------------------------------------------------------------

// Config wraps models.MConfig and provides business logic methods
type Config struct {
	*models.MConfig
}

// envOverrides are read from the process environment (and .env) after the YAML file.
type envOverrides struct {
	Host               string `envconfig:"HOST"`
	Port               int    `envconfig:"PORT"`
	LogLevel           string `envconfig:"LOG_LEVEL"`
	GrpcPort           int    `envconfig:"GRPC_PORT"`
	DefaultAssetClass  string `envconfig:"DEFAULT_ASSET_CLASS"`
	MarketMIC          string `envconfig:"MARKET_MIC"`
	DBType             string `envconfig:"DB_TYPE"`
	DBPath             string `envconfig:"DB_PATH"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING"`
	APIKey             string `envconfig:"API_KEY"`
}

var validate = validator.New()

// -----------------------------------------------------------------------------

// NewConfig creates a new Config instance from YAML file
func NewConfig(configPath string) (*Config, error) {
	// 1. .env is optional
	_ = godotenv.Load()

	// 2. Read the YAML file content
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", configPath, err)
	}

	// 3. Unmarshal data into the models struct
	var modelConfig models.MConfig
	if err := yaml.Unmarshal(data, &modelConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config from YAML: %w", err)
	}

	config := &Config{MConfig: &modelConfig}
	config.applyDefaults()

	// 4. Environment overrides
	if err := config.applyEnv(); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	// 5. Validate the loaded configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// -----------------------------------------------------------------------------

// Default returns a valid configuration serving stocks from a local CSV file.
func Default() *Config {
	c := &Config{MConfig: &models.MConfig{
		Name: "market-dashboard",
		DataSource: models.MDataSourceConfig{
			Sources: []models.MSourceConfig{
				{Name: "local-csv", Type: "csv", Path: "data/stocks.csv", AssetClasses: []string{"stocks"}},
			},
		},
	}}
	c.applyDefaults()
	return c
}

// -----------------------------------------------------------------------------

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8501
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.DefaultAssetClass == "" {
		c.DefaultAssetClass = "stocks"
	}
	if c.Market.MIC == "" {
		c.Market.MIC = "xnys"
	}
	if c.Storage.DBType == "" {
		c.Storage.DBType = "sqlite"
	}
	if c.Network.RequestTimeout == 0 {
		c.Network.RequestTimeout = 10
	}
	if c.Charts.RatioTopN == 0 {
		c.Charts.RatioTopN = DefaultRatioTopN
	}
	if c.Charts.ValueTopN == 0 {
		c.Charts.ValueTopN = DefaultValueTopN
	}
	if c.Charts.RangeTopN == 0 {
		c.Charts.RangeTopN = DefaultRangeTopN
	}
	if c.Charts.AssetTopN == 0 {
		c.Charts.AssetTopN = DefaultAssetTopN
	}
}

// -----------------------------------------------------------------------------

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}

	if env.Host != "" {
		c.Host = env.Host
	}
	if env.Port != 0 {
		c.Port = env.Port
	}
	if env.LogLevel != "" {
		c.LogLevel = env.LogLevel
	}
	if env.GrpcPort != 0 {
		c.GrpcPort = env.GrpcPort
	}
	if env.DefaultAssetClass != "" {
		c.DefaultAssetClass = env.DefaultAssetClass
	}
	if env.MarketMIC != "" {
		c.Market.MIC = env.MarketMIC
	}
	if env.DBType != "" {
		c.Storage.DBType = env.DBType
	}
	if env.DBPath != "" {
		c.Storage.DBPath = env.DBPath
	}
	if env.DBConnectionString != "" {
		c.Storage.DBConnectionString = env.DBConnectionString
	}
	if env.APIKey != "" {
		for i := range c.DataSource.Sources {
			if c.DataSource.Sources[i].Type == "http" && c.DataSource.Sources[i].APIKey == "" {
				c.DataSource.Sources[i].APIKey = env.APIKey
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Validate performs basic configuration validation
func (c *Config) Validate() error {
	// Struct tags first (ranges, enums, required fields)
	if err := validate.Struct(c.MConfig); err != nil {
		return err
	}

	// Validate Storage configuration
	if c.Storage.DBType == "postgres" && c.Storage.DBConnectionString == "" {
		return fmt.Errorf("database connection string cannot be empty for postgres")
	}

	// Validate DataSource configuration
	seen := make(map[string]bool)
	for i, src := range c.DataSource.Sources {
		if seen[src.Name] {
			return fmt.Errorf("source %d: duplicate name '%s'", i, src.Name)
		}
		seen[src.Name] = true

		switch src.Type {
		case "http":
			if src.URL == "" {
				return fmt.Errorf("source '%s' must have a url", src.Name)
			}
		case "csv":
			if src.Path == "" {
				return fmt.Errorf("source '%s' must have a path", src.Name)
			}
		case "sqlite":
			if c.Storage.DBPath == "" {
				return fmt.Errorf("source '%s' needs storage.db_path", src.Name)
			}
		case "postgres":
			if c.Storage.DBConnectionString == "" {
				return fmt.Errorf("source '%s' needs storage.db_connection_string", src.Name)
			}
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Save persists the current configuration to the specified YAML file path
func (c *Config) Save(configPath string) error {
	// 1. Marshal the struct to YAML
	data, err := yaml.Marshal(c.MConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// 2. Write to file (0644 permissions)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config to file '%s': %w", configPath, err)
	}

	return nil
}
