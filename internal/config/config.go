package config

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jobpulse/ingest-cli/internal/pipeline"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig   `yaml:"data" mapstructure:"data"`
	Crawlers []string     `yaml:"crawlers" mapstructure:"crawlers"`
	Store    StoreConfig  `yaml:"store" mapstructure:"store"`
	Server   ServerConfig `yaml:"server" mapstructure:"server"`
	Log      LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the data, reference, and working directories.
type DataConfig struct {
	Root         string `yaml:"root" mapstructure:"root"`
	Extracted    string `yaml:"extracted" mapstructure:"extracted"`
	Mapped       string `yaml:"mapped" mapstructure:"mapped"`
	Normalized   string `yaml:"normalized" mapstructure:"normalized"`
	Enriched     string `yaml:"enriched" mapstructure:"enriched"`
	Standardized string `yaml:"standardized" mapstructure:"standardized"`
	Reference    string `yaml:"reference" mapstructure:"reference"`
	Plans        string `yaml:"plans" mapstructure:"plans"`
	Audit        string `yaml:"audit" mapstructure:"audit"`
	SchemaFile   string `yaml:"schema_file" mapstructure:"schema_file"`
}

// Dirs resolves the stage directories relative to the data root.
func (d DataConfig) Dirs() pipeline.Dirs {
	return pipeline.Dirs{
		Extracted:    d.resolve(d.Extracted),
		Mapped:       d.resolve(d.Mapped),
		Normalized:   d.resolve(d.Normalized),
		Enriched:     d.resolve(d.Enriched),
		Standardized: d.resolve(d.Standardized),
	}
}

// ReferenceDir resolves the reference-table directory.
func (d DataConfig) ReferenceDir() string { return d.resolve(d.Reference) }

// PlansDir resolves the mapping-plans directory.
func (d DataConfig) PlansDir() string { return d.resolve(d.Plans) }

// AuditDir resolves the audit-report directory.
func (d DataConfig) AuditDir() string { return d.resolve(d.Audit) }

func (d DataConfig) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.Root, p)
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.root", "data")
	v.SetDefault("data.extracted", "s2.0_data_extracted")
	v.SetDefault("data.mapped", "s2.1_data_mapped")
	v.SetDefault("data.normalized", "s2.2_data_normalized")
	v.SetDefault("data.enriched", "s2.3_data_enriched")
	v.SetDefault("data.standardized", "s2.4_data_role_standardized")
	v.SetDefault("data.reference", "reference")
	v.SetDefault("data.plans", "plans")
	v.SetDefault("data.audit", "audit")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "ingest.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
