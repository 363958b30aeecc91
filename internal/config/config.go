// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Layers  LayersConfig  `yaml:"layers" mapstructure:"layers"`
	Compile CompileConfig `yaml:"compile" mapstructure:"compile"`
	Permits PermitsConfig `yaml:"permits" mapstructure:"permits"`
	Sink    SinkConfig    `yaml:"sink" mapstructure:"sink"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// LayerConfig locates one spatial input. Path points at a local file;
// URL, when set, is downloaded to the temp dir first. Format is
// "geojson" or "shapefile".
type LayerConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	URL    string `yaml:"url" mapstructure:"url"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LayersConfig names the five spatial inputs. LandArea is required;
// the rest are optional and degrade to empty columns when absent.
type LayersConfig struct {
	LandArea     LayerConfig `yaml:"land_area" mapstructure:"land_area"`
	Liquefaction LayerConfig `yaml:"liquefaction" mapstructure:"liquefaction"`
	Slide        LayerConfig `yaml:"slide" mapstructure:"slide"`
	URM          LayerConfig `yaml:"urm" mapstructure:"urm"`
	Census       LayerConfig `yaml:"census" mapstructure:"census"`
}

// CompileConfig sets the join keys and flags used during aggregation.
type CompileConfig struct {
	AreaKey  string `yaml:"area_key" mapstructure:"area_key"`
	AliasKey string `yaml:"alias_key" mapstructure:"alias_key"`
	WaterKey string `yaml:"water_key" mapstructure:"water_key"`
}

// PermitsConfig locates the building-permit export.
type PermitsConfig struct {
	Path   string `yaml:"path" mapstructure:"path"`
	URL    string `yaml:"url" mapstructure:"url"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SinkConfig selects the output destination.
type SinkConfig struct {
	Format      string `yaml:"format" mapstructure:"format"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// StoreConfig configures the run-log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FetchConfig configures remote layer downloads.
type FetchConfig struct {
	TempDir     string  `yaml:"temp_dir" mapstructure:"temp_dir"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
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
	v.SetEnvPrefix("CRARISK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("layers.land_area.format", "geojson")
	v.SetDefault("layers.liquefaction.format", "geojson")
	v.SetDefault("layers.slide.format", "geojson")
	v.SetDefault("layers.urm.format", "geojson")
	v.SetDefault("layers.census.format", "geojson")
	v.SetDefault("compile.area_key", "CRA_NO")
	v.SetDefault("compile.alias_key", "GEN_ALIAS")
	v.SetDefault("compile.water_key", "WATER")
	v.SetDefault("permits.format", "csv")
	v.SetDefault("sink.format", "csv")
	v.SetDefault("sink.path", "area_stats.csv")
	v.SetDefault("store.path", "crarisk.db")
	v.SetDefault("fetch.temp_dir", os.TempDir())
	v.SetDefault("fetch.rate_limit", 5)
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// WriteDefault writes a starter config file with the default values.
// It refuses to clobber an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return eris.Errorf("config: %s already exists", path)
	}

	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return eris.Wrap(err, "config: unmarshal defaults")
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal defaults")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "config: write %s", path)
	}
	return nil
}

// Validate checks the configuration for the given mode before any work
// starts. Modes: "compile" (full run), "permits" (standalone cleaner).
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "compile":
		if c.Layers.LandArea.Path == "" && c.Layers.LandArea.URL == "" {
			problems = append(problems, "layers.land_area.path or url is required")
		}
		if c.Compile.AreaKey == "" {
			problems = append(problems, "compile.area_key is required")
		}
		switch c.Sink.Format {
		case "csv", "json", "xlsx", "sqlite":
			if c.Sink.Path == "" {
				problems = append(problems, "sink.path is required for file sinks")
			}
		case "postgres":
			if c.Sink.DatabaseURL == "" {
				problems = append(problems, "sink.database_url is required for the postgres sink")
			}
		default:
			problems = append(problems, "sink.format must be one of csv, json, xlsx, sqlite, postgres")
		}
	case "permits":
		if c.Permits.Path == "" && c.Permits.URL == "" {
			problems = append(problems, "permits.path or url is required")
		}
		if c.Permits.Format != "csv" && c.Permits.Format != "json" {
			problems = append(problems, "permits.format must be csv or json")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Fetch.RateLimit < 0 {
		problems = append(problems, "fetch.rate_limit must be >= 0")
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
