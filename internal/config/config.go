package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
}

// PathsConfig holds the input directory and output file locations.
type PathsConfig struct {
	DataDir       string `yaml:"data_dir" mapstructure:"data_dir"`
	CountiesPNG   string `yaml:"counties_png" mapstructure:"counties_png"`
	PopulationPNG string `yaml:"population_png" mapstructure:"population_png"`
	ClippedCSV    string `yaml:"clipped_csv" mapstructure:"clipped_csv"`
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
	v.SetEnvPrefix("ICELAND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("paths.data_dir", "Iceland")
	v.SetDefault("paths.counties_png", "Iceland_counties.png")
	v.SetDefault("paths.population_png", "Iceland_population.png")
	v.SetDefault("paths.clipped_csv", "Iceland/Clipped.csv")

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

// Validate checks that every path the pipeline reads or writes is set.
func (c *Config) Validate() error {
	var missing []string
	if c.Paths.DataDir == "" {
		missing = append(missing, "paths.data_dir is required")
	}
	if c.Paths.CountiesPNG == "" {
		missing = append(missing, "paths.counties_png is required")
	}
	if c.Paths.PopulationPNG == "" {
		missing = append(missing, "paths.population_png is required")
	}
	if c.Paths.ClippedCSV == "" {
		missing = append(missing, "paths.clipped_csv is required")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: %s", strings.Join(missing, "; "))
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
