// Package config loads application configuration from file, environment and
// defaults, and initialises the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultDependentVariables is the candidate outcome list regressed on the
// exporter dummy.
var DefaultDependentVariables = []string{
	"Current_Total_Employment",
	"Current_Total_Annual_Sales",
	"Value_Added_per_Worker",
	"tfp_lp",
	"Wage per Worker",
	"Capital_per_Worker",
	"Skill_Per_Worker",
	"min_distance_to_GQ",
	"distance_to_Delhi_Meerut",
	"distance_to_WDFC",
	"distance_to_EDFC",
}

// Config holds the full application configuration.
type Config struct {
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Proximity  ProximityConfig  `yaml:"proximity" mapstructure:"proximity"`
	Regression RegressionConfig `yaml:"regression" mapstructure:"regression"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// InputConfig names the structural columns of the firm table and how to
// decode it.
type InputConfig struct {
	LatitudeColumn   string `yaml:"latitude_column" mapstructure:"latitude_column"`
	LongitudeColumn  string `yaml:"longitude_column" mapstructure:"longitude_column"`
	ExporterColumn   string `yaml:"exporter_column" mapstructure:"exporter_column"`
	IndustryColumn   string `yaml:"industry_column" mapstructure:"industry_column"`
	EmploymentColumn string `yaml:"employment_column" mapstructure:"employment_column"`
	ActivityColumn   string `yaml:"activity_column" mapstructure:"activity_column"`
	Charset          string `yaml:"charset" mapstructure:"charset"`
	Sheet            string `yaml:"sheet" mapstructure:"sheet"`
}

// ProximityConfig configures the proximity engine.
type ProximityConfig struct {
	// ReferenceFile overrides the built-in reference sets (.yaml, .geojson,
	// .shp or a zipped shapefile). Empty uses the built-in sets.
	ReferenceFile string `yaml:"reference_file" mapstructure:"reference_file"`
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
}

// RegressionConfig configures the regression battery.
type RegressionConfig struct {
	DependentVariables []string `yaml:"dependent_variables" mapstructure:"dependent_variables"`
	LogFloor           float64  `yaml:"log_floor" mapstructure:"log_floor"`
	// FillMissingWithFloor floors missing outcome and employment values to
	// LogFloor instead of dropping the row.
	FillMissingWithFloor bool `yaml:"fill_missing_with_floor" mapstructure:"fill_missing_with_floor"`
	Concurrency          int  `yaml:"concurrency" mapstructure:"concurrency"`
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
	v.SetEnvPrefix("EXPORTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input.latitude_column", "Latitude")
	v.SetDefault("input.longitude_column", "Longitude")
	v.SetDefault("input.exporter_column", "Export_Dummy")
	v.SetDefault("input.industry_column", "NIC Classification Code")
	v.SetDefault("input.employment_column", "Current_Total_Employment")
	v.SetDefault("input.activity_column", "Main Manufacturing Activity")
	v.SetDefault("input.charset", "utf-8")
	v.SetDefault("input.sheet", "")
	v.SetDefault("proximity.reference_file", "")
	v.SetDefault("proximity.concurrency", 8)
	v.SetDefault("regression.dependent_variables", DefaultDependentVariables)
	v.SetDefault("regression.log_floor", 1e-10)
	v.SetDefault("regression.fill_missing_with_floor", false)
	v.SetDefault("regression.concurrency", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

// Validate checks that the fields required by the given command mode are
// set and in range. Modes: proximity, regress, run, classify.
func (c *Config) Validate(mode string) error {
	var errs []string

	needProximity := false
	needRegression := false
	switch mode {
	case "proximity":
		needProximity = true
	case "regress":
		needRegression = true
	case "run":
		needProximity = true
		needRegression = true
	case "classify":
		if c.Input.ActivityColumn == "" {
			errs = append(errs, "input.activity_column is required")
		}
		if c.Input.IndustryColumn == "" {
			errs = append(errs, "input.industry_column is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needProximity {
		if c.Input.LatitudeColumn == "" || c.Input.LongitudeColumn == "" {
			errs = append(errs, "input.latitude_column and input.longitude_column are required")
		}
		if c.Proximity.Concurrency < 1 || c.Proximity.Concurrency > 64 {
			errs = append(errs, "proximity.concurrency must be between 1 and 64")
		}
	}

	if needRegression {
		if c.Input.ExporterColumn == "" {
			errs = append(errs, "input.exporter_column is required")
		}
		if len(c.Regression.DependentVariables) == 0 {
			errs = append(errs, "regression.dependent_variables must not be empty")
		}
		if c.Regression.LogFloor <= 0 {
			errs = append(errs, "regression.log_floor must be > 0")
		}
		if c.Regression.Concurrency < 1 || c.Regression.Concurrency > 64 {
			errs = append(errs, "regression.concurrency must be between 1 and 64")
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("config validation failed: %s", strings.Join(errs, "; "))
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
