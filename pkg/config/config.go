// Package config loads the study configuration: classification thresholds,
// power densities and the usage-share scenarios.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/timtroendle/possibility-for-electricity-autarky/internal/logging"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/potential"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/scenario"
)

// EnvPrefix prefixes environment variables overriding config keys, e.g.
// AUTARKY_PARAMETERS_MAX_SLOPE_PV.
const EnvPrefix = "AUTARKY"

// Config is the complete study configuration.
type Config struct {
	Parameters Parameters     `mapstructure:"parameters" yaml:"parameters"`
	Scenarios  scenario.Set   `mapstructure:"scenarios" yaml:"scenarios" validate:"required,min=1,dive"`
	Logging    logging.Config `mapstructure:"logging" yaml:"logging"`
	Workers    int            `mapstructure:"workers" yaml:"workers" validate:"gte=0"`
}

// Parameters are the technical parameters shared by all scenarios.
type Parameters struct {
	MaxSlope                MaxSlope                 `mapstructure:"max-slope" yaml:"max-slope"`
	MaxBuildingShare        float64                  `mapstructure:"max-building-share" yaml:"max-building-share" validate:"gte=0,lte=1"`
	MaxUrbanGreenShare      float64                  `mapstructure:"max-urban-green-share" yaml:"max-urban-green-share" validate:"gte=0,lte=1"`
	MaxDepthOffshore        float64                  `mapstructure:"max-depth-offshore" yaml:"max-depth-offshore" validate:"lte=0"`
	PowerDensity            potential.PowerDensities `mapstructure:"maximum-installable-power-density" yaml:"maximum-installable-power-density"`
	FlatRoofShare           float64                  `mapstructure:"flat-roof-share" yaml:"flat-roof-share" validate:"gte=0,lte=1"`
	RooftopCorrectionFactor float64                  `mapstructure:"rooftop-correction-factor" yaml:"rooftop-correction-factor" validate:"gte=0"`
	ContinentalUnitCode     string                   `mapstructure:"continental-unit-code" yaml:"continental-unit-code"`
}

// MaxSlope holds the maximum terrain slopes in degrees.
type MaxSlope struct {
	PV   float64 `mapstructure:"pv" yaml:"pv" validate:"gte=0,ltefield=Wind"`
	Wind float64 `mapstructure:"wind" yaml:"wind" validate:"gte=0,lte=90"`
}

// Thresholds returns the classification thresholds.
func (p Parameters) Thresholds() eligibility.Thresholds {
	return eligibility.Thresholds{
		MaxSlopePV:         p.MaxSlope.PV,
		MaxSlopeWind:       p.MaxSlope.Wind,
		MaxBuildingShare:   p.MaxBuildingShare,
		MaxUrbanGreenShare: p.MaxUrbanGreenShare,
		MaxDepthOffshore:   p.MaxDepthOffshore,
	}
}

// Scenario returns the named scenario.
func (c *Config) Scenario(name string) (scenario.Scenario, error) {
	return c.Scenarios.Get(name)
}

// Load reads configuration with the following priority and validates it:
// 1. Environment variables (AUTARKY_ prefix, .env is honoured)
// 2. Config file
// 3. Defaults
func Load(configPath string) (*Config, error) {
	cfg, err := Read(configPath)
	if err != nil {
		return nil, err
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read is Load without validation.
func Read(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("autarky")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads a YAML config file without defaults or environment
// overrides.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	return &cfg, nil
}

// Write encodes cfg as YAML.
func Write(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding config YAML: %w", err)
	}
	return enc.Close()
}
