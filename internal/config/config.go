// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/rebalance-simulator/pkg/constants"
	"github.com/iwvelando/rebalance-simulator/pkg/simulation"
	"github.com/iwvelando/rebalance-simulator/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the output
// date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for rebalance-simulator.
type Configuration struct {
	Simulation Simulation       `yaml:"simulation" mapstructure:"simulation"`
	Optimizer  *OptimizerConfig `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	Chart      ChartConfig      `yaml:"chart,omitempty" mapstructure:"chart"`
	Logging    LoggingConfig    `yaml:"logging,omitempty" mapstructure:"logging"`
	Output     OutputConfig     `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, markdown
}

// ChartConfig sizes the rendered projection.
type ChartConfig struct {
	Width  int    `yaml:"width,omitempty" mapstructure:"width"`
	Height int    `yaml:"height,omitempty" mapstructure:"height"`
	Format string `yaml:"format,omitempty" mapstructure:"format"` // png, svg
}

// Simulation holds the form inputs of one projection.
type Simulation struct {
	Name            string             `yaml:"name,omitempty" mapstructure:"name"`
	Principal       float64            `yaml:"principal" mapstructure:"principal"`
	Years           int                `yaml:"years" mapstructure:"years"`
	RebalanceMonths int                `yaml:"rebalanceMonths" mapstructure:"rebalanceMonths"`
	Contribution    float64            `yaml:"contribution" mapstructure:"contribution"`
	StartDate       string             `yaml:"startDate,omitempty" mapstructure:"startDate"`
	Assets          []simulation.Asset `yaml:"assets" mapstructure:"assets"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Default returns the configuration of a fresh form.
func Default() *Configuration {
	conf := FormDefaults()
	conf.ApplyDefaults()
	return conf
}

// FormDefaults returns a configuration holding only the numeric form defaults.
// Decoding a partial document on top of it keeps the defaults for absent keys
// and honours explicit zeros.
func FormDefaults() *Configuration {
	return &Configuration{
		Simulation: Simulation{
			Principal:       constants.DefaultPrincipal,
			Years:           constants.DefaultYears,
			RebalanceMonths: constants.DefaultRebalanceMonths,
		},
	}
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("REBALANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("simulation.principal", constants.DefaultPrincipal)
	v.SetDefault("simulation.years", constants.DefaultYears)
	v.SetDefault("simulation.rebalanceMonths", constants.DefaultRebalanceMonths)
	v.SetDefault("simulation.contribution", 0.0)
	v.SetDefault("chart.width", constants.DefaultChartWidth)
	v.SetDefault("chart.height", constants.DefaultChartHeight)
	v.SetDefault("chart.format", constants.ChartFormatPNG)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	configuration.ApplyDefaults()
	return &configuration, nil
}

// ApplyDefaults fills unset presentation settings and the default asset list.
// Numeric simulation inputs are left as configured.
func (c *Configuration) ApplyDefaults() {
	if len(c.Simulation.Assets) == 0 {
		c.Simulation.Assets = simulation.DefaultAssets()
	}
	c.Simulation.Assets = simulation.NormalizeAssets(c.Simulation.Assets)
	c.Simulation.Name = strings.TrimSpace(c.Simulation.Name)
	if c.Simulation.Name == "" {
		c.Simulation.Name = "Projection"
	}

	if c.Chart.Width <= 0 {
		c.Chart.Width = constants.DefaultChartWidth
	}
	if c.Chart.Height <= 0 {
		c.Chart.Height = constants.DefaultChartHeight
	}
	c.Chart.Format = strings.ToLower(strings.TrimSpace(c.Chart.Format))
	if c.Chart.Format == "" {
		c.Chart.Format = constants.ChartFormatPNG
	}
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
}

// ToInput converts the simulation settings into simulator input.
func (c *Configuration) ToInput() simulation.Input {
	assets := make([]simulation.Asset, len(c.Simulation.Assets))
	copy(assets, c.Simulation.Assets)
	return simulation.Input{
		Principal:                c.Simulation.Principal,
		Years:                    c.Simulation.Years,
		RebalanceMonths:          c.Simulation.RebalanceMonths,
		ContributionPerRebalance: c.Simulation.Contribution,
		Assets:                   assets,
	}
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	assets := make([]validation.AssetConfig, 0, len(c.Simulation.Assets))
	for _, asset := range c.Simulation.Assets {
		assets = append(assets, validation.AssetConfig{
			Name:                asset.Name,
			AnnualReturnPercent: asset.AnnualReturnPercent,
			TargetWeightPercent: asset.TargetWeightPercent,
		})
	}

	validator := validation.SimulationValidator{
		Principal:       c.Simulation.Principal,
		Years:           c.Simulation.Years,
		RebalanceMonths: c.Simulation.RebalanceMonths,
		Contribution:    c.Simulation.Contribution,
		StartDate:       c.Simulation.StartDate,
		Assets:          assets,
	}
	warnings := validator.ValidateAll()

	if err := validation.ValidateChartFormat(c.Chart.Format); err != nil {
		warnings = append(warnings, err.Error())
	}
	if c.Optimizer != nil {
		if err := c.Optimizer.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("optimizer: %v", err))
		}
	}
	return warnings
}
