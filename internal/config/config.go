// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/mortgagepulse/refinance-engine/pkg/constants"
	"github.com/mortgagepulse/refinance-engine/pkg/rates"
	"github.com/mortgagepulse/refinance-engine/pkg/scenarios"
)

// Configuration holds all configuration for the refinance engine. Every
// section has working defaults, so an empty file is a valid configuration.
type Configuration struct {
	Rates    rates.RateParameters `yaml:"rates"`
	Scenario scenarios.Options    `yaml:"scenario"`
	Logging  LoggingConfig        `yaml:"logging,omitempty"`
	Server   ServerConfig         `yaml:"server,omitempty"`
	Storage  StorageConfig        `yaml:"storage,omitempty"`
	Schedule ScheduleConfig       `yaml:"schedule,omitempty"`
	Output   OutputConfig         `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// ServerConfig holds the HTTP API runtime parameters.
type ServerConfig struct {
	Address        string `yaml:"address,omitempty"`
	MaxRequestSize int64  `yaml:"maxRequestSize,omitempty"` // bytes
}

// StorageConfig holds the optional submission store and response cache
// locations. Empty values disable the respective backend.
type StorageConfig struct {
	SQLitePath string `yaml:"sqlitePath,omitempty"`
	RedisAddr  string `yaml:"redisAddr,omitempty"`
}

// ScheduleConfig holds the cron spec for periodic rate table reloads.
// Empty disables reloading.
type ScheduleConfig struct {
	RatesReloadCron string `yaml:"ratesReloadCron,omitempty"`
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

func defaults() Configuration {
	return Configuration{
		Rates:    rates.DefaultParameters(),
		Scenario: scenarios.DefaultOptions(),
		Server: ServerConfig{
			Address:        constants.DefaultServerAddress,
			MaxRequestSize: constants.DefaultMaxRequestSizeBytes,
		},
	}
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there, applying defaults for any omitted section.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return unmarshal(v)
}

// LoadConfigurationFromReader loads a YAML configuration from an in-memory
// source, e.g. an uploaded document.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Configuration, error) {
	configuration := defaults()
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if configuration.Server.Address == "" {
		configuration.Server.Address = constants.DefaultServerAddress
	}
	if configuration.Server.MaxRequestSize <= 0 {
		configuration.Server.MaxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	return &configuration, nil
}

// Validate checks the rate table invariants and reports the first problem.
func (conf *Configuration) Validate() error {
	if err := conf.Rates.Validate(); err != nil {
		return err
	}
	if conf.Scenario.MinTermYears < 0 || conf.Scenario.DefaultMaxTermYears < 0 {
		return fmt.Errorf("scenario term bounds must not be negative")
	}
	if conf.Scenario.AffordabilityMultiplier < 0 || conf.Scenario.MinMonthlyReduction < 0 {
		return fmt.Errorf("scenario thresholds must not be negative")
	}
	return nil
}
