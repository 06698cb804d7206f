// Package config loads the formfill CLI configuration from flags and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ModeManual submits through the manual fill-out path.
	ModeManual = "manual"
	// ModeEsign submits through the e-sign initiation path.
	ModeEsign = "esign"

	// DefaultSchemaDir is where form schema files are looked up.
	DefaultSchemaDir = "./schemas"
	// DefaultActor is the signing party the session fills for.
	DefaultActor = "initiator"
)

// Config holds the formfill CLI configuration.
type Config struct {
	SchemaDir string // directory of .json/.yaml schema files
	Form      string // form name to open
	Actor     string // acting signing party
	Mode      string // submission mode: manual or esign
	StateFile string // optional autofill persistence file
	List      bool   // list available forms and exit
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		SchemaDir: DefaultSchemaDir,
		Actor:     DefaultActor,
		Mode:      ModeManual,
	}
}

// LoadFromFlags parses command line flags, applies FORMFILL_* environment
// overrides, and validates the result.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	if err := bindFlagsToViper(); err != nil {
		return nil, err
	}

	pflag.Parse()
	populateConfigFromViper(cfg)

	if cfg.SchemaDir != "" {
		if expanded, err := filepath.Abs(cfg.SchemaDir); err == nil {
			cfg.SchemaDir = expanded
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("FORMFILL")
	viper.AutomaticEnv()

	viper.SetDefault("schemas", cfg.SchemaDir)
	viper.SetDefault("form", cfg.Form)
	viper.SetDefault("actor", cfg.Actor)
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("state", cfg.StateFile)
	viper.SetDefault("list", cfg.List)
}

func defineCommandLineFlags(cfg *Config) {
	pflag.String("schemas", cfg.SchemaDir, "Directory containing form schema files (.json/.yaml)")
	pflag.String("form", cfg.Form, "Name of the form to fill")
	pflag.String("actor", cfg.Actor, "Signing party to fill the form as")
	pflag.String("mode", cfg.Mode, "Submission mode: 'manual' or 'esign'")
	pflag.String("state", cfg.StateFile, "Path of the autofill state file (omit to disable persistence)")
	pflag.Bool("list", cfg.List, "List available forms and exit")
}

func bindFlagsToViper() error {
	return viper.BindPFlags(pflag.CommandLine)
}

func populateConfigFromViper(cfg *Config) {
	cfg.SchemaDir = viper.GetString("schemas")
	cfg.Form = viper.GetString("form")
	cfg.Actor = viper.GetString("actor")
	cfg.Mode = viper.GetString("mode")
	cfg.StateFile = viper.GetString("state")
	cfg.List = viper.GetBool("list")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.SchemaDir == "" {
		return errors.New("schema directory is required")
	}
	switch c.Mode {
	case ModeManual, ModeEsign:
	default:
		return fmt.Errorf("unknown mode %q: must be %q or %q", c.Mode, ModeManual, ModeEsign)
	}
	if c.Actor == "" {
		return errors.New("actor is required")
	}
	if !c.List && c.Form == "" {
		return errors.New("form name is required unless --list is set")
	}
	return nil
}
