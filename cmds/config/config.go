package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/thechriswalker/go-belenios/crypto/elgamal"
)

const (
	envPrefix       = "BELENIOS"
	configName      = "belenios"
	defaultLogLevel = "info"
)

// Config holds the settings shared by every command. Each can come from
// a flag, a BELENIOS_ environment variable or a belenios.{yaml,toml,json}
// file in the election directory, in that order of precedence.
type Config struct {
	Dir      string `mapstructure:"dir"`
	LogLevel string `mapstructure:"log-level"`
	Workers  int    `mapstructure:"workers"`
	Group    string `mapstructure:"group"` // file with {g,p,q} relative to Dir, empty for the default group
}

var v = viper.New()

// Bind adds the persistent flags to the root command.
func Bind(rootCmd *cobra.Command) {
	bindFlags(rootCmd.PersistentFlags())
}

func bindFlags(flags *pflag.FlagSet) {
	flags.String("dir", ".", "directory holding the election files")
	flags.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.Int("workers", runtime.NumCPU(), "number of parallel workers for verification and tallying")
	flags.String("group", "", "file with the group parameters, the 2048 bit Belenios group if empty")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		// only fails for a nil flag set
		panic(err)
	}
}

// Load resolves the configuration. Call it once flags are parsed.
func Load() (*Config, error) {
	v.SetConfigName(configName)
	v.AddConfigPath(v.GetString("dir"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if os.Getenv("DEBUG") != "" {
		cfg.LogLevel = "debug"
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	return cfg, nil
}

// MustLoad is Load for command handlers, which have nowhere to return to.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		Fatal(err, "Could not load configuration")
	}
	return cfg
}

// Path is a file inside the election directory.
func (c *Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Dir, name)
}

// LoadGroup returns the configured group.
func (c *Config) LoadGroup() (*elgamal.Group, error) {
	if c.Group == "" {
		return elgamal.Belenios2048(), nil
	}
	grp := new(elgamal.Group)
	if err := ReadJSON(c.Path(c.Group), grp); err != nil {
		return nil, err
	}
	if err := grp.Validate(); err != nil {
		return nil, err
	}
	return grp, nil
}
