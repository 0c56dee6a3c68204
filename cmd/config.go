package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds the database settings shared by the locate, load, reindex
// and sync commands.
type Config struct {
	DSN         string `yaml:"dsn"`
	Table       string `yaml:"table"`
	Dataset     string `yaml:"dataset"`
	Index       string `yaml:"index"`
	BusyTimeout int    `yaml:"busyTimeout"` // milliseconds
}

func defaultConfig() *Config {
	return &Config{
		DSN:         "seq.db",
		Table:       "seq_values",
		Dataset:     "default",
		Index:       "auto",
		BusyTimeout: 5000,
	}
}

// loadConfig reads path (when set) over the defaults, then applies any
// flags explicitly set on the command line.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: invalid %s: %w", path, err)
		}
	}
	override := func(name string, dest *string) {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*dest = f.Value.String()
		}
	}
	override("dsn", &cfg.DSN)
	override("table", &cfg.Table)
	override("dataset", &cfg.Dataset)
	override("index", &cfg.Index)
	if f := flags.Lookup("busy-timeout"); f != nil && f.Changed {
		v, err := flags.GetInt("busy-timeout")
		if err != nil {
			return nil, err
		}
		cfg.BusyTimeout = v
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch {
	case c.DSN == "":
		return fmt.Errorf("config: dsn is required")
	case c.Table == "":
		return fmt.Errorf("config: table is required")
	case c.Dataset == "":
		return fmt.Errorf("config: dataset is required")
	case !isIdentifier(c.Table):
		return fmt.Errorf("config: invalid table name %q", c.Table)
	}
	switch c.Index {
	case "auto", "brute", "sorted":
	default:
		return fmt.Errorf("config: unsupported index %q", c.Index)
	}
	return nil
}

func (c *Config) busyTimeout() time.Duration {
	return time.Duration(c.BusyTimeout) * time.Millisecond
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
