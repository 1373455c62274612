// Package config loads server configuration from a file, environment
// variables and defaults, in that order of increasing precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the server.
type Config struct {
	Port     int    `mapstructure:"port"`
	DBPath   string `mapstructure:"db"`
	LogLevel string `mapstructure:"loglevel"`

	// AdminPassword is auto-generated at startup when empty.
	AdminPassword string `mapstructure:"adminpw"`

	// UpstreamURL is the national portal endpoint for result uploads.
	// Empty disables uploads.
	UpstreamURL string `mapstructure:"upstream-url"`

	// PublicURL is the externally reachable base URL encoded into
	// registration card QR codes.
	PublicURL string `mapstructure:"public-url"`

	// VarianceThreshold is the maximum allowed gap between two judges'
	// scores for the same section before arbitration is required.
	VarianceThreshold float64 `mapstructure:"variance-threshold"`

	// PointsByRank maps category ranks to championship points.
	PointsByRank map[int]float64 `mapstructure:"points-by-rank"`
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8081)
	v.SetDefault("db", "fairjudge.db")
	v.SetDefault("loglevel", "info")
	v.SetDefault("adminpw", "")
	v.SetDefault("upstream-url", "")
	v.SetDefault("public-url", "http://localhost:8081")
	v.SetDefault("variance-threshold", 5.0)
	v.SetDefault("points-by-rank", map[string]float64{"1": 10, "2": 8, "3": 6, "4": 4})
}

// Load reads configuration. When file is non-empty it must exist and
// parse; otherwise .fairjudge.yaml is searched for in the current and
// home directories and may be absent. Environment variables use the
// FAIRJUDGE_ prefix with dashes mapped to underscores.
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".fairjudge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix("FAIRJUDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.VarianceThreshold < 0 {
		return fmt.Errorf("variance threshold must not be negative")
	}
	for rank, pts := range c.PointsByRank {
		if rank < 1 {
			return fmt.Errorf("points table has invalid rank %d", rank)
		}
		if pts < 0 {
			return fmt.Errorf("points table has negative points for rank %d", rank)
		}
	}
	return nil
}
