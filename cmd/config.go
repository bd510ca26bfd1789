package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xbt573/flup/internal/database"
)

type Config struct {
	Listen   string   `mapstructure:"listen"`
	Testing  bool     `mapstructure:"testing"`
	Gops     bool     `mapstructure:"gops"`
	Database Database `mapstructure:"database"`
	Limits   Limits   `mapstructure:"limits"`
}

type Limits struct {
	BodyLimit uint `mapstructure:"bodylimit"`
}

type Database struct {
	Type database.Type `mapstructure:"type"`
	URI  string        `mapstructure:"uri"`
}

const (
	envPrefix = "flup"

	// settingsEnv names a config file applied on top of flags and --config.
	settingsEnv = "FLUP_SETTINGS"

	defaultListen    = "127.0.0.1:5000"
	defaultURI       = "flup.db"
	defaultBodyLimit = 200 * 1024 * 1024
)

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"listen":    "listen",
	"testing":   "testing",
	"gops":      "gops",
	"type":      "database.type",
	"uri":       "database.uri",
	"bodylimit": "limits.bodylimit",
}

// loadConfig resolves the configuration. Each layer overrides the previous
// one key by key: built-in defaults, the file passed with --config, the
// caller's overrides, the file named by $FLUP_SETTINGS, FLUP_* variables.
func loadConfig(configFile string, overrides map[string]any) (Config, error) {
	v := viper.New()

	v.SetDefault("listen", defaultListen)
	v.SetDefault("testing", false)
	v.SetDefault("gops", false)
	v.SetDefault("database.type", string(database.SQLite))
	v.SetDefault("database.uri", defaultURI)
	v.SetDefault("limits.bodylimit", defaultBodyLimit)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("could not read config file %q: %w", configFile, err)
		}
	}

	if err := v.MergeConfigMap(overrides); err != nil {
		return Config{}, err
	}

	if path := os.Getenv(settingsEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("could not read %v file %q: %w", settingsEnv, path, err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return Config{}, err
	}

	switch config.Database.Type {
	case database.SQLite, database.PostgreSQL, database.Bolt:
	default:
		return Config{}, fmt.Errorf("unknown database type: %v", config.Database.Type)
	}

	return config, nil
}

// flagOverrides collects the flags set on the command line as a nested map
// suitable for viper.MergeConfigMap.
func flagOverrides(flags *pflag.FlagSet) map[string]any {
	overrides := make(map[string]any)

	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return
		}

		m := overrides
		path := strings.Split(key, ".")
		for _, p := range path[:len(path)-1] {
			next, ok := m[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				m[p] = next
			}
			m = next
		}
		m[path[len(path)-1]] = f.Value.String()
	})

	return overrides
}
