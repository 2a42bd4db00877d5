package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/papercomputeco/askstream/pkg/dotdir"
)

// EnvPrefix prefixes environment overrides, e.g. ASKSTREAM_CLIENT_ENDPOINT.
const EnvPrefix = "ASKSTREAM"

// InitViper returns a *viper.Viper layered as, lowest first: defaults from
// NewDefaultConfig, config.toml in the resolved .askstream/ directory,
// ASKSTREAM_* environment variables, and finally any flags bound through
// BindRegisteredFlags.
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	d := NewDefaultConfig()
	v.SetDefault("version", d.Version)
	for _, k := range configKeys {
		v.SetDefault(k.name, k.get(d))
	}

	dir, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	if dir != "" {
		v.AddConfigPath(dir)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// GetList reads a list key whether it came from a TOML array or a
// comma-separated env var or flag value.
func GetList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		out = append(out, SplitList(item)...)
	}
	return out
}
