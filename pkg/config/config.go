package config

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/askstream/pkg/dotdir"
)

const (
	configFile = "config.toml"

	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// Configer reads and writes config.toml inside a resolved .askstream/
// directory.
type Configer struct {
	targetPath string
}

// NewConfiger resolves the .askstream/ directory (override first) and
// prepares access to its config.toml, which need not exist yet.
func NewConfiger(override string) (*Configer, error) {
	dir, err := dotdir.NewManager().Target(override)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return &Configer{}, nil
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return &Configer{targetPath: path}, nil
}

// ValidConfigKeys returns every supported key in TOML section order.
func ValidConfigKeys() []string {
	names := make([]string, len(configKeys))
	for i, k := range configKeys {
		names[i] = k.name
	}
	return names
}

// IsValidConfigKey reports whether key is a supported configuration key.
func IsValidConfigKey(key string) bool {
	_, ok := lookupKey(key)
	return ok
}

// GetTarget returns the config file path, empty when no directory resolved.
func (c *Configer) GetTarget() string {
	return c.targetPath
}

// Dir returns the directory holding the config file, empty when none was
// resolved.
func (c *Configer) Dir() string {
	if c.targetPath == "" {
		return ""
	}
	return filepath.Dir(c.targetPath)
}

// LoadConfig returns the stored configuration merged over NewDefaultConfig.
// A missing file yields the defaults.
func (c *Configer) LoadConfig() (*Config, error) {
	if c.targetPath == "" {
		return NewDefaultConfig(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return NewDefaultConfig(), nil
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := ParseConfigTOML(data)
	if err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills zero-value fields in cfg from NewDefaultConfig.
func applyDefaults(cfg *Config) {
	d := NewDefaultConfig()

	cfg.Version = cmp.Or(cfg.Version, d.Version)
	cfg.Client.Endpoint = cmp.Or(cfg.Client.Endpoint, d.Client.Endpoint)
	cfg.Client.Timeout = cmp.Or(cfg.Client.Timeout, d.Client.Timeout)
	cfg.Storage.SQLitePath = cmp.Or(cfg.Storage.SQLitePath, d.Storage.SQLitePath)
	cfg.Mock.Listen = cmp.Or(cfg.Mock.Listen, d.Mock.Listen)
	cfg.Mock.ReplayPath = cmp.Or(cfg.Mock.ReplayPath, d.Mock.ReplayPath)
	cfg.EventStream.KafkaTopic = cmp.Or(cfg.EventStream.KafkaTopic, d.EventStream.KafkaTopic)
	if len(cfg.EventStream.KafkaBrokers) == 0 {
		cfg.EventStream.KafkaBrokers = d.EventStream.KafkaBrokers
	}
}

// SaveConfig writes cfg to config.toml, replacing any previous content.
func (c *Configer) SaveConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("cannot save nil config")
	}
	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// SetConfigValue validates value and stores it under key.
func (c *Configer) SetConfigValue(key, value string) error {
	k, ok := lookupKey(key)
	if !ok {
		return unknownKeyError(key)
	}
	return c.update(func(cfg *Config) error {
		return k.set(cfg, value)
	})
}

// UnsetConfigValue resets key to its default value.
func (c *Configer) UnsetConfigValue(key string) error {
	k, ok := lookupKey(key)
	if !ok {
		return unknownKeyError(key)
	}
	return c.update(func(cfg *Config) error {
		return k.set(cfg, k.get(NewDefaultConfig()))
	})
}

// GetConfigValue returns the string form of key, falling back to its default.
func (c *Configer) GetConfigValue(key string) (string, error) {
	k, ok := lookupKey(key)
	if !ok {
		return "", unknownKeyError(key)
	}

	cfg, err := c.LoadConfig()
	if err != nil {
		return "", err
	}
	return k.get(cfg), nil
}

// KeyValue is one key with the string form of its current value.
type KeyValue struct {
	Key   string
	Value string
}

// ListConfigValues returns every key with its current value, in
// ValidConfigKeys order.
func (c *Configer) ListConfigValues() ([]KeyValue, error) {
	cfg, err := c.LoadConfig()
	if err != nil {
		return nil, err
	}

	out := make([]KeyValue, len(configKeys))
	for i, k := range configKeys {
		out[i] = KeyValue{Key: k.name, Value: k.get(cfg)}
	}
	return out, nil
}

// update loads the config, applies fn and saves the result.
func (c *Configer) update(fn func(cfg *Config) error) error {
	cfg, err := c.LoadConfig()
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return c.SaveConfig(cfg)
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %q", key)
}

// ParseConfigTOML decodes raw TOML into a Config. It rejects versions other
// than CurrentV and timeouts that are not Go durations.
func ParseConfigTOML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config TOML: %w", err)
	}

	if cfg.Version != 0 && cfg.Version != CurrentV {
		return nil, fmt.Errorf("unsupported config version %d (expected %d)", cfg.Version, CurrentV)
	}
	if _, err := cfg.Client.TimeoutDuration(); err != nil {
		return nil, fmt.Errorf("invalid client.timeout: %w", err)
	}
	return cfg, nil
}
