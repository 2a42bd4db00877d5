package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the persistent askstream configuration stored as
// config.toml in the .askstream/ directory. The TOML layout uses sections for
// logical grouping.
type Config struct {
	Version     int               `toml:"version"`
	Client      ClientConfig      `toml:"client"`
	Storage     StorageConfig     `toml:"storage"`
	Mock        MockConfig        `toml:"mock"`
	EventStream EventStreamConfig `toml:"eventstream"`
}

// ClientConfig holds settings for commands that ask questions.
type ClientConfig struct {
	// Endpoint is the full URL questions are posted to.
	Endpoint string `toml:"endpoint,omitempty"`

	// Timeout bounds the wait for response headers, as a Go duration.
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c ClientConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Timeout)
}

// StorageConfig holds answer archive settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path,omitempty"`
}

// MockConfig holds settings of the local mock answer server.
type MockConfig struct {
	Listen     string `toml:"listen,omitempty"`
	ReplayPath string `toml:"replay_path,omitempty"`
}

// EventStreamConfig holds answer event publishing settings. Publishing is
// disabled while no brokers are configured.
type EventStreamConfig struct {
	KafkaBrokers []string `toml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `toml:"kafka_topic,omitempty"`
}

// configKey binds a user-facing dotted key name to a getter and setter on
// *Config. Setters validate their input.
type configKey struct {
	name string
	get  func(c *Config) string
	set  func(c *Config, v string) error
}

func stringKey(name string, field func(c *Config) *string) configKey {
	return configKey{
		name: name,
		get:  func(c *Config) string { return *field(c) },
		set:  func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// configKeys lists every supported key in TOML section order.
var configKeys = []configKey{
	stringKey("client.endpoint", func(c *Config) *string { return &c.Client.Endpoint }),
	{
		name: "client.timeout",
		get:  func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			c.Client.Timeout = v
			return nil
		},
	},
	stringKey("storage.sqlite_path", func(c *Config) *string { return &c.Storage.SQLitePath }),
	stringKey("mock.listen", func(c *Config) *string { return &c.Mock.Listen }),
	stringKey("mock.replay_path", func(c *Config) *string { return &c.Mock.ReplayPath }),
	{
		name: "eventstream.kafka_brokers",
		get:  func(c *Config) string { return strings.Join(c.EventStream.KafkaBrokers, ",") },
		set:  func(c *Config, v string) error { c.EventStream.KafkaBrokers = SplitList(v); return nil },
	},
	stringKey("eventstream.kafka_topic", func(c *Config) *string { return &c.EventStream.KafkaTopic }),
}

func lookupKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}

// SplitList splits a comma-separated list, dropping blank entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
