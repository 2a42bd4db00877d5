package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag describes one CLI flag backed by a config key. Commands that share a
// flag, such as --sqlite on ask and history, register it from the same entry.
type Flag struct {
	Name      string
	Shorthand string

	// ViperKey is the dotted config key the flag overrides.
	ViperKey string

	Description string
}

// FlagSet maps registry keys to flag definitions.
type FlagSet map[string]Flag

// Registry keys for Flags.
const (
	FlagEndpoint     = "endpoint"
	FlagTimeout      = "timeout"
	FlagSQLite       = "sqlite"
	FlagMockListen   = "listen"
	FlagReplay       = "replay"
	FlagKafkaBrokers = "kafka-brokers"
	FlagKafkaTopic   = "kafka-topic"
)

// Flags is the registry shared by every command.
var Flags = FlagSet{
	FlagEndpoint: {
		Name:        "endpoint",
		Shorthand:   "e",
		ViperKey:    "client.endpoint",
		Description: "Answer endpoint URL",
	},
	FlagTimeout: {
		Name:        "timeout",
		ViperKey:    "client.timeout",
		Description: "Maximum wait for response headers (e.g. 30s)",
	},
	FlagSQLite: {
		Name:        "sqlite",
		Shorthand:   "s",
		ViperKey:    "storage.sqlite_path",
		Description: "Path to the SQLite answer archive (defaults to answers.db in the config dir)",
	},
	FlagMockListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "mock.listen",
		Description: "Address for the mock server to listen on",
	},
	FlagReplay: {
		Name:        "replay",
		ViperKey:    "mock.replay_path",
		Description: "Recorded stream to replay instead of the scripted answer",
	},
	FlagKafkaBrokers: {
		Name:        "kafka-brokers",
		ViperKey:    "eventstream.kafka_brokers",
		Description: "Comma-separated Kafka brokers for answer events (empty disables publishing)",
	},
	FlagKafkaTopic: {
		Name:        "kafka-topic",
		ViperKey:    "eventstream.kafka_topic",
		Description: "Kafka topic for answer events",
	},
}

// AddStringFlag defines the registry flag key on cmd, bound to target. The
// flag default is the config default for its ViperKey. Unknown keys are
// ignored.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultValue(def.ViperKey), def.Description)
}

// BindRegisteredFlags hooks the named registry flags into v so that an
// explicitly set flag wins over env, file and default. Call it from PreRunE
// once InitViper has run. Keys missing from fs or cmd are skipped.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, key := range registryKeys {
		def, ok := fs[key]
		if !ok {
			continue
		}
		if f := cmd.Flags().Lookup(def.Name); f != nil {
			_ = v.BindPFlag(def.ViperKey, f)
		}
	}
}

func defaultValue(viperKey string) string {
	k, ok := lookupKey(viperKey)
	if !ok {
		return ""
	}
	return k.get(NewDefaultConfig())
}
