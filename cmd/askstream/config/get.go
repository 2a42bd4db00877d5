package configcmder

import (
	"github.com/spf13/cobra"
)

const getLongDesc string = `Show the effective value of a configuration key.

Reads config.toml from the .askstream/ directory and falls back to the
built-in default when the key is not stored.

Examples:
  askstream config get client.endpoint
  askstream config get eventstream.kafka_topic`

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "get <key>",
		Short:             "Get a configuration value",
		Long:              getLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkKey(key); err != nil {
				return err
			}

			cfger, err := openConfiger(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTarget(w, cfger.GetTarget())

			value, err := cfger.GetConfigValue(key)
			if err != nil {
				return err
			}
			printValue(w, key, value)
			return nil
		},
	}
}
