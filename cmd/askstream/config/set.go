package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askstream/pkg/cliui"
)

const setLongDesc string = `Store a configuration value in config.toml.

The file lives in the .askstream/ directory and is created on first use.
List keys take a comma-separated value. client.timeout must be a Go
duration such as 30s or 2m.

Examples:
  askstream config set client.endpoint http://localhost:8088/ask
  askstream config set client.timeout 45s
  askstream config set eventstream.kafka_brokers broker1:9092,broker2:9092`

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Set a configuration value",
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := checkKey(key); err != nil {
				return err
			}

			cfger, err := openConfiger(cmd)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printTarget(w, cfger.GetTarget())

			if err := cfger.SetConfigValue(key, value); err != nil {
				return err
			}

			fmt.Fprintf(w, "  %s Set %s = %s\n\n",
				cliui.SuccessMark, cliui.KeyStyle.Render(key), cliui.ValueStyle.Render(value))
			return nil
		},
	}
}
