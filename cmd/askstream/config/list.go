package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List every configuration key with its effective value, reading
config.toml from the .askstream/ directory and falling back to defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfger, err := openConfiger(cmd)
			if err != nil {
				return err
			}

			values, err := cfger.ListConfigValues()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if target := cfger.GetTarget(); target != "" {
				fmt.Fprintf(w, "Using config file: %s\n\n", target)
			} else {
				fmt.Fprint(w, "No config file found. Using default config.\n\n")
			}

			width := 0
			for _, kv := range values {
				width = max(width, len(kv.Key))
			}
			for _, kv := range values {
				if kv.Value == "" {
					fmt.Fprintf(w, "%-*s = <not set>\n", width, kv.Key)
					continue
				}
				fmt.Fprintf(w, "%-*s = %q\n", width, kv.Key, kv.Value)
			}
			return nil
		},
	}
}
