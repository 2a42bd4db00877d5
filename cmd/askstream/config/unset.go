package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askstream/pkg/cliui"
)

func newUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unset <key>",
		Short:             "Restore a configuration value to its default",
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

			if err := cfger.UnsetConfigValue(key); err != nil {
				return err
			}

			value, err := cfger.GetConfigValue(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  %s Reset %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(key))
			printValue(w, key, value)
			return nil
		},
	}
}
