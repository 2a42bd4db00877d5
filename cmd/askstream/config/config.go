// Package configcmder provides the config command for managing persistent
// askstream configuration stored in the .askstream/ directory.
package configcmder

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askstream/pkg/cliui"
	"github.com/papercomputeco/askstream/pkg/config"
)

const configLongDesc string = `Manage persistent askstream configuration.

Configuration is stored as config.toml in the .askstream/ directory and
provides default values for command flags. Environment variables prefixed
with ASKSTREAM_ override the file, and CLI flags always take precedence.

Keys use dotted notation matching the TOML section structure:
  client.endpoint, client.timeout,
  storage.sqlite_path,
  mock.listen, mock.replay_path,
  eventstream.kafka_brokers, eventstream.kafka_topic

Subcommands:
  askstream config set <key> <value>    Store a value
  askstream config get <key>            Show the effective value
  askstream config unset <key>          Restore the default
  askstream config list                 Show every key

Examples:
  askstream config set client.endpoint https://answers.example.com/ask
  askstream config set eventstream.kafka_brokers localhost:9092
  askstream config unset client.timeout
  askstream config list`

const configShortDesc string = "Manage persistent askstream configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// openConfiger resolves the config file for cmd, honoring the root
// --config-dir flag when present.
func openConfiger(cmd *cobra.Command) (*config.Configer, error) {
	dir, _ := cmd.Flags().GetString("config-dir")
	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}

func checkKey(key string) error {
	if config.IsValidConfigKey(key) {
		return nil
	}
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

// completeKey offers config keys for the first positional argument.
func completeKey(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

func printTarget(w io.Writer, target string) {
	if target == "" {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No config file found. Using defaults."))
		return
	}
	fmt.Fprintf(w, "\n  %s %s\n\n", cliui.KeyStyle.Render("Config file:"), cliui.DimStyle.Render(target))
}

func printValue(w io.Writer, key, value string) {
	rendered := cliui.ValueStyle.Render(value)
	if value == "" {
		rendered = cliui.DimStyle.Render("<not set>")
	}
	fmt.Fprintf(w, "  %s  %s\n\n", cliui.KeyStyle.Render(key), rendered)
}
