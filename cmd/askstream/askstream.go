// Package askstreamcmder
package askstreamcmder

import (
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/askstream/cmd/askstream/ask"
	configcmder "github.com/papercomputeco/askstream/cmd/askstream/config"
	historycmder "github.com/papercomputeco/askstream/cmd/askstream/history"
	servecmder "github.com/papercomputeco/askstream/cmd/askstream/serve"
	versioncmder "github.com/papercomputeco/askstream/cmd/version"
	"github.com/papercomputeco/askstream/pkg/logger"
)

const askstreamLongDesc string = `askstream asks questions to a streaming answer service and assembles the
streamed answer, its sources and related queries as they arrive.

Common commands:
  askstream ask "What is the capital of France?"   Stream an answer
  askstream serve                                  Run the local mock answer server
  askstream history                                List archived answers
  askstream config list                            Show configuration`

const askstreamShortDesc string = "askstream - streaming answer client"

func NewAskstreamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "askstream",
		Short:        askstreamShortDesc,
		Long:         askstreamLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .askstream/ config directory")
	cmd.PersistentFlags().String("log-format", string(logger.FormatPretty), "Log format: text, json or pretty")

	// Add subcommands
	cmd.AddCommand(askcmder.NewAskCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
