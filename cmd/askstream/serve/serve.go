// Package servecmder provides the serve command running the local mock
// answer server.
package servecmder

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	apicmder "github.com/papercomputeco/askstream/cmd/askstream/serve/api"
	"github.com/papercomputeco/askstream/mock"
	"github.com/papercomputeco/askstream/pkg/config"
	"github.com/papercomputeco/askstream/pkg/logger"
)

type serveCommander struct {
	listen     string
	replayPath string
	delay      time.Duration
	chunkSize  int
	debug      bool
	logFormat  string

	logger *slog.Logger
}

const serveLongDesc string = `Run the local mock answer server.

The server answers POST /ask with a scripted event stream: growing answer
patches, a sources block, related queries and a final message. Pass --replay
with a stream recorded by "askstream ask --record" to serve it verbatim.

Run "askstream serve api" for the read-only archive API instead.

Examples:
  askstream serve
  askstream serve --listen :9000 --delay 100ms --chunk-size 7
  askstream serve --replay paris.sse`

const serveShortDesc string = "Run the local mock answer server"

var serveFlags = []string{
	config.FlagMockListen,
	config.FlagReplay,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlags)
			cmder.listen = v.GetString("mock.listen")
			cmder.replayPath = v.GetString("mock.replay_path")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFormat, _ = cmd.Flags().GetString("log-format")
			return cmder.run(cmd.Context(), cmd.ErrOrStderr())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagMockListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagReplay, &cmder.replayPath)
	cmd.Flags().DurationVar(&cmder.delay, "delay", 50*time.Millisecond, "Pause between frames")
	cmd.Flags().IntVar(&cmder.chunkSize, "chunk-size", 0, "Split writes into chunks of at most this many bytes (0 writes whole frames)")

	cmd.AddCommand(apicmder.NewAPICmd())

	return cmd
}

func (c *serveCommander) run(ctx context.Context, errOut io.Writer) error {
	format, err := logger.ParseFormat(cmp.Or(c.logFormat, string(logger.FormatPretty)))
	if err != nil {
		return err
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(format),
		logger.WithWriter(errOut),
	)

	srv, err := c.newServer()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- fmt.Errorf("mock server error: %w", err)
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		c.logger.Info("shutting down mock server")
		return srv.Shutdown()
	}
}

func (c *serveCommander) newServer() (*mock.Server, error) {
	srv, err := mock.NewServer(mock.Config{
		ListenAddr: c.listen,
		ReplayPath: c.replayPath,
		FrameDelay: c.delay,
		ChunkSize:  c.chunkSize,
	}, c.logger)
	if err != nil {
		return nil, fmt.Errorf("creating mock server: %w", err)
	}
	return srv, nil
}
