// Package apicmder provides the archive API server command.
package apicmder

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askstream/api"
	"github.com/papercomputeco/askstream/cmd/askstream/sqlitepath"
	"github.com/papercomputeco/askstream/pkg/archive/sqlite"
	"github.com/papercomputeco/askstream/pkg/config"
	"github.com/papercomputeco/askstream/pkg/logger"
)

type apiCommander struct {
	listen     string
	sqlitePath string
	configDir  string
	debug      bool
	logFormat  string

	logger *slog.Logger
}

const apiLongDesc string = `Run the archive API server.

Serves archived answers read-only over HTTP:
  GET /v1/answers?limit=N   Newest answers first (limit=0 lists all)
  GET /v1/answers/:id       One answer by request id`

const apiShortDesc string = "Run the archive API server"

func NewAPICmd() *cobra.Command {
	cmder := &apiCommander{}

	cmd := &cobra.Command{
		Use:   "api",
		Short: apiShortDesc,
		Long:  apiLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagSQLite})
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFormat, _ = cmd.Flags().GetString("log-format")
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", api.DefaultListenAddr, "Address for the API server to listen on")
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)

	return cmd
}

func (c *apiCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := logger.ParseFormat(cmp.Or(c.logFormat, string(logger.FormatPretty)))
	if err != nil {
		return err
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(format),
		logger.WithWriter(os.Stderr),
	)

	path, err := sqlitepath.ResolveSQLitePath(c.sqlitePath, c.configDir)
	if err != nil {
		return err
	}

	driver, err := sqlite.NewDriver(ctx, path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer driver.Close()
	c.logger.Info("using SQLite archive", "path", path)

	srv := api.NewServer(api.Config{ListenAddr: c.listen}, driver, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return srv.Shutdown()
	}
}
