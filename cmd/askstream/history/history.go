// Package historycmder provides the history command for browsing archived
// answers.
package historycmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/askstream/cmd/askstream/sqlitepath"
	"github.com/papercomputeco/askstream/pkg/archive"
	"github.com/papercomputeco/askstream/pkg/archive/sqlite"
	"github.com/papercomputeco/askstream/pkg/cliui"
	"github.com/papercomputeco/askstream/pkg/config"
	"github.com/papercomputeco/askstream/pkg/utils"
)

type historyCommander struct {
	sqlitePath string
	configDir  string
	limit      int
	jsonOutput bool
}

const historyLongDesc string = `List archived answers, newest first.

Answers are archived by "askstream ask" to the SQLite archive in the
.askstream/ directory, or to the path given with --sqlite.

Examples:
  askstream history
  askstream history --limit 50
  askstream history show <id>`

const historyShortDesc string = "List archived answers"

const previewLen = 60

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.runList(cmd.Context(), cmd.OutOrStdout())
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	cmd.Flags().IntVarP(&cmder.limit, "limit", "n", 10, "Number of answers to list (0 lists all)")
	cmd.PersistentFlags().BoolVar(&cmder.jsonOutput, "json", false, "Print records as JSON")

	cmd.AddCommand(newShowCmd(cmder))

	return cmd
}

func newShowCmd(cmder *historyCommander) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one archived answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.runShow(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)

	return cmd
}

// resolve applies config and environment values for flags left unset.
func (c *historyCommander) resolve(cmd *cobra.Command) error {
	c.configDir, _ = cmd.Flags().GetString("config-dir")
	v, err := config.InitViper(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagSQLite})
	c.sqlitePath = v.GetString("storage.sqlite_path")
	return nil
}

func (c *historyCommander) open(ctx context.Context) (*sqlite.Driver, error) {
	path, err := sqlitepath.ResolveExisting(c.sqlitePath, c.configDir)
	if err != nil {
		return nil, err
	}

	driver, err := sqlite.NewDriver(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	return driver, nil
}

func (c *historyCommander) runList(ctx context.Context, w io.Writer) error {
	driver, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	records, err := driver.List(ctx, c.limit)
	if err != nil {
		return fmt.Errorf("listing answers: %w", err)
	}

	if c.jsonOutput {
		return writeJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "%s\n", cliui.DimStyle.Render("No archived answers."))
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(w, "%s  %s  %s\n",
			cliui.HashStyle.Render(rec.ID),
			cliui.DimStyle.Render(rec.CreatedAt.Local().Format("2006-01-02 15:04")),
			cliui.KeyStyle.Render(oneLine(rec.Question)),
		)
		fmt.Fprintf(w, "    %s\n", utils.Truncate(oneLine(rec.Answer), previewLen))
	}
	return nil
}

func (c *historyCommander) runShow(ctx context.Context, w io.Writer, id string) error {
	driver, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer driver.Close()

	rec, err := driver.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("showing answer: %w", err)
	}

	if c.jsonOutput {
		return writeJSON(w, rec)
	}

	writeRecord(w, rec)
	return nil
}

func writeRecord(w io.Writer, rec *archive.Record) {
	fmt.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render("Question:"), rec.Question)
	fmt.Fprintf(w, "%s %s\n", cliui.KeyStyle.Render("Asked:"),
		cliui.DimStyle.Render(rec.CreatedAt.Local().Format("2006-01-02 15:04:05")))
	fmt.Fprintf(w, "%s %s\n\n", cliui.KeyStyle.Render("Endpoint:"), cliui.DimStyle.Render(rec.Endpoint))
	fmt.Fprintln(w, rec.Answer)

	cliui.WriteSources(w, rec.Sources)
	cliui.WriteRelatedQueries(w, rec.RelatedQueries)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
