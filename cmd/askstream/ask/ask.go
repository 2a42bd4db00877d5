// Package askcmder provides the ask command: it streams one answer to the
// terminal and archives it once complete.
package askcmder

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/askstream/cmd/askstream/sqlitepath"
	"github.com/papercomputeco/askstream/pkg/archive/sqlite"
	"github.com/papercomputeco/askstream/pkg/archive/worker"
	"github.com/papercomputeco/askstream/pkg/client"
	"github.com/papercomputeco/askstream/pkg/cliui"
	"github.com/papercomputeco/askstream/pkg/config"
	"github.com/papercomputeco/askstream/pkg/eventstream"
	"github.com/papercomputeco/askstream/pkg/eventstream/kafka"
	"github.com/papercomputeco/askstream/pkg/eventstream/nop"
	"github.com/papercomputeco/askstream/pkg/logger"
	"github.com/papercomputeco/askstream/pkg/stream"
)

type askCommander struct {
	endpoint     string
	timeout      string
	sqlitePath   string
	kafkaBrokers []string
	kafkaTopic   string

	recordPath string
	logFile    string
	jsonOutput bool
	raw        bool
	noArchive  bool
	debug      bool
	logFormat  string
	configDir  string

	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

const askLongDesc string = `Ask a question and stream the answer.

The answer is printed as it grows. When stdout is a terminal the finished
answer is rendered as markdown instead, unless --raw is given. Sources and
related queries follow the answer.

Completed answers are archived to SQLite (answers.db in the .askstream/
directory unless --sqlite is given) and, when Kafka brokers are configured,
announced as answer.completed events.

Examples:
  askstream ask "What is the capital of France?"
  askstream ask --endpoint https://answers.example.com/ask "Why is the sky blue?"
  askstream ask --json "What is SSE?" | jq .sources
  askstream ask --record paris.sse "What is the capital of France?"`

const askShortDesc string = "Ask a question and stream the answer"

var askFlags = []string{
	config.FlagEndpoint,
	config.FlagTimeout,
	config.FlagSQLite,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	// Flag targets; the resolved values are read back through viper.
	var endpoint, timeout, sqlitePath, brokers, topic string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.Flags, askFlags)
			cmder.endpoint = v.GetString("client.endpoint")
			cmder.timeout = v.GetString("client.timeout")
			cmder.sqlitePath = v.GetString("storage.sqlite_path")
			cmder.kafkaBrokers = config.GetList(v, "eventstream.kafka_brokers")
			cmder.kafkaTopic = v.GetString("eventstream.kafka_topic")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.logFormat, _ = cmd.Flags().GetString("log-format")
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()

			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return errors.New("question must not be empty")
			}
			return cmder.run(cmd.Context(), question)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagEndpoint, &endpoint)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaBrokers, &brokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagKafkaTopic, &topic)
	cmd.Flags().StringVar(&cmder.recordPath, "record", "", "Write the raw event stream to this file")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON debug logs to this file")
	cmd.Flags().BoolVar(&cmder.jsonOutput, "json", false, "Print the completed response as JSON")
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer as it streams, even on a terminal")
	cmd.Flags().BoolVar(&cmder.noArchive, "no-archive", false, "Do not archive the answer")

	return cmd
}

func (c *askCommander) run(ctx context.Context, question string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	timeout, err := time.ParseDuration(c.timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.timeout, err)
	}

	cfg := client.Config{
		Endpoint: c.endpoint,
		Timeout:  timeout,
		Logger:   c.logger,
	}

	if c.recordPath != "" {
		f, err := os.Create(c.recordPath)
		if err != nil {
			return fmt.Errorf("creating record file: %w", err)
		}
		defer f.Close()
		cfg.Tee = f
	}

	cl, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	var pool *worker.Pool
	if !c.noArchive {
		var closePool func()
		pool, closePool, err = c.newPool(ctx)
		if err != nil {
			return err
		}
		defer closePool()
	}

	p := newPrinter(c.out, c.mode())
	startedAt := time.Now()

	handler := stream.HandlerFuncs{
		Chunk: p.chunk,
		Complete: func(resp *stream.Response) {
			p.response = resp
			if pool != nil {
				pool.Enqueue(worker.Job{
					Question:    question,
					Endpoint:    cl.Endpoint(),
					Response:    resp,
					StartedAt:   startedAt,
					CompletedAt: time.Now(),
				})
			}
		},
	}

	ask := func() error {
		return cl.Ask(ctx, question, handler)
	}
	if p.mode == modeRendered {
		err = cliui.Step(c.errOut, "Asking "+c.endpoint, ask)
	} else {
		err = ask()
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("ask canceled: %w", err)
		}
		return fmt.Errorf("asking %s: %w", c.endpoint, err)
	}

	return p.finish()
}

// setupLogger logs to stderr, plus a JSON log file when requested.
func (c *askCommander) setupLogger() (func(), error) {
	format, err := logger.ParseFormat(cmp.Or(c.logFormat, string(logger.FormatPretty)))
	if err != nil {
		return nil, err
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithFormat(format),
		logger.WithWriter(c.errOut),
	)

	if c.logFile == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	fileLogger := logger.New(
		logger.WithDebug(true),
		logger.WithFormat(logger.FormatJSON),
		logger.WithWriter(f),
	)
	c.logger = logger.Multi(c.logger, fileLogger)
	return func() { _ = f.Close() }, nil
}

// newPool opens the archive and the event publisher behind a worker pool.
// The returned func drains the pool and releases both.
func (c *askCommander) newPool(ctx context.Context) (*worker.Pool, func(), error) {
	path, err := sqlitepath.ResolveSQLitePath(c.sqlitePath, c.configDir)
	if err != nil {
		return nil, nil, err
	}

	driver, err := sqlite.NewDriver(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	c.logger.Debug("using SQLite archive", "path", path)

	publisher, err := c.newPublisher()
	if err != nil {
		_ = driver.Close()
		return nil, nil, err
	}

	pool, err := worker.NewPool(&worker.Config{
		Driver:    driver,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		_ = publisher.Close()
		_ = driver.Close()
		return nil, nil, fmt.Errorf("creating archive pool: %w", err)
	}

	return pool, func() {
		pool.Close()
		_ = publisher.Close()
		_ = driver.Close()
	}, nil
}

func (c *askCommander) newPublisher() (eventstream.Publisher, error) {
	if len(c.kafkaBrokers) == 0 {
		return nop.NewPublisher(), nil
	}

	publisher, err := kafka.NewPublisher(kafka.Config{
		Brokers: c.kafkaBrokers,
		Topic:   c.kafkaTopic,
		Logger:  c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating kafka publisher: %w", err)
	}
	c.logger.Debug("publishing answer events", "brokers", c.kafkaBrokers, "topic", c.kafkaTopic)
	return publisher, nil
}

func (c *askCommander) mode() outputMode {
	switch {
	case c.jsonOutput:
		return modeJSON
	case !c.raw && isTerminal(c.out):
		return modeRendered
	default:
		return modeLive
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type outputMode int

const (
	// modeLive prints the answer as it grows.
	modeLive outputMode = iota

	// modeRendered prints the finished answer as rendered markdown.
	modeRendered

	// modeJSON prints the finished response as JSON.
	modeJSON
)

// printer writes the answer according to its mode.
type printer struct {
	w        io.Writer
	mode     outputMode
	printed  string
	response *stream.Response
}

func newPrinter(w io.Writer, mode outputMode) *printer {
	return &printer{w: w, mode: mode}
}

// chunk prints the part of answer not yet on screen. An answer that no longer
// extends what was printed is started over on a new line.
func (p *printer) chunk(answer string) {
	if p.mode != modeLive {
		return
	}

	if strings.HasPrefix(answer, p.printed) {
		_, _ = io.WriteString(p.w, answer[len(p.printed):])
	} else {
		_, _ = fmt.Fprintf(p.w, "\n%s", answer)
	}
	p.printed = answer
}

// finish prints whatever follows the streamed answer.
func (p *printer) finish() error {
	if p.response == nil {
		return errors.New("stream ended without a response")
	}

	switch p.mode {
	case modeJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(p.response)

	case modeRendered:
		rendered, err := cliui.RenderMarkdown(p.response.Answer)
		if err != nil {
			rendered = p.response.Answer + "\n"
		}
		_, _ = io.WriteString(p.w, rendered)

	default:
		_, _ = io.WriteString(p.w, "\n")
	}

	cliui.WriteSources(p.w, p.response.Sources)
	cliui.WriteRelatedQueries(p.w, p.response.RelatedQueries)
	return nil
}
