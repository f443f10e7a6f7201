package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/docload"
	"github.com/hupe1980/docload/corpus"
	docprom "github.com/hupe1980/docload/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes.
const (
	exitOK       = 0
	exitError    = 1
	exitFailures = 2
)

// exitCodeError carries a non-default exit status out of a command.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }

func (e *exitCodeError) Unwrap() error { return e.err }

// RootCmd returns the docload command with all sub-commands registered.
func RootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "docload HOST PORT DIR REPEAT",
		Short: "Write a corpus of documents to a document store, REPEAT times",
		Long: `Write a corpus of documents to a document store, REPEAT times.

Every file in DIR is loaded once. Each round stores the whole corpus under
{uri-base}{round}/{index}.xml on the store reachable at HOST:PORT.

In batch mode documents are sent in splits of --split-size with one batch call
per split, and up to --ceiling rounds run at once. In item mode every document
is written by its own goroutine and rounds run one after another.

To store the whole corpus with a single batch call per round, one round at a
time, use --split-size at least the corpus size with --ceiling 1, for example
--split-size 1000000 --ceiling 1 --uri-base /performance/xcc/.

Flags may also be set in a YAML file passed with --config, or through
DOCLOAD_* environment variables (e.g. DOCLOAD_BACKEND=minio).
`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseConfig(v, args)
			if err != nil {
				return err
			}
			return runLoad(cmd.Context(), c, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	addFlags(cmd.PersistentFlags())
	cmd.AddCommand(verifyCmd(v))

	return cmd
}

func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	v.SetEnvPrefix("DOCLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// Execute runs the root command and exits with its status.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, RootCmd(), os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cmd *cobra.Command, args []string, stderr io.Writer) int {
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "Error:", err)

	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return exitError
}

func newLogger(c config, w io.Writer) *docload.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return docload.NewLogger(slog.NewJSONHandler(w, opts))
	}
	return docload.NewLogger(slog.NewTextHandler(w, opts))
}

func runLoad(ctx context.Context, c config, stdout, stderr io.Writer) error {
	logger := newLogger(c, stderr)
	for i, a := range []string{c.Host, fmt.Sprint(c.Port), c.Dir, fmt.Sprint(c.Repeat)} {
		logger.DebugContext(ctx, fmt.Sprintf("ARG %d:%s", i, a))
	}

	docs, err := corpus.Load(c.Dir,
		corpus.WithExclude(c.Exclude...),
		corpus.WithCodec(c.Codec),
	)
	if err != nil {
		return err
	}
	logger.InfoContext(ctx, "corpus loaded",
		"dir", c.Dir,
		"documents", docs.Len(),
		"size", humanize.Bytes(uint64(docs.Bytes())),
		"encoding", c.Codec.Name(),
		"crc32c", fmt.Sprintf("%08x", docs.Checksum()),
	)

	pool, err := newPool(ctx, c)
	if err != nil {
		return err
	}

	opts := append(c.jobOptions(), docload.WithLogger(logger))

	if c.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector, err := docprom.New(reg, c.Mode.String())
		if err != nil {
			return err
		}
		opts = append(opts, docload.WithMetricsCollector(collector))

		srv := serveMetrics(c.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	job, err := docload.New(docs, pool, opts...)
	if err != nil {
		return err
	}

	report, runErr := job.Run(ctx)
	if report != nil {
		if err := writeReport(stdout, c.Output, report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if c.Strict && !report.OK() {
		err := report.Err()
		if err == nil {
			err = errors.New("not every round completed")
		}
		return &exitCodeError{code: exitFailures, err: err}
	}
	return nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *docload.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	return srv
}
