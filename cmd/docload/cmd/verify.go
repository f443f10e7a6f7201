package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/docload/corpus"
	"github.com/hupe1980/docload/internal/round"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// maxListedMissing caps the missing names printed by verify.
const maxListedMissing = 20

func verifyCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verify HOST PORT DIR REPEAT",
		Short: "Check that a previous run stored every document",
		Long: `Check that a previous run stored every document.

The corpus in DIR is enumerated the same way as for a load run. Every name
{uri-base}{round}/{index}.xml for round < REPEAT and index < corpus size must
exist on the store. Exits with status 2 when documents are missing.
`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := parseConfig(v, args)
			if err != nil {
				return err
			}
			return runVerify(cmd.Context(), c, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runVerify(ctx context.Context, c config, stdout, stderr io.Writer) error {
	logger := newLogger(c, stderr)

	docs, err := corpus.Load(c.Dir, corpus.WithExclude(c.Exclude...))
	if err != nil {
		return err
	}

	pool, err := newPool(ctx, c)
	if err != nil {
		return err
	}

	base := c.uriBase()
	names, err := pool.List(ctx, base)
	if err != nil {
		return fmt.Errorf("list %s: %w", base, err)
	}
	logger.DebugContext(ctx, "listed documents", "prefix", base, "count", len(names))

	// Stores list names rooted at "/" whatever form the base was given in.
	stored := make(map[string]struct{}, len(names))
	for _, name := range names {
		stored[strings.TrimPrefix(name, "/")] = struct{}{}
	}

	var missing []string
	for r := range c.Repeat {
		for i := range docs.Len() {
			name := round.URI(base, r, i)
			if _, ok := stored[strings.TrimPrefix(name, "/")]; !ok {
				missing = append(missing, name)
			}
		}
	}

	expected := c.Repeat * docs.Len()
	fmt.Fprintf(stdout, "expected: %d\n", expected)
	fmt.Fprintf(stdout, "found:    %d\n", expected-len(missing))
	for i, name := range missing {
		if i == maxListedMissing {
			fmt.Fprintf(stdout, "missing:  ... and %d more\n", len(missing)-maxListedMissing)
			break
		}
		fmt.Fprintf(stdout, "missing:  %s\n", name)
	}

	if len(missing) > 0 {
		return &exitCodeError{
			code: exitFailures,
			err:  fmt.Errorf("%d of %d documents missing under %s", len(missing), expected, base),
		}
	}
	fmt.Fprintln(stdout, "Done.")
	return nil
}
