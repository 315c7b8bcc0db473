package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/metrics"
	"github.com/roach88/worldsmith/internal/store"
	"github.com/roach88/worldsmith/internal/world"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	contentFlags
	Category string
	Indices  string
	Action   string
	World    string
	Output   string
}

// CompileSummary is the result of a compile.
type CompileSummary struct {
	Plan      string   `json:"plan"`
	Calls     int      `json:"calls"`
	Digest    string   `json:"digest"`
	Created   []string `json:"created"`
	Deleted   []string `json:"deleted"`
	Missed    []string `json:"missed"`
	RowErrors int      `json:"row_errors"`
	Output    string   `json:"output,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile content tables into a call buffer",
		Long: `Compile content tables into the ordered call buffer of a run.

Without --category every category is initialized from the rows whose status
the mode's profile deploys. With --category and --indices the run is scoped
to those rows regardless of status; --action picks init, delete or revise.

Deletes consult the deployment ledger (--db, --world) to skip rows that were
never deployed. Without a ledger every delete is emitted.

Example:
  worldsmith compile --content ./content --mode local -o calls.json
  worldsmith compile --content ./content --category quests --indices 7 --action revise`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, cmd)
		},
	}

	opts.contentFlags.register(cmd)
	cmd.Flags().StringVar(&opts.Category, "category", "", "scope the run to one category")
	cmd.Flags().StringVar(&opts.Indices, "indices", "", "comma-separated row indices of the category")
	cmd.Flags().StringVar(&opts.Action, "action", "", "scoped action (init|delete|revise, default init)")
	cmd.Flags().StringVar(&opts.World, "world", "", "world address whose ledger entries answer deletes")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the call buffer document to this file")

	return cmd
}

func runCompile(opts *CompileOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	plan, err := parsePlan(opts.Category, opts.Indices, opts.Action)
	if err != nil {
		return fail(formatter, ErrCodeInvalidArgs, "invalid plan", err)
	}
	if opts.Database != "" && opts.World == "" {
		return fail(formatter, ErrCodeInvalidArgs, "--world is required with --db", nil)
	}
	mode, profile, err := loadProfile(opts.Settings, opts.Mode)
	if err != nil {
		return fail(formatter, ErrCodeSettings, "loading settings", err)
	}

	req := buildRequest{
		Content: opts.Content,
		Profile: profile,
		Plan:    plan,
		Metrics: metrics.NewRun(string(mode)),
		Logger:  logger,
	}
	if opts.Database != "" {
		ledger, err := store.Open(opts.Database)
		if err != nil {
			return fail(formatter, ErrCodeLedger, "opening ledger", err)
		}
		defer ledger.Close()
		req.Deployed = ledger.Deployed(opts.World)
	}

	formatter.VerboseLog("Compiling %s from %s (%s)", plan, opts.Content, mode)
	res, err := build(ctx, req)
	if err != nil {
		return fail(formatter, ErrCodeContent, "compiling content", err)
	}

	summary, err := summarize(res)
	if err != nil {
		return fail(formatter, ErrCodeGeneric, "digesting call buffer", err)
	}
	if opts.Output != "" {
		if err := writeBuffer(res.Buffer, opts.Output); err != nil {
			return fail(formatter, ErrCodeWriteFailed, "writing call buffer", err)
		}
		summary.Output = opts.Output
	}
	if err := writeMetrics(req.Metrics, opts.MetricsFile); err != nil {
		return fail(formatter, ErrCodeWriteFailed, "writing metrics", err)
	}

	return formatter.Success(summary, func(w io.Writer) { printSummary(w, summary) })
}

func summarize(res *world.Result) (CompileSummary, error) {
	digest, err := ir.Digest(res.Buffer)
	if err != nil {
		return CompileSummary{}, err
	}
	return CompileSummary{
		Plan:      res.Plan.String(),
		Calls:     res.Buffer.Len(),
		Digest:    digest,
		Created:   refStrings(res.Created),
		Deleted:   refStrings(res.Deleted),
		Missed:    refStrings(res.Missed),
		RowErrors: res.RowErrors,
	}, nil
}

func printSummary(w io.Writer, s CompileSummary) {
	fmt.Fprintf(w, "Compiled %s: %d call(s)\n", s.Plan, s.Calls)
	fmt.Fprintf(w, "  digest:  %s\n", s.Digest)
	fmt.Fprintf(w, "  created: %d row(s)\n", len(s.Created))
	if len(s.Deleted) > 0 {
		fmt.Fprintf(w, "  deleted: %s\n", strings.Join(s.Deleted, ", "))
	}
	if len(s.Missed) > 0 {
		fmt.Fprintf(w, "  missed:  %s\n", strings.Join(s.Missed, ", "))
	}
	if s.RowErrors > 0 {
		fmt.Fprintf(w, "  skipped: %d row(s) with errors\n", s.RowErrors)
	}
	if s.Output != "" {
		fmt.Fprintf(w, "Wrote call buffer to %s\n", s.Output)
	}
}

// writeBuffer writes the call buffer document to path.
func writeBuffer(buf *ir.CallBuffer, path string) error {
	data, err := buf.MarshalDocument()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
