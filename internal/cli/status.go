package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/store"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// RunInfo is one ledger run as printed by status.
type RunInfo struct {
	ID         string     `json:"id"`
	Mode       string     `json:"mode"`
	World      string     `json:"world"`
	Action     string     `json:"action"`
	Category   string     `json:"category,omitempty"`
	Indices    []uint32   `json:"indices,omitempty"`
	Calls      int        `json:"calls"`
	Digest     string     `json:"digest"`
	Status     string     `json:"status"`
	ExitCode   *int       `json:"exit_code,omitempty"`
	StartBlock string     `json:"start_block,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// StatusReport is the result of status.
type StatusReport struct {
	Runs    []RunInfo `json:"runs"`
	Pending []RunInfo `json:"pending"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recorded runs and pending revisions",
		Long: `Show the most recent runs of the deployment ledger, newest first, and every
run that never completed. A pending revise may have deleted its rows without
recreating them; rerun it to recover.

Example:
  worldsmith status --db ./worldsmith.db
  worldsmith status --db ./worldsmith.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to the deployment ledger (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of recent runs to show (0 for all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runStatus(opts *StatusOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := commandContext(cmd)

	ledger, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ErrCodeLedger, "opening ledger", err)
	}
	defer ledger.Close()

	runs, err := ledger.ListRuns(ctx, opts.Limit)
	if err != nil {
		return fail(formatter, ErrCodeLedger, "listing runs", err)
	}
	pending, err := ledger.PendingRuns(ctx)
	if err != nil {
		return fail(formatter, ErrCodeLedger, "listing pending runs", err)
	}

	report := StatusReport{Runs: runInfos(runs), Pending: runInfos(pending)}
	return formatter.Success(report, func(w io.Writer) { printStatus(w, report) })
}

func runInfos(runs []store.Run) []RunInfo {
	out := make([]RunInfo, len(runs))
	for i, r := range runs {
		out[i] = RunInfo{
			ID:         r.ID,
			Mode:       r.Mode,
			World:      r.World,
			Action:     r.Action,
			Category:   r.Category,
			Indices:    r.Indices,
			Calls:      r.Calls,
			Digest:     r.Digest,
			Status:     string(r.Status),
			ExitCode:   r.ExitCode,
			StartBlock: r.StartBlock,
			CreatedAt:  r.CreatedAt,
			FinishedAt: r.FinishedAt,
		}
	}
	return out
}

func printStatus(w io.Writer, r StatusReport) {
	if len(r.Runs) == 0 {
		fmt.Fprintln(w, "No runs recorded")
		return
	}
	fmt.Fprintf(w, "Runs (%d):\n", len(r.Runs))
	for _, run := range r.Runs {
		fmt.Fprintf(w, "  %s  %-8s %-10s %-7s %s  %d call(s)\n",
			run.CreatedAt.Format(time.RFC3339), run.Status, run.Mode, run.Action, scope(run), run.Calls)
	}
	if len(r.Pending) == 0 {
		return
	}
	fmt.Fprintf(w, "\nPending (%d):\n", len(r.Pending))
	for _, run := range r.Pending {
		fmt.Fprintf(w, "  %s %s %s on %s\n", run.ID, run.Action, scope(run), run.World)
	}
}

func scope(r RunInfo) string {
	if r.Category == "" {
		return "all"
	}
	idx := make([]string, len(r.Indices))
	for i, n := range r.Indices {
		idx[i] = fmt.Sprint(n)
	}
	return r.Category + " " + strings.Join(idx, ",")
}
