package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/deployconf"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Config string
	Src    string
}

// VerifyReport is the result of verify.
type VerifyReport struct {
	Checked  int                  `json:"checked"`
	Problems []deployconf.Problem `json:"problems"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check contract identifier markers against the deploy config",
		Long: `Scan Solidity sources for keccak256("<id>") markers and check that every
configured system and component declares the identifier string the deploy
configuration gives it.

Exits 1 when any entry has no source, no marker or a different identifier.

Example:
  worldsmith verify --config ./config/deploy --src ./contracts/src`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "deploy configuration directory (required)")
	cmd.Flags().StringVar(&opts.Src, "src", "", "contract sources directory (required)")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("src")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := deployconf.Load(opts.Config)
	if err != nil {
		return fail(formatter, ErrCodeDeployConfig, "loading deploy config", err)
	}
	sources, err := deployconf.ScanMarkers(opts.Src)
	if err != nil {
		return fail(formatter, ErrCodeNotFound, "scanning sources", err)
	}
	formatter.VerboseLog("Scanned %d source file(s) in %s", len(sources), opts.Src)

	report := VerifyReport{
		Checked:  len(cfg.Systems) + len(cfg.Components),
		Problems: cfg.Verify(sources),
	}
	if report.Problems == nil {
		report.Problems = []deployconf.Problem{}
	}

	if len(report.Problems) > 0 {
		if formatter.Format == "json" {
			_ = formatter.Error(ErrCodeVerify, fmt.Sprintf("%d identifier problem(s)", len(report.Problems)), report)
		} else {
			fmt.Fprintf(formatter.Writer, "Verification failed: %d of %d entries\n", len(report.Problems), report.Checked)
			for _, p := range report.Problems {
				fmt.Fprintf(formatter.Writer, "  %s\n", p)
			}
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %d identifier problem(s)", ErrCodeVerify, len(report.Problems)))
	}

	return formatter.Success(report, func(w io.Writer) {
		fmt.Fprintf(w, "Verified %d entries against %d source file(s)\n", report.Checked, len(sources))
	})
}
