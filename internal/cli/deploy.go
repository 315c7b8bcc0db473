package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/codegen"
	"github.com/roach88/worldsmith/internal/deploy"
	"github.com/roach88/worldsmith/internal/deployconf"
	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/metrics"
	"github.com/roach88/worldsmith/internal/settings"
	"github.com/roach88/worldsmith/internal/store"
	"github.com/roach88/worldsmith/internal/world"
)

// DeployOptions holds flags for deploy and the scoped lifecycle commands.
type DeployOptions struct {
	*RootOptions
	contentFlags
	Config  string
	Out     string
	Forge   string
	Project string

	// Getenv reads the mode environment. Nil reads the process environment.
	Getenv func(string) string

	// DialChain connects chain control for profiles with automine. Nil
	// dials the mode's RPC endpoint.
	DialChain func(ctx context.Context, url string) (deploy.ChainControl, func(), error)
}

// DeploySummary is the result of a deploy.
type DeploySummary struct {
	RunID      string   `json:"run_id,omitempty"`
	Plan       string   `json:"plan"`
	Calls      int      `json:"calls"`
	Digest     string   `json:"digest"`
	Missed     []string `json:"missed"`
	RowErrors  int      `json:"row_errors"`
	World      string   `json:"world,omitempty"`
	StartBlock string   `json:"start_block,omitempty"`
	ExitCode   int      `json:"exit_code"`
	Source     string   `json:"source"`
}

// NewDeployCommand creates the deploy command, a full init of a world.
func NewDeployCommand(rootOpts *RootOptions) *cobra.Command {
	return newDeployCommand(&DeployOptions{RootOptions: rootOpts})
}

func newDeployCommand(opts *DeployOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Initialize a world from every deployable content row",
		Long: `Compile a full init, render the init script and run it with forge.

The mode selects the profile and the environment: <MODE>_RPC and
<MODE>_PRIV_KEY are required, <MODE>_WORLD_ADDRESS targets an existing world
and is otherwise left to the script to deploy. With --db the run is recorded
in the deployment ledger.

Example:
  worldsmith deploy --content ./content --config ./config/deploy --project ./contracts --mode local --db ./worldsmith.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(opts, world.FullInit(), cmd)
		},
	}
	opts.register(cmd)
	return cmd
}

// NewScopedCommand creates the init, revise or delete command over explicit
// indices of one category.
func NewScopedCommand(rootOpts *RootOptions, action string) *cobra.Command {
	return newScopedCommand(&DeployOptions{RootOptions: rootOpts}, action)
}

func newScopedCommand(opts *DeployOptions, action string) *cobra.Command {
	short := map[string]string{
		"init":   "Create content rows by index",
		"revise": "Delete and recreate content rows by index in one deploy",
		"delete": "Remove content rows by index",
	}[action]

	cmd := &cobra.Command{
		Use:   action + " <category> <indices>",
		Short: short,
		Long: short + `.

Indices are comma-separated and select rows regardless of their status.
A revise emits the deletes and the recreations into one call buffer, so they
are applied by a single script run. Until that run completes the ledger keeps
it pending, and status lists it.

Example:
  worldsmith ` + action + ` quests 7,9 --content ./content --config ./config/deploy --project ./contracts --db ./worldsmith.db`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := parsePlan(args[0], args[1], action)
			if err != nil {
				return fail(newFormatter(opts.RootOptions, cmd), ErrCodeInvalidArgs, "invalid plan", err)
			}
			return runDeploy(opts, plan, cmd)
		},
	}
	opts.register(cmd)
	return cmd
}

func (o *DeployOptions) register(cmd *cobra.Command) {
	o.contentFlags.register(cmd)
	cmd.Flags().StringVar(&o.Config, "config", "", "deploy configuration directory (required)")
	cmd.Flags().StringVar(&o.Project, "project", ".", "contracts project the deploy script runs in")
	cmd.Flags().StringVar(&o.Out, "out", "", "directory the scripts are written to (default: --project)")
	cmd.Flags().StringVar(&o.Forge, "forge", deploy.DefaultForge, "forge binary")
	_ = cmd.MarkFlagRequired("config")
}

func runDeploy(opts *DeployOptions, plan world.Plan, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	mode, profile, err := loadProfile(opts.Settings, opts.Mode)
	if err != nil {
		return fail(formatter, ErrCodeSettings, "loading settings", err)
	}
	env, err := settings.LookupEnv(mode, opts.Getenv)
	if err != nil {
		return fail(formatter, ErrCodeEnvironment, "reading environment", err)
	}
	logger.Debug("environment", "mode", mode, "rpc", env.RPC, "key", env.Redacted(), "world", env.World())

	cfg, err := deployconf.Load(opts.Config)
	if err != nil {
		return fail(formatter, ErrCodeDeployConfig, "loading deploy config", err)
	}
	gen, err := codegen.New(cfg)
	if err != nil {
		return fail(formatter, ErrCodeCodegen, "preparing generator", err)
	}

	req := buildRequest{
		Content: opts.Content,
		Profile: profile,
		Plan:    plan,
		Metrics: metrics.NewRun(string(mode)),
		Literal: true,
		Logger:  logger,
	}
	var ledger *store.Store
	if opts.Database != "" {
		if ledger, err = store.Open(opts.Database); err != nil {
			return fail(formatter, ErrCodeLedger, "opening ledger", err)
		}
		defer ledger.Close()
		req.Deployed = ledger.Deployed(env.World())
	} else if plan.Action != world.ActionInit {
		logger.Warn("no ledger given, every delete is emitted", "plan", plan.String())
	}

	res, err := build(ctx, req)
	if err != nil {
		return fail(formatter, ErrCodeContent, "compiling content", err)
	}
	summary := DeploySummary{
		Plan:      plan.String(),
		Calls:     res.Buffer.Len(),
		Missed:    refStrings(res.Missed),
		RowErrors: res.RowErrors,
	}
	if summary.Digest, err = ir.Digest(res.Buffer); err != nil {
		return fail(formatter, ErrCodeGeneric, "digesting call buffer", err)
	}

	out := opts.Out
	if out == "" {
		out = opts.Project
	}
	arts, err := gen.Render(codegen.Options{Calls: res.Buffer, ScriptsOnly: true})
	if err != nil {
		return fail(formatter, ErrCodeCodegen, "rendering scripts", err)
	}
	if err := codegen.Write(out, arts); err != nil {
		return fail(formatter, ErrCodeWriteFailed, "writing scripts", err)
	}

	if ledger != nil {
		summary.RunID, err = ledger.BeginRun(ctx, store.NewRun{
			Mode:     string(mode),
			World:    env.World(),
			Action:   string(plan.Action),
			Category: scopedCategory(plan),
			Indices:  plan.Indices,
			Buffer:   res.Buffer,
			Created:  ledgerRefs(res.Created),
			Deleted:  ledgerRefs(res.Deleted),
		})
		if err != nil {
			return fail(formatter, ErrCodeLedger, "recording run", err)
		}
	}

	deployer, closeChain, err := opts.deployer(ctx, env, profile, out, formatter, logger)
	if err != nil {
		return fail(formatter, ErrCodeDeploy, "connecting chain control", err)
	}
	defer closeChain()

	dres, err := deployer.Deploy(ctx, env)
	req.Metrics.ObserveDeploy(string(plan.Action), dres.Duration, dres.ExitCode)
	if err != nil {
		// The run stays pending in the ledger: the script may have applied.
		return fail(formatter, ErrCodeDeploy, "running deploy script", err)
	}
	summary.World, summary.StartBlock = dres.World, dres.StartBlock
	summary.ExitCode, summary.Source = dres.ExitCode, string(dres.Source)

	if ledger != nil {
		// The script ran to completion even if the user interrupted it.
		err := ledger.CompleteRun(context.WithoutCancel(ctx), summary.RunID, store.Outcome{
			Applied:    dres.Succeeded(),
			World:      dres.World,
			StartBlock: dres.StartBlock,
			ExitCode:   dres.ExitCode,
		})
		if err != nil {
			return fail(formatter, ErrCodeLedger, "completing run", err)
		}
	}
	if err := writeMetrics(req.Metrics, opts.MetricsFile); err != nil {
		return fail(formatter, ErrCodeWriteFailed, "writing metrics", err)
	}

	if !dres.Succeeded() {
		_ = formatter.Error(ErrCodeDeployExit, fmt.Sprintf("deploy script exited with code %d", dres.ExitCode), summary)
		return NewExitError(ExitFailure, fmt.Sprintf("%s: deploy script exited with code %d", ErrCodeDeployExit, dres.ExitCode))
	}
	return formatter.Success(summary, func(w io.Writer) { printDeploy(w, summary) })
}

// deployer assembles the forge runner and, for automine profiles, chain
// control. The returned func releases the chain connection.
func (o *DeployOptions) deployer(ctx context.Context, env settings.Env, profile settings.Profile, out string, f *OutputFormatter, logger *slog.Logger) (*deploy.Deployer, func(), error) {
	runner := &deploy.ForgeRunner{
		Forge:  o.Forge,
		Dir:    o.Project,
		Script: scriptPath(o.Project, out),
		Stdout: f.GetErrWriter(),
		Stderr: f.GetErrWriter(),
		Logger: logger,
	}

	opts := []deploy.DeployerOption{deploy.WithLogger(logger)}
	closeChain := func() {}
	if profile.Automine {
		dial := o.DialChain
		if dial == nil {
			dial = dialChain
		}
		chain, closer, err := dial(ctx, env.RPC)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, deploy.WithChain(chain))
		closeChain = closer
	}
	return deploy.NewDeployer(runner, profile, opts...), closeChain, nil
}

func dialChain(ctx context.Context, url string) (deploy.ChainControl, func(), error) {
	c, err := deploy.DialChain(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// scriptPath returns the init script path relative to the project when it
// lies inside it, and absolute otherwise.
func scriptPath(project, out string) string {
	script := filepath.Join(out, filepath.FromSlash(codegen.PathInitScript))
	rel, err := filepath.Rel(project, script)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		if abs, err := filepath.Abs(script); err == nil {
			return abs
		}
		return script
	}
	return filepath.ToSlash(rel)
}

func scopedCategory(plan world.Plan) string {
	if plan.Full {
		return ""
	}
	return plan.Category.String()
}

func printDeploy(w io.Writer, s DeploySummary) {
	fmt.Fprintf(w, "Deployed %s: %d call(s)\n", s.Plan, s.Calls)
	if s.RunID != "" {
		fmt.Fprintf(w, "  run:         %s\n", s.RunID)
	}
	fmt.Fprintf(w, "  digest:      %s\n", s.Digest)
	fmt.Fprintf(w, "  world:       %s\n", orDash(s.World))
	fmt.Fprintf(w, "  start block: %s\n", orDash(s.StartBlock))
	fmt.Fprintf(w, "  source:      %s\n", s.Source)
	if len(s.Missed) > 0 {
		fmt.Fprintf(w, "  missed:      %s\n", strings.Join(s.Missed, ", "))
	}
	if s.RowErrors > 0 {
		fmt.Fprintf(w, "  skipped:     %d row(s) with errors\n", s.RowErrors)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
