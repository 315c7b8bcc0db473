package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/admin"
	"github.com/roach88/worldsmith/internal/content"
	"github.com/roach88/worldsmith/internal/metrics"
	"github.com/roach88/worldsmith/internal/settings"
	"github.com/roach88/worldsmith/internal/store"
	"github.com/roach88/worldsmith/internal/world"
)

// contentFlags are the flags of every command that builds a call buffer.
type contentFlags struct {
	Content     string
	Settings    string
	Mode        string
	Database    string
	MetricsFile string
}

func (c *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.Content, "content", "", "content tables directory (required)")
	cmd.Flags().StringVar(&c.Settings, "settings", "", "settings YAML file (default: built-in profiles)")
	cmd.Flags().StringVar(&c.Mode, "mode", string(settings.ModeLocal), "environment mode (local|testing|production)")
	cmd.Flags().StringVar(&c.Database, "db", "", "deployment ledger database")
	cmd.Flags().StringVar(&c.MetricsFile, "metrics-file", "", "write run metrics to this Prometheus textfile")
	_ = cmd.MarkFlagRequired("content")
}

// loadProfile resolves the mode and its profile from the settings file or
// the built-in defaults.
func loadProfile(path, mode string) (settings.Mode, settings.Profile, error) {
	m, err := settings.ParseMode(mode)
	if err != nil {
		return "", settings.Profile{}, err
	}
	s := settings.Default()
	if path != "" {
		if s, err = settings.Load(path); err != nil {
			return "", settings.Profile{}, err
		}
	}
	p, err := s.Profile(m)
	if err != nil {
		return "", settings.Profile{}, err
	}
	return m, p, nil
}

// parsePlan turns the category, indices and action of a command into a
// plan. No category means a full init.
func parsePlan(category, indices, action string) (world.Plan, error) {
	if category == "" {
		if indices != "" {
			return world.Plan{}, fmt.Errorf("--indices requires --category")
		}
		if action != "" && action != string(world.ActionInit) {
			return world.Plan{}, fmt.Errorf("--action %s requires --category", action)
		}
		return world.FullInit(), nil
	}
	c, err := world.ParseCategory(category)
	if err != nil {
		return world.Plan{}, err
	}
	idx, err := content.ParseIndices(indices)
	if err != nil {
		return world.Plan{}, err
	}
	if len(idx) == 0 {
		return world.Plan{}, fmt.Errorf("no indices given for %s", c)
	}
	a := world.ActionInit
	if action != "" {
		if a, err = world.ParseAction(action); err != nil {
			return world.Plan{}, err
		}
	}
	return world.Scoped(a, c, idx...), nil
}

// buildRequest is one call buffer build.
type buildRequest struct {
	Content  string
	Profile  settings.Profile
	Plan     world.Plan
	Deployed world.Deployed
	Metrics  *metrics.Run
	Literal  bool
	Logger   *slog.Logger
}

// build loads content and runs the orchestrator over it.
func build(ctx context.Context, req buildRequest) (*world.Result, error) {
	loader, err := content.Open(req.Content, req.Logger)
	if err != nil {
		return nil, err
	}
	opts := []world.Option{world.WithLogger(req.Logger)}
	if req.Deployed != nil {
		opts = append(opts, world.WithDeployed(req.Deployed))
	}
	if req.Metrics != nil {
		opts = append(opts, world.WithRecorder(req.Metrics))
	}
	if req.Literal {
		opts = append(opts, world.WithAdminOptions(admin.WithLiteral()))
	}
	orch, err := world.New(loader, req.Profile, opts...)
	if err != nil {
		return nil, err
	}
	return orch.Execute(ctx, req.Plan)
}

// ledgerRefs converts orchestrator refs to ledger refs.
func ledgerRefs(refs []world.Ref) []store.Ref {
	out := make([]store.Ref, len(refs))
	for i, r := range refs {
		out[i] = store.Ref{Category: r.Category.String(), Index: r.Index}
	}
	return out
}

func refStrings(refs []world.Ref) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.String()
	}
	return out
}

// writeMetrics stamps and writes the run metrics when a path is set.
func writeMetrics(m *metrics.Run, path string) error {
	if path == "" || m == nil {
		return nil
	}
	m.Finish(time.Now())
	return m.WriteTextfile(path)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
