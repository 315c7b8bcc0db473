package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/worldsmith/internal/codegen"
	"github.com/roach88/worldsmith/internal/deployconf"
	"github.com/roach88/worldsmith/internal/ir"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Config     string
	Out        string
	Components []string
	Systems    []string
	Calls      string
	GoPackage  string
}

// GeneratedArtifact describes one written file.
type GeneratedArtifact struct {
	Kind   codegen.Kind `json:"kind"`
	Path   string       `json:"path"`
	Digest string       `json:"digest"`
}

// GenerateSummary is the result of a generate.
type GenerateSummary struct {
	Pass      string              `json:"pass"`
	Artifacts []GeneratedArtifact `json:"artifacts"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate deploy scripts and bindings",
		Long: `Generate the imports script, TypeScript bindings and Go signature table
from a deploy configuration, and the init script replaying a call buffer.

A full pass removes previously generated files before writing. --components
or --systems restricts the pass to the named entries; the two are mutually
exclusive.

Example:
  worldsmith generate --config ./config/deploy --out ./contracts
  worldsmith generate --config ./config/deploy --out ./contracts --calls calls.json
  worldsmith generate --config ./config/deploy --out ./contracts --systems RoomCreateSystem`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "deploy configuration directory (required)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output directory (required)")
	cmd.Flags().StringSliceVar(&opts.Components, "components", nil, "generate only these components")
	cmd.Flags().StringSliceVar(&opts.Systems, "systems", nil, "generate only these systems")
	cmd.Flags().StringVar(&opts.Calls, "calls", "", "call buffer document to render the init script from")
	cmd.Flags().StringVar(&opts.GoPackage, "go-package", codegen.DefaultGoPackage, "package of the Go bindings")
	_ = cmd.MarkFlagRequired("config")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runGenerate(opts *GenerateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := deployconf.Load(opts.Config)
	if err != nil {
		return fail(formatter, ErrCodeDeployConfig, "loading deploy config", err)
	}
	sub, pass, err := cfg.Apply(deployconf.Filter{Components: opts.Components, Systems: opts.Systems})
	if err != nil {
		return fail(formatter, ErrCodeFilter, "applying filter", err)
	}
	formatter.VerboseLog("Generating %s pass: %d component(s), %d system(s)", pass, len(sub.Components), len(sub.Systems))

	var calls *ir.CallBuffer
	if opts.Calls != "" {
		if calls, err = readBuffer(opts.Calls); err != nil {
			return fail(formatter, ErrCodeBufferInvalid, "reading call buffer", err)
		}
	}

	gen, err := codegen.New(sub)
	if err != nil {
		return fail(formatter, ErrCodeCodegen, "preparing generator", err)
	}
	arts, err := gen.Render(codegen.Options{Pass: pass, Calls: calls, GoPackage: opts.GoPackage})
	if err != nil {
		return fail(formatter, ErrCodeCodegen, "rendering artifacts", err)
	}

	if pass == deployconf.PassFull {
		if err := codegen.Clean(opts.Out, opts.GoPackage); err != nil {
			return fail(formatter, ErrCodeWriteFailed, "cleaning output", err)
		}
	}
	if err := codegen.Write(opts.Out, arts); err != nil {
		return fail(formatter, ErrCodeWriteFailed, "writing artifacts", err)
	}

	summary := GenerateSummary{Pass: pass.String(), Artifacts: describe(arts)}
	return formatter.Success(summary, func(w io.Writer) {
		fmt.Fprintf(w, "Generated %d artifact(s) (%s pass) in %s\n", len(arts), pass, opts.Out)
		for _, a := range summary.Artifacts {
			fmt.Fprintf(w, "  %-14s %s\n", a.Kind, a.Path)
		}
	})
}

func describe(arts []codegen.Artifact) []GeneratedArtifact {
	out := make([]GeneratedArtifact, len(arts))
	for i, a := range arts {
		out[i] = GeneratedArtifact{Kind: a.Kind, Path: a.Path, Digest: a.Digest()}
	}
	return out
}

// readBuffer reads a call buffer document written by compile -o.
func readBuffer(path string) (*ir.CallBuffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ir.UnmarshalDocument(data)
}
