// Package deploy drives the external build/deploy toolchain that applies a
// generated init script to a world, and controls the mining mode of the
// local chain around it.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/worldsmith/internal/settings"
)

// ReportEnv names the environment variable carrying the structured report
// path.
const ReportEnv = "WORLDSMITH_REPORT"

// Defaults for the toolchain invocation.
const (
	DefaultForge     = "forge"
	DefaultScript    = "script/InitWorld.s.sol"
	DefaultSignature = "run(uint256,address)"
)

// Source says where a Result's address and start block came from.
type Source string

const (
	SourceReport Source = "report"
	SourceStdout Source = "stdout"
	SourceNone   Source = "none"
)

// Invocation is one run of the deploy script.
type Invocation struct {
	RPC        string
	PrivateKey string

	// World is the target world address. Empty or the zero address deploys
	// a new world.
	World string

	// Extra positional arguments after the key and world.
	Extra []string
}

// Result is what a deploy run reported. A nonzero ExitCode is a failed
// deploy; Run does not turn it into an error.
type Result struct {
	World      string        `json:"world,omitempty"`
	StartBlock string        `json:"start_block,omitempty"`
	ExitCode   int           `json:"exit_code"`
	Source     Source        `json:"source"`
	Duration   time.Duration `json:"duration"`
}

// Succeeded reports whether the subprocess exited zero.
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// ForgeRunner runs the deploy script with forge.
type ForgeRunner struct {
	// Forge is the toolchain binary. Empty means DefaultForge.
	Forge string
	// Dir is the contracts project the script runs in.
	Dir string
	// Script is the script path relative to Dir. Empty means DefaultScript.
	Script string
	// Signature is the script entry point. Empty means DefaultSignature.
	Signature string

	// Stdout and Stderr receive the subprocess output as it streams. Nil
	// discards it.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Args returns the toolchain arguments for inv.
func (f *ForgeRunner) Args(inv Invocation) []string {
	world := inv.World
	if world == "" {
		world = settings.ZeroWorld
	}
	args := []string{
		"script", orDefault(f.Script, DefaultScript),
		"--broadcast",
		"--rpc-url", inv.RPC,
		"--sig", orDefault(f.Signature, DefaultSignature),
		inv.PrivateKey, world,
	}
	return append(args, inv.Extra...)
}

// Run executes the deploy script and waits for it to finish. The world
// address and start block are taken from the structured report when the
// script wrote a valid one, and scraped from stdout otherwise. Only a
// failure to start or wait on the subprocess is returned as an error.
//
// ctx gates the launch only: a script that has started is never killed,
// since it may already have broadcast part of the batch.
func (f *ForgeRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if inv.RPC == "" || inv.PrivateKey == "" {
		return Result{}, fmt.Errorf("deploy: rpc and private key are required")
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("deploy: %w", err)
	}

	reportDir, err := os.MkdirTemp("", "worldsmith-report-")
	if err != nil {
		return Result{}, fmt.Errorf("deploy: %w", err)
	}
	defer os.RemoveAll(reportDir)
	reportPath := filepath.Join(reportDir, "report.json")

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(orDefault(f.Forge, DefaultForge), f.Args(inv)...)
	cmd.Dir = f.Dir
	detach(cmd)
	cmd.Env = append(os.Environ(), ReportEnv+"="+reportPath)
	cmd.Stdout = io.MultiWriter(&stdout, writerOrDiscard(f.Stdout))
	cmd.Stderr = io.MultiWriter(&stderr, writerOrDiscard(f.Stderr))

	logger.Info("running deploy script",
		"forge", cmd.Path,
		"script", orDefault(f.Script, DefaultScript),
		"world", orDefault(inv.World, settings.ZeroWorld))

	start := time.Now()
	runErr := cmd.Run()
	res := Result{Duration: time.Since(start), Source: SourceNone}

	if ctx.Err() != nil {
		logger.Warn("interrupted while the deploy script ran; waited for it to exit")
	}
	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		return Result{}, fmt.Errorf("deploy: %w", runErr)
	}

	if stderr.Len() > 0 {
		logger.Warn("deploy script wrote to stderr", "stderr", strings.TrimSpace(stderr.String()))
	}

	world, block, err := readReport(reportPath)
	switch {
	case err == nil:
		res.World, res.StartBlock, res.Source = world, block, SourceReport
		return res, nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		logger.Warn("ignoring deploy report", "reason", err)
	}

	world, block, err = scrapeMarkers(&stdout)
	if err != nil {
		return res, fmt.Errorf("deploy: scan output: %w", err)
	}
	if world != "" || block != "" {
		res.World, res.StartBlock, res.Source = world, block, SourceStdout
	}
	return res, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
