package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/store"
	"github.com/roach88/worldsmith/internal/testutil"
)

func TestCompile_FullInitText(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)

	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		"--content", contentDir, "--settings", settings)
	require.NoError(t, err)

	assert.Contains(t, out, "Compiled full init: 44 call(s)")
	assert.Regexp(t, `digest:  [0-9a-f]{64}\n`, out)
	assert.Contains(t, out, "skipped: 1 row(s) with errors")
}

func TestCompile_JSONAndBufferExport(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)
	output := filepath.Join(t.TempDir(), "calls.json")

	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		"--content", contentDir, "--settings", settings, "-o", output)
	require.NoError(t, err)

	summary := decodeOK[CompileSummary](t, out)
	assert.Equal(t, "full init", summary.Plan)
	assert.Equal(t, 44, summary.Calls)
	assert.Equal(t, 1, summary.RowErrors)
	assert.Equal(t, output, summary.Output)
	assert.Contains(t, summary.Created, "quest 9001")
	assert.Empty(t, summary.Deleted)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	buf, err := ir.UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, 44, buf.Len())
	assert.Equal(t, summary.Digest, ir.MustDigest(buf))
}

func TestCompile_Deterministic(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)

	first, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), "--content", contentDir, "--settings", settings)
	require.NoError(t, err)
	second, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), "--content", contentDir, "--settings", settings)
	require.NoError(t, err)

	assert.Equal(t, decodeOK[CompileSummary](t, first).Digest, decodeOK[CompileSummary](t, second).Digest)
}

func TestCompile_MetricsFile(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)
	metricsFile := filepath.Join(t.TempDir(), "worldsmith.prom")

	_, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}),
		"--content", contentDir, "--settings", settings, "--metrics-file", metricsFile)
	require.NoError(t, err)

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `worldsmith_rows_loaded_total{category="rooms",mode="local"} 2`)
	assert.Contains(t, text, `worldsmith_calls_emitted_total{category="rooms",mode="local"} 3`)
	assert.Contains(t, text, `worldsmith_rows_skipped_total{category="items",mode="local"} 1`)
}

func TestCompile_ScopedDeleteConsultsLedger(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, logs, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		"--content", contentDir, "--settings", settings,
		"--category", "quests", "--indices", "7", "--action", "delete",
		"--db", db, "--world", testWorld)
	require.NoError(t, err)

	summary := decodeOK[CompileSummary](t, out)
	assert.Equal(t, "delete quests [7]", summary.Plan)
	assert.Equal(t, 0, summary.Calls)
	assert.Equal(t, []string{"quest 7"}, summary.Missed)
	assert.Contains(t, logs, "could not delete quest 7")
}

func TestCompile_ScopedDeleteWithoutLedgerEmitsRemove(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)

	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		"--content", contentDir, "--settings", settings,
		"--category", "quest", "--indices", "1,7", "--action", "delete")
	require.NoError(t, err)

	summary := decodeOK[CompileSummary](t, out)
	assert.Equal(t, 2, summary.Calls)
	assert.Equal(t, []string{"quest 1", "quest 7"}, summary.Deleted)
	assert.Empty(t, summary.Missed)
}

func TestCompile_LedgerMarksDeployedRows(t *testing.T) {
	contentDir := testutil.WorldContent(t)
	settings := settingsFile(t, plainSettings)
	db := filepath.Join(t.TempDir(), "ledger.db")

	ledger, err := store.Open(db)
	require.NoError(t, err)
	buf := ir.NewCallBuffer()
	id, err := ledger.BeginRun(t.Context(), store.NewRun{
		Mode: "local", World: testWorld, Action: "init", Buffer: buf,
		Created: []store.Ref{{Category: "quests", Index: 7}},
	})
	require.NoError(t, err)
	require.NoError(t, ledger.CompleteRun(t.Context(), id, store.Outcome{Applied: true}))
	require.NoError(t, ledger.Close())

	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		"--content", contentDir, "--settings", settings,
		"--category", "quests", "--indices", "7", "--action", "revise",
		"--db", db, "--world", testWorldChecksum)
	require.NoError(t, err)

	summary := decodeOK[CompileSummary](t, out)
	assert.Equal(t, []string{"quest 7"}, summary.Deleted)
	assert.Equal(t, []string{"quest 7"}, summary.Created)
	assert.Empty(t, summary.Missed)
	assert.Equal(t, 5, summary.Calls, "one remove, then create with objective, requirement and reward")
}

func TestCompile_RowErrorLimit(t *testing.T) {
	tables := testutil.WorldTables()
	tables["items.csv"] += "1004,Other,ALSO_WEIRD,?,,,,,Ready\n"
	contentDir := testutil.WriteTables(t, tables)
	settings := settingsFile(t, plainSettings+"    max_row_errors: 1\n")

	out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}),
		"--content", contentDir, "--settings", settings)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, ErrCodeRowErrors, decodeError(t, out).Code)
}

func TestCompile_Errors(t *testing.T) {
	contentDir := testutil.WorldContent(t)

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"indices without category", []string{"--content", contentDir, "--indices", "1"}, ErrCodeInvalidArgs},
		{"unknown category", []string{"--content", contentDir, "--category", "dragons", "--indices", "1"}, ErrCodeInvalidArgs},
		{"unknown action", []string{"--content", contentDir, "--category", "quests", "--indices", "1", "--action", "burn"}, ErrCodeInvalidArgs},
		{"db without world", []string{"--content", contentDir, "--db", filepath.Join(t.TempDir(), "l.db")}, ErrCodeInvalidArgs},
		{"unknown mode", []string{"--content", contentDir, "--mode", "staging"}, ErrCodeSettings},
		{"missing settings", []string{"--content", contentDir, "--settings", "/nonexistent/settings.yaml"}, ErrCodeNotFound},
		{"missing content", []string{"--content", "/nonexistent/content"}, ErrCodeNotFound},
		{"scoped auth", []string{"--content", contentDir, "--category", "auth", "--indices", "1"}, ErrCodeNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "json"}), tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Equal(t, tt.code, decodeError(t, out).Code)
		})
	}
}

func TestCompile_ContentFlagRequired(t *testing.T) {
	_, _, err := execute(t, NewCompileCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "content" not set`)
}
