package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/store"
)

func TestStatus_EmptyLedger(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")

	out, _, err := execute(t, NewStatusCommand(&RootOptions{Format: "text"}), "--db", db)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded\n", out)
}

func seedLedger(t *testing.T, db string) (applied, pending string) {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()

	applied, err = s.BeginRun(ctx, store.NewRun{
		Mode: "local", World: testWorld, Action: "init", Buffer: ir.NewCallBuffer(),
		Created: []store.Ref{{Category: "quests", Index: 7}},
	})
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, applied, store.Outcome{Applied: true, StartBlock: "3"}))

	pending, err = s.BeginRun(ctx, store.NewRun{
		Mode: "local", World: testWorld, Action: "revise", Category: "quests", Indices: []uint32{7},
		Buffer:  ir.NewCallBuffer(),
		Created: []store.Ref{{Category: "quests", Index: 7}},
		Deleted: []store.Ref{{Category: "quests", Index: 7}},
	})
	require.NoError(t, err)
	return applied, pending
}

func TestStatus_ListsPendingRevise(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	applied, pending := seedLedger(t, db)

	out, _, err := execute(t, NewStatusCommand(&RootOptions{Format: "json"}), "--db", db)
	require.NoError(t, err)

	report := decodeOK[StatusReport](t, out)
	require.Len(t, report.Runs, 2)
	assert.Equal(t, pending, report.Runs[0].ID, "newest first")
	assert.Equal(t, applied, report.Runs[1].ID)
	assert.Equal(t, "applied", report.Runs[1].Status)
	assert.Equal(t, "3", report.Runs[1].StartBlock)

	require.Len(t, report.Pending, 1)
	assert.Equal(t, pending, report.Pending[0].ID)
	assert.Equal(t, "revise", report.Pending[0].Action)
	assert.Equal(t, []uint32{7}, report.Pending[0].Indices)
}

func TestStatus_Text(t *testing.T) {
	db := filepath.Join(t.TempDir(), "ledger.db")
	_, pending := seedLedger(t, db)

	out, _, err := execute(t, NewStatusCommand(&RootOptions{Format: "text"}), "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Runs (1):")
	assert.Contains(t, out, "Pending (1):")
	assert.Contains(t, out, pending+" revise quests 7 on "+testWorldChecksum)
}
