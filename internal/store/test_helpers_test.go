package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/worldsmith/internal/ir"
	"github.com/roach88/worldsmith/internal/testutil"
)

// createTestStore creates a ledger with sequential run ids and a clock that
// starts at 2024-01-01 and ticks one second per reading.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	clock := testutil.NewStepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Second)
	s, err := Open(path, WithIDGenerator(testutil.NewSequentialIDs("run")), WithClock(clock.Now))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestBuffer creates a buffer of n calls to one system.
func createTestBuffer(n int) *ir.CallBuffer {
	buf := ir.NewCallBuffer()
	for i := 0; i < n; i++ {
		buf.Append(ir.SystemCall{
			SystemID: "system.quest.remove",
			Function: ir.DefaultFunction,
			Encoded:  ir.Payload{0, 0, 0, byte(i)},
		})
	}
	return buf
}
