package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/roach88/worldsmith/internal/ir"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	StatusPending RunStatus = "pending"
	StatusApplied RunStatus = "applied"
	StatusFailed  RunStatus = "failed"
)

// Ref names one content row.
type Ref struct {
	Category string
	Index    uint32
}

// NewRun describes a run about to be handed to the deploy runner.
type NewRun struct {
	Mode     string
	World    string
	Action   string
	Category string
	Indices  []uint32
	Buffer   *ir.CallBuffer
	Created  []Ref
	Deleted  []Ref
}

// Outcome is what the deploy runner reported for a run.
type Outcome struct {
	Applied bool

	// World is the address the run deployed to. It replaces the recorded
	// world when the run deployed a new one.
	World      string
	StartBlock string
	ExitCode   int
}

// BeginRun records a pending run with its buffer and row refs and returns
// its identifier.
func (s *Store) BeginRun(ctx context.Context, nr NewRun) (string, error) {
	if nr.Buffer == nil {
		return "", fmt.Errorf("begin run: nil buffer")
	}
	digest, err := ir.Digest(nr.Buffer)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	blob, err := compressBuffer(nr.Buffer)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	indices, err := marshalIndices(nr.Indices)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	id := s.ids.NewID()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, mode, world, action, category, indices, digest, calls, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		nr.Mode,
		normalizeWorld(nr.World),
		nr.Action,
		nr.Category,
		indices,
		digest,
		nr.Buffer.Len(),
		string(StatusPending),
		s.now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: insert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO run_buffers (run_id, buffer) VALUES (?, ?)`, id, blob); err != nil {
		return "", fmt.Errorf("begin run: insert buffer: %w", err)
	}

	if err := insertRefs(ctx, tx, id, "delete", nr.Deleted); err != nil {
		return "", err
	}
	if err := insertRefs(ctx, tx, id, "create", nr.Created); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("begin run: commit: %w", err)
	}
	return id, nil
}

func insertRefs(ctx context.Context, tx *sql.Tx, runID, op string, refs []Ref) error {
	for _, ref := range refs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_refs (run_id, op, category, idx)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, runID, op, ref.Category, ref.Index)
		if err != nil {
			return fmt.Errorf("begin run: insert %s ref: %w", op, err)
		}
	}
	return nil
}

// CompleteRun records the outcome of a pending run. An applied run moves its
// refs into the deployed table: deletes first, then creates, so a revise
// leaves its indices deployed.
func (s *Store) CompleteRun(ctx context.Context, id string, out Outcome) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("complete run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var status, world string
	err = tx.QueryRowContext(ctx, `SELECT status, world FROM runs WHERE id = ?`, id).Scan(&status, &world)
	if err == sql.ErrNoRows {
		return fmt.Errorf("complete run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}
	if RunStatus(status) != StatusPending {
		return fmt.Errorf("complete run %s: run is already %s", id, status)
	}
	if out.World != "" {
		world = normalizeWorld(out.World)
	}

	next := StatusFailed
	if out.Applied {
		next = StatusApplied
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, world = ?, exit_code = ?, start_block = ?, finished_at = ?
		WHERE id = ?
	`, string(next), world, out.ExitCode, out.StartBlock, s.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("complete run %s: %w", id, err)
	}

	if out.Applied {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM deployed
			WHERE world = ? AND (category, idx) IN (
				SELECT category, idx FROM run_refs WHERE run_id = ? AND op = 'delete'
			)
		`, world, id)
		if err != nil {
			return fmt.Errorf("complete run %s: apply deletes: %w", id, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO deployed (world, category, idx, run_id)
			SELECT ?, category, idx, run_id FROM run_refs WHERE run_id = ? AND op = 'create'
			ON CONFLICT(world, category, idx) DO UPDATE SET run_id = excluded.run_id
		`, world, id)
		if err != nil {
			return fmt.Errorf("complete run %s: apply creates: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("complete run %s: commit: %w", id, err)
	}
	return nil
}

// normalizeWorld renders hex addresses in checksum form so the same world
// never appears under two spellings.
func normalizeWorld(w string) string {
	w = strings.TrimSpace(w)
	if common.IsHexAddress(w) {
		return common.HexToAddress(w).Hex()
	}
	return w
}
