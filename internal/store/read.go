package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/worldsmith/internal/ir"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run is a recorded run.
type Run struct {
	Seq        int64
	ID         string
	Mode       string
	World      string
	Action     string
	Category   string
	Indices    []uint32
	Digest     string
	Calls      int
	Status     RunStatus
	ExitCode   *int
	StartBlock string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

const runColumns = `seq, id, mode, world, action, category, indices, digest, calls, status, exit_code, start_block, created_at, finished_at`

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.queryRuns(ctx, query, args...)
}

// PendingRuns returns runs that were handed to the runner but never
// completed, oldest first. A pending revise is a category whose indices may
// be deleted without having been recreated.
func (s *Store) PendingRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `SELECT `+runColumns+` FROM runs WHERE status = ? ORDER BY seq ASC`, string(StatusPending))
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		indices  string
		status   string
		exitCode sql.NullInt64
		created  int64
		finished sql.NullInt64
	)
	err := sc.Scan(&r.Seq, &r.ID, &r.Mode, &r.World, &r.Action, &r.Category, &indices,
		&r.Digest, &r.Calls, &status, &exitCode, &r.StartBlock, &created, &finished)
	if err != nil {
		return Run{}, err
	}
	if r.Indices, err = unmarshalIndices(indices); err != nil {
		return Run{}, err
	}
	r.Status = RunStatus(status)
	if exitCode.Valid {
		code := int(exitCode.Int64)
		r.ExitCode = &code
	}
	r.CreatedAt = time.Unix(created, 0).UTC()
	if finished.Valid {
		t := time.Unix(finished.Int64, 0).UTC()
		r.FinishedAt = &t
	}
	return r, nil
}

// LoadBuffer returns the call buffer recorded for a run.
func (s *Store) LoadBuffer(ctx context.Context, id string) (*ir.CallBuffer, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT buffer FROM run_buffers WHERE run_id = ?`, id).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load buffer %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load buffer %s: %w", id, err)
	}
	return decompressBuffer(blob)
}

// RunRefs returns the rows a run creates and deletes, in category and
// index order.
func (s *Store) RunRefs(ctx context.Context, id string) (created, deleted []Ref, err error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT op, category, idx FROM run_refs
		WHERE run_id = ?
		ORDER BY category COLLATE BINARY ASC, idx ASC
	`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query run refs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var op string
		var ref Ref
		if err := rows.Scan(&op, &ref.Category, &ref.Index); err != nil {
			return nil, nil, fmt.Errorf("scan run ref: %w", err)
		}
		if op == "create" {
			created = append(created, ref)
		} else {
			deleted = append(deleted, ref)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate run refs: %w", err)
	}
	return created, deleted, nil
}

// DeployedIndices returns the deployed indices of a category on a world in
// ascending order.
func (s *Store) DeployedIndices(ctx context.Context, world, category string) ([]uint32, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT idx FROM deployed
		WHERE world = ? AND category = ?
		ORDER BY idx ASC
	`, normalizeWorld(world), category)
	if err != nil {
		return nil, fmt.Errorf("query deployed: %w", err)
	}
	defer rows.Close()

	out := []uint32{}
	for rows.Next() {
		var idx uint32
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("scan deployed: %w", err)
		}
		out = append(out, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deployed: %w", err)
	}
	return out, nil
}

// WorldIndex answers whether a row is deployed on one world. It satisfies
// the orchestrator's Deployed interface.
type WorldIndex struct {
	s     *Store
	world string
}

// Deployed returns the deployed-row index of world.
func (s *Store) Deployed(world string) WorldIndex {
	return WorldIndex{s: s, world: normalizeWorld(world)}
}

// IsDeployed reports whether index of category is deployed on the world.
func (w WorldIndex) IsDeployed(ctx context.Context, category string, index uint32) (bool, error) {
	var n int
	err := w.s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM deployed WHERE world = ? AND category = ? AND idx = ?
	`, w.world, category, index).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query deployed: %w", err)
	}
	return n > 0, nil
}
