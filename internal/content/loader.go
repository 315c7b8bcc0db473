// Package content parses the game-design content tables (one CSV per
// category plus optional sub-tables) into typed rows.
//
// Rows are filtered by a Selection: by Status for a full init, or by an
// explicit index list for scoped runs. A malformed row is logged and
// skipped; the loader only fails on I/O or a missing top-level table.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/big"
	"os"
	"path"
)

// Loader reads content tables from a directory tree.
type Loader struct {
	fsys   fs.FS
	prefix string
	logger *slog.Logger
	report *report
}

type report struct {
	errs []*RowError
}

// NewLoader creates a loader over fsys. A nil logger uses slog.Default().
func NewLoader(fsys fs.FS, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{fsys: fsys, logger: logger, report: &report{}}
}

// Open creates a loader over a content directory on disk.
func Open(dir string, logger *slog.Logger) (*Loader, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("content directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content directory: not a directory: %s", dir)
	}
	return NewLoader(os.DirFS(dir), logger), nil
}

// Sub returns a loader rooted at a subdirectory. Row errors are shared with
// the parent.
func (l *Loader) Sub(dir string) *Loader {
	return &Loader{fsys: l.fsys, prefix: path.Join(l.prefix, dir), logger: l.logger, report: l.report}
}

// RowErrors returns every row error recorded so far, in order.
func (l *Loader) RowErrors() []*RowError {
	out := make([]*RowError, len(l.report.errs))
	copy(out, l.report.errs)
	return out
}

// Skipped returns the number of rows skipped so far.
func (l *Loader) Skipped() int {
	return len(l.report.errs)
}

func (l *Loader) skip(err error) {
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		rowErr = &RowError{Reason: err.Error()}
	}
	l.report.errs = append(l.report.errs, rowErr)
	l.logger.Warn("skipping content row",
		"table", rowErr.Table,
		"line", rowErr.Line,
		"column", rowErr.Column,
		"reason", rowErr.Reason)
}

// table reads name. A missing optional table is empty; a missing required
// table is an error.
func (l *Loader) table(name string, required bool) (*Table, error) {
	full := path.Join(l.prefix, name)
	t, err := readTable(l.fsys, full)
	if errors.Is(err, fs.ErrNotExist) {
		if required {
			return nil, fmt.Errorf("content table %s: %w", full, err)
		}
		return &Table{Name: full, header: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("content table: %w", err)
	}
	return t, nil
}

// selectRows parses every selected top-level row of t in table order.
// Duplicate indices are row errors for every occurrence after the first.
func selectRows[T any](l *Loader, t *Table, sel Selection, parse func(Record, uint32) (T, error)) []T {
	var out []T
	seen := make(map[uint32]bool, len(t.Records))
	for _, rec := range t.Records {
		idx, err := rec.Uint32("Index")
		if err != nil {
			l.skip(err)
			continue
		}
		if seen[idx] {
			l.skip(rec.fail("Index", "duplicate index %d", idx))
			continue
		}
		seen[idx] = true
		if !sel.Includes(idx, rec.Get("Status")) {
			continue
		}
		row, err := parse(rec, idx)
		if err != nil {
			l.skip(err)
			continue
		}
		out = append(out, row)
	}
	return out
}

// groupBy parses a sub-table and groups its rows by the parent index column,
// keeping table order within each group.
func groupBy[T any](l *Loader, t *Table, parent string, parse func(Record) (T, error)) map[uint32][]T {
	out := make(map[uint32][]T)
	for _, rec := range t.Records {
		idx, err := rec.Uint32(parent)
		if err != nil {
			l.skip(err)
			continue
		}
		row, err := parse(rec)
		if err != nil {
			l.skip(err)
			continue
		}
		out[idx] = append(out[idx], row)
	}
	return out
}

// subTable reads an optional sub-table and groups it by parent.
func subTable[T any](l *Loader, name, parent string, parse func(Record) (T, error)) (map[uint32][]T, error) {
	t, err := l.table(name, false)
	if err != nil {
		return nil, err
	}
	return groupBy(l, t, parent, parse), nil
}

func parseCondition(rec Record) (Condition, error) {
	typ, err := rec.Require("Type")
	if err != nil {
		return Condition{}, err
	}
	idx, err := rec.OptUint32("Index")
	if err != nil {
		return Condition{}, err
	}
	val, err := rec.Big("Value")
	if err != nil {
		return Condition{}, err
	}
	return Condition{Type: typ, Logic: rec.Get("Logic"), Index: idx, Value: val}, nil
}

func parseReward(rec Record) (Reward, error) {
	typ, err := rec.Require("Type")
	if err != nil {
		return Reward{}, err
	}
	val, err := rec.Big("Value")
	if err != nil {
		return Reward{}, err
	}
	r := Reward{Type: typ, Value: val}
	if r.IsDroptable() {
		r.Keys, r.Weights, err = parseDrops(rec)
		return r, err
	}
	r.Index, err = rec.OptUint32("Index")
	return r, err
}

func parseDrops(rec Record) ([]uint32, []*big.Int, error) {
	keys, err := rec.Uint32List("Keys")
	if err != nil {
		return nil, nil, err
	}
	weights, err := rec.BigList("Weights")
	if err != nil {
		return nil, nil, err
	}
	if len(keys) == 0 {
		return nil, nil, rec.fail("Keys", "droptable has no keys")
	}
	if len(keys) != len(weights) {
		return nil, nil, rec.fail("Weights", "%d keys but %d weights", len(keys), len(weights))
	}
	return keys, weights, nil
}
