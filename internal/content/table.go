package content

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// RowError describes one content row that could not be parsed. Row errors are
// logged and the row is skipped; they never abort a load on their own.
type RowError struct {
	Table  string
	Line   int
	Column string
	Reason string
}

func (e *RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s:%d: column %q: %s", e.Table, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s:%d: %s", e.Table, e.Line, e.Reason)
}

// Table is one parsed CSV file. Cells are trimmed and NFC-normalized.
type Table struct {
	Name    string
	header  map[string]int
	Records []Record
}

// Record is one data row of a Table.
type Record struct {
	Table string
	Line  int
	cells []string
	cols  map[string]int
}

func readTable(fsys fs.FS, name string) (*Table, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	head, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: missing header row", name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	t := &Table{Name: name, header: make(map[string]int, len(head))}
	for i, h := range head {
		h = cleanCell(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			continue
		}
		if _, dup := t.header[h]; dup {
			return nil, fmt.Errorf("%s: duplicate column %q", name, h)
		}
		t.header[h] = i
	}

	for {
		cells, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if blank(cells) {
			continue
		}
		for i := range cells {
			cells[i] = cleanCell(cells[i])
		}
		line, _ := r.FieldPos(0)
		t.Records = append(t.Records, Record{Table: name, Line: line, cells: cells, cols: t.header})
	}
	return t, nil
}

func cleanCell(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func (r Record) fail(column, format string, args ...any) *RowError {
	return &RowError{Table: r.Table, Line: r.Line, Column: column, Reason: fmt.Sprintf(format, args...)}
}

// Get returns the cell under column, or "" when the column or cell is absent.
func (r Record) Get(column string) string {
	i, ok := r.cols[column]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return r.cells[i]
}

// Require returns the cell under column or a RowError if it is empty.
func (r Record) Require(column string) (string, error) {
	v := r.Get(column)
	if v == "" {
		return "", r.fail(column, "required value is empty")
	}
	return v, nil
}

// Uint32 parses a required unsigned 32-bit cell.
func (r Record) Uint32(column string) (uint32, error) {
	v, err := r.Require(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, r.fail(column, "invalid uint32 %q", v)
	}
	return uint32(n), nil
}

// OptUint32 parses an unsigned 32-bit cell, treating empty as zero.
func (r Record) OptUint32(column string) (uint32, error) {
	if r.Get(column) == "" {
		return 0, nil
	}
	return r.Uint32(column)
}

// Int32 parses a signed 32-bit cell, treating empty as zero.
func (r Record) Int32(column string) (int32, error) {
	v := r.Get(column)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, r.fail(column, "invalid int32 %q", v)
	}
	return int32(n), nil
}

// Int64 parses a signed 64-bit cell, treating empty as zero.
func (r Record) Int64(column string) (int64, error) {
	v := r.Get(column)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, r.fail(column, "invalid integer %q", v)
	}
	return n, nil
}

// Uint64 parses an unsigned 64-bit cell, treating empty as zero.
func (r Record) Uint64(column string) (uint64, error) {
	v := r.Get(column)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, r.fail(column, "invalid uint64 %q", v)
	}
	return n, nil
}

// Big parses a non-negative integer cell of at most 256 bits, treating empty
// as zero.
func (r Record) Big(column string) (*big.Int, error) {
	v := r.Get(column)
	if v == "" {
		return new(big.Int), nil
	}
	n, ok := parseBig(v)
	if !ok {
		return nil, r.fail(column, "invalid unsigned 256-bit integer %q", v)
	}
	return n, nil
}

// Bool parses TRUE/FALSE (any case); empty is false.
func (r Record) Bool(column string) (bool, error) {
	switch strings.ToLower(r.Get(column)) {
	case "", "false", "no", "0":
		return false, nil
	case "true", "yes", "1":
		return true, nil
	}
	return false, r.fail(column, "invalid boolean %q", r.Get(column))
}

// Uint32List parses a comma-separated list of unsigned 32-bit values. An empty
// cell is an empty list.
func (r Record) Uint32List(column string) ([]uint32, error) {
	parts := splitList(r.Get(column))
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, r.fail(column, "invalid list element %q", p)
		}
		out = append(out, uint32(n))
	}
	return out, nil
}

// BigList parses a comma-separated list of non-negative integers.
func (r Record) BigList(column string) ([]*big.Int, error) {
	parts := splitList(r.Get(column))
	out := make([]*big.Int, 0, len(parts))
	for _, p := range parts {
		n, ok := parseBig(p)
		if !ok {
			return nil, r.fail(column, "invalid list element %q", p)
		}
		out = append(out, n)
	}
	return out, nil
}

// StringList parses a comma-separated list of names.
func (r Record) StringList(column string) []string {
	return splitList(r.Get(column))
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// maxBits is the width of the widest unsigned integer a cell can carry.
const maxBits = 256

func parseBig(s string) (*big.Int, bool) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 || n.BitLen() > maxBits {
		return nil, false
	}
	return n, true
}
