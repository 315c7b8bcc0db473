package deployconf

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var markerPattern = regexp.MustCompile(`keccak256\(\s*"([^"]+)"\s*\)`)

// Marker is one keccak256("<id>") identifier marker in a contract source.
type Marker struct {
	ID   string
	File string
	Line int
}

// Source is the identifier markers found in one contract source file.
type Source struct {
	File    string
	Markers []Marker
}

// ScanMarkers walks root for Solidity sources and returns the identifier
// markers of each, keyed by contract name (the file name without .sol). When
// two files share a name the first in lexical order wins.
func ScanMarkers(root string) (map[string]Source, error) {
	out := make(map[string]Source)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sol" {
			return nil
		}
		markers, err := scanFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(d.Name(), ".sol")
		if _, dup := out[name]; !dup {
			out[name] = Source{File: path, Markers: markers}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan markers: %w", err)
	}
	return out, nil
}

func scanFile(path string) ([]Marker, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	markers := []Marker{}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		for _, m := range markerPattern.FindAllStringSubmatch(sc.Text(), -1) {
			markers = append(markers, Marker{ID: m[1], File: path, Line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return markers, nil
}

// ProblemKind classifies a verification failure.
type ProblemKind string

const (
	ProblemNoSource ProblemKind = "no-source"
	ProblemNoMarker ProblemKind = "no-marker"
	ProblemMismatch ProblemKind = "mismatch"
)

// Problem is a contract whose source does not declare its configured
// identifier.
type Problem struct {
	Kind     ProblemKind `json:"kind"`
	Name     string      `json:"name"`
	Declared string      `json:"declared"`
	Found    string      `json:"found,omitempty"`
	File     string      `json:"file,omitempty"`
	Line     int         `json:"line,omitempty"`
}

func (p Problem) String() string {
	switch p.Kind {
	case ProblemNoSource:
		return fmt.Sprintf("%s: no source file for %q", p.Name, p.Declared)
	case ProblemNoMarker:
		return fmt.Sprintf("%s: %s has no keccak256 identifier marker", p.Name, p.File)
	default:
		return fmt.Sprintf("%s:%d: %s declares %q, config has %q", p.File, p.Line, p.Name, p.Found, p.Declared)
	}
}

// Verify checks every configured system and component against the markers
// in its source. A contract passes when any of its markers equals the
// configured identifier. Problems are sorted by contract name.
func (c *Config) Verify(sources map[string]Source) []Problem {
	var problems []Problem
	check := func(name, declared string) {
		src, ok := sources[name]
		found := src.Markers
		switch {
		case !ok:
			problems = append(problems, Problem{Kind: ProblemNoSource, Name: name, Declared: declared})
		case len(found) == 0:
			problems = append(problems, Problem{Kind: ProblemNoMarker, Name: name, Declared: declared, File: src.File})
		default:
			for _, m := range found {
				if m.ID == declared {
					return
				}
			}
			problems = append(problems, Problem{
				Kind:     ProblemMismatch,
				Name:     name,
				Declared: declared,
				Found:    found[0].ID,
				File:     found[0].File,
				Line:     found[0].Line,
			})
		}
	}
	for _, comp := range c.Components {
		check(comp.Name, comp.ID)
	}
	for _, s := range c.Systems {
		check(s.Name, s.ID)
	}
	sort.Slice(problems, func(i, j int) bool { return problems[i].Name < problems[j].Name })
	return problems
}
