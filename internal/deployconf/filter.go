package deployconf

import (
	"errors"
	"fmt"
)

// ErrExclusiveFilter is returned when a pass selects both components and
// systems.
var ErrExclusiveFilter = errors.New("components and systems filters are mutually exclusive")

// Pass is the kind of generation pass a filter selects.
type Pass int

const (
	PassFull Pass = iota
	PassComponents
	PassSystems
)

func (p Pass) String() string {
	switch p {
	case PassFull:
		return "full"
	case PassComponents:
		return "components"
	case PassSystems:
		return "systems"
	default:
		return fmt.Sprintf("Pass(%d)", int(p))
	}
}

// Filter restricts a generation pass to named components or named systems.
// The zero Filter selects everything.
type Filter struct {
	Components []string
	Systems    []string
}

// Pass reports which pass the filter selects.
func (f Filter) Pass() (Pass, error) {
	switch {
	case len(f.Components) > 0 && len(f.Systems) > 0:
		return 0, ErrExclusiveFilter
	case len(f.Components) > 0:
		return PassComponents, nil
	case len(f.Systems) > 0:
		return PassSystems, nil
	default:
		return PassFull, nil
	}
}

// Apply returns the part of the configuration the filter selects. A
// components pass keeps no systems and a systems pass keeps no components.
// Unknown names are an error.
func (c *Config) Apply(f Filter) (*Config, Pass, error) {
	pass, err := f.Pass()
	if err != nil {
		return nil, 0, err
	}
	switch pass {
	case PassComponents:
		out := &Config{Systems: []System{}}
		for _, name := range dedupe(f.Components) {
			comp, ok := c.Component(name)
			if !ok {
				return nil, pass, fmt.Errorf("unknown component %q", name)
			}
			out.Components = append(out.Components, comp)
		}
		sortConfig(out)
		return out, pass, nil
	case PassSystems:
		out := &Config{Components: []Component{}}
		for _, name := range dedupe(f.Systems) {
			s, ok := c.System(name)
			if !ok {
				return nil, pass, fmt.Errorf("unknown system %q", name)
			}
			out.Systems = append(out.Systems, s)
		}
		sortConfig(out)
		return out, pass, nil
	default:
		return c, pass, nil
	}
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
