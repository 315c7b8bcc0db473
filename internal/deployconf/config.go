// Package deployconf loads the deploy configuration: the systems and
// components taking part in a generation pass, each with its declared
// identifier string and entry-point parameter types.
package deployconf

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/worldsmith/internal/encoder"
	"github.com/roach88/worldsmith/internal/ids"
)

//go:embed schema.cue
var schemaSource string

// Component is an on-chain keyed store.
type Component struct {
	Name  string `json:"name"`
	ID    string `json:"id"`
	Value string `json:"value"`
}

// System is an on-chain callable unit.
type System struct {
	Name     string   `json:"name"`
	ID       string   `json:"id"`
	Function string   `json:"function"`
	Params   []string `json:"params"`
}

// Config is a loaded deploy configuration. Components and systems are sorted
// by identifier string.
type Config struct {
	Components []Component
	Systems    []System
}

// Error is a configuration error with its CUE source position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads every CUE file in dir, unifies it with the embedded schema and
// decodes the result.
func Load(dir string) (*Config, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("deploy config: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("deploy config: not a directory: %s", dir)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.cue"))
	if err != nil {
		return nil, fmt.Errorf("deploy config: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("deploy config: no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("deploy config: no CUE instances loaded")
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decode(ctx, value)
}

// Parse decodes a configuration from CUE source text.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()
	value := ctx.CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decode(ctx, value)
}

func decode(ctx *cue.Context, value cue.Value) (*Config, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("deploy config schema: %w", err)
	}
	value = schema.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	cfg := &Config{}
	err := eachField(value, "components", func(name string, v cue.Value) error {
		if !strings.HasSuffix(name, "Component") {
			return &Error{Field: "components." + name, Message: "component names end in Component", Pos: v.Pos()}
		}
		var c Component
		if err := v.Decode(&c); err != nil {
			return formatCUEError(err)
		}
		c.Name = name
		cfg.Components = append(cfg.Components, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	err = eachField(value, "systems", func(name string, v cue.Value) error {
		if !strings.HasSuffix(name, "System") {
			return &Error{Field: "systems." + name, Message: "system names end in System", Pos: v.Pos()}
		}
		var s System
		if err := v.Decode(&s); err != nil {
			return formatCUEError(err)
		}
		s.Name = name
		if s.Params == nil {
			s.Params = []string{}
		}
		cfg.Systems = append(cfg.Systems, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(cfg.Components) == 0 && len(cfg.Systems) == 0 {
		return nil, &Error{Field: "systems", Message: "no systems or components declared"}
	}

	sortConfig(cfg)

	// Decoding into a registry rejects parameter types the ABI parser does
	// not accept even though they match the schema pattern.
	if _, err := cfg.Registry(); err != nil {
		return nil, &Error{Field: "systems", Message: err.Error()}
	}
	if _, err := cfg.Identifiers(); err != nil {
		return nil, &Error{Field: "id", Message: err.Error()}
	}
	return cfg, nil
}

func sortConfig(c *Config) {
	sort.Slice(c.Components, func(i, j int) bool { return c.Components[i].ID < c.Components[j].ID })
	sort.Slice(c.Systems, func(i, j int) bool { return c.Systems[i].ID < c.Systems[j].ID })
}

func eachField(v cue.Value, path string, fn func(name string, v cue.Value) error) error {
	field := v.LookupPath(cue.ParsePath(path))
	if !field.Exists() {
		return nil
	}
	iter, err := field.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

// Signatures returns the entry-point signature of every system, in
// identifier order.
func (c *Config) Signatures() []encoder.Signature {
	out := make([]encoder.Signature, 0, len(c.Systems))
	for _, s := range c.Systems {
		out = append(out, encoder.Signature{System: s.ID, Function: s.Function, Params: s.Params})
	}
	return out
}

// Registry builds a call encoder registry over the configured systems.
func (c *Config) Registry() (*encoder.Registry, error) {
	return encoder.NewRegistry(c.Signatures())
}

// Identifiers derives the numeric id of every system and component.
func (c *Config) Identifiers() (*ids.Table, error) {
	declared := make(map[string]string, len(c.Components)+len(c.Systems))
	for _, comp := range c.Components {
		declared[comp.Name] = comp.ID
	}
	for _, s := range c.Systems {
		declared[s.Name] = s.ID
	}
	return ids.NewTable(declared)
}

// System returns the system declared under name.
func (c *Config) System(name string) (System, bool) {
	for _, s := range c.Systems {
		if s.Name == name {
			return s, true
		}
	}
	return System{}, false
}

// Component returns the component declared under name.
func (c *Config) Component(name string) (Component, bool) {
	for _, comp := range c.Components {
		if comp.Name == name {
			return comp, true
		}
	}
	return Component{}, false
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
