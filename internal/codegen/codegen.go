// Package codegen renders the deploy configuration and a call buffer into
// generated artifacts: the init script that replays the buffer, the imports
// script, TypeScript bindings for systems and components, and the Go
// signature table the admin facade encodes against.
//
// Rendering is deterministic. The same configuration and buffer always
// produce byte-identical artifacts.
package codegen

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"go/format"
	"strings"
	"text/template"

	"github.com/roach88/worldsmith/internal/deployconf"
	"github.com/roach88/worldsmith/internal/ids"
	"github.com/roach88/worldsmith/internal/ir"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Kind names an artifact.
type Kind string

const (
	KindInitScript   Kind = "init-script"
	KindImports      Kind = "imports"
	KindSystemsTS    Kind = "systems-ts"
	KindComponentsTS Kind = "components-ts"
	KindGoBindings   Kind = "go-bindings"
)

// Fixed output paths, relative to the output directory.
const (
	PathInitScript   = "script/InitWorld.s.sol"
	PathImports      = "script/Imports.sol"
	PathSystemsTS    = "types/systems.ts"
	PathComponentsTS = "types/components.ts"
	GoBindingsFile   = "systems_gen.go"
)

// DefaultGoPackage is the package the Go bindings are generated into.
const DefaultGoPackage = "admin"

// Artifact is one rendered file.
type Artifact struct {
	Kind    Kind
	Path    string
	Content []byte
}

// Digest returns the content digest of the artifact.
func (a Artifact) Digest() string {
	return ir.ArtifactDigest(a.Content)
}

// Options selects what a Render pass produces.
type Options struct {
	Pass deployconf.Pass

	// Calls, when set, renders the init script replaying them. Every call
	// must target a system in the configuration.
	Calls *ir.CallBuffer

	// GoPackage names the package of the Go bindings. Empty means
	// DefaultGoPackage.
	GoPackage string

	// ScriptsOnly renders the init and imports scripts and skips the
	// TypeScript and Go bindings.
	ScriptsOnly bool
}

// Generator renders artifacts for one deploy configuration.
type Generator struct {
	tmpl    *template.Template
	systems []systemData
	comps   []componentData
	byID    map[string]systemData
}

type systemData struct {
	Name     string
	GoName   string
	ID       string
	Numeric  string
	Function string
	Params   []string
}

type componentData struct {
	Name    string
	ID      string
	Numeric string
	Value   string
}

// New prepares a generator for cfg.
func New(cfg *deployconf.Config) (*Generator, error) {
	table, err := cfg.Identifiers()
	if err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}
	tmpl, err := template.New("codegen").Funcs(template.FuncMap{
		"json":     jsonString,
		"jsonList": jsonList,
		"goList":   goList,
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("codegen: parse templates: %w", err)
	}

	g := &Generator{tmpl: tmpl, byID: make(map[string]systemData, len(cfg.Systems))}
	for _, s := range cfg.Systems {
		id, _ := table.Lookup(s.Name)
		sd := systemData{
			Name:     s.Name,
			GoName:   "System" + strings.TrimSuffix(s.Name, "System"),
			ID:       s.ID,
			Numeric:  id.Hex(),
			Function: s.Function,
			Params:   s.Params,
		}
		g.systems = append(g.systems, sd)
		g.byID[s.ID] = sd
	}
	for _, c := range cfg.Components {
		id, _ := table.Lookup(c.Name)
		g.comps = append(g.comps, componentData{Name: c.Name, ID: c.ID, Numeric: id.Hex(), Value: c.Value})
	}
	return g, nil
}

// Render produces the artifacts of one pass, in a fixed order. A components
// pass renders the imports script and component bindings; a systems pass the
// imports script, system bindings and Go bindings; a full pass all of them.
// The init script is rendered whenever Calls is set.
func (g *Generator) Render(opts Options) ([]Artifact, error) {
	pkg := opts.GoPackage
	if pkg == "" {
		pkg = DefaultGoPackage
	}
	withSystems := opts.Pass != deployconf.PassComponents
	withComponents := opts.Pass != deployconf.PassSystems

	var arts []Artifact
	if opts.Calls != nil {
		a, err := g.InitScript(opts.Calls)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}

	data := map[string]any{"Package": pkg}
	if withSystems {
		data["Systems"] = g.systems
	}
	if withComponents {
		data["Components"] = g.comps
	}
	a, err := g.render(KindImports, PathImports, "imports.sol.tmpl", data)
	if err != nil {
		return nil, err
	}
	arts = append(arts, a)
	if opts.ScriptsOnly {
		return arts, nil
	}

	if withSystems {
		a, err := g.render(KindSystemsTS, PathSystemsTS, "systems.ts.tmpl", data)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	if withComponents {
		a, err := g.render(KindComponentsTS, PathComponentsTS, "components.ts.tmpl", data)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	if withSystems && len(g.systems) > 0 {
		a, err := g.GoBindings(pkg)
		if err != nil {
			return nil, err
		}
		arts = append(arts, a)
	}
	return arts, nil
}

// InitScript renders the script that replays calls against a world.
func (g *Generator) InitScript(calls *ir.CallBuffer) (Artifact, error) {
	digest, err := ir.Digest(calls)
	if err != nil {
		return Artifact{}, fmt.Errorf("codegen: %w", err)
	}
	statements := make([]string, 0, calls.Len())
	for i, c := range calls.Calls() {
		stmt, err := g.statement(c)
		if err != nil {
			return Artifact{}, fmt.Errorf("codegen: call %d: %w", i, err)
		}
		statements = append(statements, stmt)
	}
	return g.render(KindInitScript, PathInitScript, "init_world.sol.tmpl", map[string]any{
		"Digest":     digest,
		"Count":      calls.Len(),
		"Statements": statements,
	})
}

// statement renders one call. Literal calls invoke the system function
// directly; encoded calls go through the system's execute(bytes) entry point,
// which decodes into the default function.
func (g *Generator) statement(c ir.SystemCall) (string, error) {
	s, ok := g.byID[c.SystemID]
	if !ok {
		return "", fmt.Errorf("system %q is not in the deploy configuration", c.SystemID)
	}
	target := fmt.Sprintf("%s(getAddressById(systems, %sID))", s.Name, s.Name)
	if c.IsLiteral() {
		return fmt.Sprintf("%s.%s(%s);", target, c.Function, c.Literal), nil
	}
	if c.Function != ir.DefaultFunction {
		return "", fmt.Errorf("encoded call to %s.%s: only %s replays through execute", c.SystemID, c.Function, ir.DefaultFunction)
	}
	return fmt.Sprintf("%s.execute(hex%q);", target, strings.TrimPrefix(c.Encoded.Hex(), "0x")), nil
}

// GoBindings renders the Go signature table into package pkg.
func (g *Generator) GoBindings(pkg string) (Artifact, error) {
	a, err := g.render(KindGoBindings, pkg+"/"+GoBindingsFile, "systems_gen.go.tmpl", map[string]any{
		"Package": pkg,
		"Systems": g.systems,
	})
	if err != nil {
		return Artifact{}, err
	}
	src, err := format.Source(a.Content)
	if err != nil {
		return Artifact{}, fmt.Errorf("codegen: format %s: %w", a.Path, err)
	}
	a.Content = src
	return a, nil
}

func (g *Generator) render(kind Kind, path, name string, data any) (Artifact, error) {
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return Artifact{}, fmt.Errorf("codegen: render %s: %w", name, err)
	}
	return Artifact{Kind: kind, Path: path, Content: buf.Bytes()}, nil
}

func jsonString(s string) (string, error) {
	b, err := json.Marshal(s)
	return string(b), err
}

func jsonList(items []string) (string, error) {
	quoted := make([]string, len(items))
	for i, it := range items {
		q, err := jsonString(it)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

func goList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = fmt.Sprintf("%q", it)
	}
	return strings.Join(quoted, ", ")
}
