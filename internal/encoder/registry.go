// Package encoder maps typed argument values onto a system function's ABI
// parameter list and produces either an ABI-encoded payload or a literal
// argument string for embedding in a generated script.
//
// Parameter lists come from an explicit registry of (system, function)
// signatures rather than ABI introspection; a lookup miss is a hard failure.
package encoder

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ErrNoSignature is returned when no signature is registered for the
// requested (system, function) pair.
var ErrNoSignature = errors.New("no signature registered")

// Signature declares the parameter types of one system function.
type Signature struct {
	System   string   `json:"system"`
	Function string   `json:"function"`
	Params   []string `json:"params"`
}

// String renders the signature as "system.function(type,type)".
func (s Signature) String() string {
	return fmt.Sprintf("%s.%s(%s)", s.System, s.Function, strings.Join(s.Params, ","))
}

type sigKey struct {
	system   string
	function string
}

type entry struct {
	sig  Signature
	args abi.Arguments
}

// Registry resolves (system, function) pairs to parsed ABI argument lists.
// It is immutable after construction and safe for concurrent reads.
type Registry struct {
	entries map[sigKey]entry
}

// NewRegistry parses every signature's parameter types. An unknown type or a
// duplicate (system, function) pair is an error.
func NewRegistry(sigs []Signature) (*Registry, error) {
	r := &Registry{entries: make(map[sigKey]entry, len(sigs))}
	for _, sig := range sigs {
		if sig.System == "" || sig.Function == "" {
			return nil, fmt.Errorf("encoder: signature %q has an empty system or function", sig.String())
		}
		k := sigKey{sig.System, sig.Function}
		if _, dup := r.entries[k]; dup {
			return nil, fmt.Errorf("encoder: duplicate signature for %s.%s", sig.System, sig.Function)
		}
		args := make(abi.Arguments, 0, len(sig.Params))
		for i, p := range sig.Params {
			typ, err := abi.NewType(p, "", nil)
			if err != nil {
				return nil, fmt.Errorf("encoder: %s param %d: %w", sig.String(), i, err)
			}
			args = append(args, abi.Argument{Name: fmt.Sprintf("arg%d", i), Type: typ})
		}
		params := make([]string, len(sig.Params))
		copy(params, sig.Params)
		r.entries[k] = entry{sig: Signature{System: sig.System, Function: sig.Function, Params: params}, args: args}
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error. Use it for
// signature tables compiled into the binary.
func MustRegistry(sigs []Signature) *Registry {
	r, err := NewRegistry(sigs)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the signature registered for system and function.
func (r *Registry) Lookup(system, function string) (Signature, bool) {
	e, ok := r.entries[sigKey{system, function}]
	return e.sig, ok
}

// Signatures returns every registered signature sorted by system then
// function.
func (r *Registry) Signatures() []Signature {
	out := make([]Signature, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.sig)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].System != out[j].System {
			return out[i].System < out[j].System
		}
		return out[i].Function < out[j].Function
	})
	return out
}

func (r *Registry) resolve(system, function string) (entry, error) {
	e, ok := r.entries[sigKey{system, function}]
	if !ok {
		return entry{}, fmt.Errorf("encoder: %s.%s: %w", system, function, ErrNoSignature)
	}
	return e, nil
}

// Encode ABI tuple-encodes args against the registered parameter list.
func (r *Registry) Encode(system, function string, args ...any) ([]byte, error) {
	e, err := r.resolve(system, function)
	if err != nil {
		return nil, err
	}
	values, err := coerceAll(e, args)
	if err != nil {
		return nil, err
	}
	out, err := e.args.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("encoder: pack %s: %w", e.sig.String(), err)
	}
	return out, nil
}

// Literalize renders args as a comma-separated list of Solidity literals
// matching the registered parameter list.
func (r *Registry) Literalize(system, function string, args ...any) (string, error) {
	e, err := r.resolve(system, function)
	if err != nil {
		return "", err
	}
	values, err := coerceAll(e, args)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(values))
	for i, v := range values {
		lit, err := literal(e.args[i].Type, v)
		if err != nil {
			return "", &ArgError{Signature: e.sig, Position: i, Type: e.sig.Params[i], Err: err}
		}
		parts[i] = lit
	}
	return strings.Join(parts, ", "), nil
}

func coerceAll(e entry, args []any) ([]any, error) {
	if len(args) != len(e.args) {
		return nil, fmt.Errorf("encoder: %s expects %d args, got %d", e.sig.String(), len(e.args), len(args))
	}
	out := make([]any, len(args))
	for i, a := range args {
		v, err := coerce(e.args[i].Type, a)
		if err != nil {
			return nil, &ArgError{Signature: e.sig, Position: i, Type: e.sig.Params[i], Err: err}
		}
		out[i] = v
	}
	return out, nil
}

// ArgError reports an argument that could not be mapped onto its declared
// parameter type.
type ArgError struct {
	Signature Signature
	Position  int
	Type      string
	Err       error
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("encoder: %s arg %d (%s): %v", e.Signature.String(), e.Position, e.Type, e.Err)
}

func (e *ArgError) Unwrap() error {
	return e.Err
}
