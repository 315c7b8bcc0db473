package ir

import (
	"encoding/json"
	"fmt"
)

// Sink receives SystemCalls in order. Admin API leaves write to a Sink and
// never read from it.
type Sink interface {
	Append(call SystemCall)
}

// CallBuffer is the ordered, append-only sequence of SystemCalls produced by
// one orchestration run.
//
// Order invariant: call order == category execution order == row order
// within a category == sub-call order within a row.
//
// A CallBuffer is not safe for concurrent use; orchestration is sequential
// and appends happen strictly one after another.
type CallBuffer struct {
	calls []SystemCall
}

// NewCallBuffer creates an empty buffer.
func NewCallBuffer() *CallBuffer {
	return &CallBuffer{}
}

// Append adds a call to the end of the buffer.
func (b *CallBuffer) Append(call SystemCall) {
	b.calls = append(b.calls, call)
}

// Extend appends every call of other, in order.
func (b *CallBuffer) Extend(other *CallBuffer) {
	if other == nil {
		return
	}
	b.calls = append(b.calls, other.calls...)
}

// Len returns the number of calls.
func (b *CallBuffer) Len() int {
	return len(b.calls)
}

// At returns the call at position i.
func (b *CallBuffer) At(i int) SystemCall {
	return b.calls[i]
}

// Calls returns a copy of the calls in order.
func (b *CallBuffer) Calls() []SystemCall {
	out := make([]SystemCall, len(b.calls))
	copy(out, b.calls)
	return out
}

// Systems returns the target system of every call, in order.
func (b *CallBuffer) Systems() []string {
	out := make([]string, len(b.calls))
	for i, c := range b.calls {
		out[i] = c.SystemID
	}
	return out
}

// bufferDocument is the exported form of a buffer.
type bufferDocument struct {
	Format string       `json:"format"`
	Digest string       `json:"digest"`
	Calls  []SystemCall `json:"calls"`
}

// MarshalDocument renders the buffer with its format version and digest as
// indented JSON for export.
func (b *CallBuffer) MarshalDocument() ([]byte, error) {
	digest, err := Digest(b)
	if err != nil {
		return nil, err
	}
	calls := b.calls
	if calls == nil {
		calls = []SystemCall{}
	}
	return json.MarshalIndent(bufferDocument{
		Format: BufferFormat,
		Digest: digest,
		Calls:  calls,
	}, "", "  ")
}

// UnmarshalDocument parses an exported buffer and verifies its digest.
func UnmarshalDocument(data []byte) (*CallBuffer, error) {
	var doc bufferDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse call buffer: %w", err)
	}
	if doc.Format != BufferFormat {
		return nil, fmt.Errorf("parse call buffer: unsupported format %q", doc.Format)
	}
	buf := &CallBuffer{calls: doc.Calls}
	digest, err := Digest(buf)
	if err != nil {
		return nil, err
	}
	if doc.Digest != "" && doc.Digest != digest {
		return nil, fmt.Errorf("parse call buffer: digest mismatch (file %s, computed %s)", doc.Digest, digest)
	}
	return buf, nil
}
