package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roomCall(payload byte) SystemCall {
	return SystemCall{SystemID: "system.room.create", Function: DefaultFunction, Encoded: Payload{payload, 0x01}}
}

func TestCallBuffer_AppendPreservesOrder(t *testing.T) {
	b := NewCallBuffer()
	b.Append(roomCall(1))
	b.Append(SystemCall{SystemID: "system.node.create", Function: DefaultFunction, Encoded: Payload{2}})
	b.Append(roomCall(3))

	require.Equal(t, 3, b.Len())
	assert.Equal(t, []string{"system.room.create", "system.node.create", "system.room.create"}, b.Systems())
	assert.Equal(t, Payload{3, 0x01}, b.At(2).Encoded)
}

func TestCallBuffer_CallsReturnsCopy(t *testing.T) {
	b := NewCallBuffer()
	b.Append(roomCall(1))

	calls := b.Calls()
	calls[0].SystemID = "mutated"
	assert.Equal(t, "system.room.create", b.At(0).SystemID)
}

func TestCallBuffer_Extend(t *testing.T) {
	a := NewCallBuffer()
	a.Append(roomCall(1))
	b := NewCallBuffer()
	b.Append(roomCall(2))
	b.Append(roomCall(3))

	a.Extend(b)
	a.Extend(nil)
	require.Equal(t, 3, a.Len())
	assert.Equal(t, byte(2), a.At(1).Encoded[0])
}

func TestDigest_DeterministicAndOrderSensitive(t *testing.T) {
	build := func(order ...byte) *CallBuffer {
		b := NewCallBuffer()
		for _, o := range order {
			b.Append(roomCall(o))
		}
		return b
	}

	d1 := MustDigest(build(1, 2))
	d2 := MustDigest(build(1, 2))
	d3 := MustDigest(build(2, 1))

	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)
	assert.Len(t, d1, 64)
}

func TestDigest_EmptyBuffer(t *testing.T) {
	d, err := Digest(NewCallBuffer())
	require.NoError(t, err)
	assert.Equal(t, hashWithDomain(DomainBuffer, []byte("[]")), d)
}

func TestMarshalCanonicalBuffer(t *testing.T) {
	b := NewCallBuffer()
	b.Append(SystemCall{SystemID: "system.npc.create", Function: DefaultFunction, Encoded: Payload{0xab}})
	b.Append(SystemCall{SystemID: "system.config.set", Function: DefaultFunction, Literal: `"A", 1`})

	out, err := MarshalCanonicalBuffer(b)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"encoded":"0xab","function":"executeTyped","system_id":"system.npc.create"},`+
			`{"function":"executeTyped","literal":"\"A\", 1","system_id":"system.config.set"}]`,
		string(out))
}

func TestMarshalCanonical_Values(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", `"hello"`},
		{"no html escape", "<a&b>", `"<a&b>"`},
		{"int", 42, "42"},
		{"uint32", uint32(7), "7"},
		{"bool", true, "true"},
		{"sorted keys", map[string]any{"b": 1, "a": 2}, `{"a":2,"b":1}`},
		{"array", []any{"x", int64(-1)}, `["x",-1]`},
		{"line separator kept", "a\u2028b", "\"a\u2028b\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestMarshalCanonical_RejectsFloatAndNull(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.Error(t, err)
	_, err = MarshalCanonical(nil)
	assert.Error(t, err)
	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.Error(t, err)
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301"
	out, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(out))
}

func TestBufferDocument_RoundTrip(t *testing.T) {
	b := NewCallBuffer()
	b.Append(roomCall(9))
	b.Append(SystemCall{SystemID: "system.config.set", Function: DefaultFunction, Literal: `"X", 3`})

	data, err := b.MarshalDocument()
	require.NoError(t, err)

	parsed, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, b.Calls(), parsed.Calls())
	assert.Equal(t, MustDigest(b), MustDigest(parsed))
}

func TestBufferDocument_DigestMismatch(t *testing.T) {
	b := NewCallBuffer()
	b.Append(roomCall(1))
	data, err := b.MarshalDocument()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	doc["digest"] = "00"
	tampered, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = UnmarshalDocument(tampered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "digest mismatch")
}

func TestSystemCall_String(t *testing.T) {
	assert.Equal(t, "system.room.create.executeTyped(2 bytes)", roomCall(1).String())
	lit := SystemCall{SystemID: "system.config.set", Function: DefaultFunction, Literal: `"A", 1`}
	assert.True(t, lit.IsLiteral())
	assert.Equal(t, `system.config.set.executeTyped("A", 1)`, lit.String())
}
