package ir

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultFunction is the entry point every system exposes for typed calls.
const DefaultFunction = "executeTyped"

// SystemCall is one desired contract invocation: a target system, the
// function to call on it, and its arguments in exactly one of two forms.
//
// Encoded holds the ABI tuple encoding of the arguments. Literal holds the
// same arguments rendered as source-level literals, used when the call site
// is itself a generated script. A SystemCall is never mutated after it is
// appended to a buffer.
type SystemCall struct {
	SystemID string  `json:"system_id"`
	Function string  `json:"function"`
	Encoded  Payload `json:"encoded,omitempty"`
	Literal  string  `json:"literal,omitempty"`
}

// IsLiteral reports whether the call carries literal rather than encoded
// arguments.
func (c SystemCall) IsLiteral() bool {
	return c.Literal != "" && len(c.Encoded) == 0
}

// String renders the call for logs.
func (c SystemCall) String() string {
	if c.IsLiteral() {
		return fmt.Sprintf("%s.%s(%s)", c.SystemID, c.Function, c.Literal)
	}
	return fmt.Sprintf("%s.%s(%d bytes)", c.SystemID, c.Function, len(c.Encoded))
}

// Payload is ABI-encoded call data. It serializes as a 0x-prefixed hex
// string rather than base64.
type Payload []byte

// Hex returns the payload as 0x-prefixed lowercase hex.
func (p Payload) Hex() string {
	return "0x" + hex.EncodeToString(p)
}

// MarshalJSON implements json.Marshaler.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Hex())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	s = strings.TrimPrefix(s, "0x")
	raw, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("payload: %w", err)
	}
	*p = raw
	return nil
}
