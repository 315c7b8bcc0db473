package encoder

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// literal renders an already coerced value as Solidity source. Fixed-length
// arrays are written inline with every element cast; dynamic arrays go
// through abi.decode of their encoding so the literal is exact for any length.
func literal(t abi.Type, v any) (string, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		n, err := toBig(v)
		if err != nil {
			return "", err
		}
		return n.String(), nil
	case abi.BoolTy:
		return strconv.FormatBool(v.(bool)), nil
	case abi.StringTy:
		return QuoteString(v.(string)), nil
	case abi.AddressTy:
		return "address(" + v.(common.Address).Hex() + ")", nil
	case abi.FixedBytesTy:
		rv := reflect.ValueOf(v)
		raw := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(raw), rv)
		return fmt.Sprintf("bytes%d(0x%s)", t.Size, hex.EncodeToString(raw)), nil
	case abi.ArrayTy:
		rv := reflect.ValueOf(v)
		parts := make([]string, rv.Len())
		for i := range parts {
			lit, err := literal(*t.Elem, rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = castElem(*t.Elem, lit)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case abi.SliceTy:
		packed, err := abi.Arguments{{Type: t}}.Pack(v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("abi.decode(hex\"%s\", (%s))", hex.EncodeToString(packed), t.String()), nil
	}
	return "", fmt.Errorf("unsupported parameter type %s", t.String())
}

// castElem pins the element type of an inline array literal, which Solidity
// otherwise infers from the first element.
func castElem(t abi.Type, lit string) string {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return t.String() + "(" + lit + ")"
	}
	return lit
}

// QuoteString renders s as a Solidity double-quoted string literal. Bytes
// outside printable ASCII are written as \xNN so the literal reproduces the
// exact UTF-8 encoding.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			b.WriteString(`\"`)
		case c == '\\':
			b.WriteString(`\\`)
		case c == '\n':
			b.WriteString(`\n`)
		case c == '\r':
			b.WriteString(`\r`)
		case c == '\t':
			b.WriteString(`\t`)
		case c < 0x20 || c >= 0x7f:
			fmt.Fprintf(&b, `\x%02x`, c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
