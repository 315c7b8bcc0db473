package encoder

import (
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// ErrOutOfRange is wrapped by argument errors for integers that do not fit
// their declared width. The value is well formed; only its size is wrong.
var ErrOutOfRange = errors.New("value out of range")

// coerce converts a loosely typed value into the exact Go type the abi
// package packs for t. Integers are range-checked against the declared
// width. Fixed-length arrays take the first N values and zero-pad the rest.
func coerce(t abi.Type, v any) (any, error) {
	switch t.T {
	case abi.UintTy, abi.IntTy:
		return coerceInt(t, v)
	case abi.BoolTy:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(b)) {
			case "true":
				return true, nil
			case "false", "":
				return false, nil
			}
		}
		return nil, fmt.Errorf("cannot use %T as bool", v)
	case abi.StringTy:
		switch s := v.(type) {
		case string:
			return s, nil
		case fmt.Stringer:
			return s.String(), nil
		}
		return nil, fmt.Errorf("cannot use %T as string", v)
	case abi.AddressTy:
		switch a := v.(type) {
		case common.Address:
			return a, nil
		case string:
			if !common.IsHexAddress(a) {
				return nil, fmt.Errorf("invalid address %q", a)
			}
			return common.HexToAddress(a), nil
		}
		return nil, fmt.Errorf("cannot use %T as address", v)
	case abi.FixedBytesTy:
		return coerceFixedBytes(t, v)
	case abi.SliceTy:
		elems, err := elements(v)
		if err != nil {
			return nil, err
		}
		out := reflect.MakeSlice(t.GetType(), len(elems), len(elems))
		for i, e := range elems {
			c, err := coerce(*t.Elem, e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(c))
		}
		return out.Interface(), nil
	case abi.ArrayTy:
		elems, err := elements(v)
		if err != nil {
			return nil, err
		}
		out := reflect.New(t.GetType()).Elem()
		for i := 0; i < t.Size && i < len(elems); i++ {
			c, err := coerce(*t.Elem, elems[i])
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Index(i).Set(reflect.ValueOf(c))
		}
		return out.Interface(), nil
	}
	return nil, fmt.Errorf("unsupported parameter type %s", t.String())
}

func coerceInt(t abi.Type, v any) (any, error) {
	n, err := toBig(v)
	if err != nil {
		return nil, err
	}
	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("%w: negative value %s for %s", ErrOutOfRange, n, t.String())
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("%w: value %s overflows %s", ErrOutOfRange, n, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		low := new(big.Int).Neg(limit)
		if n.Cmp(low) < 0 || n.Cmp(limit) >= 0 {
			return nil, fmt.Errorf("%w: value %s overflows %s", ErrOutOfRange, n, t.String())
		}
	}
	rt := t.GetType()
	if rt == bigIntType {
		return n, nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(rt).Interface(), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(rt).Interface(), nil
}

// toBig accepts Go integers, *big.Int, 32-byte words and decimal or 0x-hex
// strings.
func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return new(big.Int), nil
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case [32]byte:
		return new(big.Int).SetBytes(n[:]), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return new(big.Int), nil
		}
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, base = s[2:], 16
		}
		out, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("invalid integer %q", n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

func coerceFixedBytes(t abi.Type, v any) (any, error) {
	var raw []byte
	switch b := v.(type) {
	case [32]byte:
		raw = b[:]
	case []byte:
		raw = b
	case string:
		raw = common.FromHex(b)
	case *big.Int:
		raw = common.LeftPadBytes(b.Bytes(), t.Size)
	default:
		return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
	}
	if len(raw) > t.Size {
		return nil, fmt.Errorf("%d bytes do not fit %s", len(raw), t.String())
	}
	out := reflect.New(t.GetType()).Elem()
	reflect.Copy(out, reflect.ValueOf(raw))
	return out.Interface(), nil
}

// elements flattens any slice or array value into a []any.
func elements(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if a, ok := v.([]any); ok {
		return a, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot use %T as array", v)
}
