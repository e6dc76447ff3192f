package codec

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/avense/inkdeploy/types"
)

// ErrUnsupportedType is returned for a metadata type descriptor this codec
// cannot encode.
var ErrUnsupportedType = errors.New("codec: unsupported parameter type")

// TypeMismatchError reports a Go value that cannot be encoded as the
// declared metadata type.
type TypeMismatchError struct {
	Type  string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("codec: cannot encode %T as %s", e.Value, e.Type)
}

// EncodeValue encodes a constructor argument value according to its
// metadata type descriptor. Descriptors are the display names found in ink!
// metadata ("u128", "Balance", "AccountId", "Vec<u8>", ...). The mapping is
// deliberately coarse: it checks representability, not registry identity.
func EncodeValue(e *Encoder, typeName string, v any) error {
	switch normalizeType(typeName) {
	case "bool":
		b, ok := v.(bool)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.Bool(b)
		return nil
	case "u8":
		n, ok := toUint(v, 8)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.U8(uint8(n))
		return nil
	case "u16":
		n, ok := toUint(v, 16)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.U16(uint16(n))
		return nil
	case "u32":
		n, ok := toUint(v, 32)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.U32(uint32(n))
		return nil
	case "u64", "timestamp", "moment", "blocknumber":
		n, ok := toUint(v, 64)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.U64(n)
		return nil
	case "u128", "balance":
		b, ok := toBig(v)
		if !ok || b.Sign() < 0 {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		return e.U128(b)
	case "string", "str":
		s, ok := v.(string)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.String(s)
		return nil
	case "vec<u8>":
		b, ok := v.([]byte)
		if !ok {
			return &TypeMismatchError{Type: typeName, Value: v}
		}
		e.BytesValue(b)
		return nil
	case "accountid", "[u8;32]", "hash":
		switch id := v.(type) {
		case types.AccountID:
			e.Raw(id[:])
			return nil
		case types.Hash:
			e.Raw(id[:])
			return nil
		case [32]byte:
			e.Raw(id[:])
			return nil
		case []byte:
			if len(id) != 32 {
				return &TypeMismatchError{Type: typeName, Value: v}
			}
			e.Raw(id)
			return nil
		default:
			return &TypeMismatchError{Type: typeName, Value: v}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedType, typeName)
	}
}

func normalizeType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	return strings.ReplaceAll(t, " ", "")
}

func toUint(v any, bits int) (uint64, bool) {
	var n uint64
	switch x := v.(type) {
	case uint:
		n = uint64(x)
	case uint8:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case int:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case int64:
		if x < 0 {
			return 0, false
		}
		n = uint64(x)
	case *big.Int:
		if x.Sign() < 0 || !x.IsUint64() {
			return 0, false
		}
		n = x.Uint64()
	default:
		return 0, false
	}
	if bits < 64 && n >= 1<<uint(bits) {
		return 0, false
	}
	return n, true
}

func toBig(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case *big.Int:
		return x, true
	case uint64:
		return new(big.Int).SetUint64(x), true
	case uint:
		return new(big.Int).SetUint64(uint64(x)), true
	case int:
		return big.NewInt(int64(x)), true
	case int64:
		return big.NewInt(x), true
	default:
		return nil, false
	}
}
