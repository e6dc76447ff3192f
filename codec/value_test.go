package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avense/inkdeploy/types"
)

func TestEncodeValue(t *testing.T) {
	account := types.AccountID{0xAA, 0xBB}

	tests := []struct {
		name     string
		typeName string
		value    any
		want     []byte
	}{
		{"bool true", "bool", true, []byte{0x01}},
		{"u8", "u8", uint8(7), []byte{0x07}},
		{"u32 from int", "u32", 300, []byte{0x2c, 0x01, 0x00, 0x00}},
		{"u64 timestamp", "Timestamp", uint64(1), []byte{0x01, 0, 0, 0, 0, 0, 0, 0}},
		{"balance from big", "Balance", big.NewInt(5), append([]byte{0x05}, make([]byte, 15)...)},
		{"balance from uint64", "u128", uint64(5), append([]byte{0x05}, make([]byte, 15)...)},
		{"string", "String", "ok", []byte{0x08, 'o', 'k'}},
		{"vec u8", "Vec<u8>", []byte{0xDE, 0xAD}, []byte{0x08, 0xDE, 0xAD}},
		{"account id", "AccountId", account, account[:]},
		{"account from raw slice", "AccountId", make([]byte, 32), make([]byte, 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Encoder
			require.NoError(t, EncodeValue(&e, tt.typeName, tt.value))
			assert.Equal(t, tt.want, e.Bytes())
		})
	}
}

func TestEncodeValueMismatch(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		value    any
	}{
		{"bool from string", "bool", "true"},
		{"u8 overflow", "u8", 256},
		{"u32 negative", "u32", -1},
		{"balance negative", "Balance", big.NewInt(-1)},
		{"string from int", "str", 42},
		{"account wrong length", "AccountId", []byte{0x01}},
		{"vec from string", "Vec<u8>", "dead"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Encoder
			err := EncodeValue(&e, tt.typeName, tt.value)
			var mismatch *TypeMismatchError
			assert.ErrorAs(t, err, &mismatch)
		})
	}
}

func TestEncodeValueUnsupportedType(t *testing.T) {
	var e Encoder
	err := EncodeValue(&e, "Vec<AccountId>", nil)
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
