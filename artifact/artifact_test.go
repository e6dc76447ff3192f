package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// paymentBundle mirrors a real ink! bundle for a payment escrow contract:
// a parameterized constructor plus a default one.
const paymentBundle = `{
  "source": {
    "wasm": "0x0061736d01000000"
  },
  "contract": {
    "name": "payment_contract"
  },
  "spec": {
    "constructors": [
      {
        "label": "new",
        "selector": "0x9bae9d5e",
        "payable": false,
        "args": [
          {"label": "threshold_value", "type": {"displayName": ["Balance"]}},
          {"label": "expiry_time", "type": {"displayName": ["Timestamp"]}}
        ]
      },
      {
        "label": "default",
        "selector": "0xed4b9d1b",
        "payable": true,
        "args": []
      }
    ]
  }
}`

func TestLoadBundle(t *testing.T) {
	art, err := LoadBundle([]byte(paymentBundle))
	require.NoError(t, err)

	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}, art.Wasm)
	assert.False(t, art.CodeHash.IsZero())
	assert.Equal(t, "payment_contract", art.Metadata.ContractName)

	require.Len(t, art.Metadata.Constructors, 2)
	ctor := art.Metadata.Constructors[0]
	assert.Equal(t, "new", ctor.Label)
	assert.Equal(t, [4]byte{0x9b, 0xae, 0x9d, 0x5e}, ctor.Selector)
	assert.False(t, ctor.Payable)
	require.Len(t, ctor.Args, 2)
	assert.Equal(t, "threshold_value", ctor.Args[0].Label)
	assert.Equal(t, "Balance", ctor.Args[0].Type)
	assert.Equal(t, "Timestamp", ctor.Args[1].Type)

	assert.True(t, art.Metadata.Constructors[1].Payable)
}

func TestLoadBundlePlainTypeNames(t *testing.T) {
	bundle := `{
	  "source": {"wasm": "00"},
	  "contract": {"name": "t"},
	  "spec": {"constructors": [
	    {"label": "new", "selector": "0x01020304",
	     "args": [{"label": "flag", "type": "bool"}]}
	  ]}
	}`
	art, err := LoadBundle([]byte(bundle))
	require.NoError(t, err)
	assert.Equal(t, "bool", art.Metadata.Constructors[0].Args[0].Type)
}

func TestLoadBundleMalformed(t *testing.T) {
	tests := []struct {
		name   string
		bundle string
	}{
		{"not json", `{]`},
		{"missing wasm", `{"spec":{"constructors":[]}}`},
		{"wasm not hex", `{"source":{"wasm":"0xzz"}}`},
		{"constructor without label", `{
		  "source":{"wasm":"00"},
		  "spec":{"constructors":[{"selector":"0x01020304"}]}
		}`},
		{"selector wrong length", `{
		  "source":{"wasm":"00"},
		  "spec":{"constructors":[{"label":"new","selector":"0x0102"}]}
		}`},
		{"selector missing", `{
		  "source":{"wasm":"00"},
		  "spec":{"constructors":[{"label":"new"}]}
		}`},
		{"argument without type", `{
		  "source":{"wasm":"00"},
		  "spec":{"constructors":[{"label":"new","selector":"0x01020304",
		    "args":[{"label":"x"}]}]}
		}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBundle([]byte(tt.bundle))
			var metaErr *MetadataError
			assert.ErrorAs(t, err, &metaErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payment.contract")
	require.NoError(t, os.WriteFile(path, []byte(paymentBundle), 0644))

	art, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "payment_contract", art.Metadata.ContractName)
}

func TestLoadZstdCompressed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payment.contract.zst")

	f, err := os.Create(path)
	require.NoError(t, err)
	zw, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = zw.Write([]byte(paymentBundle))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	art, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "payment_contract", art.Metadata.ContractName)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.contract"))
	assert.Error(t, err)
}
