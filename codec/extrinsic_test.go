package codec

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avense/inkdeploy/types"
)

var testCallIndex = CallIndex{Pallet: 8, Call: 2}

func testOptions() SignedOptions {
	var genesis types.Hash
	genesis[0] = 0x42
	return SignedOptions{
		GenesisHash: genesis,
		SpecVersion: 100,
		TxVersion:   1,
		Nonce:       7,
	}
}

func TestNewInstantiateWithCode(t *testing.T) {
	call, err := NewInstantiateWithCode(
		testCallIndex,
		big.NewInt(0),
		Weight{RefTime: 1, ProofSize: 2},
		nil,
		[]byte{0x00, 0x61, 0x73, 0x6d}, // wasm magic
		[]byte{0x9b, 0xae, 0x9d, 0x5e},
		[]byte{0x01},
	)
	require.NoError(t, err)
	assert.Equal(t, testCallIndex, call.Index)

	d := NewDecoder(call.Args)
	value, err := d.Compact()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), value)

	refTime, err := d.Compact()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), refTime)

	proofSize, err := d.Compact()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), proofSize)

	optTag, err := d.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte(0), optTag, "nil storage deposit limit encodes as None")

	code, err := d.BytesValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, code)

	input, err := d.BytesValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x9b, 0xae, 0x9d, 0x5e}, input)

	salt, err := d.BytesValue()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, salt)
	assert.Zero(t, d.Remaining())
}

func TestNewInstantiateWithCodeDepositLimit(t *testing.T) {
	call, err := NewInstantiateWithCode(testCallIndex, big.NewInt(0), Weight{RefTime: 1}, big.NewInt(9), nil, nil, nil)
	require.NoError(t, err)

	d := NewDecoder(call.Args)
	for i := 0; i < 3; i++ {
		_, err := d.Compact()
		require.NoError(t, err)
	}
	optTag, err := d.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte(1), optTag)

	limit, err := d.Compact()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), limit)
}

func TestSigningPayloadShortNotHashed(t *testing.T) {
	call := Call{Index: testCallIndex, Args: []byte{0x01, 0x02}}
	payload, err := SigningPayload(call, testOptions())
	require.NoError(t, err)

	// call(2+2) + era(1) + nonce(1) + tip(1) + versions(8) + hashes(64)
	assert.Equal(t, 79, len(payload))
	assert.Equal(t, byte(testCallIndex.Pallet), payload[0])
	assert.Equal(t, byte(testCallIndex.Call), payload[1])
}

func TestSigningPayloadLongIsHashed(t *testing.T) {
	call := Call{Index: testCallIndex, Args: make([]byte, 400)}
	payload, err := SigningPayload(call, testOptions())
	require.NoError(t, err)
	assert.Equal(t, 32, len(payload), "payloads over 256 bytes are blake2b-256 hashed")
}

func TestEncodeSignedLayout(t *testing.T) {
	call := Call{Index: testCallIndex, Args: []byte{0xAA}}
	var pub [32]byte
	pub[0] = 0x11
	var sig [64]byte
	sig[0] = 0x22

	encoded, err := EncodeSigned(call, pub, sig, testOptions())
	require.NoError(t, err)

	d := NewDecoder(encoded)
	body, err := d.BytesValue()
	require.NoError(t, err)
	assert.Zero(t, d.Remaining(), "outer encoding is a single length-prefixed body")

	require.GreaterOrEqual(t, len(body), 100)
	assert.Equal(t, byte(0x84), body[0], "v4 signed version byte")
	assert.Equal(t, byte(0x00), body[1], "MultiAddress::Id tag")
	assert.Equal(t, pub[:], body[2:34])
	assert.Equal(t, byte(0x00), body[34], "MultiSignature::Ed25519 tag")
	assert.Equal(t, sig[:], body[35:99])
	assert.Equal(t, byte(0x00), body[99], "immortal era")

	// Tail is nonce, tip, then the call.
	tail := NewDecoder(body[100:])
	nonce, err := tail.Compact()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), nonce)
	tip, err := tail.Compact()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), tip)

	rest, err := tail.Raw(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{testCallIndex.Pallet, testCallIndex.Call, 0xAA}, rest)
	assert.Zero(t, tail.Remaining())
}

func TestExtrinsicHashDeterministic(t *testing.T) {
	a := ExtrinsicHash([]byte{1, 2, 3})
	b := ExtrinsicHash([]byte{1, 2, 3})
	c := ExtrinsicHash([]byte{1, 2, 4})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
