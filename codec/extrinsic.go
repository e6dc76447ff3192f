package codec

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/blake2b"

	"github.com/avense/inkdeploy/types"
)

// Extrinsic format constants for the v4 signed encoding.
const (
	extrinsicVersion     = 4
	extrinsicSignedBit   = 0x80
	multiAddressIDTag    = 0x00
	multiSigEd25519Tag   = 0x00
	immortalEra          = 0x00
	signingPayloadHashAt = 256
)

// CallIndex addresses a dispatchable by pallet and call position.
type CallIndex struct {
	Pallet uint8
	Call   uint8
}

// Weight bounds the computational work a dispatch may consume.
type Weight struct {
	RefTime   uint64
	ProofSize uint64
}

// Call is an encoded runtime call: the call index followed by its
// SCALE-encoded arguments.
type Call struct {
	Index CallIndex
	Args  []byte
}

// SignedOptions carries the chain context mixed into the signing payload.
type SignedOptions struct {
	GenesisHash types.Hash
	SpecVersion uint32
	TxVersion   uint32
	Nonce       uint64
	Tip         *big.Int
}

// NewInstantiateWithCode builds the Contracts::instantiate_with_code call:
// compact value, gas weight, optional compact storage deposit limit, code,
// constructor input data, and instantiation salt.
func NewInstantiateWithCode(idx CallIndex, value *big.Int, gas Weight, storageDepositLimit *big.Int, code, data, salt []byte) (Call, error) {
	var e Encoder
	if err := e.CompactBig(value); err != nil {
		return Call{}, fmt.Errorf("encode value: %w", err)
	}
	e.Compact(gas.RefTime)
	e.Compact(gas.ProofSize)
	if storageDepositLimit == nil {
		e.OptionNone()
	} else {
		e.OptionSome()
		if err := e.CompactBig(storageDepositLimit); err != nil {
			return Call{}, fmt.Errorf("encode storage deposit limit: %w", err)
		}
	}
	e.BytesValue(code)
	e.BytesValue(data)
	e.BytesValue(salt)
	return Call{Index: idx, Args: e.Bytes()}, nil
}

// SigningPayload assembles the bytes a credential signs for an immortal
// extrinsic: call ++ extra(era, nonce, tip) ++ additional(spec version, tx
// version, genesis hash, era anchor hash). Payloads longer than 256 bytes
// are blake2b-256 hashed before signing, per the chain's convention.
func SigningPayload(call Call, opts SignedOptions) ([]byte, error) {
	var e Encoder
	e.Byte(call.Index.Pallet)
	e.Byte(call.Index.Call)
	e.Raw(call.Args)
	writeExtra(&e, opts)
	e.U32(opts.SpecVersion)
	e.U32(opts.TxVersion)
	e.Raw(opts.GenesisHash[:])
	// Immortal transactions anchor the era at the genesis hash.
	e.Raw(opts.GenesisHash[:])
	payload := e.Bytes()
	if len(payload) > signingPayloadHashAt {
		h := blake2b.Sum256(payload)
		return h[:], nil
	}
	out := make([]byte, len(payload))
	copy(out, payload)
	return out, nil
}

// EncodeSigned assembles a length-prefixed v4 signed extrinsic with an
// ed25519 signature and an Id multi-address signer.
func EncodeSigned(call Call, signerPub [32]byte, signature [64]byte, opts SignedOptions) ([]byte, error) {
	var body Encoder
	body.Byte(extrinsicVersion | extrinsicSignedBit)
	body.Byte(multiAddressIDTag)
	body.Raw(signerPub[:])
	body.Byte(multiSigEd25519Tag)
	body.Raw(signature[:])
	writeExtra(&body, opts)
	body.Byte(call.Index.Pallet)
	body.Byte(call.Index.Call)
	body.Raw(call.Args)

	var out Encoder
	out.BytesValue(body.Bytes())
	return out.Bytes(), nil
}

// ExtrinsicHash returns the chain's identity for an encoded extrinsic.
func ExtrinsicHash(encoded []byte) types.Hash {
	return types.Hash(blake2b.Sum256(encoded))
}

func writeExtra(e *Encoder, opts SignedOptions) {
	e.Byte(immortalEra)
	e.Compact(opts.Nonce)
	tip := opts.Tip
	if tip == nil {
		tip = big.NewInt(0)
	}
	// Tip is validated non-negative upstream; encoding cannot fail for a
	// non-negative value in compact range.
	_ = e.CompactBig(tip)
}
