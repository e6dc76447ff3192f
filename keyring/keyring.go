// Package keyring provides signing credentials for extrinsic submission:
// an in-memory ed25519 keypair, SS58 address rendering, and deterministic
// contract address derivation.
//
// Secret material is held only in process memory and is never written to
// logs or disk by this package.
package keyring

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/avense/inkdeploy/types"
)

// SeedSize is the required length of a raw ed25519 seed.
const SeedSize = ed25519.SeedSize

var (
	ErrBadSeed      = errors.New("keyring: seed must be 32 bytes")
	ErrBadSignature = errors.New("keyring: signature verification failed")
)

// Signer is the credential capability the deployer accepts: a public
// identity plus the ability to sign arbitrary payloads.
type Signer interface {
	AccountID() types.AccountID
	PublicKey() []byte
	Sign(msg []byte) ([]byte, error)
}

// Keypair is an in-memory ed25519 signing credential.
type Keypair struct {
	pub  ed25519.PublicKey
	priv ed25519.PrivateKey
}

// NewFromSeed derives a keypair from a 32-byte seed.
func NewFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w, got %d", ErrBadSeed, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Keypair{
		pub:  priv.Public().(ed25519.PublicKey),
		priv: priv,
	}, nil
}

// Generate creates a fresh random keypair.
func Generate() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keyring: generate keypair: %w", err)
	}
	return &Keypair{pub: pub, priv: priv}, nil
}

// AccountID returns the 32-byte on-chain account identifier.
func (k *Keypair) AccountID() types.AccountID {
	var id types.AccountID
	copy(id[:], k.pub)
	return id
}

// PublicKey returns the raw public key bytes.
func (k *Keypair) PublicKey() []byte {
	out := make([]byte, len(k.pub))
	copy(out, k.pub)
	return out
}

// Sign signs msg and returns a 64-byte ed25519 signature.
func (k *Keypair) Sign(msg []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, msg), nil
}

// Verify checks a signature produced by this keypair's account.
func Verify(account types.AccountID, msg, sig []byte) error {
	if !ed25519.Verify(ed25519.PublicKey(account[:]), msg, sig) {
		return ErrBadSignature
	}
	return nil
}
