package deploy

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/avense/inkdeploy/artifact"
	"github.com/avense/inkdeploy/codec"
	"github.com/avense/inkdeploy/types"
)

// saltSize is the length of a generated instantiation salt.
const saltSize = 32

// Request is a fully validated, unsigned deployment request. It is built
// exactly once per attempt and must not be mutated after construction.
type Request struct {
	Artifact    *artifact.Artifact
	Constructor artifact.Constructor

	// Input is the encoded constructor call: selector followed by the
	// SCALE-encoded arguments.
	Input []byte

	Limits ResourceLimits
	Salt   []byte

	// Origin is the public identity of the deploying account. The secret
	// half of the credential is only presented at signing time.
	Origin types.AccountID
}

// RequestOption customizes request construction.
type RequestOption func(*Request)

// WithSalt sets an explicit instantiation salt instead of a random one.
func WithSalt(salt []byte) RequestOption {
	return func(r *Request) {
		r.Salt = append([]byte(nil), salt...)
	}
}

// NewRequest validates the inputs and assembles a deployment request.
// Argument count and coarse type compatibility are checked against the
// constructor's parameter descriptors; resource limits are checked for
// sanity. No network interaction happens here.
func NewRequest(art *artifact.Artifact, ctor artifact.Constructor, args []any, limits ResourceLimits, origin types.AccountID, opts ...RequestOption) (*Request, error) {
	if len(args) != len(ctor.Args) {
		return nil, &ValidationError{
			Field:  "args",
			Reason: fmt.Sprintf("constructor %q takes %d arguments, got %d", ctor.Label, len(ctor.Args), len(args)),
			Err:    ErrArityMismatch,
		}
	}
	if limits.GasLimit.RefTime == 0 {
		return nil, &ValidationError{Field: "gas limit", Reason: "ref-time is zero", Err: ErrInvalidGasLimit}
	}
	if limits.Endowment != nil && limits.Endowment.Sign() < 0 {
		return nil, &ValidationError{Field: "endowment", Reason: limits.Endowment.String(), Err: ErrNegativeEndowment}
	}
	if limits.StorageDepositLimit != nil && limits.StorageDepositLimit.Sign() < 0 {
		return nil, &ValidationError{Field: "storage deposit limit", Reason: limits.StorageDepositLimit.String(), Err: ErrNegativeDeposit}
	}

	var enc codec.Encoder
	enc.Raw(ctor.Selector[:])
	for i, v := range args {
		if err := codec.EncodeValue(&enc, ctor.Args[i].Type, v); err != nil {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("argument %q", ctor.Args[i].Label),
				Reason: fmt.Sprintf("not encodable as %s", ctor.Args[i].Type),
				Err:    err,
			}
		}
	}

	req := &Request{
		Artifact:    art,
		Constructor: ctor,
		Input:       enc.Bytes(),
		Limits:      normalizeLimits(limits),
		Origin:      origin,
	}
	for _, opt := range opts {
		opt(req)
	}
	if req.Salt == nil {
		salt := make([]byte, saltSize)
		if _, err := rand.Read(salt); err != nil {
			return nil, fmt.Errorf("deploy: generate salt: %w", err)
		}
		req.Salt = salt
	}
	return req, nil
}

func normalizeLimits(l ResourceLimits) ResourceLimits {
	if l.Endowment == nil {
		l.Endowment = big.NewInt(0)
	}
	return l
}
