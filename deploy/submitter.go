package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avense/inkdeploy/codec"
	"github.com/avense/inkdeploy/keyring"
	"github.com/avense/inkdeploy/types"
)

// Submitter signs deployment requests and broadcasts them over a chain
// connection. Exactly one extrinsic is broadcast per Submit call; retry
// policy belongs to the caller, since resubmitting identical content risks
// a duplicate deployment.
type Submitter struct {
	conn   ChainConnection
	logger *slog.Logger
}

// NewSubmitter creates a submitter over conn.
func NewSubmitter(conn ChainConnection, logger *slog.Logger) *Submitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Submitter{conn: conn, logger: logger}
}

// Submit signs req with signer and broadcasts the resulting extrinsic.
// Signing is purely local; the network is touched only to read the runtime
// context and account nonce, and then once to broadcast. Transport-level
// rejection surfaces as a ConnectionError immediately.
func (s *Submitter) Submit(ctx context.Context, req *Request, signer keyring.Signer) (SubmissionHandle, error) {
	if signer.AccountID() != req.Origin {
		return SubmissionHandle{}, &ValidationError{
			Field:  "credential",
			Reason: "signer account does not match request origin",
		}
	}

	rc, err := s.conn.RuntimeContext(ctx)
	if err != nil {
		return SubmissionHandle{}, &ConnectionError{Op: "runtime context", Err: err}
	}
	nonce, err := s.conn.AccountNonce(ctx, req.Origin)
	if err != nil {
		return SubmissionHandle{}, &ConnectionError{Op: "account nonce", Err: err}
	}

	encoded, err := s.signLocally(req, signer, rc, nonce)
	if err != nil {
		return SubmissionHandle{}, err
	}

	txHash, err := s.conn.SubmitExtrinsic(ctx, encoded)
	if err != nil {
		return SubmissionHandle{}, &ConnectionError{Op: "submit", Err: err}
	}

	handle := SubmissionHandle{TxHash: txHash, Account: req.Origin, Nonce: nonce}
	s.logger.Info("extrinsic submitted",
		slog.String("tx_hash", handle.TxHash.Hex()),
		slog.Uint64("nonce", handle.Nonce),
		slog.String("constructor", req.Constructor.Label),
	)
	return handle, nil
}

// signLocally builds, signs and encodes the extrinsic without any network
// dependency.
func (s *Submitter) signLocally(req *Request, signer keyring.Signer, rc RuntimeContext, nonce uint64) ([]byte, error) {
	call, err := codec.NewInstantiateWithCode(
		rc.InstantiateCallIndex,
		req.Limits.Endowment,
		req.Limits.GasLimit,
		req.Limits.StorageDepositLimit,
		req.Artifact.Wasm,
		req.Input,
		req.Salt,
	)
	if err != nil {
		return nil, fmt.Errorf("deploy: build call: %w", err)
	}

	opts := codec.SignedOptions{
		GenesisHash: rc.GenesisHash,
		SpecVersion: rc.SpecVersion,
		TxVersion:   rc.TxVersion,
		Nonce:       nonce,
	}
	payload, err := codec.SigningPayload(call, opts)
	if err != nil {
		return nil, fmt.Errorf("deploy: signing payload: %w", err)
	}

	sig, err := signer.Sign(payload)
	if err != nil {
		return nil, fmt.Errorf("deploy: sign extrinsic: %w", err)
	}
	var sig64 [64]byte
	if len(sig) != len(sig64) {
		return nil, fmt.Errorf("deploy: signer returned %d-byte signature, want 64", len(sig))
	}
	copy(sig64[:], sig)

	var pub [32]byte
	copy(pub[:], signer.PublicKey())

	encoded, err := codec.EncodeSigned(call, pub, sig64, opts)
	if err != nil {
		return nil, fmt.Errorf("deploy: encode extrinsic: %w", err)
	}
	return encoded, nil
}

// ExpectedAddress returns the address the chain will assign if the request
// instantiates successfully. Useful for logs and dry runs; the
// authoritative address still comes from the instantiation event.
func ExpectedAddress(req *Request) types.AccountID {
	return keyring.ContractAddress(req.Origin, req.Artifact.CodeHash, req.Input, req.Salt)
}
