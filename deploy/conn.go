package deploy

import (
	"context"

	"github.com/avense/inkdeploy/types"
)

// ChainConnection is a single logical session to a node endpoint. It is the
// external collaborator the orchestrator submits through and subscribes on;
// transport details (websocket RPC, in-process simulator) live behind it.
//
// Implementations must fail fast from SubmitExtrinsic when the connection
// is down or the encoding is rejected at the transport layer, and must
// close subscription channels when the underlying stream terminates.
type ChainConnection interface {
	// RuntimeContext returns the chain context needed to sign extrinsics.
	RuntimeContext(ctx context.Context) (RuntimeContext, error)

	// AccountNonce returns the next nonce for an account.
	AccountNonce(ctx context.Context, account types.AccountID) (uint64, error)

	// SubmitExtrinsic broadcasts an encoded signed extrinsic and returns
	// its hash once accepted by the node's pending pool.
	SubmitExtrinsic(ctx context.Context, encoded []byte) (types.Hash, error)

	// Subscribe returns the stream of deployment events for a submitted
	// extrinsic. The channel is closed when the subscription ends; a
	// subscription is not restartable against the same handle.
	Subscribe(ctx context.Context, handle SubmissionHandle) (<-chan Event, error)

	// Close tears down the session.
	Close() error
}
