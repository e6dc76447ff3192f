// Package simchain provides an in-process ChainConnection for tests and
// dry runs. It accepts signed extrinsics, decodes enough of them to derive
// the deterministic contract address, and plays back a scripted stream of
// inclusion events.
package simchain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/avense/inkdeploy/codec"
	"github.com/avense/inkdeploy/deploy"
	"github.com/avense/inkdeploy/keyring"
	"github.com/avense/inkdeploy/types"
)

// Default runtime context the simulator reports.
var defaultRuntime = deploy.RuntimeContext{
	GenesisHash:          types.Hash(blake2b.Sum256([]byte("simchain-genesis"))),
	SpecVersion:          100,
	TxVersion:            1,
	InstantiateCallIndex: codec.CallIndex{Pallet: 8, Call: 2},
	SS58Prefix:           42,
}

var (
	ErrClosed        = errors.New("simchain: connection closed")
	ErrUnknownHandle = errors.New("simchain: unknown submission handle")
	ErrResubscribed  = errors.New("simchain: subscription already consumed for handle")
)

// Behavior scripts how the simulator treats a submitted extrinsic.
type Behavior int

const (
	// Finalize plays Broadcast, InBlock with an instantiation event, then
	// Finalized.
	Finalize Behavior = iota

	// Reject plays Broadcast then an extrinsic failure.
	Reject

	// OmitInstantiation plays the success path but without the
	// instantiation event: finalization with no address.
	OmitInstantiation

	// FailThenInstantiate plays InBlock with both an instantiation event
	// and a failure event in the same block.
	FailThenInstantiate

	// DropStream closes the subscription after Broadcast with no terminal
	// event, as a dying connection would.
	DropStream

	// RefuseSubmission fails SubmitExtrinsic itself, as a down node would.
	RefuseSubmission
)

// Chain is an in-process chain session. One Chain supports any number of
// submissions; each handle gets its own subscription scope.
type Chain struct {
	runtime      deploy.RuntimeContext
	behavior     Behavior
	rejectCause  deploy.DispatchError
	eventDelay   time.Duration
	blockCounter uint64

	mu          sync.Mutex
	closed      bool
	nonces      map[types.AccountID]uint64
	submissions map[types.Hash]*submission
}

type submission struct {
	handleUsed bool
	deployer   types.AccountID
	contract   types.AccountID
}

// Option customizes the simulator.
type Option func(*Chain)

// WithBehavior scripts the inclusion outcome for submitted extrinsics.
func WithBehavior(b Behavior) Option {
	return func(c *Chain) { c.behavior = b }
}

// WithRejectCause sets the dispatch error used by rejecting behaviors.
func WithRejectCause(cause deploy.DispatchError) Option {
	return func(c *Chain) { c.rejectCause = cause }
}

// WithEventDelay spaces out scripted events, approximating block cadence.
func WithEventDelay(d time.Duration) Option {
	return func(c *Chain) { c.eventDelay = d }
}

// WithRuntimeContext overrides the reported runtime context.
func WithRuntimeContext(rc deploy.RuntimeContext) Option {
	return func(c *Chain) { c.runtime = rc }
}

// New creates a simulator chain.
func New(opts ...Option) *Chain {
	c := &Chain{
		runtime: defaultRuntime,
		rejectCause: deploy.DispatchError{
			Module: "Balances",
			Reason: deploy.ReasonInsufficientBalance,
		},
		nonces:      make(map[types.AccountID]uint64),
		submissions: make(map[types.Hash]*submission),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RuntimeContext implements deploy.ChainConnection.
func (c *Chain) RuntimeContext(ctx context.Context) (deploy.RuntimeContext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return deploy.RuntimeContext{}, ErrClosed
	}
	return c.runtime, nil
}

// AccountNonce implements deploy.ChainConnection.
func (c *Chain) AccountNonce(ctx context.Context, account types.AccountID) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, ErrClosed
	}
	return c.nonces[account], nil
}

// SubmitExtrinsic implements deploy.ChainConnection. The extrinsic is
// decoded far enough to recover the signer and the instantiation inputs so
// the scripted events can carry the real derived contract address.
func (c *Chain) SubmitExtrinsic(ctx context.Context, encoded []byte) (types.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return types.Hash{}, ErrClosed
	}
	if c.behavior == RefuseSubmission {
		return types.Hash{}, fmt.Errorf("simchain: node refused extrinsic")
	}

	deployer, contract, err := decodeInstantiation(encoded)
	if err != nil {
		return types.Hash{}, fmt.Errorf("simchain: malformed extrinsic: %w", err)
	}

	hash := codec.ExtrinsicHash(encoded)
	c.nonces[deployer]++
	c.submissions[hash] = &submission{deployer: deployer, contract: contract}
	return hash, nil
}

// Subscribe implements deploy.ChainConnection. Each handle's subscription
// can be consumed once; a closed subscription is not restartable.
func (c *Chain) Subscribe(ctx context.Context, handle deploy.SubmissionHandle) (<-chan deploy.Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	sub, ok := c.submissions[handle.TxHash]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, handle.TxHash.Hex())
	}
	if sub.handleUsed {
		return nil, fmt.Errorf("%w: %s", ErrResubscribed, handle.TxHash.Hex())
	}
	sub.handleUsed = true

	c.blockCounter++
	block := types.Hash(blake2b.Sum256(fmt.Appendf(nil, "simchain-block-%d", c.blockCounter)))

	ch := make(chan deploy.Event, 8)
	go c.playScript(ctx, ch, sub, block)
	return ch, nil
}

// Close implements deploy.ChainConnection.
func (c *Chain) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Chain) playScript(ctx context.Context, ch chan<- deploy.Event, sub *submission, block types.Hash) {
	defer close(ch)

	emit := func(ev deploy.Event) bool {
		if c.eventDelay > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(c.eventDelay):
			}
		}
		select {
		case <-ctx.Done():
			return false
		case ch <- ev:
			return true
		}
	}

	if !emit(deploy.StatusChanged{Phase: deploy.PhaseBroadcast}) {
		return
	}

	switch c.behavior {
	case Finalize:
		emit(deploy.StatusChanged{Phase: deploy.PhaseInBlock, BlockHash: block})
		emit(deploy.ContractInstantiated{Deployer: sub.deployer, Contract: sub.contract, BlockHash: block})
		emit(deploy.StatusChanged{Phase: deploy.PhaseFinalized, BlockHash: block})

	case Reject:
		emit(deploy.StatusChanged{Phase: deploy.PhaseInBlock, BlockHash: block})
		emit(deploy.ExtrinsicFailed{Cause: c.rejectCause, BlockHash: block})

	case OmitInstantiation:
		emit(deploy.StatusChanged{Phase: deploy.PhaseInBlock, BlockHash: block})
		emit(deploy.StatusChanged{Phase: deploy.PhaseFinalized, BlockHash: block})

	case FailThenInstantiate:
		emit(deploy.StatusChanged{Phase: deploy.PhaseInBlock, BlockHash: block})
		emit(deploy.ContractInstantiated{Deployer: sub.deployer, Contract: sub.contract, BlockHash: block})
		emit(deploy.ExtrinsicFailed{Cause: c.rejectCause, BlockHash: block})

	case DropStream:
		// Close without a terminal event.
	}
}

// decodeInstantiation walks a signed v4 extrinsic just far enough to pull
// out the signer and recompute the derived contract address.
func decodeInstantiation(encoded []byte) (deployer, contract types.AccountID, err error) {
	outer := codec.NewDecoder(encoded)
	body, err := outer.BytesValue()
	if err != nil {
		return deployer, contract, err
	}

	d := codec.NewDecoder(body)
	version, err := d.Byte()
	if err != nil {
		return deployer, contract, err
	}
	if version != 0x84 {
		return deployer, contract, fmt.Errorf("unsupported extrinsic version 0x%02x", version)
	}

	// MultiAddress::Id
	if tag, err := d.Byte(); err != nil || tag != 0x00 {
		return deployer, contract, fmt.Errorf("unsupported address form")
	}
	signerRaw, err := d.Raw(32)
	if err != nil {
		return deployer, contract, err
	}
	copy(deployer[:], signerRaw)

	// MultiSignature::Ed25519, signature, era, nonce, tip.
	if _, err := d.Byte(); err != nil {
		return deployer, contract, err
	}
	if _, err := d.Raw(64); err != nil {
		return deployer, contract, err
	}
	if _, err := d.Byte(); err != nil {
		return deployer, contract, err
	}
	if _, err := d.Compact(); err != nil {
		return deployer, contract, err
	}
	if _, err := d.Compact(); err != nil {
		return deployer, contract, err
	}

	// Call index, then instantiate_with_code arguments.
	if _, err := d.Raw(2); err != nil {
		return deployer, contract, err
	}
	if _, err := d.Compact(); err != nil { // value
		return deployer, contract, err
	}
	if _, err := d.Compact(); err != nil { // gas ref_time
		return deployer, contract, err
	}
	if _, err := d.Compact(); err != nil { // gas proof_size
		return deployer, contract, err
	}
	some, err := d.Byte() // storage deposit limit option tag
	if err != nil {
		return deployer, contract, err
	}
	if some == 1 {
		if _, err := d.Compact(); err != nil {
			return deployer, contract, err
		}
	}
	code, err := d.BytesValue()
	if err != nil {
		return deployer, contract, err
	}
	input, err := d.BytesValue()
	if err != nil {
		return deployer, contract, err
	}
	salt, err := d.BytesValue()
	if err != nil {
		return deployer, contract, err
	}

	codeHash := types.Hash(blake2b.Sum256(code))
	contract = keyring.ContractAddress(deployer, codeHash, input, salt)
	return deployer, contract, nil
}
