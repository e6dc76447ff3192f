// Package deploy implements the contract deployment orchestrator: building
// an unsigned deployment request, signing and submitting it over a chain
// connection, and tracking its inclusion events to a terminal result.
package deploy

import (
	"math/big"

	"github.com/avense/inkdeploy/codec"
	"github.com/avense/inkdeploy/types"
)

// Phase is a chain inclusion status for a submitted extrinsic.
type Phase int

const (
	PhasePending Phase = iota
	PhaseBroadcast
	PhaseInBlock
	PhaseFinalized
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseBroadcast:
		return "broadcast"
	case PhaseInBlock:
		return "in-block"
	case PhaseFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// ResourceLimits bounds the resources a deployment may consume.
type ResourceLimits struct {
	// GasLimit is the compute weight budget; RefTime must be positive.
	GasLimit codec.Weight

	// StorageDepositLimit caps the storage deposit charged to the deployer.
	// Nil means unbounded (node-estimated).
	StorageDepositLimit *big.Int

	// Endowment is the initial balance transferred to the contract.
	// Nil is treated as zero; negative values are rejected.
	Endowment *big.Int
}

// SubmissionHandle identifies a submitted extrinsic in the chain's pending
// pool. It is valid from submission until the first terminal event.
type SubmissionHandle struct {
	TxHash  types.Hash
	Account types.AccountID
	Nonce   uint64
}

// RuntimeContext is the chain context required to sign an extrinsic.
type RuntimeContext struct {
	GenesisHash          types.Hash
	SpecVersion          uint32
	TxVersion            uint32
	InstantiateCallIndex codec.CallIndex
	SS58Prefix           uint16
}

// Event is a deployment-relevant chain event delivered on a subscription.
// Implementations are StatusChanged, ContractInstantiated, ExtrinsicFailed
// and StreamError.
type Event interface {
	deploymentEvent()
}

// StatusChanged reports the extrinsic reaching a new inclusion phase.
type StatusChanged struct {
	Phase     Phase
	BlockHash types.Hash
}

// ContractInstantiated reports a contract instantiation observed in the
// block that included the extrinsic.
type ContractInstantiated struct {
	Deployer  types.AccountID
	Contract  types.AccountID
	BlockHash types.Hash
}

// ExtrinsicFailed reports on-chain rejection of the extrinsic.
type ExtrinsicFailed struct {
	Cause     DispatchError
	BlockHash types.Hash
}

// StreamError reports abnormal termination of the event subscription
// itself, distinct from on-chain rejection.
type StreamError struct {
	Err error
}

func (StatusChanged) deploymentEvent()        {}
func (ContractInstantiated) deploymentEvent() {}
func (ExtrinsicFailed) deploymentEvent()      {}
func (StreamError) deploymentEvent()          {}
