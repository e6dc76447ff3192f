package deploy

import (
	"errors"
	"fmt"
)

// Sentinel errors - request validation
var (
	ErrArityMismatch     = errors.New("deploy: constructor argument count mismatch")
	ErrInvalidGasLimit   = errors.New("deploy: gas ref-time limit must be positive")
	ErrNegativeEndowment = errors.New("deploy: endowment must be non-negative")
	ErrNegativeDeposit   = errors.New("deploy: storage deposit limit must be non-negative")
)

// Sentinel errors - tracking
var (
	ErrMissingInstantiationEvent = errors.New("deploy: finalized without a contract instantiation event")
	ErrSubscriptionClosed        = errors.New("deploy: event subscription closed before a terminal event")
)

// ErrorKind classifies a terminal deployment failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindSelection
	KindValidation
	KindConnection
	KindRejected
	KindMissingInstantiation
	KindTimeout
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSelection:
		return "selection"
	case KindValidation:
		return "validation"
	case KindConnection:
		return "connection"
	case KindRejected:
		return "rejected"
	case KindMissingInstantiation:
		return "missing-instantiation-event"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ValidationError reports malformed request inputs, surfaced before any
// network interaction.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("deploy: invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("deploy: invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ConnectionError reports transport-level failure: the node was unreachable,
// rejected the encoding outright, or the event subscription died.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("deploy: connection failure during %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// DispatchError is the decoded cause of an on-chain extrinsic rejection.
type DispatchError struct {
	Module string
	Reason string
}

// Common rejection reasons surfaced by the contracts pallet.
const (
	ReasonInsufficientBalance = "InsufficientBalance"
	ReasonOutOfGas            = "OutOfGas"
	ReasonContractTrapped     = "ContractTrapped"
	ReasonStorageExhausted    = "StorageDepositLimitExhausted"
)

func (e DispatchError) Error() string {
	if e.Module == "" {
		return "deploy: extrinsic failed: " + e.Reason
	}
	return fmt.Sprintf("deploy: extrinsic failed: %s.%s", e.Module, e.Reason)
}
