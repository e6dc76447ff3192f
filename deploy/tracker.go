package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/avense/inkdeploy/types"
)

// Tracker drives the inclusion state machine for one submitted extrinsic:
// Pending -> Broadcast -> InBlock -> Finalized, with Rejected reachable
// from any non-terminal state and Errored if the stream itself fails.
//
// The tracker produces exactly one Result per handle and performs no
// retries; abandoning it (cancelling the context) stops observation but
// does not retract the broadcast extrinsic.
type Tracker struct {
	handle SubmissionHandle
	events <-chan Event
	logger *slog.Logger

	phase Phase

	// Address extracted at InBlock time. Provisional: a block can be
	// reverted before finalization, so success is only emitted once the
	// finalized status arrives.
	provisionalAddr  types.AccountID
	addressExtracted bool
	inBlockHash      types.Hash
}

// NewTracker creates a tracker consuming events for handle.
func NewTracker(handle SubmissionHandle, events <-chan Event, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		handle: handle,
		events: events,
		logger: logger,
		phase:  PhasePending,
	}
}

// Track consumes the event stream until a terminal state is reached and
// returns the attempt's Result. A non-nil error is returned only when ctx
// is cancelled before a terminal event: the caller stopped observing, and
// no result exists for this attempt.
func (t *Tracker) Track(ctx context.Context) (Result, error) {
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("deployment observation abandoned",
				slog.String("tx_hash", t.handle.TxHash.Hex()),
				slog.String("phase", t.phase.String()),
			)
			return Result{}, ctx.Err()

		case ev, ok := <-t.events:
			if !ok {
				return failure(KindConnection, &ConnectionError{Op: "subscription", Err: ErrSubscriptionClosed}), nil
			}
			if res, terminal := t.consume(ev); terminal {
				return res, nil
			}
		}
	}
}

// consume applies one event to the state machine. It returns the terminal
// result when one is reached.
func (t *Tracker) consume(ev Event) (Result, bool) {
	switch ev := ev.(type) {
	case StatusChanged:
		return t.onStatus(ev)

	case ContractInstantiated:
		// Correlate defensively: only an instantiation by this handle's
		// account counts as ours.
		if ev.Deployer != t.handle.Account {
			return Result{}, false
		}
		t.provisionalAddr = ev.Contract
		t.addressExtracted = true
		t.logger.Debug("instantiation event observed",
			slog.String("contract", ev.Contract.Hex()),
			slog.String("block", ev.BlockHash.Hex()),
		)
		return Result{}, false

	case ExtrinsicFailed:
		// Failure always wins, even when an instantiation event was seen
		// in the same block: a constructor that traps after emitting
		// events is not a successful deployment.
		t.logger.Info("deployment rejected on-chain",
			slog.String("tx_hash", t.handle.TxHash.Hex()),
			slog.String("cause", ev.Cause.Error()),
		)
		res := failure(KindRejected, ev.Cause)
		res.BlockHash = ev.BlockHash
		return res, true

	case StreamError:
		return failure(KindConnection, &ConnectionError{Op: "subscription", Err: ev.Err}), true

	default:
		return failure(KindConnection, &ConnectionError{Op: "subscription", Err: fmt.Errorf("unexpected event type %T", ev)}), true
	}
}

func (t *Tracker) onStatus(ev StatusChanged) (Result, bool) {
	if ev.Phase < t.phase {
		// Status must not move backwards within one handle's lifetime.
		return Result{}, false
	}
	t.phase = ev.Phase
	t.logger.Debug("deployment status",
		slog.String("tx_hash", t.handle.TxHash.Hex()),
		slog.String("phase", ev.Phase.String()),
	)

	switch ev.Phase {
	case PhaseInBlock:
		t.inBlockHash = ev.BlockHash
		return Result{}, false

	case PhaseFinalized:
		if !t.addressExtracted {
			return failure(KindMissingInstantiation, ErrMissingInstantiationEvent), true
		}
		block := ev.BlockHash
		if block.IsZero() {
			block = t.inBlockHash
		}
		t.logger.Info("deployment finalized",
			slog.String("contract", t.provisionalAddr.Hex()),
			slog.String("block", block.Hex()),
		)
		return success(t.provisionalAddr, block), true

	default:
		return Result{}, false
	}
}
