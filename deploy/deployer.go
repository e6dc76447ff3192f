package deploy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/avense/inkdeploy/artifact"
	"github.com/avense/inkdeploy/keyring"
)

// Observer receives deployment lifecycle notifications. Implementations
// must be safe for concurrent use; a nil observer disables instrumentation.
type Observer interface {
	AttemptStarted()
	AttemptFinished(outcome string, elapsed time.Duration)
}

// Deployer runs the full pipeline for one deployment attempt: constructor
// selection, request building, signing, submission, and status tracking.
// Concurrent deployments are modeled as independent attempts; the Deployer
// itself holds no per-attempt state.
type Deployer struct {
	conn     ChainConnection
	logger   *slog.Logger
	observer Observer
}

// DeployerOption customizes a Deployer.
type DeployerOption func(*Deployer)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) DeployerOption {
	return func(d *Deployer) {
		d.logger = logger
	}
}

// WithObserver attaches an instrumentation observer.
func WithObserver(o Observer) DeployerOption {
	return func(d *Deployer) {
		d.observer = o
	}
}

// NewDeployer creates a deployment orchestrator over conn.
func NewDeployer(conn ChainConnection, opts ...DeployerOption) *Deployer {
	d := &Deployer{conn: conn, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Params are the caller-supplied inputs for one deployment attempt.
type Params struct {
	Artifact *artifact.Artifact

	// Constructor selects the entry point by label. If empty,
	// ConstructorIndex selects by position instead.
	Constructor      string
	ConstructorIndex int

	// Args are the ordered constructor argument values.
	Args []any

	Limits ResourceLimits

	// Salt optionally fixes the instantiation salt; random when nil.
	Salt []byte
}

// Deploy executes one deployment attempt end to end and returns its
// terminal Result.
//
// Pre-submission failures (constructor selection, request validation,
// transport rejection) are returned as errors: nothing entered the pending
// pool and the caller can fix inputs and build a new attempt. Once the
// extrinsic is submitted, the outcome is always expressed as a Result; a
// non-nil error after submission only means the context was cancelled and
// observation stopped, not that the on-chain deployment was undone.
func (d *Deployer) Deploy(ctx context.Context, params Params, signer keyring.Signer) (Result, error) {
	attemptID := uuid.New()
	started := time.Now()
	logger := d.logger.With(slog.String("attempt_id", attemptID.String()))

	d.observeStart()

	ctor, err := selectConstructor(params)
	if err != nil {
		d.observeFinish(KindSelection.String(), started)
		return Result{}, err
	}

	req, err := NewRequest(params.Artifact, ctor, params.Args, params.Limits, signer.AccountID(), requestOptions(params)...)
	if err != nil {
		d.observeFinish(KindValidation.String(), started)
		return Result{}, err
	}

	logger.Info("deployment request built",
		slog.String("contract", params.Artifact.Metadata.ContractName),
		slog.String("constructor", ctor.Label),
		slog.String("code_hash", params.Artifact.CodeHash.Hex()),
	)

	submitter := NewSubmitter(d.conn, logger)
	handle, err := submitter.Submit(ctx, req, signer)
	if err != nil {
		d.observeFinish(KindConnection.String(), started)
		return Result{}, err
	}

	events, err := d.conn.Subscribe(ctx, handle)
	if err != nil {
		d.observeFinish(KindConnection.String(), started)
		return Result{}, &ConnectionError{Op: "subscribe", Err: err}
	}

	res, err := NewTracker(handle, events, logger).Track(ctx)
	if err != nil {
		d.observeFinish("abandoned", started)
		return Result{}, err
	}

	d.observeFinish(outcomeLabel(res), started)
	return res, nil
}

// DeployWithTimeout wraps Deploy with a maximum wait. Deadline exhaustion
// is mapped to a Timeout failure; the broadcast extrinsic is not retracted
// and may still finalize on-chain unobserved.
func (d *Deployer) DeployWithTimeout(ctx context.Context, params Params, signer keyring.Signer, timeout time.Duration) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := d.Deploy(ctx, params, signer)
	if errors.Is(err, context.DeadlineExceeded) {
		return failure(KindTimeout, err), nil
	}
	return res, err
}

func selectConstructor(params Params) (artifact.Constructor, error) {
	if params.Constructor != "" {
		return params.Artifact.Metadata.Constructor(params.Constructor)
	}
	return params.Artifact.Metadata.ConstructorAt(params.ConstructorIndex)
}

func requestOptions(params Params) []RequestOption {
	if params.Salt == nil {
		return nil
	}
	return []RequestOption{WithSalt(params.Salt)}
}

func outcomeLabel(res Result) string {
	if res.Successful() {
		return "success"
	}
	return res.Kind.String()
}

func (d *Deployer) observeStart() {
	if d.observer != nil {
		d.observer.AttemptStarted()
	}
}

func (d *Deployer) observeFinish(outcome string, started time.Time) {
	if d.observer != nil {
		d.observer.AttemptFinished(outcome, time.Since(started))
	}
}
