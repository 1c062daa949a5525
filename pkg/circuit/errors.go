package circuit

import "errors"

// Error kinds surfaced to callers of the public simulation entry points
// (spec §7). Internal helpers either return one of these or panic for
// programmer errors; numeric failures are never panics.
var (
	// ErrNotConnected is returned when a matrix build is attempted with a
	// component missing a terminal.
	ErrNotConnected = errors.New("circuit: component not fully connected")

	// ErrFactorizationFailed is returned when sparse LU factorization of
	// the numeric matrix fails.
	ErrFactorizationFailed = errors.New("circuit: matrix factorization failed")

	// ErrSolveFailed is returned when the linear solve against the
	// factorized matrix fails.
	ErrSolveFailed = errors.New("circuit: matrix solve failed")

	// ErrDriverAllocationFailed is returned when the ODE driver could not
	// be constructed for the current topology.
	ErrDriverAllocationFailed = errors.New("circuit: ODE driver allocation failed")

	// ErrNonConvergence is returned when the step size had to fall below
	// MinStep to honor the error tolerances.
	ErrNonConvergence = errors.New("circuit: step size fell below minimum without converging")

	// ErrStepperInternal is returned when the stepper reports a structural
	// fault unrelated to step-size control.
	ErrStepperInternal = errors.New("circuit: stepper internal error")

	// ErrModulatedValueConflict is returned by SetValue when the
	// destination is already bound to a modulator.
	ErrModulatedValueConflict = errors.New("circuit: value already controlled by a modulator")

	// ErrWrongCircuit is returned when wiring a node or component that
	// belongs to a different circuit.
	ErrWrongCircuit = errors.New("circuit: node or component belongs to a different circuit")

	// ErrDoubleConnection is returned when a terminal that is already
	// bound is connected again.
	ErrDoubleConnection = errors.New("circuit: terminal already connected")

	// ErrSelfConnection is returned when both terminals of a component
	// would be bound to the same node.
	ErrSelfConnection = errors.New("circuit: both terminals connected to the same node")
)
