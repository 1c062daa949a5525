// Package circuit implements the symbolic MNA engine: Node, the matrix
// builder, and the DC/transient simulation loop that ties the expression
// algebra (pkg/expr), the sparse solver (pkg/matrix) and the adaptive
// stepper (pkg/stepper) together. Concrete two-terminal components live in
// pkg/component and depend on this package, not the reverse.
//
// Grounded on original_source/lib/Core/Circuit.cpp and
// include/Core/Circuit.hpp for the overall shape (arenas of nodes,
// components, modulators; dirty flag; DC/TRANSIENT mode; the save
// mechanism), re-architected per spec.md §9 to use Go slices/indices
// instead of the original's raw aliasing pointers into growable vectors.
package circuit

import (
	"errors"
	"fmt"
	"math"

	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/expr"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/matrix"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/modulator"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/stepper"
)

// Expression and Term are this package's names for the expression algebra's
// borrowed-reference sum-of-products types; component code builds these
// against live pointers into Circuit- and Node-owned storage.
type Expression = expr.Expression
type Term = expr.Term

// ErrDivisionByZero is returned by a matrix solve when an Expression's
// denominator evaluated to exactly zero during that solve.
var ErrDivisionByZero = expr.ErrDivisionByZero

// Mode is the circuit's current analysis mode.
type Mode int

const (
	ModeDC Mode = iota
	ModeTransient
)

// StepperKind selects the ODE driver's embedded Runge-Kutta formula.
// RKF45 is the only one implemented, and Circuit exposes no way to choose
// another, so every circuit integrates with RKF45; build still maps an
// unrecognized value to ErrDriverAllocationFailed instead of panicking.
type StepperKind int

const (
	RKF45 StepperKind = iota
)

// Epsilon is the global time-comparison tolerance (spec §4.7/§9): used only
// for save-time scheduling and loop termination, never inside solver
// numerics. Shared with pkg/modulator's PWM edge scheduling.
const Epsilon = modulator.Epsilon

// Saver is satisfied by components that record voltage/current history.
// Circuit reaches every component's save bookkeeping through this
// interface so it never needs to import pkg/component.
type Saver interface {
	AutoSaveOn() bool
	SetAutoSaveOn(bool)
	SaveHist()
	ClearHist()
}

// Circuit owns every Node, Component and Modulator for one topology, plus
// the simulator tunables, the symbolic/numeric matrix, the solved vector,
// and the ODE state vector. Non-copyable by convention: always passed
// around as *Circuit, since component and node code alias its storage.
type Circuit struct {
	Name string

	nodes      []*Node
	groundNode *Node
	components []Component
	intComps   []IntegratingComponent
	modulators []modulator.Modulator

	minStep, maxStep float64
	absTol, relTol   float64
	stepperKind      StepperKind

	mode    Mode
	dirty   bool
	t       float64
	dt      float64
	driverH float64

	savePeriod float64
	saveTimes  []float64

	symbolic *matrix.Symbolic
	numeric  *matrix.Numeric

	solvedVec []float64
	odeState  []float64

	dydtExprs []Expression
	stepperI  stepper.Stepper
	ctrl      stepper.Control

	derivErr error
}

// New constructs a circuit with explicit tunables: minimum/maximum ODE step
// size and absolute/relative error tolerances. It takes no stepper choice:
// the ODE driver is always RKF45.
func New(minStep, maxStep, absTol, relTol float64) *Circuit {
	return &Circuit{
		minStep: minStep,
		maxStep: maxStep,
		absTol:  absTol,
		relTol:  relTol,
		mode:    ModeDC,
		dirty:   true,
		driverH: maxStep,
	}
}

// NewDefault builds a circuit with original_source's Circuit constructor
// defaults (min_ts=1e-15, max_ts=1e-6, max_e_abs=1e-12, max_e_rel=1e-3).
func NewDefault() *Circuit {
	return New(1e-15, 1e-6, 1e-12, 1e-3)
}

// Mode returns the circuit's current analysis mode.
func (c *Circuit) Mode() Mode { return c.mode }

// Time returns the current simulated time.
func (c *Circuit) Time() float64 { return c.t }

// Step returns the live step-size pointer that integrating-component
// companion models and dydt expressions hold a reference to. Its value is
// only meaningful in ModeTransient, during a solve.
func (c *Circuit) Step() *float64 { return &c.dt }

// SavePeriod returns the current save scheduling period (0 means "every
// computed step").
func (c *Circuit) SavePeriod() float64 { return c.savePeriod }

// SetSavePeriod changes the save scheduling period without touching
// auto-save flags on individual nodes/components.
func (c *Circuit) SetSavePeriod(period float64) { c.savePeriod = period }

// SaveTimes returns the times at which at least one entity's history was
// recorded, in non-decreasing order.
func (c *Circuit) SaveTimes() []float64 { return c.saveTimes }

// AddNode allocates a new node. With no argument it is a free node; with
// one argument it is fixed at that voltage. Repeated AddNode(0) calls
// return the same ground node instead of allocating duplicates (mirroring
// original_source's Circuit::get_gnd_node caching).
func (c *Circuit) AddNode(fixedVoltage ...float64) *Node {
	if len(fixedVoltage) > 0 {
		v := fixedVoltage[0]
		if v == 0 && c.groundNode != nil {
			return c.groundNode
		}
		n := newFixedNode(c, v)
		c.nodes = append(c.nodes, n)
		if v == 0 {
			c.groundNode = n
		}
		c.topologyChanged()
		return n
	}
	n := newNode(c)
	c.nodes = append(c.nodes, n)
	c.topologyChanged()
	return n
}

// GetGroundNode returns the circuit's 0V fixed node, creating it on first
// use.
func (c *Circuit) GetGroundNode() *Node {
	if c.groundNode == nil {
		return c.AddNode(0)
	}
	return c.groundNode
}

// AddComponent registers a fully- or partially-wired component with the
// circuit, marking the topology dirty. Component constructors in
// pkg/component call this via Connect once both terminals are bound.
func (c *Circuit) AddComponent(comp Component) {
	c.components = append(c.components, comp)
	if ic, ok := comp.(IntegratingComponent); ok {
		c.intComps = append(c.intComps, ic)
	}
	c.topologyChanged()
}

// AddModulator registers a modulator with the circuit. Modulators do not
// affect topology by themselves (they mutate component values, not
// connectivity), so this does not mark the matrix dirty.
func (c *Circuit) AddModulator(m modulator.Modulator) {
	c.modulators = append(c.modulators, m)
}

// topologyChanged marks the symbolic/numeric matrix stale. Every node and
// component voltage/current reference becomes invalid until the next
// build().
func (c *Circuit) topologyChanged() {
	c.dirty = true
}

// SaveAll turns on auto_save for every node and component currently
// registered and sets the save scheduling period (spec.md §6).
func (c *Circuit) SaveAll(period float64) {
	c.savePeriod = period
	for _, n := range c.nodes {
		n.SetAutoSave(true)
	}
	for _, comp := range c.components {
		if s, ok := comp.(Saver); ok {
			s.SetAutoSaveOn(true)
		}
	}
}

// saveStates pushes current voltage (nodes) and voltage/current
// (components) into history for every auto_save entity, and records t in
// the global save-times list if anything was actually saved.
func (c *Circuit) saveStates() {
	saved := false
	for _, n := range c.nodes {
		if n.AutoSave() {
			n.saveHist()
			saved = true
		}
	}
	for _, comp := range c.components {
		if s, ok := comp.(Saver); ok && s.AutoSaveOn() {
			s.SaveHist()
			saved = true
		}
	}
	if saved {
		c.saveTimes = append(c.saveTimes, c.t)
	}
}

// Reset restores t=0, empties every history, and re-marks the matrix dirty,
// returning the circuit to DC mode so the next SimToTime reprimes from
// scratch (spec.md §8 round-trip law).
func (c *Circuit) Reset() {
	c.t = 0
	c.mode = ModeDC
	c.dirty = true
	c.saveTimes = nil
	c.driverH = c.maxStep

	for _, n := range c.nodes {
		n.clearHist()
	}
	for _, comp := range c.components {
		if s, ok := comp.(Saver); ok {
			s.ClearHist()
		}
	}
	for _, m := range c.modulators {
		m.Reset()
	}
}

// nextModulatorTime returns the earliest NextChangeTime() across every
// registered modulator, or +Inf if there are none.
func (c *Circuit) nextModulatorTime() float64 {
	min := math.Inf(1)
	for _, m := range c.modulators {
		if t := m.NextChangeTime(); t < min {
			min = t
		}
	}
	return min
}

// nextSaveTime implements spec.md §4.7's next_save_time(): the next
// save_period boundary after t, or +Inf if save_period is 0 or unset
// (meaning "save every computed step" rather than on a schedule).
func (c *Circuit) nextSaveTime() float64 {
	if c.savePeriod <= 0 {
		return math.Inf(1)
	}
	return (epsilonFloor(c.t/c.savePeriod) + 1) * c.savePeriod
}

// nextStepDuration implements spec.md §4.7's next_step_duration().
func (c *Circuit) nextStepDuration() float64 {
	h := c.driverH
	if h <= 0 {
		h = c.maxStep
	}
	d := math.Min(h, c.maxStep)
	d = math.Min(d, c.nextSaveTime()-c.t)
	d = math.Min(d, c.nextModulatorTime()-c.t)
	if d < c.minStep {
		d = c.minStep
	}
	return d
}

// NextStepTime is a convenience wrapper over next_step_duration, restored
// from original_source's Circuit::next_step_time (spec.md does not name it
// directly but §4.7 defines the quantity it wraps).
func (c *Circuit) NextStepTime() float64 {
	return c.t + c.nextStepDuration()
}

func epsilonFloor(x float64) float64 {
	f := math.Floor(x)
	cl := math.Ceil(x)
	if cl-x < Epsilon {
		return cl
	}
	return f
}

func epsilonEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// solveMatrix re-evaluates the symbolic system into the numeric matrix,
// factorizes, solves, and copies the result into solvedVec in place (never
// reassigning the slice, since Node/Component voltage references are
// pointers into its backing array).
func (c *Circuit) solveMatrix() error {
	sol, err := c.numeric.Evaluate(c.symbolic)
	if err != nil {
		switch {
		case errors.Is(err, expr.ErrDivisionByZero):
			return err
		case errors.Is(err, matrix.ErrFactorization):
			return fmt.Errorf("%w: %v", ErrFactorizationFailed, err)
		case errors.Is(err, matrix.ErrSolve):
			return fmt.Errorf("%w: %v", ErrSolveFailed, err)
		default:
			return err
		}
	}
	copy(c.solvedVec, sol)
	return nil
}
