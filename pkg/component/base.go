// Package component implements the concrete two-terminal circuit elements:
// Resistor, VoltageSource, CurrentSource, Capacitor, Inductor. Each
// satisfies circuit.Component (and, for the energy-storing pair,
// circuit.IntegratingComponent) so pkg/circuit never needs to import this
// package — component depends on circuit, not the other way around.
//
// Grounded on original_source/lib/Core/TwoTerminalComponent.cpp for the
// connection/flip/value/history bookkeeping shared by every element here.
package component

import (
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/modulator"
)

// Base implements the bookkeeping every two-terminal component shares:
// terminal connection, optional modulator control of Value, history
// recording, and the circuit_v_expr/circuit_i_expr the matrix builder
// publishes back after each rebuild.
type Base struct {
	parent   *circuit.Circuit
	top, bot *circuit.Node
	mod      modulator.Modulator

	// Value is this component's generic numeric parameter (resistance,
	// capacitance, inductance, source magnitude). Component expressions
	// hold a pointer into this field, so mutating it is reflected the
	// next time the matrix is evaluated without any rebuild.
	Value float64

	circuitV, circuitI circuit.Expression

	AutoSave     bool
	vHist, iHist []float64
}

// NewBase wires a Base to its parent circuit with an initial value.
func NewBase(c *circuit.Circuit, value float64) Base {
	return Base{parent: c, Value: value}
}

// Top and Bot return the bound nodes, or nil before connection.
func (b *Base) Top() *circuit.Node { return b.top }
func (b *Base) Bot() *circuit.Node { return b.bot }

// Parent returns the circuit this component was constructed against.
func (b *Base) Parent() *circuit.Circuit { return b.parent }

// Mode returns the parent circuit's current simulation mode, a shorthand
// used by expression-building methods that branch on DC vs transient.
func (b *Base) Mode() circuit.Mode { return b.parent.Mode() }

// FullyConnected reports whether both terminals are bound.
func (b *Base) FullyConnected() bool { return b.top != nil && b.bot != nil }

// BindCircuitExprs records the matrix builder's computed
// circuit_v_expr/circuit_i_expr for this component.
func (b *Base) BindCircuitExprs(v, i circuit.Expression) {
	b.circuitV = v
	b.circuitI = i
}

// Voltage returns the voltage across this component from the last solve.
func (b *Base) Voltage() float64 { return b.circuitV.MustEval() }

// Current returns the current through this component from the last solve.
func (b *Base) Current() float64 { return b.circuitI.MustEval() }

// Power returns Voltage() * Current().
func (b *Base) Power() float64 { return b.Voltage() * b.Current() }

// GetValue returns the component's current numeric value.
func (b *Base) GetValue() float64 { return b.Value }

// SetValue updates the component's value directly. It fails with
// ErrModulatedValueConflict if a modulator already controls this value.
func (b *Base) SetValue(v float64) error {
	if b.mod != nil {
		return circuit.ErrModulatedValueConflict
	}
	b.Value = v
	return nil
}

// SetModulator hands control of Value to a modulator, replacing any
// modulator already controlling it.
func (b *Base) SetModulator(m modulator.Modulator, flags modulator.Flag) {
	b.RemoveModulator()
	b.mod = m
	m.Control(&b.Value, flags)
}

// RemoveModulator detaches this component's value from its modulator, if
// any, letting SetValue take direct control again.
func (b *Base) RemoveModulator() {
	if b.mod != nil {
		b.mod.Uncontrol(&b.Value)
		b.mod = nil
	}
}

// SaveHist appends the current voltage/current to this component's
// history, mirroring TwoTerminalComponent::save_hist.
func (b *Base) SaveHist() {
	b.vHist = append(b.vHist, b.Voltage())
	b.iHist = append(b.iHist, b.Current())
}

// ClearHist empties the recorded history.
func (b *Base) ClearHist() {
	b.vHist = nil
	b.iHist = nil
}

// VHist and IHist return the recorded voltage/current history.
func (b *Base) VHist() []float64 { return b.vHist }
func (b *Base) IHist() []float64 { return b.iHist }

// AutoSaveOn and SetAutoSaveOn satisfy circuit.Saver, letting Circuit.SaveAll
// and Circuit.saveStates reach every component's history flag/recorder
// through the circuit.Component interface without importing this package.
func (b *Base) AutoSaveOn() bool     { return b.AutoSave }
func (b *Base) SetAutoSaveOn(v bool) { b.AutoSave = v }

// connectTop binds this component's top terminal. self must be the
// concrete component embedding this Base, since Node.Bind needs the
// circuit.Component interface value for the concrete type.
func (b *Base) connectTop(self circuit.Component, n *circuit.Node) error {
	if b.top != nil {
		return circuit.ErrDoubleConnection
	}
	b.top = n
	n.Bind(self, circuit.Leaving)
	return nil
}

// connectBot binds this component's bottom terminal.
func (b *Base) connectBot(self circuit.Component, n *circuit.Node) error {
	if n == b.top {
		return circuit.ErrSelfConnection
	}
	if b.bot != nil {
		return circuit.ErrDoubleConnection
	}
	b.bot = n
	n.Bind(self, circuit.Entering)
	return nil
}

// flip swaps top and bottom, inverting the recorded current direction at
// each bound node.
func (b *Base) flip(self circuit.Component) {
	b.top, b.bot = b.bot, b.top
	if b.top != nil {
		b.top.FlipDirection(self)
	}
	if b.bot != nil {
		b.bot.FlipDirection(self)
	}
}

// wireable is satisfied by every concrete component in this package; it
// lets the package-level Connect/Flip helpers reach into an embedded
// Base's unexported connection methods regardless of the component's
// concrete type.
type wireable interface {
	circuit.Component
	Parent() *circuit.Circuit
	connectTop(self circuit.Component, n *circuit.Node) error
	connectBot(self circuit.Component, n *circuit.Node) error
	flip(self circuit.Component)
}

// Connect wires top -> comp -> bot, registering comp with the circuit
// (which also marks the topology dirty) and binding both terminals. Matches
// the connection order of original_source's `top->to(comp)->to(bot)`
// chaining idiom, expressed as a single call instead of chained returns.
func Connect(c *circuit.Circuit, top *circuit.Node, comp wireable, bot *circuit.Node) error {
	if top.Parent() != c || bot.Parent() != c || comp.Parent() != c {
		return circuit.ErrWrongCircuit
	}
	if err := comp.connectTop(comp, top); err != nil {
		return err
	}
	if err := comp.connectBot(comp, bot); err != nil {
		return err
	}
	c.AddComponent(comp)
	return nil
}

// Flip reverses a connected component's polarity in place.
func Flip(comp wireable) {
	comp.flip(comp)
}
