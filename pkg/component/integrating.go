package component

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"

// IntegBase implements the bookkeeping circuit.IntegratingComponent needs
// on top of Base: the initial-condition scalar, whether it was
// user-specified, and the live pointer into the ODE state vector that the
// matrix builder binds after each rebuild.
//
// Grounded on original_source/lib/Core/IntegratingComponent.cpp.
type IntegBase struct {
	Base

	varPtr               *float64
	initialCond          float64
	initialCondSpecified bool
}

// NewIntegBase wires an IntegBase to its parent circuit with an initial
// value (capacitance or inductance, not the state variable).
func NewIntegBase(c *circuit.Circuit, value float64) IntegBase {
	return IntegBase{Base: NewBase(c, value)}
}

// SetInitialCond marks this component's initial condition as
// user-specified, so the next DC solve will not overwrite it via
// GenInitialCond.
func (ib *IntegBase) SetInitialCond(v float64) {
	ib.initialCond = v
	ib.initialCondSpecified = true
}

func (ib *IntegBase) InitialCondSpecified() bool { return ib.initialCondSpecified }
func (ib *IntegBase) InitialCond() float64       { return ib.initialCond }

// InitialCondPtr returns a live pointer to the initial condition scalar,
// for components that need to build an Expression term referencing it
// (a DC voltage/current source use of a latched or user-set value).
func (ib *IntegBase) InitialCondPtr() *float64 { return &ib.initialCond }

// Var returns the bound ODE state slot, or nil before a transient matrix
// build has run.
func (ib *IntegBase) Var() *float64 { return ib.varPtr }

// BindVar points this component's integration variable at its slot in the
// circuit's ODE state vector. The caller is responsible for seeding that
// slot from InitialCond() first.
func (ib *IntegBase) BindVar(v *float64) { ib.varPtr = v }
