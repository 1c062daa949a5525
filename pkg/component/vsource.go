package component

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"

// VoltageSource is an ideal voltage source: dc_v_expr = value, held
// constant in transient mode too (grounded on original_source's
// include/Component/VSource.hpp / test.cpp usage). Producing a non-empty
// voltage expression means the matrix builder allocates an extra MNA
// variable for its branch current.
type VoltageSource struct {
	Base
}

// NewVoltageSource constructs an unconnected ideal voltage source of the
// given value in volts.
func NewVoltageSource(c *circuit.Circuit, volts float64) *VoltageSource {
	return &VoltageSource{Base: NewBase(c, volts)}
}

// IExpr is empty: a voltage source is voltage-defined, not current-defined.
func (v *VoltageSource) IExpr() circuit.Expression { return nil }

func (v *VoltageSource) VExpr() circuit.Expression {
	return circuit.Expression{circuit.Term{Coeff: 1, Num: []*float64{&v.Value}}}
}
