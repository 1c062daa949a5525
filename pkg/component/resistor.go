package component

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"

// Resistor is an ohmic two-terminal component: dc_i_expr = (V_top-V_bot)/R,
// identical in DC and transient mode (grounded on
// original_source/lib/Component/Resistor.cpp).
type Resistor struct {
	Base
}

// NewResistor constructs an unconnected resistor of the given resistance in
// ohms.
func NewResistor(c *circuit.Circuit, ohms float64) *Resistor {
	return &Resistor{Base: NewBase(c, ohms)}
}

func (r *Resistor) IExpr() circuit.Expression {
	top, bot := r.Top(), r.Bot()
	if top == nil || bot == nil {
		return nil
	}
	return circuit.Expression{
		circuit.Term{Coeff: 1, Num: []*float64{top.V()}, Den: []*float64{&r.Value}},
		circuit.Term{Coeff: -1, Num: []*float64{bot.V()}, Den: []*float64{&r.Value}},
	}
}

// VExpr is empty: a resistor is current-defined, never voltage-defined.
func (r *Resistor) VExpr() circuit.Expression { return nil }
