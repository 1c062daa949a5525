package component

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"

// CurrentSource is an ideal current source: dc_i_expr = value, held
// constant in transient mode too. Grounded on
// original_source/include/Component/ISource.hpp, rebased onto the
// TwoTerminalComponent contract the rest of the package uses (the
// original's ISource.hpp predates that split and extends Component
// directly; lib/Component never carries an ISource.cpp to supersede it).
type CurrentSource struct {
	Base
}

// NewCurrentSource constructs an unconnected ideal current source of the
// given value in amps, flowing from top to bottom.
func NewCurrentSource(c *circuit.Circuit, amps float64) *CurrentSource {
	return &CurrentSource{Base: NewBase(c, amps)}
}

func (i *CurrentSource) IExpr() circuit.Expression {
	return circuit.Expression{circuit.Term{Coeff: 1, Num: []*float64{&i.Value}}}
}

// VExpr is empty: a current source is current-defined, not voltage-defined.
func (i *CurrentSource) VExpr() circuit.Expression { return nil }
