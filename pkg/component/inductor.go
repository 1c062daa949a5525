package component

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"

// Inductor is an energy-storing component whose state variable is its own
// current. DC mode: a short (0V) unless an initial condition was
// specified, in which case it behaves as an ideal current source fixed at
// that value. Transient mode: a companion model driven by the live step
// size and the inductor's current ODE state value.
//
// Grounded on original_source/lib/Component/Inductor.cpp.
type Inductor struct {
	IntegBase
}

// NewInductor constructs an unconnected inductor of the given inductance
// in henries, with no initial condition (DC solve will prime it).
func NewInductor(c *circuit.Circuit, henries float64) *Inductor {
	return &Inductor{IntegBase: NewIntegBase(c, henries)}
}

// NewInductorIC constructs an inductor with a user-specified initial
// current, bypassing DC priming for it.
func NewInductorIC(c *circuit.Circuit, henries, initialAmps float64) *Inductor {
	ind := NewInductor(c, henries)
	ind.SetInitialCond(initialAmps)
	return ind
}

func (ind *Inductor) IExpr() circuit.Expression {
	if ind.Mode() == circuit.ModeDC {
		if ind.InitialCondSpecified() {
			return circuit.Expression{circuit.Term{Coeff: 1, Num: []*float64{ind.InitialCondPtr()}}}
		}
		return nil
	}
	return ind.tranIExpr()
}

func (ind *Inductor) tranIExpr() circuit.Expression {
	top, bot := ind.Top(), ind.Bot()
	dt := ind.Parent().Step()
	return circuit.Expression{
		circuit.Term{Coeff: 1, Num: []*float64{ind.Var()}},
		circuit.Term{Coeff: 1, Num: []*float64{top.V(), dt}, Den: []*float64{&ind.Value}},
		circuit.Term{Coeff: -1, Num: []*float64{bot.V(), dt}, Den: []*float64{&ind.Value}},
	}
}

func (ind *Inductor) VExpr() circuit.Expression {
	if ind.Mode() != circuit.ModeDC {
		return nil
	}
	if ind.InitialCondSpecified() {
		return nil
	}
	// Not voltage-defined in the usual sense, but a non-empty expression
	// at exactly 0V tells the matrix builder to treat this terminal pair
	// as a short (an inductor looks like a wire at DC).
	return circuit.Expression{circuit.Term{Coeff: 0}}
}

func (ind *Inductor) DydtExpr() circuit.Expression {
	top, bot := ind.Top(), ind.Bot()
	return circuit.Expression{
		circuit.Term{Coeff: 1, Num: []*float64{top.V()}, Den: []*float64{&ind.Value}},
		circuit.Term{Coeff: -1, Num: []*float64{bot.V()}, Den: []*float64{&ind.Value}},
	}
}

// GenInitialCond latches the inductor's now-solved DC current as its
// initial condition. In DC an inductor without an initial condition is a
// 0V voltage-defined branch, whose MNA current slot counts current flowing
// from bottom to top; the state variable counts top to bottom, so the
// latched value is negated.
func (ind *Inductor) GenInitialCond() {
	ind.SetInitialCond(-ind.Current())
}
