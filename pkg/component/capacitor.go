package component

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/circuit"

// Capacitor is an energy-storing component whose state variable is its own
// voltage. DC mode: an open circuit, unless an initial condition was
// specified, in which case it behaves as an ideal voltage source fixed at
// that value. Transient mode: a Norton companion model driven by the live
// step size and the capacitor's current ODE state value.
//
// Grounded on original_source/lib/Component/Capacitor.cpp. The companion
// model's sign convention (current = C/dt * (V_top - V_bot - var)) is kept
// exactly as there: it is what makes the relaxation in the transient loop
// converge var toward V_top-V_bot rather than away from it, which matters
// for scenarios like RC charging (spec.md test scenario 3).
type Capacitor struct {
	IntegBase
}

// NewCapacitor constructs an unconnected capacitor of the given
// capacitance in farads, with no initial condition (DC solve will prime
// it).
func NewCapacitor(c *circuit.Circuit, farads float64) *Capacitor {
	return &Capacitor{IntegBase: NewIntegBase(c, farads)}
}

// NewCapacitorIC constructs a capacitor with a user-specified initial
// voltage, bypassing DC priming for it.
func NewCapacitorIC(c *circuit.Circuit, farads, initialVolts float64) *Capacitor {
	cp := NewCapacitor(c, farads)
	cp.SetInitialCond(initialVolts)
	return cp
}

func (cp *Capacitor) IExpr() circuit.Expression {
	if cp.Mode() == circuit.ModeDC {
		return nil
	}
	return cp.tranIExpr()
}

func (cp *Capacitor) tranIExpr() circuit.Expression {
	top, bot := cp.Top(), cp.Bot()
	dt := cp.Parent().Step()
	return circuit.Expression{
		circuit.Term{Coeff: -1, Num: []*float64{cp.Var(), &cp.Value}, Den: []*float64{dt}},
		circuit.Term{Coeff: 1, Num: []*float64{top.V(), &cp.Value}, Den: []*float64{dt}},
		circuit.Term{Coeff: -1, Num: []*float64{bot.V(), &cp.Value}, Den: []*float64{dt}},
	}
}

func (cp *Capacitor) VExpr() circuit.Expression {
	if cp.Mode() != circuit.ModeDC {
		return nil
	}
	if cp.InitialCondSpecified() {
		return circuit.Expression{circuit.Term{Coeff: 1, Num: []*float64{cp.InitialCondPtr()}}}
	}
	return nil
}

func (cp *Capacitor) DydtExpr() circuit.Expression {
	top, bot := cp.Top(), cp.Bot()
	dt := cp.Parent().Step()
	return circuit.Expression{
		circuit.Term{Coeff: -1, Num: []*float64{cp.Var()}, Den: []*float64{dt}},
		circuit.Term{Coeff: 1, Num: []*float64{top.V()}, Den: []*float64{dt}},
		circuit.Term{Coeff: -1, Num: []*float64{bot.V()}, Den: []*float64{dt}},
	}
}

// GenInitialCond latches the capacitor's now-solved DC voltage as its
// initial condition.
func (cp *Capacitor) GenInitialCond() {
	cp.SetInitialCond(cp.Voltage())
}
