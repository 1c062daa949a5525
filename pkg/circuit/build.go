package circuit

import (
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/matrix"
	"github.com/aWZHY0yQH81uOYvH/libspice/pkg/stepper"
)

// build assembles the symbolic MNA matrix from the current topology,
// following spec.md §4.3's nine numbered steps exactly. It is invoked
// whenever the dirty flag is set, from either DC priming or the transient
// loop.
func (c *Circuit) build() error {
	// Step 1: every component must be fully connected.
	for _, comp := range c.components {
		if !comp.FullyConnected() {
			return ErrNotConnected
		}
	}

	// Step 2: N = node count; M = voltage-defining component count. A
	// component is voltage-defining in the current mode iff VExpr() is
	// non-empty (spec §4.2's "empty means undefined" contract).
	N := len(c.nodes)

	type vdef struct {
		comp Component
		idx  int
	}
	var vdefs []vdef
	for _, comp := range c.components {
		if !comp.VExpr().Empty() {
			vdefs = append(vdefs, vdef{comp: comp, idx: N + len(vdefs)})
		}
	}
	M := len(vdefs)
	size := N + M

	// Step 3: reset containers.
	c.symbolic = matrix.NewSymbolic(size)
	c.solvedVec = make([]float64, size)

	// Step 4: bind node voltage references. Fixed nodes keep pointing at
	// their own fixedV; free nodes point into solvedVec. Build the
	// pointer->index map the KCL assembly (step 7) needs to recognize a
	// node-voltage reference inside a term's numerator.
	ptrToIdx := make(map[*float64]int, N)
	for i, n := range c.nodes {
		n.idx = i
		if n.fixed {
			n.v = &n.fixedV
		} else {
			n.v = &c.solvedVec[i]
		}
		ptrToIdx[n.v] = i
	}

	// Step 5: (re)allocate the ODE driver in transient mode with at least
	// one integrating component; set the live step size to the driver's
	// current step; seed the state vector from each IC's initial condition
	// and bind its var; cache dydt expressions.
	K := len(c.intComps)
	c.odeState = make([]float64, K)
	c.dydtExprs = make([]Expression, K)
	c.stepperI = nil

	if c.mode == ModeTransient && K > 0 {
		switch c.stepperKind {
		case RKF45:
			c.stepperI = stepper.NewRKF45(K)
		default:
			return ErrDriverAllocationFailed
		}
		c.ctrl = stepper.Control{AbsTol: c.absTol, RelTol: c.relTol}
		if c.driverH <= 0 {
			c.driverH = c.maxStep
		}
		c.dt = c.driverH
		for i, ic := range c.intComps {
			c.odeState[i] = ic.InitialCond()
			ic.BindVar(&c.odeState[i])
		}
		for i, ic := range c.intComps {
			c.dydtExprs[i] = ic.DydtExpr()
		}
	}

	// Step 6: publish circuit_v_expr (Vtop-Vbot reference form) and
	// circuit_i_expr (the component's own i_expr, or a reference to its
	// MNA branch-current slot if it is voltage-defined) to every
	// component.
	for _, comp := range c.components {
		top, bot := comp.Top(), comp.Bot()
		vexpr := Expression{
			Term{Coeff: 1, Num: []*float64{top.V()}},
			Term{Coeff: -1, Num: []*float64{bot.V()}},
		}

		var iexpr Expression
		if ie := comp.IExpr(); !ie.Empty() {
			iexpr = ie
		} else {
			for _, vd := range vdefs {
				if vd.comp == comp {
					iexpr = Expression{Term{Coeff: 1, Num: []*float64{&c.solvedVec[vd.idx]}}}
					break
				}
			}
		}
		comp.BindCircuitExprs(vexpr, iexpr)
	}

	// Step 7: KCL at every node row.
	for i, n := range c.nodes {
		if n.fixed {
			c.symbolic.AddTerm(i, i, Term{Coeff: 1})
			c.symbolic.AddRHSTerm(i, Term{Coeff: n.fixedV})
			continue
		}
		for _, comp := range n.order {
			entering := n.connections[comp]
			ie := comp.IExpr()
			if ie.Empty() {
				continue
			}
			sign := 1.0
			if !entering {
				sign = -1.0
			}
			for _, term := range ie {
				t := term
				t.Coeff *= sign

				matchedCol := -1
				matchedAt := -1
				for k, ref := range t.Num {
					if col, ok := ptrToIdx[ref]; ok {
						matchedCol = col
						matchedAt = k
						break
					}
				}

				if matchedAt >= 0 {
					newNum := make([]*float64, 0, len(t.Num)-1)
					newNum = append(newNum, t.Num[:matchedAt]...)
					newNum = append(newNum, t.Num[matchedAt+1:]...)
					t.Num = newNum
					c.symbolic.AddTerm(i, matchedCol, t)
				} else {
					t.Coeff = -t.Coeff
					c.symbolic.AddRHSTerm(i, t)
				}
			}
		}
	}

	// Step 8: extra row/columns for voltage-defining components.
	for _, vd := range vdefs {
		top, bot := vd.comp.Top(), vd.comp.Bot()
		if !top.Fixed() {
			c.symbolic.AddTerm(top.idx, vd.idx, Term{Coeff: 1})
		}
		if !bot.Fixed() {
			c.symbolic.AddTerm(bot.idx, vd.idx, Term{Coeff: -1})
		}
		c.symbolic.AddTerm(vd.idx, top.idx, Term{Coeff: 1})
		c.symbolic.AddTerm(vd.idx, bot.idx, Term{Coeff: -1})
		for _, term := range vd.comp.VExpr() {
			c.symbolic.AddRHSTerm(vd.idx, term)
		}
	}

	numeric, err := matrix.NewNumeric(c.symbolic)
	if err != nil {
		return err
	}
	c.numeric = numeric

	// Step 9: clear pending flag; stays dirty only for future topology
	// changes.
	c.dirty = false
	return nil
}
