package matrix

import (
	"errors"
	"fmt"

	"github.com/edp1096/sparse"
)

// ErrFactorization and ErrSolve are wrapped with the underlying sparse
// library error by Numeric.Evaluate; callers outside this package should
// match them with errors.Is.
var (
	ErrFactorization = errors.New("matrix: factorization failed")
	ErrSolve         = errors.New("matrix: solve failed")
)

// Numeric wraps a real-valued github.com/edp1096/sparse matrix sized to
// match a Symbolic system. AC/complex analysis is out of scope (spec
// Non-goal), so unlike the teacher's CircuitMatrix this only ever uses the
// real element path.
type Numeric struct {
	size int
	mat  *sparse.Matrix
	rhs  []float64
	sol  []float64
}

// NewNumeric creates a size x size real sparse system and pre-registers
// every cell the symbolic system defines, matching the teacher's
// SetupElements pattern of touching every structural nonzero once before
// the first factorization.
func NewNumeric(sym *Symbolic) (*Numeric, error) {
	config := &sparse.Configuration{
		Real:           true,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(sym.Size), config)
	if err != nil {
		return nil, fmt.Errorf("matrix: create: %w", err)
	}

	n := &Numeric{
		size: sym.Size,
		mat:  mat,
		rhs:  make([]float64, sym.Size+1),
		sol:  make([]float64, sym.Size+1),
	}

	for k := range sym.cells {
		mat.GetElement(int64(k.Row+1), int64(k.Col+1))
	}

	return n, nil
}

// Evaluate re-evaluates every symbolic cell/RHS entry and loads the
// results into the sparse matrix, then factorizes and solves, mirroring
// Circuit::update_matrix followed by Circuit::solve_matrix.
func (n *Numeric) Evaluate(sym *Symbolic) ([]float64, error) {
	n.mat.Clear()
	for i := range n.rhs {
		n.rhs[i] = 0
	}

	var evalErr error
	for k, e := range sym.cells {
		v, err := e.Eval()
		if err != nil {
			evalErr = err
			continue
		}
		if v != 0 {
			n.mat.GetElement(int64(k.Row+1), int64(k.Col+1)).Real += v
		}
	}
	for row := 0; row < sym.Size; row++ {
		v, err := sym.rhs[row].Eval()
		if err != nil {
			evalErr = err
			continue
		}
		n.rhs[row+1] = v
	}
	if evalErr != nil {
		return nil, evalErr
	}

	if err := n.mat.Factor(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFactorization, err)
	}

	sol, err := n.mat.Solve(n.rhs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolve, err)
	}
	n.sol = sol

	// sol is 1-indexed (sol[0] unused); return the 0-indexed view callers
	// expect so it lines up with Symbolic's own 0-indexed rows.
	return n.sol[1:], nil
}

// Destroy releases the underlying sparse matrix.
func (n *Numeric) Destroy() {
	if n.mat != nil {
		n.mat.Destroy()
	}
}
