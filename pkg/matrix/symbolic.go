// Package matrix holds the symbolic MNA matrix assembled once per circuit
// topology and the numeric sparse solve performed against it every step.
//
// Grounded on original_source/lib/Core/Circuit.cpp (gen_matrix/update_matrix)
// for the symbolic/evaluate split, and on the teacher's pkg/matrix/circuit.go
// for the github.com/edp1096/sparse wrapper conventions (Configuration,
// AddElement/AddRHS/Factor/Solve).
package matrix

import "github.com/aWZHY0yQH81uOYvH/libspice/pkg/expr"

type cellKey struct {
	Row, Col int
}

// Symbolic is the sum-of-products matrix and RHS vector the matrix builder
// assembles once per topology. Every cell is an Expression (possibly empty)
// so it can be cheaply re-evaluated every step without re-deriving the
// circuit's structure.
type Symbolic struct {
	Size  int
	cells map[cellKey]expr.Expression
	rhs   []expr.Expression
}

// NewSymbolic allocates an empty size x size symbolic system.
func NewSymbolic(size int) *Symbolic {
	return &Symbolic{
		Size:  size,
		cells: make(map[cellKey]expr.Expression),
		rhs:   make([]expr.Expression, size),
	}
}

// AddTerm appends t to the expression at (row, col), 0-indexed.
func (s *Symbolic) AddTerm(row, col int, t expr.Term) {
	k := cellKey{row, col}
	s.cells[k] = append(s.cells[k], t)
}

// AddRHSTerm appends t to the RHS expression at row, 0-indexed.
func (s *Symbolic) AddRHSTerm(row int, t expr.Term) {
	s.rhs[row] = append(s.rhs[row], t)
}

// Cells calls fn for every non-empty (row, col) pair and its expression.
func (s *Symbolic) Cells(fn func(row, col int, e expr.Expression)) {
	for k, e := range s.cells {
		fn(k.Row, k.Col, e)
	}
}

// RHS returns the RHS expression at row.
func (s *Symbolic) RHS(row int) expr.Expression {
	return s.rhs[row]
}
