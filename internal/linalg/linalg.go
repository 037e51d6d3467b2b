// Package linalg realizes the Matrix interface of spec.md §6 on top of
// gonum.org/v1/gonum/mat: construction (zeros, identity, from_rows), shape
// queries, element access, transpose, matmul, addition/subtraction, scalar
// scale, and a Cholesky-based inverse used to compute M⁻¹ in the Kalman
// engine's gain step. No particular library is mandated by the spec; gonum
// is the idiomatic choice for this corpus (see DESIGN.md). The inverse
// covers symmetric positive definite matrices, adding a small diagonal
// correction when a matrix is PSD only up to finite-precision error; it is
// not an LDLᵀ/pivoting solver, and a genuinely indefinite matrix is
// rejected with an error.
package linalg

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a dense real matrix; a thin alias over gonum's Dense so core
// packages depend on one name for the spec's Matrix interface.
type Matrix = mat.Dense

// Zeros returns an r x c matrix of zeros.
func Zeros(r, c int) *Matrix {
	return mat.NewDense(r, c, nil)
}

// Identity returns the n x n identity matrix.
func Identity(n int) *Matrix {
	m := Zeros(n, n)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

// FromRows builds a matrix from row-major data, one slice per row. All rows
// must have equal length.
func FromRows(rows [][]float64) *Matrix {
	if len(rows) == 0 {
		return Zeros(0, 0)
	}
	r := len(rows)
	c := len(rows[0])
	data := make([]float64, 0, r*c)
	for _, row := range rows {
		if len(row) != c {
			panic("linalg.FromRows: ragged rows")
		}
		data = append(data, row...)
	}
	return mat.NewDense(r, c, data)
}

// FromVector builds an n x 1 column matrix from a flat slice.
func FromVector(v []float64) *Matrix {
	return mat.NewDense(len(v), 1, append([]float64(nil), v...))
}

// Transpose returns a new matrix equal to m transposed.
func Transpose(m *Matrix) *Matrix {
	r, c := m.Dims()
	out := Zeros(c, r)
	out.Copy(m.T())
	return out
}

// MatMul returns a*b.
func MatMul(a, b *Matrix) *Matrix {
	ar, _ := a.Dims()
	_, bc := b.Dims()
	out := Zeros(ar, bc)
	out.Mul(a, b)
	return out
}

// Add returns a+b.
func Add(a, b *Matrix) *Matrix {
	r, c := a.Dims()
	out := Zeros(r, c)
	out.Add(a, b)
	return out
}

// Sub returns a-b.
func Sub(a, b *Matrix) *Matrix {
	r, c := a.Dims()
	out := Zeros(r, c)
	out.Sub(a, b)
	return out
}

// Scale returns s*m.
func Scale(s float64, m *Matrix) *Matrix {
	r, c := m.Dims()
	out := Zeros(r, c)
	out.Scale(s, m)
	return out
}

// Symmetrize returns ½(m + mᵀ), used to keep covariance matrices symmetric
// to within floating-point error after a correction step (spec.md §4.6).
func Symmetrize(m *Matrix) *Matrix {
	return Scale(0.5, Add(m, Transpose(m)))
}

// maxDiagLoad bounds how many factorizations InvertSPD attempts: one
// without correction, then retries with a growing diagonal correction,
// before giving up.
const maxDiagLoad = 8

// InvertSPD returns the inverse of m, which is expected symmetric positive
// definite. If Cholesky factorization fails because m is only positive
// semidefinite due to finite precision, a small diagonal correction is
// added and the factorization retried — the spec's documented numerical
// policy (§4.6), equivalent to treating observations as having marginally
// more noise.
func InvertSPD(m *Matrix) (*Matrix, error) {
	r, c := m.Dims()
	if r != c {
		return nil, fmt.Errorf("linalg: InvertSPD requires a square matrix, got %dx%d", r, c)
	}

	sym := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			v := 0.5 * (m.At(i, j) + m.At(j, i))
			sym.SetSym(i, j, v)
		}
	}

	eps := 0.0
	for attempt := 0; attempt < maxDiagLoad; attempt++ {
		trial := mat.NewSymDense(r, nil)
		trial.CopySym(sym)
		if eps > 0 {
			for i := 0; i < r; i++ {
				trial.SetSym(i, i, trial.At(i, i)+eps)
			}
		}

		var chol mat.Cholesky
		if chol.Factorize(trial) {
			var inv mat.SymDense
			if err := chol.InverseTo(&inv); err != nil {
				return nil, fmt.Errorf("linalg: InvertSPD: %w", err)
			}
			out := Zeros(r, r)
			out.Copy(&inv)
			return out, nil
		}

		if eps == 0 {
			eps = 1e-12
		} else {
			eps *= 10
		}
	}

	return nil, fmt.Errorf("linalg: InvertSPD: matrix not positive definite even after diagonal correction")
}

// Rows returns m's row count.
func Rows(m *Matrix) int { r, _ := m.Dims(); return r }

// Cols returns m's column count.
func Cols(m *Matrix) int { _, c := m.Dims(); return c }

// Row returns row i of m as a 1 x c matrix.
func Row(m *Matrix, i int) *Matrix {
	_, c := m.Dims()
	out := Zeros(1, c)
	for j := 0; j < c; j++ {
		out.Set(0, j, m.At(i, j))
	}
	return out
}

// ToFlat returns an n x 1 (or 1 x n) matrix's values as a flat slice.
func ToFlat(m *Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}
