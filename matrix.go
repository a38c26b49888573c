package gosolve

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix: symbolic matrix and vectors
// ============================================================

// Matrix is a rows×cols grid of nodes. Vectors are 1×N or N×1 matrices.
// Matrices are never folded into numbers: a 1×1 matrix stays a matrix.
type Matrix struct {
	rows, cols int
	data       [][]Expr
}

// NewMatrix returns a rows×cols zero matrix.
func NewMatrix(rows, cols int) *Matrix {
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// MatrixFromSlice fills a matrix in row-major order.
func MatrixFromSlice(rows, cols int, entries []Expr) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || len(entries) != rows*cols {
		return nil, fmt.Errorf("matrix %dx%d from %d entries: %w", rows, cols, len(entries), ErrDimension)
	}
	m := NewMatrix(rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			m.data[i][j] = unwrap(entries[i*cols+j])
		}
	}
	return m, nil
}

// RowVector builds a 1×N matrix.
func RowVector(entries ...Expr) *Matrix {
	m := NewMatrix(1, len(entries))
	for j, e := range entries {
		m.data[0][j] = unwrap(e)
	}
	return m
}

// ColVector builds an N×1 matrix.
func ColVector(entries ...Expr) *Matrix {
	m := NewMatrix(len(entries), 1)
	for i, e := range entries {
		m.data[i][0] = unwrap(e)
	}
	return m
}

// Identity returns the n×n identity.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.data[i][i] = N(1)
	}
	return m
}

func (m *Matrix) Rows() int      { return m.rows }
func (m *Matrix) Cols() int      { return m.cols }
func (m *Matrix) IsVector() bool { return m.rows == 1 || m.cols == 1 }
func (m *Matrix) IsSquare() bool { return m.rows == m.cols }

// At returns the entry at (row, col), or Undefined when out of range.
func (m *Matrix) At(row, col int) Expr {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return Undef()
	}
	return m.data[row][col]
}

func (m *Matrix) exprType() string   { return "matrix" }
func (m *Matrix) Eval() (*Num, bool) { return nil, false }

func (m *Matrix) sortKey() string { return "6:" + m.String() }

func (m *Matrix) Equal(other Expr) bool {
	o, ok := other.(*Matrix)
	if !ok || o.rows != m.rows || o.cols != m.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if !m.data[i][j].Equal(o.data[i][j]) {
				return false
			}
		}
	}
	return true
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{pmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}

func (m *Matrix) toJSON() map[string]interface{} {
	rows := make([]interface{}, m.rows)
	for i := 0; i < m.rows; i++ {
		row := make([]interface{}, m.cols)
		for j := 0; j < m.cols; j++ {
			row[j] = m.data[i][j].toJSON()
		}
		rows[i] = row
	}
	return map[string]interface{}{"type": "matrix", "rows": rows}
}

func (m *Matrix) mapCells(fn func(Expr) Expr) Expr {
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			v := fn(m.data[i][j])
			if IsUndefined(v) {
				return Undef()
			}
			result.data[i][j] = v
		}
	}
	return result
}

func (m *Matrix) Sub(varName string, value Expr) Expr {
	return m.mapCells(func(e Expr) Expr { return e.Sub(varName, value) })
}

func (m *Matrix) Diff(varName string) Expr {
	return m.mapCells(func(e Expr) Expr { return e.Diff(varName) })
}

// ============================================================
// Matrix combine rules
// ============================================================

func (m *Matrix) add(o *Matrix) Expr {
	if m.rows != o.rows || m.cols != o.cols {
		return Undef()
	}
	result := NewMatrix(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			v := add(m.data[i][j], o.data[i][j])
			if IsUndefined(v) {
				return Undef()
			}
			result.data[i][j] = v
		}
	}
	return result
}

// mul is the matrix product when the inner dimensions agree and the dot
// product for two vectors of the same shape.
func (m *Matrix) mul(o *Matrix) Expr {
	if m.cols == o.rows {
		result := NewMatrix(m.rows, o.cols)
		for i := 0; i < m.rows; i++ {
			for j := 0; j < o.cols; j++ {
				var acc Expr = N(0)
				for k := 0; k < m.cols; k++ {
					acc = add(acc, mul(m.data[i][k], o.data[k][j]))
				}
				if IsUndefined(acc) {
					return Undef()
				}
				result.data[i][j] = acc
			}
		}
		return result
	}
	if m.IsVector() && m.rows == o.rows && m.cols == o.cols {
		return m.Dot(o)
	}
	return Undef()
}

// Dot is the sum of element-wise products of two same-shape matrices.
func (m *Matrix) Dot(o *Matrix) Expr {
	if m.rows != o.rows || m.cols != o.cols {
		return Undef()
	}
	var acc Expr = N(0)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			acc = add(acc, mul(m.data[i][j], o.data[i][j]))
		}
	}
	return acc
}

func (m *Matrix) scale(s Expr) Expr {
	return m.mapCells(func(e Expr) Expr { return mul(s, e) })
}

func (m *Matrix) pow(e Expr) Expr {
	en, ok := e.(*Num)
	if !ok || !m.IsSquare() {
		return Undef()
	}
	k, ok := en.Int64()
	if !ok || en.approx {
		return Undef()
	}
	base := m
	if k < 0 {
		inv, err := m.Inverse()
		if err != nil {
			return Undef()
		}
		base = inv
		k = -k
	}
	var acc Expr = Identity(m.rows)
	for i := int64(0); i < k; i++ {
		acc = mul(acc, base)
		if IsUndefined(acc) {
			return acc
		}
	}
	return acc
}

// ============================================================
// Linear algebra
// ============================================================

func (m *Matrix) Transpose() *Matrix {
	result := NewMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			result.data[j][i] = m.data[i][j]
		}
	}
	return result
}

// Trace is the sum of the diagonal; non-square matrices have none.
func (m *Matrix) Trace() Expr {
	if !m.IsSquare() {
		return Undef()
	}
	terms := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms[i] = m.data[i][i]
	}
	return AddOf(terms...)
}

// Det is the cofactor-expansion determinant; non-square matrices have none.
func (m *Matrix) Det() Expr {
	if !m.IsSquare() {
		return Undef()
	}
	return matDet(m.data, m.rows)
}

func matDet(data [][]Expr, n int) Expr {
	if n == 1 {
		return data[0][0]
	}
	if n == 2 {
		return SubOf(MulOf(data[0][0], data[1][1]), MulOf(data[0][1], data[1][0]))
	}
	terms := make([]Expr, n)
	for j := 0; j < n; j++ {
		sign := N(1)
		if j%2 == 1 {
			sign = N(-1)
		}
		terms[j] = MulOf(sign, data[0][j], matDet(makeMinor(data, n, 0, j), n-1))
	}
	return AddOf(terms...)
}

func makeMinor(data [][]Expr, n, skipRow, skipCol int) [][]Expr {
	minor := make([][]Expr, 0, n-1)
	for i := 0; i < n; i++ {
		if i == skipRow {
			continue
		}
		row := make([]Expr, 0, n-1)
		for j := 0; j < n; j++ {
			if j != skipCol {
				row = append(row, data[i][j])
			}
		}
		minor = append(minor, row)
	}
	return minor
}

// Inverse is the adjugate divided by the determinant.
func (m *Matrix) Inverse() (*Matrix, error) {
	if !m.IsSquare() {
		return nil, fmt.Errorf("inverse of %dx%d matrix: %w", m.rows, m.cols, ErrDimension)
	}
	det := m.Det()
	if dn, ok := det.Eval(); ok && dn.IsZero() {
		return nil, ErrSingular
	}
	n := m.rows
	if n == 1 {
		inv := DivOf(N(1), m.data[0][0])
		if IsUndefined(inv) {
			return nil, ErrSingular
		}
		return &Matrix{rows: 1, cols: 1, data: [][]Expr{{inv}}}, nil
	}
	adj := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			sign := N(1)
			if (i+j)%2 == 1 {
				sign = N(-1)
			}
			adj.data[j][i] = MulOf(sign, matDet(makeMinor(m.data, n, i, j), n-1))
		}
	}
	inv, ok := adj.scale(PowOf(det, N(-1))).(*Matrix)
	if !ok {
		return nil, ErrSingular
	}
	return inv, nil
}
