package gosolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gs "github.com/njchilds90/gosolve"
)

func matrix(t *testing.T, rows, cols int, entries ...gs.Expr) *gs.Matrix {
	t.Helper()
	m, err := gs.MatrixFromSlice(rows, cols, entries)
	require.NoError(t, err)
	return m
}

func TestMatrix_Construction(t *testing.T) {
	m := gs.NewMatrix(2, 3)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, m.Cols())
	assert.False(t, m.IsSquare())
	assertSame(t, n(0), m.At(1, 2))
	assert.True(t, gs.IsUndefined(m.At(2, 0)))

	_, err := gs.MatrixFromSlice(2, 2, []gs.Expr{n(1), n(2), n(3)})
	assert.ErrorIs(t, err, gs.ErrDimension)

	assert.Equal(t, "[[1, 2, 3]]", gs.RowVector(n(1), n(2), n(3)).String())
	assert.True(t, gs.ColVector(n(1), n(2)).IsVector())
}

func TestMatrix_Arithmetic(t *testing.T) {
	a := matrix(t, 2, 2, n(1), n(2), n(3), n(4))
	b := matrix(t, 2, 2, n(0), n(1), n(1), n(0))

	assertSame(t, matrix(t, 2, 2, n(1), n(3), n(4), n(4)), gs.AddOf(a, b))
	assertSame(t, matrix(t, 2, 2, n(2), n(1), n(4), n(3)), gs.MulOf(a, b))
	assertSame(t, matrix(t, 2, 2, n(3), n(4), n(1), n(2)), gs.MulOf(b, a))
	assertSame(t, matrix(t, 2, 2, n(2), n(4), n(6), n(8)), gs.MulOf(n(2), a))
	assertSame(t, matrix(t, 2, 2, n(7), n(10), n(15), n(22)), gs.PowOf(a, n(2)))

	assert.True(t, gs.IsUndefined(gs.AddOf(a, gs.RowVector(n(1), n(2)))))
	assert.True(t, gs.IsUndefined(gs.AddOf(a, n(1))), "matrix plus scalar")

	u := gs.RowVector(n(1), n(2), n(3))
	v := gs.RowVector(n(4), n(5), n(6))
	assertSame(t, n(32), gs.MulOf(u, v))
	assertSame(t, n(32), u.Dot(v))
}

func TestMatrix_LinearAlgebra(t *testing.T) {
	a := matrix(t, 2, 2, n(1), n(2), n(3), n(4))
	assertSame(t, n(-2), a.Det())
	assertSame(t, n(5), a.Trace())
	assertSame(t, matrix(t, 2, 2, n(1), n(3), n(2), n(4)), a.Transpose())
	assertSame(t, gs.ColVector(n(1), n(2), n(3)), gs.RowVector(n(1), n(2), n(3)).Transpose())

	three := matrix(t, 3, 3, n(2), n(0), n(1), n(1), n(3), n(2), n(1), n(1), n(4))
	assertSame(t, n(18), three.Det())

	sym := matrix(t, 2, 2, x, n(1), n(1), x)
	assertSame(t, gs.SubOf(gs.PowOf(x, n(2)), n(1)), sym.Det())

	assert.True(t, gs.IsUndefined(gs.NewMatrix(2, 3).Det()))
	assert.True(t, gs.IsUndefined(gs.NewMatrix(2, 3).Trace()))
}

func TestMatrix_Inverse(t *testing.T) {
	a := matrix(t, 2, 2, n(1), n(2), n(3), n(4))
	inv, err := a.Inverse()
	require.NoError(t, err)
	assertSame(t, gs.F(3, 2), inv.At(1, 0))
	assertSame(t, gs.Identity(2), gs.MulOf(inv, a))
	assertSame(t, gs.Identity(2), gs.MulOf(a, inv))
	assertSame(t, inv, gs.PowOf(a, n(-1)))

	_, err = matrix(t, 2, 2, n(1), n(2), n(2), n(4)).Inverse()
	assert.ErrorIs(t, err, gs.ErrSingular)

	_, err = gs.NewMatrix(2, 3).Inverse()
	assert.ErrorIs(t, err, gs.ErrDimension)

	one, err := matrix(t, 1, 1, n(4)).Inverse()
	require.NoError(t, err)
	assertSame(t, gs.F(1, 4), one.At(0, 0))
}
