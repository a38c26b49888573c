package gosolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gs "github.com/njchilds90/gosolve"
)

// holds evaluates "y c 0" the way a reader would.
func holds(c gs.Comparison, y float64) bool {
	switch c {
	case gs.CmpLt:
		return y < 0
	case gs.CmpLe:
		return y <= 0
	case gs.CmpGt:
		return y > 0
	case gs.CmpGe:
		return y >= 0
	}
	return y == 0
}

// assertSampled checks the solution set against direct evaluation on a
// grid that avoids integer and half-integer boundaries.
func assertSampled(t *testing.T, left gs.Expr, c gs.Comparison, right gs.Expr, set gs.Restriction) {
	t.Helper()
	f := gs.SubOf(left, right)
	for x := -8.0; x <= 8; x += 0.25 {
		p := x + 0.0173
		y, ok := gs.EvalFloat(f, "x", p)
		if !ok {
			assert.False(t, set.PermitsFloat(p), "%s permits %v outside the domain", set, p)
			continue
		}
		assert.Equal(t, holds(c, y), set.PermitsFloat(p), "%s %s %s at x = %v", left, c, right, p)
	}
}

func TestSolveInequality(t *testing.T) {
	tests := []struct {
		name  string
		left  gs.Expr
		cmp   gs.Comparison
		right gs.Expr
		want  string
	}{
		{"linear", gs.AddOf(gs.MulOf(n(2), x), n(3)), gs.CmpLe, n(7), "x <= 2"},
		{"negative slope flips", gs.MulOf(n(-2), x), gs.CmpGt, n(4), "x < -2"},
		{"outside two roots", gs.SubOf(gs.PowOf(x, n(2)), n(1)), gs.CmpGt, n(0), "x < -1 or x > 1"},
		{"between two roots", gs.SubOf(gs.PowOf(x, n(2)), n(4)), gs.CmpLe, n(0), "-2 <= x <= 2"},
		{"double root excluded", gs.PowOf(gs.SubOf(x, n(1)), n(2)), gs.CmpGt, n(0), "x != 1"},
		{"double root touches", gs.PowOf(gs.SubOf(x, n(1)), n(2)), gs.CmpLe, n(0), "x = 1"},
		{"three roots", gs.AddOf(gs.PowOf(x, n(3)), gs.MulOf(n(-6), gs.PowOf(x, n(2))), gs.MulOf(n(11), x), n(-6)), gs.CmpGe, n(0), "1 <= x <= 2 or x >= 3"},
		{"radical within its domain", gs.Sqrt(x), gs.CmpLt, n(2), "0 <= x < 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := gs.SolveInequality("x", tt.left, tt.cmp, tt.right)
			require.Equal(t, gs.StatusSolved, res.Status, "result: %s", res)
			require.Len(t, res.Restrictions, 1)
			assert.Equal(t, tt.want, res.Restrictions[0].String())
			assertSampled(t, tt.left, tt.cmp, tt.right, res.Restrictions[0])
		})
	}
}

func TestSolveInequality_RationalFunction(t *testing.T) {
	left := gs.DivOf(gs.AddOf(x, n(1)), gs.SubOf(x, n(2)))
	res := gs.SolveInequality("x", left, gs.CmpLe, n(0))
	require.Equal(t, gs.StatusSolved, res.Status)
	set := res.Restrictions[0]
	assert.True(t, set.PermitsFloat(-1), "root is included")
	assert.False(t, set.PermitsFloat(2), "pole is excluded")
	assert.True(t, set.PermitsFloat(0))
	assert.False(t, set.PermitsFloat(3))
	assertSampled(t, left, gs.CmpLe, n(0), set)
}

func TestSolveInequality_WholeLineAndEmpty(t *testing.T) {
	sq := gs.PowOf(gs.SubOf(x, n(1)), n(2))

	res := gs.SolveInequality("x", sq, gs.CmpGe, n(0))
	assert.Equal(t, gs.StatusAllSolutions, res.Status)

	res = gs.SolveInequality("x", sq, gs.CmpLt, n(0))
	assert.Equal(t, gs.StatusNoSolution, res.Status)

	res = gs.SolveInequality("x", gs.AddOf(gs.PowOf(x, n(2)), n(1)), gs.CmpGt, n(0))
	assert.Equal(t, gs.StatusAllSolutions, res.Status)

	res = gs.SolveInequality("x", n(3), gs.CmpGt, n(1))
	assert.Equal(t, gs.StatusAllSolutions, res.Status)

	res = gs.SolveInequality("x", n(1), gs.CmpGt, n(3))
	assert.Equal(t, gs.StatusNoSolution, res.Status)
	assert.Equal(t, "no numbers", res.Restrictions[0].String())
}

func TestSolveInequality_NonRealCriticalPoints(t *testing.T) {
	sum := gs.AddOf(gs.PowOf(x, n(2)), n(1))
	eq := gs.Solve("x", sum, n(0))
	require.Equal(t, gs.StatusSolved, eq.Status)
	require.Len(t, eq.Solutions, 2)

	res := gs.SolveInequality("x", gs.DivOf(sum, gs.SubOf(x, n(1))), gs.CmpGt, n(0))
	require.Equal(t, gs.StatusFailed, res.Status, "result: %s", res)
	assert.ErrorIs(t, res.Err, gs.ErrNonReal)
}

func TestSolveInequality_EqualityDelegates(t *testing.T) {
	res := gs.SolveInequality("x", gs.MulOf(n(3), x), gs.CmpEq, n(6))
	require.Equal(t, gs.StatusSolved, res.Status)
	assert.Empty(t, res.Restrictions)
	assertSame(t, n(2), res.Solutions[0].Exact)
}

func TestSolveInequality_PeriodicCriticalPointsFail(t *testing.T) {
	res := gs.SolveInequality("x", gs.Sin(x), gs.CmpGt, n(0))
	require.Equal(t, gs.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, gs.ErrStrategyFailed)
}

func TestSolveCompound(t *testing.T) {
	s := gs.NewAlgebraSolver()

	res := s.SolveCompound(t.Context(), "x", n(-1), gs.CmpLt, gs.MulOf(n(2), x), gs.CmpLe, n(6))
	require.Equal(t, gs.StatusSolved, res.Status)
	assert.Equal(t, "-1/2 < x <= 3", res.Restrictions[0].String())
	assert.Equal(t, "-1/2 < x <= 3", res.String())

	res = s.SolveEquation(t.Context(), "x", gs.Between(n(0), gs.CmpLt, x, gs.CmpLe, n(5)))
	require.Equal(t, gs.StatusSolved, res.Status)
	assert.Equal(t, "0 < x <= 5", res.Restrictions[0].String())

	res = s.SolveCompound(t.Context(), "x", n(5), gs.CmpLt, x, gs.CmpLt, n(1))
	require.Equal(t, gs.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, gs.ErrEmptyIntersection)
}

func TestSolveInequality_Inclusivity(t *testing.T) {
	for _, c := range []gs.Comparison{gs.CmpLt, gs.CmpLe, gs.CmpGt, gs.CmpGe} {
		res := gs.SolveInequality("x", gs.SubOf(x, n(3)), c, n(0))
		require.Equal(t, gs.StatusSolved, res.Status)
		set := res.Restrictions[0]
		assert.Equal(t, c.Inclusive(), set.PermitsFloat(3), "%s at the boundary", c)
		above := c == gs.CmpGt || c == gs.CmpGe
		assert.Equal(t, above, set.PermitsFloat(3.001))
		assert.Equal(t, !above, set.PermitsFloat(2.999))
	}
}
