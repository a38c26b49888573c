package gosolve_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gs "github.com/njchilds90/gosolve"
)

// realRoots returns the numeric value of every solution, failing when one
// is not a real number.
func realRoots(t *testing.T, res gs.SolveResult) []float64 {
	t.Helper()
	out := make([]float64, 0, len(res.Solutions))
	for _, s := range res.Solutions {
		require.NotNil(t, s.Approx, "root %s has no numeric value", s.Exact)
		require.True(t, s.Approx.IsReal(), "root %s is not real", s.Exact)
		out = append(out, s.Approx.Float64())
	}
	return out
}

// assertRoundTrip substitutes every real root back into left - right.
func assertRoundTrip(t *testing.T, left, right gs.Expr, res gs.SolveResult) {
	t.Helper()
	residual := gs.SubOf(left, right)
	for _, r := range realRoots(t, res) {
		v, ok := gs.EvalFloat(residual, "x", r)
		require.True(t, ok, "residual undefined at %v", r)
		assert.InDelta(t, 0, v, 1e-6*math.Max(1, math.Abs(r)), "residual at %v", r)
	}
}

func TestSolve_Scenarios(t *testing.T) {
	t.Run("linear", func(t *testing.T) {
		res := gs.Solve("x", gs.AddOf(gs.MulOf(n(2), x), n(3)), n(7))
		require.Equal(t, gs.StatusSolved, res.Status)
		require.Len(t, res.Solutions, 1)
		assertSame(t, n(2), res.Solutions[0].Exact)
		assert.Equal(t, "linear", res.Strategy)
		assert.Equal(t, "x = 2", res.Solutions[0].String())
	})
	t.Run("two rational roots", func(t *testing.T) {
		res := gs.Solve("x", gs.AddOf(gs.PowOf(x, n(2)), gs.MulOf(n(-5), x), n(6)), n(0))
		require.Equal(t, gs.StatusSolved, res.Status)
		assert.Equal(t, "quadratic", res.Strategy)
		assert.InDeltaSlice(t, []float64{2, 3}, realRoots(t, res), 1e-12)
	})
	t.Run("double root", func(t *testing.T) {
		res := gs.Solve("x", gs.AddOf(gs.PowOf(x, n(2)), gs.MulOf(n(-4), x), n(4)), n(0))
		require.Equal(t, gs.StatusSolved, res.Status)
		require.Len(t, res.Solutions, 1)
		assertSame(t, n(2), res.Solutions[0].Exact)
		assert.Equal(t, 2, res.Solutions[0].Multiplicity)
		assert.Equal(t, "x = 2 [multiplicity 2]", res.Solutions[0].String())
	})
	t.Run("variable alone on one side", func(t *testing.T) {
		res := gs.Solve("x", x, gs.AddOf(y, n(1)))
		require.Equal(t, gs.StatusSolved, res.Status)
		assertSame(t, gs.AddOf(y, n(1)), res.Solutions[0].Exact)
		assert.Nil(t, res.Solutions[0].Approx)
	})
}

func TestSolve_Strategies(t *testing.T) {
	tests := []struct {
		name     string
		left     gs.Expr
		right    gs.Expr
		strategy string
		want     []float64
	}{
		{
			name:     "fractional",
			left:     gs.Recip(x),
			right:    n(2),
			strategy: "fractional",
			want:     []float64{0.5},
		},
		{
			name:     "absolute value",
			left:     gs.Abs(gs.SubOf(x, n(2))),
			right:    n(5),
			strategy: "absolute-value",
			want:     []float64{-3, 7},
		},
		{
			name:     "logarithm",
			left:     gs.LogOf(x, n(2)),
			right:    n(5),
			strategy: "logarithm",
			want:     []float64{32},
		},
		{
			name:     "sum of logarithms",
			left:     gs.AddOf(gs.Ln(x), gs.Ln(gs.SubOf(x, n(1)))),
			right:    gs.Ln(n(6)),
			strategy: "logarithm",
			want:     []float64{3},
		},
		{
			name:     "sine",
			left:     gs.Sin(x),
			right:    gs.F(1, 2),
			strategy: "sinusoidal",
			want:     []float64{math.Pi / 6, 5 * math.Pi / 6},
		},
		{
			name:     "single power",
			left:     gs.PowOf(x, n(2)),
			right:    n(4),
			strategy: "single-power",
			want:     []float64{-2, 2},
		},
		{
			name:     "odd power keeps the real root",
			left:     gs.MulOf(n(2), gs.PowOf(x, n(3))),
			right:    n(16),
			strategy: "single-power",
			want:     []float64{2},
		},
		{
			name:     "cubic",
			left:     gs.AddOf(gs.PowOf(x, n(3)), gs.MulOf(n(-6), gs.PowOf(x, n(2))), gs.MulOf(n(11), x), n(-6)),
			right:    n(0),
			strategy: "cubic",
			want:     []float64{1, 2, 3},
		},
		{
			name:     "quartic",
			left:     gs.AddOf(gs.PowOf(x, n(4)), gs.PowOf(x, n(3)), gs.MulOf(n(-7), gs.PowOf(x, n(2))), gs.Neg(x), n(6)),
			right:    n(0),
			strategy: "polynomial",
			want:     []float64{-3, -1, 1, 2},
		},
		{
			name:     "biquadratic",
			left:     gs.AddOf(gs.PowOf(x, n(4)), gs.MulOf(n(-5), gs.PowOf(x, n(2))), n(4)),
			right:    n(0),
			strategy: "substitution",
			want:     []float64{-2, -1, 1, 2},
		},
		{
			name:     "exponential",
			left:     gs.PowOf(n(2), x),
			right:    n(8),
			strategy: "exponential",
			want:     []float64{3},
		},
		{
			name:     "exponential substitution",
			left:     gs.AddOf(gs.PowOf(gs.E(), gs.MulOf(n(2), x)), gs.MulOf(n(-3), gs.PowOf(gs.E(), x)), n(2)),
			right:    n(0),
			strategy: "substitution",
			want:     []float64{0, math.Ln2},
		},
		{
			name:     "radical drops the extraneous root",
			left:     gs.Sqrt(gs.AddOf(x, n(3))),
			right:    gs.SubOf(x, n(3)),
			strategy: "mixed-power",
			want:     []float64{6},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := gs.NewAlgebraSolver().Solve(t.Context(), "x", tt.left, tt.right)
			require.Equal(t, gs.StatusSolved, res.Status, "result: %s", res)
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.InDeltaSlice(t, tt.want, realRoots(t, res), 1e-9)
			assertRoundTrip(t, tt.left, tt.right, res)
		})
	}
}

func TestSolve_ProductRoots(t *testing.T) {
	left := gs.MulOf(x, gs.SubOf(x, n(1)), gs.AddOf(x, n(2)))
	res := gs.Solve("x", left, n(0))
	require.Equal(t, gs.StatusSolved, res.Status)
	assert.InDeltaSlice(t, []float64{-2, 0, 1}, realRoots(t, res), 1e-12)
	assertRoundTrip(t, left, n(0), res)
}

func TestSolve_CancelledDenominatorRoot(t *testing.T) {
	left := gs.DivOf(gs.SubOf(gs.PowOf(x, n(2)), n(1)), gs.SubOf(x, n(1)))
	res := gs.Solve("x", left, n(0))
	require.Equal(t, gs.StatusSolved, res.Status)
	assert.InDeltaSlice(t, []float64{-1}, realRoots(t, res), 1e-12)
}

func TestSolve_RootsBeyondFloatRange(t *testing.T) {
	t.Run("exact power", func(t *testing.T) {
		right := gs.PowOf(n(10), n(400))
		res := gs.Solve("x", gs.PowOf(gs.E(), x), right)
		require.Equal(t, gs.StatusSolved, res.Status, "err: %v", res.Err)
		require.Len(t, res.Solutions, 1)
		assert.False(t, gs.Contains(res.Solutions[0].Exact, "x"))
	})
	t.Run("nested logs", func(t *testing.T) {
		left := gs.Ln(gs.AddOf(x, n(1)))
		for i := 1; i < 5; i++ {
			left = gs.Ln(gs.AddOf(left, n(1)))
		}
		res := gs.Solve("x", left, n(1))
		require.Equal(t, gs.StatusSolved, res.Status, "err: %v", res.Err)
		assert.Len(t, res.Solutions, 1)
	})
}

func TestSolve_PeriodicSolutionsCarryGeneralForm(t *testing.T) {
	res := gs.Solve("x", gs.Cos(x), n(1))
	require.Equal(t, gs.StatusSolved, res.Status)
	require.Len(t, res.Solutions, 1)
	assertSame(t, n(0), res.Solutions[0].Exact)
	require.NotNil(t, res.Solutions[0].General)
	assert.Contains(t, res.Solutions[0].General.String(), "pi")
}

func TestSolve_Outcomes(t *testing.T) {
	t.Run("no solution", func(t *testing.T) {
		res := gs.Solve("x", x, gs.AddOf(x, n(1)))
		assert.Equal(t, gs.StatusNoSolution, res.Status)
		assert.NoError(t, res.Err)
		assert.Empty(t, res.Solutions)
	})
	t.Run("sine out of range", func(t *testing.T) {
		res := gs.Solve("x", gs.Sin(x), n(2))
		assert.Equal(t, gs.StatusNoSolution, res.Status)
	})
	t.Run("identity", func(t *testing.T) {
		res := gs.Solve("x", gs.AddOf(x, x, n(1)), gs.AddOf(gs.MulOf(n(2), x), n(1)))
		assert.Equal(t, gs.StatusAllSolutions, res.Status)
		assert.Equal(t, "all solutions", res.String())
	})
	t.Run("no strategy", func(t *testing.T) {
		res := gs.Solve("x", gs.AddOf(x, gs.Sin(x)), n(1))
		require.Equal(t, gs.StatusFailed, res.Status)
		assert.ErrorIs(t, res.Err, gs.ErrNoStrategy)
	})
	t.Run("undefined side", func(t *testing.T) {
		res := gs.Solve("x", gs.DivOf(x, n(0)), n(1))
		require.Equal(t, gs.StatusFailed, res.Status)
		assert.ErrorIs(t, res.Err, gs.ErrUndefined)
	})
}

func TestSolve_MalformedInput(t *testing.T) {
	s := gs.NewAlgebraSolver()
	ctx := t.Context()

	res := s.Solve(ctx, "", x, n(1))
	assert.Equal(t, gs.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, gs.ErrMalformedInput)

	res = s.Solve(ctx, "x", nil, n(1))
	assert.ErrorIs(t, res.Err, gs.ErrMalformedInput)

	res = s.SolveEquation(ctx, "x", gs.Equation{Sides: []gs.Expr{x}})
	assert.ErrorIs(t, res.Err, gs.ErrMalformedInput)

	res = s.SolveEquation(ctx, "x", gs.Between(n(0), gs.CmpEq, x, gs.CmpLt, n(1)))
	assert.ErrorIs(t, res.Err, gs.ErrMalformedInput)

	_, err := gs.ParseComparison("=>")
	assert.ErrorIs(t, err, gs.ErrMalformedInput)
}

func TestSolve_Limits(t *testing.T) {
	left, right := gs.Sqrt(gs.AddOf(x, n(3))), gs.SubOf(x, n(3))

	res := gs.NewAlgebraSolver(gs.WithMaxDepth(1)).Solve(t.Context(), "x", left, right)
	require.Equal(t, gs.StatusFailed, res.Status)
	assert.True(t, errors.Is(res.Err, gs.ErrRecursionLimit), "got %v", res.Err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	res = gs.NewAlgebraSolver().Solve(ctx, "x", left, right)
	require.Equal(t, gs.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestSolveEquation_GuessesVariable(t *testing.T) {
	tt := gs.S("t")
	res := gs.NewAlgebraSolver().SolveEquation(t.Context(), "", gs.Eq(gs.MulOf(n(3), tt), n(9)))
	require.Equal(t, gs.StatusSolved, res.Status)
	assert.Equal(t, "t", res.Var)
	assertSame(t, n(3), res.Solutions[0].Exact)
}

func TestSolve_RecordsSteps(t *testing.T) {
	rec := &gs.StepRecorder{}
	s := gs.NewAlgebraSolver(gs.WithStepLog(rec))
	res := s.Solve(t.Context(), "x", gs.AddOf(gs.MulOf(n(2), x), n(3)), n(7))
	require.Equal(t, gs.StatusSolved, res.Status)
	steps := rec.Steps()
	require.NotEmpty(t, steps)
	var descs []string
	for _, st := range steps {
		descs = append(descs, st.Description)
	}
	assert.Contains(t, descs, "linear")
}

func TestComparison(t *testing.T) {
	for _, s := range []string{"=", "<", "<=", ">", ">="} {
		c, err := gs.ParseComparison(s)
		require.NoError(t, err)
		assert.Equal(t, s, c.String())
	}
	assert.Equal(t, gs.CmpGe, gs.CmpLe.Flip())
	assert.Equal(t, gs.CmpEq, gs.CmpEq.Flip())
	assert.True(t, gs.CmpGe.Inclusive())
	assert.False(t, gs.CmpLt.Inclusive())
	assert.Equal(t, "0 < x <= 5", gs.Between(n(0), gs.CmpLt, x, gs.CmpLe, n(5)).String())
}
