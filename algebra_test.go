package gosolve_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gs "github.com/njchilds90/gosolve"
)

// evalAt binds every named symbol and evaluates e numerically.
func evalAt(t *testing.T, e gs.Expr, vals map[string]float64) float64 {
	t.Helper()
	for name, v := range vals {
		e = e.Sub(name, gs.NFloat(v))
	}
	f, ok := gs.EvalFloat(e, "", 0)
	require.True(t, ok, "%s did not evaluate", e)
	return f
}

func assertSameValue(t *testing.T, want, got gs.Expr, vals map[string]float64) {
	t.Helper()
	w, g := evalAt(t, want, vals), evalAt(t, got, vals)
	assert.InDelta(t, w, g, 1e-9*math.Max(1, math.Abs(w)), "want %s, got %s", want, got)
}

// ============================================================
// Factoring
// ============================================================

func TestFactor(t *testing.T) {
	tests := []struct {
		name    string
		expr    gs.Expr
		factors int
	}{
		{"difference of squares", gs.SubOf(gs.PowOf(x, n(2)), n(9)), 2},
		{"perfect square", gs.AddOf(gs.PowOf(x, n(2)), gs.MulOf(n(2), x), n(1)), 2},
		{"sum of cubes", gs.AddOf(gs.PowOf(x, n(3)), n(8)), 2},
		{"common factor", gs.AddOf(gs.MulOf(n(6), gs.PowOf(x, n(2))), gs.MulOf(n(4), x)), 2},
		{"split middle term", gs.AddOf(gs.MulOf(n(2), gs.PowOf(x, n(2))), gs.MulOf(n(7), x), n(3)), 2},
		{"split with fractional coefficients", gs.AddOf(gs.MulOf(gs.F(1, 2), gs.PowOf(x, n(2))), gs.MulOf(gs.F(7, 4), x), gs.F(3, 4)), 2},
		{"rational roots", gs.AddOf(gs.PowOf(x, n(3)), gs.MulOf(n(-6), gs.PowOf(x, n(2))), gs.MulOf(n(11), x), n(-6)), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := gs.Factor(tt.expr, "x")
			require.True(t, fr.Success, "factor %s: %s", tt.expr, fr)
			nonConst := 0
			for _, f := range fr.Factors {
				if gs.Contains(f, "x") {
					nonConst++
				}
			}
			assert.Equal(t, tt.factors, nonConst, "factors of %s: %s", tt.expr, fr)
			assertSame(t, gs.Expand(tt.expr), gs.Expand(fr.Expr()))
		})
	}
}

func TestFactor_Irreducible(t *testing.T) {
	fr := gs.Factor(gs.AddOf(gs.PowOf(x, n(2)), n(1)), "x")
	assert.False(t, fr.Success)
	require.Len(t, fr.Factors, 1)
	assert.Equal(t, "x^2 + 1", fr.String())
}

// ============================================================
// Polynomials
// ============================================================

func TestPolyCoeffs(t *testing.T) {
	e := gs.AddOf(gs.MulOf(n(3), gs.PowOf(x, n(2))), gs.MulOf(y, x), n(5))
	coeffs, ok := gs.PolyCoeffs(e, "x")
	require.True(t, ok)
	assert.Equal(t, []int{2, 1, 0}, coeffs.Degrees())
	assertSame(t, n(3), coeffs[2])
	assertSame(t, y, coeffs[1])
	assertSame(t, n(5), coeffs[0])

	_, ok = gs.PolyCoeffs(gs.Sin(x), "x")
	assert.False(t, ok)
	_, ok = gs.PolyCoeffs(gs.Sqrt(x), "x")
	assert.False(t, ok)
}

func TestDegree(t *testing.T) {
	assert.Equal(t, 1, gs.Degree(gs.AddOf(gs.MulOf(n(2), x), n(1)), "x"))
	assert.Equal(t, 2, gs.Degree(gs.MulOf(gs.AddOf(x, n(1)), gs.AddOf(x, n(2))), "x"))
	assert.Equal(t, 0, gs.Degree(n(7), "x"))
	assert.Equal(t, 0, gs.Degree(y, "x"))
	assert.Equal(t, -1, gs.Degree(gs.Recip(x), "x"))
}

func TestCollect(t *testing.T) {
	e := gs.AddOf(gs.MulOf(x, y), x, n(2))
	c := gs.Collect(e, "x")
	coeffs, ok := gs.PolyCoeffs(c, "x")
	require.True(t, ok)
	assertSame(t, gs.AddOf(y, n(1)), coeffs[1])
	assertSameValue(t, e, c, map[string]float64{"x": 1.5, "y": -2})
	assertSame(t, gs.Sin(x), gs.Collect(gs.Sin(x), "x"))
}

func TestPolyDivide(t *testing.T) {
	q, r, err := gs.PolyDivide(gs.SubOf(gs.PowOf(x, n(2)), n(1)), gs.SubOf(x, n(1)), "x")
	require.NoError(t, err)
	assertSame(t, gs.AddOf(x, n(1)), q)
	assertSame(t, n(0), r)

	q, r, err = gs.PolyDivide(gs.AddOf(gs.PowOf(x, n(2)), n(1)), gs.SubOf(x, n(1)), "x")
	require.NoError(t, err)
	assertSame(t, gs.AddOf(x, n(1)), q)
	assertSame(t, n(2), r)

	_, _, err = gs.PolyDivide(x, n(0), "x")
	assert.ErrorIs(t, err, gs.ErrDivisionByZero)
	_, _, err = gs.PolyDivide(x, gs.Sin(x), "x")
	assert.ErrorIs(t, err, gs.ErrNotPolynomial)
}

func TestPoly(t *testing.T) {
	// (x - 1)^2 (x + 2) = x^3 - 3x + 2
	p := gs.NewPoly("x", big.NewRat(2, 1), big.NewRat(-3, 1), big.NewRat(0, 1), big.NewRat(1, 1))
	assert.Equal(t, 3, p.Degree())
	assert.Equal(t, "x^3 - 3*x + 2", p.Expr().String())
	assert.InDelta(t, 4.0, p.EvalFloat(2), 1e-12)
	assert.Equal(t, 0, p.EvalRat(big.NewRat(-2, 1)).Sign())

	roots := p.RationalRoots()
	require.Len(t, roots, 2)
	assert.Equal(t, "-2", roots[0].RatString())
	assert.Equal(t, "1", roots[1].RatString())
	assert.Equal(t, 2, p.Multiplicity(big.NewRat(1, 1)))
	assert.Equal(t, 1, p.Multiplicity(big.NewRat(-2, 1)))
	assert.Equal(t, 0, p.Multiplicity(big.NewRat(5, 1)))

	d := p.Deflate(big.NewRat(1, 1))
	assert.Equal(t, "x + 2", d.Expr().String())

	assert.Equal(t, "3*x^2 - 3", p.Derivative().Expr().String())

	q, r, err := p.DivMod(gs.NewPoly("x", big.NewRat(-1, 1), big.NewRat(1, 1)))
	require.NoError(t, err)
	assert.True(t, r.IsZero())
	assert.Equal(t, "x^2 + x - 2", q.Expr().String())

	_, _, err = p.DivMod(gs.NewPoly("x"))
	assert.ErrorIs(t, err, gs.ErrDivisionByZero)

	fromExpr, ok := gs.PolyFrom(gs.AddOf(gs.PowOf(x, n(3)), gs.MulOf(n(-3), x), n(2)), "x")
	require.True(t, ok)
	require.Len(t, fromExpr.Coeffs, len(p.Coeffs))
	for i, c := range p.Coeffs {
		assert.Zero(t, c.Cmp(fromExpr.Coeffs[i]), "coefficient %d: want %s, got %s", i, c.RatString(), fromExpr.Coeffs[i].RatString())
	}
	_, ok = gs.PolyFrom(gs.AddOf(x, y), "x")
	assert.False(t, ok)
}

// ============================================================
// Common factors and fractions
// ============================================================

func TestGCF(t *testing.T) {
	assertSame(t, gs.MulOf(n(2), x), gs.GCF(gs.MulOf(n(6), gs.PowOf(x, n(2))), gs.MulOf(n(4), x)))
	assertSame(t, gs.MulOf(x, y), gs.GCF(gs.MulOf(x, gs.PowOf(y, n(3))), gs.MulOf(n(5), gs.PowOf(x, n(2)), y)))
	assertSame(t, gs.F(1, 6), gs.GCF(gs.F(1, 2), gs.F(1, 3)))
	assertSame(t, n(1), gs.GCF(x, y))
	assertSame(t, x, gs.GCF(x, n(0)))
}

func TestNumerDenom(t *testing.T) {
	num, den := gs.NumerDenom(gs.AddOf(gs.Recip(x), gs.Recip(y)))
	assertSameValue(t, gs.AddOf(x, y), num, map[string]float64{"x": 2, "y": 3})
	assertSameValue(t, gs.MulOf(x, y), den, map[string]float64{"x": 2, "y": 3})

	num, den = gs.NumerDenom(gs.F(3, 4))
	assertSame(t, n(3), num)
	assertSame(t, n(4), den)
}

func TestTogether(t *testing.T) {
	e := gs.AddOf(gs.DivOf(n(1), gs.AddOf(x, n(1))), gs.DivOf(n(2), x))
	tog := gs.Together(e)
	vals := map[string]float64{"x": 1.7}
	assertSameValue(t, e, tog, vals)
	_, den := gs.NumerDenom(tog)
	assert.True(t, gs.Contains(den, "x"))
}

// ============================================================
// Log and trig identities
// ============================================================

func TestLogIdentities(t *testing.T) {
	assertSame(t, gs.Ln(gs.MulOf(x, y)), gs.CompoundLogs(gs.AddOf(gs.Ln(x), gs.Ln(y))))
	assertSame(t, gs.Ln(gs.DivOf(x, y)), gs.CompoundLogs(gs.SubOf(gs.Ln(x), gs.Ln(y))))
	assertSame(t, gs.AddOf(gs.Ln(x), gs.Ln(y)), gs.ExpandLogs(gs.Ln(gs.MulOf(x, y))))
	assertSame(t, gs.MulOf(n(2), gs.Ln(gs.Abs(x))), gs.ExpandLogs(gs.Ln(gs.PowOf(x, n(2)))))
	assertSame(t, gs.MulOf(n(3), gs.Ln(x)), gs.ExpandLogs(gs.Ln(gs.PowOf(x, n(3)))))
	assertSame(t, gs.Ln(gs.PowOf(x, n(3))), gs.CoefficientIntoLog(gs.MulOf(n(3), gs.Ln(x))))
	// An even coefficient would widen the domain.
	assertSame(t, gs.MulOf(n(2), gs.Ln(x)), gs.CoefficientIntoLog(gs.MulOf(n(2), gs.Ln(x))))
}

func TestLog_Evaluation(t *testing.T) {
	assertSame(t, n(3), gs.LogOf(n(8), n(2)))
	assertSame(t, n(1), gs.Ln(gs.E()))
	assertSame(t, n(0), gs.Log10(n(1)))
	assert.True(t, gs.IsUndefined(gs.Ln(n(0))))
	assert.True(t, gs.IsUndefined(gs.Ln(n(-2))))
	assert.Equal(t, "ln(x)", gs.Ln(x).String())
	assert.Equal(t, "log(x)", gs.Log10(x).String())
}

func TestTrigIdentities(t *testing.T) {
	sin2 := gs.PowOf(gs.Sin(x), n(2))
	cos2 := gs.PowOf(gs.Cos(x), n(2))
	assertSame(t, n(1), gs.PythagoreanSimplify(gs.AddOf(sin2, cos2)))
	assertSame(t, gs.MulOf(n(3), y), gs.PythagoreanSimplify(gs.AddOf(gs.MulOf(n(3), y, sin2), gs.MulOf(n(3), y, cos2))))
	assertSame(t, cos2, gs.PythagoreanSimplify(gs.SubOf(n(1), sin2)))
	assertSame(t, n(1), gs.PythagoreanSimplify(gs.SubOf(gs.PowOf(gs.Sec(x), n(2)), gs.PowOf(gs.Tan(x), n(2)))))
	assertSame(t, n(1), gs.CancelReciprocalTrig(gs.MulOf(gs.Sin(x), gs.Csc(x))))
	assertSame(t, n(1), gs.TrigSimplify(gs.MulOf(gs.Tan(x), gs.Cot(x))))
	assertSame(t, n(1), gs.Simplify(gs.AddOf(sin2, cos2)))
}

func TestTrig_ExactValues(t *testing.T) {
	assertSame(t, gs.F(1, 2), gs.Sin(gs.MulOf(gs.F(1, 6), gs.Pi())))
	assertSame(t, n(0), gs.Cos(gs.MulOf(gs.F(1, 2), gs.Pi())))
	assertSame(t, gs.MulOf(gs.F(1, 6), gs.Pi()), gs.Asin(gs.F(1, 2)))
	assertSame(t, n(0), gs.Acos(n(1)))
	assertSame(t, gs.Neg(gs.Sin(x)), gs.Sin(gs.Neg(x)))
	assertSame(t, gs.Cos(x), gs.Cos(gs.Neg(x)))
	assert.True(t, gs.IsUndefined(gs.Asin(n(2))))
}

func TestDeepSimplify(t *testing.T) {
	e := gs.AddOf(gs.Ln(x), gs.Ln(y), gs.PowOf(gs.Sin(x), n(2)), gs.PowOf(gs.Cos(x), n(2)))
	got := gs.DeepSimplify(e)
	assertSameValue(t, e, got, map[string]float64{"x": 0.7, "y": 2.5})
	assert.Less(t, len(got.String()), len(e.String()))
}

func TestHarshSimplify(t *testing.T) {
	got, ok := gs.HarshSimplify(gs.AddOf(gs.Sqrt(n(2)), gs.Pi())).(*gs.Num)
	require.True(t, ok)
	assert.True(t, got.IsApprox())
	assert.InDelta(t, math.Sqrt2+math.Pi, got.Float64(), 1e-12)

	assert.True(t, gs.IsUndefined(gs.HarshSimplify(gs.Asin(gs.NFloat(3)))))
	assert.True(t, gs.Contains(gs.HarshSimplify(gs.AddOf(x, gs.Pi())), "x"))
}
