package gosolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gs "github.com/njchilds90/gosolve"
)

var (
	x = gs.S("x")
	y = gs.S("y")
)

func n(v int64) *gs.Num { return gs.N(v) }

// sample is a spread of node kinds used by the algebraic law tests.
func sample() []gs.Expr {
	return []gs.Expr{
		x,
		y,
		n(3),
		gs.F(1, 2),
		gs.AddOf(x, n(1)),
		gs.MulOf(n(2), gs.PowOf(x, n(2))),
		gs.Sin(x),
		gs.Ln(y),
		gs.Sqrt(x),
		gs.MulOf(x, y),
	}
}

func assertSame(t *testing.T, want, got gs.Expr) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

// ============================================================
// Num
// ============================================================

func TestNum_Formatting(t *testing.T) {
	assert.Equal(t, "42", n(42).String())
	assert.Equal(t, "1/3", gs.F(1, 3).String())
	assert.Equal(t, "-2/5", gs.F(2, -5).String())
	assert.Equal(t, `\frac{2}{5}`, gs.F(2, 5).LaTeX())
	assert.Equal(t, "i", gs.I().String())
	assert.Nil(t, gs.F(1, 0))
}

func TestNum_FloatStaysExactWhenIntegral(t *testing.T) {
	assert.False(t, gs.NFloat(4).IsApprox())
	assert.True(t, gs.NFloat(0.25).IsApprox())
}

func TestNum_Arithmetic(t *testing.T) {
	assertSame(t, gs.F(5, 6), gs.AddOf(gs.F(1, 2), gs.F(1, 3)))
	assertSame(t, n(-1), gs.MulOf(gs.I(), gs.I()))
	assertSame(t, n(2), gs.PowOf(n(8), gs.F(1, 3)))
	assertSame(t, gs.F(1, 4), gs.PowOf(n(2), n(-2)))
}

func TestNum_DivideByZeroIsUndefined(t *testing.T) {
	assert.True(t, gs.IsUndefined(gs.DivOf(n(1), n(0))))
	assert.True(t, gs.IsUndefined(gs.DivOf(x, n(0))))
	// Undefined propagates through further combination.
	assert.True(t, gs.IsUndefined(gs.AddOf(gs.DivOf(x, n(0)), n(1))))
	assert.True(t, gs.IsUndefined(gs.MulOf(gs.Undef(), x)))
}

// ============================================================
// Combine laws
// ============================================================

func TestCombine_AddCommutes(t *testing.T) {
	for _, a := range sample() {
		for _, b := range sample() {
			assertSame(t, gs.AddOf(a, b), gs.AddOf(b, a))
		}
	}
}

func TestCombine_MulCommutes(t *testing.T) {
	for _, a := range sample() {
		for _, b := range sample() {
			assertSame(t, gs.MulOf(a, b), gs.MulOf(b, a))
		}
	}
}

func TestCombine_AddAssociates(t *testing.T) {
	s := sample()
	for _, a := range s {
		for _, b := range s {
			for _, c := range s {
				assertSame(t, gs.AddOf(gs.AddOf(a, b), c), gs.AddOf(a, gs.AddOf(b, c)))
			}
		}
	}
}

func TestCombine_MulAssociates(t *testing.T) {
	s := []gs.Expr{x, y, n(3), gs.F(1, 2), gs.AddOf(x, n(1)), gs.Sin(x)}
	for _, a := range s {
		for _, b := range s {
			for _, c := range s {
				assertSame(t, gs.MulOf(gs.MulOf(a, b), c), gs.MulOf(a, gs.MulOf(b, c)))
			}
		}
	}
}

func TestCombine_IdentityLaws(t *testing.T) {
	for _, a := range sample() {
		assertSame(t, a, gs.AddOf(a, n(0)))
		assertSame(t, a, gs.MulOf(a, n(1)))
		assertSame(t, a, gs.PowOf(a, n(1)))
		assertSame(t, n(1), gs.PowOf(a, n(0)))
		assertSame(t, n(0), gs.SubOf(a, a))
	}
}

func TestCombine_SimplifyIsIdempotent(t *testing.T) {
	extra := []gs.Expr{
		gs.AddOf(gs.PowOf(gs.Sin(x), n(2)), gs.PowOf(gs.Cos(x), n(2)), x),
		gs.MulOf(gs.Tan(x), gs.Cot(x)),
		gs.AddOf(gs.Ln(x), gs.Ln(y)),
	}
	for _, a := range append(sample(), extra...) {
		once := gs.Simplify(a)
		assertSame(t, once, gs.Simplify(once))
	}
}

func TestCombine_LikeTerms(t *testing.T) {
	assert.Equal(t, "3*x + 2", gs.AddOf(x, x, x, n(2)).String())
	assert.Equal(t, "x^2", gs.MulOf(x, x).String())
	assert.Equal(t, "x^3", gs.MulOf(x, gs.PowOf(x, n(2))).String())
	assertSame(t, n(1), gs.DivOf(gs.AddOf(x, n(1)), gs.AddOf(x, n(1))))
}

func TestCombine_DistributesSums(t *testing.T) {
	got := gs.MulOf(gs.AddOf(x, n(1)), gs.AddOf(x, n(-1)))
	assert.Equal(t, "x^2 - 1", got.String())
	assert.Equal(t, "x^2 + 2*x + 1", gs.Expand(gs.PowOf(gs.AddOf(x, n(1)), n(2))).String())
}

func TestCombine_BinomialExpansionIsCapped(t *testing.T) {
	sum := gs.AddOf(x, y)

	sq, ok := gs.PowOf(sum, n(2)).(*gs.Term)
	require.True(t, ok)
	assert.True(t, sq.IsSum())
	assert.Equal(t, 5, sq.TermCount(), "three groups: %s", sq)

	atCap, ok := gs.PowOf(sum, n(gs.MaxBinomialExponent)).(*gs.Term)
	require.True(t, ok)
	assert.Equal(t, 2*(gs.MaxBinomialExponent+1)-1, atCap.TermCount())

	for _, k := range []int64{gs.MaxBinomialExponent + 1, 60} {
		p, ok := gs.PowOf(sum, n(k)).(*gs.Pow)
		require.True(t, ok, "(x + y)^%d stays a power", k)
		assertSame(t, sum, p.Base())
		assertSame(t, n(k), p.Exponent())
	}
}

func TestCombine_Op(t *testing.T) {
	assert.Equal(t, "^", gs.OpPow.String())
	assertSame(t, gs.SubOf(x, y), gs.Combine(gs.OpSub, x, y))
	assertSame(t, gs.DivOf(x, y), gs.Combine(gs.OpDiv, x, y))
}

// ============================================================
// Substitution, evaluation, differentiation
// ============================================================

func TestSub_Evaluates(t *testing.T) {
	e := gs.AddOf(gs.MulOf(n(2), x), n(3))
	assertSame(t, n(13), e.Sub("x", n(5)))
	assertSame(t, gs.AddOf(gs.MulOf(n(2), y), n(3)), e.Sub("x", y))
}

func TestEvalFloat(t *testing.T) {
	v, ok := gs.EvalFloat(gs.AddOf(gs.PowOf(x, n(2)), gs.Sin(gs.Pi())), "x", 3)
	require.True(t, ok)
	assert.InDelta(t, 9, v, 1e-12)

	_, ok = gs.EvalFloat(gs.Ln(x), "x", -1)
	assert.False(t, ok)
}

func TestDiff(t *testing.T) {
	assert.Equal(t, "2*x - 4", gs.AddOf(gs.PowOf(x, n(2)), gs.MulOf(n(-4), x), n(4)).Diff("x").String())
	assertSame(t, gs.Cos(x), gs.Sin(x).Diff("x"))
	assertSame(t, gs.Recip(x), gs.Ln(x).Diff("x"))
}

func TestFreeSymbols(t *testing.T) {
	e := gs.AddOf(gs.MulOf(x, y), gs.Sin(gs.Pi()), gs.E())
	assert.Equal(t, []string{"x", "y"}, gs.SortedSymbols(e))
	assert.True(t, gs.Contains(e, "y"))
	assert.False(t, gs.Contains(e, "z"))
}
