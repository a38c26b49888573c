package gosolve

import (
	"math/big"
	"strings"
)

// ============================================================
// Symbolic Factoring
// ============================================================

// FactorResult holds the result of a factoring attempt. Repeated factors
// are listed once per multiplicity; the product of Factors equals the input.
type FactorResult struct {
	Factors []Expr
	Success bool
}

// Expr multiplies the factors back together.
func (r FactorResult) Expr() Expr { return MulOf(r.Factors...) }

func (r FactorResult) String() string {
	if len(r.Factors) == 1 {
		return r.Factors[0].String()
	}
	parts := make([]string, len(r.Factors))
	for i, f := range r.Factors {
		parts[i] = factorString(f)
	}
	return strings.Join(parts, "*")
}

// Factor attempts to factor expr, treating varName as the main variable.
// Handles: common factor, difference of squares, sum/difference of cubes,
// perfect-square trinomials, grouping of four terms, quadratic factor search
// over divisor pairs of a·c, and rational roots by synthetic division up to
// MaxFactorDegree.
func Factor(expr Expr, varName string) FactorResult {
	e := Expand(unwrap(expr))
	if !IsSum(e) {
		c, fs := FactorsOf(e)
		out := []Expr{}
		if !c.IsOne() {
			out = append(out, c)
		}
		out = append(out, fs...)
		if len(out) == 0 {
			out = []Expr{e}
		}
		return FactorResult{Factors: out, Success: len(out) > 1}
	}
	var factors []Expr
	content := GroupGCF(groupsOf(e))
	prim := e
	if n, ok := content.(*Num); !ok || !n.IsOne() {
		c, fs := FactorsOf(content)
		if !c.IsOne() {
			factors = append(factors, c)
		}
		factors = append(factors, fs...)
		prim = div(e, content)
	}
	if n, ok := prim.(*Num); ok && n.IsNegOne() {
		factors = append(factors, prim)
		prim = N(1)
	}
	lead := groupsOf(prim)
	if len(lead) > 0 && lead[0].coeff.IsNegative() {
		factors = append(factors, N(-1))
		prim = Neg(prim)
	}
	rest := factorSum(prim, varName, 0)
	factors = append(factors, rest...)
	factors = foldNumbers(factors)
	nonConst := 0
	for _, f := range factors {
		if _, ok := f.(*Num); !ok {
			nonConst++
		}
	}
	return FactorResult{Factors: factors, Success: len(factors) > 1 && nonConst >= 1}
}

func foldNumbers(fs []Expr) []Expr {
	c := N(1)
	out := make([]Expr, 0, len(fs))
	for _, f := range fs {
		if n, ok := f.(*Num); ok {
			c = numMul(c, n)
			continue
		}
		out = append(out, f)
	}
	if !c.IsOne() || len(out) == 0 {
		out = append([]Expr{c}, out...)
	}
	return out
}

func factorSum(p Expr, v string, depth int) []Expr {
	if !IsSum(p) || depth > MaxFactorDegree {
		if n, ok := p.(*Num); ok && n.IsOne() {
			return nil
		}
		return []Expr{p}
	}
	steps := []func(Expr, string) ([]Expr, bool){
		differenceOfSquares,
		sumOfCubes,
		perfectSquare,
		groupFour,
		quadraticSplit,
		rationalRootFactors,
	}
	for _, step := range steps {
		parts, ok := step(p, v)
		if !ok {
			continue
		}
		out := []Expr{}
		for _, part := range parts {
			out = append(out, factorSum(part, v, depth+1)...)
		}
		return out
	}
	return []Expr{p}
}

// niceRoot returns the exact k-th root of a group when its coefficient is
// a perfect power and every exponent divides by k.
func niceRoot(g *Group, k int64) (Expr, bool) {
	c := g.coeff
	if !c.IsReal() || c.approx {
		return nil, false
	}
	if c.IsNegative() && k%2 == 0 {
		return nil, false
	}
	r, ok := numPow(c, F(1, k)).(*Num)
	if !ok || r.approx {
		return nil, false
	}
	parts := []Expr{r}
	for _, f := range g.factors {
		fp := splitFactor(f)
		q := numDiv(fp.exp, N(k))
		if !q.IsInteger() || !q.IsPositive() {
			return nil, false
		}
		parts = append(parts, pow(fp.base, q))
	}
	return MulOf(parts...), true
}

func differenceOfSquares(p Expr, _ string) ([]Expr, bool) {
	gs := groupsOf(p)
	if len(gs) != 2 {
		return nil, false
	}
	pos, neg := gs[0], gs[1]
	if pos.coeff.IsNegative() {
		pos, neg = neg, pos
	}
	if !pos.coeff.IsPositive() || !neg.coeff.IsNegative() {
		return nil, false
	}
	a, ok := niceRoot(pos, 2)
	if !ok {
		return nil, false
	}
	b, ok := niceRoot(&Group{coeff: numNeg(neg.coeff), factors: neg.factors}, 2)
	if !ok {
		return nil, false
	}
	return []Expr{SubOf(a, b), AddOf(a, b)}, true
}

func sumOfCubes(p Expr, _ string) ([]Expr, bool) {
	gs := groupsOf(p)
	if len(gs) != 2 {
		return nil, false
	}
	a, ok := niceRoot(gs[0], 3)
	if !ok {
		return nil, false
	}
	b, ok := niceRoot(gs[1], 3)
	if !ok {
		return nil, false
	}
	if IsUndefined(a) || IsUndefined(b) {
		return nil, false
	}
	return []Expr{
		AddOf(a, b),
		AddOf(pow(a, N(2)), Neg(mul(a, b)), pow(b, N(2))),
	}, true
}

func perfectSquare(p Expr, _ string) ([]Expr, bool) {
	gs := groupsOf(p)
	if len(gs) != 3 {
		return nil, false
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			k := 3 - i - j
			if !gs[i].coeff.IsPositive() || !gs[j].coeff.IsPositive() {
				continue
			}
			a, ok := niceRoot(gs[i], 2)
			if !ok {
				continue
			}
			b, ok := niceRoot(gs[j], 2)
			if !ok {
				continue
			}
			cross := mul(N(2), mul(a, b))
			middle := gs[k].Expr()
			switch {
			case middle.Equal(cross):
				s := AddOf(a, b)
				return []Expr{s, s}, true
			case middle.Equal(Neg(cross)):
				s := SubOf(a, b)
				if lead := groupsOf(s); len(lead) > 0 && lead[0].coeff.IsNegative() {
					s = Neg(s)
				}
				return []Expr{s, s}, true
			}
		}
	}
	return nil, false
}

func groupFour(p Expr, _ string) ([]Expr, bool) {
	gs := groupsOf(p)
	if len(gs) != 4 {
		return nil, false
	}
	pairings := [][4]int{{0, 1, 2, 3}, {0, 2, 1, 3}, {0, 3, 1, 2}}
	for _, pr := range pairings {
		first := sumOf([]*Group{gs[pr[0]], gs[pr[1]]})
		second := sumOf([]*Group{gs[pr[2]], gs[pr[3]]})
		g1 := GroupGCF(groupsOf(first))
		g2 := GroupGCF(groupsOf(second))
		r1 := div(first, g1)
		r2 := div(second, g2)
		if !IsSum(r1) {
			continue
		}
		if r1.Equal(r2) {
			return []Expr{add(g1, g2), r1}, true
		}
		if r1.Equal(Neg(r2)) {
			return []Expr{add(g1, Neg(g2)), r1}, true
		}
	}
	return nil, false
}

// quadraticSplit factors a·v²+b·v+c with integer coefficients by finding
// m·n = a·c with m+n = b and grouping a·v²+m·v + n·v+c.
func quadraticSplit(p Expr, v string) ([]Expr, bool) {
	poly, ok := PolyFrom(p, v)
	if !ok || poly.Degree() != 2 {
		return nil, false
	}
	ints := poly.integerCoeffs()
	for _, c := range ints {
		if !c.IsInt64() || c.CmpAbs(big.NewInt(1e9)) > 0 {
			return nil, false
		}
	}
	c, b, a := ints[0].Int64(), ints[1].Int64(), ints[2].Int64()
	if c == 0 {
		return nil, false
	}
	ac := a * c
	x := S(v)
	for _, d := range divisors(ac, MaxDivisorSearch) {
		for _, m := range []int64{d, -d} {
			n := ac / m
			if m+n != b {
				continue
			}
			g1 := gcdInt(a, m)
			if a < 0 {
				g1 = -g1
			}
			g2 := n * g1 / a
			scale := numDiv(numFromRat(poly.Lead()), N(a))
			first := AddOf(mul(N(g1), x), N(g2))
			second := AddOf(mul(N(a/g1), x), N(m/g1))
			out := []Expr{}
			if !scale.IsOne() {
				out = append(out, scale)
			}
			return append(out, first, second), true
		}
	}
	return nil, false
}

func rationalRootFactors(p Expr, v string) ([]Expr, bool) {
	poly, ok := PolyFrom(p, v)
	if !ok || poly.Degree() < 3 || poly.Degree() > MaxFactorDegree {
		return nil, false
	}
	roots := poly.RationalRoots()
	if len(roots) == 0 {
		return nil, false
	}
	x := S(v)
	out := []Expr{}
	cur := poly
	scale := new(big.Rat).SetInt64(1)
	for _, r := range roots {
		m := cur.Multiplicity(r)
		lin := AddOf(mul(&Num{re: new(big.Rat).SetInt(r.Denom())}, x), &Num{re: new(big.Rat).SetInt(new(big.Int).Neg(r.Num()))})
		for i := 0; i < m; i++ {
			out = append(out, lin)
			scale.Mul(scale, new(big.Rat).SetInt(r.Denom()))
		}
		cur = cur.Deflate(r)
	}
	coeffs := make([]*big.Rat, len(cur.Coeffs))
	for i, c := range cur.Coeffs {
		coeffs[i] = new(big.Rat).Quo(c, scale)
	}
	rest := NewPoly(v, coeffs...).Expr()
	if n, ok := rest.(*Num); !ok || !n.IsOne() {
		out = append(out, rest)
	}
	return out, true
}
