package gosolve

import (
	"math"
	"math/cmplx"
	"sort"
)

// ============================================================
// Polynomial strategies
// ============================================================

// solveLinear solves a·x + b = 0 for any coefficients free of x.
func solveLinear(s *session, info EquationInformation) ([]Solution, error) {
	coeffs, ok := PolyCoeffs(SubOf(info.Left, info.Right), info.Var)
	if !ok || coeffs[1] == nil {
		return nil, strategyError("not linear in %s", info.Var)
	}
	b := coeffs[0]
	if b == nil {
		b = N(0)
	}
	root := Simplify(DivOf(Neg(b), coeffs[1]))
	s.record("isolate "+info.Var, SubOf(info.Left, info.Right), root)
	return []Solution{newSolution(info.Var, root, nil, 1)}, nil
}

// singlePower matches c·B^k = R with B containing v and a numeric k ≠ 1.
func singlePower(info EquationInformation) (base Expr, k *Num, c Expr, ok bool) {
	groups := groupsOf(info.Left)
	if len(groups) != 1 {
		return nil, nil, nil, false
	}
	g := groups[0]
	others := []Expr{g.coeff}
	for _, fac := range g.factors {
		if !Contains(fac, info.Var) {
			others = append(others, fac)
			continue
		}
		if base != nil {
			return nil, nil, nil, false
		}
		b, e := splitPow(fac)
		en, isNum := e.(*Num)
		if !isNum || en.IsOne() || !en.IsReal() || en.IsZero() || en.approx {
			return nil, nil, nil, false
		}
		base, k = b, en
	}
	if base == nil {
		return nil, nil, nil, false
	}
	return base, k, MulOf(others...), true
}

func matchSinglePower(info EquationInformation) bool {
	_, _, _, ok := singlePower(info)
	return ok
}

// solveSinglePower takes the k-th root of both sides. Rational exponents
// p/q raise both sides to q first; the dispatcher drops the extraneous
// roots this introduces.
func solveSinglePower(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	base, k, c, ok := singlePower(info)
	if !ok {
		return nil, strategyError("not a single power")
	}
	r := DivOf(info.Right, c)
	p, q := k.re.Num().Int64(), k.re.Denom().Int64()
	if q > 1 {
		r = PowOf(r, N(q))
	}
	if p < 0 {
		p = -p
		r = Recip(r)
	}
	r = Simplify(r)
	if IsUndefined(r) {
		return nil, nil
	}
	if n, ok := r.(*Num); ok && n.IsZero() {
		sols, err := s.roots(v, base, N(0))
		for i := range sols {
			sols[i].Multiplicity *= int(p)
		}
		return sols, err
	}
	root := Root(r, p)
	values := []Expr{root}
	if p%2 == 0 {
		values = append(values, Neg(root))
	}
	s.record("take root", SubOf(info.Left, info.Right), SubOf(base, root))
	var out []Solution
	for _, val := range values {
		sols, err := s.roots(v, base, val)
		if err != nil {
			return nil, err
		}
		out = append(out, sols...)
	}
	return out, nil
}

// solveQuadratic applies the quadratic formula. A zero discriminant gives
// one root of multiplicity 2; a negative one gives a complex pair.
func solveQuadratic(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	coeffs, ok := PolyCoeffs(SubOf(info.Left, info.Right), v)
	if !ok || coeffs[2] == nil {
		return nil, strategyError("not quadratic in %s", v)
	}
	a := coeffs[2]
	b, c := coeffs[1], coeffs[0]
	if b == nil {
		b = N(0)
	}
	if c == nil {
		c = N(0)
	}
	disc := Simplify(Expand(SubOf(PowOf(b, N(2)), MulOf(N(4), a, c))))
	twoA := MulOf(N(2), a)
	if n, ok := disc.(*Num); ok && n.IsZero() {
		root := Simplify(DivOf(Neg(b), twoA))
		return []Solution{newSolution(v, root, nil, 2)}, nil
	}
	sq := Sqrt(disc)
	r1 := Simplify(DivOf(AddOf(Neg(b), sq), twoA))
	r2 := Simplify(DivOf(SubOf(Neg(b), sq), twoA))
	s.record("quadratic formula", SubOf(info.Left, info.Right), disc)
	return []Solution{newSolution(v, r1, nil, 1), newSolution(v, r2, nil, 1)}, nil
}

// solveCubic removes rational roots and hands the quotient back to the
// dispatcher. Without a rational root it falls back to the closed-form
// numeric roots.
func solveCubic(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	f := SubOf(info.Left, info.Right)
	if p, ok := PolyFrom(f, v); ok {
		out, rest := rationalRoots(p)
		if len(out) > 0 {
			more, err := s.quotientRoots(rest)
			return append(out, more...), err
		}
	}
	cs, ok := floatCoeffs(f, v)
	if !ok || len(cs) != 4 {
		return nil, strategyError("cubic coefficients are not numeric")
	}
	var out []Solution
	for _, r := range cubicRoots(cs[3], cs[2], cs[1], cs[0]) {
		if n := numFromComplex(r); n != nil {
			out = append(out, newSolution(v, n, nil, 1))
		}
	}
	return out, nil
}

// solvePolynomial removes rational roots, then splits what is left with
// Factor, and finally brackets the remaining real roots numerically.
func solvePolynomial(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	f := SubOf(info.Left, info.Right)
	p, ok := PolyFrom(f, v)
	if !ok {
		cs, ok := floatCoeffs(f, v)
		if !ok {
			return nil, strategyError("polynomial coefficients are not numeric")
		}
		return numericRoots(v, cs), nil
	}
	out, rest := rationalRoots(p)
	if rest.Degree() < 1 {
		return out, nil
	}
	if rest.Degree() <= 3 {
		more, err := s.quotientRoots(rest)
		return append(out, more...), err
	}
	fr := Factor(rest.Expr(), v)
	var parts []Expr
	for _, fac := range fr.Factors {
		if Contains(fac, v) {
			parts = append(parts, fac)
		}
	}
	if fr.Success && len(parts) >= 2 {
		s.record("factor", rest.Expr(), fr.Expr())
		for _, fac := range parts {
			sols, err := s.roots(v, fac, N(0))
			if err != nil {
				return nil, err
			}
			out = append(out, sols...)
		}
		return out, nil
	}
	cs := make([]float64, len(rest.Coeffs))
	for i, c := range rest.Coeffs {
		cs[i], _ = c.Float64()
	}
	return append(out, numericRoots(v, cs)...), nil
}

// rationalRoots divides out every rational root with its multiplicity.
func rationalRoots(p *Poly) ([]Solution, *Poly) {
	var out []Solution
	for _, r := range p.RationalRoots() {
		m := p.Multiplicity(r)
		if m == 0 {
			continue
		}
		out = append(out, newSolution(p.Var, numFromRat(r), nil, m))
		p = p.Deflate(r)
	}
	return out, p
}

func (s *session) quotientRoots(q *Poly) ([]Solution, error) {
	if q.Degree() < 1 {
		return nil, nil
	}
	return s.roots(q.Var, q.Expr(), N(0))
}

// floatCoeffs evaluates the polynomial coefficients of e, ascending.
func floatCoeffs(e Expr, v string) ([]float64, bool) {
	coeffs, ok := PolyCoeffs(e, v)
	if !ok {
		return nil, false
	}
	deg := -1
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	if deg < 0 || deg > MaxPolyTerms {
		return nil, false
	}
	out := make([]float64, deg+1)
	for d, c := range coeffs {
		f, ok := EvalFloat(c, "", 0)
		if !ok {
			return nil, false
		}
		out[d] = f
	}
	return out, true
}

func numericRoots(v string, cs []float64) []Solution {
	var out []Solution
	for _, r := range realRoots(cs) {
		if n := NFloat(r); n != nil {
			out = append(out, newSolution(v, n, nil, 1))
		}
	}
	return out
}

// cubicRoots returns the three roots of a·x³ + b·x² + c·x + d: the
// trigonometric form when all are real, Cardano's otherwise.
func cubicRoots(a, b, c, d float64) []complex128 {
	if a == 0 {
		return nil
	}
	p := (3*a*c - b*b) / (3 * a * a)
	q := (2*b*b*b - 9*a*b*c + 27*a*a*d) / (27 * a * a * a)
	offset := b / (3 * a)
	disc := -(4*p*p*p + 27*q*q)
	switch {
	case math.Abs(p) < 1e-14 && math.Abs(q) < 1e-14:
		return []complex128{complex(-offset, 0)}
	case math.Abs(disc) < 1e-12:
		return []complex128{complex(3*q/p-offset, 0), complex(-3*q/(2*p)-offset, 0)}
	case disc > 0:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		out := make([]complex128, 3)
		for k := 0; k < 3; k++ {
			out[k] = complex(m*math.Cos(theta-2*math.Pi*float64(k)/3)-offset, 0)
		}
		return out
	}
	u := math.Cbrt(-q/2 + math.Sqrt(q*q/4+p*p*p/27))
	w := 0.0
	if u != 0 {
		w = -p / (3 * u)
	}
	omega := complex(-0.5, math.Sqrt(3)/2)
	cu, cw := complex(u, 0), complex(w, 0)
	return []complex128{
		complex(u+w-offset, 0),
		cu*omega + cw*cmplx.Conj(omega) - complex(offset, 0),
		cu*cmplx.Conj(omega) + cw*omega - complex(offset, 0),
	}
}

// realRoots brackets the real roots of Σ cs[i]·x^i between the critical
// points of the polynomial and bisects each bracket.
func realRoots(cs []float64) []float64 {
	n := len(cs) - 1
	for n >= 0 && cs[n] == 0 {
		n--
	}
	cs = cs[:n+1]
	switch {
	case n < 1:
		return nil
	case n == 1:
		return []float64{-cs[0] / cs[1]}
	}
	deriv := make([]float64, n)
	for i := 1; i <= n; i++ {
		deriv[i-1] = float64(i) * cs[i]
	}
	bound := 1.0
	for i := 0; i < n; i++ {
		bound = math.Max(bound, 1+math.Abs(cs[i]/cs[n]))
	}
	points := []float64{-bound}
	for _, c := range realRoots(deriv) {
		if c > -bound && c < bound {
			points = append(points, c)
		}
	}
	points = append(points, bound)
	sort.Float64s(points)

	eval := func(x float64) (float64, float64) {
		v, scale := 0.0, 0.0
		for i := n; i >= 0; i-- {
			v = v*x + cs[i]
			scale = scale*math.Abs(x) + math.Abs(cs[i])
		}
		return v, scale
	}
	isZero := func(x float64) bool {
		v, scale := eval(x)
		return math.Abs(v) <= 1e-12*math.Max(1, scale)
	}
	var roots []float64
	add := func(r float64) {
		for _, q := range roots {
			if math.Abs(q-r) <= 1e-9*math.Max(1, math.Abs(r)) {
				return
			}
		}
		roots = append(roots, r)
	}
	for i := 0; i+1 < len(points); i++ {
		lo, hi := points[i], points[i+1]
		if isZero(lo) {
			add(lo)
		}
		flo, _ := eval(lo)
		fhi, _ := eval(hi)
		if isZero(hi) || flo*fhi > 0 {
			continue
		}
		for iter := 0; iter < 200 && hi-lo > 1e-15*math.Max(1, math.Abs(lo)); iter++ {
			mid := (lo + hi) / 2
			fm, _ := eval(mid)
			if fm == 0 {
				lo, hi = mid, mid
				break
			}
			if fm*flo < 0 {
				hi = mid
			} else {
				lo, flo = mid, fm
			}
		}
		add((lo + hi) / 2)
	}
	if isZero(points[len(points)-1]) {
		add(points[len(points)-1])
	}
	sort.Float64s(roots)
	return roots
}

// ============================================================
// Mixed powers
// ============================================================

// radicalGroup returns the index of the first group of e holding a
// fractional power of an expression in v, or -1.
func radicalGroup(e Expr, v string) int {
	for i, g := range groupsOf(e) {
		for _, fac := range g.factors {
			if isRadicalOf(fac, v) {
				return i
			}
		}
	}
	return -1
}

func isRadicalOf(f Expr, v string) bool {
	p, ok := f.(*Pow)
	if !ok || !Contains(p.base, v) {
		return false
	}
	en, ok := p.exp.(*Num)
	return ok && en.IsReal() && !en.re.IsInt()
}

// solveMixedPower isolates one radical term, c·B^(p/q) = R, and solves
// B^p = (R/c)^q. Raising to a power can add roots; the dispatcher drops
// those that fail the original equation.
func solveMixedPower(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	groups := groupsOf(info.Left)
	idx := radicalGroup(info.Left, v)
	if idx < 0 {
		return nil, strategyError("no radical in %s", v)
	}
	rg := groups[idx]
	var rad *Pow
	others := []Expr{rg.coeff}
	for _, fac := range rg.factors {
		if rad == nil && isRadicalOf(fac, v) {
			rad = fac.(*Pow)
			continue
		}
		if Contains(fac, v) {
			return nil, strategyError("radical term %s has other factors in %s", rg.Expr(), v)
		}
		others = append(others, fac)
	}
	var rest []*Group
	for i, g := range groups {
		if i != idx {
			rest = append(rest, g)
		}
	}
	k := rad.exp.(*Num)
	p, q := k.re.Num().Int64(), k.re.Denom().Int64()
	rhs := DivOf(SubOf(info.Right, sumOf(rest)), MulOf(others...))
	left := Expand(PowOf(rad.base, N(p)))
	right := Expand(PowOf(rhs, N(q)))
	s.record("isolate and raise to the power "+N(q).String(), SubOf(info.Left, info.Right), SubOf(left, right))
	return s.roots(v, left, right)
}
