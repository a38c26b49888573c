package gosolve

import (
	"math"
)

// ============================================================
// Logarithmic, trigonometric and exponential strategies
// ============================================================

// solveLogarithm merges the logarithms into one, c·log_b(g) + k = 0, and
// solves g = b^(-k/c).
func solveLogarithm(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	f := naturalLogsIfMixed(SubOf(info.Left, info.Right), v)
	c := CompoundLogs(f)
	if !c.Equal(f) {
		s.record("combine logarithms", f, c)
	}
	var (
		lg    *Log
		coeff *Num
		rest  []*Group
	)
	for _, g := range groupsOf(c) {
		if !Contains(g.Expr(), v) {
			rest = append(rest, g)
			continue
		}
		l, k, ok := logGroup(g)
		if !ok || lg != nil {
			return nil, strategyError("%s is not a single logarithm plus a constant", c)
		}
		lg, coeff = l, k
	}
	if lg == nil {
		return nil, strategyError("no logarithm of %s", v)
	}
	value := DivOf(Neg(sumOf(rest)), coeff)
	arg := PowOf(lg.base, value)
	s.record("exponentiate", c, SubOf(lg.arg, arg))
	return s.roots(v, lg.arg, arg)
}

// naturalLogsIfMixed rewrites every logarithm of v as a natural log
// quotient when the logarithms of v use more than one base.
func naturalLogsIfMixed(f Expr, v string) Expr {
	var bases []Expr
	for _, n := range repeatedNodes(f, v) {
		l, ok := n.(*Log)
		if !ok {
			continue
		}
		seen := false
		for _, b := range bases {
			if b.Equal(l.base) {
				seen = true
				break
			}
		}
		if !seen {
			bases = append(bases, l.base)
		}
	}
	if len(bases) < 2 {
		return f
	}
	var toNatural func(Expr) Expr
	toNatural = func(e Expr) Expr {
		e = rebuildWith(e, toNatural)
		if l, ok := e.(*Log); ok && !l.IsNatural() && Contains(l.arg, v) {
			return DivOf(Ln(l.arg), Ln(l.base))
		}
		return e
	}
	return toNatural(f)
}

// solveLogBase handles a logarithm whose base contains the variable:
// log_g(a) = r becomes g^r = a.
func solveLogBase(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	c := CompoundLogs(SubOf(info.Left, info.Right))
	var (
		lg    *Log
		coeff *Num
		rest  []*Group
	)
	for _, g := range groupsOf(c) {
		if !Contains(g.Expr(), v) {
			rest = append(rest, g)
			continue
		}
		l, k, ok := logGroup(g)
		if !ok || lg != nil || !Contains(l.base, v) {
			return nil, strategyError("%s is not a single logarithm plus a constant", c)
		}
		lg, coeff = l, k
	}
	if lg == nil {
		return nil, strategyError("no logarithm with base in %s", v)
	}
	value := Simplify(DivOf(Neg(sumOf(rest)), coeff))
	if n, ok := value.(*Num); ok && n.IsZero() {
		return s.roots(v, lg.arg, N(1))
	}
	if !Contains(lg.arg, v) {
		return s.roots(v, lg.base, PowOf(lg.arg, Recip(value)))
	}
	return s.roots(v, PowOf(lg.base, value), lg.arg)
}

// ============================================================
// Sinusoidal equations
// ============================================================

// solveSinusoidal handles c·T(u) + k = 0 for one trig function T, and
// a·sin(u) + b·cos(u) + k = 0 through R·sin(u + φ).
func solveSinusoidal(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	f := SubOf(info.Left, info.Right)
	var trig, rest []*Group
	for _, g := range groupsOf(f) {
		if Contains(g.Expr(), v) {
			trig = append(trig, g)
		} else {
			rest = append(rest, g)
		}
	}
	k := sumOf(rest)
	switch len(trig) {
	case 1:
		fn, c, ok := trigFactor(trig[0], v)
		if !ok {
			return nil, strategyError("%s is not a multiple of one trig function", trig[0].Expr())
		}
		return s.trigValue(v, fn.name, fn.arg, DivOf(Neg(k), c))
	case 2:
		f1, c1, ok1 := trigFactor(trig[0], v)
		f2, c2, ok2 := trigFactor(trig[1], v)
		if !ok1 || !ok2 || !f1.arg.Equal(f2.arg) {
			return nil, strategyError("trig terms do not share an argument")
		}
		if f1.name == FnCos && f2.name == FnSin {
			f1, f2, c1, c2 = f2, f1, c2, c1
		}
		a, aok := c1.(*Num)
		b, bok := c2.(*Num)
		if f1.name != FnSin || f2.name != FnCos || !aok || !bok || !a.IsReal() || !b.IsReal() {
			return nil, strategyError("only a·sin + b·cos with numeric a, b can be combined")
		}
		r := PowOf(numAdd(numMul(a, a), numMul(b, b)), F(1, 2))
		phi := Atan(numDiv(b, a))
		if a.IsNegative() {
			phi = AddOf(phi, Pi())
		}
		u := AddOf(f1.arg, phi)
		s.record("combine into a single sine", f, AddOf(MulOf(r, Sin(u)), k))
		return s.trigValue(v, FnSin, u, DivOf(Neg(k), r))
	}
	return nil, strategyError("too many trig terms")
}

// trigFactor splits a group into one trig function of v and the rest.
func trigFactor(g *Group, v string) (*Func, Expr, bool) {
	var fn *Func
	others := []Expr{g.coeff}
	for _, fac := range g.factors {
		if !Contains(fac, v) {
			others = append(others, fac)
			continue
		}
		f, ok := fac.(*Func)
		if !ok || !isTrigName(f.name) || fn != nil {
			return nil, nil, false
		}
		fn = f
	}
	if fn == nil {
		return nil, nil, false
	}
	return fn, MulOf(others...), true
}

// trigValue solves name(arg) = value. Every branch is solved for v as
// arg = principal + period·n; Exact is the n = 0 member and General keeps
// n.
func (s *session) trigValue(v, name string, arg, value Expr) ([]Solution, error) {
	value = Simplify(value)
	zero := false
	if n, ok := value.(*Num); ok {
		if !n.IsReal() {
			return nil, nil
		}
		zero = n.IsZero()
	}
	switch name {
	case FnCsc:
		if zero {
			return nil, nil
		}
		return s.trigValue(v, FnSin, arg, Recip(value))
	case FnSec:
		if zero {
			return nil, nil
		}
		return s.trigValue(v, FnCos, arg, Recip(value))
	case FnCot:
		if zero {
			return s.trigBranches(v, arg, []Expr{MulOf(F(1, 2), Pi())}, Pi())
		}
		return s.trigValue(v, FnTan, arg, Recip(value))
	}

	if name == FnSin || name == FnCos {
		if n, ok := HarshSimplify(value).(*Num); ok && n.IsReal() && math.Abs(n.Float64()) > 1+1e-12 {
			return nil, nil
		}
	}
	twoPi := MulOf(N(2), Pi())
	switch name {
	case FnSin:
		p := Asin(value)
		q := SubOf(Pi(), p)
		return s.trigBranches(v, arg, distinctModulo(p, q, twoPi), twoPi)
	case FnCos:
		p := Acos(value)
		return s.trigBranches(v, arg, distinctModulo(p, Neg(p), twoPi), twoPi)
	case FnTan:
		return s.trigBranches(v, arg, []Expr{Atan(value)}, Pi())
	}
	return nil, strategyError("unsupported function %s", name)
}

// distinctModulo returns p and q, or only p when they differ by a
// multiple of period.
func distinctModulo(p, q, period Expr) []Expr {
	pf, pok := EvalFloat(p, "", 0)
	qf, qok := EvalFloat(q, "", 0)
	tf, tok := EvalFloat(period, "", 0)
	if pok && qok && tok {
		k := (pf - qf) / tf
		if approxEqual(k, math.Round(k)) {
			return []Expr{p}
		}
	}
	return []Expr{p, q}
}

func (s *session) trigBranches(v string, arg Expr, principals []Expr, period Expr) ([]Solution, error) {
	n := s.iteration()
	var out []Solution
	for _, p := range principals {
		if IsUndefined(p) {
			continue
		}
		general := AddOf(p, MulOf(period, S(n)))
		s.record("periodic solution", arg, general)
		sols, err := s.roots(v, arg, general)
		if err != nil {
			return nil, err
		}
		for _, sol := range sols {
			exact := Simplify(sol.Exact.Sub(n, N(0)))
			var gen Expr
			if Contains(sol.Exact, n) {
				gen = sol.Exact
			}
			out = append(out, newSolution(v, exact, gen, sol.Multiplicity))
		}
	}
	return out, nil
}

// ============================================================
// Exponential equations
// ============================================================

// solveExponential handles c·b^g(x) + k = 0 by taking log_b, and
// c1·P1 + c2·P2 = 0 for products of exponentials by taking natural logs
// of both sides.
func solveExponential(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	f := SubOf(info.Left, info.Right)
	var vg, rest []*Group
	for _, g := range groupsOf(f) {
		if Contains(g.Expr(), v) {
			vg = append(vg, g)
		} else {
			rest = append(rest, g)
		}
	}
	k := sumOf(rest)
	switch len(vg) {
	case 1:
		c, pows, ok := exponentialParts(vg[0], v)
		if !ok {
			return nil, strategyError("%s mixes exponentials with other terms in %s", vg[0].Expr(), v)
		}
		w := Simplify(DivOf(Neg(k), c))
		if n, ok := HarshSimplify(w).(*Num); ok && (!n.IsReal() || !n.IsPositive()) {
			return nil, nil
		}
		if len(pows) == 1 {
			target := LogOf(w, pows[0].base)
			s.record("take log base "+pows[0].base.String(), f, SubOf(pows[0].exp, target))
			return s.roots(v, pows[0].exp, target)
		}
		lhs := logOfExponentials(pows)
		s.record("take natural log", f, SubOf(lhs, Ln(w)))
		return s.roots(v, lhs, Ln(w))
	case 2:
		if n, ok := k.(*Num); !ok || !n.IsZero() {
			return nil, strategyError("two exponential terms with a constant cannot be separated")
		}
		c1, p1, ok1 := exponentialParts(vg[0], v)
		c2, p2, ok2 := exponentialParts(negGroup(vg[1]), v)
		if !ok1 || !ok2 {
			return nil, strategyError("terms are not pure exponentials")
		}
		n1, ok1 := HarshSimplify(c1).(*Num)
		n2, ok2 := HarshSimplify(c2).(*Num)
		if !ok1 || !ok2 || !n1.IsReal() || !n2.IsReal() {
			return nil, strategyError("exponential coefficients must be numeric")
		}
		if n1.IsNegative() != n2.IsNegative() {
			return nil, nil
		}
		if n1.IsNegative() {
			c1, c2 = Neg(c1), Neg(c2)
		}
		lhs := AddOf(Ln(c1), logOfExponentials(p1))
		rhs := AddOf(Ln(c2), logOfExponentials(p2))
		s.record("take natural log", f, SubOf(lhs, rhs))
		return s.roots(v, lhs, rhs)
	}
	return nil, strategyError("too many exponential terms")
}

// exponentialParts splits a group into its v-free part and the powers
// b^g(x) with v only in the exponent.
func exponentialParts(g *Group, v string) (Expr, []*Pow, bool) {
	others := []Expr{g.coeff}
	var pows []*Pow
	for _, fac := range g.factors {
		if !Contains(fac, v) {
			others = append(others, fac)
			continue
		}
		p, ok := fac.(*Pow)
		if !ok || Contains(p.base, v) {
			return nil, nil, false
		}
		pows = append(pows, p)
	}
	return MulOf(others...), pows, len(pows) > 0
}

// logOfExponentials is ln(b1^g1 · b2^g2 · ...) = Σ gi·ln(bi).
func logOfExponentials(pows []*Pow) Expr {
	terms := make([]Expr, len(pows))
	for i, p := range pows {
		terms[i] = MulOf(p.exp, Ln(p.base))
	}
	return AddOf(terms...)
}
