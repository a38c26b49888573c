package gosolve

import "math/big"

// ============================================================
// Greatest and least common factors
// ============================================================

// factorPower is one base^exp factor of a decomposed group.
type factorPower struct {
	base Expr
	exp  *Num
}

// decompose splits e into a numeric coefficient and base^exp factors.
// Sums give up their content first so that 2x+2 and 4x+4 share x+1.
// Factors with a symbolic exponent are kept whole with exponent 1.
func decompose(e Expr) (*Num, []factorPower) {
	switch v := e.(type) {
	case *Num:
		return v, nil
	case *Term:
		if v.IsSum() {
			c, mono, prim := extractContent(v)
			parts := make([]factorPower, 0, len(mono)+1)
			for _, m := range mono {
				parts = append(parts, splitFactor(m))
			}
			return c, append(parts, factorPower{base: prim, exp: N(1)})
		}
		g := v.groups[0]
		parts := make([]factorPower, 0, len(g.factors))
		for _, f := range g.factors {
			parts = append(parts, splitFactor(f))
		}
		return g.coeff, parts
	}
	return N(1), []factorPower{splitFactor(e)}
}

func splitFactor(f Expr) factorPower {
	b, e := splitPow(f)
	if en, ok := e.(*Num); ok && en.IsReal() && !en.approx {
		return factorPower{base: b, exp: en}
	}
	return factorPower{base: f, exp: N(1)}
}

func (fp factorPower) expr() Expr { return pow(fp.base, fp.exp) }

// ratGCF is the positive rational gcd: gcd of numerators over lcm of
// denominators. Complex or approximate inputs share only 1.
func ratGCF(a, b *Num) *Num {
	if !a.IsReal() || !b.IsReal() || a.approx || b.approx {
		return N(1)
	}
	if a.IsZero() {
		return numAbs(b)
	}
	if b.IsZero() {
		return numAbs(a)
	}
	num := new(big.Int).GCD(nil, nil, new(big.Int).Abs(a.re.Num()), new(big.Int).Abs(b.re.Num()))
	return &Num{re: new(big.Rat).SetFrac(num, ratLCM(a.re.Denom(), b.re.Denom()))}
}

func ratLCM(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	out := new(big.Int).Quo(a, g)
	return out.Mul(out, b)
}

// GCF returns the greatest common factor of a and b: the numeric gcd of
// their coefficients times every shared base raised to its smaller positive
// exponent. The result is always positive when numeric.
func GCF(a, b Expr) Expr {
	a, b = unwrap(a), unwrap(b)
	if anyUndefined(a, b) {
		return Undef()
	}
	if an, ok := a.(*Num); ok && an.IsZero() {
		return b
	}
	if bn, ok := b.(*Num); ok && bn.IsZero() {
		return a
	}
	ca, pa := decompose(a)
	cb, pb := decompose(b)
	result := []Expr{ratGCF(ca, cb)}
	used := make([]bool, len(pb))
	for _, fa := range pa {
		if !fa.exp.IsPositive() {
			continue
		}
		for j, fb := range pb {
			if used[j] || !fb.exp.IsPositive() || !fa.base.Equal(fb.base) {
				continue
			}
			used[j] = true
			m := fa.exp
			if numCmp(fb.exp, m) < 0 {
				m = fb.exp
			}
			result = append(result, pow(fa.base, m))
			break
		}
	}
	return MulOf(result...)
}

// GroupGCF folds GCF across groups.
func GroupGCF(groups []*Group) Expr {
	if len(groups) == 0 {
		return N(1)
	}
	acc := groups[0].Expr()
	for _, g := range groups[1:] {
		acc = GCF(acc, g.Expr())
		if n, ok := acc.(*Num); ok && n.IsOne() {
			break
		}
	}
	if n, ok := acc.(*Num); ok && n.IsNegative() {
		return numNeg(n)
	}
	return acc
}

// denominator describes the denominator of a single group.
type denominator struct {
	coeff *big.Int
	parts []factorPower
}

func denominatorOf(g *Group) (*Num, Expr, denominator) {
	d := denominator{coeff: big.NewInt(1)}
	num := []Expr{}
	coeff := g.coeff
	if coeff.IsReal() && !coeff.approx {
		d.coeff = new(big.Int).Set(coeff.re.Denom())
		coeff = &Num{re: new(big.Rat).SetInt(coeff.re.Num())}
	}
	for _, f := range g.factors {
		fp := splitFactor(f)
		if fp.exp.IsNegative() {
			d.parts = append(d.parts, factorPower{base: fp.base, exp: numNeg(fp.exp)})
			continue
		}
		num = append(num, f)
	}
	return coeff, groupExpr(N(1), num), d
}

// lcmDenominators merges denominators keeping the larger exponent of each base.
func lcmDenominators(ds []denominator) denominator {
	out := denominator{coeff: big.NewInt(1)}
	for _, d := range ds {
		out.coeff = ratLCM(out.coeff, d.coeff)
		for _, p := range d.parts {
			found := false
			for i, q := range out.parts {
				if q.base.Equal(p.base) {
					if numCmp(p.exp, q.exp) > 0 {
						out.parts[i].exp = p.exp
					}
					found = true
					break
				}
			}
			if !found {
				out.parts = append(out.parts, p)
			}
		}
	}
	return out
}

func (d denominator) expr() Expr {
	parts := []Expr{&Num{re: new(big.Rat).SetInt(d.coeff)}}
	for _, p := range d.parts {
		parts = append(parts, p.expr())
	}
	return MulOf(parts...)
}

// LCF returns the least common multiple of the denominators of a and b.
func LCF(a, b Expr) Expr {
	ds := []denominator{}
	for _, e := range []Expr{a, b} {
		for _, g := range groupsOf(unwrap(e)) {
			_, _, d := denominatorOf(g)
			ds = append(ds, d)
		}
	}
	return lcmDenominators(ds).expr()
}

// NumerDenom writes e over a common denominator and returns numerator and
// denominator. Only numeric negative exponents count as denominators.
func NumerDenom(e Expr) (Expr, Expr) {
	e = unwrap(e)
	switch e.(type) {
	case *Undefined:
		return e, N(1)
	case *Matrix:
		return e, N(1)
	}
	groups := groupsOf(e)
	nums := make([]Expr, len(groups))
	coeffs := make([]*Num, len(groups))
	dens := make([]denominator, len(groups))
	for i, g := range groups {
		coeffs[i], nums[i], dens[i] = denominatorOf(g)
	}
	common := lcmDenominators(dens)
	terms := make([]Expr, 0, len(groups))
	for i := range groups {
		scale := new(big.Int).Quo(common.coeff, dens[i].coeff)
		parts := []Expr{numMul(coeffs[i], &Num{re: new(big.Rat).SetInt(scale)}), nums[i]}
		for _, p := range common.parts {
			missing := p.exp
			for _, q := range dens[i].parts {
				if q.base.Equal(p.base) {
					missing = numSub(p.exp, q.exp)
					break
				}
			}
			if !missing.IsZero() {
				parts = append(parts, pow(p.base, missing))
			}
		}
		terms = append(terms, MulOf(parts...))
	}
	return AddOf(terms...), common.expr()
}

// Together rewrites e as a single fraction.
func Together(e Expr) Expr {
	n, d := NumerDenom(e)
	return div(n, d)
}
