package gosolve

import (
	"math"
	"math/big"
)

// ============================================================
// Pow combine
// ============================================================

func pow(b, e Expr) Expr {
	if anyUndefined(b, e) {
		return Undef()
	}
	if _, ok := e.(*Matrix); ok {
		return Undef()
	}
	en, eIsNum := e.(*Num)
	if m, ok := b.(*Matrix); ok {
		return m.pow(e)
	}
	bn, bIsNum := b.(*Num)
	if eIsNum && en.IsZero() {
		if bIsNum && bn.IsZero() {
			return Undef()
		}
		return N(1)
	}
	if eIsNum && en.IsOne() {
		return b
	}
	if bIsNum {
		switch {
		case bn.IsOne():
			return N(1)
		case bn.IsZero():
			if !eIsNum {
				return N(0)
			}
			if en.IsReal() && en.IsPositive() {
				return N(0)
			}
			return Undef()
		case eIsNum:
			return numPow(bn, en)
		}
		return powLogIdentity(b, e)
	}
	switch v := b.(type) {
	case *Pow:
		return powOfPow(v, e)
	case *Term:
		if v.IsSum() {
			return powOfSum(v, e)
		}
		return powOfProduct(v.groups[0], e)
	case *Func:
		if v.name == FnAbs && eIsNum && en.IsInteger() {
			if k, _ := en.Int64(); k%2 == 0 {
				return pow(v.arg, e)
			}
		}
	}
	return powLogIdentity(b, e)
}

// powLogIdentity applies b^(k·log_b(x)) = x^k and otherwise builds the node.
func powLogIdentity(b, e Expr) Expr {
	if l, ok := e.(*Log); ok && l.base.Equal(b) {
		return l.arg
	}
	if t, ok := e.(*Term); ok && !t.IsSum() && len(t.groups[0].factors) == 1 {
		if l, ok := t.groups[0].factors[0].(*Log); ok && l.base.Equal(b) {
			return pow(l.arg, t.groups[0].coeff)
		}
	}
	return &Pow{base: b, exp: e}
}

func powOfPow(p *Pow, e Expr) Expr {
	en, eIsNum := e.(*Num)
	if eIsNum && en.IsInteger() {
		return pow(p.base, mul(p.exp, e))
	}
	if e1, ok := p.exp.(*Num); ok && eIsNum && e1.IsInteger() {
		if k, _ := e1.Int64(); k%2 == 0 {
			return pow(Abs(p.base), numMul(e1, en))
		}
	}
	return pow(p.base, mul(p.exp, e))
}

func powOfProduct(g *Group, e Expr) Expr {
	en, eIsNum := e.(*Num)
	if eIsNum && en.IsInteger() && !en.approx {
		k, ok := en.Int64()
		if !ok {
			return &Pow{base: groupExpr(g.coeff, g.factors), exp: e}
		}
		c := numPowInt(g.coeff, k)
		if c == nil {
			return Undef()
		}
		parts := make([]Expr, 0, len(g.factors)+1)
		parts = append(parts, c)
		for _, f := range g.factors {
			parts = append(parts, pow(f, e))
		}
		return MulOf(parts...)
	}
	if g.coeff.IsReal() && g.coeff.IsPositive() && !g.coeff.IsOne() {
		return mul(pow(g.coeff, e), pow(groupExpr(N(1), g.factors), e))
	}
	if g.coeff.IsReal() && g.coeff.IsNegative() && !g.coeff.IsNegOne() {
		return mul(pow(numAbs(g.coeff), e), pow(groupExpr(N(-1), g.factors), e))
	}
	return powLogIdentity(groupExpr(g.coeff, g.factors), e)
}

func powOfSum(s *Term, e Expr) Expr {
	en, eIsNum := e.(*Num)
	if eIsNum && en.IsInteger() && en.IsPositive() && !en.approx && s.plain() {
		k, _ := en.Int64()
		if k <= MaxBinomialExponent {
			if len(s.groups) == 2 {
				return binomial(s, k)
			}
			if math.Pow(float64(len(s.groups)), float64(k)) <= float64(MaxDistributeGroups) {
				var acc Expr = s
				for i := int64(1); i < k; i++ {
					acc = mul(acc, s)
				}
				return acc
			}
		}
	}
	c, mono, prim := extractContent(s)
	if eIsNum && en.IsInteger() && !en.approx {
		if c.IsOne() && len(mono) == 0 {
			return &Pow{base: s, exp: e}
		}
		parts := []Expr{pow(c, e)}
		for _, m := range mono {
			parts = append(parts, pow(m, e))
		}
		parts = append(parts, &Pow{base: prim, exp: e})
		return MulOf(parts...)
	}
	ac := numAbs(c)
	if c.IsReal() && !ac.IsOne() {
		inner := scaleSum(s, numRecip(ac))
		return mul(pow(ac, e), powLogIdentity(inner, e))
	}
	return powLogIdentity(s, e)
}

// binomial expands (a+b)^k.
func binomial(s *Term, k int64) Expr {
	a, b := s.groups[0].Expr(), s.groups[1].Expr()
	parts := make([]*Group, 0, k+1)
	coef := big.NewInt(1)
	for i := int64(0); i <= k; i++ {
		term := mul(&Num{re: new(big.Rat).SetInt(coef)}, mul(pow(a, N(k-i)), pow(b, N(i))))
		parts = append(parts, groupsOf(term)...)
		coef.Mul(coef, big.NewInt(k-i))
		coef.Quo(coef, big.NewInt(i+1))
	}
	return sumOf(parts)
}

// ============================================================
// Numeric powers
// ============================================================

// maxRootIndex bounds the root index handled exactly.
const maxRootIndex = 64

// numPow evaluates b^e for numbers, keeping exact radicals where possible:
// perfect powers are extracted, denominators rationalized, odd roots of
// negatives stay real, square roots of negatives become imaginary, and the
// remaining complex cases use the principal (De Moivre) value.
func numPow(b, e *Num) Expr {
	if b.IsZero() {
		if e.IsReal() && e.IsPositive() {
			return N(0)
		}
		return Undef()
	}
	if e.approx || b.approx || !e.IsReal() {
		if r := evalPow(b, e); r != nil {
			return r
		}
		return Undef()
	}
	if k, ok := e.Int64(); ok {
		if r := numPowInt(b, k); r != nil {
			return r
		}
		return Undef()
	}
	p := e.re.Num()
	qb := e.re.Denom()
	if !qb.IsInt64() || qb.Int64() > maxRootIndex || !p.IsInt64() {
		return approxOrUndef(b, e)
	}
	q := qb.Int64()
	pi := p.Int64()
	if !b.IsReal() {
		return approxOrUndef(b, e)
	}
	if b.IsNegative() {
		mag := numPow(numNeg(b), e)
		switch {
		case q%2 == 1:
			if pi%2 != 0 {
				return mul(N(-1), mag)
			}
			return mag
		case q == 2:
			return mul(imagUnitPow(pi), mag)
		}
		return approxOrUndef(b, e)
	}
	return rationalRoot(b, pi, q)
}

func approxOrUndef(b, e *Num) Expr {
	if r := evalPow(b, e); r != nil {
		return approxNum(r)
	}
	return Undef()
}

// imagUnitPow returns i^p.
func imagUnitPow(p int64) *Num {
	switch ((p % 4) + 4) % 4 {
	case 0:
		return N(1)
	case 1:
		return I()
	case 2:
		return N(-1)
	}
	return numNeg(I())
}

// rationalRoot computes b^(p/q) for a positive rational b as
// coeff · inside^(1/q') with inside a q'-th-power-free integer.
func rationalRoot(b *Num, p, q int64) Expr {
	ap := p
	if ap < 0 {
		ap = -ap
	}
	B := numPowInt(b, ap)
	if B == nil || B.approx {
		return approxOrUndef(b, F(p, q))
	}
	if p < 0 {
		B = numRecip(B)
	}
	num := B.re.Num()
	den := B.re.Denom()
	m := new(big.Int).Mul(num, new(big.Int).Exp(den, big.NewInt(q-1), nil))
	if m.BitLen() > maxExactBits {
		return approxOrUndef(b, F(p, q))
	}
	outside, inside := extractRoot(m, q)
	coeff := &Num{re: new(big.Rat).SetFrac(outside, den)}
	if inside.Cmp(big.NewInt(1)) == 0 {
		return coeff
	}
	for reduced := true; reduced; {
		reduced = false
		for d := int64(2); d <= q; d++ {
			if q%d != 0 {
				continue
			}
			if r, ok := intRoot(inside, d); ok {
				inside = r
				q /= d
				reduced = true
				break
			}
		}
	}
	rad := &Num{re: new(big.Rat).SetInt(inside)}
	if q == 1 {
		return numMul(coeff, rad)
	}
	return groupExpr(coeff, []Expr{&Pow{base: rad, exp: F(1, q)}})
}
