package gosolve

import (
	"fmt"
	"math/big"
	"sort"
)

// Polynomial caps.
const (
	// MaxPolyTerms bounds the degree handled by polynomial division.
	MaxPolyTerms = 64
	// MaxFactorDegree bounds rational-root factoring.
	MaxFactorDegree = 12
	// MaxDivisorSearch bounds the candidate divisors of a coefficient.
	MaxDivisorSearch = 1000
	// maxExpandGroups bounds forced expansion.
	maxExpandGroups = 4096
)

// ============================================================
// Expansion
// ============================================================

// Expand multiplies out products of sums and positive integer powers of
// sums. Denominators are kept as factors.
func Expand(e Expr) Expr {
	switch v := e.(type) {
	case *Term:
		if v.IsSum() {
			parts := make([]*Group, 0, len(v.groups))
			for _, g := range v.groups {
				parts = append(parts, groupsOf(Expand(g.Expr()))...)
			}
			return sumOf(parts)
		}
		return expandProduct(v.groups[0])
	case *Pow:
		base := Expand(v.base)
		if en, ok := v.exp.(*Num); ok && en.IsInteger() && en.IsPositive() && IsSum(base) {
			k, _ := en.Int64()
			if k <= MaxPolyTerms {
				acc := []*Group{{coeff: N(1)}}
				for i := int64(0); i < k; i++ {
					var ok bool
					acc, ok = crossGroups(acc, groupsOf(base))
					if !ok {
						return v
					}
				}
				return sumOf(acc)
			}
		}
		return PowOf(base, Expand(v.exp))
	case *Func:
		return FuncOf(v.name, Expand(v.arg))
	case *Log:
		return LogOf(Expand(v.arg), Expand(v.base))
	}
	return e
}

func expandProduct(g *Group) Expr {
	acc := []*Group{{coeff: g.coeff}}
	var den Expr = N(1)
	for _, f := range g.factors {
		if p, ok := f.(*Pow); ok && p.IsDenominator() {
			den = mul(den, p)
			continue
		}
		ef := Expand(f)
		var ok bool
		acc, ok = crossGroups(acc, groupsOf(ef))
		if !ok {
			return g.Expr()
		}
	}
	out := make([]*Group, 0, len(acc))
	for _, a := range acc {
		out = append(out, groupsOf(mul(a.Expr(), den))...)
	}
	return sumOf(out)
}

func crossGroups(a, b []*Group) ([]*Group, bool) {
	if len(a)*len(b) > maxExpandGroups {
		return nil, false
	}
	out := make([]*Group, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, groupsOf(mul(x.Expr(), y.Expr()))...)
		}
	}
	merged := sumOf(out)
	return groupsOf(merged), true
}

// ============================================================
// Coefficients, degree, collect
// ============================================================

// PolyCoeffsResult maps a power of the variable to its coefficient.
type PolyCoeffsResult map[int]Expr

// Degrees returns the powers present, highest first.
func (r PolyCoeffsResult) Degrees() []int {
	out := make([]int, 0, len(r))
	for d := range r {
		out = append(out, d)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// PolyCoeffs reads expr as a polynomial in varName. It reports false when
// the variable appears other than as a non-negative integer power.
func PolyCoeffs(expr Expr, varName string) (PolyCoeffsResult, bool) {
	result := PolyCoeffsResult{}
	for _, g := range groupsOf(Expand(expr)) {
		deg := 0
		rest := make([]Expr, 0, len(g.factors))
		for _, f := range g.factors {
			b, e := splitPow(f)
			if s, ok := b.(*Sym); ok && s.name == varName {
				en, ok := e.(*Num)
				if !ok {
					return nil, false
				}
				k, ok := en.Int64()
				if !ok || k < 0 || en.approx {
					return nil, false
				}
				deg += int(k)
				continue
			}
			if Contains(f, varName) {
				return nil, false
			}
			rest = append(rest, f)
		}
		c := groupExpr(g.coeff, rest)
		if existing, ok := result[deg]; ok {
			result[deg] = add(existing, c)
		} else {
			result[deg] = c
		}
	}
	for d, c := range result {
		if n, ok := c.(*Num); ok && n.IsZero() {
			delete(result, d)
		}
	}
	return result, true
}

// Degree returns the polynomial degree in varName, or -1 when expr is not
// a polynomial in it. Zero has degree 0.
func Degree(expr Expr, varName string) int {
	coeffs, ok := PolyCoeffs(expr, varName)
	if !ok {
		return -1
	}
	max := 0
	for d := range coeffs {
		if d > max {
			max = d
		}
	}
	return max
}

// Collect rebuilds expr as Σ c_k·v^k. Non-polynomials are returned as is.
func Collect(expr Expr, varName string) Expr {
	coeffs, ok := PolyCoeffs(expr, varName)
	if !ok {
		return expr
	}
	terms := make([]Expr, 0, len(coeffs))
	for _, d := range coeffs.Degrees() {
		terms = append(terms, mul(coeffs[d], pow(S(varName), N(int64(d)))))
	}
	return AddOf(terms...)
}

// PolyDivide divides num by den as polynomials in varName and returns
// quotient and remainder. Coefficients may be symbolic.
func PolyDivide(num, den Expr, varName string) (Expr, Expr, error) {
	dc, ok := PolyCoeffs(den, varName)
	if !ok {
		return nil, nil, fmt.Errorf("divisor %s: %w", den, ErrNotPolynomial)
	}
	if len(dc) == 0 {
		return nil, nil, ErrDivisionByZero
	}
	dd := dc.Degrees()[0]
	lead := dc[dd]
	x := S(varName)
	var quotient Expr = N(0)
	rem := Expand(num)
	for i := 0; ; i++ {
		if i > MaxPolyTerms {
			return nil, nil, fmt.Errorf("dividing %s: %w", num, ErrComplexity)
		}
		rc, ok := PolyCoeffs(rem, varName)
		if !ok {
			return nil, nil, fmt.Errorf("dividend %s: %w", num, ErrNotPolynomial)
		}
		if len(rc) == 0 {
			break
		}
		rd := rc.Degrees()[0]
		if rd < dd {
			break
		}
		if rd > MaxPolyTerms {
			return nil, nil, fmt.Errorf("degree %d: %w", rd, ErrComplexity)
		}
		t := mul(div(rc[rd], lead), pow(x, N(int64(rd-dd))))
		quotient = add(quotient, t)
		next := Expand(SubOf(rem, Expand(mul(t, den))))
		if nc, ok := PolyCoeffs(next, varName); ok && len(nc) > 0 && nc.Degrees()[0] >= rd {
			return nil, nil, fmt.Errorf("leading term of %s did not cancel: %w", rem, ErrStrategyFailed)
		}
		rem = next
	}
	return quotient, rem, nil
}

// ============================================================
// Poly: univariate polynomial with rational coefficients
// ============================================================

// Poly is Σ Coeffs[i]·Var^i with exact rational coefficients.
type Poly struct {
	Var    string
	Coeffs []*big.Rat
}

// NewPoly builds a trimmed polynomial from ascending coefficients.
func NewPoly(varName string, coeffs ...*big.Rat) *Poly {
	cs := make([]*big.Rat, len(coeffs))
	for i, c := range coeffs {
		cs[i] = new(big.Rat).Set(c)
	}
	return (&Poly{Var: varName, Coeffs: cs}).trim()
}

// PolyFrom converts e into a Poly when every coefficient is an exact rational.
func PolyFrom(e Expr, varName string) (*Poly, bool) {
	coeffs, ok := PolyCoeffs(e, varName)
	if !ok {
		return nil, false
	}
	deg := 0
	for d := range coeffs {
		if d > deg {
			deg = d
		}
	}
	if deg > MaxPolyTerms {
		return nil, false
	}
	cs := make([]*big.Rat, deg+1)
	for i := range cs {
		cs[i] = new(big.Rat)
	}
	for d, c := range coeffs {
		n, ok := c.(*Num)
		if !ok || !n.IsReal() || n.approx {
			return nil, false
		}
		cs[d] = n.Rat()
	}
	return (&Poly{Var: varName, Coeffs: cs}).trim(), true
}

func (p *Poly) trim() *Poly {
	i := len(p.Coeffs)
	for i > 0 && p.Coeffs[i-1].Sign() == 0 {
		i--
	}
	p.Coeffs = p.Coeffs[:i]
	return p
}

// Degree is -1 for the zero polynomial.
func (p *Poly) Degree() int { return len(p.Coeffs) - 1 }

func (p *Poly) IsZero() bool { return len(p.Coeffs) == 0 }

// Lead returns the leading coefficient (0 for the zero polynomial).
func (p *Poly) Lead() *big.Rat {
	if p.IsZero() {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.Coeffs[len(p.Coeffs)-1])
}

// Coeff returns the coefficient of Var^i.
func (p *Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.Coeffs) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(p.Coeffs[i])
}

// Expr converts the polynomial back into a canonical node.
func (p *Poly) Expr() Expr {
	groups := make([]*Group, 0, len(p.Coeffs))
	x := S(p.Var)
	for i, c := range p.Coeffs {
		if c.Sign() == 0 {
			continue
		}
		coeff := numFromRat(c)
		switch i {
		case 0:
			groups = append(groups, &Group{coeff: coeff})
		case 1:
			groups = append(groups, &Group{coeff: coeff, factors: []Expr{x}})
		default:
			groups = append(groups, &Group{coeff: coeff, factors: []Expr{&Pow{base: x, exp: N(int64(i))}}})
		}
	}
	return sumOf(groups)
}

// EvalRat evaluates p at r exactly (Horner).
func (p *Poly) EvalRat(r *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		acc.Mul(acc, r)
		acc.Add(acc, p.Coeffs[i])
	}
	return acc
}

// EvalFloat evaluates p at x (Horner).
func (p *Poly) EvalFloat(x float64) float64 {
	acc := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		c, _ := p.Coeffs[i].Float64()
		acc = acc*x + c
	}
	return acc
}

// Derivative returns dp/dVar.
func (p *Poly) Derivative() *Poly {
	if len(p.Coeffs) <= 1 {
		return &Poly{Var: p.Var}
	}
	out := make([]*big.Rat, len(p.Coeffs)-1)
	for i := 1; i < len(p.Coeffs); i++ {
		out[i-1] = new(big.Rat).Mul(p.Coeffs[i], big.NewRat(int64(i), 1))
	}
	return (&Poly{Var: p.Var, Coeffs: out}).trim()
}

// DivMod is polynomial long division.
func (p *Poly) DivMod(d *Poly) (*Poly, *Poly, error) {
	if d.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	if p.Degree() > MaxPolyTerms || d.Degree() > MaxPolyTerms {
		return nil, nil, fmt.Errorf("polynomial division of degree %d: %w", p.Degree(), ErrComplexity)
	}
	rem := make([]*big.Rat, len(p.Coeffs))
	for i, c := range p.Coeffs {
		rem[i] = new(big.Rat).Set(c)
	}
	dd := d.Degree()
	if p.Degree() < dd {
		return &Poly{Var: p.Var}, (&Poly{Var: p.Var, Coeffs: rem}).trim(), nil
	}
	q := make([]*big.Rat, p.Degree()-dd+1)
	for i := range q {
		q[i] = new(big.Rat)
	}
	lead := d.Coeffs[dd]
	for k := p.Degree() - dd; k >= 0; k-- {
		c := new(big.Rat).Quo(rem[k+dd], lead)
		q[k] = c
		if c.Sign() == 0 {
			continue
		}
		for j := 0; j <= dd; j++ {
			rem[k+j].Sub(rem[k+j], new(big.Rat).Mul(c, d.Coeffs[j]))
		}
	}
	return (&Poly{Var: p.Var, Coeffs: q}).trim(), (&Poly{Var: p.Var, Coeffs: rem}).trim(), nil
}

// integerCoeffs scales p to integer coefficients.
func (p *Poly) integerCoeffs() []*big.Int {
	lcm := big.NewInt(1)
	for _, c := range p.Coeffs {
		d := c.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(p.Coeffs))
	for i, c := range p.Coeffs {
		v := new(big.Rat).Mul(c, new(big.Rat).SetInt(lcm))
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

// RationalRoots returns the distinct rational roots in ascending order
// using the rational root theorem. Searches stop at MaxDivisorSearch
// divisors per coefficient.
func (p *Poly) RationalRoots() []*big.Rat {
	if p.Degree() < 1 {
		return nil
	}
	cur := p
	var roots []*big.Rat
	if p.Coeffs[0].Sign() == 0 {
		roots = append(roots, new(big.Rat))
		for cur.Degree() > 0 && cur.Coeffs[0].Sign() == 0 {
			cur = &Poly{Var: cur.Var, Coeffs: cur.Coeffs[1:]}
		}
	}
	if cur.Degree() < 1 {
		return roots
	}
	ints := cur.integerCoeffs()
	c0, cn := ints[0], ints[len(ints)-1]
	if !c0.IsInt64() || !cn.IsInt64() {
		return roots
	}
	seen := map[string]bool{}
	for _, num := range divisors(c0.Int64(), MaxDivisorSearch) {
		for _, den := range divisors(cn.Int64(), MaxDivisorSearch) {
			for _, sign := range []int64{1, -1} {
				r := big.NewRat(sign*num, den)
				key := r.RatString()
				if seen[key] {
					continue
				}
				seen[key] = true
				if cur.EvalRat(r).Sign() == 0 {
					roots = append(roots, r)
				}
			}
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Cmp(roots[j]) < 0 })
	return roots
}

// Multiplicity counts how many times (Var - r) divides p.
func (p *Poly) Multiplicity(r *big.Rat) int {
	count := 0
	cur := p
	factor := NewPoly(p.Var, new(big.Rat).Neg(r), big.NewRat(1, 1))
	for cur.Degree() >= 1 && cur.EvalRat(r).Sign() == 0 {
		q, _, err := cur.DivMod(factor)
		if err != nil {
			break
		}
		cur = q
		count++
	}
	return count
}

// Deflate divides out (Var - r) as many times as it divides p.
func (p *Poly) Deflate(r *big.Rat) *Poly {
	cur := p
	factor := NewPoly(p.Var, new(big.Rat).Neg(r), big.NewRat(1, 1))
	for cur.Degree() >= 1 && cur.EvalRat(r).Sign() == 0 {
		q, _, err := cur.DivMod(factor)
		if err != nil {
			break
		}
		cur = q
	}
	return cur
}
