package gosolve

import "math/big"

// ============================================================
// Combination operators
// ============================================================

// Op names a binary combination.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpPow
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	}
	return "?"
}

// Complexity caps for the combine layer. Work beyond them is declined and
// the operands stay in factored form.
const (
	// MaxDistributeGroups bounds the number of group products produced when
	// two sums are multiplied out.
	MaxDistributeGroups = 256
	// MaxBinomialExponent bounds integer powers of sums that are expanded.
	MaxBinomialExponent = 16
	// maxProductPasses bounds the rewrite passes of a single product.
	maxProductPasses = 12
)

// Combine applies op to a and b and returns a canonical node. It never
// fails; mathematically undefined results are *Undefined.
func Combine(op Op, a, b Expr) Expr {
	a, b = unwrap(a), unwrap(b)
	switch op {
	case OpAdd:
		return add(a, b)
	case OpSub:
		return add(a, mul(N(-1), b))
	case OpMul:
		return mul(a, b)
	case OpDiv:
		return div(a, b)
	case OpPow:
		return pow(a, b)
	}
	return Undef()
}

// AddOf sums its arguments.
func AddOf(terms ...Expr) Expr {
	if len(terms) == 0 {
		return N(0)
	}
	acc := unwrap(terms[0])
	for _, t := range terms[1:] {
		acc = add(acc, unwrap(t))
	}
	return acc
}

// MulOf multiplies its arguments.
func MulOf(factors ...Expr) Expr {
	var acc Expr = N(1)
	for _, f := range factors {
		acc = mul(acc, unwrap(f))
	}
	return acc
}

func SubOf(a, b Expr) Expr { return Combine(OpSub, a, b) }
func DivOf(a, b Expr) Expr { return Combine(OpDiv, a, b) }
func PowOf(b, e Expr) Expr { return Combine(OpPow, b, e) }
func Neg(a Expr) Expr      { return mul(N(-1), unwrap(a)) }

func anyUndefined(es ...Expr) bool {
	for _, e := range es {
		if IsUndefined(e) {
			return true
		}
	}
	return false
}

// ============================================================
// Add
// ============================================================

func add(a, b Expr) Expr {
	if anyUndefined(a, b) {
		return Undef()
	}
	ma, aIsMat := a.(*Matrix)
	mb, bIsMat := b.(*Matrix)
	if aIsMat || bIsMat {
		if aIsMat && bIsMat {
			return ma.add(mb)
		}
		return Undef()
	}
	an, aIsNum := a.(*Num)
	bn, bIsNum := b.(*Num)
	switch {
	case aIsNum && bIsNum:
		return numAdd(an, bn)
	case aIsNum && an.IsZero():
		return b
	case bIsNum && bn.IsZero():
		return a
	}
	ga, gb := groupsOf(a), groupsOf(b)
	all := make([]*Group, 0, len(ga)+len(gb))
	all = append(all, ga...)
	all = append(all, gb...)
	return sumOf(all)
}

// ============================================================
// Mul
// ============================================================

func mul(a, b Expr) Expr {
	if anyUndefined(a, b) {
		return Undef()
	}
	ma, aIsMat := a.(*Matrix)
	mb, bIsMat := b.(*Matrix)
	switch {
	case aIsMat && bIsMat:
		return ma.mul(mb)
	case aIsMat:
		return ma.scale(b)
	case bIsMat:
		return mb.scale(a)
	}
	an, aIsNum := a.(*Num)
	bn, bIsNum := b.(*Num)
	switch {
	case aIsNum && bIsNum:
		return numMul(an, bn)
	case aIsNum && an.IsZero(), bIsNum && bn.IsZero():
		return N(0)
	case aIsNum && an.IsOne():
		return b
	case bIsNum && bn.IsOne():
		return a
	}
	aSum, bSum := IsSum(a), IsSum(b)
	switch {
	case aSum && bSum:
		return mulSums(a.(*Term), b.(*Term))
	case aSum:
		return mulSumBy(a.(*Term), b)
	case bSum:
		return mulSumBy(b.(*Term), a)
	}
	if aIsNum {
		g := asGroup(b)
		return groupExpr(numMul(an, g.coeff), g.factors)
	}
	if bIsNum {
		g := asGroup(a)
		return groupExpr(numMul(bn, g.coeff), g.factors)
	}
	ga, gb := asGroup(a), asGroup(b)
	factors := make([]Expr, 0, len(ga.factors)+len(gb.factors))
	factors = append(factors, ga.factors...)
	factors = append(factors, gb.factors...)
	return buildProduct(numMul(ga.coeff, gb.coeff), factors, true)
}

// mulSumBy multiplies the sum s by the non-sum x. Monomials distribute;
// fractions over a sum keep s as a factor so that common factors cancel.
func mulSumBy(s *Term, x Expr) Expr {
	if xn, ok := x.(*Num); ok {
		return scaleSum(s, xn)
	}
	if !hasSumBase(x) || !s.plain() {
		parts := make([]*Group, 0, len(s.groups))
		for _, g := range s.groups {
			parts = append(parts, groupsOf(mul(g.Expr(), x))...)
		}
		return sumOf(parts)
	}
	gx := asGroup(x)
	factors := append(append([]Expr{}, gx.factors...), s)
	return buildProduct(gx.coeff, factors, true)
}

func mulSums(a, b *Term) Expr {
	if a.plain() && b.plain() && len(a.groups)*len(b.groups) > MaxDistributeGroups {
		return buildProduct(N(1), []Expr{a, b}, false)
	}
	parts := make([]*Group, 0, len(a.groups)*len(b.groups))
	for _, g := range a.groups {
		parts = append(parts, groupsOf(mul(g.Expr(), b))...)
	}
	return sumOf(parts)
}

// plain reports that no group of t carries a factor whose base is a sum.
func (t *Term) plain() bool {
	for _, g := range t.groups {
		for _, f := range g.factors {
			if b, _ := splitPow(f); IsSum(b) {
				return false
			}
		}
	}
	return true
}

// hasSumBase reports whether the non-sum x has a factor whose base is a sum.
func hasSumBase(x Expr) bool {
	for _, f := range asGroup(x).factors {
		if b, _ := splitPow(f); IsSum(b) {
			return true
		}
	}
	return false
}

// buildProduct canonicalizes coeff × factors: numbers fold into the
// coefficient, sum factors give up their content, equal bases merge their
// exponents, numeric radicals with a shared exponent combine, and sum
// factors cancel against divisible sum denominators. When no fraction over
// a sum remains and distribute is set, the product is multiplied out.
func buildProduct(coeff *Num, factors []Expr, distribute bool) Expr {
	work := append([]Expr{}, factors...)
	for pass := 0; pass < maxProductPasses; pass++ {
		var changed bool
		var ok bool
		coeff, work, ok = flattenFactors(coeff, work)
		if !ok {
			return Undef()
		}
		if coeff.IsZero() {
			return N(0)
		}
		coeff, work, changed = pullSumContent(coeff, work)
		var merged bool
		coeff, work, merged, ok = mergeBases(coeff, work)
		if !ok {
			return Undef()
		}
		changed = changed || merged
		var joined bool
		work, joined = joinNumericRadicals(work)
		changed = changed || joined
		var cancelled bool
		work, cancelled = cancelSumFactors(work)
		changed = changed || cancelled
		if !changed {
			break
		}
	}
	coeff, work, ok := flattenFactors(coeff, work)
	if !ok {
		return Undef()
	}
	if coeff.IsZero() {
		return N(0)
	}
	if distribute && shouldDistribute(work) {
		var mono []Expr
		var sums []Expr
		for _, f := range work {
			if IsSum(f) {
				sums = append(sums, f)
			} else {
				mono = append(mono, f)
			}
		}
		acc := groupExpr(coeff, mono)
		for _, s := range sums {
			acc = mul(acc, s)
		}
		return acc
	}
	return groupExpr(coeff, work)
}

func shouldDistribute(factors []Expr) bool {
	hasSum := false
	for _, f := range factors {
		if IsSum(f) {
			hasSum = true
			continue
		}
		if p, ok := f.(*Pow); ok && IsSum(p.base) {
			return false
		}
	}
	return hasSum
}

// flattenFactors folds numbers into the coefficient and inlines products.
func flattenFactors(coeff *Num, factors []Expr) (*Num, []Expr, bool) {
	out := make([]Expr, 0, len(factors))
	for _, f := range factors {
		switch v := f.(type) {
		case *Undefined:
			return nil, nil, false
		case *Num:
			coeff = numMul(coeff, v)
		case *Term:
			if v.IsSum() {
				out = append(out, v)
				continue
			}
			g := v.groups[0]
			coeff = numMul(coeff, g.coeff)
			out = append(out, g.factors...)
		default:
			out = append(out, f)
		}
	}
	return coeff, out, true
}

// pullSumContent moves the numeric and monomial content of every sum
// factor into the product.
func pullSumContent(coeff *Num, factors []Expr) (*Num, []Expr, bool) {
	changed := false
	out := make([]Expr, 0, len(factors))
	for _, f := range factors {
		t, ok := f.(*Term)
		if !ok || !t.IsSum() {
			out = append(out, f)
			continue
		}
		c, mono, prim := extractContent(t)
		if c.IsOne() && len(mono) == 0 {
			out = append(out, f)
			continue
		}
		changed = true
		coeff = numMul(coeff, c)
		out = append(out, mono...)
		out = append(out, prim)
	}
	return coeff, out, changed
}

type baseExp struct {
	base Expr
	exp  Expr
	n    int
}

// mergeBases adds the exponents of factors with equal bases.
func mergeBases(coeff *Num, factors []Expr) (*Num, []Expr, bool, bool) {
	entries := make([]*baseExp, 0, len(factors))
	changed := false
	for _, f := range factors {
		b, e := splitPow(f)
		found := false
		for _, en := range entries {
			if en.base.Equal(b) {
				en.exp = add(en.exp, e)
				en.n++
				found = true
				changed = true
				break
			}
		}
		if !found {
			entries = append(entries, &baseExp{base: b, exp: e, n: 1})
		}
	}
	if !changed {
		return coeff, factors, false, true
	}
	out := make([]Expr, 0, len(entries))
	for _, en := range entries {
		if en.n == 1 {
			out = append(out, PowOrBase(en.base, en.exp))
			continue
		}
		r := pow(en.base, en.exp)
		if IsUndefined(r) {
			return nil, nil, false, false
		}
		out = append(out, r)
	}
	return coeff, out, true, true
}

// PowOrBase rebuilds a factor from a base and exponent without re-running
// the power combine when the exponent is 1.
func PowOrBase(base, exp Expr) Expr {
	if en, ok := exp.(*Num); ok && en.IsOne() {
		return base
	}
	return &Pow{base: base, exp: exp}
}

// joinNumericRadicals rewrites 2^(1/2)·3^(1/2) as 6^(1/2).
func joinNumericRadicals(factors []Expr) ([]Expr, bool) {
	type bucket struct {
		exp  *Num
		prod *Num
		n    int
	}
	var buckets []*bucket
	var rest []Expr
	for _, f := range factors {
		p, ok := f.(*Pow)
		if !ok {
			rest = append(rest, f)
			continue
		}
		bn, bok := p.base.(*Num)
		en, eok := p.exp.(*Num)
		if !bok || !eok || !bn.IsInteger() || !bn.IsPositive() || en.IsInteger() || en.approx || !en.IsReal() {
			rest = append(rest, f)
			continue
		}
		placed := false
		for _, b := range buckets {
			if b.exp.Equal(en) {
				b.prod = numMul(b.prod, bn)
				b.n++
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, &bucket{exp: en, prod: bn, n: 1})
		}
	}
	changed := false
	out := rest
	for _, b := range buckets {
		if b.n == 1 {
			out = append(out, &Pow{base: b.prod, exp: b.exp})
			continue
		}
		changed = true
		out = append(out, numPow(b.prod, b.exp))
	}
	if !changed {
		return factors, false
	}
	return out, true
}

// cancelSumFactors divides sum numerators by sum denominators when the
// univariate polynomial division is exact.
func cancelSumFactors(factors []Expr) ([]Expr, bool) {
	for i, f := range factors {
		num, ok := f.(*Term)
		if !ok || !num.IsSum() {
			continue
		}
		for j, g := range factors {
			p, ok := g.(*Pow)
			if !ok || !IsSum(p.base) {
				continue
			}
			en, ok := p.exp.(*Num)
			if !ok || !en.IsInteger() || !en.IsNegative() {
				continue
			}
			q, ok := exactPolyQuotient(num, p.base)
			if ok {
				out := append([]Expr{}, factors...)
				out[i] = q
				out[j] = PowOrBase(p.base, numAdd(en, N(1)))
				return dropOnes(out), true
			}
			if en.IsNegOne() {
				if q, ok := exactPolyQuotient(p.base, num); ok {
					out := append([]Expr{}, factors...)
					out[i] = N(1)
					out[j] = pow(q, N(-1))
					return dropOnes(out), true
				}
			}
		}
	}
	return factors, false
}

func dropOnes(fs []Expr) []Expr {
	out := fs[:0]
	for _, f := range fs {
		if n, ok := f.(*Num); ok && n.IsOne() {
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsZero() {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}

// exactPolyQuotient returns a/b when both are polynomials in the same single
// variable and b divides a exactly.
func exactPolyQuotient(a, b Expr) (Expr, bool) {
	vars := FreeSymbols(a)
	for name := range FreeSymbols(b) {
		vars[name] = struct{}{}
	}
	if len(vars) != 1 {
		return nil, false
	}
	var v string
	for name := range vars {
		v = name
	}
	pa, ok := PolyFrom(a, v)
	if !ok {
		return nil, false
	}
	pb, ok := PolyFrom(b, v)
	if !ok || pb.Degree() < 1 || pa.Degree() < pb.Degree() {
		return nil, false
	}
	q, r, err := pa.DivMod(pb)
	if err != nil || !r.IsZero() {
		return nil, false
	}
	return q.Expr(), true
}

// extractContent splits a sum into numeric content, monomial content and a
// primitive sum whose leading coefficient is positive.
func extractContent(t *Term) (*Num, []Expr, Expr) {
	c := numericContent(t)
	mono := monomialContent(t)
	if c.IsOne() && len(mono) == 0 {
		return c, nil, t
	}
	inv := numRecip(c)
	var divisor Expr = inv
	for _, m := range mono {
		divisor = mul(divisor, pow(m, N(-1)))
	}
	parts := make([]*Group, 0, len(t.groups))
	for _, g := range t.groups {
		parts = append(parts, groupsOf(mul(g.Expr(), divisor))...)
	}
	return c, mono, sumOf(parts)
}

func numericContent(t *Term) *Num {
	lead := t.groups[0].coeff
	for _, g := range t.groups {
		if !g.coeff.IsReal() || g.coeff.approx {
			if lead.IsReal() && lead.IsNegative() {
				return N(-1)
			}
			return N(1)
		}
	}
	num := new(big.Int).Set(t.groups[0].coeff.re.Num())
	num.Abs(num)
	den := new(big.Int).Set(t.groups[0].coeff.re.Denom())
	for _, g := range t.groups[1:] {
		n := new(big.Int).Abs(g.coeff.re.Num())
		num.GCD(nil, nil, num, n)
		d := g.coeff.re.Denom()
		gcd := new(big.Int).GCD(nil, nil, den, d)
		den.Mul(den, new(big.Int).Quo(d, gcd))
	}
	c := &Num{re: new(big.Rat).SetFrac(num, den)}
	if lead.IsNegative() {
		c = numNeg(c)
	}
	return c
}

// monomialContent returns base^min(exp) for every base with a positive
// rational exponent present in all groups.
func monomialContent(t *Term) []Expr {
	var out []Expr
	for _, f := range t.groups[0].factors {
		base, e := splitPow(f)
		minExp, ok := e.(*Num)
		if !ok || !minExp.IsReal() || minExp.approx || !minExp.IsPositive() {
			continue
		}
		if IsSum(base) {
			continue
		}
		inAll := true
		for _, g := range t.groups[1:] {
			found := false
			for _, h := range g.factors {
				hb, he := splitPow(h)
				if !hb.Equal(base) {
					continue
				}
				hn, ok := he.(*Num)
				if !ok || !hn.IsReal() || hn.approx || !hn.IsPositive() {
					break
				}
				if numCmp(hn, minExp) < 0 {
					minExp = hn
				}
				found = true
				break
			}
			if !found {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, PowOrBase(base, minExp))
		}
	}
	return out
}

// ============================================================
// Div
// ============================================================

func div(a, b Expr) Expr {
	if anyUndefined(a, b) {
		return Undef()
	}
	bn, bIsNum := b.(*Num)
	if bIsNum && bn.IsZero() {
		return Undef()
	}
	if bIsNum && bn.IsOne() {
		return a
	}
	if an, ok := a.(*Num); ok {
		if bIsNum {
			return numDiv(an, bn)
		}
		if _, bIsMat := b.(*Matrix); an.IsZero() && !bIsMat {
			return N(0)
		}
	}
	if mb, ok := b.(*Matrix); ok {
		inv, err := mb.Inverse()
		if err != nil {
			return Undef()
		}
		return mul(a, inv)
	}
	if _, ok := a.(*Matrix); !ok && a.Equal(b) {
		return N(1)
	}
	return mul(a, pow(b, N(-1)))
}
