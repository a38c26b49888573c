package gosolve

import (
	"sort"
	"strings"
)

// ============================================================
// Group: one additive summand (coefficient × factors)
// ============================================================

// Group is a product of factors with a single numeric coefficient.
// Factors never contain a *Num and never contain a product Term; they are
// sorted by sortKey so that two groups with the same factors compare equal
// element by element.
type Group struct {
	coeff   *Num
	factors []Expr
}

func newGroup(coeff *Num, factors []Expr) *Group {
	fs := make([]Expr, len(factors))
	copy(fs, factors)
	sortExprs(fs)
	return &Group{coeff: coeff, factors: fs}
}

// Coefficient returns the numeric factor of the group (1 when absent).
func (g *Group) Coefficient() *Num { return g.coeff }

// Factors returns the non-numeric factors.
func (g *Group) Factors() []Expr {
	out := make([]Expr, len(g.factors))
	copy(out, g.factors)
	return out
}

// CompsRelatable reports whether two groups differ only in their
// coefficient, i.e. whether Add may merge them.
func (g *Group) CompsRelatable(o *Group) bool {
	if len(g.factors) != len(o.factors) {
		return false
	}
	for i := range g.factors {
		if !g.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

// Expr converts the group back into a node.
func (g *Group) Expr() Expr { return groupExpr(g.coeff, g.factors) }

func (g *Group) equal(o *Group) bool { return g.coeff.Equal(o.coeff) && g.CompsRelatable(o) }

func (g *Group) factorsKey() string {
	keys := make([]string, len(g.factors))
	for i, f := range g.factors {
		keys[i] = f.sortKey()
	}
	return strings.Join(keys, "*")
}

func (g *Group) key() string { return g.coeff.sortKey() + "*" + g.factorsKey() }

func (g *Group) degree() float64 {
	total := 0.0
	for _, f := range g.factors {
		total += orderDegree(f)
	}
	return total
}

func (g *Group) isConstant() bool { return len(g.factors) == 0 }

// groupExpr builds the canonical node for coeff × factors. A numeric
// coefficient applied to a lone sum is distributed.
func groupExpr(coeff *Num, factors []Expr) Expr {
	if coeff.IsZero() {
		return N(0)
	}
	switch len(factors) {
	case 0:
		return coeff
	case 1:
		if coeff.IsOne() {
			return factors[0]
		}
		if t, ok := factors[0].(*Term); ok && t.IsSum() {
			return scaleSum(t, coeff)
		}
	}
	return &Term{groups: []*Group{newGroup(coeff, factors)}}
}

func scaleSum(t *Term, c *Num) Expr {
	gs := make([]*Group, 0, len(t.groups))
	for _, g := range t.groups {
		gs = append(gs, &Group{coeff: numMul(g.coeff, c), factors: g.factors})
	}
	return sumOf(gs)
}

// ============================================================
// Term: ordered sum of Groups
// ============================================================

// Term is a sum of Groups. A Term with a single group is a product; a
// Term never wraps a lone factor or a lone number.
type Term struct{ groups []*Group }

// Groups returns the additive groups (GetGroupsNoOps).
func (t *Term) Groups() []*Group {
	out := make([]*Group, len(t.groups))
	copy(out, t.groups)
	return out
}

// GroupCount is the number of additive groups.
func (t *Term) GroupCount() int { return len(t.groups) }

// TermCount counts the raw children of the sum including the operator
// markers between groups.
func (t *Term) TermCount() int { return 2*len(t.groups) - 1 }

// IsSum reports whether t has at least two additive groups.
func (t *Term) IsSum() bool { return len(t.groups) > 1 }

func (t *Term) exprType() string {
	if t.IsSum() {
		return "add"
	}
	return "mul"
}

func (t *Term) sortKey() string {
	if !t.IsSum() {
		return t.groups[0].key()
	}
	keys := make([]string, len(t.groups))
	for i, g := range t.groups {
		keys[i] = g.key()
	}
	return "5:(" + strings.Join(keys, "+") + ")"
}

func (t *Term) Equal(other Expr) bool {
	o, ok := other.(*Term)
	if !ok || len(o.groups) != len(t.groups) {
		return false
	}
	for i := range t.groups {
		if !t.groups[i].equal(o.groups[i]) {
			return false
		}
	}
	return true
}

func (t *Term) Sub(varName string, value Expr) Expr {
	terms := make([]Expr, 0, len(t.groups))
	for _, g := range t.groups {
		factors := []Expr{g.coeff}
		for _, f := range g.factors {
			factors = append(factors, f.Sub(varName, value))
		}
		terms = append(terms, MulOf(factors...))
	}
	return AddOf(terms...)
}

func (t *Term) Diff(varName string) Expr {
	if t.IsSum() {
		parts := make([]Expr, len(t.groups))
		for i, g := range t.groups {
			parts[i] = g.Expr().Diff(varName)
		}
		return AddOf(parts...)
	}
	g := t.groups[0]
	parts := make([]Expr, 0, len(g.factors))
	for i, f := range g.factors {
		d := f.Diff(varName)
		if dn, ok := d.(*Num); ok && dn.IsZero() {
			continue
		}
		factors := []Expr{g.coeff, d}
		for j, other := range g.factors {
			if j != i {
				factors = append(factors, other)
			}
		}
		parts = append(parts, MulOf(factors...))
	}
	return AddOf(parts...)
}

func (t *Term) Eval() (*Num, bool) {
	total := N(0)
	for _, g := range t.groups {
		prod := g.coeff
		for _, f := range g.factors {
			v, ok := f.Eval()
			if !ok {
				return nil, false
			}
			prod = numMul(prod, v)
		}
		total = numAdd(total, prod)
	}
	return total, true
}

func (t *Term) toJSON() map[string]interface{} {
	if t.IsSum() {
		terms := make([]interface{}, len(t.groups))
		for i, g := range t.groups {
			terms[i] = g.Expr().toJSON()
		}
		return map[string]interface{}{"type": "add", "terms": terms}
	}
	g := t.groups[0]
	factors := make([]interface{}, 0, len(g.factors)+1)
	if !g.coeff.IsOne() {
		factors = append(factors, g.coeff.toJSON())
	}
	for _, f := range g.factors {
		factors = append(factors, f.toJSON())
	}
	return map[string]interface{}{"type": "mul", "factors": factors}
}

// ============================================================
// Rendering
// ============================================================

func (t *Term) String() string {
	var sb strings.Builder
	for i, g := range t.groups {
		s, neg := groupString(g)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + s)
		case i == 0:
			sb.WriteString(s)
		case neg:
			sb.WriteString(" - " + s)
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

// groupString renders |g| as numerator/denominator and reports the sign.
func groupString(g *Group) (string, bool) {
	c := g.coeff
	neg := false
	if c.IsReal() && c.IsNegative() {
		neg = true
		c = numNeg(c)
	}
	var num, den []string
	if !c.IsReal() {
		num = append(num, "("+c.String()+")")
	} else if c.approx {
		if !c.IsOne() || len(g.factors) == 0 {
			num = append(num, c.String())
		}
	} else {
		r := c.re
		if !r.Num().IsInt64() || r.Num().Int64() != 1 || len(g.factors) == 0 {
			num = append(num, r.Num().String())
		}
		if !r.IsInt() {
			den = append(den, r.Denom().String())
		}
	}
	for _, f := range g.factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				den = append(den, factorString(reciprocalBase(p, en)))
				continue
			}
		}
		num = append(num, factorString(f))
	}
	if len(num) == 0 {
		num = append(num, "1")
	}
	s := strings.Join(num, "*")
	switch len(den) {
	case 0:
	case 1:
		s += "/" + den[0]
	default:
		s += "/(" + strings.Join(den, "*") + ")"
	}
	return s, neg
}

// reciprocalBase renders the denominator part of p = base^en with en < 0.
func reciprocalBase(p *Pow, en *Num) Expr {
	pos := numNeg(en)
	if pos.IsOne() {
		return p.base
	}
	return &Pow{base: p.base, exp: pos}
}

func factorString(f Expr) string {
	if t, ok := f.(*Term); ok && t.IsSum() {
		return "(" + t.String() + ")"
	}
	if n, ok := f.(*Num); ok && (n.IsNegative() || !n.IsReal()) {
		return "(" + n.String() + ")"
	}
	return f.String()
}

func (t *Term) LaTeX() string {
	var sb strings.Builder
	for i, g := range t.groups {
		s, neg := groupLaTeX(g)
		switch {
		case i == 0 && neg:
			sb.WriteString("-" + s)
		case i == 0:
			sb.WriteString(s)
		case neg:
			sb.WriteString(" - " + s)
		default:
			sb.WriteString(" + " + s)
		}
	}
	return sb.String()
}

func groupLaTeX(g *Group) (string, bool) {
	c := g.coeff
	neg := false
	if c.IsReal() && c.IsNegative() {
		neg = true
		c = numNeg(c)
	}
	var num, den []string
	if !c.IsReal() || c.approx {
		if !c.IsOne() || len(g.factors) == 0 {
			num = append(num, c.LaTeX())
		}
	} else {
		r := c.re
		if !r.Num().IsInt64() || r.Num().Int64() != 1 || len(g.factors) == 0 {
			num = append(num, r.Num().String())
		}
		if !r.IsInt() {
			den = append(den, r.Denom().String())
		}
	}
	for _, f := range g.factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				den = append(den, factorLaTeX(reciprocalBase(p, en)))
				continue
			}
		}
		num = append(num, factorLaTeX(f))
	}
	if len(num) == 0 {
		num = append(num, "1")
	}
	s := strings.Join(num, " \\cdot ")
	if len(den) > 0 {
		s = "\\frac{" + s + "}{" + strings.Join(den, " \\cdot ") + "}"
	}
	return s, neg
}

func factorLaTeX(f Expr) string {
	if t, ok := f.(*Term); ok && t.IsSum() {
		return "\\left(" + t.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}

// ============================================================
// Group helpers
// ============================================================

// groupsOf splits e into additive groups. Zero has no groups.
func groupsOf(e Expr) []*Group {
	switch v := e.(type) {
	case *Num:
		if v.IsZero() {
			return nil
		}
		return []*Group{{coeff: v}}
	case *Term:
		return v.groups
	}
	return []*Group{{coeff: N(1), factors: []Expr{e}}}
}

// asGroup views a non-sum node as a single group. A sum becomes one factor.
func asGroup(e Expr) *Group {
	switch v := e.(type) {
	case *Num:
		return &Group{coeff: v}
	case *Term:
		if !v.IsSum() {
			return v.groups[0]
		}
	}
	return &Group{coeff: N(1), factors: []Expr{e}}
}

// IsSum reports whether e is a sum of two or more groups.
func IsSum(e Expr) bool {
	t, ok := e.(*Term)
	return ok && t.IsSum()
}

// IsProduct reports whether e is a single-group Term.
func IsProduct(e Expr) bool {
	t, ok := e.(*Term)
	return ok && !t.IsSum()
}

// GroupsOf exposes the additive groups of any node.
func GroupsOf(e Expr) []*Group {
	gs := groupsOf(e)
	out := make([]*Group, len(gs))
	copy(out, gs)
	return out
}

// FactorsOf returns the coefficient and non-numeric factors of a non-sum
// node. A sum is returned as a single factor.
func FactorsOf(e Expr) (*Num, []Expr) {
	g := asGroup(e)
	return g.coeff, g.Factors()
}

// sumOf merges relatable groups, drops zero coefficients, orders the result
// and unwraps it to the simplest node.
func sumOf(groups []*Group) Expr {
	merged := make([]*Group, 0, len(groups))
	index := map[string]int{}
	for _, g := range groups {
		if g.coeff.IsZero() {
			continue
		}
		k := g.factorsKey()
		if i, ok := index[k]; ok && merged[i].CompsRelatable(g) {
			merged[i] = &Group{coeff: numAdd(merged[i].coeff, g.coeff), factors: merged[i].factors}
			continue
		}
		index[k] = len(merged)
		merged = append(merged, g)
	}
	out := merged[:0]
	for _, g := range merged {
		if !g.coeff.IsZero() {
			out = append(out, g)
		}
	}
	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return groupExpr(out[0].coeff, out[0].factors)
	}
	sortGroups(out)
	return &Term{groups: out}
}

func sortGroups(gs []*Group) {
	sort.SliceStable(gs, func(i, j int) bool {
		a, b := gs[i], gs[j]
		if a.isConstant() != b.isConstant() {
			return b.isConstant()
		}
		da, db := a.degree(), b.degree()
		if da != db {
			return da > db
		}
		return a.factorsKey() < b.factorsKey()
	})
}

// unwrap strips redundant single-child wrappers. Terms built by this package
// are always unwrapped; values decoded from JSON may not be.
func unwrap(e Expr) Expr {
	t, ok := e.(*Term)
	if !ok {
		return e
	}
	if len(t.groups) == 0 {
		return N(0)
	}
	if len(t.groups) == 1 {
		g := t.groups[0]
		if len(g.factors) == 0 {
			return g.coeff
		}
		if len(g.factors) == 1 && g.coeff.IsOne() {
			return unwrap(g.factors[0])
		}
	}
	return e
}
