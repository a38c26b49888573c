package gosolve

// ============================================================
// Log identities
// ============================================================

// CompoundLogs merges logarithms with equal bases inside every sum:
// c1·log_b(a1) + c2·log_b(a2) → log_b(a1^c1 · a2^c2).
func CompoundLogs(e Expr) Expr {
	e = rebuildWith(e, CompoundLogs)
	t, ok := e.(*Term)
	if !ok || !t.IsSum() {
		return e
	}
	type bucket struct {
		base Expr
		args []Expr
	}
	var buckets []*bucket
	var rest []*Group
	for _, g := range t.groups {
		l, c, ok := logGroup(g)
		if !ok {
			rest = append(rest, g)
			continue
		}
		placed := false
		for _, b := range buckets {
			if b.base.Equal(l.base) {
				b.args = append(b.args, pow(l.arg, c))
				placed = true
				break
			}
		}
		if !placed {
			buckets = append(buckets, &bucket{base: l.base, args: []Expr{pow(l.arg, c)}})
		}
	}
	terms := make([]Expr, 0, len(rest)+len(buckets))
	for _, g := range rest {
		terms = append(terms, g.Expr())
	}
	for _, b := range buckets {
		terms = append(terms, LogOf(MulOf(b.args...), b.base))
	}
	return AddOf(terms...)
}

// logGroup matches c·log_b(a) with an exact rational c.
func logGroup(g *Group) (*Log, *Num, bool) {
	if len(g.factors) != 1 || !g.coeff.IsReal() || g.coeff.approx {
		return nil, nil, false
	}
	l, ok := g.factors[0].(*Log)
	return l, g.coeff, ok
}

// ExpandLogs splits logarithms of products and powers into sums:
// log_b(c·x^k·y) → log_b(c) + k·log_b(x) + log_b(y). Even integer powers
// keep their sign information as log_b(|x|).
func ExpandLogs(e Expr) Expr {
	e = rebuildWith(e, ExpandLogs)
	l, ok := e.(*Log)
	if !ok {
		if t, ok := e.(*Term); ok && !t.IsSum() {
			g := t.groups[0]
			parts := []Expr{g.coeff}
			changed := false
			for _, f := range g.factors {
				if fl, ok := f.(*Log); ok {
					x := expandLog(fl)
					changed = changed || !x.Equal(fl)
					parts = append(parts, x)
					continue
				}
				parts = append(parts, f)
			}
			if changed {
				return MulOf(parts...)
			}
		}
		return e
	}
	return expandLog(l)
}

func expandLog(l *Log) Expr {
	switch a := l.arg.(type) {
	case *Term:
		if a.IsSum() {
			return l
		}
		g := a.groups[0]
		if !g.coeff.IsPositive() {
			return l
		}
		terms := []Expr{LogOf(g.coeff, l.base)}
		for _, f := range g.factors {
			terms = append(terms, expandLogPow(f, l.base))
		}
		return AddOf(terms...)
	case *Pow:
		return expandLogPow(a, l.base)
	}
	return l
}

func expandLogPow(f, base Expr) Expr {
	p, ok := f.(*Pow)
	if !ok {
		return LogOf(f, base)
	}
	if en, ok := p.exp.(*Num); ok {
		if k, isInt := en.Int64(); isInt && k%2 == 0 && !en.approx {
			return mul(en, LogOf(Abs(p.base), base))
		}
		return mul(en, LogOf(p.base, base))
	}
	if bn, ok := p.base.Eval(); ok && bn.IsPositive() && len(FreeSymbols(p.base)) == 0 {
		return mul(p.exp, LogOf(p.base, base))
	}
	return LogOf(f, base)
}

// CoefficientIntoLog moves a rational coefficient into the argument of a
// lone logarithm when doing so keeps the domain: c·log_b(a) → log_b(a^c)
// for c with an odd numerator.
func CoefficientIntoLog(e Expr) Expr {
	e = rebuildWith(e, CoefficientIntoLog)
	var out []Expr
	changed := false
	for _, g := range groupsOf(e) {
		l, c, ok := logGroup(g)
		if ok && !c.IsOne() && c.re.Num().Bit(0) == 1 {
			out = append(out, LogOf(pow(l.arg, c), l.base))
			changed = true
			continue
		}
		out = append(out, g.Expr())
	}
	if !changed {
		return e
	}
	return AddOf(out...)
}

// ============================================================
// Trig identities
// ============================================================

var reciprocalTrig = map[string]string{FnCsc: FnSin, FnSec: FnCos, FnCot: FnTan}

// CancelReciprocalTrig cancels csc/sin, sec/cos and cot/tan pairs that
// share an argument inside a product.
func CancelReciprocalTrig(e Expr) Expr {
	e = rebuildWith(e, CancelReciprocalTrig)
	t, ok := e.(*Term)
	if !ok || t.IsSum() {
		return e
	}
	g := t.groups[0]
	present := map[string]bool{}
	for _, f := range g.factors {
		if fn, ok := trigBase(f); ok {
			present[fn.name+"|"+fn.arg.sortKey()] = true
		}
	}
	parts := []Expr{g.coeff}
	changed := false
	for _, f := range g.factors {
		fn, ok := trigBase(f)
		if ok {
			if partner, isRecip := reciprocalTrig[fn.name]; isRecip && present[partner+"|"+fn.arg.sortKey()] {
				_, exp := splitPow(f)
				parts = append(parts, pow(FuncOf(partner, fn.arg), Neg(exp)))
				changed = true
				continue
			}
		}
		parts = append(parts, f)
	}
	if !changed {
		return e
	}
	return MulOf(parts...)
}

func trigBase(f Expr) (*Func, bool) {
	b, _ := splitPow(f)
	fn, ok := b.(*Func)
	if !ok || !isTrigName(fn.name) {
		return nil, false
	}
	return fn, true
}

// trigSquare is one sin²/cos²/tan²/sec² factor found in a group together
// with the rest of the group.
type trigSquare struct {
	name string
	arg  Expr
	rest *Group
}

func trigSquares(g *Group) []trigSquare {
	var out []trigSquare
	for i, f := range g.factors {
		p, ok := f.(*Pow)
		if !ok {
			continue
		}
		en, ok := p.exp.(*Num)
		if !ok || !en.Equal(N(2)) {
			continue
		}
		fn, ok := p.base.(*Func)
		if !ok {
			continue
		}
		switch fn.name {
		case FnSin, FnCos, FnTan, FnSec:
		default:
			continue
		}
		rest := make([]Expr, 0, len(g.factors)-1)
		rest = append(rest, g.factors[:i]...)
		rest = append(rest, g.factors[i+1:]...)
		out = append(out, trigSquare{name: fn.name, arg: fn.arg, rest: &Group{coeff: g.coeff, factors: rest}})
	}
	return out
}

// PythagoreanSimplify applies sin²+cos² = 1 and its rearrangements by a
// pairwise search across the groups of every sum:
//
//	R·sin²u + R·cos²u → R
//	R·sec²u − R·tan²u → R
//	R − R·sin²u → R·cos²u,  R − R·cos²u → R·sin²u
func PythagoreanSimplify(e Expr) Expr {
	e = rebuildWith(e, PythagoreanSimplify)
	for {
		t, ok := e.(*Term)
		if !ok || !t.IsSum() {
			return e
		}
		next, ok := pythagoreanStep(t)
		if !ok {
			return e
		}
		e = next
	}
}

func pythagoreanStep(t *Term) (Expr, bool) {
	gs := t.groups
	without := func(i, j int, extra Expr) Expr {
		terms := make([]Expr, 0, len(gs))
		for k, g := range gs {
			if k != i && k != j {
				terms = append(terms, g.Expr())
			}
		}
		return AddOf(append(terms, extra)...)
	}
	for i := range gs {
		for _, a := range trigSquares(gs[i]) {
			for j := range gs {
				if j == i {
					continue
				}
				for _, b := range trigSquares(gs[j]) {
					if !a.arg.Equal(b.arg) || !a.rest.equal(b.rest) {
						continue
					}
					if (a.name == FnSin && b.name == FnCos) || (a.name == FnCos && b.name == FnSin) {
						return without(i, j, a.rest.Expr()), true
					}
				}
				if a.name == FnSec {
					for _, b := range trigSquares(gs[j]) {
						if b.name == FnTan && a.arg.Equal(b.arg) && a.rest.equal(negGroup(b.rest)) {
							return without(i, j, a.rest.Expr()), true
						}
					}
				}
				if a.name == FnSin || a.name == FnCos {
					if negGroup(a.rest).equal(gs[j]) {
						other := FnCos
						if a.name == FnCos {
							other = FnSin
						}
						return without(i, j, mul(gs[j].Expr(), pow(FuncOf(other, a.arg), N(2)))), true
					}
				}
			}
		}
	}
	return nil, false
}

func negGroup(g *Group) *Group { return &Group{coeff: numNeg(g.coeff), factors: g.factors} }

// TrigSimplify cancels reciprocal pairs and applies the Pythagorean identities.
func TrigSimplify(e Expr) Expr {
	return PythagoreanSimplify(CancelReciprocalTrig(e))
}
