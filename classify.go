package gosolve

import (
	"sort"
)

// ============================================================
// Equation classifier
// ============================================================

// EquationInformation is the read-only shape of an equation that the
// dispatcher uses to pick a strategy. Left holds every group of
// left-right that contains Var; Right holds the negated remainder.
type EquationInformation struct {
	Var   string
	Left  Expr
	Right Expr

	// Powers are the distinct numeric exponents applied to Var, ascending.
	Powers []*Num
	// Functions are the function kinds applied to expressions containing
	// Var ("sin", "abs", "log", ...), sorted.
	Functions []string

	AllFractions      bool
	DenominatorHasVar bool
	OnlyFactors       bool
	ConstantFactor    bool
	HasAbs            bool
	HasLog            bool
	LogBaseHasVar     bool
	HasTrig           bool
	OnlySinusoidal    bool
	PowerOfSinusoidal bool
	Exponential       bool
	IntegerPowers     bool

	// MaxPower is the largest of Powers, nil when Var never appears as a
	// power base.
	MaxPower *Num
	// Degree is the polynomial degree of Left-Right in Var, -1 when it is
	// not a polynomial.
	Degree int
	// Substitution is the recommended sub-expression to replace by a fresh
	// variable, nil when none applies.
	Substitution Expr
}

// HasFunction reports whether name is applied to the variable.
func (info EquationInformation) HasFunction(name string) bool {
	for _, f := range info.Functions {
		if f == name {
			return true
		}
	}
	return false
}

type shapeWalker struct {
	v          string
	powers     []*Num
	funcs      map[string]bool
	trigArgs   []Expr
	outsideTrg bool
	info       *EquationInformation
}

// Classify inspects left = right for the variable v.
func Classify(left, right Expr, v string) EquationInformation {
	f := SubOf(unwrap(left), unwrap(right))
	info := EquationInformation{Var: v, Degree: -1}
	var vGroups, cGroups []*Group
	for _, g := range groupsOf(f) {
		if Contains(g.Expr(), v) {
			vGroups = append(vGroups, g)
		} else {
			cGroups = append(cGroups, g)
		}
	}
	info.Left = sumOf(vGroups)
	info.Right = Neg(sumOf(cGroups))

	w := &shapeWalker{v: v, funcs: map[string]bool{}, info: &info}
	w.walk(info.Left, false)
	sort.Slice(w.powers, func(i, j int) bool { return numCmp(w.powers[i], w.powers[j]) < 0 })
	info.Powers = w.powers
	if len(w.powers) > 0 {
		info.MaxPower = w.powers[len(w.powers)-1]
	}
	for name := range w.funcs {
		info.Functions = append(info.Functions, name)
	}
	sort.Strings(info.Functions)

	info.AllFractions = len(groupsOf(f)) > 0
	for _, g := range groupsOf(f) {
		hasDen := false
		for _, fac := range g.factors {
			if p, ok := fac.(*Pow); ok {
				if en, ok := p.exp.(*Num); ok && en.IsNegative() {
					hasDen = true
					if Contains(p.base, v) {
						info.DenominatorHasVar = true
					}
				}
			}
		}
		if !hasDen && !g.coeff.re.IsInt() {
			hasDen = true
		}
		if !hasDen {
			info.AllFractions = false
		}
	}

	if t, ok := info.Left.(*Term); ok && !t.IsSum() {
		g := t.groups[0]
		withVar := 0
		var varFactor Expr
		constPart := !g.coeff.IsOne()
		for _, fac := range g.factors {
			if Contains(fac, v) {
				withVar++
				varFactor = fac
			} else {
				constPart = true
			}
		}
		rightZero := false
		if n, ok := info.Right.(*Num); ok && n.IsZero() {
			rightZero = true
		}
		info.OnlyFactors = rightZero && withVar >= 2
		if withVar == 1 && constPart {
			b, _ := splitPow(varFactor)
			if s, ok := b.(*Sym); !ok || s.name != v {
				info.ConstantFactor = true
			}
		}
	}

	info.OnlySinusoidal = info.HasTrig && !w.outsideTrg && !info.PowerOfSinusoidal &&
		len(info.Functions) > 0 && sameArgs(w.trigArgs)
	for _, name := range info.Functions {
		if !isTrigName(name) {
			info.OnlySinusoidal = false
		}
	}

	info.Degree = Degree(f, v)
	info.IntegerPowers = info.Degree >= 0
	for _, p := range info.Powers {
		if !p.IsInteger() || !p.IsPositive() {
			info.IntegerPowers = false
		}
	}
	info.Substitution = findSubstitution(f, v, info)
	return info
}

func sameArgs(args []Expr) bool {
	for i := 1; i < len(args); i++ {
		if !args[i].Equal(args[0]) {
			return false
		}
	}
	return true
}

func (w *shapeWalker) addPower(e *Num) {
	for _, p := range w.powers {
		if p.Equal(e) {
			return
		}
	}
	w.powers = append(w.powers, e)
}

func (w *shapeWalker) walk(e Expr, inTrig bool) {
	if !Contains(e, w.v) {
		return
	}
	switch n := e.(type) {
	case *Sym:
		w.addPower(N(1))
		if !inTrig {
			w.outsideTrg = true
		}
	case *Term:
		for _, g := range n.groups {
			for _, f := range g.factors {
				w.walk(f, inTrig)
			}
		}
	case *Pow:
		if s, ok := n.base.(*Sym); ok && s.name == w.v {
			if en, ok := n.exp.(*Num); ok {
				w.addPower(en)
				if !inTrig {
					w.outsideTrg = true
				}
				return
			}
		}
		if Contains(n.exp, w.v) {
			w.info.Exponential = true
			w.funcs["pow"] = true
		}
		if fn, ok := n.base.(*Func); ok && isTrigName(fn.name) && Contains(fn.arg, w.v) {
			w.info.PowerOfSinusoidal = true
		}
		w.walk(n.base, inTrig)
		w.walk(n.exp, inTrig)
	case *Func:
		w.funcs[n.name] = true
		switch {
		case n.name == FnAbs:
			w.info.HasAbs = true
		case isTrigName(n.name):
			w.info.HasTrig = true
			w.trigArgs = append(w.trigArgs, n.arg)
			w.walk(n.arg, true)
			return
		}
		if !inTrig {
			w.outsideTrg = true
		}
		w.walk(n.arg, inTrig)
	case *Log:
		w.funcs["log"] = true
		w.info.HasLog = true
		if Contains(n.base, w.v) {
			w.info.LogBaseHasVar = true
		}
		if !inTrig {
			w.outsideTrg = true
		}
		w.walk(n.arg, inTrig)
		w.walk(n.base, inTrig)
	case *Matrix:
		w.outsideTrg = true
	}
}

// ============================================================
// Substitution detection
// ============================================================

// substitutionPlaceholder stands in for the fresh variable while a
// candidate is checked; the solver replaces it with an unused name.
const substitutionPlaceholder = "__u"

// findSubstitution recommends a sub-expression s such that f, written in
// terms of u = s, no longer contains v and is a polynomial of degree ≥ 2
// in u: powers of v sharing a common factor (x⁴−5x²+4, x^(2/3)−x^(1/3)),
// exponentials whose exponents are integer multiples of one another
// (e^(2x)−3e^x+2) and functions or logarithms that repeat as powers
// (sin²x−sin x).
func findSubstitution(f Expr, v string, info EquationInformation) Expr {
	var candidates []Expr
	if len(info.Powers) >= 2 && !info.Exponential {
		g := info.Powers[0]
		ok := true
		for _, p := range info.Powers {
			if !p.IsPositive() {
				ok = false
				break
			}
			g = ratGCF(g, p)
		}
		if ok && !g.IsOne() {
			candidates = append(candidates, pow(S(v), g))
		}
	}
	candidates = append(candidates, exponentialCandidates(f, v)...)
	candidates = append(candidates, repeatedNodes(f, v)...)
	u := S(substitutionPlaceholder)
	for _, s := range candidates {
		if s.Equal(S(v)) {
			continue
		}
		r := ReplaceSub(f, s, u)
		if Contains(r, v) {
			continue
		}
		if d := Degree(r, substitutionPlaceholder); d >= 2 {
			return s
		}
	}
	return nil
}

// exponentialCandidates returns base^e0 for every base whose exponents
// containing v are all integer multiples of e0.
func exponentialCandidates(f Expr, v string) []Expr {
	byBase := map[string][]*Pow{}
	var order []string
	var visit func(Expr)
	visit = func(e Expr) {
		switch n := e.(type) {
		case *Pow:
			if Contains(n.exp, v) && !Contains(n.base, v) {
				k := n.base.sortKey()
				if _, seen := byBase[k]; !seen {
					order = append(order, k)
				}
				byBase[k] = append(byBase[k], n)
			}
			visit(n.base)
			visit(n.exp)
		case *Term:
			for _, g := range n.groups {
				for _, fac := range g.factors {
					visit(fac)
				}
			}
		case *Func:
			visit(n.arg)
		case *Log:
			visit(n.arg)
			visit(n.base)
		}
	}
	visit(f)
	var out []Expr
	for _, k := range order {
		ps := byBase[k]
		for _, cand := range ps {
			ok := true
			for _, p := range ps {
				r, isNum := div(p.exp, cand.exp).(*Num)
				if !isNum || !r.IsInteger() || !r.IsPositive() {
					ok = false
					break
				}
			}
			if ok {
				out = append(out, cand)
				break
			}
		}
	}
	return out
}

// repeatedNodes returns the functions and logarithms of v in f.
func repeatedNodes(f Expr, v string) []Expr {
	var out []Expr
	seen := map[string]bool{}
	var visit func(Expr)
	visit = func(e Expr) {
		switch n := e.(type) {
		case *Func, *Log:
			if Contains(n, v) && !seen[n.sortKey()] {
				seen[n.sortKey()] = true
				out = append(out, n)
			}
			if fn, ok := n.(*Func); ok {
				visit(fn.arg)
			}
		case *Pow:
			visit(n.base)
			visit(n.exp)
		case *Term:
			for _, g := range n.groups {
				for _, fac := range g.factors {
					visit(fac)
				}
			}
		}
	}
	visit(f)
	return out
}

// ReplaceSub replaces every occurrence of s in e by u. Powers of the base
// of s whose exponent is a numeric multiple of the exponent of s become
// powers of u.
func ReplaceSub(e, s, u Expr) Expr {
	if e.Equal(s) {
		return u
	}
	sb, se := splitPow(s)
	_, sIsPow := s.(*Pow)
	if sIsPow {
		b, ex := splitPow(e)
		if b.Equal(sb) {
			if r, ok := div(ex, se).(*Num); ok {
				return pow(u, r)
			}
		}
	}
	if p, ok := e.(*Pow); ok && p.base.Equal(s) {
		return pow(u, ReplaceSub(p.exp, s, u))
	}
	return rebuildWith(e, func(c Expr) Expr { return ReplaceSub(c, s, u) })
}
