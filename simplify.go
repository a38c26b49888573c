package gosolve

import "math"

// ============================================================
// Simplification passes
// ============================================================

// rebuildWith applies fn to every direct child of e and recombines the
// result through the combine operators.
func rebuildWith(e Expr, fn func(Expr) Expr) Expr {
	switch v := e.(type) {
	case *Term:
		if v.IsSum() {
			terms := make([]Expr, len(v.groups))
			for i, g := range v.groups {
				terms[i] = fn(g.Expr())
			}
			return AddOf(terms...)
		}
		g := v.groups[0]
		parts := make([]Expr, 0, len(g.factors)+1)
		parts = append(parts, g.coeff)
		for _, f := range g.factors {
			parts = append(parts, fn(f))
		}
		return MulOf(parts...)
	case *Pow:
		return PowOf(fn(v.base), fn(v.exp))
	case *Func:
		return FuncOf(v.name, fn(v.arg))
	case *Log:
		return LogOf(fn(v.arg), fn(v.base))
	case *Matrix:
		return v.mapCells(fn)
	}
	return e
}

// rebuild recombines e bottom-up. Trees built by this package are already
// canonical; trees assembled by hand or decoded from JSON may not be.
func rebuild(e Expr) Expr { return rebuildWith(unwrap(e), rebuild) }

// Simplify canonicalizes e and applies the trig identities once.
func Simplify(e Expr) Expr {
	return TrigSimplify(rebuild(e))
}

// DeepSimplify repeats Simplify, log compounding and fraction joining until
// the printed form is stable.
func DeepSimplify(e Expr) Expr {
	prev := ""
	curr := Simplify(e)
	for i := 0; i < 10; i++ {
		str := curr.String()
		if str == prev {
			break
		}
		prev = str
		next := Simplify(CompoundLogs(curr))
		if t := Together(next); len(t.String()) < len(next.String()) {
			next = t
		}
		curr = next
	}
	return curr
}

// HarshSimplify evaluates every symbol-free subtree to an approximate
// number, constants and functions included. Subtrees that have no value
// (for example log(-1)) become Undefined.
func HarshSimplify(e Expr) Expr {
	e = unwrap(e)
	if _, ok := e.(*Matrix); !ok && len(FreeSymbols(e)) == 0 {
		if IsUndefined(e) {
			return e
		}
		n, ok := e.Eval()
		if !ok || n == nil {
			return Undef()
		}
		return n
	}
	return rebuildWith(e, HarshSimplify)
}

// EvalFloat evaluates e with varName bound to x. ok is false when the
// result is undefined or not real.
func EvalFloat(e Expr, varName string, x float64) (float64, bool) {
	v := e
	if varName != "" {
		v = e.Sub(varName, NFloat(x))
	}
	n, ok := HarshSimplify(v).(*Num)
	if !ok || !n.IsReal() {
		if ok && math.Abs(n.ImagFloat64()) < 1e-12 {
			return n.Float64(), true
		}
		return 0, false
	}
	f := n.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
