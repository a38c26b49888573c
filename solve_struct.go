package gosolve

import (
	"fmt"
)

// ============================================================
// Strategy table
// ============================================================

// Strategy is one equation-shape-specific solving method. Match reads only
// the classifier output; the first matching strategy in Strategies() is
// the only one run.
type Strategy struct {
	Name  string
	Match func(EquationInformation) bool
	solve func(*session, EquationInformation) ([]Solution, error)
}

// Strategies returns the strategies in priority order.
func Strategies() []Strategy {
	return []Strategy{
		{Name: "fractional", Match: func(i EquationInformation) bool { return i.DenominatorHasVar }, solve: solveFractional},
		{Name: "factors", Match: func(i EquationInformation) bool { return i.OnlyFactors }, solve: solveFactors},
		{Name: "constant-factor", Match: func(i EquationInformation) bool { return i.ConstantFactor }, solve: solveConstantFactor},
		{Name: "substitution", Match: func(i EquationInformation) bool { return i.Substitution != nil }, solve: solveSubstitution},
		{Name: "absolute-value", Match: func(i EquationInformation) bool { return i.HasAbs }, solve: solveAbsolute},
		{Name: "logarithm", Match: func(i EquationInformation) bool { return i.HasLog && !i.LogBaseHasVar }, solve: solveLogarithm},
		{Name: "sinusoidal", Match: func(i EquationInformation) bool { return i.OnlySinusoidal }, solve: solveSinusoidal},
		{Name: "log-base", Match: func(i EquationInformation) bool { return i.LogBaseHasVar }, solve: solveLogBase},
		{Name: "linear", Match: func(i EquationInformation) bool { return i.Degree == 1 }, solve: solveLinear},
		{Name: "single-power", Match: matchSinglePower, solve: solveSinglePower},
		{Name: "quadratic", Match: func(i EquationInformation) bool { return i.IntegerPowers && i.Degree == 2 }, solve: solveQuadratic},
		{Name: "cubic", Match: func(i EquationInformation) bool { return i.IntegerPowers && i.Degree == 3 }, solve: solveCubic},
		{Name: "polynomial", Match: func(i EquationInformation) bool { return i.IntegerPowers && i.Degree >= 4 }, solve: solvePolynomial},
		{Name: "exponential", Match: func(i EquationInformation) bool { return i.Exponential }, solve: solveExponential},
		{Name: "mixed-power", Match: func(i EquationInformation) bool { return radicalGroup(i.Left, i.Var) >= 0 }, solve: solveMixedPower},
	}
}

func strategyError(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrStrategyFailed)...)
}

// ============================================================
// Structural strategies
// ============================================================

// solveFractional multiplies through by the common denominator and solves
// numerator = 0. Roots of the denominator are dropped.
func solveFractional(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	f := SubOf(info.Left, info.Right)
	num, den := NumerDenom(f)
	s.record("clear denominators", f, num)
	if !Contains(num, v) {
		return nil, nil
	}
	sols, err := s.roots(v, num, N(0))
	if err != nil {
		return nil, err
	}
	var out []Solution
	for _, sol := range sols {
		d := Simplify(den.Sub(v, sol.Exact))
		if n, ok := d.(*Num); IsUndefined(d) || ok && n.IsZero() {
			continue
		}
		out = append(out, sol)
	}
	return out, nil
}

// solveFactors sets each factor containing the variable to zero. A factor
// raised to a positive integer power contributes its exponent as
// multiplicity; factors with negative exponents are never zero.
func solveFactors(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	groups := groupsOf(info.Left)
	if len(groups) != 1 {
		return nil, strategyError("expected a single product")
	}
	var out []Solution
	for _, fac := range groups[0].factors {
		if !Contains(fac, v) {
			continue
		}
		target, mult := fac, 1
		b, e := splitPow(fac)
		if en, ok := e.(*Num); ok && Contains(b, v) {
			if !en.IsPositive() {
				continue
			}
			target = b
			if k, ok := en.Int64(); ok {
				mult = int(k)
			}
		}
		sols, err := s.roots(v, target, N(0))
		if err != nil {
			return nil, fmt.Errorf("factor %s: %w", fac, err)
		}
		for _, sol := range sols {
			sol.Multiplicity *= mult
			out = append(out, sol)
		}
	}
	return out, nil
}

// solveConstantFactor divides both sides by the variable-free part of a
// single-product left side.
func solveConstantFactor(s *session, info EquationInformation) ([]Solution, error) {
	groups := groupsOf(info.Left)
	if len(groups) != 1 {
		return nil, strategyError("expected a single product")
	}
	g := groups[0]
	var varPart Expr
	constParts := []Expr{g.coeff}
	for _, fac := range g.factors {
		if Contains(fac, info.Var) {
			varPart = fac
			continue
		}
		constParts = append(constParts, fac)
	}
	if varPart == nil {
		return nil, strategyError("no variable factor")
	}
	c := MulOf(constParts...)
	right := DivOf(info.Right, c)
	s.record("divide by "+c.String(), SubOf(info.Left, info.Right), SubOf(varPart, right))
	return s.roots(info.Var, varPart, right)
}

// solveSubstitution replaces the recommended sub-expression by a fresh
// variable, solves for it, then solves sub-expression = value for each
// value found.
func solveSubstitution(s *session, info EquationInformation) ([]Solution, error) {
	v, sub := info.Var, info.Substitution
	u := s.allocate(substitutionPool)
	f := SubOf(info.Left, info.Right)
	r := ReplaceSub(f, sub, S(u))
	s.record("substitute "+u+" = "+sub.String(), f, r)
	uSols, err := s.roots(u, r, N(0))
	if err != nil {
		return nil, err
	}
	base, _ := splitPow(sub)
	powerOfVar := false
	if sym, ok := base.(*Sym); ok && sym.name == v {
		powerOfVar = true
	}
	var out []Solution
	for _, us := range uSols {
		if us.Approx != nil && !us.Approx.IsReal() && !powerOfVar {
			continue
		}
		sols, err := s.roots(v, sub, us.Exact)
		if err != nil {
			return nil, fmt.Errorf("back-substitute %s = %s: %w", sub, us.Exact, err)
		}
		for _, sol := range sols {
			sol.Multiplicity *= us.Multiplicity
			out = append(out, sol)
		}
	}
	return out, nil
}

// solveAbsolute splits on the sign of the first absolute value and keeps
// the roots of both cases.
func solveAbsolute(s *session, info EquationInformation) ([]Solution, error) {
	v := info.Var
	a := firstAbs(info.Left, v)
	if a == nil {
		return nil, strategyError("no absolute value of %s", v)
	}
	f := SubOf(info.Left, info.Right)
	pos := ReplaceSub(f, a, a.arg)
	neg := ReplaceSub(f, a, Neg(a.arg))
	s.record("case "+a.arg.String()+" >= 0", f, pos)
	s.record("case "+a.arg.String()+" < 0", f, neg)
	p, err := s.roots(v, pos, N(0))
	if err != nil {
		return nil, fmt.Errorf("case %s >= 0: %w", a.arg, err)
	}
	n, err := s.roots(v, neg, N(0))
	if err != nil {
		return nil, fmt.Errorf("case %s < 0: %w", a.arg, err)
	}
	return unionSolutions(p, n), nil
}

func firstAbs(e Expr, v string) *Func {
	switch n := e.(type) {
	case *Func:
		if n.name == FnAbs && Contains(n.arg, v) {
			return n
		}
		return firstAbs(n.arg, v)
	case *Pow:
		if a := firstAbs(n.base, v); a != nil {
			return a
		}
		return firstAbs(n.exp, v)
	case *Log:
		if a := firstAbs(n.arg, v); a != nil {
			return a
		}
		return firstAbs(n.base, v)
	case *Term:
		for _, g := range n.groups {
			for _, f := range g.factors {
				if a := firstAbs(f, v); a != nil {
					return a
				}
			}
		}
	}
	return nil
}

// unionSolutions joins two root lists, keeping one copy of shared roots.
func unionSolutions(a, b []Solution) []Solution {
	out := append([]Solution(nil), a...)
	for _, s := range b {
		dup := false
		for _, t := range out {
			if sameRoot(s, t) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
