package gosolve

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ============================================================
// Inequality solver
// ============================================================

// criticalPoint is a real root of the numerator or a pole.
type criticalPoint struct {
	x    float64
	e    Expr
	mult int
	pole bool
}

// inequality solves left c right. The answer is a Restriction intersected
// with the domain of left - right.
func (s *session) inequality(v string, left Expr, c Comparison, right Expr) SolveResult {
	if err := s.enter(); err != nil {
		s.leave()
		return failed(v, err)
	}
	defer s.leave()

	l, r := Simplify(left), Simplify(right)
	if IsUndefined(l) || IsUndefined(r) {
		return failed(v, fmt.Errorf("%s %s %s: %w", l, c, r, ErrUndefined))
	}
	f := Simplify(SubOf(l, r))
	dom, err := s.domain(f, v)
	if err != nil {
		return failed(v, err)
	}

	num, den := NumerDenom(f)
	expr, cmp, forced := f, c, Contains(den, v)
	if !forced {
		dn, ok := HarshSimplify(den).(*Num)
		if !ok || !dn.IsReal() || dn.IsZero() {
			return failed(v, strategyError("sign of %s is unknown", den))
		}
		expr = num
		if dn.IsNegative() {
			cmp = cmp.Flip()
			s.record("multiply by "+den.String()+" and flip", f, num)
		}
	}

	if n, ok := expr.(*Num); ok && n.IsZero() {
		if cmp.Inclusive() {
			return inequalityResult(v, dom)
		}
		return inequalityResult(v, NoNumbers())
	}
	if !Contains(expr, v) {
		y, ok := EvalFloat(expr, "", 0)
		if !ok {
			return failed(v, fmt.Errorf("%s: %w", expr, ErrNonReal))
		}
		if cmp.holds(signOf(y)) {
			return inequalityResult(v, dom)
		}
		return inequalityResult(v, NoNumbers())
	}

	roots, err := s.roots(v, num, N(0))
	if errors.Is(err, errAllSolutions) {
		if cmp.Inclusive() {
			return inequalityResult(v, dom)
		}
		return inequalityResult(v, NoNumbers())
	}
	if err != nil {
		return failed(v, err)
	}
	var poles []Solution
	if forced {
		if poles, err = s.roots(v, den, N(0)); err != nil {
			return failed(v, err)
		}
	}
	points, err := realPoints(roots, poles, forced || len(roots) >= 3)
	if err != nil {
		return failed(v, err)
	}

	sign := func(x float64) (int, bool) {
		y, ok := EvalFloat(expr, v, x)
		if !ok {
			return 0, false
		}
		return signOf(y), true
	}
	set, err := signChart(points, cmp, sign, dom, forced)
	if err != nil {
		return failed(v, err)
	}
	res := inequalityResult(v, set.Intersect(dom))
	return res
}

func inequalityResult(v string, set Restriction) SolveResult {
	res := SolveResult{Status: StatusSolved, Var: v, Strategy: "inequality", Restrictions: []Restriction{set.WithVar(v)}}
	switch set.Kind() {
	case KindNone:
		res.Status = StatusNoSolution
	case KindAll:
		res.Status = StatusAllSolutions
	}
	return res
}

func signOf(y float64) int {
	switch {
	case math.Abs(y) <= 1e-12:
		return 0
	case y > 0:
		return 1
	}
	return -1
}

// realPoints evaluates roots and poles and sorts them. Non-real points are
// dropped unless strict is set, in which case they fail the sign chart. A
// point that is both root and pole is a pole.
func realPoints(roots, poles []Solution, strict bool) ([]criticalPoint, error) {
	var out []criticalPoint
	add := func(sol Solution, pole bool) error {
		if sol.General != nil {
			return strategyError("periodic critical points of %s", sol.Exact)
		}
		n := sol.Approx
		if n == nil {
			h, ok := HarshSimplify(sol.Exact).(*Num)
			if !ok {
				return fmt.Errorf("critical point %s: %w", sol.Exact, ErrNonReal)
			}
			n = h
		}
		if !n.IsReal() {
			if strict {
				return fmt.Errorf("critical point %s: %w", sol.Exact, ErrNonReal)
			}
			return nil
		}
		x := n.Float64()
		for i := range out {
			if approxEqual(out[i].x, x) {
				out[i].pole = out[i].pole || pole
				out[i].mult += sol.Multiplicity
				return nil
			}
		}
		out = append(out, criticalPoint{x: x, e: sol.Exact, mult: sol.Multiplicity, pole: pole})
		return nil
	}
	for _, r := range roots {
		if err := add(r, false); err != nil {
			return nil, err
		}
	}
	for _, p := range poles {
		if err := add(p, true); err != nil {
			return nil, err
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].x < out[j].x })
	return out, nil
}

// signChart builds the solution set from the critical points. One simple
// root, two simple roots and one double root are read off a single test
// point; everything else (and every rational function) samples each
// segment.
func signChart(points []criticalPoint, cmp Comparison, sign func(float64) (int, bool), dom Restriction, forced bool) (Restriction, error) {
	inc := cmp.Inclusive()
	if len(points) == 0 {
		for _, x := range samplePoints(dom) {
			if sg, ok := sign(x); ok {
				if cmp.holds(sg) {
					return AllNumbers(), nil
				}
				return NoNumbers(), nil
			}
		}
		return NoNumbers(), nil
	}
	if !forced {
		total := 0
		for _, p := range points {
			total += p.mult
		}
		switch {
		case len(points) == 1 && total == 1:
			p := points[0]
			if sg, ok := sign(p.x + 1); ok {
				if cmp.holds(sg) {
					return Above(p.e, inc)
				}
				return Below(p.e, inc)
			}
		case len(points) == 2 && total == 2:
			a, b := points[0], points[1]
			if sg, ok := sign((a.x + b.x) / 2); ok {
				if cmp.holds(sg) {
					return Range(a.e, inc, b.e, inc)
				}
				lo, err := Below(a.e, inc)
				if err != nil {
					return Restriction{}, err
				}
				hi, err := Above(b.e, inc)
				if err != nil {
					return Restriction{}, err
				}
				return lo.Union(hi), nil
			}
		case len(points) == 1 && total == 2:
			// Double root: the sign is the same on both sides.
			p := points[0]
			if sg, ok := sign(p.x + 1); ok {
				switch {
				case cmp.holds(sg) && inc:
					return AllNumbers(), nil
				case cmp.holds(sg):
					return Not(p.e)
				case inc:
					return Point(p.e)
				}
				return NoNumbers(), nil
			}
		}
	}

	out := NoNumbers()
	for i := 0; i <= len(points); i++ {
		var lo, hi Expr
		var x float64
		switch {
		case i == 0:
			hi, x = points[0].e, points[0].x-1
		case i == len(points):
			lo, x = points[i-1].e, points[i-1].x+1
		default:
			lo, hi = points[i-1].e, points[i].e
			x = (points[i-1].x + points[i].x) / 2
		}
		if sg, ok := sign(x); ok && cmp.holds(sg) {
			seg, err := Range(lo, false, hi, false)
			if err != nil {
				return Restriction{}, err
			}
			out = out.Union(seg)
		}
	}
	if inc {
		for _, p := range points {
			if p.pole {
				continue
			}
			pt, err := Point(p.e)
			if err != nil {
				return Restriction{}, err
			}
			out = out.Union(pt)
		}
	}
	return out, nil
}

// samplePoints returns test values inside the first piece of r.
func samplePoints(r Restriction) []float64 {
	if r.IsEmpty() {
		return nil
	}
	iv := r.intervals[0]
	var x float64
	switch {
	case iv.Lo == nil && iv.Hi == nil:
		x = 0
	case iv.Lo == nil:
		x = iv.hi - 1
	case iv.Hi == nil:
		x = iv.lo + 1
	default:
		x = (iv.lo + iv.hi) / 2
	}
	return []float64{x, x + 0.377, x - 0.291}
}

// compound solves lo c1 mid c2 hi as the intersection of both halves.
func (s *session) compound(v string, lo Expr, c1 Comparison, mid Expr, c2 Comparison, hi Expr) SolveResult {
	a := s.inequality(v, lo, c1, mid)
	if a.Status == StatusFailed {
		return a
	}
	b := s.inequality(v, mid, c2, hi)
	if b.Status == StatusFailed {
		return b
	}
	set := restrictionOf(a).Intersect(restrictionOf(b))
	if set.IsEmpty() && a.Status != StatusNoSolution && b.Status != StatusNoSolution {
		return failed(v, fmt.Errorf("%s %s %s %s %s: %w", lo, c1, mid, c2, hi, ErrEmptyIntersection))
	}
	return inequalityResult(v, set)
}

func restrictionOf(res SolveResult) Restriction {
	switch {
	case len(res.Restrictions) > 0:
		return res.Restrictions[0]
	case res.Status == StatusAllSolutions:
		return AllNumbers()
	}
	return NoNumbers()
}
