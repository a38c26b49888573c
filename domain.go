package gosolve

import (
	"errors"
	"fmt"
)

// ============================================================
// Domain extraction
// ============================================================

// domain intersects the restrictions of every node of e: logarithm
// arguments (and variable bases) positive, even-root radicands
// non-negative, denominators non-zero, inverse sine and cosine inputs in
// [-1, 1], inverse secant and cosecant inputs outside (-1, 1), and the
// poles of tan, sec, csc and cot when their argument is linear.
func (s *session) domain(e Expr, v string) (Restriction, error) {
	if IsUndefined(e) {
		return NoNumbers(), nil
	}
	out := AllNumbers()
	var walk func(Expr) error
	walk = func(e Expr) error {
		if err := s.cancelled(); err != nil {
			return err
		}
		if !Contains(e, v) {
			return nil
		}
		var r Restriction
		var err error
		switch n := e.(type) {
		case *Term:
			for _, g := range n.groups {
				for _, f := range g.factors {
					if err := walk(f); err != nil {
						return err
					}
				}
			}
			return nil
		case *Pow:
			if err := walk(n.base); err != nil {
				return err
			}
			if err := walk(n.exp); err != nil {
				return err
			}
			if !Contains(n.base, v) {
				return nil
			}
			r, err = s.powDomain(n, v)
		case *Log:
			if err := walk(n.arg); err != nil {
				return err
			}
			if err := walk(n.base); err != nil {
				return err
			}
			r, err = s.positive(v, n.arg)
			if err == nil && Contains(n.base, v) {
				var b, one Restriction
				if b, err = s.positive(v, n.base); err == nil {
					if one, err = s.nonzero(v, SubOf(n.base, N(1))); err == nil {
						r = r.Intersect(b).Intersect(one)
					}
				}
			}
		case *Func:
			if err := walk(n.arg); err != nil {
				return err
			}
			r, err = s.funcDomain(n, v)
		default:
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrDomain, e, err)
		}
		out = out.Intersect(r)
		return nil
	}
	if err := walk(unwrap(e)); err != nil {
		return Restriction{}, err
	}
	return out.WithVar(v), nil
}

func (s *session) powDomain(p *Pow, v string) (Restriction, error) {
	en, ok := p.exp.(*Num)
	if !ok {
		if Contains(p.exp, v) {
			return s.positive(v, p.base)
		}
		return AllNumbers(), nil
	}
	evenRoot := en.IsReal() && en.re.Denom().Bit(0) == 0
	switch {
	case evenRoot && en.IsNegative():
		return s.positive(v, p.base)
	case evenRoot:
		return s.sub(v, p.base, CmpGe, N(0))
	case en.IsNegative():
		return s.nonzero(v, p.base)
	}
	return AllNumbers(), nil
}

func (s *session) funcDomain(f *Func, v string) (Restriction, error) {
	switch f.name {
	case FnAsin, FnAcos:
		res := s.compound(v, N(-1), CmpLe, f.arg, CmpLe, N(1))
		if res.Status == StatusFailed {
			return Restriction{}, res.Err
		}
		return restrictionOf(res), nil
	case FnAsec, FnAcsc:
		lo, err := s.sub(v, f.arg, CmpLe, N(-1))
		if err != nil {
			return Restriction{}, err
		}
		hi, err := s.sub(v, f.arg, CmpGe, N(1))
		if err != nil {
			return Restriction{}, err
		}
		return lo.Union(hi), nil
	case FnTan, FnSec, FnCsc, FnCot:
		if Degree(f.arg, v) != 1 {
			return AllNumbers(), nil
		}
		if f.name == FnTan || f.name == FnSec {
			return s.nonzero(v, Cos(f.arg))
		}
		return s.nonzero(v, Sin(f.arg))
	}
	return AllNumbers(), nil
}

func (s *session) positive(v string, e Expr) (Restriction, error) {
	return s.sub(v, e, CmpGt, N(0))
}

// sub solves e c rhs as a nested inequality.
func (s *session) sub(v string, e Expr, c Comparison, rhs Expr) (Restriction, error) {
	res := s.inequality(v, e, c, rhs)
	if res.Status == StatusFailed {
		return Restriction{}, res.Err
	}
	return restrictionOf(res), nil
}

// nonzero excludes the real roots of e = 0. Periodic roots become
// periodic exclusions.
func (s *session) nonzero(v string, e Expr) (Restriction, error) {
	sols, err := s.roots(v, e, N(0))
	if errors.Is(err, errAllSolutions) {
		return NoNumbers(), nil
	}
	if err != nil {
		return Restriction{}, err
	}
	out := AllNumbers()
	for _, sol := range sols {
		var r Restriction
		if sol.General != nil {
			coeffs, ok := PolyCoeffs(sol.General, s.iteration())
			if !ok || coeffs[1] == nil {
				return Restriction{}, fmt.Errorf("period of %s: %w", sol.General, ErrNonReal)
			}
			r, err = NotPeriodic(sol.Exact, coeffs[1])
		} else {
			if sol.Approx != nil && !sol.Approx.IsReal() {
				continue
			}
			r, err = Not(sol.Exact)
		}
		if err != nil {
			return Restriction{}, err
		}
		out = out.Intersect(r)
	}
	return out, nil
}
