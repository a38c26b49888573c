package gosolve

import (
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// Comparisons and equations
// ============================================================

// Comparison is the relation between two sides of an equation.
type Comparison int

const (
	CmpEq Comparison = iota
	CmpLt
	CmpLe
	CmpGt
	CmpGe
)

func (c Comparison) String() string {
	switch c {
	case CmpEq:
		return "="
	case CmpLt:
		return "<"
	case CmpLe:
		return "<="
	case CmpGt:
		return ">"
	case CmpGe:
		return ">="
	}
	return "?"
}

// ParseComparison maps "=", "<", "<=", ">", ">=" (and "==", "≤", "≥").
func ParseComparison(s string) (Comparison, error) {
	switch s {
	case "=", "==":
		return CmpEq, nil
	case "<":
		return CmpLt, nil
	case "<=", "≤":
		return CmpLe, nil
	case ">":
		return CmpGt, nil
	case ">=", "≥":
		return CmpGe, nil
	}
	return CmpEq, fmt.Errorf("comparison %q: %w", s, ErrMalformedInput)
}

// IsInequality reports <, <=, > and >=.
func (c Comparison) IsInequality() bool { return c != CmpEq }

// Inclusive reports whether equality satisfies the comparison.
func (c Comparison) Inclusive() bool { return c == CmpEq || c == CmpLe || c == CmpGe }

// Flip mirrors the comparison, as when both sides are multiplied by a
// negative number.
func (c Comparison) Flip() Comparison {
	switch c {
	case CmpLt:
		return CmpGt
	case CmpLe:
		return CmpGe
	case CmpGt:
		return CmpLt
	case CmpGe:
		return CmpLe
	}
	return c
}

// holds reports whether a value with the given sign satisfies "value c 0".
func (c Comparison) holds(sign int) bool {
	switch c {
	case CmpEq:
		return sign == 0
	case CmpLt:
		return sign < 0
	case CmpLe:
		return sign <= 0
	case CmpGt:
		return sign > 0
	case CmpGe:
		return sign >= 0
	}
	return false
}

// Equation is a chain of sides joined by comparisons: one comparison for
// an equation or inequality, two for a compound inequality a < f < b.
type Equation struct {
	Sides       []Expr
	Comparisons []Comparison
}

// Eq builds lhs = rhs.
func Eq(lhs, rhs Expr) Equation {
	return Equation{Sides: []Expr{lhs, rhs}, Comparisons: []Comparison{CmpEq}}
}

// Ineq builds lhs c rhs.
func Ineq(lhs Expr, c Comparison, rhs Expr) Equation {
	return Equation{Sides: []Expr{lhs, rhs}, Comparisons: []Comparison{c}}
}

// Between builds lo c1 mid c2 hi.
func Between(lo Expr, c1 Comparison, mid Expr, c2 Comparison, hi Expr) Equation {
	return Equation{Sides: []Expr{lo, mid, hi}, Comparisons: []Comparison{c1, c2}}
}

// Validate rejects mismatched sides and comparisons.
func (e Equation) Validate() error {
	if len(e.Sides) < 2 || len(e.Sides) != len(e.Comparisons)+1 {
		return fmt.Errorf("%d sides with %d comparisons: %w", len(e.Sides), len(e.Comparisons), ErrMalformedInput)
	}
	if len(e.Sides) > 3 {
		return fmt.Errorf("chains longer than a compound inequality: %w", ErrMalformedInput)
	}
	for _, s := range e.Sides {
		if s == nil {
			return fmt.Errorf("missing side: %w", ErrMalformedInput)
		}
	}
	if len(e.Comparisons) == 2 {
		for _, c := range e.Comparisons {
			if !c.IsInequality() {
				return fmt.Errorf("compound with %q: %w", c, ErrMalformedInput)
			}
		}
	}
	return nil
}

// Residual returns lhs - rhs for a two-sided equation.
func (e Equation) Residual() Expr {
	if len(e.Sides) != 2 {
		return Undef()
	}
	return SubOf(e.Sides[0], e.Sides[1])
}

func (e Equation) String() string {
	var sb strings.Builder
	for i, s := range e.Sides {
		if i > 0 {
			sb.WriteString(" " + e.Comparisons[i-1].String() + " ")
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// ============================================================
// Results
// ============================================================

// Status is the outcome of a solve.
type Status int

const (
	StatusSolved Status = iota
	StatusNoSolution
	StatusAllSolutions
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSolved:
		return "solved"
	case StatusNoSolution:
		return "no_solution"
	case StatusAllSolutions:
		return "all_solutions"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Solution is one root. General is the periodic family (with an integer
// iteration variable) when the root comes from a trig equation; Approx is
// the numeric value when the root evaluates to a number.
type Solution struct {
	Var          string
	Comparison   Comparison
	Exact        Expr
	General      Expr
	Approx       *Num
	Multiplicity int
}

func (s Solution) String() string {
	out := s.Var + " " + s.Comparison.String() + " " + s.Exact.String()
	if s.General != nil {
		out += " (general: " + s.General.String() + ")"
	}
	if s.Multiplicity > 1 {
		out += fmt.Sprintf(" [multiplicity %d]", s.Multiplicity)
	}
	return out
}

// SolveResult carries the outcome of a solve. Failed results carry Err;
// NoSolution is a valid answer and has no error.
type SolveResult struct {
	Status       Status
	Var          string
	Strategy     string
	Solutions    []Solution
	Restrictions []Restriction
	Err          error
}

// Values returns the exact value of every solution.
func (r SolveResult) Values() []Expr {
	out := make([]Expr, len(r.Solutions))
	for i, s := range r.Solutions {
		out[i] = s.Exact
	}
	return out
}

func (r SolveResult) String() string {
	switch r.Status {
	case StatusFailed:
		if r.Err != nil {
			return "failed: " + r.Err.Error()
		}
		return "failed"
	case StatusNoSolution:
		return "no solution"
	case StatusAllSolutions:
		return "all solutions"
	}
	parts := []string{}
	for _, s := range r.Solutions {
		parts = append(parts, s.String())
	}
	for _, rs := range r.Restrictions {
		parts = append(parts, rs.String())
	}
	return strings.Join(parts, "; ")
}

func failed(v string, err error) SolveResult {
	return SolveResult{Status: StatusFailed, Var: v, Err: err}
}

// newSolution fills in Approx for numeric roots.
func newSolution(v string, exact, general Expr, mult int) Solution {
	s := Solution{Var: v, Comparison: CmpEq, Exact: exact, General: general, Multiplicity: mult}
	if len(FreeSymbols(exact)) == 0 {
		if n, ok := HarshSimplify(exact).(*Num); ok {
			s.Approx = n
		}
	}
	return s
}

// collapseSolutions merges equal roots into multiplicity counts and orders
// real numeric roots ascending ahead of the rest.
func collapseSolutions(sols []Solution) []Solution {
	var out []Solution
	for _, s := range sols {
		merged := false
		for i := range out {
			if sameRoot(out[i], s) {
				out[i].Multiplicity += s.Multiplicity
				if out[i].General == nil {
					out[i].General = s.General
				}
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Approx, out[j].Approx
		ar := a != nil && a.IsReal()
		br := b != nil && b.IsReal()
		switch {
		case ar && br:
			return a.Float64() < b.Float64()
		case ar != br:
			return ar
		}
		return out[i].Exact.String() < out[j].Exact.String()
	})
	return out
}

func sameRoot(a, b Solution) bool {
	if a.Exact.Equal(b.Exact) {
		return true
	}
	if a.Approx != nil && b.Approx != nil {
		return approxEqual(a.Approx.Float64(), b.Approx.Float64()) &&
			approxEqual(a.Approx.ImagFloat64(), b.Approx.ImagFloat64())
	}
	return false
}
