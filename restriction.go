package gosolve

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// ============================================================
// Restriction: solution sets and domains over the reals
// ============================================================

// Kind classifies a Restriction.
type Kind int

const (
	// KindNone is the empty set.
	KindNone Kind = iota
	// KindAll is every real number.
	KindAll
	// KindNot is every real number except finitely many points.
	KindNot
	// KindAnd is a single interval or point.
	KindAnd
	// KindOr is a union of several intervals.
	KindOr
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAll:
		return "all"
	case KindNot:
		return "not"
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	}
	return "unknown"
}

// CompoundMode selects how Compound joins two restrictions.
type CompoundMode int

const (
	CompoundAnd CompoundMode = iota
	CompoundOr
)

// Interval is one connected piece of a Restriction. A nil Lo or Hi is
// unbounded on that side.
type Interval struct {
	Lo, Hi       Expr
	LoInc, HiInc bool
	lo, hi       float64
}

func (iv Interval) isPoint() bool {
	return iv.Lo != nil && iv.Hi != nil && approxEqual(iv.lo, iv.hi)
}

// Periodic excludes Offset + Period·n for every integer n.
type Periodic struct {
	Offset, Period Expr
	offset, period float64
}

func (p Periodic) hits(x float64) bool {
	k := (x - p.offset) / p.period
	return approxEqual(k, math.Round(k))
}

func (p Periodic) same(o Periodic) bool {
	return approxEqual(p.period, o.period) && p.hits(o.offset)
}

func (p Periodic) format(v string) string {
	return v + " != " + AddOf(p.Offset, MulOf(p.Period, S("n"))).String()
}

// Restriction is a normalized union of disjoint, ordered intervals with
// exact endpoint expressions, minus optional periodic point families. The
// zero value is the empty set.
type Restriction struct {
	Var       string
	intervals []Interval
	periodic  []Periodic
}

// endpoint evaluates an endpoint expression to a real number.
func endpoint(e Expr) (float64, error) {
	f, ok := EvalFloat(e, "", 0)
	if !ok {
		return 0, fmt.Errorf("endpoint %s: %w", e, ErrNonReal)
	}
	return f, nil
}

// AllNumbers is ℝ.
func AllNumbers() Restriction {
	return Restriction{intervals: []Interval{{lo: math.Inf(-1), hi: math.Inf(1)}}}
}

// NoNumbers is the empty set.
func NoNumbers() Restriction { return Restriction{} }

// Not is every real number except the given values.
func Not(values ...Expr) (Restriction, error) {
	r := AllNumbers()
	for _, v := range values {
		p, err := Point(v)
		if err != nil {
			return Restriction{}, err
		}
		r = r.Intersect(p.Complement())
	}
	return r, nil
}

// NotPeriodic is every real number except offset + period·n.
func NotPeriodic(offset, period Expr) (Restriction, error) {
	o, err := endpoint(offset)
	if err != nil {
		return Restriction{}, err
	}
	p, err := endpoint(period)
	if err != nil {
		return Restriction{}, err
	}
	if p == 0 {
		return Not(offset)
	}
	r := AllNumbers()
	r.periodic = []Periodic{{Offset: offset, Period: period, offset: o, period: math.Abs(p)}}
	return r, nil
}

// Range is the interval between lo and hi. A nil bound is unbounded.
func Range(lo Expr, loInc bool, hi Expr, hiInc bool) (Restriction, error) {
	iv := Interval{Lo: lo, Hi: hi, LoInc: loInc && lo != nil, HiInc: hiInc && hi != nil, lo: math.Inf(-1), hi: math.Inf(1)}
	if lo != nil {
		f, err := endpoint(lo)
		if err != nil {
			return Restriction{}, err
		}
		iv.lo = f
	}
	if hi != nil {
		f, err := endpoint(hi)
		if err != nil {
			return Restriction{}, err
		}
		iv.hi = f
	}
	return normalize("", []Interval{iv}), nil
}

// Above is x > v, or x >= v when inclusive.
func Above(v Expr, inclusive bool) (Restriction, error) { return Range(v, inclusive, nil, false) }

// Below is x < v, or x <= v when inclusive.
func Below(v Expr, inclusive bool) (Restriction, error) { return Range(nil, false, v, inclusive) }

// Point is the single value v.
func Point(v Expr) (Restriction, error) { return Range(v, true, v, true) }

// WithVar returns r labelled with a variable name for display.
func (r Restriction) WithVar(v string) Restriction {
	r.Var = v
	return r
}

// Intervals returns the pieces of r in ascending order.
func (r Restriction) Intervals() []Interval {
	out := make([]Interval, len(r.intervals))
	copy(out, r.intervals)
	return out
}

// Periodic returns the periodic exclusions of r.
func (r Restriction) Periodic() []Periodic {
	out := make([]Periodic, len(r.periodic))
	copy(out, r.periodic)
	return out
}

// IsEmpty reports whether r permits nothing.
func (r Restriction) IsEmpty() bool { return len(r.intervals) == 0 }

// Kind classifies r.
func (r Restriction) Kind() Kind {
	switch {
	case len(r.intervals) == 0:
		return KindNone
	case len(r.intervals) == 1:
		iv := r.intervals[0]
		if iv.Lo == nil && iv.Hi == nil {
			if len(r.periodic) > 0 {
				return KindNot
			}
			return KindAll
		}
		return KindAnd
	}
	if r.Excluded() != nil {
		return KindNot
	}
	return KindOr
}

// Excluded returns the removed points when r is ℝ minus finitely many
// points, and nil otherwise.
func (r Restriction) Excluded() []Expr {
	n := len(r.intervals)
	if n < 2 || r.intervals[0].Lo != nil || r.intervals[n-1].Hi != nil {
		return nil
	}
	var out []Expr
	for i := 0; i+1 < n; i++ {
		a, b := r.intervals[i], r.intervals[i+1]
		if a.HiInc || b.LoInc || a.Hi == nil || b.Lo == nil || !approxEqual(a.hi, b.lo) {
			return nil
		}
		out = append(out, a.Hi)
	}
	return out
}

// PermitsFloat reports whether x lies in r.
func (r Restriction) PermitsFloat(x float64) bool {
	for _, p := range r.periodic {
		if p.hits(x) {
			return false
		}
	}
	for _, iv := range r.intervals {
		aboveLo := iv.Lo == nil || x > iv.lo
		if iv.Lo != nil && approxEqual(x, iv.lo) {
			aboveLo = iv.LoInc
		}
		belowHi := iv.Hi == nil || x < iv.hi
		if iv.Hi != nil && approxEqual(x, iv.hi) {
			belowHi = iv.HiInc
		}
		if aboveLo && belowHi {
			return true
		}
	}
	return false
}

// Permits reports whether the value x lies in r. Values that do not
// evaluate to a real number are not permitted.
func (r Restriction) Permits(x Expr) bool {
	f, err := endpoint(x)
	if err != nil {
		return false
	}
	return r.PermitsFloat(f)
}

// Union is the set union.
func (r Restriction) Union(o Restriction) Restriction {
	all := make([]Interval, 0, len(r.intervals)+len(o.intervals))
	all = append(all, r.intervals...)
	all = append(all, o.intervals...)
	out := normalize(pickVar(r, o), all)
	for _, p := range r.periodic {
		for _, q := range o.periodic {
			if p.same(q) {
				out.periodic = append(out.periodic, p)
				break
			}
		}
	}
	return out
}

// Intersect is the set intersection.
func (r Restriction) Intersect(o Restriction) Restriction {
	var out []Interval
	for _, a := range r.intervals {
		for _, b := range o.intervals {
			out = append(out, intersectInterval(a, b))
		}
	}
	res := normalize(pickVar(r, o), out)
	if res.IsEmpty() {
		return res
	}
	res.periodic = append(res.periodic, r.periodic...)
	for _, q := range o.periodic {
		dup := false
		for _, p := range res.periodic {
			if p.same(q) {
				dup = true
				break
			}
		}
		if !dup {
			res.periodic = append(res.periodic, q)
		}
	}
	return res
}

// Complement is ℝ minus r. Periodic exclusions are dropped: the
// complement of a point family is not a finite union of intervals.
func (r Restriction) Complement() Restriction {
	var out []Interval
	prev := Interval{lo: math.Inf(-1), hi: math.Inf(-1)}
	first := true
	for _, iv := range r.intervals {
		gap := Interval{lo: math.Inf(-1), hi: iv.lo, Hi: iv.Lo, HiInc: !iv.LoInc && iv.Lo != nil}
		if !first {
			gap.Lo, gap.lo, gap.LoInc = prev.Hi, prev.hi, !prev.HiInc && prev.Hi != nil
		}
		if iv.Lo != nil && (first || prev.Hi != nil) {
			out = append(out, gap)
		}
		prev = iv
		first = false
	}
	switch {
	case first:
		return AllNumbers().WithVar(r.Var)
	case prev.Hi != nil:
		out = append(out, Interval{Lo: prev.Hi, lo: prev.hi, LoInc: !prev.HiInc, hi: math.Inf(1)})
	}
	return normalize(r.Var, out)
}

// Compound joins two restrictions by intersection (CompoundAnd) or union
// (CompoundOr).
func Compound(a, b Restriction, mode CompoundMode) Restriction {
	if mode == CompoundOr {
		return a.Union(b)
	}
	return a.Intersect(b)
}

// Equal compares two restrictions by value.
func (r Restriction) Equal(o Restriction) bool {
	if len(r.intervals) != len(o.intervals) || len(r.periodic) != len(o.periodic) {
		return false
	}
	for _, p := range r.periodic {
		found := false
		for _, q := range o.periodic {
			if p.same(q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for i := range r.intervals {
		a, b := r.intervals[i], o.intervals[i]
		if (a.Lo == nil) != (b.Lo == nil) || (a.Hi == nil) != (b.Hi == nil) {
			return false
		}
		if a.LoInc != b.LoInc || a.HiInc != b.HiInc {
			return false
		}
		if a.Lo != nil && !approxEqual(a.lo, b.lo) {
			return false
		}
		if a.Hi != nil && !approxEqual(a.hi, b.hi) {
			return false
		}
	}
	return true
}

func (r Restriction) String() string {
	v := r.Var
	if v == "" {
		v = "x"
	}
	switch r.Kind() {
	case KindNone:
		return "no numbers"
	case KindAll:
		return "all numbers"
	case KindNot:
		parts := []string{}
		for _, p := range r.Excluded() {
			parts = append(parts, v+" != "+p.String())
		}
		for _, p := range r.periodic {
			parts = append(parts, p.format(v))
		}
		return strings.Join(parts, " and ")
	}
	parts := make([]string, len(r.intervals))
	for i, iv := range r.intervals {
		parts[i] = iv.format(v)
	}
	out := strings.Join(parts, " or ")
	for _, p := range r.periodic {
		out += " and " + p.format(v)
	}
	return out
}

func (iv Interval) format(v string) string {
	op := func(inc bool) string {
		if inc {
			return "<="
		}
		return "<"
	}
	switch {
	case iv.isPoint():
		return v + " = " + iv.Lo.String()
	case iv.Lo == nil && iv.Hi == nil:
		return "all numbers"
	case iv.Lo == nil:
		return v + " " + op(iv.HiInc) + " " + iv.Hi.String()
	case iv.Hi == nil:
		gt := ">"
		if iv.LoInc {
			gt = ">="
		}
		return v + " " + gt + " " + iv.Lo.String()
	}
	return iv.Lo.String() + " " + op(iv.LoInc) + " " + v + " " + op(iv.HiInc) + " " + iv.Hi.String()
}

func pickVar(a, b Restriction) string {
	if a.Var != "" {
		return a.Var
	}
	return b.Var
}

// preferEndpoint chooses between two numerically equal endpoint
// expressions independently of argument order.
func preferEndpoint(a, b Expr) Expr {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	as, bs := a.String(), b.String()
	if len(as) != len(bs) {
		if len(as) < len(bs) {
			return a
		}
		return b
	}
	if as <= bs {
		return a
	}
	return b
}

func intersectInterval(a, b Interval) Interval {
	out := Interval{}
	switch {
	case a.Lo == nil && b.Lo == nil:
		out.lo = math.Inf(-1)
	case a.Lo != nil && b.Lo != nil && approxEqual(a.lo, b.lo):
		out.Lo, out.lo, out.LoInc = preferEndpoint(a.Lo, b.Lo), a.lo, a.LoInc && b.LoInc
	case b.Lo == nil || (a.Lo != nil && a.lo > b.lo):
		out.Lo, out.lo, out.LoInc = a.Lo, a.lo, a.LoInc
	default:
		out.Lo, out.lo, out.LoInc = b.Lo, b.lo, b.LoInc
	}
	switch {
	case a.Hi == nil && b.Hi == nil:
		out.hi = math.Inf(1)
	case a.Hi != nil && b.Hi != nil && approxEqual(a.hi, b.hi):
		out.Hi, out.hi, out.HiInc = preferEndpoint(a.Hi, b.Hi), a.hi, a.HiInc && b.HiInc
	case b.Hi == nil || (a.Hi != nil && a.hi < b.hi):
		out.Hi, out.hi, out.HiInc = a.Hi, a.hi, a.HiInc
	default:
		out.Hi, out.hi, out.HiInc = b.Hi, b.hi, b.HiInc
	}
	return out
}

func emptyInterval(iv Interval) bool {
	if iv.Lo == nil || iv.Hi == nil {
		return false
	}
	if approxEqual(iv.lo, iv.hi) {
		return !(iv.LoInc && iv.HiInc)
	}
	return iv.lo > iv.hi
}

// normalize drops empty pieces, sorts, and merges overlapping or touching
// intervals.
func normalize(v string, ivs []Interval) Restriction {
	kept := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Lo == nil {
			iv.lo, iv.LoInc = math.Inf(-1), false
		}
		if iv.Hi == nil {
			iv.hi, iv.HiInc = math.Inf(1), false
		}
		if !emptyInterval(iv) {
			kept = append(kept, iv)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Lo == nil || b.Lo == nil {
			return a.Lo == nil && b.Lo != nil
		}
		if !approxEqual(a.lo, b.lo) {
			return a.lo < b.lo
		}
		return a.LoInc && !b.LoInc
	})
	var out []Interval
	for _, iv := range kept {
		if len(out) == 0 {
			out = append(out, iv)
			continue
		}
		cur := &out[len(out)-1]
		touching := cur.Hi == nil || iv.Lo == nil ||
			iv.lo < cur.hi && !approxEqual(iv.lo, cur.hi) ||
			approxEqual(iv.lo, cur.hi) && (cur.HiInc || iv.LoInc)
		if !touching {
			out = append(out, iv)
			continue
		}
		if cur.Lo != nil && iv.Lo != nil && approxEqual(cur.lo, iv.lo) {
			cur.LoInc = cur.LoInc || iv.LoInc
			cur.Lo = preferEndpoint(cur.Lo, iv.Lo)
		}
		switch {
		case cur.Hi == nil:
		case iv.Hi == nil:
			cur.Hi, cur.hi, cur.HiInc = nil, math.Inf(1), false
		case approxEqual(iv.hi, cur.hi):
			cur.HiInc = cur.HiInc || iv.HiInc
			cur.Hi = preferEndpoint(cur.Hi, iv.Hi)
		case iv.hi > cur.hi:
			cur.Hi, cur.hi, cur.HiInc = iv.Hi, iv.hi, iv.HiInc
		}
	}
	return Restriction{Var: v, intervals: out}
}
