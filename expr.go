// Package gosolve is a symbolic algebra kernel and equation solver.
//
// Every expression is kept in a single canonical form: the combination
// operators (AddOf, SubOf, MulOf, DivOf, PowOf) rebuild their result on each
// call so that sums are ordered lists of Groups, products carry at most one
// numeric coefficient, and numeric zeros and ones never stay latent.
// On top of that kernel sit factoring, polynomial division, domain
// extraction, an equation classifier, a strategy dispatcher and an
// inequality solver that reports solution sets as Restrictions.
//
// Nodes are immutable once built, so trees are shared freely between
// callers and no operation clones before use.
package gosolve

import (
	"math"
	"sort"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is the closed set of expression nodes: *Num, *Sym, *Undefined,
// *Term, *Pow, *Log, *Func and *Matrix.
type Expr interface {
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	sortKey() string
	toJSON() map[string]interface{}
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym { return &Sym{name: name} }

// E and Pi are the two named constants the kernel understands.
func E() *Sym  { return S("e") }
func Pi() *Sym { return S("pi") }

func isConstantName(name string) bool { return name == "e" || name == "pi" }

func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string {
	if s.name == "pi" {
		return "\\pi"
	}
	return s.name
}
func (s *Sym) Name() string       { return s.name }
func (s *Sym) IsConstant() bool   { return isConstantName(s.name) }
func (s *Sym) exprType() string   { return "sym" }
func (s *Sym) sortKey() string    { return "1:" + s.name }
func (s *Sym) Equal(o Expr) bool  { os, ok := o.(*Sym); return ok && s.name == os.name }
func (s *Sym) Eval() (*Num, bool) { return symValue(s.name) }

func symValue(name string) (*Num, bool) {
	switch name {
	case "e":
		return NFloat(math.E), true
	case "pi":
		return NFloat(math.Pi), true
	}
	return nil, false
}

func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}

func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}

func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Undefined: sentinel for undefined results
// ============================================================

// Undefined propagates through every combination like NaN.
type Undefined struct{}

var undefinedNode = &Undefined{}

func Undef() *Undefined { return undefinedNode }

func (u *Undefined) String() string                 { return "undefined" }
func (u *Undefined) LaTeX() string                  { return "\\text{undefined}" }
func (u *Undefined) Sub(string, Expr) Expr          { return u }
func (u *Undefined) Diff(string) Expr               { return u }
func (u *Undefined) Eval() (*Num, bool)             { return nil, false }
func (u *Undefined) Equal(o Expr) bool              { _, ok := o.(*Undefined); return ok }
func (u *Undefined) exprType() string               { return "undefined" }
func (u *Undefined) sortKey() string                { return "9:undefined" }
func (u *Undefined) toJSON() map[string]interface{} { return map[string]interface{}{"type": "undefined"} }

func IsUndefined(e Expr) bool {
	_, ok := e.(*Undefined)
	return ok
}

// ============================================================
// Free symbols and containment
// ============================================================

// FreeSymbols returns the indeterminates of e; constants e and pi are excluded.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		if !v.IsConstant() {
			out[v.name] = struct{}{}
		}
	case *Term:
		for _, g := range v.groups {
			for _, f := range g.factors {
				collectSymbols(f, out)
			}
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Log:
		collectSymbols(v.arg, out)
		collectSymbols(v.base, out)
	case *Func:
		collectSymbols(v.arg, out)
	case *Matrix:
		for _, row := range v.data {
			for _, cell := range row {
				collectSymbols(cell, out)
			}
		}
	}
}

// SortedSymbols returns FreeSymbols as a sorted slice.
func SortedSymbols(e Expr) []string {
	syms := FreeSymbols(e)
	names := make([]string, 0, len(syms))
	for n := range syms {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Contains reports whether the symbol v occurs anywhere in e.
func Contains(e Expr, v string) bool {
	switch n := e.(type) {
	case *Sym:
		return n.name == v
	case *Term:
		for _, g := range n.groups {
			for _, f := range g.factors {
				if Contains(f, v) {
					return true
				}
			}
		}
	case *Pow:
		return Contains(n.base, v) || Contains(n.exp, v)
	case *Log:
		return Contains(n.arg, v) || Contains(n.base, v)
	case *Func:
		return Contains(n.arg, v)
	case *Matrix:
		for _, row := range n.data {
			for _, cell := range row {
				if Contains(cell, v) {
					return true
				}
			}
		}
	}
	return false
}

// ContainsNode reports whether target occurs as a subtree of e.
func ContainsNode(e, target Expr) bool {
	if e.Equal(target) {
		return true
	}
	switch n := e.(type) {
	case *Term:
		for _, g := range n.groups {
			for _, f := range g.factors {
				if ContainsNode(f, target) {
					return true
				}
			}
		}
	case *Pow:
		return ContainsNode(n.base, target) || ContainsNode(n.exp, target)
	case *Log:
		return ContainsNode(n.arg, target) || ContainsNode(n.base, target)
	case *Func:
		return ContainsNode(n.arg, target)
	}
	return false
}

// ============================================================
// Ordering
// ============================================================

// orderDegree is the polynomial degree used to order groups for display:
// higher degree first, constants last.
func orderDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Num:
		return 0
	case *Sym:
		if v.IsConstant() {
			return 0
		}
		return 1
	case *Pow:
		if en, ok := v.exp.(*Num); ok && en.IsReal() {
			return orderDegree(v.base) * en.Float64()
		}
		return 1
	case *Term:
		if len(v.groups) == 1 {
			total := 0.0
			for _, f := range v.groups[0].factors {
				total += orderDegree(f)
			}
			return total
		}
		best := 0.0
		for _, g := range v.groups {
			if d := g.degree(); d > best {
				best = d
			}
		}
		return best
	case *Undefined:
		return 0
	}
	return 1
}

func sortExprs(es []Expr) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].sortKey() < es[j].sortKey() })
}
