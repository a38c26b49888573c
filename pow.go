package gosolve

import (
	"math"
	"math/big"
	"math/cmplx"
)

// ============================================================
// Pow: base^exponent
// ============================================================

// Pow covers exponentiation, radicals (exponent with denominator > 1) and
// reciprocals (negative exponent). Build it with PowOf; a literal Pow is
// only canonical when it came out of the power combine.
type Pow struct{ base, exp Expr }

func (p *Pow) Base() Expr     { return p.base }
func (p *Pow) Exponent() Expr { return p.exp }

// IsDenominator reports a negative exponent.
func (p *Pow) IsDenominator() bool { return isNegativeExpr(p.exp) }

// IsRadical reports an exponent whose reduced denominator is greater than 1.
func (p *Pow) IsRadical() bool { return p.RootIndex() > 1 }

// RootIndex returns the denominator of a rational exponent, or 1.
func (p *Pow) RootIndex() int64 {
	en, ok := p.exp.(*Num)
	if !ok || !en.IsReal() || en.approx {
		return 1
	}
	d := en.re.Denom()
	if !d.IsInt64() {
		return 1
	}
	return d.Int64()
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) sortKey() string  { return p.base.sortKey() + "^" + p.exp.sortKey() }

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	if needsParens(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	if en, ok := p.exp.(*Num); ok && en.Equal(F(1, 2)) {
		return "sqrt(" + p.base.String() + ")"
	}
	expStr := p.exp.String()
	if en, ok := p.exp.(*Num); ok {
		if !en.IsInteger() || en.IsNegative() {
			expStr = "(" + expStr + ")"
		}
	} else if _, isSym := p.exp.(*Sym); !isSym {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func needsParens(e Expr) bool {
	switch v := e.(type) {
	case *Term, *Pow:
		return true
	case *Num:
		return v.IsNegative() || !v.IsReal() || !v.IsInteger()
	}
	return false
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && en.IsReal() && !en.approx && en.re.Num().Int64() == 1 && !en.IsInteger() {
		q := en.re.Denom().String()
		if q == "2" {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
		return "\\sqrt[" + q + "]{" + p.base.LaTeX() + "}"
	}
	baseStr := p.base.LaTeX()
	if needsParens(p.base) {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if _, expIsNum := p.exp.(*Num); expIsNum {
		return MulOf(p.exp, PowOf(p.base, SubOf(p.exp, N(1))), du)
	}
	if !Contains(p.base, varName) {
		return MulOf(p, Ln(p.base), dv)
	}
	logTerm := MulOf(dv, Ln(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(p, AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	r := evalPow(b, e)
	return r, r != nil
}

func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}

// evalPow computes b^e numerically. Exact integer powers stay exact; odd
// roots of negative reals take the real branch, other cases the principal
// complex value.
func evalPow(b, e *Num) *Num {
	if k, ok := e.Int64(); ok && !e.approx && !b.approx {
		if b.IsZero() && k < 0 {
			return nil
		}
		return numPowInt(b, k)
	}
	if b.IsZero() {
		if e.IsPositive() {
			return N(0)
		}
		return nil
	}
	if b.IsReal() && e.IsReal() {
		bf, ef := b.Float64(), e.Float64()
		if bf > 0 {
			return approxNum(NFloat(math.Pow(bf, ef)))
		}
		if !e.approx {
			q := e.re.Denom()
			if q.IsInt64() && q.Int64()%2 == 1 {
				mag := math.Pow(-bf, ef)
				if new(big.Int).And(e.re.Num(), big.NewInt(1)).Sign() != 0 {
					mag = -mag
				}
				return approxNum(NFloat(mag))
			}
		}
	}
	return numFromComplex(cmplx.Pow(b.Complex128(), e.Complex128()))
}

func approxNum(n *Num) *Num {
	if n == nil {
		return nil
	}
	n.approx = true
	return n
}

// isNegativeExpr reports a negative number or a product with a negative
// coefficient.
func isNegativeExpr(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Term:
		return !v.IsSum() && v.groups[0].coeff.IsNegative()
	}
	return false
}

// splitPow returns base and exponent of a factor; non-powers have exponent 1.
func splitPow(e Expr) (Expr, Expr) {
	if p, ok := e.(*Pow); ok {
		return p.base, p.exp
	}
	return e, N(1)
}

// Sqrt is PowOf(arg, 1/2).
func Sqrt(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

// Root is the q-th root of arg.
func Root(arg Expr, q int64) Expr { return PowOf(arg, F(1, q)) }

// Recip is PowOf(arg, -1).
func Recip(arg Expr) Expr { return PowOf(arg, N(-1)) }
