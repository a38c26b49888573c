package gosolve

import (
	"math"
	"math/cmplx"
)

// ============================================================
// Func: named function applications
// ============================================================

// Function kinds understood by the kernel.
const (
	FnSin  = "sin"
	FnCos  = "cos"
	FnTan  = "tan"
	FnCsc  = "csc"
	FnSec  = "sec"
	FnCot  = "cot"
	FnAsin = "asin"
	FnAcos = "acos"
	FnAtan = "atan"
	FnAcsc = "acsc"
	FnAsec = "asec"
	FnAcot = "acot"
	FnAbs  = "abs"
)

var knownFuncs = map[string]bool{
	FnSin: true, FnCos: true, FnTan: true, FnCsc: true, FnSec: true, FnCot: true,
	FnAsin: true, FnAcos: true, FnAtan: true, FnAcsc: true, FnAsec: true, FnAcot: true,
	FnAbs: true,
}

// IsKnownFunc reports whether name is a supported function kind.
func IsKnownFunc(name string) bool { return knownFuncs[name] }

func isTrigName(name string) bool {
	switch name {
	case FnSin, FnCos, FnTan, FnCsc, FnSec, FnCot:
		return true
	}
	return false
}

func isInverseTrigName(name string) bool {
	switch name {
	case FnAsin, FnAcos, FnAtan, FnAcsc, FnAsec, FnAcot:
		return true
	}
	return false
}

type Func struct {
	name string
	arg  Expr
}

// FuncOf applies a named function. Unknown names produce Undefined.
func FuncOf(name string, arg Expr) Expr {
	if !knownFuncs[name] {
		return Undef()
	}
	return applyFunc(name, unwrap(arg))
}

func Sin(arg Expr) Expr  { return FuncOf(FnSin, arg) }
func Cos(arg Expr) Expr  { return FuncOf(FnCos, arg) }
func Tan(arg Expr) Expr  { return FuncOf(FnTan, arg) }
func Csc(arg Expr) Expr  { return FuncOf(FnCsc, arg) }
func Sec(arg Expr) Expr  { return FuncOf(FnSec, arg) }
func Cot(arg Expr) Expr  { return FuncOf(FnCot, arg) }
func Asin(arg Expr) Expr { return FuncOf(FnAsin, arg) }
func Acos(arg Expr) Expr { return FuncOf(FnAcos, arg) }
func Atan(arg Expr) Expr { return FuncOf(FnAtan, arg) }
func Acsc(arg Expr) Expr { return FuncOf(FnAcsc, arg) }
func Asec(arg Expr) Expr { return FuncOf(FnAsec, arg) }
func Acot(arg Expr) Expr { return FuncOf(FnAcot, arg) }
func Abs(arg Expr) Expr  { return FuncOf(FnAbs, arg) }

func (f *Func) Name() string     { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
func (f *Func) exprType() string { return "func" }
func (f *Func) sortKey() string  { return "4:" + f.name + "(" + f.arg.sortKey() + ")" }
func (f *Func) String() string   { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) LaTeX() string {
	switch f.name {
	case FnSin, FnCos, FnTan, FnCsc, FnSec, FnCot:
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case FnAsin:
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case FnAcos:
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case FnAtan:
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case FnAbs:
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return FuncOf(f.name, f.arg.Sub(varName, value))
}

func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	if dn, ok := du.(*Num); ok && dn.IsZero() {
		return N(0)
	}
	u := f.arg
	oneMinusSq := SubOf(N(1), PowOf(u, N(2)))
	var outer Expr
	switch f.name {
	case FnSin:
		outer = Cos(u)
	case FnCos:
		outer = Neg(Sin(u))
	case FnTan:
		outer = PowOf(Sec(u), N(2))
	case FnCsc:
		outer = Neg(MulOf(Csc(u), Cot(u)))
	case FnSec:
		outer = MulOf(Sec(u), Tan(u))
	case FnCot:
		outer = Neg(PowOf(Csc(u), N(2)))
	case FnAsin:
		outer = PowOf(oneMinusSq, F(-1, 2))
	case FnAcos:
		outer = Neg(PowOf(oneMinusSq, F(-1, 2)))
	case FnAtan:
		outer = Recip(AddOf(N(1), PowOf(u, N(2))))
	case FnAcot:
		outer = Neg(Recip(AddOf(N(1), PowOf(u, N(2)))))
	case FnAsec:
		outer = Recip(MulOf(Abs(u), Sqrt(SubOf(PowOf(u, N(2)), N(1)))))
	case FnAcsc:
		outer = Neg(Recip(MulOf(Abs(u), Sqrt(SubOf(PowOf(u, N(2)), N(1))))))
	case FnAbs:
		outer = DivOf(u, Abs(u))
	default:
		return Undef()
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	r := evalFunc(f.name, n)
	return r, r != nil
}

// evalFunc evaluates a function kind at a number. Real inputs outside the
// real domain yield nil.
func evalFunc(name string, n *Num) *Num {
	if name == FnAbs {
		if n.IsReal() {
			return numAbs(n)
		}
		return approxNum(NFloat(cmplx.Abs(n.Complex128())))
	}
	if !n.IsReal() {
		return nil
	}
	v := n.Float64()
	var r float64
	switch name {
	case FnSin:
		r = math.Sin(v)
	case FnCos:
		r = math.Cos(v)
	case FnTan:
		r = math.Tan(v)
	case FnCsc:
		r = 1 / math.Sin(v)
	case FnSec:
		r = 1 / math.Cos(v)
	case FnCot:
		r = math.Cos(v) / math.Sin(v)
	case FnAsin:
		r = math.Asin(v)
	case FnAcos:
		r = math.Acos(v)
	case FnAtan:
		r = math.Atan(v)
	case FnAcsc:
		r = math.Asin(1 / v)
	case FnAsec:
		r = math.Acos(1 / v)
	case FnAcot:
		if v == 0 {
			r = math.Pi / 2
		} else {
			r = math.Atan(1 / v)
			if v < 0 {
				r += math.Pi
			}
		}
	default:
		return nil
	}
	if math.IsNaN(r) || math.IsInf(r, 0) || math.Abs(r) > 1e15 {
		return nil
	}
	return approxNum(NFloat(r))
}

// ============================================================
// Function rules
// ============================================================

func applyFunc(name string, arg Expr) Expr {
	switch arg.(type) {
	case *Undefined, *Matrix:
		return Undef()
	}
	if n, ok := arg.(*Num); ok && n.approx {
		if r := evalFunc(name, n); r != nil {
			return r
		}
		return Undef()
	}
	if name == FnAbs {
		return absOf(arg)
	}
	if isTrigName(name) {
		return trigOf(name, arg)
	}
	return inverseTrigOf(name, arg)
}

func trigOf(name string, arg Expr) Expr {
	if t, ok := piTwelfths(arg); ok {
		if v, ok := trigAtTwelfths(name, t); ok {
			return v
		}
	}
	if inner, ok := arg.(*Func); ok && inner.name == "a"+name {
		return inner.arg
	}
	if isNegativeExpr(arg) {
		pos := Neg(arg)
		switch name {
		case FnCos, FnSec:
			return trigOf(name, pos)
		default:
			return Neg(trigOf(name, pos))
		}
	}
	return &Func{name: name, arg: arg}
}

func inverseTrigOf(name string, arg Expr) Expr {
	if v, ok := arg.Eval(); ok && v.IsReal() {
		x := v.Float64()
		switch name {
		case FnAsin, FnAcos:
			if math.Abs(x) > 1+1e-12 {
				return Undef()
			}
		case FnAsec, FnAcsc:
			if math.Abs(x) < 1-1e-12 {
				return Undef()
			}
		}
	}
	switch name {
	case FnAsin:
		if r, ok := matchTwelfths(FnSin, arg, -6, 6); ok {
			return r
		}
	case FnAcos:
		if r, ok := matchTwelfths(FnCos, arg, 0, 12); ok {
			return r
		}
	case FnAtan:
		if r, ok := matchTwelfths(FnTan, arg, -5, 5); ok {
			return r
		}
	case FnAcsc, FnAsec:
		base := FnAsin
		if name == FnAsec {
			base = FnAcos
		}
		if r := inverseTrigOf(base, Recip(arg)); !isInverseTrigExpr(r) {
			return r
		}
	case FnAcot:
		if n, ok := arg.(*Num); ok && n.IsZero() {
			return MulOf(F(1, 2), Pi())
		}
		if r, ok := matchTwelfths(FnCot, arg, 1, 11); ok {
			return r
		}
	}
	if isNegativeExpr(arg) {
		switch name {
		case FnAsin, FnAtan, FnAcsc:
			return Neg(inverseTrigOf(name, Neg(arg)))
		}
	}
	return &Func{name: name, arg: arg}
}

func isInverseTrigExpr(e Expr) bool {
	switch v := e.(type) {
	case *Func:
		return isInverseTrigName(v.name)
	case *Term:
		if !v.IsSum() {
			for _, f := range v.groups[0].factors {
				if isInverseTrigExpr(f) {
					return true
				}
			}
		}
	case *Undefined:
		return true
	}
	return false
}

// piTwelfths recognizes arg = t·π/12 for integer t and returns t mod 24.
func piTwelfths(arg Expr) (int64, bool) {
	var c *Num
	switch v := arg.(type) {
	case *Num:
		if !v.IsZero() {
			return 0, false
		}
		return 0, true
	case *Sym:
		if v.name != "pi" {
			return 0, false
		}
		c = N(1)
	case *Term:
		if v.IsSum() || len(v.groups[0].factors) != 1 || !v.groups[0].factors[0].Equal(Pi()) {
			return 0, false
		}
		c = v.groups[0].coeff
	default:
		return 0, false
	}
	t := numMul(c, N(12))
	k, ok := t.Int64()
	if !ok || c.approx {
		return 0, false
	}
	k %= 24
	if k < 0 {
		k += 24
	}
	return k, true
}

// sinTwelfths returns sin(t·π/12) for the standard angles.
func sinTwelfths(t int64) (Expr, bool) {
	t = ((t % 24) + 24) % 24
	if t >= 12 {
		v, ok := sinTwelfths(t - 12)
		if !ok {
			return nil, false
		}
		return Neg(v), true
	}
	switch t {
	case 0:
		return N(0), true
	case 2, 10:
		return F(1, 2), true
	case 3, 9:
		return MulOf(F(1, 2), Sqrt(N(2))), true
	case 4, 8:
		return MulOf(F(1, 2), Sqrt(N(3))), true
	case 6:
		return N(1), true
	}
	return nil, false
}

func trigAtTwelfths(name string, t int64) (Expr, bool) {
	s, sok := sinTwelfths(t)
	c, cok := sinTwelfths(t + 6)
	if !sok || !cok {
		return nil, false
	}
	switch name {
	case FnSin:
		return s, true
	case FnCos:
		return c, true
	case FnTan:
		return DivOf(s, c), true
	case FnCsc:
		return DivOf(N(1), s), true
	case FnSec:
		return DivOf(N(1), c), true
	case FnCot:
		return DivOf(c, s), true
	}
	return nil, false
}

// matchTwelfths finds t in [lo, hi] with fn(t·π/12) == arg.
func matchTwelfths(fn string, arg Expr, lo, hi int64) (Expr, bool) {
	for t := lo; t <= hi; t++ {
		v, ok := trigAtTwelfths(fn, t)
		if !ok || IsUndefined(v) {
			continue
		}
		if v.Equal(arg) {
			return MulOf(F(t, 12), Pi()), true
		}
	}
	return nil, false
}

// ============================================================
// Absolute value
// ============================================================

func absOf(arg Expr) Expr {
	switch v := arg.(type) {
	case *Num:
		if v.IsReal() {
			return numAbs(v)
		}
		sq := numAdd(numMul(v.Real(), v.Real()), numMul(v.Imag(), v.Imag()))
		return PowOf(sq, F(1, 2))
	case *Func:
		if v.name == FnAbs {
			return v
		}
	case *Pow:
		if en, ok := v.exp.(*Num); ok && en.IsInteger() {
			if k, _ := en.Int64(); k%2 == 0 {
				return v
			}
		}
		if v.RootIndex()%2 == 0 {
			return v
		}
	case *Sym:
		if v.IsConstant() {
			return v
		}
	case *Term:
		if !v.IsSum() {
			g := v.groups[0]
			c := g.coeff
			if c.IsReal() && !c.IsOne() {
				return MulOf(numAbs(c), absOf(groupExpr(N(1), g.factors)))
			}
		}
	}
	if len(FreeSymbols(arg)) == 0 {
		if n, ok := arg.Eval(); ok && n.IsReal() {
			if n.IsNegative() {
				return Neg(arg)
			}
			return arg
		}
	}
	if t, ok := arg.(*Term); ok && t.IsSum() && t.groups[0].coeff.IsNegative() {
		return &Func{name: FnAbs, arg: Neg(arg)}
	}
	return &Func{name: FnAbs, arg: arg}
}

// ============================================================
// Log: logarithm with explicit base
// ============================================================

// Log is log_base(arg); the natural logarithm uses base e.
type Log struct{ arg, base Expr }

// LogOf builds log_base(arg).
func LogOf(arg, base Expr) Expr { return applyLog(unwrap(arg), unwrap(base)) }

// Ln is the natural logarithm.
func Ln(arg Expr) Expr { return LogOf(arg, E()) }

// Log10 is the common logarithm.
func Log10(arg Expr) Expr { return LogOf(arg, N(10)) }

func (l *Log) Arg() Expr        { return l.arg }
func (l *Log) Base() Expr       { return l.base }
func (l *Log) IsNatural() bool  { return l.base.Equal(E()) }
func (l *Log) exprType() string { return "log" }
func (l *Log) sortKey() string  { return "3:log(" + l.base.sortKey() + "," + l.arg.sortKey() + ")" }

func (l *Log) Equal(other Expr) bool {
	o, ok := other.(*Log)
	return ok && l.arg.Equal(o.arg) && l.base.Equal(o.base)
}

func (l *Log) String() string {
	switch {
	case l.IsNatural():
		return "ln(" + l.arg.String() + ")"
	case l.base.Equal(N(10)):
		return "log(" + l.arg.String() + ")"
	}
	b := l.base.String()
	if needsParens(l.base) {
		b = "(" + b + ")"
	}
	return "log_" + b + "(" + l.arg.String() + ")"
}

func (l *Log) LaTeX() string {
	switch {
	case l.IsNatural():
		return "\\ln\\left(" + l.arg.LaTeX() + "\\right)"
	case l.base.Equal(N(10)):
		return "\\log\\left(" + l.arg.LaTeX() + "\\right)"
	}
	return "\\log_{" + l.base.LaTeX() + "}\\left(" + l.arg.LaTeX() + "\\right)"
}

func (l *Log) Sub(varName string, value Expr) Expr {
	return LogOf(l.arg.Sub(varName, value), l.base.Sub(varName, value))
}

func (l *Log) Diff(varName string) Expr {
	if Contains(l.base, varName) {
		return DivOf(Ln(l.arg), Ln(l.base)).Diff(varName)
	}
	du := l.arg.Diff(varName)
	if dn, ok := du.(*Num); ok && dn.IsZero() {
		return N(0)
	}
	den := l.arg
	if !l.IsNatural() {
		den = MulOf(l.arg, Ln(l.base))
	}
	return DivOf(du, den)
}

func (l *Log) Eval() (*Num, bool) {
	a, ok1 := l.arg.Eval()
	b, ok2 := l.base.Eval()
	if !ok1 || !ok2 || !a.IsReal() || !b.IsReal() {
		return nil, false
	}
	af, bf := a.Float64(), b.Float64()
	if af <= 0 || bf <= 0 || bf == 1 {
		return nil, false
	}
	r := approxNum(NFloat(math.Log(af) / math.Log(bf)))
	return r, r != nil
}

func (l *Log) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "log", "arg": l.arg.toJSON(), "base": l.base.toJSON()}
}

func applyLog(arg, base Expr) Expr {
	if IsUndefined(arg) || IsUndefined(base) {
		return Undef()
	}
	if _, ok := arg.(*Matrix); ok {
		return Undef()
	}
	if bn, ok := base.(*Num); ok {
		if !bn.IsReal() || !bn.IsPositive() || bn.IsOne() {
			return Undef()
		}
	}
	if an, ok := arg.(*Num); ok {
		if !an.IsReal() || !an.IsPositive() {
			return Undef()
		}
		if an.IsOne() {
			return N(0)
		}
		if an.approx {
			if bv, ok := base.Eval(); ok && bv.IsReal() && bv.IsPositive() && !bv.IsOne() {
				return approxNum(NFloat(math.Log(an.Float64()) / math.Log(bv.Float64())))
			}
		}
		if bn, ok := base.(*Num); ok {
			if k, ok := exactLog(an, bn); ok {
				return k
			}
		}
	}
	if arg.Equal(base) {
		return N(1)
	}
	if p, ok := arg.(*Pow); ok && p.base.Equal(base) {
		return p.exp
	}
	return &Log{arg: arg, base: base}
}

// exactLog finds a rational k with b^k == a for positive exact rationals.
func exactLog(a, b *Num) (*Num, bool) {
	if a.approx || b.approx {
		return nil, false
	}
	est := math.Log(a.Float64()) / math.Log(b.Float64())
	if math.IsNaN(est) || math.IsInf(est, 0) || math.Abs(est) > 256 {
		return nil, false
	}
	for q := int64(1); q <= 6; q++ {
		p := int64(math.Round(est * float64(q)))
		if !approxEqual(float64(p)/float64(q), est) {
			continue
		}
		k := F(p, q)
		if r, ok := numPow(b, k).(*Num); ok && r.Equal(a) {
			return k, true
		}
	}
	return nil, false
}
