package gosolve

import (
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"strconv"
	"strings"
)

// ============================================================
// Num: exact rational scalar with optional imaginary part
// ============================================================

// Num is a numeric leaf. Both parts are exact rationals; approx marks values
// that came out of floating point evaluation and must not be trusted for
// exact comparisons.
type Num struct {
	re     *big.Rat
	im     *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{re: new(big.Rat).SetInt64(n)} }

// F returns the rational p/q. q == 0 yields nil; callers in the kernel use
// Div, which returns Undefined instead.
func F(p, q int64) *Num {
	if q == 0 {
		return nil
	}
	return &Num{re: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat converts a float64. Integral values stay exact.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	r := new(big.Rat)
	r.SetFloat64(f)
	return &Num{re: r, approx: f != math.Trunc(f)}
}

// Complex builds re + im*i from two real numbers.
func Complex(re, im *Num) *Num {
	return newNum(re.re, im.re, re.approx || im.approx)
}

// I is the imaginary unit.
func I() *Num { return newNum(new(big.Rat), big.NewRat(1, 1), false) }

func numFromRat(r *big.Rat) *Num { return &Num{re: new(big.Rat).Set(r)} }

func newNum(re, im *big.Rat, approx bool) *Num {
	n := &Num{re: new(big.Rat).Set(re), approx: approx}
	if im != nil && im.Sign() != 0 {
		n.im = new(big.Rat).Set(im)
	}
	return n
}

func numFromComplex(c complex128) *Num {
	re, im := real(c), imag(c)
	if math.IsNaN(re) || math.IsNaN(im) || math.IsInf(re, 0) || math.IsInf(im, 0) {
		return nil
	}
	// Snap float noise around zero so that e.g. (-8)^(1/3) principal roots
	// do not carry a 1e-17 imaginary tail.
	if math.Abs(im) < 1e-12*math.Max(1, math.Abs(re)) {
		im = 0
	}
	if math.Abs(re) < 1e-12*math.Max(1, math.Abs(im)) {
		re = 0
	}
	r := new(big.Rat).SetFloat64(re)
	i := new(big.Rat).SetFloat64(im)
	return newNum(r, i, true)
}

func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) exprType() string      { return "num" }
func (n *Num) sortKey() string       { return "0:" + n.String() }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	if !ok || n.re.Cmp(o.re) != 0 {
		return false
	}
	return n.imag().Cmp(o.imag()) == 0
}

func (n *Num) imag() *big.Rat {
	if n.im == nil {
		return new(big.Rat)
	}
	return n.im
}

func (n *Num) Float64() float64 { f, _ := n.re.Float64(); return f }
func (n *Num) ImagFloat64() float64 {
	if n.im == nil {
		return 0
	}
	f, _ := n.im.Float64()
	return f
}
func (n *Num) Complex128() complex128 { return complex(n.Float64(), n.ImagFloat64()) }
func (n *Num) IsReal() bool           { return n.im == nil || n.im.Sign() == 0 }
func (n *Num) IsApprox() bool         { return n.approx }
func (n *Num) IsZero() bool           { return n.re.Sign() == 0 && n.IsReal() }
func (n *Num) IsOne() bool            { return n.IsReal() && n.re.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool         { return n.IsReal() && n.re.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool        { return n.IsReal() && n.re.IsInt() }
func (n *Num) IsPositive() bool       { return n.IsReal() && n.re.Sign() > 0 }
func (n *Num) IsNegative() bool       { return n.IsReal() && n.re.Sign() < 0 }
func (n *Num) Rat() *big.Rat          { return new(big.Rat).Set(n.re) }
func (n *Num) Imag() *Num             { return &Num{re: new(big.Rat).Set(n.imag()), approx: n.approx} }
func (n *Num) Real() *Num             { return &Num{re: new(big.Rat).Set(n.re), approx: n.approx} }

// Int64 returns the integer value when n is a real integer that fits.
func (n *Num) Int64() (int64, bool) {
	if !n.IsInteger() || !n.re.Num().IsInt64() {
		return 0, false
	}
	return n.re.Num().Int64(), true
}

func (n *Num) String() string {
	if n.IsReal() {
		return formatRat(n.re, n.approx)
	}
	im := n.imag()
	imStr := formatImag(im, n.approx)
	if n.re.Sign() == 0 {
		return imStr
	}
	if im.Sign() < 0 {
		return formatRat(n.re, n.approx) + " - " + strings.TrimPrefix(imStr, "-")
	}
	return formatRat(n.re, n.approx) + " + " + imStr
}

func formatImag(im *big.Rat, approx bool) string {
	switch {
	case im.Cmp(ratOne) == 0:
		return "i"
	case im.Cmp(ratNegOne) == 0:
		return "-i"
	}
	s := formatRat(im, approx)
	if strings.Contains(s, "/") {
		return "(" + s + ")*i"
	}
	return s + "*i"
}

func formatRat(r *big.Rat, approx bool) string {
	if approx {
		f, _ := r.Float64()
		return strconv.FormatFloat(f, 'g', 10, 64)
	}
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

func (n *Num) LaTeX() string {
	if !n.IsReal() {
		return strings.ReplaceAll(n.String(), "*i", "i")
	}
	if n.approx || n.re.IsInt() {
		return formatRat(n.re, n.approx)
	}
	sign := ""
	v := new(big.Rat).Set(n.re)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	out := map[string]interface{}{"type": "num", "value": formatRat(n.re, false)}
	if !n.IsReal() {
		out["imag"] = formatRat(n.imag(), false)
	}
	if n.approx {
		out["approx"] = true
	}
	return out
}

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
)

// ============================================================
// Numeric arithmetic
// ============================================================

func numAdd(a, b *Num) *Num {
	re := new(big.Rat).Add(a.re, b.re)
	im := new(big.Rat).Add(a.imag(), b.imag())
	return newNum(re, im, a.approx || b.approx)
}

func numSub(a, b *Num) *Num { return numAdd(a, numNeg(b)) }

func numMul(a, b *Num) *Num {
	if a.IsReal() && b.IsReal() {
		return &Num{re: new(big.Rat).Mul(a.re, b.re), approx: a.approx || b.approx}
	}
	ar, ai, br, bi := a.re, a.imag(), b.re, b.imag()
	re := new(big.Rat).Sub(new(big.Rat).Mul(ar, br), new(big.Rat).Mul(ai, bi))
	im := new(big.Rat).Add(new(big.Rat).Mul(ar, bi), new(big.Rat).Mul(ai, br))
	return newNum(re, im, a.approx || b.approx)
}

func numNeg(a *Num) *Num {
	return newNum(new(big.Rat).Neg(a.re), new(big.Rat).Neg(a.imag()), a.approx)
}

// numRecip returns 1/a, or nil when a is zero.
func numRecip(a *Num) *Num {
	if a.IsZero() {
		return nil
	}
	if a.IsReal() {
		return &Num{re: new(big.Rat).Inv(a.re), approx: a.approx}
	}
	ar, ai := a.re, a.imag()
	den := new(big.Rat).Add(new(big.Rat).Mul(ar, ar), new(big.Rat).Mul(ai, ai))
	re := new(big.Rat).Quo(ar, den)
	im := new(big.Rat).Quo(new(big.Rat).Neg(ai), den)
	return newNum(re, im, a.approx)
}

// numDiv returns a/b, or nil when b is zero.
func numDiv(a, b *Num) *Num {
	r := numRecip(b)
	if r == nil {
		return nil
	}
	return numMul(a, r)
}

func numAbs(a *Num) *Num {
	if a.IsReal() {
		return &Num{re: new(big.Rat).Abs(a.re), approx: a.approx}
	}
	return NFloat(cmplx.Abs(a.Complex128()))
}

// numCmp compares real parts.
func numCmp(a, b *Num) int { return a.re.Cmp(b.re) }

func gcdInt(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// maxExactBits bounds exact integer powers; larger results fall back to
// floating point so that 3^100000 cannot stall the kernel.
const maxExactBits = 4096

// numPowInt raises a to an integer power exactly when the result stays small.
func numPowInt(a *Num, k int64) *Num {
	if k == 0 {
		return N(1)
	}
	if k < 0 {
		p := numPowInt(a, -k)
		if p == nil {
			return nil
		}
		return numRecip(p)
	}
	if a.IsReal() && !a.approx {
		bits := int64(a.re.Num().BitLen())
		if db := int64(a.re.Denom().BitLen()); db > bits {
			bits = db
		}
		if bits*k > maxExactBits {
			return numFromComplex(cmplx.Pow(a.Complex128(), complex(float64(k), 0)))
		}
		num := new(big.Int).Exp(a.re.Num(), big.NewInt(k), nil)
		den := new(big.Int).Exp(a.re.Denom(), big.NewInt(k), nil)
		return &Num{re: new(big.Rat).SetFrac(num, den)}
	}
	if k > 64 {
		return numFromComplex(cmplx.Pow(a.Complex128(), complex(float64(k), 0)))
	}
	result := N(1)
	base := a
	for k > 0 {
		if k&1 == 1 {
			result = numMul(result, base)
		}
		base = numMul(base, base)
		k >>= 1
	}
	return result
}

// intRoot returns the exact q-th root of a non-negative integer when it exists.
func intRoot(n *big.Int, q int64) (*big.Int, bool) {
	if n.Sign() < 0 {
		return nil, false
	}
	if n.Sign() == 0 || q == 1 {
		return new(big.Int).Set(n), true
	}
	if q == 2 {
		r := new(big.Int).Sqrt(n)
		return r, new(big.Int).Mul(r, r).Cmp(n) == 0
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(q))))
	for _, g := range []int64{guess - 1, guess, guess + 1} {
		if g < 0 {
			continue
		}
		cand := big.NewInt(g)
		if new(big.Int).Exp(cand, big.NewInt(q), nil).Cmp(n) == 0 {
			return cand, true
		}
	}
	return nil, false
}

// maxRootTrialDivisor caps the trial division used to pull perfect powers
// out of a radicand.
const maxRootTrialDivisor = 1000

// extractRoot splits n = outside^q * inside with inside q-th-power free with
// respect to every prime below maxRootTrialDivisor.
func extractRoot(n *big.Int, q int64) (outside, inside *big.Int) {
	outside = big.NewInt(1)
	inside = new(big.Int).Set(n)
	if r, ok := intRoot(inside, q); ok {
		return r, big.NewInt(1)
	}
	for p := int64(2); p <= maxRootTrialDivisor; p++ {
		bp := big.NewInt(p)
		pq := new(big.Int).Exp(bp, big.NewInt(q), nil)
		if pq.Cmp(inside) > 0 {
			break
		}
		for {
			quo, rem := new(big.Int).QuoRem(inside, pq, new(big.Int))
			if rem.Sign() != 0 {
				break
			}
			inside = quo
			outside.Mul(outside, bp)
		}
	}
	return outside, inside
}

// divisors returns the positive divisors of |n| in ascending order, capped
// at limit entries.
func divisors(n int64, limit int) []int64 {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return []int64{1}
	}
	small := []int64{}
	large := []int64{}
	for i := int64(1); i*i <= n; i++ {
		if n%i != 0 {
			continue
		}
		small = append(small, i)
		if i != n/i {
			large = append(large, n/i)
		}
		if len(small)+len(large) >= limit {
			break
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

// approxEqual compares two floats with a relative tolerance.
func approxEqual(a, b float64) bool {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= 1e-9*scale
}
