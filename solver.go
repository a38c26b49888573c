package gosolve

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// ============================================================
// Solve dispatcher
// ============================================================

const (
	// DefaultMaxDepth bounds nested solves (substitution back-solves,
	// factor sub-equations, domain sub-solves).
	DefaultMaxDepth = 24
	// DefaultMaxSteps bounds the number of dispatcher entries per call.
	DefaultMaxSteps = 2000
)

var (
	substitutionPool = []string{"u", "w", "t", "z", "s", "r"}
	iterationPool    = []string{"n", "k", "m", "j"}
)

var errAllSolutions = fmt.Errorf("sub-equation holds for every value: %w", ErrStrategyFailed)

// Option configures an AlgebraSolver.
type Option func(*AlgebraSolver)

// WithLogger sets the logger used for strategy selection and failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *AlgebraSolver) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMaxDepth sets the nested solve limit.
func WithMaxDepth(n int) Option {
	return func(a *AlgebraSolver) {
		if n > 0 {
			a.maxDepth = n
		}
	}
}

// WithMaxSteps sets the per-call step budget.
func WithMaxSteps(n int) Option {
	return func(a *AlgebraSolver) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

// WithStepLog attaches an observer for rewrite steps.
func WithStepLog(l StepLog) Option {
	return func(a *AlgebraSolver) { a.stepLog = l }
}

// AlgebraSolver solves equations and inequalities in one variable. It
// holds configuration only; every call gets its own session, so one
// solver may be shared across goroutines.
type AlgebraSolver struct {
	logger   *slog.Logger
	maxDepth int
	maxSteps int
	stepLog  StepLog
}

// NewAlgebraSolver returns a solver with the given options applied over
// the defaults. The default logger discards everything.
func NewAlgebraSolver(opts ...Option) *AlgebraSolver {
	a := &AlgebraSolver{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxDepth: DefaultMaxDepth,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

var defaultSolver = NewAlgebraSolver()

// Solve solves left = right for v with a default solver.
func Solve(v string, left, right Expr) SolveResult {
	return defaultSolver.Solve(context.Background(), v, left, right)
}

// SolveInequality solves left c right for v with a default solver.
func SolveInequality(v string, left Expr, c Comparison, right Expr) SolveResult {
	return defaultSolver.SolveInequality(context.Background(), v, left, c, right)
}

// Domain returns the real values of v for which e is defined, using a
// default solver for the sub-equations.
func Domain(e Expr, v string) (Restriction, error) {
	return defaultSolver.Domain(context.Background(), e, v)
}

// Solve solves left = right for v.
func (a *AlgebraSolver) Solve(ctx context.Context, v string, left, right Expr) SolveResult {
	if v == "" || left == nil || right == nil {
		return failed(v, fmt.Errorf("solve needs a variable and two sides: %w", ErrMalformedInput))
	}
	ctx, span := startSolveSpan(ctx, "Solve", v)
	defer span.End()
	start := time.Now()
	sess := a.newSession(ctx, left, right)
	res := sess.solve(v, left, right)
	a.finish(ctx, span, start, "solve", res)
	return res
}

// SolveInequality solves left c right for v. The answer is carried in
// Restrictions.
func (a *AlgebraSolver) SolveInequality(ctx context.Context, v string, left Expr, c Comparison, right Expr) SolveResult {
	if c == CmpEq {
		return a.Solve(ctx, v, left, right)
	}
	if v == "" || left == nil || right == nil {
		return failed(v, fmt.Errorf("inequality needs a variable and two sides: %w", ErrMalformedInput))
	}
	ctx, span := startSolveSpan(ctx, "SolveInequality", v)
	defer span.End()
	start := time.Now()
	sess := a.newSession(ctx, left, right)
	res := sess.inequality(v, left, c, right)
	a.finish(ctx, span, start, "inequality", res)
	return res
}

// SolveCompound solves lo c1 mid c2 hi for v as the intersection of its
// two halves.
func (a *AlgebraSolver) SolveCompound(ctx context.Context, v string, lo Expr, c1 Comparison, mid Expr, c2 Comparison, hi Expr) SolveResult {
	if err := Between(lo, c1, mid, c2, hi).Validate(); err != nil {
		return failed(v, err)
	}
	if v == "" {
		return failed(v, fmt.Errorf("compound inequality needs a variable: %w", ErrMalformedInput))
	}
	ctx, span := startSolveSpan(ctx, "SolveCompound", v)
	defer span.End()
	start := time.Now()
	sess := a.newSession(ctx, lo, mid, hi)
	res := sess.compound(v, lo, c1, mid, c2, hi)
	a.finish(ctx, span, start, "compound", res)
	return res
}

// SolveEquation dispatches on the shape of eq. An empty v is guessed from
// the symbols of the equation.
func (a *AlgebraSolver) SolveEquation(ctx context.Context, v string, eq Equation) SolveResult {
	if err := eq.Validate(); err != nil {
		return failed(v, err)
	}
	if v == "" {
		var tokens []string
		for _, side := range eq.Sides {
			tokens = append(tokens, symbolTokens(side)...)
		}
		guess, ok := GuessSolveVariable(tokens)
		if !ok {
			return failed(v, fmt.Errorf("no variable to solve for: %w", ErrMalformedInput))
		}
		v = guess
	}
	if len(eq.Comparisons) == 2 {
		return a.SolveCompound(ctx, v, eq.Sides[0], eq.Comparisons[0], eq.Sides[1], eq.Comparisons[1], eq.Sides[2])
	}
	return a.SolveInequality(ctx, v, eq.Sides[0], eq.Comparisons[0], eq.Sides[1])
}

// Domain returns the real values of v for which e is defined.
func (a *AlgebraSolver) Domain(ctx context.Context, e Expr, v string) (Restriction, error) {
	if e == nil || v == "" {
		return Restriction{}, fmt.Errorf("domain needs an expression and a variable: %w", ErrMalformedInput)
	}
	sess := a.newSession(ctx, e)
	r, err := sess.domain(Simplify(e), v)
	if err != nil {
		return Restriction{}, err
	}
	return r.WithVar(v), nil
}

func (a *AlgebraSolver) finish(ctx context.Context, span trace.Span, start time.Time, kind string, res SolveResult) {
	setSolveSpanResult(span, res)
	recordSolveMetrics(ctx, time.Since(start), res.Status)
	attrs := []any{
		slog.String("kind", kind),
		slog.String("var", res.Var),
		slog.String("status", res.Status.String()),
		slog.String("strategy", res.Strategy),
		slog.Duration("elapsed", time.Since(start)),
	}
	if res.Err != nil {
		attrs = append(attrs, slog.String("error", res.Err.Error()))
	}
	a.logger.Debug("solve finished", attrs...)
}

// ============================================================
// Session
// ============================================================

// session is the state of one top-level call: recursion depth, step
// budget and the variable names already in use.
type session struct {
	ctx     context.Context
	solver  *AlgebraSolver
	depth   int
	steps   int
	used    map[string]bool
	iterVar string
}

func (a *AlgebraSolver) newSession(ctx context.Context, exprs ...Expr) *session {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &session{ctx: ctx, solver: a, used: map[string]bool{}}
	for _, e := range exprs {
		for name := range FreeSymbols(e) {
			s.used[name] = true
		}
	}
	return s
}

// enter always increments the depth; callers pair it with leave.
func (s *session) enter() error {
	s.depth++
	s.steps++
	if err := s.cancelled(); err != nil {
		return err
	}
	if s.depth > s.solver.maxDepth {
		return fmt.Errorf("depth %d: %w", s.depth, ErrRecursionLimit)
	}
	if s.steps > s.solver.maxSteps {
		return fmt.Errorf("%d steps: %w", s.steps, ErrBudgetExceeded)
	}
	return nil
}

func (s *session) leave() { s.depth-- }

// cancelled checks the call context. Long simplifications and domain walks
// between dispatcher entries call it too.
func (s *session) cancelled() error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("solve cancelled: %w", err)
	}
	return nil
}

// allocate returns the first name of pool not used in the call.
func (s *session) allocate(pool []string) string {
	for _, name := range pool {
		if !s.used[name] {
			s.used[name] = true
			return name
		}
	}
	for i := 1; ; i++ {
		name := pool[0] + strconv.Itoa(i)
		if !s.used[name] {
			s.used[name] = true
			return name
		}
	}
}

// iteration returns the integer variable of periodic solutions. One name
// serves the whole call.
func (s *session) iteration() string {
	if s.iterVar == "" {
		s.iterVar = s.allocate(iterationPool)
	}
	return s.iterVar
}

func (s *session) record(desc string, before, after Expr) {
	if s.solver.stepLog != nil {
		s.solver.stepLog.Record(Step{Description: desc, Before: before, After: after})
	}
}

func (s *session) log() *slog.Logger { return s.solver.logger }

// solve is the dispatcher: simplify, rule out degenerate shapes, classify,
// run the first matching strategy and drop roots that do not satisfy the
// original equation.
func (s *session) solve(v string, left, right Expr) SolveResult {
	if err := s.enter(); err != nil {
		s.leave()
		return failed(v, err)
	}
	defer s.leave()

	l, r := Simplify(left), Simplify(right)
	if err := s.cancelled(); err != nil {
		return failed(v, err)
	}
	if !l.Equal(left) || !r.Equal(right) {
		s.record("simplify", SubOf(left, right), SubOf(l, r))
	}
	if IsUndefined(l) || IsUndefined(r) {
		return failed(v, fmt.Errorf("%s = %s: %w", l, r, ErrUndefined))
	}
	if l.Equal(r) {
		return SolveResult{Status: StatusAllSolutions, Var: v}
	}
	lc, rc := Contains(l, v), Contains(r, v)
	if !lc && !rc {
		if n, ok := Simplify(SubOf(l, r)).(*Num); ok && n.IsZero() {
			return SolveResult{Status: StatusAllSolutions, Var: v}
		}
		return SolveResult{Status: StatusNoSolution, Var: v}
	}
	if sym, ok := l.(*Sym); ok && sym.name == v && !rc {
		return SolveResult{Status: StatusSolved, Var: v, Solutions: []Solution{newSolution(v, r, nil, 1)}}
	}
	if sym, ok := r.(*Sym); ok && sym.name == v && !lc {
		return SolveResult{Status: StatusSolved, Var: v, Solutions: []Solution{newSolution(v, l, nil, 1)}}
	}

	info := Classify(l, r, v)
	if n, ok := info.Left.(*Num); ok && n.IsZero() {
		if rn, ok := info.Right.(*Num); ok && rn.IsZero() {
			return SolveResult{Status: StatusAllSolutions, Var: v}
		}
		return SolveResult{Status: StatusNoSolution, Var: v}
	}

	for _, st := range Strategies() {
		if !st.Match(info) {
			continue
		}
		return s.run(st, info, l, r)
	}
	s.log().Debug("no strategy matched", slog.String("var", v), slog.String("left", l.String()), slog.String("right", r.String()))
	return failed(v, fmt.Errorf("%s = %s: %w", l, r, ErrNoStrategy))
}

func (s *session) run(st Strategy, info EquationInformation, l, r Expr) SolveResult {
	v := info.Var
	recordStrategy(s.ctx, st.Name)
	s.log().Debug("strategy selected",
		slog.String("strategy", st.Name),
		slog.String("var", v),
		slog.String("equation", info.Left.String()+" = "+info.Right.String()),
		slog.Int("depth", s.depth),
	)
	sols, err := st.solve(s, info)
	if err != nil {
		s.log().Debug("strategy failed", slog.String("strategy", st.Name), slog.String("error", err.Error()))
		res := failed(v, fmt.Errorf("%s: %w", st.Name, err))
		res.Strategy = st.Name
		return res
	}
	var kept []Solution
	for _, sol := range sols {
		if err := s.cancelled(); err != nil {
			res := failed(v, err)
			res.Strategy = st.Name
			return res
		}
		if verifyRoot(l, r, v, sol.Exact) {
			kept = append(kept, sol)
			s.record(st.Name, S(v), sol.Exact)
		} else {
			s.log().Debug("extraneous root dropped", slog.String("strategy", st.Name), slog.String("root", sol.Exact.String()))
		}
	}
	res := SolveResult{Status: StatusSolved, Var: v, Strategy: st.Name, Solutions: collapseSolutions(kept)}
	if len(res.Solutions) == 0 {
		res.Status = StatusNoSolution
	}
	return res
}

// roots solves a sub-equation and returns its solutions. NoSolution is an
// empty slice; an identity is an error since it cannot be listed.
func (s *session) roots(v string, left, right Expr) ([]Solution, error) {
	res := s.solve(v, left, right)
	switch res.Status {
	case StatusFailed:
		return nil, res.Err
	case StatusNoSolution:
		return nil, nil
	case StatusAllSolutions:
		return nil, errAllSolutions
	}
	return res.Solutions, nil
}

// verifyRoot substitutes x into both sides. Roots that make a side
// undefined or leave a numeric residual are rejected; roots carrying other
// symbols are kept when the substitution stays defined. A root whose check
// overflows float evaluation is kept, since nothing contradicts it.
func verifyRoot(left, right Expr, v string, x Expr) bool {
	if x == nil || IsUndefined(x) || Contains(x, v) {
		return false
	}
	l := Simplify(left.Sub(v, x))
	r := Simplify(right.Sub(v, x))
	if IsUndefined(l) || IsUndefined(r) {
		return false
	}
	if len(FreeSymbols(l)) > 0 || len(FreeSymbols(r)) > 0 {
		return true
	}
	if d, ok := Simplify(SubOf(l, r)).(*Num); ok && d.IsZero() && !d.IsApprox() {
		return true
	}
	ln, lok := HarshSimplify(l).(*Num)
	rn, rok := HarshSimplify(r).(*Num)
	if !lok || !rok {
		return overflows(l) || overflows(r)
	}
	return closeRats(ln, rn)
}

// closeRats compares two numbers to a relative 1e-7 on their exact parts,
// so magnitudes beyond float64 range compare correctly.
func closeRats(a, b *Num) bool {
	dre := new(big.Rat).Sub(a.re, b.re)
	dim := new(big.Rat).Sub(a.imag(), b.imag())
	dist := new(big.Rat).Mul(dre, dre)
	dist.Add(dist, new(big.Rat).Mul(dim, dim))
	scale := big.NewRat(1, 1)
	for _, q := range []*big.Rat{a.re, b.re, a.imag(), b.imag()} {
		if abs := new(big.Rat).Abs(q); abs.Cmp(scale) > 0 {
			scale = abs
		}
	}
	limit := new(big.Rat).Mul(scale, scale)
	limit.Mul(limit, big.NewRat(1, 100000000000000))
	return dist.Cmp(limit) <= 0
}

// overflows reports whether a symbol-free expression fails to evaluate only
// because some value exceeds float64 range.
func overflows(e Expr) bool {
	e = unwrap(e)
	if len(FreeSymbols(e)) > 0 {
		return false
	}
	if _, ok := e.Eval(); ok {
		return false
	}
	found := false
	rebuildWith(e, func(c Expr) Expr {
		if found {
			return c
		}
		if n, ok := c.Eval(); ok {
			found = math.IsInf(n.Float64(), 0) || math.IsInf(n.ImagFloat64(), 0)
		} else {
			found = overflows(c)
		}
		return c
	})
	if found {
		return true
	}
	if p, ok := e.(*Pow); ok {
		b, bok := p.base.Eval()
		k, kok := p.exp.Eval()
		if bok && kok && !b.IsZero() && b.IsReal() && k.IsReal() {
			return math.IsInf(math.Pow(b.Float64(), k.Float64()), 0)
		}
	}
	return false
}

func symbolTokens(e Expr) []string {
	var out []string
	var visit func(Expr)
	visit = func(e Expr) {
		switch n := e.(type) {
		case *Sym:
			if !n.IsConstant() {
				out = append(out, n.name)
			}
		case *Term:
			for _, g := range n.groups {
				for _, f := range g.factors {
					visit(f)
				}
			}
		case *Pow:
			visit(n.base)
			visit(n.exp)
		case *Func:
			visit(n.arg)
		case *Log:
			visit(n.arg)
			visit(n.base)
		}
	}
	visit(e)
	return out
}
