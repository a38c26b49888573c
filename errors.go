package gosolve

import "errors"

// Sentinel errors. Callers match them with errors.Is; the solver wraps them
// with the strategy or operation that produced them.
var (
	// ErrNoStrategy is returned when no solving strategy matches the equation shape.
	ErrNoStrategy = errors.New("gosolve: couldn't determine solve method")
	// ErrStrategyFailed is returned when the selected strategy could not finish.
	ErrStrategyFailed = errors.New("gosolve: strategy failed")
	// ErrMalformedInput rejects equations with missing sides, comparisons or variable.
	ErrMalformedInput = errors.New("gosolve: malformed input")
	// ErrUndefined is returned when a side of the equation is undefined.
	ErrUndefined = errors.New("gosolve: expression is undefined")
	// ErrRecursionLimit is returned when nested solves exceed the depth limit.
	ErrRecursionLimit = errors.New("gosolve: recursion limit exceeded")
	// ErrBudgetExceeded is returned when a solve exhausts its step budget.
	ErrBudgetExceeded = errors.New("gosolve: step budget exceeded")
	// ErrComplexity is returned when a complexity cap declines the work.
	ErrComplexity = errors.New("gosolve: expression too complex")
	// ErrNonReal is returned by sign testing when a root is not real.
	ErrNonReal = errors.New("gosolve: non-real root")
	// ErrEmptyIntersection is returned when compound inequality halves do not overlap.
	ErrEmptyIntersection = errors.New("gosolve: empty intersection")
	// ErrDomain is returned when a domain restriction cannot be computed.
	ErrDomain = errors.New("gosolve: domain could not be determined")
	// ErrDimension is returned for matrix shape mismatches.
	ErrDimension = errors.New("gosolve: matrix dimension mismatch")
	// ErrSingular is returned when inverting a singular matrix.
	ErrSingular = errors.New("gosolve: matrix is singular")
	// ErrNotPolynomial is returned when an expression is not a polynomial in the variable.
	ErrNotPolynomial = errors.New("gosolve: not a polynomial")
	// ErrDivisionByZero is returned when dividing by the zero polynomial.
	ErrDivisionByZero = errors.New("gosolve: division by zero")
	// ErrUnknownTool is returned for tool names HandleToolCall does not serve.
	ErrUnknownTool = errors.New("gosolve: unknown tool")
)
