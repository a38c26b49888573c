package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gosolve"
)

// solveRequest is left comparison right in variable var. Comparison
// defaults to "=" and var is guessed when empty.
type solveRequest struct {
	Var        string                 `json:"var"`
	Left       map[string]interface{} `json:"left" binding:"required"`
	Right      map[string]interface{} `json:"right" binding:"required"`
	Comparison string                 `json:"comparison"`
}

type batchRequest struct {
	Equations []solveRequest `json:"equations" binding:"required"`
}

type domainRequest struct {
	Var  string                 `json:"var" binding:"required"`
	Expr map[string]interface{} `json:"expr" binding:"required"`
}

func (r solveRequest) equation() (gosolve.Equation, error) {
	left, err := gosolve.FromJSON(r.Left)
	if err != nil {
		return gosolve.Equation{}, fmt.Errorf("left: %w", err)
	}
	right, err := gosolve.FromJSON(r.Right)
	if err != nil {
		return gosolve.Equation{}, fmt.Errorf("right: %w", err)
	}
	cmp := gosolve.CmpEq
	if r.Comparison != "" {
		if cmp, err = gosolve.ParseComparison(r.Comparison); err != nil {
			return gosolve.Equation{}, err
		}
	}
	return gosolve.Ineq(left, cmp, right), nil
}

// key identifies equivalent requests for deduplication.
func (r solveRequest) key(eq gosolve.Equation) string {
	return r.Var + "|" + eq.String()
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) schema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(gosolve.MCPToolSpec()))
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
}

func (s *Server) tool(c *gin.Context) {
	var req gosolve.ToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	ctx, cancel := s.solveContext(c.Request.Context())
	defer cancel()
	resp := s.solver.HandleToolCall(ctx, req)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) solve(c *gin.Context) {
	var req solveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	eq, err := req.equation()
	if err != nil {
		s.badRequest(c, err)
		return
	}
	res, shared := s.solveShared(c, req, eq)
	if shared {
		flightShared.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey), "result": res})
}

// solveShared collapses identical concurrent requests into one solve. The
// shared solve outlives the first caller's request, bounded only by the
// configured timeout, so one disconnect does not fail every waiter.
func (s *Server) solveShared(c *gin.Context, req solveRequest, eq gosolve.Equation) (gosolve.SolveResult, bool) {
	v, _, shared := s.flight.Do(req.key(eq), func() (interface{}, error) {
		ctx, cancel := s.solveContext(context.WithoutCancel(c.Request.Context()))
		defer cancel()
		return s.solver.SolveEquation(ctx, req.Var, eq), nil
	})
	return v.(gosolve.SolveResult), shared
}

func (s *Server) solveBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if n := len(req.Equations); n == 0 || n > s.cfg.Server.MaxBatch {
		s.badRequest(c, fmt.Errorf("batch size %d outside 1..%d", n, s.cfg.Server.MaxBatch))
		return
	}
	eqs := make([]gosolve.Equation, len(req.Equations))
	for i, r := range req.Equations {
		eq, err := r.equation()
		if err != nil {
			s.badRequest(c, fmt.Errorf("equations[%d]: %w", i, err))
			return
		}
		eqs[i] = eq
	}

	results := make([]gosolve.SolveResult, len(eqs))
	g, gctx := errgroup.WithContext(c.Request.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range eqs {
		i := i
		g.Go(func() error {
			ctx, cancel := s.solveContext(gctx)
			defer cancel()
			results[i] = s.solver.SolveEquation(ctx, req.Equations[i].Var, eqs[i])
			return nil
		})
	}
	_ = g.Wait()
	c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey), "results": results})
}

func (s *Server) domain(c *gin.Context) {
	var req domainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	e, err := gosolve.FromJSON(req.Expr)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	ctx, cancel := s.solveContext(c.Request.Context())
	defer cancel()
	r, err := s.solver.Domain(ctx, e, req.Var)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, gosolve.ErrMalformedInput) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error(), "request_id": c.GetString(requestIDKey)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": c.GetString(requestIDKey), "domain": r})
}
