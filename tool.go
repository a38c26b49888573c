package gosolve

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall runs one tool request with a default solver.
func HandleToolCall(req ToolRequest) ToolResponse {
	return defaultSolver.HandleToolCall(context.Background(), req)
}

// HandleToolCall runs one tool request. Solve tools honour ctx.
func (a *AlgebraSolver) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	p := toolParams(req.Params)
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respond := func(e Expr) ToolResponse {
		return ToolResponse{Result: e.toJSON(), LaTeX: e.LaTeX(), String: e.String()}
	}
	solved := func(res SolveResult) ToolResponse {
		resp := ToolResponse{Result: res, String: res.String()}
		if res.Err != nil {
			resp.Error = res.Err.Error()
		}
		return resp
	}

	switch req.Tool {
	case "simplify", "deep_simplify", "harsh_simplify", "trig_simplify", "expand", "together", "compound_logs", "expand_logs", "to_latex":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		switch req.Tool {
		case "simplify":
			e = Simplify(e)
		case "deep_simplify":
			e = DeepSimplify(e)
		case "harsh_simplify":
			e = HarshSimplify(e)
		case "trig_simplify":
			e = TrigSimplify(e)
		case "expand":
			e = Expand(e)
		case "together":
			e = Together(e)
		case "compound_logs":
			e = CompoundLogs(e)
		case "expand_logs":
			e = ExpandLogs(e)
		}
		return respond(e)

	case "collect", "diff":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := p.str("var")
		if err != nil {
			return fail(err)
		}
		if req.Tool == "diff" {
			return respond(e.Diff(v))
		}
		return respond(Collect(e, v))

	case "substitute":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := p.str("var")
		if err != nil {
			return fail(err)
		}
		val, err := p.expr("value")
		if err != nil {
			return fail(err)
		}
		return respond(e.Sub(v, val))

	case "free_symbols":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		names := SortedSymbols(e)
		return ToolResponse{Result: names, String: strings.Join(names, ", ")}

	case "factor":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := p.str("var")
		if err != nil {
			return fail(err)
		}
		fr := Factor(e, v)
		factors := make([]interface{}, len(fr.Factors))
		for i, f := range fr.Factors {
			factors[i] = f.toJSON()
		}
		return ToolResponse{
			Result: map[string]interface{}{"factors": factors, "success": fr.Success},
			LaTeX:  fr.Expr().LaTeX(),
			String: fr.String(),
		}

	case "poly_divide":
		num, err := p.expr("num")
		if err != nil {
			return fail(err)
		}
		den, err := p.expr("den")
		if err != nil {
			return fail(err)
		}
		v, err := p.str("var")
		if err != nil {
			return fail(err)
		}
		q, r, err := PolyDivide(num, den, v)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{
			Result: map[string]interface{}{"quotient": q.toJSON(), "remainder": r.toJSON()},
			String: fmt.Sprintf("quotient %s, remainder %s", q, r),
		}

	case "domain":
		e, err := p.expr("expr")
		if err != nil {
			return fail(err)
		}
		v, err := p.str("var")
		if err != nil {
			return fail(err)
		}
		r, err := a.Domain(ctx, e, v)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: r, String: r.String()}

	case "solve", "solve_inequality":
		left, err := p.expr("left")
		if err != nil {
			return fail(err)
		}
		right, err := p.expr("right")
		if err != nil {
			return fail(err)
		}
		cmp := CmpEq
		if req.Tool == "solve_inequality" {
			s, err := p.str("comparison")
			if err != nil {
				return fail(err)
			}
			if cmp, err = ParseComparison(s); err != nil {
				return fail(err)
			}
		}
		v, _ := p.str("var")
		return solved(a.SolveEquation(ctx, v, Ineq(left, cmp, right)))

	case "solve_compound":
		var sides [3]Expr
		for i, key := range []string{"lo", "mid", "hi"} {
			e, err := p.expr(key)
			if err != nil {
				return fail(err)
			}
			sides[i] = e
		}
		var cmps [2]Comparison
		for i, key := range []string{"c1", "c2"} {
			s, err := p.str(key)
			if err != nil {
				return fail(err)
			}
			if cmps[i], err = ParseComparison(s); err != nil {
				return fail(err)
			}
		}
		v, _ := p.str("var")
		return solved(a.SolveEquation(ctx, v, Between(sides[0], cmps[0], sides[1], cmps[1], sides[2])))

	case "classify":
		left, err := p.expr("left")
		if err != nil {
			return fail(err)
		}
		right, err := p.expr("right")
		if err != nil {
			return fail(err)
		}
		v, err := p.str("var")
		if err != nil {
			return fail(err)
		}
		info := Classify(Simplify(left), Simplify(right), v)
		strategy := ""
		for _, st := range Strategies() {
			if st.Match(info) {
				strategy = st.Name
				break
			}
		}
		return ToolResponse{Result: classification(info, strategy), String: strategy}

	case "guess_variable":
		tokens, err := p.strs("tokens")
		if err != nil {
			return fail(err)
		}
		v, ok := GuessSolveVariable(tokens)
		if !ok {
			return fail(fmt.Errorf("no identifier among tokens: %w", ErrMalformedInput))
		}
		return ToolResponse{Result: v, String: v}

	case "mcp_spec":
		return ToolResponse{Result: MCPToolSpec()}
	}
	return fail(fmt.Errorf("%q: %w", req.Tool, ErrUnknownTool))
}

type toolParams map[string]interface{}

func (p toolParams) expr(key string) (Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s: %w", key, ErrMalformedInput)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an expression object: %w", key, ErrMalformedInput)
	}
	return FromJSON(m)
}

func (p toolParams) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("missing param: %s: %w", key, ErrMalformedInput)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string: %w", key, ErrMalformedInput)
	}
	return s, nil
}

func (p toolParams) strs(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s: %w", key, ErrMalformedInput)
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("param %s must be an array: %w", key, ErrMalformedInput)
	}
	out := make([]string, len(raw))
	for i, r := range raw {
		s, ok := r.(string)
		if !ok {
			return nil, fmt.Errorf("param %s[%d] must be a string: %w", key, i, ErrMalformedInput)
		}
		out[i] = s
	}
	return out, nil
}

func classification(info EquationInformation, strategy string) map[string]interface{} {
	powers := make([]string, len(info.Powers))
	for i, p := range info.Powers {
		powers[i] = p.String()
	}
	out := map[string]interface{}{
		"var":                 info.Var,
		"left":                info.Left.String(),
		"right":               info.Right.String(),
		"powers":              powers,
		"functions":           append([]string{}, info.Functions...),
		"all_fractions":       info.AllFractions,
		"denominator_has_var": info.DenominatorHasVar,
		"only_factors":        info.OnlyFactors,
		"constant_factor":     info.ConstantFactor,
		"has_abs":             info.HasAbs,
		"has_log":             info.HasLog,
		"log_base_has_var":    info.LogBaseHasVar,
		"has_trig":            info.HasTrig,
		"only_sinusoidal":     info.OnlySinusoidal,
		"power_of_sinusoidal": info.PowerOfSinusoidal,
		"exponential":         info.Exponential,
		"integer_powers":      info.IntegerPowers,
		"degree":              info.Degree,
		"strategy":            strategy,
	}
	if info.Substitution != nil {
		out["substitution"] = info.Substitution.String()
	}
	return out
}

// ============================================================
// Result encoding
// ============================================================

func (s Solution) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"var":          s.Var,
		"comparison":   s.Comparison.String(),
		"exact":        s.Exact.toJSON(),
		"string":       s.Exact.String(),
		"multiplicity": s.Multiplicity,
	}
	if s.General != nil {
		out["general"] = s.General.toJSON()
		out["general_string"] = s.General.String()
	}
	if s.Approx != nil {
		out["approx"] = s.Approx.Float64()
		if !s.Approx.IsReal() {
			out["approx_imag"] = s.Approx.ImagFloat64()
		}
	}
	return json.Marshal(out)
}

func (r Restriction) MarshalJSON() ([]byte, error) {
	ivs := make([]map[string]interface{}, len(r.intervals))
	for i, iv := range r.intervals {
		m := map[string]interface{}{"lo_inclusive": iv.LoInc, "hi_inclusive": iv.HiInc}
		if iv.Lo != nil {
			m["lo"] = iv.Lo.toJSON()
		}
		if iv.Hi != nil {
			m["hi"] = iv.Hi.toJSON()
		}
		ivs[i] = m
	}
	out := map[string]interface{}{
		"var":       r.Var,
		"kind":      r.Kind().String(),
		"string":    r.String(),
		"intervals": ivs,
	}
	if len(r.periodic) > 0 {
		ps := make([]map[string]interface{}, len(r.periodic))
		for i, p := range r.periodic {
			ps[i] = map[string]interface{}{"offset": p.Offset.toJSON(), "period": p.Period.toJSON()}
		}
		out["periodic"] = ps
	}
	return json.Marshal(out)
}

func (r SolveResult) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"status":    r.Status.String(),
		"var":       r.Var,
		"solutions": r.Solutions,
	}
	if r.Solutions == nil {
		out["solutions"] = []Solution{}
	}
	if r.Strategy != "" {
		out["strategy"] = r.Strategy
	}
	if len(r.Restrictions) > 0 {
		out["restrictions"] = r.Restrictions
	}
	if r.Err != nil {
		out["error"] = r.Err.Error()
	}
	return json.Marshal(out)
}

// ============================================================
// MCP spec
// ============================================================

// MCPToolSpec describes every tool HandleToolCall serves.
func MCPToolSpec() string {
	expr := map[string]string{"expr": "object"}
	exprVar := map[string]string{"expr": "object", "var": "string"}
	equation := map[string]string{"left": "object", "right": "object", "var": "string"}
	tools := []map[string]interface{}{
		ts("simplify", "Canonicalize an expression and apply trig identities", []string{"expr"}, expr),
		ts("deep_simplify", "Repeat simplification, log compounding and fraction joining to a fixed point", []string{"expr"}, expr),
		ts("harsh_simplify", "Evaluate every numeric subtree, constants and functions included", []string{"expr"}, expr),
		ts("trig_simplify", "Cancel reciprocal trig pairs and apply sin²+cos²=1", []string{"expr"}, expr),
		ts("expand", "Distribute products and integer powers of sums", []string{"expr"}, expr),
		ts("together", "Write an expression as a single fraction", []string{"expr"}, expr),
		ts("compound_logs", "Merge logarithms with equal bases", []string{"expr"}, expr),
		ts("expand_logs", "Split logarithms of products and powers", []string{"expr"}, expr),
		ts("to_latex", "Render an expression as LaTeX", []string{"expr"}, expr),
		ts("free_symbols", "Return free symbol names", []string{"expr"}, expr),
		ts("collect", "Collect terms by powers of a variable", []string{"expr", "var"}, exprVar),
		ts("diff", "First derivative", []string{"expr", "var"}, exprVar),
		ts("substitute", "Substitute var with value", []string{"expr", "var", "value"}, map[string]string{"expr": "object", "var": "string", "value": "object"}),
		ts("factor", "Factor a polynomial in a variable", []string{"expr", "var"}, exprVar),
		ts("poly_divide", "Polynomial long division with remainder", []string{"num", "den", "var"}, map[string]string{"num": "object", "den": "object", "var": "string"}),
		ts("domain", "Real values for which an expression is defined", []string{"expr", "var"}, exprVar),
		ts("solve", "Solve left = right. var is guessed when omitted", []string{"left", "right"}, equation),
		ts("solve_inequality", "Solve left <cmp> right with cmp one of <, <=, >, >=", []string{"left", "right", "comparison"}, map[string]string{"left": "object", "right": "object", "comparison": "string", "var": "string"}),
		ts("solve_compound", "Solve lo <c1> mid <c2> hi", []string{"lo", "c1", "mid", "c2", "hi"}, map[string]string{"lo": "object", "c1": "string", "mid": "object", "c2": "string", "hi": "object", "var": "string"}),
		ts("classify", "Report the equation shape and the strategy the solver would use", []string{"left", "right", "var"}, equation),
		ts("guess_variable", "Guess the solve variable from identifier tokens", []string{"tokens"}, map[string]string{"tokens": "array"}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		properties[k] = map[string]interface{}{"type": props[k]}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
