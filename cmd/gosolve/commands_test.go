package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func js(t *testing.T, e gosolve.Expr) string {
	t.Helper()
	s, err := gosolve.ToJSON(e)
	require.NoError(t, err)
	return s
}

var x = gosolve.S("x")

func TestSolveCmd_Quadratic(t *testing.T) {
	left := gosolve.AddOf(gosolve.PowOf(x, gosolve.N(2)), gosolve.MulOf(gosolve.N(-5), x), gosolve.N(6))
	out, err := run(t, "", "solve", js(t, left), js(t, gosolve.N(0)), "--var", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "x = 2")
	assert.Contains(t, out, "x = 3")
}

func TestSolveCmd_JSONFromStdin(t *testing.T) {
	left := gosolve.SubOf(x, gosolve.N(4))
	out, err := run(t, js(t, left), "solve", "-", js(t, gosolve.N(0)), "--json")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "solved", res["status"])
	assert.Equal(t, "x", res["var"])
}

func TestSolveCmd_Compound(t *testing.T) {
	out, err := run(t, "", "solve", js(t, gosolve.N(0)), js(t, x), "--cmp", "<", "--cmp2", "<=", "--upper", js(t, gosolve.N(5)), "--var", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "0 < x <= 5")
}

func TestSolveCmd_BadComparison(t *testing.T) {
	_, err := run(t, "", "solve", js(t, x), js(t, gosolve.N(1)), "--cmp", "~")
	assert.Error(t, err)
}

func TestSimplifyCmd(t *testing.T) {
	e := gosolve.AddOf(gosolve.PowOf(gosolve.Sin(x), gosolve.N(2)), gosolve.PowOf(gosolve.Cos(x), gosolve.N(2)))
	out, err := run(t, "", "simplify", js(t, e))
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)
}

func TestSimplifyCmd_UnknownMode(t *testing.T) {
	_, err := run(t, "", "simplify", js(t, x), "--mode", "wild")
	assert.Error(t, err)
}

func TestDomainCmd(t *testing.T) {
	e := gosolve.DivOf(gosolve.N(1), gosolve.SubOf(x, gosolve.N(3)))
	out, err := run(t, "", "domain", js(t, e))
	require.NoError(t, err)
	assert.Equal(t, "x != 3\n", out)
}

func TestFactorCmd(t *testing.T) {
	e := gosolve.SubOf(gosolve.PowOf(x, gosolve.N(2)), gosolve.N(1))
	out, err := run(t, "", "factor", js(t, e), "--json")
	require.NoError(t, err)
	var res map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res["success"])
	assert.Len(t, res["factors"], 2)
}

func TestToolCmd_UnknownToolFails(t *testing.T) {
	out, err := run(t, "", "tool", `{"tool":"nope"}`)
	assert.Error(t, err)
	assert.Contains(t, out, "unknown tool")
}

func TestSchemaCmd(t *testing.T) {
	out, err := run(t, "", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, `"domain"`)
}
