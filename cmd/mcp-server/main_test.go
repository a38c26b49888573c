package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gosolve"
)

func TestServeStdio(t *testing.T) {
	x := gosolve.S("x")
	simplify, err := json.Marshal(gosolve.ToolRequest{
		Tool:   "simplify",
		Params: map[string]interface{}{"expr": gosolve.ToJSONValue(gosolve.AddOf(x, x))},
	})
	require.NoError(t, err)
	in := strings.Join([]string{string(simplify), "", "not json", `{"tool":"nope"}`}, "\n")

	var out bytes.Buffer
	logger := slog.New(slog.DiscardHandler)
	require.NoError(t, serveStdio(context.Background(), gosolve.NewAlgebraSolver(), logger, strings.NewReader(in), &out))

	var lines []gosolve.ToolResponse
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var resp gosolve.ToolResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &resp))
		lines = append(lines, resp)
	}
	require.Len(t, lines, 3)
	assert.Equal(t, "2*x", lines[0].String)
	assert.Contains(t, lines[1].Error, "invalid JSON")
	assert.Contains(t, lines[2].Error, "unknown tool")
}
