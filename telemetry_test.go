package gosolve_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	gs "github.com/njchilds90/gosolve"
)

func TestSolve_RecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	res := gs.NewAlgebraSolver().Solve(context.Background(), "x", gs.SubOf(gs.S("x"), gs.N(1)), gs.N(0))
	require.Equal(t, gs.StatusSolved, res.Status)

	var found bool
	for _, span := range sr.Ended() {
		if span.Name() != "AlgebraSolver.Solve" {
			continue
		}
		found = true
		attrs := map[attribute.Key]attribute.Value{}
		for _, kv := range span.Attributes() {
			attrs[kv.Key] = kv.Value
		}
		assert.Equal(t, "x", attrs["gosolve.var"].AsString())
		assert.Equal(t, "solved", attrs["gosolve.status"].AsString())
		assert.Equal(t, int64(1), attrs["gosolve.solutions"].AsInt64())
	}
	assert.True(t, found, "no solve span recorded")
}
