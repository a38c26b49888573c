// Command gosolve solves equations and inequalities given as JSON
// expression trees, and serves the same operations over HTTP.
//
// Usage:
//
//	gosolve solve '{"type":"sym","name":"x"}' '{"type":"num","value":"3"}'
//	gosolve solve LEFT RIGHT --cmp '>' --var x
//	gosolve domain EXPR --var x
//	gosolve serve --config gosolve.yaml
//
// An argument of "-" reads the JSON from stdin.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
