package gosolve

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// GuessSolveVariable picks the most likely variable from the identifier
// tokens of an equation. "x" wins whenever it is present; otherwise the
// most frequent single letter wins, letters the solver reserves for
// substitution and iteration losing to any other letter. Ties go to the
// alphabetically first name. Multi-letter identifiers and the constants
// e and pi are ignored unless nothing else is left.
func GuessSolveVariable(tokens []string) (string, bool) {
	counts := map[string]int{}
	for _, t := range tokens {
		if t == "" || isConstantName(t) {
			continue
		}
		r, _ := utf8.DecodeRuneInString(t)
		if !unicode.IsLetter(r) {
			continue
		}
		counts[t]++
	}
	if len(counts) == 0 {
		return "", false
	}
	if counts["x"] > 0 {
		return "x", true
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	rank := func(n string) int {
		switch {
		case utf8.RuneCountInString(n) > 1:
			return 2
		case reservedName(n):
			return 1
		}
		return 0
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if rank(a) != rank(b) {
			return rank(a) < rank(b)
		}
		if counts[a] != counts[b] {
			return counts[a] > counts[b]
		}
		return a < b
	})
	return names[0], true
}

func reservedName(n string) bool {
	for _, p := range substitutionPool {
		if p == n {
			return true
		}
	}
	for _, p := range iterationPool {
		if p == n {
			return true
		}
	}
	return false
}
