package gosolve

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

// ToJSON encodes e as a JSON expression tree.
func ToJSON(e Expr) (string, error) {
	if e == nil {
		return "", fmt.Errorf("nil expression: %w", ErrMalformedInput)
	}
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToJSONValue returns the decoded form of ToJSON, for embedding in larger
// documents.
func ToJSONValue(e Expr) map[string]interface{} {
	if e == nil {
		return nil
	}
	return e.toJSON()
}

// ParseJSON decodes a JSON expression tree from text.
func ParseJSON(text string) (Expr, error) {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("decode expression: %w", err)
	}
	return FromJSON(data)
}

// FromJSON builds an expression from its decoded JSON tree. Nodes are
// recombined, so the result is canonical whatever the input order.
func FromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object: %w", ErrMalformedInput)
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field: %w", ErrMalformedInput)
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string: %w", ErrMalformedInput)
	}

	subObj := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q: %w", typ, field, ErrMalformedInput)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object: %w", typ, field, ErrMalformedInput)
		}
		e, err := FromJSON(m)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subArray := func(field string, raw interface{}) ([]Expr, error) {
		items, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array: %w", typ, field, ErrMalformedInput)
		}
		out := make([]Expr, len(items))
		for i, it := range items {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object: %w", typ, field, i, ErrMalformedInput)
			}
			e, err := FromJSON(m)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q: %w", typ, field, ErrMalformedInput)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string: %w", typ, field, ErrMalformedInput)
		}
		return s, nil
	}

	rat := func(field string) (*big.Rat, error) {
		s, err := subString(field)
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return nil, fmt.Errorf("num: invalid %s %q: %w", field, s, ErrMalformedInput)
		}
		return r, nil
	}

	switch typ {
	case "num":
		re, err := rat("value")
		if err != nil {
			return nil, err
		}
		im := new(big.Rat)
		if _, ok := data["imag"]; ok {
			if im, err = rat("imag"); err != nil {
				return nil, err
			}
		}
		approx, _ := data["approx"].(bool)
		return newNum(re, im, approx), nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		return S(name), nil

	case "undefined":
		return Undef(), nil

	case "add":
		terms, err := subArray("terms", data["terms"])
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subArray("factors", data["factors"])
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subObj("base")
		if err != nil {
			return nil, err
		}
		exp, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "log":
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		base := Expr(E())
		if _, ok := data["base"]; ok {
			if base, err = subObj("base"); err != nil {
				return nil, err
			}
		}
		return LogOf(arg, base), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if !IsKnownFunc(name) {
			return nil, fmt.Errorf("func: unknown function %q: %w", name, ErrMalformedInput)
		}
		arg, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		return FuncOf(name, arg), nil

	case "matrix":
		raw, ok := data["rows"].([]interface{})
		if !ok || len(raw) == 0 {
			return nil, fmt.Errorf("matrix: 'rows' must be a non-empty array: %w", ErrMalformedInput)
		}
		var entries []Expr
		cols := -1
		for i, r := range raw {
			row, err := subArray(fmt.Sprintf("rows[%d]", i), r)
			if err != nil {
				return nil, err
			}
			if cols >= 0 && len(row) != cols {
				return nil, fmt.Errorf("matrix: ragged rows: %w", ErrDimension)
			}
			cols = len(row)
			entries = append(entries, row...)
		}
		return MatrixFromSlice(len(raw), cols, entries)
	}
	return nil, fmt.Errorf("unknown expression type %q: %w", typ, ErrMalformedInput)
}
