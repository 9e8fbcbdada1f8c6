// Package filter implements the declarative condition/filter engine that
// rewrites or drops indicator records as they enter or leave a node.
package filter

import (
	"fmt"
	"regexp"
	"strings"
)

// Op names a condition operator evaluated against a single dotted path
// into the augmented record (the record plus its synthetic "_indicator"
// field).
type Op string

// Supported condition operators. Unknown operators are rejected at
// construction time, not while the stream is flowing.
const (
	OpExists   Op = "exists"
	OpEq       Op = "eq"
	OpNeq      Op = "neq"
	OpGt       Op = "gt"
	OpGte      Op = "gte"
	OpLt       Op = "lt"
	OpLte      Op = "lte"
	OpIn       Op = "in"
	OpContains Op = "contains"
	OpRegex    Op = "regex"
)

// ConditionSpec is the declarative description of a single Condition, as
// it would arrive from node configuration.
type ConditionSpec struct {
	Path  string `json:"path"`
	Op    Op     `json:"op"`
	Value any    `json:"value,omitempty"`
}

// Condition is a pure boolean predicate over an indicator record. It is
// built once from a ConditionSpec and reused for every evaluation.
type Condition struct {
	path  []string
	op    Op
	value any
	re    *regexp.Regexp
}

// NewCondition builds a Condition from its declarative spec. It fails
// fast on an unrecognized operator or an unusable regex so that a bad
// filter definition never reaches the data path.
func NewCondition(spec ConditionSpec) (*Condition, error) {
	c := &Condition{
		path:  strings.Split(spec.Path, "."),
		op:    spec.Op,
		value: spec.Value,
	}

	switch spec.Op {
	case OpExists, OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpIn, OpContains:
		// no extra setup required
	case OpRegex:
		pattern, ok := spec.Value.(string)
		if !ok {
			return nil, fmt.Errorf("filter: regex condition on %q requires a string value", spec.Path)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("filter: regex condition on %q: %w", spec.Path, err)
		}
		c.re = re
	default:
		return nil, fmt.Errorf("filter: unknown condition operator %q", spec.Op)
	}

	return c, nil
}

// Eval evaluates the condition against an augmented record. It never
// mutates rec.
func (c *Condition) Eval(rec map[string]any) bool {
	v, present := lookup(rec, c.path)

	switch c.op {
	case OpExists:
		return present
	case OpEq:
		return present && compareEqual(v, c.value)
	case OpNeq:
		return !present || !compareEqual(v, c.value)
	case OpGt:
		cmp, ok := compareOrdered(v, c.value)
		return ok && cmp > 0
	case OpGte:
		cmp, ok := compareOrdered(v, c.value)
		return ok && cmp >= 0
	case OpLt:
		cmp, ok := compareOrdered(v, c.value)
		return ok && cmp < 0
	case OpLte:
		cmp, ok := compareOrdered(v, c.value)
		return ok && cmp <= 0
	case OpIn:
		return present && valueIn(v, c.value)
	case OpContains:
		return present && valueContains(v, c.value)
	case OpRegex:
		s, ok := v.(string)
		return present && ok && c.re.MatchString(s)
	default:
		return false
	}
}

func lookup(rec map[string]any, path []string) (any, bool) {
	var cur any = rec
	for _, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func compareEqual(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func compareOrdered(a, b any) (int, bool) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	default:
		return 0, true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func valueIn(v, set any) bool {
	items, ok := set.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if compareEqual(v, item) {
			return true
		}
	}
	return false
}

func valueContains(v, needle any) bool {
	switch coll := v.(type) {
	case []any:
		for _, item := range coll {
			if compareEqual(item, needle) {
				return true
			}
		}
		return false
	case string:
		s, ok := needle.(string)
		return ok && strings.Contains(coll, s)
	default:
		return false
	}
}
