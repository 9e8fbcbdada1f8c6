package filter

import "fmt"

// Action names a terminal (or non-terminal) step in a filter's action
// chain. Only "accept" and "drop" are terminal; any other action is
// evaluated but does not decide the outcome (reserved for future
// side-effecting actions such as attribute rewrites).
type Action string

// Terminal actions. The first one encountered in a matching filter's
// action list decides the outcome.
const (
	ActionAccept Action = "accept"
	ActionDrop   Action = "drop"
)

// Spec is the declarative description of a single named Filter.
type Spec struct {
	Name       string          `json:"name,omitempty"`
	Conditions []ConditionSpec `json:"conditions,omitempty"`
	Actions    []Action        `json:"actions"`
}

// Filter is a named conjunction of Conditions plus an ordered action
// list. Conditions form an implicit logical AND; an empty condition list
// vacuously matches every record.
type Filter struct {
	Name       string
	Conditions []*Condition
	Actions    []Action
}

func build(index int, spec Spec) (*Filter, error) {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("filter_%d", index)
	}

	f := &Filter{Name: name, Actions: spec.Actions}
	for _, cs := range spec.Conditions {
		c, err := NewCondition(cs)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", name, err)
		}
		f.Conditions = append(f.Conditions, c)
	}
	return f, nil
}

func (f *Filter) matches(rec map[string]any) bool {
	for _, c := range f.Conditions {
		if !c.Eval(rec) {
			return false
		}
	}
	return true
}

// Chain is an ordered list of Filters evaluated against a single
// indicator record. It is pure: Apply never mutates the caller's value.
type Chain struct {
	filters []*Filter
}

// NewChain builds a Chain from its declarative specs, assigning the
// default name "filter_<index>" to any filter that does not declare one.
func NewChain(specs []Spec) (*Chain, error) {
	c := &Chain{}
	for i, spec := range specs {
		f, err := build(i, spec)
		if err != nil {
			return nil, err
		}
		c.filters = append(c.filters, f)
	}
	return c, nil
}

// Apply evaluates the chain against (indicator, value) in declared
// order. value may be nil, in which case evaluation proceeds against an
// otherwise-empty record containing only "_indicator".
//
// The second return value reports whether the record survives: false
// means the record was dropped and both returned values must be
// discarded by the caller. On a true result, the returned map has
// "_indicator" stripped and is a defensive copy distinct from value — the
// caller's map is never mutated.
func (c *Chain) Apply(indicator string, value map[string]any) (map[string]any, bool) {
	rec := make(map[string]any, len(value)+1)
	for k, v := range value {
		rec[k] = v
	}
	rec["_indicator"] = indicator

	for _, f := range c.filters {
		if !f.matches(rec) {
			continue
		}
		for _, a := range f.Actions {
			switch a {
			case ActionAccept:
				return acceptResult(value, rec), true
			case ActionDrop:
				return nil, false
			}
		}
	}

	// No filter matched: default is accept.
	return acceptResult(value, rec), true
}

func acceptResult(original map[string]any, rec map[string]any) map[string]any {
	if original == nil {
		return nil
	}
	out := make(map[string]any, len(rec)-1)
	for k, v := range rec {
		if k == "_indicator" {
			continue
		}
		out[k] = v
	}
	return out
}
