package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChainDefaultAccept(t *testing.T) {
	c, err := NewChain(nil)
	require.NoError(t, err)

	out, accepted := c.Apply("1.2.3.4", map[string]any{"type": "ip"})
	require.True(t, accepted)
	require.Equal(t, map[string]any{"type": "ip"}, out)
}

func TestChainDefaultFilterNaming(t *testing.T) {
	c, err := NewChain([]Spec{
		{Actions: []Action{ActionDrop}},
	})
	require.NoError(t, err)
	require.Equal(t, "filter_0", c.filters[0].Name)
}

func TestChainAcceptDoesNotMutateCaller(t *testing.T) {
	c, err := NewChain([]Spec{
		{Name: "strip", Actions: []Action{ActionAccept}},
	})
	require.NoError(t, err)

	original := map[string]any{"score": 80}
	out, accepted := c.Apply("i", original)
	require.True(t, accepted)

	out["score"] = 999
	require.Equal(t, 80, original["score"], "Apply must not let callers mutate through the returned map")
}

func TestChainNilValueAcceptReturnsNil(t *testing.T) {
	c, err := NewChain([]Spec{
		{Conditions: []ConditionSpec{{Path: "_indicator", Op: OpExists}}, Actions: []Action{ActionAccept}},
	})
	require.NoError(t, err)

	out, accepted := c.Apply("i", nil)
	require.True(t, accepted)
	require.Nil(t, out)
}

func TestChainDropFinalAction(t *testing.T) {
	c, err := NewChain([]Spec{
		{
			Name:       "high-score",
			Conditions: []ConditionSpec{{Path: "score", Op: OpGte, Value: 50.0}},
			Actions:    []Action{ActionAccept},
		},
		{
			Name:    "default-drop",
			Actions: []Action{ActionDrop},
		},
	})
	require.NoError(t, err)

	out, accepted := c.Apply("i", map[string]any{"score": 80.0})
	require.True(t, accepted)
	require.Equal(t, map[string]any{"score": 80.0}, out)

	_, accepted = c.Apply("i", map[string]any{"score": 10.0})
	require.False(t, accepted)
}

func TestConditionOperators(t *testing.T) {
	tests := []struct {
		name string
		spec ConditionSpec
		rec  map[string]any
		want bool
	}{
		{"exists-true", ConditionSpec{Path: "a.b", Op: OpExists}, map[string]any{"a": map[string]any{"b": 1}}, true},
		{"exists-false", ConditionSpec{Path: "a.b", Op: OpExists}, map[string]any{"a": map[string]any{}}, false},
		{"eq", ConditionSpec{Path: "t", Op: OpEq, Value: "ip"}, map[string]any{"t": "ip"}, true},
		{"neq-missing", ConditionSpec{Path: "t", Op: OpNeq, Value: "ip"}, map[string]any{}, true},
		{"gt", ConditionSpec{Path: "score", Op: OpGt, Value: 10.0}, map[string]any{"score": 20.0}, true},
		{"in", ConditionSpec{Path: "t", Op: OpIn, Value: []any{"ip", "domain"}}, map[string]any{"t": "domain"}, true},
		{"contains-slice", ConditionSpec{Path: "tags", Op: OpContains, Value: "x"}, map[string]any{"tags": []any{"x", "y"}}, true},
		{"contains-string", ConditionSpec{Path: "t", Op: OpContains, Value: "do"}, map[string]any{"t": "domain"}, true},
		{"regex", ConditionSpec{Path: "t", Op: OpRegex, Value: "^ip$"}, map[string]any{"t": "ip"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCondition(tt.spec)
			require.NoError(t, err)
			require.Equal(t, tt.want, c.Eval(tt.rec))
		})
	}
}

func TestNewConditionRejectsUnknownOperator(t *testing.T) {
	_, err := NewCondition(ConditionSpec{Path: "a", Op: "bogus"})
	require.Error(t, err)
}

func TestNewConditionRejectsBadRegex(t *testing.T) {
	_, err := NewCondition(ConditionSpec{Path: "a", Op: OpRegex, Value: "("})
	require.Error(t, err)
}
