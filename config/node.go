// Package config provides declarative node and graph configuration:
// the functional-options layer a driving program (flowctl, tests)
// uses to assemble a node.FT without hand-threading every collaborator
// through node.New.
package config

import (
	"fmt"

	"github.com/minemeld-go/flowfabric/checkpoint"
	"github.com/minemeld-go/flowfabric/filter"
	"github.com/minemeld-go/flowfabric/node"
	"github.com/minemeld-go/flowfabric/obsevent"
	"github.com/minemeld-go/flowfabric/obslog"
	"github.com/minemeld-go/flowfabric/obsmetrics"
)

// NodeConfig collects everything needed to construct one node.FT.
// Inputs/Output describe graph wiring; Build does not apply them, they
// are what the caller passes to the built node's Connect. The rest
// mirror node.Options plus the filter chain specs node.New also
// requires.
type NodeConfig struct {
	Name   string
	Inputs []string
	Output bool

	InFilters  []filter.Spec
	OutFilters []filter.Spec

	Hooks node.Hooks

	Query     node.QueryHooks
	Lifecycle node.LifecycleHooks

	Logger  *obslog.Logger
	Emitter obsevent.Emitter
	Metrics *obsmetrics.Metrics
	OnFatal func(*node.FatalError)
}

// Option mutates a NodeConfig being assembled with New.
type Option func(*NodeConfig)

// WithInputs sets the node's upstream input names.
func WithInputs(inputs ...string) Option {
	return func(c *NodeConfig) { c.Inputs = inputs }
}

// WithOutput requests an output publisher for the node.
func WithOutput() Option {
	return func(c *NodeConfig) { c.Output = true }
}

// WithInFilters sets the node's inbound filter chain specs.
func WithInFilters(specs ...filter.Spec) Option {
	return func(c *NodeConfig) { c.InFilters = specs }
}

// WithOutFilters sets the node's outbound filter chain specs.
func WithOutFilters(specs ...filter.Spec) Option {
	return func(c *NodeConfig) { c.OutFilters = specs }
}

// WithQueryHooks overrides the default NopQueryHooks.
func WithQueryHooks(q node.QueryHooks) Option {
	return func(c *NodeConfig) { c.Query = q }
}

// WithLifecycleHooks overrides the default NopLifecycleHooks.
func WithLifecycleHooks(l node.LifecycleHooks) Option {
	return func(c *NodeConfig) { c.Lifecycle = l }
}

// WithLogger overrides the default obslog.Default() logger.
func WithLogger(logger *obslog.Logger) Option {
	return func(c *NodeConfig) { c.Logger = logger }
}

// WithEmitter overrides the default no-op event emitter.
func WithEmitter(emitter obsevent.Emitter) Option {
	return func(c *NodeConfig) { c.Emitter = emitter }
}

// WithMetrics attaches a Prometheus metrics collector.
func WithMetrics(metrics *obsmetrics.Metrics) Option {
	return func(c *NodeConfig) { c.Metrics = metrics }
}

// WithOnFatal registers a callback invoked exactly once if the node
// halts on a FatalError.
func WithOnFatal(fn func(*node.FatalError)) Option {
	return func(c *NodeConfig) { c.OnFatal = fn }
}

// New assembles a NodeConfig named name from opts.
func New(name string, opts ...Option) NodeConfig {
	c := NodeConfig{Name: name}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Build constructs the node.FT this config describes, given the
// chassis it runs on, its checkpoint store, and its Hooks
// implementation (the collaborators config does not supply itself).
func (c NodeConfig) Build(chassis node.Chassis, store checkpoint.Store, hooks node.Hooks) (*node.FT, error) {
	if hooks == nil {
		return nil, fmt.Errorf("config: node %s: hooks required", c.Name)
	}

	inChain, err := filter.NewChain(c.InFilters)
	if err != nil {
		return nil, fmt.Errorf("config: node %s: infilters: %w", c.Name, err)
	}
	outChain, err := filter.NewChain(c.OutFilters)
	if err != nil {
		return nil, fmt.Errorf("config: node %s: outfilters: %w", c.Name, err)
	}

	return node.New(c.Name, chassis, inChain, outChain, store, hooks, node.Options{
		Query:     c.Query,
		Lifecycle: c.Lifecycle,
		Logger:    c.Logger,
		Emitter:   c.Emitter,
		Metrics:   c.Metrics,
		OnFatal:   c.OnFatal,
	})
}

// GraphConfig is the declarative description of an entire node graph:
// every node's config plus the checkpoint root directory shared by
// every node's FileStore.
type GraphConfig struct {
	CheckpointRoot string
	Nodes          []NodeConfig
}
