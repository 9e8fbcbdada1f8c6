package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/minemeld-go/flowfabric/node"
)

// passthroughHooks forwards every accepted update (and every explicit
// withdraw) straight to its own node's output, applying only the
// node's own outfilters. selfRef is resolved after node.New returns,
// since the node must exist before anything can emit through it.
type passthroughHooks struct {
	selfRef *node.FT
}

func (h *passthroughHooks) FilteredUpdate(ctx context.Context, _ string, indicator string, value map[string]any) {
	if err := h.selfRef.EmitUpdate(ctx, indicator, value); err != nil {
		fmt.Printf("passthrough: emit update %s: %v\n", indicator, err)
	}
}

func (h *passthroughHooks) FilteredWithdraw(ctx context.Context, _ string, indicator string, value map[string]any) {
	if err := h.selfRef.EmitWithdraw(ctx, indicator, value); err != nil {
		fmt.Printf("passthrough: emit withdraw %s: %v\n", indicator, err)
	}
}

// sinkHooks records every update/withdraw it receives, for a terminal
// node with no output channel.
type sinkHooks struct {
	mu    sync.Mutex
	state map[string]map[string]any
}

func newSinkHooks() *sinkHooks {
	return &sinkHooks{state: make(map[string]map[string]any)}
}

func (h *sinkHooks) FilteredUpdate(_ context.Context, _ string, indicator string, value map[string]any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state[indicator] = value
}

func (h *sinkHooks) FilteredWithdraw(_ context.Context, _ string, indicator string, _ map[string]any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.state, indicator)
}

func (h *sinkHooks) snapshot() map[string]map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]map[string]any, len(h.state))
	for k, v := range h.state {
		out[k] = v
	}
	return out
}
