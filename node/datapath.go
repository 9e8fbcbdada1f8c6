package node

import (
	"context"
	"fmt"

	"github.com/minemeld-go/flowfabric/fabric"
	"github.com/minemeld-go/flowfabric/obsevent"
)

// Update processes an incoming update for indicator from source (empty
// for a node's own synthetic updates). Legal only in STARTED or
// CHECKPOINT. source must not already have completed its checkpoint —
// an update arriving after its checkpoint barrier has landed is a
// programming violation, not a race to tolerate.
func (f *FT) Update(ctx context.Context, source, indicator string, value map[string]any) error {
	return f.doSync(func() error {
		return f.updateLocked(ctx, source, indicator, value)
	})
}

func (f *FT) updateLocked(ctx context.Context, source, indicator string, value map[string]any) error {
	if !f.state.onDataPath() {
		f.fatal(fmt.Sprintf("update(%s) called outside STARTED/CHECKPOINT", indicator))
	}
	if source != "" {
		if _, done := f.inputsCheckpoint[source]; done {
			f.fatal(fmt.Sprintf("update from %s received after its checkpoint barrier", source))
		}
	}

	filtered, accepted := f.infilters.Apply(indicator, value)
	if f.metrics != nil {
		f.metrics.RecordUpdate(f.name, accepted)
	}
	if accepted {
		f.hooks.FilteredUpdate(ctx, source, indicator, filtered)
		return nil
	}

	// Dropped by the infilters: downstream state for this indicator, if
	// any, is now stale and must be retracted rather than silently
	// ignored. The withdraw carries the original, unfiltered value.
	if f.metrics != nil {
		f.metrics.RecordDrop(f.name, "infilter")
	}
	f.hooks.FilteredWithdraw(ctx, source, indicator, value)
	return nil
}

// Withdraw processes an incoming withdraw for indicator from source.
// Legal only in STARTED or CHECKPOINT. Withdraws are never subject to
// the infilters: a retraction always reaches Hooks.
func (f *FT) Withdraw(ctx context.Context, source, indicator string, value map[string]any) error {
	return f.doSync(func() error {
		return f.withdrawLocked(ctx, source, indicator, value)
	})
}

func (f *FT) withdrawLocked(ctx context.Context, source, indicator string, value map[string]any) error {
	if !f.state.onDataPath() {
		f.fatal(fmt.Sprintf("withdraw(%s) called outside STARTED/CHECKPOINT", indicator))
	}
	if source != "" {
		if _, done := f.inputsCheckpoint[source]; done {
			f.fatal(fmt.Sprintf("withdraw from %s received after its checkpoint barrier", source))
		}
	}
	if f.metrics != nil {
		f.metrics.RecordWithdraw(f.name)
	}
	f.hooks.FilteredWithdraw(ctx, source, indicator, value)
	return nil
}

// Checkpoint records that source has reached marker in the Chandy/
// Lamport-style barrier. Once every input has reported the same
// marker, the barrier is complete: the marker is persisted, forwarded
// downstream, and the node moves to IDLE. Divergent markers across
// inputs are fatal, as is a second report from a source with a marker
// different from the one it already reported; a repeat of the same
// marker from the same source is ignored.
func (f *FT) Checkpoint(ctx context.Context, source, marker string) error {
	return f.doSync(func() error {
		return f.checkpointLocked(ctx, source, marker)
	})
}

func (f *FT) checkpointLocked(ctx context.Context, source, marker string) error {
	if !f.state.onDataPath() {
		f.fatal("checkpoint called outside STARTED/CHECKPOINT")
	}
	if len(f.inputs) == 0 {
		f.fatal("checkpoint received on a source node")
	}

	if existing, seen := f.inputsCheckpoint[source]; seen {
		if existing != marker {
			f.fatal(fmt.Sprintf("divergent checkpoint marker from %s: had %q, got %q", source, existing, marker))
		}
		return nil // duplicate delivery of the same barrier marker: ignore
	}
	f.inputsCheckpoint[source] = marker
	f.transition(StateCheckpoint)

	if len(f.inputsCheckpoint) < len(f.inputs) {
		return nil // barrier not yet aligned across all inputs
	}

	for in, m := range f.inputsCheckpoint {
		if m != marker {
			f.fatal(fmt.Sprintf("divergent checkpoint marker: %s has %q, %s has %q", source, marker, in, m))
		}
	}

	if err := f.store.Store(f.name, marker); err != nil {
		f.fatal("checkpoint store write failed: " + err.Error())
	}
	f.lastCheckpoint = marker
	f.hasLastCheckpoint = true
	f.emitCheckpointLocked(ctx, marker)
	f.transition(StateIdle)
	if f.metrics != nil {
		f.metrics.RecordCheckpoint(f.name)
	}
	return nil
}

// EmitUpdate publishes an update for indicator through the node's
// outfilters. A record the outfilters drop is forwarded as a withdraw
// of the original value instead of being silently swallowed, mirroring
// the inbound asymmetry. A no-op if the node requested no output
// channel.
func (f *FT) EmitUpdate(ctx context.Context, indicator string, value map[string]any) error {
	return f.doSync(func() error {
		return f.emitUpdateLocked(ctx, indicator, value)
	})
}

func (f *FT) emitUpdateLocked(ctx context.Context, indicator string, value map[string]any) error {
	if !f.state.onDataPath() {
		f.fatal(fmt.Sprintf("emit update(%s) called outside STARTED/CHECKPOINT", indicator))
	}
	if f.output == nil {
		return nil
	}

	filtered, accepted := f.outfilters.Apply(indicator, value)
	if accepted {
		return f.output.Publish(ctx, fabric.TopicUpdate, fabric.UpdateMsg{Indicator: indicator, Value: filtered}.Payload())
	}
	if f.metrics != nil {
		f.metrics.RecordDrop(f.name, "outfilter")
	}
	return f.output.Publish(ctx, fabric.TopicWithdraw, fabric.WithdrawMsg{Indicator: indicator, Value: value}.Payload())
}

// EmitWithdraw publishes a withdraw for indicator. Withdraws bypass the
// outfilters entirely: a retraction is never conditionally dropped.
func (f *FT) EmitWithdraw(ctx context.Context, indicator string, value map[string]any) error {
	return f.doSync(func() error {
		return f.emitWithdrawLocked(ctx, indicator, value)
	})
}

func (f *FT) emitWithdrawLocked(ctx context.Context, indicator string, value map[string]any) error {
	if !f.state.onDataPath() {
		f.fatal(fmt.Sprintf("emit withdraw(%s) called outside STARTED/CHECKPOINT", indicator))
	}
	if f.output == nil {
		return nil
	}
	return f.output.Publish(ctx, fabric.TopicWithdraw, fabric.WithdrawMsg{Indicator: indicator, Value: value}.Payload())
}

// EmitCheckpoint forwards marker downstream. Called internally once a
// node's own barrier (source checkpoint or aligned-input barrier) has
// resolved; not part of a node's own Hooks surface.
func (f *FT) emitCheckpointLocked(ctx context.Context, marker string) {
	if f.output == nil {
		return
	}
	f.logger.Infof("%s: checkpoint %s", f.name, marker)
	f.emitter.Emit(obsevent.Event{NodeID: f.name, Msg: "checkpoint", Meta: map[string]any{"marker": marker}})
	_ = f.output.Publish(ctx, fabric.TopicCheckpoint, fabric.CheckpointMsg{Value: marker}.Payload())
}
