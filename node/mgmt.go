package node

import "context"

// StateInfo is the result of the mgmt-bus state_info() query.
type StateInfo struct {
	Checkpoint    string
	HasCheckpoint bool
	State         State
	IsSource      bool
}

// StateInfo implements the mgmt-bus state_info() operation.
func (f *FT) StateInfo(ctx context.Context) (StateInfo, error) {
	var info StateInfo
	err := f.doSync(func() error {
		info = StateInfo{
			Checkpoint:    f.lastCheckpoint,
			HasCheckpoint: f.hasLastCheckpoint,
			State:         f.state,
			IsSource:      len(f.inputs) == 0,
		}
		return nil
	})
	return info, err
}

// Initialize implements the mgmt-bus initialize() operation:
// CONNECTED -> INIT.
func (f *FT) Initialize(ctx context.Context) error {
	return f.doSync(func() error {
		if f.state != StateConnected {
			f.fatal("initialize called outside CONNECTED")
		}
		f.transition(StateInit)
		return nil
	})
}

// Rebuild implements the mgmt-bus rebuild() operation: INIT ->
// REBUILDING -> (hook) -> INIT.
func (f *FT) Rebuild(ctx context.Context) error {
	return f.doSync(func() error {
		if f.state != StateInit {
			f.fatal("rebuild called outside INIT")
		}
		f.transition(StateRebuilding)
		f.lifecycle.Rebuild(ctx)
		f.inputsCheckpoint = make(map[string]string)
		f.transition(StateInit)
		return nil
	})
}

// Reset implements the mgmt-bus reset() operation: INIT -> RESET ->
// (hook) -> INIT. The hook must discard any accumulated node state.
func (f *FT) Reset(ctx context.Context) error {
	return f.doSync(func() error {
		if f.state != StateInit {
			f.fatal("reset called outside INIT")
		}
		f.transition(StateReset)
		f.lifecycle.Reset(ctx)
		f.inputsCheckpoint = make(map[string]string)
		f.transition(StateInit)
		return nil
	})
}

// Start implements the mgmt-bus start() operation: INIT -> STARTED.
func (f *FT) Start(ctx context.Context) error {
	return f.doSync(func() error {
		if f.state != StateInit {
			f.fatal("start called outside INIT")
		}
		f.inputsCheckpoint = make(map[string]string)
		f.transition(StateStarted)
		return nil
	})
}

// Stop implements the mgmt-bus stop() operation: STARTED|IDLE ->
// STOPPED.
func (f *FT) Stop(ctx context.Context) error {
	return f.doSync(func() error {
		if f.state != StateStarted && f.state != StateIdle {
			f.fatal("stop called outside STARTED or IDLE")
		}
		f.transition(StateStopped)
		return nil
	})
}

// MgmtCheckpoint implements the mgmt-bus checkpoint(marker) operation.
// It is only meaningful on a source (zero inputs); a non-source node
// ignores it, since its checkpoint is driven by the barrier instead.
func (f *FT) MgmtCheckpoint(ctx context.Context, marker string) (string, error) {
	var outcome string
	err := f.doSync(func() error {
		if len(f.inputs) != 0 {
			outcome = "ignored"
			return nil
		}

		if err := f.store.Store(f.name, marker); err != nil {
			f.fatal("checkpoint store write failed: " + err.Error())
		}
		f.lastCheckpoint = marker
		f.hasLastCheckpoint = true
		f.transition(StateIdle)
		f.emitCheckpointLocked(ctx, marker)
		if f.metrics != nil {
			f.metrics.RecordCheckpoint(f.name)
		}

		outcome = "OK"
		return nil
	})
	return outcome, err
}
