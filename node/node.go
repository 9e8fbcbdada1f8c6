package node

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/minemeld-go/flowfabric/checkpoint"
	"github.com/minemeld-go/flowfabric/fabric"
	"github.com/minemeld-go/flowfabric/filter"
	"github.com/minemeld-go/flowfabric/obsevent"
	"github.com/minemeld-go/flowfabric/obslog"
	"github.com/minemeld-go/flowfabric/obsmetrics"
)

// FT (flow transformer) is a node: the single-threaded cooperative actor
// that owns one point in the dataflow graph. All of its exported methods
// are safe to call concurrently from multiple goroutines — every one of
// them marshals onto the node's own run loop, so the node's business
// logic (Hooks, QueryHooks, LifecycleHooks) never observes two calls in
// flight at once.
type FT struct {
	name    string
	chassis Chassis

	infilters  *filter.Chain
	outfilters *filter.Chain
	store      checkpoint.Store

	hooks     Hooks
	query     QueryHooks
	lifecycle LifecycleHooks

	logger  *obslog.Logger
	emitter obsevent.Emitter
	metrics *obsmetrics.Metrics

	onFatal func(*FatalError)

	// Fields below this point are only ever touched from inside the run
	// loop goroutine (via cmds), except where noted.
	state             State
	inputs            []string
	output            fabric.Publisher
	inputsCheckpoint  map[string]string
	lastCheckpoint    string
	hasLastCheckpoint bool

	cmds   chan func()
	halted atomic.Bool
}

// Options configures optional collaborators on construction. All fields
// are optional; sensible no-op/default implementations are substituted
// for anything left nil.
type Options struct {
	Query     QueryHooks
	Lifecycle LifecycleHooks
	Logger    *obslog.Logger
	Emitter   obsevent.Emitter
	Metrics   *obsmetrics.Metrics
	OnFatal   func(*FatalError)
}

// New constructs an FT in state READY: it loads any prior checkpoint
// from store and registers itself on the chassis' management bus, but
// does not yet touch the fabric — that happens in Connect.
func New(name string, chassis Chassis, infilters, outfilters *filter.Chain, store checkpoint.Store, hooks Hooks, opts Options) (*FT, error) {
	if hooks == nil {
		return nil, fmt.Errorf("node %s: Hooks must not be nil", name)
	}

	f := &FT{
		name:       name,
		chassis:    chassis,
		infilters:  infilters,
		outfilters: outfilters,
		store:      store,
		hooks:      hooks,
		query:      opts.Query,
		lifecycle:  opts.Lifecycle,
		logger:     opts.Logger,
		emitter:    opts.Emitter,
		metrics:    opts.Metrics,
		onFatal:    opts.OnFatal,
		state:      StateReady,
		cmds:       make(chan func(), 64),
	}
	if f.query == nil {
		f.query = NopQueryHooks{}
	}
	if f.lifecycle == nil {
		f.lifecycle = NopLifecycleHooks{}
	}
	if f.logger == nil {
		f.logger = obslog.Default()
	}
	if f.emitter == nil {
		f.emitter = obsevent.Null()
	}

	if marker, ok, err := store.Load(name); err != nil {
		return nil, fmt.Errorf("node %s: read checkpoint: %w", name, err)
	} else if ok {
		f.lastCheckpoint = marker
		f.hasLastCheckpoint = true
	}

	if err := chassis.RequestMgmtbusChannel(f); err != nil {
		return nil, fmt.Errorf("node %s: request mgmtbus channel: %w", name, err)
	}

	go f.runLoop()

	return f, nil
}

// Name returns the node's identity.
func (f *FT) Name() string { return f.name }

func (f *FT) runLoop() {
	for cmd := range f.cmds {
		cmd()
	}
}

// doSync marshals fn onto the run loop and blocks until it completes. A
// *FatalError panic raised from within fn halts the node and is returned
// as an error instead of propagating further.
func (f *FT) doSync(fn func() error) error {
	if f.halted.Load() {
		return ErrHalted
	}

	result := make(chan error, 1)
	f.cmds <- func() {
		defer func() {
			if r := recover(); r != nil {
				ferr, ok := r.(*FatalError)
				if !ok {
					panic(r)
				}
				f.halted.Store(true)
				f.logger.Errorf("%s: %s", f.name, ferr.Error())
				f.emitter.Emit(obsevent.Event{NodeID: f.name, Msg: "fatal", Meta: map[string]any{"reason": ferr.Reason, "state": ferr.State.String()}})
				if f.metrics != nil {
					f.metrics.RecordFatal(f.name)
				}
				if f.onFatal != nil {
					f.onFatal(ferr)
				}
				result <- ferr
			}
		}()
		result <- fn()
	}
	return <-result
}

func (f *FT) fatal(reason string) {
	panic(&FatalError{Node: f.name, State: f.state, Reason: reason})
}

// transition moves the node to state to, updating the state gauge if
// metrics are configured. Must be called from within the run loop.
func (f *FT) transition(to State) {
	if f.metrics != nil {
		f.metrics.SetState(f.name, f.state.String(), to.String())
	}
	f.state = to
}

// Connect requests the node's input subscriptions and (optionally)
// output publisher from the chassis, transitioning READY -> CONNECTED.
// Legal only from READY.
func (f *FT) Connect(ctx context.Context, inputs []string, wantOutput bool) error {
	return f.doSync(func() error {
		if f.state != StateReady {
			f.fatal("connect called in non-READY state")
		}

		for _, in := range inputs {
			if err := f.chassis.RequestSubChannel(f.name, f, in, []string{"update", "withdraw", "checkpoint"}); err != nil {
				return fmt.Errorf("node %s: subscribe to %s: %w", f.name, in, err)
			}
		}
		f.inputs = inputs
		f.inputsCheckpoint = make(map[string]string)

		if wantOutput {
			pub, err := f.chassis.RequestPubChannel(f.name)
			if err != nil {
				return fmt.Errorf("node %s: request pub channel: %w", f.name, err)
			}
			f.output = pub
		}

		if err := f.chassis.RequestRPCChannel(f.name, f, []string{
			"update", "withdraw", "checkpoint", "get", "get_all", "get_range", "length",
		}); err != nil {
			return fmt.Errorf("node %s: request rpc channel: %w", f.name, err)
		}

		f.transition(StateConnected)
		return nil
	})
}
