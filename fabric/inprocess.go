package fabric

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultRPCTimeout is used by SendRPC when the caller passes 0.
const DefaultRPCTimeout = 30 * time.Second

type rpcServer struct {
	handler RPCHandler
	allowed map[string]bool
}

type subscription struct {
	subscriberName string
	handler        SubHandler
	allowed        map[string]bool
	queue          chan deliverable
}

type deliverable struct {
	source string
	topic  string
	payload map[string]any
}

type publisher struct {
	fab  *InProcess
	name string
	mu   sync.Mutex
}

// Publish implements Publisher. Fan-out to every subscriber happens
// while holding the publisher's own lock, so concurrent Publish calls
// from the same publisher enqueue to each subscriber in a single total
// order — the per-publisher FIFO guarantee.
func (p *publisher) Publish(ctx context.Context, topic string, payload map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.fab.mu.RLock()
	subs := append([]*subscription(nil), p.fab.subsBySource[p.name]...)
	p.fab.mu.RUnlock()

	for _, sub := range subs {
		if !sub.allowed[topic] {
			continue
		}
		select {
		case sub.queue <- deliverable{source: p.name, topic: topic, payload: payload}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// InProcess is a concrete Fabric for a single OS process hosting many
// nodes. Each subscription is drained by its own goroutine so that a
// slow subscriber does not hold up delivery to another until its
// 256-entry queue is full (Publish then waits for room), while
// messages bound for the same subscriber are processed strictly in the
// order they were published (the queue channel is FIFO and has exactly
// one reader).
type InProcess struct {
	mu sync.RWMutex

	publishers   map[string]*publisher
	rpcServers   map[string]rpcServer
	subsBySource map[string][]*subscription

	failureListeners []FailureListener
	failed           bool

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewInProcess returns a ready-to-use in-process fabric. Call Start
// before any channel traffic is expected and Stop to drain subscriber
// goroutines on shutdown.
func NewInProcess() *InProcess {
	return &InProcess{
		publishers:   make(map[string]*publisher),
		rpcServers:   make(map[string]rpcServer),
		subsBySource: make(map[string][]*subscription),
		stopCh:       make(chan struct{}),
	}
}

// Start implements Fabric. It is a no-op for InProcess: subscriber
// goroutines are spawned as subscriptions are requested, not at Start
// time, since channels may be requested after construction but before
// the graph is fully wired.
func (f *InProcess) Start() error { return nil }

// Stop implements Fabric, signalling every subscriber drain goroutine to
// exit and waiting for them to do so.
func (f *InProcess) Stop() error {
	f.stopOnce.Do(func() {
		close(f.stopCh)
	})
	f.wg.Wait()
	return nil
}

// RequestRPCServerChannel implements Fabric.
func (f *InProcess) RequestRPCServerChannel(name string, handler RPCHandler, allowedMethods []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.rpcServers[name] = rpcServer{handler: handler, allowed: toSet(allowedMethods)}
	return nil
}

// RequestPubChannel implements Fabric.
func (f *InProcess) RequestPubChannel(name string) (Publisher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.publishers[name]
	if !ok {
		p = &publisher{fab: f, name: name}
		f.publishers[name] = p
	}
	return p, nil
}

// RequestSubChannel implements Fabric. It starts one drain goroutine per
// subscription that invokes handler.HandleMessage in delivery order
// until Stop is called.
func (f *InProcess) RequestSubChannel(subscriberName string, handler SubHandler, sourceName string, allowedMethods []string) error {
	sub := &subscription{
		subscriberName: subscriberName,
		handler:        handler,
		allowed:        toSet(allowedMethods),
		queue:          make(chan deliverable, 256),
	}

	f.mu.Lock()
	f.subsBySource[sourceName] = append(f.subsBySource[sourceName], sub)
	f.mu.Unlock()

	f.wg.Add(1)
	go f.drain(sub)
	return nil
}

func (f *InProcess) drain(sub *subscription) {
	defer f.wg.Done()
	for {
		select {
		case d := <-sub.queue:
			// Errors from the handler are the node's own business (it
			// halts itself on a fatal); the fabric has nothing useful to
			// do with them beyond making sure delivery order held, which
			// calling HandleMessage synchronously here guarantees.
			_ = sub.handler.HandleMessage(context.Background(), d.source, d.topic, d.payload)
		case <-f.stopCh:
			return
		}
	}
}

// SendRPC implements Fabric.
func (f *InProcess) SendRPC(ctx context.Context, source, destination, method string, params map[string]any, timeout time.Duration) (any, error) {
	f.mu.RLock()
	server, ok := f.rpcServers[destination]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDestination, destination)
	}
	if !server.allowed[method] {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotAllowed, destination, method)
	}

	if timeout <= 0 {
		timeout = DefaultRPCTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	withSource := make(map[string]any, len(params)+1)
	for k, v := range params {
		withSource[k] = v
	}
	withSource["source"] = source

	type rpcResult struct {
		val any
		err error
	}
	resultCh := make(chan rpcResult, 1)
	go func() {
		val, err := server.handler.HandleRPC(callCtx, method, withSource)
		resultCh <- rpcResult{val, err}
	}()

	select {
	case r := <-resultCh:
		return r.val, r.err
	case <-callCtx.Done():
		return nil, fmt.Errorf("%w: %s.%s after %s", ErrTimeout, destination, method, timeout)
	}
}

// AddFailureListener implements Fabric.
func (f *InProcess) AddFailureListener(l FailureListener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failureListeners = append(f.failureListeners, l)
}

// Fail marks the fabric as transport-failed and invokes every
// registered listener exactly once. Intended for tests and for
// transports layered on top of InProcess that detect a real failure.
func (f *InProcess) Fail(err error) {
	f.mu.Lock()
	if f.failed {
		f.mu.Unlock()
		return
	}
	f.failed = true
	listeners := append([]FailureListener(nil), f.failureListeners...)
	f.mu.Unlock()

	for _, l := range listeners {
		l(err)
	}
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
