// Package fabric defines the abstract pub/sub + RPC substrate that node
// runtimes communicate over, and provides an in-process implementation of
// it. Any ordered pub/sub + RPC substrate satisfying this contract can
// back a graph; the node runtime never depends on the concrete
// transport.
package fabric

import (
	"context"
	"errors"
	"time"
)

// ErrMethodNotAllowed is returned when a caller invokes an RPC method
// that was not in the server channel's allow-list. A published topic
// outside a subscription's allow-list is not delivered to that
// subscriber, and Publish reports no error for it.
var ErrMethodNotAllowed = errors.New("fabric: method not allowed")

// ErrUnknownDestination is returned by SendRPC when no server channel is
// registered under the requested name.
var ErrUnknownDestination = errors.New("fabric: unknown destination")

// ErrTimeout is returned by SendRPC when the call does not complete
// within its timeout.
var ErrTimeout = errors.New("fabric: rpc timeout")

// Publisher delivers messages to every subscriber of the channel it was
// obtained for, in the order Publish is called.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload map[string]any) error
}

// RPCHandler answers RPC calls routed to a server channel.
type RPCHandler interface {
	HandleRPC(ctx context.Context, method string, params map[string]any) (any, error)
}

// SubHandler receives messages delivered on a subscription. source is the
// name of the publisher the message originated from — the fabric binds
// it from the RequestSubChannel call, the subscriber never has to thread
// it through the payload itself.
type SubHandler interface {
	HandleMessage(ctx context.Context, source, topic string, payload map[string]any) error
}

// FailureListener is notified exactly once when the fabric suffers a
// transport-fatal condition.
type FailureListener func(err error)

// Fabric is the abstract bridge over an ordered transport. Implementations
// must provide:
//
//   - Per-publisher FIFO: messages emitted by a single publisher are
//     delivered to each subscriber in emission order.
//   - Isolation: methods/topics not in a channel's allow-list cannot be
//     invoked or delivered over it.
//   - Failure propagation: a transport-fatal condition triggers every
//     registered failure listener exactly once.
type Fabric interface {
	// RequestRPCServerChannel registers handler to answer RPC calls
	// addressed to name, restricted to allowedMethods.
	RequestRPCServerChannel(name string, handler RPCHandler, allowedMethods []string) error

	// RequestPubChannel returns the publisher for name, creating it if
	// this is the first request for it.
	RequestPubChannel(name string) (Publisher, error)

	// RequestSubChannel subscribes subscriberName to the publisher
	// sourceName. Delivered topics are restricted to allowedMethods.
	RequestSubChannel(subscriberName string, handler SubHandler, sourceName string, allowedMethods []string) error

	// SendRPC calls method on destination with params, blocking up to
	// timeout (0 means the fabric's default).
	SendRPC(ctx context.Context, source, destination, method string, params map[string]any, timeout time.Duration) (any, error)

	// AddFailureListener registers l to be called exactly once if the
	// transport suffers a fatal failure.
	AddFailureListener(l FailureListener)

	// Start brings the fabric up. Safe to call once before any channel
	// traffic is expected.
	Start() error

	// Stop tears the fabric down.
	Stop() error
}
