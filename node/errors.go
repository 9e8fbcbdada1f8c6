package node

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by a read-only query RPC (get, get_all,
// get_range, length) on a node whose QueryHooks do not override it.
var ErrNotImplemented = errors.New("node: not implemented")

// ErrHalted is returned by any call made to a node after it has
// recorded a FatalError and halted.
var ErrHalted = errors.New("node: halted after fatal error")

// ErrUnknownMethod is returned for an RPC method name outside the
// node's fixed surface.
var ErrUnknownMethod = errors.New("node: unknown method")

// FatalError is a programming-violation error: a data-path or
// management-bus operation invoked illegally for the node's current
// state, or divergent checkpoint markers across inputs. These are
// never recovered from silently — the node halts and the owning
// chassis is notified via its OnFatal callback.
type FatalError struct {
	Node   string
	State  State
	Reason string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s[%s]: fatal: %s", e.Node, e.State, e.Reason)
}
