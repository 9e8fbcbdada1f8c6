package node

import (
	"context"
	"time"

	"github.com/minemeld-go/flowfabric/fabric"
)

// Chassis is the interface a node expects from its owning process
// supervisor. The chassis itself — instantiation, process lifecycle,
// restart policy — is out of scope here; only the contract the node
// depends on is specified, to break the cyclic back-reference a direct
// dependency on the concrete supervisor type would create.
type Chassis interface {
	// RequestMgmtbusChannel registers ft so the chassis' management bus
	// can route mgmt-bus operations to it.
	RequestMgmtbusChannel(ft *FT) error

	// RequestSubChannel asks the chassis to deliver messages published
	// by sourceName, restricted to allowedMethods, to ft.
	RequestSubChannel(myName string, ft *FT, sourceName string, allowedMethods []string) error

	// RequestPubChannel returns the publisher myName should use to emit
	// its own output.
	RequestPubChannel(myName string) (fabric.Publisher, error)

	// RequestRPCChannel registers ft to answer RPC calls addressed to
	// myName, restricted to allowedMethods.
	RequestRPCChannel(myName string, ft *FT, allowedMethods []string) error

	// SendRPC performs an outbound RPC on behalf of src.
	SendRPC(ctx context.Context, src, dst, method string, params map[string]any, timeout time.Duration) (any, error)

	// FabricFailed is invoked when the underlying transport reports a
	// fatal failure; the node is not responsible for recovering from it.
	FabricFailed()
}
