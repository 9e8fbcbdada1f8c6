// Package chassis provides an in-process supervisor that wires a set
// of nodes together over a fabric: the minimal implementation of
// node.Chassis needed to run a graph in a single process.
package chassis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/minemeld-go/flowfabric/fabric"
	"github.com/minemeld-go/flowfabric/node"
	"github.com/minemeld-go/flowfabric/obslog"
)

// InProcess implements node.Chassis over a fabric.Fabric, plus a
// simple name->node registry for the mgmt-bus operations a driving
// program (flowctl, tests) needs to call.
type InProcess struct {
	fab    fabric.Fabric
	logger *obslog.Logger

	mu    sync.RWMutex
	nodes map[string]*node.FT
}

// New wires an InProcess chassis around fab. If logger is nil,
// obslog.Default() is used.
func New(fab fabric.Fabric, logger *obslog.Logger) *InProcess {
	if logger == nil {
		logger = obslog.Default()
	}
	return &InProcess{
		fab:    fab,
		logger: logger,
		nodes:  make(map[string]*node.FT),
	}
}

// Start brings the underlying fabric up and registers FabricFailed as a
// fabric failure listener. A node whose onFatal callback fires does
// not, on its own, stop the fabric — a fatal node is isolated,
// matching the data-path protocol's per-node halt semantics.
func (c *InProcess) Start() error {
	c.fab.AddFailureListener(func(error) { c.FabricFailed() })
	return c.fab.Start()
}

// Stop tears the fabric down.
func (c *InProcess) Stop() error {
	return c.fab.Stop()
}

// Node looks up a previously registered node by name.
func (c *InProcess) Node(name string) (*node.FT, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ft, ok := c.nodes[name]
	return ft, ok
}

// Names returns every node name registered with the chassis, in no
// particular order.
func (c *InProcess) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.nodes))
	for n := range c.nodes {
		names = append(names, n)
	}
	return names
}

func (c *InProcess) RequestMgmtbusChannel(ft *node.FT) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.nodes[ft.Name()]; exists {
		return fmt.Errorf("chassis: node %s already registered", ft.Name())
	}
	c.nodes[ft.Name()] = ft
	return nil
}

func (c *InProcess) RequestSubChannel(myName string, ft *node.FT, sourceName string, allowedMethods []string) error {
	return c.fab.RequestSubChannel(myName, ft, sourceName, allowedMethods)
}

func (c *InProcess) RequestPubChannel(myName string) (fabric.Publisher, error) {
	return c.fab.RequestPubChannel(myName)
}

func (c *InProcess) RequestRPCChannel(myName string, ft *node.FT, allowedMethods []string) error {
	return c.fab.RequestRPCServerChannel(myName, ft, allowedMethods)
}

func (c *InProcess) SendRPC(ctx context.Context, src, dst, method string, params map[string]any, timeout time.Duration) (any, error) {
	return c.fab.SendRPC(ctx, src, dst, method, params, timeout)
}

func (c *InProcess) FabricFailed() {
	c.logger.Errorf("chassis: fabric reported a fatal failure")
}
