package chassis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minemeld-go/flowfabric/chassis"
	"github.com/minemeld-go/flowfabric/checkpoint"
	"github.com/minemeld-go/flowfabric/fabric"
	"github.com/minemeld-go/flowfabric/filter"
	"github.com/minemeld-go/flowfabric/node"
)

type nopHooks struct{}

func (nopHooks) FilteredUpdate(context.Context, string, string, map[string]any)   {}
func (nopHooks) FilteredWithdraw(context.Context, string, string, map[string]any) {}

func emptyChain(t *testing.T) *filter.Chain {
	t.Helper()
	c, err := filter.NewChain(nil)
	require.NoError(t, err)
	return c
}

func TestNew_DefaultsLoggerWhenNil(t *testing.T) {
	ch := chassis.New(fabric.NewInProcess(), nil)
	require.NotNil(t, ch)
}

func TestRequestMgmtbusChannel_RegistersByNameAndRejectsDuplicates(t *testing.T) {
	ch := chassis.New(fabric.NewInProcess(), nil)
	require.NoError(t, ch.Start())
	defer func() { _ = ch.Stop() }()

	ft, err := node.New("n", ch, emptyChain(t), emptyChain(t), checkpoint.NewMemStore(), nopHooks{}, node.Options{})
	require.NoError(t, err)

	found, ok := ch.Node("n")
	require.True(t, ok)
	require.Same(t, ft, found)

	require.Contains(t, ch.Names(), "n")

	err = ch.RequestMgmtbusChannel(ft)
	require.Error(t, err)
}

func TestNode_UnknownNameNotFound(t *testing.T) {
	ch := chassis.New(fabric.NewInProcess(), nil)
	_, ok := ch.Node("missing")
	require.False(t, ok)
}

func TestStartStop_DelegatesToFabric(t *testing.T) {
	ch := chassis.New(fabric.NewInProcess(), nil)
	require.NoError(t, ch.Start())
	require.NoError(t, ch.Stop())
}
