package node

import (
	"context"

	"github.com/minemeld-go/flowfabric/fabric"
)

// HandleMessage implements fabric.SubHandler: dispatch for pub/sub
// traffic arriving from an upstream input.
func (f *FT) HandleMessage(ctx context.Context, source, topic string, payload map[string]any) error {
	switch topic {
	case fabric.TopicUpdate:
		indicator, value := fabric.ParseIndicatorPayload(payload)
		return f.Update(ctx, source, indicator, value)
	case fabric.TopicWithdraw:
		indicator, value := fabric.ParseIndicatorPayload(payload)
		return f.Withdraw(ctx, source, indicator, value)
	case fabric.TopicCheckpoint:
		return f.Checkpoint(ctx, source, fabric.ParseCheckpointPayload(payload))
	default:
		return ErrUnknownMethod
	}
}

// HandleRPC implements fabric.RPCHandler: dispatch for the node's fixed
// RPC surface (update, withdraw, checkpoint, get, get_all, get_range,
// length). source is taken from the "source" key the fabric injects
// into params.
func (f *FT) HandleRPC(ctx context.Context, method string, params map[string]any) (any, error) {
	source, _ := params["source"].(string)

	switch method {
	case "update":
		indicator, _ := params["indicator"].(string)
		value, _ := params["value"].(map[string]any)
		return nil, f.Update(ctx, source, indicator, value)

	case "withdraw":
		indicator, _ := params["indicator"].(string)
		value, _ := params["value"].(map[string]any)
		return nil, f.Withdraw(ctx, source, indicator, value)

	case "checkpoint":
		marker, _ := params["value"].(string)
		return nil, f.Checkpoint(ctx, source, marker)

	case "get":
		indicator, _ := params["indicator"].(string)
		return f.query.Get(ctx, source, indicator)

	case "get_all":
		return f.query.GetAll(ctx, source)

	case "get_range":
		index, _ := params["index"].(string)
		fromKey, _ := params["from_key"].(string)
		toKey, _ := params["to_key"].(string)
		return f.query.GetRange(ctx, source, index, fromKey, toKey)

	case "length":
		return f.query.Length(ctx, source)

	default:
		return nil, ErrUnknownMethod
	}
}
