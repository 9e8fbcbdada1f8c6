package obsevent

import "testing"

func TestNullEmitter_NoOp(t *testing.T) {
	emitter := Null()

	events := []Event{
		{NodeID: "node1", Msg: "node_start"},
		{NodeID: "node1", Msg: "checkpoint", Meta: map[string]any{"marker": "cp-1"}},
		{NodeID: "node2", Msg: "fatal", Meta: nil},
	}
	for _, event := range events {
		emitter.Emit(event) // must not panic
	}
}

func TestNullEmitter_InterfaceContract(t *testing.T) {
	var _ Emitter = Null()
}
