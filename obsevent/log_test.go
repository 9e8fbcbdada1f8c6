package obsevent

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/minemeld-go/flowfabric/obslog"
)

func TestLogEmitter_Emit(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	emitter := NewLogEmitter(obslog.New(base))

	emitter.Emit(Event{NodeID: "source", Msg: "checkpoint", Meta: map[string]any{"marker": "cp-1"}})

	if len(hook.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hook.Entries))
	}
	entry := hook.LastEntry()
	if got := entry.Data["node"]; got != "source" {
		t.Errorf("field node = %v, want %q", got, "source")
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("level = %v, want info", entry.Level)
	}
}

func TestLogEmitter_InterfaceContract(t *testing.T) {
	var _ Emitter = NewLogEmitter(obslog.Default())
}
