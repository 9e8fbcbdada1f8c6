package obslog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLogger_Infof(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	logger := New(base)

	logger.Infof("node %s started", "source")

	if len(hook.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(hook.Entries))
	}
	if hook.LastEntry().Message != "node source started" {
		t.Errorf("message = %q", hook.LastEntry().Message)
	}
	if hook.LastEntry().Level != logrus.InfoLevel {
		t.Errorf("level = %v, want info", hook.LastEntry().Level)
	}
}

func TestLogger_With(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	logger := New(base)

	logger.With("node", "source").Infof("checkpoint")

	entry := hook.LastEntry()
	if got := entry.Data["node"]; got != "source" {
		t.Errorf("field node = %v, want %q", got, "source")
	}
}

func TestLogger_WithDoesNotMutateReceiver(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.InfoLevel)
	logger := New(base)

	tagged := logger.With("node", "source")
	logger.Infof("plain")

	if _, ok := hook.LastEntry().Data["node"]; ok {
		t.Error("With should not mutate the receiver's fields")
	}
	_ = tagged
}

func TestLogger_LevelMethods(t *testing.T) {
	base, hook := test.NewNullLogger()
	base.SetLevel(logrus.DebugLevel)
	logger := New(base)

	logger.Debugf("d")
	logger.Warnf("w")
	logger.Errorf("e")

	if len(hook.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(hook.Entries))
	}
	levels := []logrus.Level{hook.Entries[0].Level, hook.Entries[1].Level, hook.Entries[2].Level}
	want := []logrus.Level{logrus.DebugLevel, logrus.WarnLevel, logrus.ErrorLevel}
	for i := range want {
		if levels[i] != want[i] {
			t.Errorf("entry %d level = %v, want %v", i, levels[i], want[i])
		}
	}
}
