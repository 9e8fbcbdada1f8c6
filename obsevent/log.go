package obsevent

import "github.com/minemeld-go/flowfabric/obslog"

// LogEmitter forwards every event to a Logger at info level, tagged
// with the originating node.
type LogEmitter struct {
	logger *obslog.Logger
}

// NewLogEmitter wraps logger as an Emitter.
func NewLogEmitter(logger *obslog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (l *LogEmitter) Emit(event Event) {
	l.logger.With("node", event.NodeID).Infof("%s %v", event.Msg, event.Meta)
}
