package obsevent

// NullEmitter discards every event. The zero value is ready to use.
type NullEmitter struct{}

// Null returns an Emitter that discards all events.
func Null() Emitter { return NullEmitter{} }

func (NullEmitter) Emit(Event) {}
