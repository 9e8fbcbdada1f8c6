package obsevent

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter turns every event into an immediately-ended span, so a
// node's lifecycle and data-path activity show up in whatever tracing
// backend the process wires its TracerProvider to.
type OTelEmitter struct {
	tracer trace.Tracer
}

// NewOTelEmitter wraps tracer (typically otel.Tracer("flowfabric")) as
// an Emitter.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()

	span.SetAttributes(attribute.String("flowfabric.node_id", event.NodeID))
	for k, v := range event.Meta {
		switch tv := v.(type) {
		case string:
			span.SetAttributes(attribute.String(k, tv))
		case int:
			span.SetAttributes(attribute.Int(k, tv))
		case int64:
			span.SetAttributes(attribute.Int64(k, tv))
		case bool:
			span.SetAttributes(attribute.Bool(k, tv))
		case time.Duration:
			span.SetAttributes(attribute.Int64(k, int64(tv/time.Millisecond)))
		default:
			span.SetAttributes(attribute.String(k, fmt.Sprintf("%v", tv)))
		}
	}

	if reason, ok := event.Meta["reason"].(string); ok && event.Msg == "fatal" {
		span.SetStatus(codes.Error, reason)
		span.RecordError(fmt.Errorf("%s", reason))
	}
}
