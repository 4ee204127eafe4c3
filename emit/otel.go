package emit

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OTelEmitter records each Event as an immediately-ended span on the
// provided tracer, mapping Meta entries to chatroute.meta.* attributes.
type OTelEmitter struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans []trace.Span
}

// NewOTelEmitter builds an OTelEmitter using tracer to create spans.
func NewOTelEmitter(tracer trace.Tracer) *OTelEmitter {
	return &OTelEmitter{tracer: tracer}
}

func (o *OTelEmitter) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	addStandardAttributes(span, event)
	addMetadataAttributes(span, event)

	if errVal, ok := event.Meta["error"]; ok {
		span.SetStatus(codes.Error, toString(errVal))
	}
	span.End()

	o.mu.Lock()
	o.spans = append(o.spans, span)
	o.mu.Unlock()
}

func (o *OTelEmitter) EmitBatch(events []Event) {
	for _, e := range events {
		o.Emit(e)
	}
}

type flusher interface {
	ForceFlush(context.Context) error
}

func (o *OTelEmitter) Flush(ctx context.Context) error {
	if f, ok := o.tracer.(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}

func addStandardAttributes(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("chatroute.run_id", event.RunID),
		attribute.Int("chatroute.step", event.Step),
		attribute.String("chatroute.node_id", event.NodeID),
	)
}

func addMetadataAttributes(span trace.Span, event Event) {
	for k, v := range event.Meta {
		name := "chatroute.meta." + k
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(name, val))
		case int:
			span.SetAttributes(attribute.Int(name, val))
		case int64:
			span.SetAttributes(attribute.Int64(name, val))
		case float64:
			span.SetAttributes(attribute.Float64(name, val))
		case bool:
			span.SetAttributes(attribute.Bool(name, val))
		case time.Duration:
			span.SetAttributes(attribute.Int64(name+"_ms", val.Milliseconds()))
		default:
			span.SetAttributes(attribute.String(name, toString(v)))
		}
	}
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return ""
}
