package events

import (
	"context"

	"go.uber.org/zap"
)

// Emitter delivers progress events to whoever is listening. Emission is
// fire-and-forget: implementations must never return delivery failures into
// the pipeline.
type Emitter interface {
	Emit(ctx context.Context, evt Event)
}

// NopEmitter discards everything. Useful in tests.
type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, Event) {}

// LogEmitter writes events to the structured log. It is the default emitter
// when no event bus is configured.
type LogEmitter struct {
	log *zap.SugaredLogger
}

func NewLogEmitter(log *zap.SugaredLogger) *LogEmitter {
	return &LogEmitter{log: log}
}

func (e *LogEmitter) Emit(ctx context.Context, evt Event) {
	if evt.SessionKey == "" {
		evt.SessionKey = SessionFromContext(ctx)
	}
	kvs := []interface{}{"stage", evt.Stage, "session", evt.SessionKey}
	switch evt.Type {
	case EventError:
		e.log.Errorw(evt.Message, kvs...)
	case EventWarn:
		e.log.Warnw(evt.Message, kvs...)
	default:
		e.log.Infow(evt.Message, kvs...)
	}
}
