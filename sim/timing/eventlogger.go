package timing

import (
	"log"
	"reflect"

	"github.com/sarchlab/attrsim/sim/hooking"
)

// EventLogger is an hook that prints the event information
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)

	h.logger = logger

	return h
}

type named interface {
	Name() string
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosBeforeEvent:
		h.logger.Printf("%.10f, %s -> %s",
			evt.Time(), reflect.TypeOf(evt), handlerName(evt))
	case HookPosEventError:
		h.logger.Printf("%.10f, %s -> %s, error: %v",
			evt.Time(), reflect.TypeOf(evt), handlerName(evt), ctx.Detail)
	}
}

func handlerName(evt Event) string {
	if n, ok := evt.Handler().(named); ok {
		return n.Name()
	}

	return reflect.TypeOf(evt.Handler()).String()
}
