package attribute

import "reflect"

// A LifecycleHandler is notified when the recharge of an attribute starts or
// stops. Handlers are compared by identity when removed, so they must be of
// a comparable type; pointer types are the usual choice.
type LifecycleHandler interface {
	Handle() error
}

// FuncHandler adapts a function to the LifecycleHandler interface. Each
// FuncHandler has its own identity, even if two wrap the same function.
type FuncHandler struct {
	fn func() error
}

// NewFuncHandler wraps fn into a LifecycleHandler.
func NewFuncHandler(fn func() error) *FuncHandler {
	return &FuncHandler{fn: fn}
}

// Handle calls the wrapped function.
func (h *FuncHandler) Handle() error {
	return h.fn()
}

func isInvocable(h LifecycleHandler) bool {
	if isAbsent(h) {
		return false
	}

	if !reflect.TypeOf(h).Comparable() {
		return false
	}

	if fh, ok := h.(*FuncHandler); ok && fh.fn == nil {
		return false
	}

	return true
}

type handlerList struct {
	handlers []LifecycleHandler
}

func (l *handlerList) add(h LifecycleHandler) {
	l.handlers = append(l.handlers, h)
}

// remove drops every entry identical to h.
func (l *handlerList) remove(h LifecycleHandler) {
	if h == nil || !reflect.TypeOf(h).Comparable() {
		return
	}

	kept := l.handlers[:0]
	for _, existing := range l.handlers {
		if existing != h {
			kept = append(kept, existing)
		}
	}

	for i := len(kept); i < len(l.handlers); i++ {
		l.handlers[i] = nil
	}

	l.handlers = kept
}

func (l *handlerList) snapshot() []LifecycleHandler {
	handlers := make([]LifecycleHandler, len(l.handlers))
	copy(handlers, l.handlers)

	return handlers
}

// invokeHandlers calls the handlers in order and stops at the first failure.
func invokeHandlers(handlers []LifecycleHandler) error {
	for _, h := range handlers {
		if err := h.Handle(); err != nil {
			return err
		}
	}

	return nil
}
