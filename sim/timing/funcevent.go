package timing

// A FuncEvent runs a function when the engine reaches its time. It is mostly
// used to inject actions into a running simulation, such as stopping the
// recharge of attributes at a deadline.
type FuncEvent struct {
	EventBase
	fn func() error
}

// NewFuncEvent creates an event that calls fn at time t.
func NewFuncEvent(t VTimeInSec, fn func() error) *FuncEvent {
	evt := &FuncEvent{fn: fn}
	evt.EventBase = MakeEventBase(t, evt)

	return evt
}

// NewSecondaryFuncEvent creates a FuncEvent that runs after all the primary
// events of the same time.
func NewSecondaryFuncEvent(t VTimeInSec, fn func() error) *FuncEvent {
	evt := NewFuncEvent(t, fn)
	evt.secondary = true

	return evt
}

// Handle calls the wrapped function.
func (e *FuncEvent) Handle(_ Event) error {
	return e.fn()
}
