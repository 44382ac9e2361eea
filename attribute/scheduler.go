package attribute

import (
	"fmt"
	"math"

	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/timing"
)

// rechargeLoop is the state of one run of the scheduler, from start to stop.
// Every tick event carries the loop it belongs to, so a tick of a stopped
// loop ends the loop even if the attribute has been restarted since.
type rechargeLoop struct {
	cancelled   bool
	lastApplied timing.VTimeInSec
}

// RechargeTickEvent triggers one evaluation of an attribute's recharge.
type RechargeTickEvent struct {
	timing.EventBase
	loop *rechargeLoop
}

// StartUpdateHandler starts the recharge scheduler and then calls the start
// handlers in registration order. It does nothing if the update type is
// UpdateNone or the scheduler is already running.
//
// The error of the first failing start handler is returned; the scheduler
// is running regardless.
func (a *Attribute) StartUpdateHandler() error {
	a.lock.Lock()
	if a.updateType == UpdateNone || a.loop != nil {
		a.lock.Unlock()
		return nil
	}

	now := a.engine.CurrentTime()
	loop := &rechargeLoop{lastApplied: now}
	a.loop = loop
	handlers := a.startHandlers.snapshot()
	a.lock.Unlock()

	a.scheduleTick(loop, now)

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosRechargeStart,
		Item:   a.Value(),
	})

	return invokeHandlers(handlers)
}

// StopUpdateHandler stops the recharge scheduler and then calls the stop
// handlers in registration order. It does nothing if the scheduler is not
// running. A tick that is already being processed completes; the next one
// ends the loop.
func (a *Attribute) StopUpdateHandler() error {
	a.lock.Lock()
	if a.loop == nil {
		a.lock.Unlock()
		return nil
	}

	a.loop.cancelled = true
	a.loop = nil
	handlers := a.stopHandlers.snapshot()
	a.lock.Unlock()

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosRechargeStop,
		Item:   a.Value(),
	})

	return invokeHandlers(handlers)
}

// IsRunning returns true while the recharge scheduler is running and the
// update type is not UpdateNone. Setting the type to UpdateNone idles a
// started scheduler without stopping it; setting another type again resumes
// it.
func (a *Attribute) IsRunning() bool {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.isRunning()
}

func (a *Attribute) isRunning() bool {
	return a.loop != nil && a.updateType != UpdateNone
}

// Handle processes recharge ticks.
func (a *Attribute) Handle(e timing.Event) error {
	evt, ok := e.(*RechargeTickEvent)
	if !ok {
		return fmt.Errorf("attribute %s: unexpected event type %T", a.name, e)
	}

	return a.tick(evt.loop)
}

func (a *Attribute) scheduleTick(loop *rechargeLoop, now timing.VTimeInSec) {
	evt := &RechargeTickEvent{
		EventBase: timing.MakeEventBase(a.freq.NextTick(now), a),
		loop:      loop,
	}

	a.engine.Schedule(evt)
}

func (a *Attribute) tick(loop *rechargeLoop) error {
	if a.isCancelled(loop) {
		return nil
	}

	now := a.engine.CurrentTime()

	var err error
	if a.IsUpdatable() && a.ShouldUpdate() && a.isDue(loop, now) {
		err = a.recharge(loop, now)
	}

	a.scheduleTick(loop, now)

	return err
}

func (a *Attribute) isCancelled(loop *rechargeLoop) bool {
	a.lock.Lock()
	defer a.lock.Unlock()

	return loop.cancelled
}

func (a *Attribute) isDue(loop *rechargeLoop, now timing.VTimeInSec) bool {
	a.lock.Lock()
	defer a.lock.Unlock()

	speed := timing.VTimeInSec(math.Abs(float64(a.updateSpeed)))

	return now-loop.lastApplied > speed
}

func (a *Attribute) recharge(loop *rechargeLoop, now timing.VTimeInSec) error {
	a.lock.Lock()
	updateType, value, operand := a.updateType, a.value, a.updateValue
	loop.lastApplied = now
	a.lock.Unlock()

	newValue, err := applyUpdate(updateType, value, operand)
	if err == nil {
		err = a.SetValue(newValue)
	}

	if err != nil {
		err = fmt.Errorf("attribute %s: %s recharge: %w", a.name, updateType, err)
		a.InvokeHook(hooking.HookCtx{
			Domain: a,
			Pos:    HookPosRechargeFailed,
			Item:   value,
			Detail: err,
		})

		return err
	}

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosRechargeApplied,
		Item:   newValue,
		Detail: value,
	})

	return nil
}

// AddStartHandler registers a handler called every time the recharge
// scheduler starts. The same handler may be added more than once.
func (a *Attribute) AddStartHandler(h LifecycleHandler) error {
	if !isInvocable(h) {
		return fmt.Errorf("%w: must be a non-nil comparable handler, got %T",
			ErrInvalidStartHandler, h)
	}

	a.lock.Lock()
	a.startHandlers.add(h)
	a.lock.Unlock()

	return nil
}

// RemoveStartHandler removes every registration of h.
func (a *Attribute) RemoveStartHandler(h LifecycleHandler) {
	a.lock.Lock()
	a.startHandlers.remove(h)
	a.lock.Unlock()
}

// RegisterStopHandler registers a handler called every time the recharge
// scheduler stops. The same handler may be registered more than once.
func (a *Attribute) RegisterStopHandler(h LifecycleHandler) error {
	if !isInvocable(h) {
		return fmt.Errorf("%w: must be a non-nil comparable handler, got %T",
			ErrInvalidStopHandler, h)
	}

	a.lock.Lock()
	a.stopHandlers.add(h)
	a.lock.Unlock()

	return nil
}

// RemoveStopHandler removes every registration of h.
func (a *Attribute) RemoveStopHandler(h LifecycleHandler) {
	a.lock.Lock()
	a.stopHandlers.remove(h)
	a.lock.Unlock()
}
