// Package attribute provides the typed, periodically recharging attributes
// of simulation entities, such as health, mana, or stamina.
//
// An Attribute keeps the kind of its value stable for its whole lifetime
// and, when it has an update type other than UpdateNone, can run a recharge
// scheduler on a timing.EventScheduler. The scheduler re-evaluates on every
// tick of the attribute's frequency and applies the update once more than
// the update speed has elapsed since the last application.
package attribute

import (
	"fmt"
	"math"
	"sync"

	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/timing"
)

// An Attribute is a named value of a simulation entity with an optional
// recharge policy.
type Attribute struct {
	*hooking.HookableBase

	name   string
	engine timing.EventScheduler
	freq   timing.Freq
	guard  UpdateGuard

	lock        sync.Mutex
	value       any
	kind        Kind
	updateType  UpdateType
	updateSpeed timing.VTimeInSec
	updateValue any

	initialValue       any
	initialUpdateType  UpdateType
	initialUpdateSpeed timing.VTimeInSec
	initialUpdateValue any

	startHandlers handlerList
	stopHandlers  handlerList

	loop *rechargeLoop
}

// Name returns the name of the attribute.
func (a *Attribute) Name() string {
	return a.name
}

// Value returns the current value.
func (a *Attribute) Value() any {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.value
}

// Kind returns the kind every value of the attribute has.
func (a *Attribute) Kind() Kind {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.kind
}

// SetValue replaces the value. The new value must not be absent and must be
// of the same kind as the current one.
func (a *Attribute) SetValue(value any) error {
	a.lock.Lock()
	old := a.value
	err := a.setValue(value)
	a.lock.Unlock()

	if err != nil {
		return err
	}

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosValueChange,
		Item:   value,
		Detail: old,
	})

	return nil
}

func (a *Attribute) setValue(value any) error {
	kind := KindOf(value)
	if kind == KindInvalid {
		return fmt.Errorf("%w: accept any value except nil, got %v",
			ErrInvalidAttributeValue, value)
	}

	if a.kind != KindInvalid && a.kind != kind {
		return fmt.Errorf("%w: kind mismatch, expected %s, got %s (%T)",
			ErrInvalidAttributeValue, a.kind, kind, value)
	}

	a.value = value
	a.kind = kind

	return nil
}

// UpdateType returns how the recharge changes the value.
func (a *Attribute) UpdateType() UpdateType {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.updateType
}

// SetUpdateType changes how the recharge changes the value.
func (a *Attribute) SetUpdateType(t UpdateType) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.setUpdateType(t)
}

func (a *Attribute) setUpdateType(t UpdateType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidRechargeType, int(t))
	}

	a.updateType = t

	return nil
}

// UpdateSpeed returns the time that must elapse between two recharges.
func (a *Attribute) UpdateSpeed() timing.VTimeInSec {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.updateSpeed
}

// SetUpdateSpeed sets the time that must elapse between two recharges. The
// speed is stored as given, but only its magnitude is used. It is ignored
// while the update type is UpdateNone.
func (a *Attribute) SetUpdateSpeed(speed timing.VTimeInSec) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.setUpdateSpeed(speed)
}

func (a *Attribute) setUpdateSpeed(speed timing.VTimeInSec) error {
	if a.updateType == UpdateNone {
		return nil
	}

	if math.IsNaN(math.Abs(float64(speed))) {
		return fmt.Errorf("%w: %v", ErrInvalidRechargeSpeed, speed)
	}

	a.updateSpeed = speed

	return nil
}

// UpdateValue returns the operand of the recharge.
func (a *Attribute) UpdateValue() any {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.updateValue
}

// SetUpdateValue sets the operand of the recharge. It must be of the same
// kind as the value. It is ignored while the update type is UpdateNone.
func (a *Attribute) SetUpdateValue(value any) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	return a.setUpdateValue(value)
}

func (a *Attribute) setUpdateValue(value any) error {
	if a.updateType == UpdateNone {
		return nil
	}

	if kind := KindOf(value); kind != a.kind {
		return fmt.Errorf("%w: expect %s, got %s (%T)",
			ErrInvalidRechargeValue, a.kind, kind, value)
	}

	a.updateValue = value

	return nil
}

// IsUpdatable returns true if the attribute has a recharge policy.
func (a *Attribute) IsUpdatable() bool {
	return a.UpdateType() != UpdateNone
}

// ShouldUpdate tells if a due recharge may be applied now. It delegates to
// the UpdateGuard the attribute was built with.
func (a *Attribute) ShouldUpdate() bool {
	return a.guard.ShouldUpdate(a)
}

// Reset restores the value and the recharge policy given at construction.
// It replays the same validated setters, in the same order, as the
// construction. The scheduler and the registered handlers are not affected.
func (a *Attribute) Reset() error {
	a.lock.Lock()
	old := a.value
	oldType, oldSpeed, oldUpdateValue := a.updateType, a.updateSpeed, a.updateValue

	a.updateSpeed = 0
	a.updateValue = nil

	err := a.applyInitialState()
	if err != nil {
		a.value = old
		a.updateType, a.updateSpeed, a.updateValue =
			oldType, oldSpeed, oldUpdateValue
	}

	a.lock.Unlock()

	if err != nil {
		return err
	}

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosValueChange,
		Item:   a.Value(),
		Detail: old,
	})

	return nil
}

func (a *Attribute) applyInitialState() error {
	if err := a.setValue(a.initialValue); err != nil {
		return err
	}

	if err := a.setUpdateType(a.initialUpdateType); err != nil {
		return err
	}

	if err := a.setUpdateSpeed(a.initialUpdateSpeed); err != nil {
		return err
	}

	return a.setUpdateValue(a.initialUpdateValue)
}

// Snapshot is a copy of the observable state of an attribute.
type Snapshot struct {
	Name        string            `json:"name"`
	Value       any               `json:"value"`
	Kind        string            `json:"kind"`
	UpdateType  string            `json:"update_type"`
	UpdateSpeed timing.VTimeInSec `json:"update_speed"`
	UpdateValue any               `json:"update_value,omitempty"`
	Running     bool              `json:"running"`
}

// Snapshot returns the current state of the attribute.
func (a *Attribute) Snapshot() Snapshot {
	a.lock.Lock()
	defer a.lock.Unlock()

	return Snapshot{
		Name:        a.name,
		Value:       a.value,
		Kind:        a.kind.String(),
		UpdateType:  a.updateType.String(),
		UpdateSpeed: a.updateSpeed,
		UpdateValue: a.updateValue,
		Running:     a.isRunning(),
	}
}
