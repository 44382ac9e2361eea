package attribute

import (
	"fmt"
	"log"

	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/timing"
)

// Builder can build attributes.
type Builder struct {
	engine      timing.EventScheduler
	freq        timing.Freq
	guard       UpdateGuard
	value       any
	updateType  UpdateType
	updateSpeed timing.VTimeInSec
	updateValue any
}

// MakeBuilder returns a Builder with no recharge policy and a tick frequency
// of 1 KHz.
func MakeBuilder() Builder {
	return Builder{
		freq:       1 * timing.KHz,
		guard:      AlwaysUpdate,
		updateType: UpdateNone,
	}
}

// WithEngine sets the engine that drives the recharge scheduler.
func (b Builder) WithEngine(engine timing.EventScheduler) Builder {
	b.engine = engine
	return b
}

// WithFreq sets how often the recharge scheduler re-evaluates.
func (b Builder) WithFreq(freq timing.Freq) Builder {
	b.freq = freq
	return b
}

// WithUpdateGuard sets the guard consulted before each due recharge.
func (b Builder) WithUpdateGuard(guard UpdateGuard) Builder {
	b.guard = guard
	return b
}

// WithValue sets the initial value. Its kind is fixed for the lifetime of the
// attribute.
func (b Builder) WithValue(value any) Builder {
	b.value = value
	return b
}

// WithUpdateType sets the recharge policy.
func (b Builder) WithUpdateType(t UpdateType) Builder {
	b.updateType = t
	return b
}

// WithUpdateSpeed sets the time between two recharges.
func (b Builder) WithUpdateSpeed(speed timing.VTimeInSec) Builder {
	b.updateSpeed = speed
	return b
}

// WithUpdateValue sets the operand of the recharge.
func (b Builder) WithUpdateValue(value any) Builder {
	b.updateValue = value
	return b
}

// Build creates an attribute. The name, the value and the recharge policy
// are validated in this order; the first violation is returned.
func (b Builder) Build(name string) (*Attribute, error) {
	b.parametersMustBeValid()

	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	}

	a := &Attribute{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		engine:       b.engine,
		freq:         b.freq,
		guard:        b.guard,

		initialValue:       b.value,
		initialUpdateType:  b.updateType,
		initialUpdateSpeed: b.updateSpeed,
		initialUpdateValue: b.updateValue,
	}

	if err := a.applyInitialState(); err != nil {
		return nil, fmt.Errorf("attribute %s: %w", name, err)
	}

	return a, nil
}

func (b Builder) parametersMustBeValid() {
	if b.engine == nil {
		log.Panic("attribute: engine is not set")
	}

	if b.freq <= 0 {
		log.Panic("attribute: frequency must be positive")
	}

	if b.guard == nil {
		log.Panic("attribute: update guard is not set")
	}
}
