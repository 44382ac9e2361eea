package attribute

import "reflect"

// An UpdateGuard decides if a due recharge may be applied. It is consulted on
// every tick, outside of the attribute's lock, so it may read the attribute.
type UpdateGuard interface {
	ShouldUpdate(a *Attribute) bool
}

// GuardFunc adapts a function to the UpdateGuard interface.
type GuardFunc func(a *Attribute) bool

// ShouldUpdate calls f(a).
func (f GuardFunc) ShouldUpdate(a *Attribute) bool {
	return f(a)
}

// AlwaysUpdate never blocks a recharge.
var AlwaysUpdate UpdateGuard = GuardFunc(func(*Attribute) bool { return true })

// BelowLimit allows recharging only while a numeric value is below limit.
// Attributes whose value is not a number are never recharged.
func BelowLimit(limit float64) UpdateGuard {
	return GuardFunc(func(a *Attribute) bool {
		v, ok := toFloat(a.Value())
		return ok && v < limit
	})
}

func toFloat(v any) (float64, bool) {
	if isAbsent(v) {
		return 0, false
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	default:
		return 0, false
	}
}
