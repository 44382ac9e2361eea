package attribute

import (
	"fmt"
	"strings"
)

// UpdateType selects how the recharge mutates the value of an attribute.
type UpdateType int

const (
	// UpdateNone disables recharging.
	UpdateNone UpdateType = iota

	// UpdateSum adds the update value to the current value.
	UpdateSum

	// UpdateSet replaces the current value with the update value.
	UpdateSet

	// UpdatePush appends the update value to the current value, which must be
	// a slice.
	UpdatePush
)

// IsValid reports whether t is one of the declared update types.
func (t UpdateType) IsValid() bool {
	switch t {
	case UpdateNone, UpdateSum, UpdateSet, UpdatePush:
		return true
	default:
		return false
	}
}

func (t UpdateType) String() string {
	switch t {
	case UpdateNone:
		return "none"
	case UpdateSum:
		return "sum"
	case UpdateSet:
		return "set"
	case UpdatePush:
		return "push"
	default:
		return fmt.Sprintf("UpdateType(%d)", int(t))
	}
}

// ParseUpdateType converts a name such as "set" into an UpdateType. The
// match is case-insensitive and the empty string means UpdateNone.
func ParseUpdateType(name string) (UpdateType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return UpdateNone, nil
	case "sum":
		return UpdateSum, nil
	case "set":
		return UpdateSet, nil
	case "push":
		return UpdatePush, nil
	default:
		return UpdateNone, fmt.Errorf("%w: %q", ErrInvalidRechargeType, name)
	}
}

// UnmarshalText lets update types be read from configuration files.
func (t *UpdateType) UnmarshalText(text []byte) error {
	parsed, err := ParseUpdateType(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// MarshalText writes the name of the update type.
func (t UpdateType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRechargeType, int(t))
	}

	return []byte(t.String()), nil
}
