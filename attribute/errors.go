package attribute

import "errors"

// Validation errors. Returned errors wrap one of these; use errors.Is to
// tell them apart.
var (
	ErrInvalidName           = errors.New("attribute: invalid name")
	ErrInvalidAttributeValue = errors.New("attribute: invalid value")
	ErrInvalidRechargeType   = errors.New("attribute: invalid recharge type")
	ErrInvalidRechargeSpeed  = errors.New("attribute: invalid recharge speed")
	ErrInvalidRechargeValue  = errors.New("attribute: invalid recharge value")
	ErrInvalidStartHandler   = errors.New("attribute: invalid start handler")
	ErrInvalidStopHandler    = errors.New("attribute: invalid stop handler")
)

// ErrRechargeNotApplicable is returned by a recharge tick when the update
// type cannot be applied to the current value, for example pushing onto a
// value that is not a slice.
var ErrRechargeNotApplicable = errors.New("attribute: recharge not applicable")
