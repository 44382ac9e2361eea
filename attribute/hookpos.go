package attribute

import "github.com/sarchlab/attrsim/sim/hooking"

// Hook positions raised by an Attribute. HookCtx.Domain is always the
// attribute itself.
var (
	// HookPosRechargeStart fires when the recharge scheduler starts.
	HookPosRechargeStart = &hooking.HookPos{Name: "RechargeStart"}

	// HookPosRechargeStop fires when the recharge scheduler stops.
	HookPosRechargeStop = &hooking.HookPos{Name: "RechargeStop"}

	// HookPosValueChange fires after every successful value change. Item is
	// the new value and Detail the previous one.
	HookPosValueChange = &hooking.HookPos{Name: "ValueChange"}

	// HookPosRechargeApplied fires after a recharge changed the value. Item
	// is the new value.
	HookPosRechargeApplied = &hooking.HookPos{Name: "RechargeApplied"}

	// HookPosRechargeFailed fires when a due recharge could not be applied.
	// Detail is the error.
	HookPosRechargeFailed = &hooking.HookPos{Name: "RechargeFailed"}
)
