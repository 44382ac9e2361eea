package attribute

import (
	"log"

	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/timing"
)

// Logger is a hook that prints the lifecycle of attributes.
type Logger struct {
	logger     *log.Logger
	timeTeller timing.TimeTeller
}

// NewLogger creates a Logger that writes to logger, stamping each line with
// the time told by timeTeller.
func NewLogger(logger *log.Logger, timeTeller timing.TimeTeller) *Logger {
	return &Logger{
		logger:     logger,
		timeTeller: timeTeller,
	}
}

// Func writes one line per attribute hook.
func (l *Logger) Func(ctx hooking.HookCtx) {
	a, ok := ctx.Domain.(*Attribute)
	if !ok {
		return
	}

	now := l.timeTeller.CurrentTime()

	switch ctx.Pos {
	case HookPosRechargeStart:
		l.logger.Printf("%.10f, %s, recharge started (%s)",
			now, a.Name(), a.UpdateType())
	case HookPosRechargeStop:
		l.logger.Printf("%.10f, %s, recharge stopped", now, a.Name())
	case HookPosRechargeApplied:
		l.logger.Printf("%.10f, %s, recharged %v -> %v",
			now, a.Name(), ctx.Detail, ctx.Item)
	case HookPosRechargeFailed:
		l.logger.Printf("%.10f, %s, recharge failed: %v",
			now, a.Name(), ctx.Detail)
	}
}
