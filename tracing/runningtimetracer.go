package tracing

import (
	"sync"

	"github.com/sarchlab/attrsim/attribute"
	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/timing"
)

// RunningTimeTracer measures how long the recharge of each attribute has
// been running. An attribute runs at most one recharge loop at a time, so
// the intervals of one attribute never overlap.
type RunningTimeTracer struct {
	timeTeller timing.TimeTeller

	lock        sync.Mutex
	startTimes  map[string]timing.VTimeInSec
	runningTime map[string]timing.VTimeInSec
}

// NewRunningTimeTracer creates a new RunningTimeTracer
func NewRunningTimeTracer(timeTeller timing.TimeTeller) *RunningTimeTracer {
	return &RunningTimeTracer{
		timeTeller:  timeTeller,
		startTimes:  make(map[string]timing.VTimeInSec),
		runningTime: make(map[string]timing.VTimeInSec),
	}
}

// Func opens an interval on start and closes it on stop.
func (t *RunningTimeTracer) Func(ctx hooking.HookCtx) {
	a, ok := ctx.Domain.(*attribute.Attribute)
	if !ok {
		return
	}

	now := t.timeTeller.CurrentTime()

	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case attribute.HookPosRechargeStart:
		t.startTimes[a.Name()] = now
	case attribute.HookPosRechargeStop:
		t.closeInterval(a.Name(), now)
	}
}

func (t *RunningTimeTracer) closeInterval(name string, now timing.VTimeInSec) {
	start, ok := t.startTimes[name]
	if !ok {
		return
	}

	t.runningTime[name] += now - start
	delete(t.startTimes, name)
}

// RunningTime returns the total time the recharge of the named attribute has
// run, not counting an interval that is still open.
func (t *RunningTimeTracer) RunningTime(name string) timing.VTimeInSec {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.runningTime[name]
}

// TerminateAll closes every open interval at now.
func (t *RunningTimeTracer) TerminateAll(now timing.VTimeInSec) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for name := range t.startTimes {
		t.closeInterval(name, now)
	}
}

// Handle closes the open intervals when the simulation ends.
func (t *RunningTimeTracer) Handle(now timing.VTimeInSec) {
	t.TerminateAll(now)
}

var _ timing.SimulationEndHandler = (*RunningTimeTracer)(nil)
