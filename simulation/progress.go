package simulation

import (
	"sync"

	"github.com/sarchlab/attrsim/monitoring"
	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/timing"
)

const progressTotal = 1000

// runProgress moves a progress bar along with the simulated time of a run.
type runProgress struct {
	lock     sync.Mutex
	bar      *monitoring.ProgressBar
	start    timing.VTimeInSec
	duration timing.VTimeInSec
}

func (p *runProgress) track(
	bar *monitoring.ProgressBar,
	start, duration timing.VTimeInSec,
) {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.bar = bar
	p.start = start
	p.duration = duration
}

func (p *runProgress) untrack() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.bar = nil
}

// Func updates the bar after each event.
func (p *runProgress) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(timing.Event)
	if !ok {
		return
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	if p.bar == nil {
		return
	}

	elapsed := float64((evt.Time() - p.start) / p.duration)
	if elapsed < 0 {
		elapsed = 0
	}

	p.bar.SetFinished(uint64(elapsed * progressTotal))
}
