package tracing

import (
	"sort"
	"sync"

	"github.com/sarchlab/attrsim/attribute"
	"github.com/sarchlab/attrsim/sim/hooking"
)

// RechargeCountTracer counts the recharges applied to and failed on each
// attribute.
type RechargeCountTracer struct {
	lock    sync.Mutex
	applied map[string]uint64
	failed  map[string]uint64
}

// NewRechargeCountTracer creates a new RechargeCountTracer
func NewRechargeCountTracer() *RechargeCountTracer {
	return &RechargeCountTracer{
		applied: make(map[string]uint64),
		failed:  make(map[string]uint64),
	}
}

// Func counts recharge hooks.
func (t *RechargeCountTracer) Func(ctx hooking.HookCtx) {
	a, ok := ctx.Domain.(*attribute.Attribute)
	if !ok {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case attribute.HookPosRechargeApplied:
		t.applied[a.Name()]++
	case attribute.HookPosRechargeFailed:
		t.failed[a.Name()]++
	}
}

// Applied returns the number of recharges applied to the named attribute.
func (t *RechargeCountTracer) Applied(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.applied[name]
}

// Failed returns the number of recharges that could not be applied.
func (t *RechargeCountTracer) Failed(name string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.failed[name]
}

// AttributeNames returns the sorted names of the attributes seen so far.
func (t *RechargeCountTracer) AttributeNames() []string {
	t.lock.Lock()
	defer t.lock.Unlock()

	seen := make(map[string]bool)
	for name := range t.applied {
		seen[name] = true
	}

	for name := range t.failed {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
