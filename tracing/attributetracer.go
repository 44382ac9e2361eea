// Package tracing collects what happens to attributes during a simulation.
package tracing

import (
	"fmt"

	"github.com/sarchlab/attrsim/attribute"
	"github.com/sarchlab/attrsim/datarecording"
	"github.com/sarchlab/attrsim/sim/hooking"
	"github.com/sarchlab/attrsim/sim/id"
	"github.com/sarchlab/attrsim/sim/timing"
)

// AttributeEventTable is the table an AttributeTracer writes to.
const AttributeEventTable = "attribute_event"

// AttributeEvent is one row of the attribute_event table.
type AttributeEvent struct {
	ID        string
	Time      float64
	Attribute string
	What      string
	Value     string
	Detail    string
}

var eventNames = map[*hooking.HookPos]string{
	attribute.HookPosRechargeStart:   "start",
	attribute.HookPosRechargeStop:    "stop",
	attribute.HookPosValueChange:     "value_change",
	attribute.HookPosRechargeApplied: "recharge",
	attribute.HookPosRechargeFailed:  "recharge_failed",
}

// AttributeTracer is a hook that records every attribute event into a
// DataRecorder.
type AttributeTracer struct {
	timeTeller timing.TimeTeller
	recorder   datarecording.DataRecorder
}

// NewAttributeTracer creates the attribute_event table and returns a tracer
// writing to it.
func NewAttributeTracer(
	timeTeller timing.TimeTeller,
	recorder datarecording.DataRecorder,
) *AttributeTracer {
	recorder.CreateTable(AttributeEventTable, AttributeEvent{})

	return &AttributeTracer{
		timeTeller: timeTeller,
		recorder:   recorder,
	}
}

// Func records the hook if it is raised by an attribute.
func (t *AttributeTracer) Func(ctx hooking.HookCtx) {
	a, ok := ctx.Domain.(*attribute.Attribute)
	if !ok {
		return
	}

	what, ok := eventNames[ctx.Pos]
	if !ok {
		return
	}

	t.recorder.InsertData(AttributeEventTable, AttributeEvent{
		ID:        id.Generate(),
		Time:      float64(t.timeTeller.CurrentTime()),
		Attribute: a.Name(),
		What:      what,
		Value:     format(ctx.Item),
		Detail:    format(ctx.Detail),
	})
}

func format(v any) string {
	if v == nil {
		return ""
	}

	return fmt.Sprintf("%v", v)
}
