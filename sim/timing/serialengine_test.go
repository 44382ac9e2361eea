package timing

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/attrsim/sim/hooking"
)

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newMockEvent := func(
		t VTimeInSec,
		handler Handler,
		secondary bool,
	) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		evt.EXPECT().Handler().Return(handler).AnyTimes()
		evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

		return evt
	}

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := newMockEvent(4.0, handler1, false)
		evt2 := newMockEvent(2.0, handler2, false)
		evt3 := newMockEvent(3.0, handler1, false)
		evt4 := newMockEvent(5.0, handler1, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().Handle(evt1).After(handleEvt3)
		handler1.EXPECT().Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTimeInSec(5.0)))
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := newMockEvent(2.0, handler1, true)
		evt2 := newMockEvent(2.0, handler2, false)
		evt3 := newMockEvent(2.0, handler3, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2)
		handleEvt3 := handler3.EXPECT().Handle(evt3)
		handler1.EXPECT().
			Handle(evt1).
			After(handleEvt2).
			After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should run same-time events in scheduling order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := newMockEvent(1.0, handler, false)
		evt2 := newMockEvent(1.0, handler, false)
		evt3 := newMockEvent(1.0, handler, false)

		call1 := handler.EXPECT().Handle(evt1)
		call2 := handler.EXPECT().Handle(evt2).After(call1)
		handler.EXPECT().Handle(evt3).After(call2)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should panic when scheduling an event in the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := newMockEvent(2.0, handler, false)
		evt2 := newMockEvent(1.0, handler, false)

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			Expect(func() { engine.Schedule(evt2) }).To(Panic())
		})

		engine.Schedule(evt1)
		Expect(engine.Run()).To(Succeed())
	})

	It("should report handler errors to hooks", func() {
		handler := NewMockHandler(mockCtrl)
		evt := newMockEvent(1.0, handler, false)
		handlerErr := errors.New("handler failed")
		handler.EXPECT().Handle(evt).Return(handlerErr)

		var reported []any
		engine.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == HookPosEventError {
				reported = append(reported, ctx.Detail)
			}
		}))

		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		Expect(reported).To(ConsistOf(handlerErr))
	})

	It("should invoke hooks before and after each event", func() {
		handler := NewMockHandler(mockCtrl)
		evt := newMockEvent(1.0, handler, false)

		var positions []string
		handler.EXPECT().Handle(evt).Do(func(e Event) {
			positions = append(positions, "Handle")
		})
		engine.AcceptHook(hooking.NewHookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Item).To(BeIdenticalTo(evt))
			positions = append(positions, ctx.Pos.Name)
		}))

		engine.Schedule(evt)

		Expect(engine.Run()).To(Succeed())
		Expect(positions).To(Equal(
			[]string{"BeforeEvent", "Handle", "AfterEvent"}))
	})

	It("should call simulation end handlers when finished", func() {
		handler := NewMockHandler(mockCtrl)
		evt := newMockEvent(3.0, handler, false)
		handler.EXPECT().Handle(evt)

		var endTime VTimeInSec = -1
		engine.RegisterSimulationEndHandler(endHandlerFunc(func(now VTimeInSec) {
			endTime = now
		}))

		engine.Schedule(evt)
		Expect(engine.Run()).To(Succeed())
		engine.Finished()

		Expect(endTime).To(Equal(VTimeInSec(3.0)))
	})
})

type endHandlerFunc func(now VTimeInSec)

func (f endHandlerFunc) Handle(now VTimeInSec) {
	f(now)
}
