package attribute

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/attrsim/sim/timing"
)

type sliceHandler []int

func (sliceHandler) Handle() error { return nil }

var _ = Describe("Lifecycle handlers", func() {
	var (
		engine *timing.SerialEngine
		mana   *Attribute
		count  int
		h      *FuncHandler
	)

	BeforeEach(func() {
		engine = timing.NewSerialEngine()
		mana, _ = MakeBuilder().
			WithEngine(engine).
			WithValue(0).
			WithUpdateType(UpdateSum).
			WithUpdateValue(1).
			Build("Mana")

		count = 0
		h = NewFuncHandler(func() error {
			count++
			return nil
		})
	})

	It("should not call a removed start handler", func() {
		Expect(mana.AddStartHandler(h)).To(Succeed())
		mana.RemoveStartHandler(h)

		Expect(mana.StartUpdateHandler()).To(Succeed())

		Expect(count).To(Equal(0))
	})

	It("should call a handler once per registration", func() {
		Expect(mana.AddStartHandler(h)).To(Succeed())
		Expect(mana.AddStartHandler(h)).To(Succeed())

		Expect(mana.StartUpdateHandler()).To(Succeed())

		Expect(count).To(Equal(2))
	})

	It("should remove every registration of a handler", func() {
		other := NewFuncHandler(func() error { return nil })

		Expect(mana.RegisterStopHandler(h)).To(Succeed())
		Expect(mana.RegisterStopHandler(other)).To(Succeed())
		Expect(mana.RegisterStopHandler(h)).To(Succeed())
		mana.RemoveStopHandler(h)

		Expect(mana.StartUpdateHandler()).To(Succeed())
		Expect(mana.StopUpdateHandler()).To(Succeed())

		Expect(count).To(Equal(0))
	})

	It("should tell apart handlers wrapping the same function", func() {
		fn := func() error {
			count++
			return nil
		}
		first := NewFuncHandler(fn)
		second := NewFuncHandler(fn)

		Expect(mana.AddStartHandler(first)).To(Succeed())
		Expect(mana.AddStartHandler(second)).To(Succeed())
		mana.RemoveStartHandler(first)

		Expect(mana.StartUpdateHandler()).To(Succeed())

		Expect(count).To(Equal(1))
	})

	It("should ignore removing an unknown handler", func() {
		Expect(func() {
			mana.RemoveStartHandler(h)
			mana.RemoveStopHandler(nil)
		}).NotTo(Panic())
	})

	DescribeTable("rejecting handlers that cannot be invoked",
		func(handler LifecycleHandler) {
			Expect(mana.AddStartHandler(handler)).
				To(MatchError(ErrInvalidStartHandler))
			Expect(mana.RegisterStopHandler(handler)).
				To(MatchError(ErrInvalidStopHandler))
		},
		Entry("nil", nil),
		Entry("typed nil", (*FuncHandler)(nil)),
		Entry("nil function", NewFuncHandler(nil)),
		Entry("not comparable", sliceHandler{1}),
	)
})
