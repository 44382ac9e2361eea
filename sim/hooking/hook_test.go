package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = NewHookableBase()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in registration order", func() {
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		ctx := HookCtx{Domain: base, Pos: &HookPos{Name: "Test"}}

		call1 := hook1.EXPECT().Func(ctx)
		hook2.EXPECT().Func(ctx).After(call1)

		base.AcceptHook(hook1)
		base.AcceptHook(hook2)
		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(Equal([]Hook{hook1, hook2}))
	})

	It("should panic on duplicated hooks", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should adapt functions", func() {
		var seen []string
		pos := &HookPos{Name: "Func"}
		base.AcceptHook(NewHookFunc(func(ctx HookCtx) {
			seen = append(seen, ctx.Pos.Name)
		}))

		base.InvokeHook(HookCtx{Domain: base, Pos: pos})

		Expect(seen).To(Equal([]string{"Func"}))
	})
})
