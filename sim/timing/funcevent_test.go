package timing

import (
	"bytes"
	"errors"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("FuncEvent", func() {
	var engine *SerialEngine

	BeforeEach(func() {
		engine = NewSerialEngine()
	})

	It("should run the function at its time", func() {
		var ranAt VTimeInSec = -1
		engine.Schedule(NewFuncEvent(2.5, func() error {
			ranAt = engine.CurrentTime()
			return nil
		}))

		Expect(engine.Run()).To(Succeed())
		Expect(ranAt).To(Equal(VTimeInSec(2.5)))
	})

	It("should run secondary functions after primary ones", func() {
		var order []string
		engine.Schedule(NewSecondaryFuncEvent(1, func() error {
			order = append(order, "secondary")
			return nil
		}))
		engine.Schedule(NewFuncEvent(1, func() error {
			order = append(order, "primary")
			return nil
		}))

		Expect(engine.Run()).To(Succeed())
		Expect(order).To(Equal([]string{"primary", "secondary"}))
	})

	It("should log events and errors", func() {
		buf := new(bytes.Buffer)
		engine.AcceptHook(NewEventLogger(log.New(buf, "", 0)))

		engine.Schedule(NewFuncEvent(1, func() error {
			return errors.New("boom")
		}))

		Expect(engine.Run()).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("*timing.FuncEvent"))
		Expect(buf.String()).To(ContainSubstring("error: boom"))
	})
})
