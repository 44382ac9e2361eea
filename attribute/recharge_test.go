package attribute

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type label string

var _ = Describe("applyUpdate", func() {
	It("should leave the value alone for none", func() {
		v, err := applyUpdate(UpdateNone, 3, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(3))
	})

	It("should replace the value for set", func() {
		v, err := applyUpdate(UpdateSet, 3, 4)

		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(4))
	})

	It("should reject an unknown type", func() {
		_, err := applyUpdate(UpdateType(9), 3, 4)

		Expect(err).To(MatchError(ErrInvalidRechargeType))
	})

	// Sum is addition for numbers and concatenation for text and sequences.
	// These rules are reconstructed from what the policy is meant to do: a
	// fraction added to an integer widens it to float64 instead of being
	// dropped.
	DescribeTable("sum",
		func(value, operand, expected any) {
			v, err := applyUpdate(UpdateSum, value, operand)

			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(expected))
		},
		Entry("ints", 3, 4, 7),
		Entry("keeps the value type", int64(3), 4, int64(7)),
		Entry("floats", 1.5, 2, 3.5),
		Entry("uints", uint8(200), uint8(50), uint8(250)),
		Entry("int plus fraction", 10, 0.5, 10.5),
		Entry("int plus negative fraction", 10, -0.25, 9.75),
		Entry("uint plus fraction", uint8(1), 0.25, 1.25),
		Entry("int plus whole float", 10, 2.0, 12),
		Entry("float32 plus float64", float32(1), 0.5, float32(1.5)),
		Entry("strings", "ab", "cd", "abcd"),
		Entry("named strings", label("ab"), "cd", label("abcd")),
		Entry("slices", []int{1}, []int{2, 3}, []int{1, 2, 3}),
	)

	DescribeTable("sum that cannot be applied",
		func(value, operand any) {
			_, err := applyUpdate(UpdateSum, value, operand)

			Expect(err).To(MatchError(ErrRechargeNotApplicable))
		},
		Entry("bools", true, false),
		Entry("number and text", 1, "1"),
		Entry("negative onto unsigned", uint8(1), -2),
		Entry("overflowing operand", int8(1), 300),
		Entry("absent operand", 1, nil),
		Entry("records", map[string]int{}, map[string]int{}),
	)

	// Push appends a fitting operand as one element and a sequence operand
	// element by element.
	DescribeTable("push",
		func(value, operand, expected any) {
			v, err := applyUpdate(UpdatePush, value, operand)

			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(expected))
		},
		Entry("element", []int{1}, 2, []int{1, 2}),
		Entry("sequence", []int{1}, []int{2, 3}, []int{1, 2, 3}),
		Entry("nested", [][]int{{1}}, []int{2}, [][]int{{1}, {2}}),
		Entry("array", []string{"a"}, [1]string{"b"}, []string{"a", "b"}),
		Entry("any elements", []any{1}, "x", []any{1, "x"}),
	)

	DescribeTable("push that cannot be applied",
		func(value, operand any) {
			_, err := applyUpdate(UpdatePush, value, operand)

			Expect(err).To(MatchError(ErrRechargeNotApplicable))
		},
		Entry("onto text", "abc", "d"),
		Entry("onto a number", 1, 2),
		Entry("mismatched element", []int{1}, []string{"a"}),
		Entry("absent operand", []int{1}, nil),
	)

	It("should not share the backing array with the previous value", func() {
		value := make([]int, 1, 4)
		value[0] = 1

		v, err := applyUpdate(UpdatePush, value, 2)
		Expect(err).NotTo(HaveOccurred())

		pushed := v.([]int)
		pushed[0] = 100

		Expect(value[0]).To(Equal(1))
	})
})
