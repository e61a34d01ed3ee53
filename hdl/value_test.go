package hdl

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BinaryValue", func() {
	It("should pad to the width", func() {
		Expect(BinaryValue{Bits: 5, Width: 8}.String()).To(Equal("00000101"))
		Expect(BinaryValue{Bits: 1, Width: 1}.String()).To(Equal("1"))
	})

	It("should not truncate", func() {
		Expect(BinaryValue{Bits: 5, Width: 2}.String()).To(Equal("101"))
	})

	DescribeTable("fits",
		func(v uint64, width int, fits bool) {
			Expect(Fits(v, width)).To(Equal(fits))
		},
		Entry("zero", uint64(0), 1, true),
		Entry("max 16 bit", uint64(65535), 16, true),
		Entry("overflow 16 bit", uint64(65536), 16, false),
		Entry("max 10 bit", uint64(1023), 10, true),
		Entry("overflow 10 bit", uint64(1024), 10, false),
		Entry("64 bit", ^uint64(0), 64, true),
	)
})
