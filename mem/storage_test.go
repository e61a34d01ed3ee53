package mem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Storage", func() {
	It("should read and write in single unit", func() {
		storage := NewStorage(4096)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(0, 2)
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := NewStorage(8192)
		Expect(storage.Write(4094, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(4094, 4)
		Expect(res).To(Equal([]byte{1, 2, 3, 4}))
		Expect(storage.NumAllocatedUnits()).To(Equal(2))
	})

	It("should read zeros from untouched units", func() {
		storage := NewStorage(8192)

		res, err := storage.Read(5000, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0, 0, 0}))
	})

	It("should return error if accessing over the capacity", func() {
		storage := NewStorage(4096)

		err := storage.Write(4096, []byte{1})
		Expect(err).To(MatchError(ErrOutOfCapacity))

		_, err = storage.Read(4095, 2)
		Expect(err).To(MatchError(ErrOutOfCapacity))

		_, err = storage.Read(4095, 1)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should read and write words", func() {
		storage := NewStorageWithUnitSize(2048, 16)

		Expect(storage.WriteWord(1023, 2, 0xBEEF)).To(Succeed())
		Expect(storage.WriteWord(3, 2, 0x1_0005)).To(Succeed())

		v, err := storage.ReadWord(1023, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint64(0xBEEF)))

		v, _ = storage.ReadWord(3, 2)
		Expect(v).To(Equal(uint64(5)))

		_, err = storage.ReadWord(1024, 2)
		Expect(err).To(MatchError(ErrOutOfCapacity))
	})

	DescribeTable("bytes per word",
		func(bits, bytes int) {
			Expect(BytesPerWord(bits)).To(Equal(bytes))
		},
		Entry("1 bit", 1, 1),
		Entry("8 bits", 8, 1),
		Entry("10 bits", 10, 2),
		Entry("16 bits", 16, 2),
		Entry("64 bits", 64, 8),
	)
})
