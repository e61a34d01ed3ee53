package naming

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse hierarchical names with indices", func() {
		n := ParseName("DUT.Port[1][2].CLKA")

		Expect(n.Tokens).To(HaveLen(3))
		Expect(n.Tokens[1].ElemName).To(Equal("Port"))
		Expect(n.Tokens[1].Index).To(Equal([]int{1, 2}))
	})

	DescribeTable("validation",
		func(name string, valid bool) {
			Expect(IsValid(name)).To(Equal(valid))
		},
		Entry("signal", "DUT.ADDRA", true),
		Entry("indexed", "DUT.Bank[3]", true),
		Entry("trailing dot", "DUT.ADDRA.", false),
		Entry("empty element", "DUT..ADDRA", false),
		Entry("lower case", "DUT.addra", false),
		Entry("underscore", "DUT.ADDR_A", false),
		Entry("unbalanced bracket", "DUT.Bank[3", false),
	)

	It("should panic with the offending name", func() {
		Expect(func() { NameMustBeValid("dut") }).
			To(PanicWith(ContainSubstring("Name dut is not valid")))
	})

	It("should build names", func() {
		Expect(BuildName("", "DUT")).To(Equal("DUT"))
		Expect(BuildName("DUT", "CLKA")).To(Equal("DUT.CLKA"))
		Expect(BuildNameWithIndex("DUT", "Reg", 2)).To(Equal("DUT.Reg[2]"))
		Expect(LastToken("DUT.CLKA")).To(Equal("CLKA"))
		Expect(LastToken("CLKA")).To(Equal("CLKA"))
	})
})
