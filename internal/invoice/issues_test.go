package invoice

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IssueSet", func() {
	var set IssueSet

	BeforeEach(func() {
		set = IssueSet{}
	})

	It("starts empty", func() {
		Expect(set.Empty()).To(BeTrue())
		Expect(set.String()).To(BeEmpty())
	})

	It("orders fixed codes canonically and item codes last", func() {
		set.Add(AmountUnparseable("1O.00"))
		set.Add(IssueTotalMismatch)
		set.Add(IssueInvoiceNumberMissing)
		set.Add(AmountUnparseable("x.5"))
		Expect(set.Codes()).To(Equal([]string{
			IssueInvoiceNumberMissing,
			IssueTotalMismatch,
			"amount_unparseable:1O.00",
			"amount_unparseable:x.5",
		}))
	})

	It("de-duplicates codes", func() {
		set.Add(IssueNoLineItems)
		set.Add(IssueNoLineItems)
		set.Add(AmountUnparseable("a"))
		set.Add(AmountUnparseable("a"))
		Expect(set.String()).To(Equal("no_line_items;amount_unparseable:a"))
	})

	It("merges another set", func() {
		var other IssueSet
		other.Add(IssueTotalMissing)
		set.Add(IssueInvoiceDateMissing)
		set.Merge(other)
		Expect(set.Has(IssueTotalMissing)).To(BeTrue())
		Expect(set.String()).To(Equal("invoice_date_missing;total_missing"))
	})

	It("ignores empty codes", func() {
		set.Add("")
		Expect(set.Empty()).To(BeTrue())
	})
})
