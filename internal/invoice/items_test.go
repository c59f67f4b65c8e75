package invoice

import (
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

var _ = Describe("ExtractItems", func() {
	var (
		profile *vendor.Profile
		lines   []string
		items   []LineItem
		issues  IssueSet
	)

	BeforeEach(func() {
		profile = sampleProfile()
		lines = []string{
			"Invoice No: IN-9001",
			"Description  Amount",
			"Fuel Surcharge     120.00",
			"continuation text",
			"Handling Fee:         5.00",
			"Adjustment  (45.00)",
			"Invoice Total: 80.00",
			"Late Fee 99.00",
		}
	})

	JustBeforeEach(func() {
		items, issues = ExtractItems(lines, profile)
	})

	It("returns the priced lines between start and break in order", func() {
		Expect(items).To(HaveLen(3))
		Expect(items[0].Description).To(Equal("Fuel Surcharge"))
		Expect(items[0].Amount.StringFixed(2)).To(Equal("120.00"))
		Expect(items[1].Description).To(Equal("Handling Fee"))
		Expect(items[2].Description).To(Equal("Adjustment"))
		Expect(items[2].Amount.StringFixed(2)).To(Equal("-45.00"))
		Expect(issues.Empty()).To(BeTrue())
	})

	When("the table header is absent", func() {
		BeforeEach(func() {
			lines = []string{"Fuel Surcharge 120.00", "Invoice Total: 120.00"}
		})

		It("reports no line items", func() {
			Expect(items).To(BeEmpty())
			Expect(issues.Codes()).To(Equal([]string{IssueNoLineItems}))
		})
	})

	When("there is no break marker", func() {
		BeforeEach(func() {
			profile.Sections[0].Break = regexp.MustCompile(`^Never`)
		})

		It("runs to the end of the lines", func() {
			Expect(items).To(HaveLen(5))
			Expect(items[4].Description).To(Equal("Late Fee"))
		})
	})

	When("a line is excluded", func() {
		BeforeEach(func() {
			profile.Exclude = []*regexp.Regexp{regexp.MustCompile(`^Handling`)}
		})

		It("skips it", func() {
			Expect(items).To(HaveLen(2))
			Expect(items[1].Description).To(Equal("Adjustment"))
		})
	})

	When("the start is nil", func() {
		BeforeEach(func() {
			profile.Sections = []vendor.Section{{}}
			profile.Exclude = []*regexp.Regexp{regexp.MustCompile(`Invoice`)}
		})

		It("scans every line", func() {
			Expect(items).To(HaveLen(4))
			Expect(items[3].Description).To(Equal("Late Fee"))
		})
	})

	When("leading tokens are skipped", func() {
		BeforeEach(func() {
			profile.Sections[0].SkipTokens = 2
			lines[2] = "03/01/24 BOL123 ULSD Dyed 1,000 2.10 2,100.00"
		})

		It("drops them from the description", func() {
			Expect(items[0].Description).To(Equal("ULSD Dyed 1,000 2.10"))
			Expect(items[0].Amount.StringFixed(2)).To(Equal("2100.00"))
		})
	})

	Describe("unparseable amounts", func() {
		BeforeEach(func() {
			profile.Amount = regexp.MustCompile(`\s(\S+)$`)
			lines = []string{"Description  Amount", "Freight 12O.00", "Fuel 10.00"}
		})

		When("the policy drops the line", func() {
			It("skips it without an issue", func() {
				Expect(items).To(HaveLen(1))
				Expect(items[0].Description).To(Equal("Fuel"))
				Expect(issues.Empty()).To(BeTrue())
			})
		})

		When("the policy keeps a zero placeholder", func() {
			BeforeEach(func() {
				profile.Unparseable = vendor.ZeroWithIssue
			})

			It("keeps the line and records the token", func() {
				Expect(items).To(HaveLen(2))
				Expect(items[0].Amount.IsZero()).To(BeTrue())
				Expect(items[0].Issue).To(Equal("amount_unparseable:12O.00"))
				Expect(issues.Codes()).To(Equal([]string{"amount_unparseable:12O.00"}))
			})
		})
	})

	It("processes multiple sections in order", func() {
		profile.Sections = append(profile.Sections, vendor.Section{
			Start: regexp.MustCompile(`^Invoice\s*Total`),
		})
		items, _ = ExtractItems(lines, profile)
		Expect(items).To(HaveLen(4))
		Expect(items[3].Description).To(Equal("Late Fee"))
	})
})
