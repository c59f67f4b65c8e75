package invoice

import (
	"context"
	"errors"
	"regexp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/KAAhwal/invoice-parser-app/internal/scanning"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

const scenarioPage = "Invoice No: IN-9001\n" +
	"Invoice Date: 3/1/2024\n" +
	"Description  Amount\n" +
	"Fuel Surcharge     120.00\n" +
	"Handling Fee         5.00\n" +
	"Invoice Total: 125.00\n"

var _ = Describe("Engine", func() {
	var (
		ctx        context.Context
		profile    *vendor.Profile
		recognizer *cannedRecognizer
		engine     *Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		profile = sampleProfile()
		recognizer = &cannedRecognizer{}
		engine = NewEngine(scanning.NewSource(textOpener{}, recognizer), nil)
	})

	Describe("Extract", func() {
		It("emits one row per item with shared header fields", func() {
			rows := engine.Extract(ctx, profile, pdf(scenarioPage), "inv.pdf")
			Expect(rows).To(HaveLen(2))
			for _, r := range rows {
				Expect(r.SourceFile).To(Equal("inv.pdf"))
				Expect(r.VendorName).To(Equal("Sample Energy"))
				Expect(r.InvoiceNumber).To(Equal("IN-9001"))
				Expect(r.InvoiceDate).To(Equal("3/1/2024"))
				Expect(r.TotalString()).To(Equal("125.00"))
				Expect(r.CheckNeeded).To(BeFalse())
				Expect(r.ParsingIssues).To(BeEmpty())
			}
			Expect(rows[0].LineItemDescription).To(Equal("Fuel Surcharge"))
			Expect(rows[0].AmountString()).To(Equal("120.00"))
			Expect(rows[1].LineItemDescription).To(Equal("Handling Fee"))
			Expect(rows[1].AmountString()).To(Equal("5.00"))
		})

		It("flags a total that does not match the items", func() {
			doc := regexp.MustCompile(`125\.00`).ReplaceAllString(scenarioPage, "130.00")
			rows := engine.Extract(ctx, profile, pdf(doc), "inv.pdf")
			Expect(rows).To(HaveLen(2))
			for _, r := range rows {
				Expect(r.CheckNeeded).To(BeTrue())
				Expect(r.ParsingIssues).To(ContainSubstring(IssueTotalMismatch))
			}
		})

		It("normalizes parenthesized adjustments", func() {
			doc := "Invoice No: IN-1\nInvoice Date: 1/1/2024\nDescription  Amount\nAdjustment  (45.00)\nInvoice Total: (45.00)\n"
			rows := engine.Extract(ctx, profile, pdf(doc), "adj.pdf")
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].AmountString()).To(Equal("-45.00"))
			Expect(rows[0].CheckNeeded).To(BeFalse())
		})

		It("is deterministic", func() {
			first := engine.Extract(ctx, profile, pdf(scenarioPage), "inv.pdf")
			second := engine.Extract(ctx, profile, pdf(scenarioPage), "inv.pdf")
			Expect(second).To(Equal(first))
		})

		It("returns no rows for an unreadable document", func() {
			Expect(engine.Extract(ctx, profile, []byte("BAD"), "bad.pdf")).To(BeEmpty())
		})

		It("returns no rows without a table header", func() {
			rows := engine.Extract(ctx, profile, pdf("Invoice No: IN-1\nFuel 10.00\n"), "empty.pdf")
			Expect(rows).To(BeEmpty())
		})
	})

	Describe("Process", func() {
		It("wraps ErrUnreadable", func() {
			_, err := engine.Process(ctx, profile, []byte("BAD"), "bad.pdf")
			Expect(errors.Is(err, scanning.ErrUnreadable)).To(BeTrue())
		})

		It("fails when the context is done", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			_, err := engine.Process(cancelled, profile, pdf(scenarioPage), "inv.pdf")
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})

		It("records issues for pages without rows", func() {
			res, err := engine.Process(ctx, profile, pdf(scenarioPage, "Remittance copy"), "inv.pdf")
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Pages).To(Equal(2))
			Expect(res.Rows).To(HaveLen(2))
			Expect(res.Issues.Has(IssueNoLineItems)).To(BeTrue())
		})

		When("a page has no usable native text", func() {
			BeforeEach(func() {
				recognizer.text = scenarioPage
			})

			It("recognizes the page", func() {
				res, err := engine.Process(ctx, profile, pdf("ÉÉÉ ÑÑ"), "scan.pdf")
				Expect(err).NotTo(HaveOccurred())
				Expect(res.OCRPages).To(Equal(1))
				Expect(res.Rows).To(HaveLen(2))
			})
		})

		When("the profile reads a header region", func() {
			BeforeEach(func() {
				profile.HeaderRegion = &scanning.Region{X0: 0.5, Y0: 0, X1: 1, Y1: 0.2}
				recognizer.text = scenarioPage
				recognizer.regionText = "Invoice No: IN-4242\nInvoice Date: 9/9/2024"
			})

			It("takes header fields from the region of a recognized page", func() {
				rows := engine.Extract(ctx, profile, pdf("ÉÉÉ ÑÑ"), "scan.pdf")
				Expect(rows).To(HaveLen(2))
				Expect(rows[0].InvoiceNumber).To(Equal("IN-4242"))
				Expect(rows[0].InvoiceDate).To(Equal("9/9/2024"))
				Expect(recognizer.calls).To(Equal(2))
			})

			It("uses native lines for pages with usable text", func() {
				rows := engine.Extract(ctx, profile, pdf(scenarioPage), "inv.pdf")
				Expect(rows).To(HaveLen(2))
				Expect(rows[0].InvoiceNumber).To(Equal("IN-9001"))
				Expect(rows[0].InvoiceDate).To(Equal("3/1/2024"))
				Expect(recognizer.calls).To(Equal(0))
			})
		})
	})

	Describe("topology", func() {
		var doc []byte

		BeforeEach(func() {
			doc = pdf(
				"Invoice No: IN-1\nInvoice Date: 1/1/2024\nDescription  Amount\nFuel 10.00\nInvoice Total: 10.00",
				"Invoice No: IN-2\nInvoice Date: 1/2/2024\nDescription  Amount\nFuel 20.00\nInvoice Total: 20.00",
			)
		})

		It("runs per page by default", func() {
			rows := engine.Extract(ctx, profile, doc, "two.pdf")
			Expect(rows).To(HaveLen(2))
			Expect(rows[0].InvoiceNumber).To(Equal("IN-1"))
			Expect(rows[1].InvoiceNumber).To(Equal("IN-2"))
			Expect(rows[1].TotalString()).To(Equal("20.00"))
			Expect(rows[1].CheckNeeded).To(BeFalse())
		})

		When("the profile spans the whole document", func() {
			BeforeEach(func() {
				profile.Topology = vendor.WholeDocument
				profile.Sections = []vendor.Section{{}}
				profile.Exclude = []*regexp.Regexp{regexp.MustCompile(`^Invoice`)}
			})

			It("reconciles across pages", func() {
				rows := engine.Extract(ctx, profile, doc, "two.pdf")
				Expect(rows).To(HaveLen(2))
				Expect(rows[1].InvoiceNumber).To(Equal("IN-1"))
				Expect(rows[1].TotalString()).To(Equal("10.00"))
				Expect(rows[1].ParsingIssues).To(Equal(IssueTotalMismatch))
			})
		})
	})

	It("runs the registered vendor profiles", func() {
		p, err := vendor.DefaultRegistry().Lookup("Flint Hills")
		Expect(err).NotTo(HaveOccurred())
		doc := pdf("FLINT HILLS RESOURCES LP\nInvoice No: 9100001\nInvoice Date: 2/2/2024\n" +
			"ULSD 7,500 2.1234 15,925.50\nFreight 75.00\nInvoice Total $16,000.50")
		rows := engine.Extract(ctx, p, doc, "fhr.pdf")
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].VendorName).To(Equal("Flint Hills Resources LP"))
		Expect(rows[0].InvoiceNumber).To(Equal("9100001"))
		Expect(rows[0].TotalString()).To(Equal("16000.50"))
		Expect(rows[0].CheckNeeded).To(BeFalse())
	})
})
