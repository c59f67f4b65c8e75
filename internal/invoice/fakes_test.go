package invoice

import (
	"context"
	"errors"
	"image"
	"regexp"
	"strings"

	"github.com/KAAhwal/invoice-parser-app/internal/scanning"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

// textOpener treats the input bytes as page texts separated by form feeds
type textOpener struct{}

func (textOpener) Open(data []byte) (scanning.Document, error) {
	if strings.HasPrefix(string(data), "BAD") {
		return nil, errors.New("not a pdf")
	}
	return &textDocument{pages: strings.Split(string(data), "\f")}, nil
}

type textDocument struct {
	pages []string
}

func (d *textDocument) NumPage() int { return len(d.pages) }

func (d *textDocument) Text(page int) (string, error) { return d.pages[page], nil }

func (d *textDocument) Render(page int, dpi float64) (image.Image, error) {
	return image.NewGray(image.Rect(0, 0, 100, 100)), nil
}

func (d *textDocument) Close() error { return nil }

// cannedRecognizer returns regionText for crops smaller than a full page
type cannedRecognizer struct {
	text       string
	regionText string
	calls      int
}

func (r *cannedRecognizer) Recognize(ctx context.Context, img image.Image) (string, error) {
	r.calls++
	if r.regionText != "" && img.Bounds().Dx() < 100 {
		return r.regionText, nil
	}
	return r.text, nil
}

func (r *cannedRecognizer) Close() error { return nil }

func pdf(pages ...string) []byte {
	return []byte(strings.Join(pages, "\f"))
}

// sampleProfile matches the layout used throughout these specs
func sampleProfile() *vendor.Profile {
	return &vendor.Profile{
		ID:   "sample",
		Name: "Sample Energy",
		InvoiceNumber: vendor.FieldRule{
			Primary: regexp.MustCompile(`Invoice\s*No:\s*(\S+)`),
		},
		InvoiceDate: vendor.FieldRule{
			Primary: regexp.MustCompile(`Invoice\s*Date:\s*(\S+)`),
		},
		Total: vendor.TotalRule{
			Primary: regexp.MustCompile(`Invoice\s*Total:\s*(\S+)`),
		},
		Sections: []vendor.Section{{
			Start: regexp.MustCompile(`^Description\s+Amount`),
			Break: regexp.MustCompile(`^Invoice\s*Total`),
		}},
		Amount:      regexp.MustCompile(`(\(?-?[\d,]+\.\d{2}\)?-?)\s*$`),
		Tolerance:   vendor.DefaultTolerance,
		TotalSource: vendor.TotalDeclared,
	}
}
