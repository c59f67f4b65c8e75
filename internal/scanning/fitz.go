package scanning

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzOpener opens PDFs with MuPDF through go-fitz
type FitzOpener struct{}

// Open implements Opener
func (FitzOpener) Open(data []byte) (Document, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	return &fitzDocument{doc: doc}, nil
}

type fitzDocument struct {
	doc *fitz.Document
}

func (d *fitzDocument) NumPage() int {
	return d.doc.NumPage()
}

func (d *fitzDocument) Text(page int) (string, error) {
	txt, err := d.doc.Text(page)
	if err != nil {
		return "", fmt.Errorf("extracting text of page %d: %w", page, err)
	}
	return txt, nil
}

func (d *fitzDocument) Render(page int, dpi float64) (image.Image, error) {
	img, err := d.doc.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page, err)
	}
	return img, nil
}

func (d *fitzDocument) Close() error {
	return d.doc.Close()
}
