package scanning

import (
	"context"
	"errors"
	"image"
)

// ErrUnreadable is returned when a byte stream cannot be opened as a PDF.
var ErrUnreadable = errors.New("document unreadable")

// Document is an opened PDF
type Document interface {
	// NumPage returns the number of pages
	NumPage() int
	// Text returns the native text layer of a page
	Text(page int) (string, error)
	// Render rasterizes a page at the given resolution
	Render(page int, dpi float64) (image.Image, error)
	// Close releases the document
	Close() error
}

// Opener opens raw PDF bytes as a Document
type Opener interface {
	Open(data []byte) (Document, error)
}

// Recognizer turns a raster image into text (OCR)
type Recognizer interface {
	// Recognize returns the text found in the image
	Recognize(ctx context.Context, img image.Image) (string, error)
	// Close releases any resources held by the recognizer
	Close() error
}

// Region is a rectangle expressed as fractions of the page size.
type Region struct {
	X0, Y0, X1, Y1 float64
}

// Options control how a page's text is acquired
type Options struct {
	// OCRThreshold is the ASCII ratio below which native text is replaced by OCR
	OCRThreshold float64
	// DPI is the render resolution used for OCR
	DPI int
	// DisableOCR keeps native text regardless of its ASCII ratio
	DisableOCR bool
}

// PageLines is the ordered, trimmed, non-empty text of one page
type PageLines struct {
	Index int
	Lines []string
	IsOCR bool
}
