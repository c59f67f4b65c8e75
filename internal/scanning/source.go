package scanning

import (
	"context"
	"fmt"
	"image"
	"log/slog"
)

const (
	DefaultOCRThreshold = 0.5
	DefaultDPI          = 300
)

// Source yields per-page text, falling back to OCR when the native text
// layer looks unreliable
type Source struct {
	opener     Opener
	recognizer Recognizer
	enhance    bool
	logger     *slog.Logger
}

// SourceOption configures a Source
type SourceOption func(*Source)

// WithEnhancement preprocesses rendered pages before recognition
func WithEnhancement(enabled bool) SourceOption {
	return func(s *Source) { s.enhance = enabled }
}

// WithLogger sets the logger used by the Source
func WithLogger(logger *slog.Logger) SourceOption {
	return func(s *Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSource creates a Source. A nil recognizer disables OCR; a nil opener uses go-fitz.
func NewSource(opener Opener, recognizer Recognizer, opts ...SourceOption) *Source {
	if opener == nil {
		opener = FitzOpener{}
	}
	s := &Source{
		opener:     opener,
		recognizer: recognizer,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a PDF byte stream for page-wise reading
func (s *Source) Open(data []byte) (*Reader, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnreadable)
	}
	doc, err := s.opener.Open(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return &Reader{src: s, doc: doc}, nil
}

// Reader reads pages from one opened document
type Reader struct {
	src *Source
	doc Document
}

// NumPage returns the number of pages of the document
func (r *Reader) NumPage() int {
	return r.doc.NumPage()
}

// Close releases the underlying document
func (r *Reader) Close() error {
	return r.doc.Close()
}

// Page returns the lines of one page. Native text is used unless its ASCII
// ratio is below the threshold, in which case the page is rendered and
// recognized. A failed OCR attempt keeps the native text.
func (r *Reader) Page(ctx context.Context, index int, opts Options) PageLines {
	opts = opts.withDefaults()
	logger := r.src.logger.With("page", index)

	native, err := r.doc.Text(index)
	if err != nil {
		logger.Warn("Native text extraction failed", "error", err)
		native = ""
	}

	ratio := asciiRatio(native)
	if opts.DisableOCR || ratio >= opts.OCRThreshold {
		return PageLines{Index: index, Lines: splitLines(native)}
	}

	if r.src.recognizer == nil {
		logger.Debug("Native text below ASCII threshold but no recognizer configured", "ascii_ratio", ratio)
		return PageLines{Index: index, Lines: splitLines(native)}
	}

	logger.Debug("Native text below ASCII threshold, trying OCR", "ascii_ratio", ratio, "threshold", opts.OCRThreshold)
	img, err := r.render(index, opts.DPI)
	if err != nil {
		logger.Warn("Rendering page for OCR failed, keeping native text", "error", err)
		return PageLines{Index: index, Lines: splitLines(native)}
	}
	text, err := r.recognize(ctx, img)
	if err != nil {
		logger.Warn("OCR failed, keeping native text", "error", err)
		return PageLines{Index: index, Lines: splitLines(native)}
	}
	return PageLines{Index: index, Lines: splitLines(text), IsOCR: true}
}

// Region renders a page, crops the fractional region and recognizes it.
// It returns no lines when OCR is unavailable or fails.
func (r *Reader) Region(ctx context.Context, index int, region Region, opts Options) []string {
	opts = opts.withDefaults()
	logger := r.src.logger.With("page", index)
	if opts.DisableOCR || r.src.recognizer == nil {
		return nil
	}

	img, err := r.render(index, opts.DPI)
	if err != nil {
		logger.Warn("Rendering page for region OCR failed", "error", err)
		return nil
	}
	text, err := r.recognize(ctx, cropRegion(img, region))
	if err != nil {
		logger.Warn("Region OCR failed", "error", err)
		return nil
	}
	return splitLines(text)
}

func (r *Reader) render(index, dpi int) (image.Image, error) {
	return r.doc.Render(index, float64(dpi))
}

func (r *Reader) recognize(ctx context.Context, img image.Image) (string, error) {
	if r.src.enhance {
		img = enhanceForOCR(img)
	}
	text, err := r.src.recognizer.Recognize(ctx, img)
	if err != nil {
		return "", fmt.Errorf("recognizing page image: %w", err)
	}
	return text, nil
}

func (o Options) withDefaults() Options {
	if o.OCRThreshold <= 0 {
		o.OCRThreshold = DefaultOCRThreshold
	}
	if o.DPI <= 0 {
		o.DPI = DefaultDPI
	}
	return o
}
