package invoice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KAAhwal/invoice-parser-app/internal/scanning"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

// Result is the outcome of one pipeline run over a document
type Result struct {
	Rows     []Row
	Issues   IssueSet
	Pages    int
	OCRPages int
}

// Engine runs the extraction pipeline for any vendor profile.
// It holds no per-document state and is safe for concurrent use.
type Engine struct {
	source *scanning.Source
	logger *slog.Logger
}

// NewEngine creates an engine reading documents through source.
// A nil source reads native text only.
func NewEngine(source *scanning.Source, logger *slog.Logger) *Engine {
	if source == nil {
		source = scanning.NewSource(nil, nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{source: source, logger: logger}
}

// Extract returns the rows of a document. Documents that cannot be opened
// yield no rows.
func (e *Engine) Extract(ctx context.Context, p *vendor.Profile, pdf []byte, source string) []Row {
	res, err := e.Process(ctx, p, pdf, source)
	if err != nil {
		e.logger.Warn("document skipped", "source", source, "vendor", p.ID, "error", err)
		return nil
	}
	return res.Rows
}

type unit struct {
	page   int
	lines  []string
	region []string
}

// Process runs the pipeline and reports page statistics and issues.
// The only errors are an unreadable document and a done context.
func (e *Engine) Process(ctx context.Context, p *vendor.Profile, pdf []byte, source string) (*Result, error) {
	log := e.logger.With("source", source, "vendor", p.ID)

	reader, err := e.source.Open(pdf)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", source, err)
	}
	defer reader.Close()
	log.Debug("opened", "pages", reader.NumPage())

	opts := p.ScanOptions()
	res := &Result{Pages: reader.NumPage()}
	pages := make([]scanning.PageLines, 0, res.Pages)
	for i := 0; i < res.Pages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", source, err)
		}
		pl := reader.Page(ctx, i, opts)
		if pl.IsOCR {
			res.OCRPages++
		}
		pages = append(pages, pl)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	log.Debug("text_acquired", "ocr_pages", res.OCRPages)

	for _, u := range e.units(ctx, reader, pages, p) {
		h, issues := ExtractHeader(u.lines, u.region, p)
		log.Debug("header_resolved", "page", u.page,
			"invoice_number", h.InvoiceNumber, "number_from", h.NumberFrom,
			"invoice_date", h.InvoiceDate, "date_from", h.DateFrom,
			"total_from", h.TotalFrom)

		items, itemIssues := ExtractItems(u.lines, p)
		issues.Merge(itemIssues)
		log.Debug("items_extracted", "page", u.page, "items", len(items))

		rec := Reconcile(h, items, p)
		issues.Merge(rec.Issues)
		log.Debug("reconciled", "page", u.page, "sum", rec.Sum, "total_from", rec.TotalFrom, "issues", issues.String())

		rows := BuildRows(source, p.Name, h, rec, items, issues)
		log.Debug("rows_emitted", "page", u.page, "rows", len(rows))

		res.Rows = append(res.Rows, rows...)
		res.Issues.Merge(issues)
	}
	return res, nil
}

// units splits the acquired text according to the profile topology
func (e *Engine) units(ctx context.Context, reader *scanning.Reader, pages []scanning.PageLines, p *vendor.Profile) []unit {
	// Pages with native text search their own lines for header fields, so
	// only recognized pages pay for a second render of the region.
	region := func(page int) []string {
		if p.HeaderRegion == nil || page >= len(pages) || !pages[page].IsOCR {
			return nil
		}
		return reader.Region(ctx, page, *p.HeaderRegion, p.ScanOptions())
	}

	if p.Topology == vendor.WholeDocument {
		var lines []string
		for _, pl := range pages {
			lines = append(lines, pl.Lines...)
		}
		return []unit{{page: 0, lines: lines, region: region(0)}}
	}

	units := make([]unit, 0, len(pages))
	for _, pl := range pages {
		units = append(units, unit{page: pl.Index, lines: pl.Lines, region: region(pl.Index)})
	}
	return units
}
