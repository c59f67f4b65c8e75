package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

// DefaultConcurrency is the number of documents processed at once
const DefaultConcurrency = 4

// Input is one named PDF
type Input struct {
	Name string
	Data []byte
}

// Summary counts the documents of a run
type Summary struct {
	Uploaded  int      `json:"uploaded"`
	Parsed    int      `json:"parsed"`
	Failed    []string `json:"failed"`
	CacheHits int      `json:"cache_hits"`
}

// RunReport is the outcome of a run. Rows keep the input order.
type RunReport struct {
	Rows    []invoice.Row
	Summary Summary
}

// Extractor runs the pipeline over one document
type Extractor interface {
	Process(ctx context.Context, p *vendor.Profile, pdf []byte, source string) (*invoice.Result, error)
}

// Runner extracts many documents with a bounded worker pool
type Runner struct {
	extractor   Extractor
	cache       Cache
	concurrency int
	timeout     time.Duration
	logger      *slog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithCache reuses results of identical documents
func WithCache(c Cache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithConcurrency bounds the number of documents in flight
func WithConcurrency(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithTimeout bounds the time spent on one document. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a runner around an extractor, usually an *invoice.Engine
func NewRunner(extractor Extractor, opts ...Option) *Runner {
	r := &Runner{
		extractor:   extractor,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type outcome struct {
	rows   []invoice.Row
	failed bool
	cached bool
}

// Run extracts every input with the given profile. It fails only when ctx is done.
func (r *Runner) Run(ctx context.Context, p *vendor.Profile, inputs []Input) (*RunReport, error) {
	outcomes := make([]outcome, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			outcomes[i] = r.process(gctx, p, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("running batch: %w", err)
	}

	report := &RunReport{Summary: Summary{Uploaded: len(inputs), Failed: []string{}}}
	seen := make(map[string]bool)
	for i, o := range outcomes {
		if o.cached {
			report.Summary.CacheHits++
		}
		if o.failed || len(o.rows) == 0 {
			if name := inputs[i].Name; !seen[name] {
				seen[name] = true
				report.Summary.Failed = append(report.Summary.Failed, name)
			}
			continue
		}
		report.Summary.Parsed++
		report.Rows = append(report.Rows, o.rows...)
	}

	r.logger.Info("Batch finished",
		"vendor", p.ID,
		"uploaded", report.Summary.Uploaded,
		"parsed", report.Summary.Parsed,
		"failed", len(report.Summary.Failed),
		"cache_hits", report.Summary.CacheHits,
		"rows", len(report.Rows))
	return report, nil
}

func (r *Runner) process(ctx context.Context, p *vendor.Profile, in Input) outcome {
	logger := r.logger.With("source", in.Name, "vendor", p.ID)

	key := CacheKey(in.Data, p.ID)
	if r.cache != nil {
		entry, ok, err := r.cache.Get(key)
		if err != nil {
			logger.Warn("Cache lookup failed", "error", err)
		}
		if ok {
			logger.Debug("Cache hit")
			return outcome{rows: relabel(entry.Rows, in.Name), cached: true}
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := r.extractor.Process(ctx, p, in.Data, in.Name)
	if err != nil {
		logger.Warn("Document failed", "error", err)
		return outcome{failed: true}
	}
	logger.Info("Document processed",
		"pages", res.Pages,
		"ocr_pages", res.OCRPages,
		"rows", len(res.Rows),
		"issues", res.Issues.String(),
		"duration", time.Since(start))

	if r.cache != nil {
		entry := &CacheEntry{Rows: res.Rows, Pages: res.Pages, OCRPages: res.OCRPages, Issues: res.Issues.Codes()}
		if err := r.cache.Put(key, entry); err != nil {
			logger.Warn("Cache store failed", "error", err)
		}
	}
	return outcome{rows: res.Rows}
}

// relabel copies cached rows under the name of the current input, since the
// cache key ignores the name.
func relabel(rows []invoice.Row, source string) []invoice.Row {
	out := make([]invoice.Row, len(rows))
	for i, row := range rows {
		row.SourceFile = source
		out[i] = row
	}
	return out
}
