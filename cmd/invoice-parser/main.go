package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/KAAhwal/invoice-parser-app/internal/batch"
	"github.com/KAAhwal/invoice-parser-app/internal/export"
	"github.com/KAAhwal/invoice-parser-app/internal/invoice"
	"github.com/KAAhwal/invoice-parser-app/internal/scanning"
	"github.com/KAAhwal/invoice-parser-app/internal/server"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// A local .env may provide INVOICE_PARSER_* settings
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	registry := vendor.DefaultRegistry()

	fs := ff.NewFlagSet("invoice-parser")
	var (
		vendorName  = fs.StringLong("vendor", "", "Vendor id or name: "+strings.Join(registry.Names(), ", "))
		outPath     = fs.StringLong("out", "-", "Output file, '-' for stdout")
		formatName  = fs.StringLong("format", "", "Output format: csv, xlsx or json (default from --out extension, else csv)")
		concurrency = fs.IntLong("concurrency", batch.DefaultConcurrency, "Documents processed at once")
		timeout     = fs.DurationLong("timeout", 5*time.Minute, "Per-document time limit, 0 disables it")
		cachePath   = fs.StringLong("cache", "", "Result cache file path (optional)")
		listen      = fs.StringLong("listen", "", "Serve the HTTP API on this address instead of running a batch, e.g. :8080")
		ocrBackend  = fs.StringLong("ocr", "tesseract", "OCR backend: tesseract, gemini, ollama or none")
		enhance     = fs.BoolLong("enhance", "Grayscale, contrast and sharpen pages before OCR")
		tessBinary  = fs.StringLong("tesseract-bin", "tesseract", "Tesseract binary")
		tessLang    = fs.StringLong("tesseract-lang", "eng", "Tesseract language")
		tessPSM     = fs.IntLong("tesseract-psm", 6, "Tesseract page segmentation mode")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		debug       = fs.BoolLong("debug", "Log pipeline stages")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("INVOICE_PARSER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	recognizer, err := newRecognizer(*ocrBackend, ocrConfig{
		tesseract: scanning.TesseractConfig{Binary: *tessBinary, Lang: *tessLang, PSM: *tessPSM},
		geminiKey: *geminiKey, geminiModel: *geminiModel,
		ollamaURL: *ollamaURL, ollamaModel: *ollamaModel,
	})
	if err != nil {
		slog.Error("Failed to initialize OCR", "backend", *ocrBackend, "error", err)
		os.Exit(1)
	}
	if recognizer != nil {
		defer recognizer.Close()
	}

	source := scanning.NewSource(nil, recognizer, scanning.WithEnhancement(*enhance))
	engine := invoice.NewEngine(source, nil)

	opts := []batch.Option{batch.WithConcurrency(*concurrency), batch.WithTimeout(*timeout)}
	if *cachePath != "" {
		slog.Info("Opening result cache...", "path", *cachePath)
		cache, err := batch.NewBoltCache(*cachePath)
		if err != nil {
			slog.Error("Failed to open cache", "error", err)
			os.Exit(1)
		}
		defer cache.Close()
		if n, err := cache.Len(); err == nil {
			slog.Info("Result cache ready", "entries", n)
		}
		opts = append(opts, batch.WithCache(cache))
	}
	runner := batch.NewRunner(engine, opts...)

	if *listen != "" {
		serve(registry, runner, *listen, server.BasicAuth{Username: *authUser, Password: *authPass})
		return
	}

	if err := runBatch(registry, runner, *vendorName, *outPath, *formatName, fs.GetArgs()); err != nil {
		slog.Error("Batch failed", "error", err)
		os.Exit(1)
	}
}

type ocrConfig struct {
	tesseract   scanning.TesseractConfig
	geminiKey   string
	geminiModel string
	ollamaURL   string
	ollamaModel string
}

func newRecognizer(backend string, cfg ocrConfig) (scanning.Recognizer, error) {
	switch backend {
	case "tesseract":
		slog.Info("Initializing Tesseract OCR...", "binary", cfg.tesseract.Binary, "lang", cfg.tesseract.Lang)
		return scanning.NewTesseract(cfg.tesseract, nil), nil
	case "gemini":
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini api key is required: set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini OCR...", "model", cfg.geminiModel)
		return scanning.NewGemini(apiKey, cfg.geminiModel)
	case "ollama":
		slog.Info("Initializing Ollama OCR...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		return scanning.NewOllama(cfg.ollamaURL, cfg.ollamaModel)
	case "none":
		slog.Info("OCR disabled, using native text only")
		return nil, nil
	}
	return nil, fmt.Errorf("invalid ocr backend %q: valid are tesseract, gemini, ollama, none", backend)
}

func runBatch(registry *vendor.Registry, runner *batch.Runner, vendorName, outPath, formatName string, paths []string) error {
	if vendorName == "" {
		return fmt.Errorf("--vendor is required")
	}
	if len(paths) == 0 {
		return fmt.Errorf("no input files: pass PDFs, directories or ZIP archives")
	}

	profile, err := registry.Lookup(vendorName)
	if err != nil {
		return err
	}

	if formatName == "" && outPath != "-" {
		formatName = strings.TrimPrefix(filepath.Ext(outPath), ".")
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	inputs, err := batch.LoadPaths(paths)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := runner.Run(ctx, profile, inputs)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if outPath != "-" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, format, report.Rows); err != nil {
		return err
	}

	slog.Info("Done",
		"uploaded", report.Summary.Uploaded,
		"parsed", report.Summary.Parsed,
		"failed", len(report.Summary.Failed),
		"rows", len(report.Rows))
	for _, name := range report.Summary.Failed {
		slog.Warn("No rows extracted", "source", name)
	}
	return nil
}

func serve(registry *vendor.Registry, runner *batch.Runner, addr string, auth server.BasicAuth) {
	srv := server.NewServer(registry, runner, auth)

	// Start server in goroutine
	go func() {
		if err := srv.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", addr, "version", version)
	if auth.Username != "" || auth.Password != "" {
		slog.Info("Basic auth enabled", "user", auth.Username)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
