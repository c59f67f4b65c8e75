package scanning

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"strconv"
)

// TesseractConfig configures the tesseract command line
type TesseractConfig struct {
	Binary      string // binary name or absolute path; default "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	PSM         int // page segmentation mode; 0 keeps tesseract's default
	OEM         int // engine mode; 0 keeps tesseract's default
}

// Tesseract implements Recognizer by shelling out to the tesseract CLI
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract creates a Tesseract recognizer
func NewTesseract(cfg TesseractConfig, logger *slog.Logger) *Tesseract {
	if logger == nil {
		logger = slog.Default()
	}
	return NewTesseractWithRunner(cfg, execRunner{logger: logger})
}

// NewTesseractWithRunner creates a Tesseract recognizer with a custom runner for testing
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner) *Tesseract {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Recognize writes the image to a temporary PNG and runs tesseract on it
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	data, err := encodePNG(img)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "invoice-page-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, t.args(path)...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// tesseract <file> stdout -l <lang> [--psm N] [--oem N] [--tessdata-dir D]
func (t *Tesseract) args(path string) []string {
	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// Close is a no-op for the CLI recognizer
func (t *Tesseract) Close() error {
	return nil
}
