package batch

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LoadPaths reads PDF files, directories of PDFs (not recursive) and ZIP
// archives into inputs, in argument order.
func LoadPaths(paths []string) ([]Input, error) {
	var inputs []Input
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading input: %w", err)
		}

		if info.IsDir() {
			entries, err := os.ReadDir(p)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", p, err)
			}
			for _, e := range entries {
				if e.IsDir() || !IsPDF(e.Name()) {
					continue
				}
				in, err := readFile(filepath.Join(p, e.Name()))
				if err != nil {
					return nil, err
				}
				inputs = append(inputs, in)
			}
			continue
		}

		switch {
		case IsZip(p):
			data, err := os.ReadFile(p)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", p, err)
			}
			entries, err := ReadZip(data)
			if err != nil {
				return nil, fmt.Errorf("unpacking %s: %w", p, err)
			}
			inputs = append(inputs, entries...)
		case IsPDF(p):
			in, err := readFile(p)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, in)
		default:
			return nil, fmt.Errorf("unsupported input %s: expected .pdf, .zip or a directory", p)
		}
	}
	return inputs, nil
}

// ReadZip returns the PDF entries of a ZIP archive in archive order
func ReadZip(data []byte) ([]Input, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}

	var inputs []Input
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(f.Name, "__MACOSX/") || !IsPDF(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}
		inputs = append(inputs, Input{Name: path.Base(f.Name), Data: content})
	}
	return inputs, nil
}

// IsPDF reports whether name has a .pdf extension
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

// IsZip reports whether name has a .zip extension
func IsZip(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

func readFile(p string) (Input, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Input{}, fmt.Errorf("reading %s: %w", p, err)
	}
	return Input{Name: filepath.Base(p), Data: data}, nil
}
