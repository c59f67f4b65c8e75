package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/KAAhwal/invoice-parser-app/internal/batch"
	"github.com/KAAhwal/invoice-parser-app/internal/export"
	"github.com/KAAhwal/invoice-parser-app/internal/vendor"
)

const maxFormSize = int64(200 << 20) // 200MB, ZIP uploads of scanned batches

type vendorInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// jsonError writes an error body with CORS headers set
func jsonError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleListVendors returns the supported vendors
func (s *Server) handleListVendors(w http.ResponseWriter, r *http.Request) {
	vendors := make([]vendorInfo, 0)
	for _, p := range s.registry.Profiles() {
		vendors = append(vendors, vendorInfo{ID: p.ID, Name: p.Name})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(vendors); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// handleExtract runs the uploaded PDFs or ZIP archives through a vendor
// profile and returns the rows as a download.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	logger := slog.With("request_id", requestID)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		logger.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "Upload is too large. Maximum size is 200MB.", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	profile, err := s.registry.Lookup(r.FormValue("vendor"))
	if errors.Is(err, vendor.ErrUnknownVendor) {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	format, err := export.ParseFormat(r.FormValue("format"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(w, "No file was selected. Please choose a PDF or ZIP file to upload.", http.StatusBadRequest)
		return
	}

	inputs, err := readUploads(files)
	if err != nil {
		logger.Error("Error reading upload", "error", err)
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.runner.Run(r.Context(), profile, inputs)
	if err != nil {
		logger.Error("Error running extraction", "vendor", profile.ID, "error", err)
		jsonError(w, "Extraction was interrupted", http.StatusServiceUnavailable)
		return
	}

	var body bytes.Buffer
	if err := export.Write(&body, format, report.Rows); err != nil {
		logger.Error("Error writing export", "format", format, "error", err)
		jsonError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_line_items%s"`, profile.ID, format.Extension()))
	w.Header().Set("X-Documents-Uploaded", strconv.Itoa(report.Summary.Uploaded))
	w.Header().Set("X-Documents-Parsed", strconv.Itoa(report.Summary.Parsed))
	w.Header().Set("X-Documents-Failed", strconv.Itoa(len(report.Summary.Failed)))
	logger.Info("Extraction served",
		"vendor", profile.ID,
		"format", format,
		"parsed", report.Summary.Parsed,
		"failed", len(report.Summary.Failed))
	w.Write(body.Bytes())
}

// readUploads expands ZIP archives and keeps PDFs, in upload order
func readUploads(files []*multipart.FileHeader) ([]batch.Input, error) {
	var inputs []batch.Input
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", header.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", header.Filename, err)
		}

		switch {
		case batch.IsZip(header.Filename):
			entries, err := batch.ReadZip(data)
			if err != nil {
				return nil, fmt.Errorf("unpacking %s: %w", header.Filename, err)
			}
			inputs = append(inputs, entries...)
		case batch.IsPDF(header.Filename):
			inputs = append(inputs, batch.Input{Name: header.Filename, Data: data})
		default:
			return nil, fmt.Errorf("unsupported file %s: expected a PDF or ZIP", header.Filename)
		}
	}
	return inputs, nil
}
