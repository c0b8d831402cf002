package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cents/internal/core"
	"cents/internal/receipt"
	"cents/internal/services"
)

// maxParseTextSize bounds the synchronous parse body; OCR output for a
// receipt is a few KB at most.
const maxParseTextSize = 1 << 20

type scanResponse struct {
	ID        string                 `json:"id"`
	Status    core.ScanStatus        `json:"status"`
	CreatedAt time.Time              `json:"created_at"`
	Result    *receipt.ParsedReceipt `json:"result,omitempty"`
	Warnings  []string               `json:"warnings,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

func newScanResponse(scan core.Scan) scanResponse {
	resp := scanResponse{
		ID:        scan.ID,
		Status:    scan.Status,
		CreatedAt: scan.CreatedAt,
		Result:    scan.Result,
		Error:     scan.Error,
	}
	if scan.Result != nil {
		resp.Warnings = receipt.Validate(*scan.Result)
	}
	return resp
}

// handleSubmitScan accepts a multipart receipt image and queues it for OCR.
func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+4096)

	if err := r.ParseMultipartForm(services.MaxImageSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "image too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image")
		return
	}

	scan, err := s.scans.SubmitImage(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrImageTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, services.ErrUnsupportedImage):
			writeError(w, http.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, services.ErrEmptyImage):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			slog.ErrorContext(r.Context(), "Failed to submit scan", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to submit scan")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, newScanResponse(scan))
}

// handleParseText parses client-extracted receipt text synchronously.
func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxParseTextSize)

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	scan, warnings := s.scans.ParseText(r.Context(), req.Text)

	resp := newScanResponse(scan)
	resp.Warnings = warnings
	writeJSON(w, http.StatusOK, resp)
}

// handleGetScan returns the current state of a scan, including the parsed
// result once the worker has processed it.
func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	scan, err := s.scans.GetScan(r.Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrScanNotFound) {
			writeError(w, http.StatusNotFound, "scan not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load scan", "scan_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load scan")
		return
	}

	writeJSON(w, http.StatusOK, newScanResponse(scan))
}
