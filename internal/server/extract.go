package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/instant-receipts/extraction/internal/common"
	"github.com/instant-receipts/extraction/internal/document"
)

type extractRequest struct {
	OCR document.Document `json:"ocr"`
}

// handleExtract runs the extraction core over an OCR document supplied as
// JSON. Absent fields come back null; the only 500 is an internal fault in
// the core.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes))
	if err != nil {
		s.respondError(w, fmt.Errorf("failed to read request body: %w", common.ErrInvalidInput))
		return
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		s.respondError(w, fmt.Errorf("invalid JSON body: %w", common.ErrInvalidInput))
		return
	}
	if err := ocrRequestSchema.Validate(payload); err != nil {
		s.logger.Warn("extract.request.invalid", "error", err)
		s.respondError(w, fmt.Errorf("request does not match OCR document schema: %w", common.ErrInvalidInput))
		return
	}

	var req extractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.respondError(w, fmt.Errorf("invalid OCR document: %w", common.ErrInvalidInput))
		return
	}

	res, err := s.extractor.Extract(req.OCR)
	if err != nil {
		s.logger.Error("extract.failed", "doc_id", req.OCR.ID, "error", err)
		s.respondError(w, common.NewAppError("EXTRACTION_FAILED", "extraction failed", err))
		return
	}

	writeJSON(w, http.StatusOK, res)
}
