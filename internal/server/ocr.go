package server

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strings"

	"github.com/instant-receipts/extraction/internal/common"
	"github.com/instant-receipts/extraction/internal/document"
	"github.com/instant-receipts/extraction/internal/extract"
)

// handleOCR recognizes an uploaded receipt image and returns the raw OCR
// document.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	doc, err := s.recognizeUpload(w, r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type processResponse struct {
	extract.Result
	OCRText       string  `json:"ocr_text"`
	OCRConfidence float64 `json:"ocr_confidence"`
}

// handleProcess is the unified path: upload -> OCR -> extraction in one
// round trip.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	doc, err := s.recognizeUpload(w, r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	res, err := s.extractor.Extract(doc)
	if err != nil {
		s.logger.Error("process.extract.failed", "doc_id", doc.ID, "error", err)
		s.respondError(w, common.NewAppError("EXTRACTION_FAILED", "extraction failed", err))
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Result:        res,
		OCRText:       doc.Text,
		OCRConfidence: math.Round(doc.Confidence*10000) / 10000,
	})
}

// recognizeUpload validates the multipart upload and runs the OCR engine on
// it. Returned errors wrap the common sentinels so respondError can pick the
// status.
func (s *Server) recognizeUpload(w http.ResponseWriter, r *http.Request) (document.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return document.Document{}, fmt.Errorf("invalid multipart form: %w", common.ErrInvalidInput)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return document.Document{}, fmt.Errorf("file field is required: %w", common.ErrInvalidInput)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return document.Document{}, fmt.Errorf("failed to read upload: %w", common.ErrInvalidInput)
	}
	if !isImage(content) {
		return document.Document{}, fmt.Errorf("invalid image file: %w", common.ErrInvalidInput)
	}

	tmp, err := os.CreateTemp("", "receipt-*.img")
	if err != nil {
		s.logger.Error("ocr.tempfile.failed", "error", err)
		return document.Document{}, common.NewAppError("OCR_FAILED", "OCR failed", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		s.logger.Error("ocr.tempfile.failed", "error", err)
		return document.Document{}, common.NewAppError("OCR_FAILED", "OCR failed", err)
	}
	tmp.Close()

	doc, err := s.engine.Recognize(r.Context(), r.FormValue("doc_id"), tmp.Name())
	if err != nil {
		s.logger.Error("ocr.recognize.failed", "error", err)
		return document.Document{}, common.NewAppError("OCR_FAILED", fmt.Sprintf("OCR failed: %v", err), err)
	}
	return doc, nil
}

// isImage sniffs the upload's content type; tesseract only gets real images.
func isImage(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	return strings.HasPrefix(http.DetectContentType(content), "image/")
}
