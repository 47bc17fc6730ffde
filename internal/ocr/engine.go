// Package ocr wraps the tesseract binary as the OCR collaborator: one image
// in, one document of recognized words with boxes and confidences out.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/instant-receipts/extraction/internal/document"
)

type Config struct {
	Tesseract   string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string

	PSM int // e.g., 6 is good for a uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

// Engine runs tesseract in TSV mode and assembles word-level output. It is
// constructed once at startup and injected into the request handlers; there
// is no lazy per-call initialization.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Engine{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewEngineWithRunner is NewEngine with a caller-supplied runner, for tests
// and embedders that wrap command execution.
func NewEngineWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	e := NewEngine(cfg, logger)
	if runner != nil {
		e.runner = runner
	}
	return e
}

// Lang reports the configured recognition language.
func (e *Engine) Lang() string { return e.cfg.Lang }

// Recognize OCRs the image at path and returns a document whose text is the
// whitespace-joined word texts in reading order. docID is kept as given; an
// empty one gets a generated UUID.
func (e *Engine) Recognize(ctx context.Context, docID, path string) (document.Document, error) {
	if docID == "" {
		docID = uuid.NewString()
	}
	start := time.Now()

	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return document.Document{}, fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 1<<10))
	}

	words, meanConf := parseTSV(out)

	// Blend measured word confidence with the content heuristic, weighting
	// the engine's own numbers higher when present.
	doc := document.New(docID, words, 0)
	conf := heuristicConfidence(doc.Text)
	if meanConf > 0 {
		conf = 0.7*meanConf + 0.3*conf
	}
	if conf > 1.0 {
		conf = 1.0
	}
	doc.Confidence = conf

	e.logger.Info("ocr.recognize.ok",
		"doc_id", docID,
		"path", path,
		"words", len(words),
		"confidence", doc.Confidence,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}
