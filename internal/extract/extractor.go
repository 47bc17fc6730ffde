// Package extract is the receipt field extraction core: deterministic,
// stateless heuristics that turn one OCR document into structured fields
// (merchant, date, total, tax, currency) with per-field spatial grounding.
package extract

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/instant-receipts/extraction/internal/document"
)

// Result statuses.
const (
	StatusExtracted   = "extracted"
	StatusNeedsReview = "needs_review"
)

// Result is the assembled extraction output. Grounding holds a box only for
// fields whose value is present and whose box was resolved; Confidence is
// the share of {merchant, date, total} present, on a 0-100 scale.
type Result struct {
	Merchant   *string                 `json:"merchant"`
	Date       *string                 `json:"date"`
	Total      *float64                `json:"total"`
	Tax        *float64                `json:"tax"`
	Currency   string                  `json:"currency"`
	Confidence float64                 `json:"confidence"`
	Grounding  map[string]document.Box `json:"grounding"`
	Status     string                  `json:"status"`
}

// Extractor sequences the field heuristics over one document. It holds no
// per-request state and is safe for concurrent use.
type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

// Extract runs merchant, date, total, tax and currency extraction over doc
// and assembles the result. Absent fields are not errors; the only error
// path is an unexpected internal fault, which yields no partial result.
func (e *Extractor) Extract(doc document.Document) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extract.panic", "doc_id", doc.ID, "cause", r)
			err = fmt.Errorf("extraction failed: %v", r)
		}
	}()

	e.logger.Debug("extract.start", "doc_id", doc.ID, "words", len(doc.Words), "text_bytes", len(doc.Text))

	res = Result{
		Currency:  detectCurrency(doc.Text),
		Grounding: map[string]document.Box{},
	}

	if merchant, box, ok := extractMerchant(doc.Words); ok {
		res.Merchant = &merchant
		if box != nil {
			res.Grounding["merchant"] = *box
		}
	}

	if date, box, ok := extractDate(doc.Text, doc.Words); ok {
		res.Date = &date
		if box != nil {
			res.Grounding["date"] = *box
		}
	}

	if total, box, ok := extractMoney(doc.Text, doc.Words, HintTotal); ok {
		res.Total = &total
		if box != nil {
			res.Grounding["total"] = *box
		}
	}

	if tax, box, ok := extractMoney(doc.Text, doc.Words, HintTax); ok {
		res.Tax = &tax
		if box != nil {
			res.Grounding["tax"] = *box
		}
	}

	// Tax and currency never count toward confidence.
	present := 0
	for _, f := range []bool{res.Merchant != nil, res.Date != nil, res.Total != nil} {
		if f {
			present++
		}
	}
	res.Confidence = round2(float64(present) / 3 * 100)
	res.Status = StatusNeedsReview
	if res.Confidence >= 80 {
		res.Status = StatusExtracted
	}

	e.logger.Info("extract.ok",
		"doc_id", doc.ID,
		"merchant", res.Merchant != nil,
		"date", res.Date != nil,
		"total", res.Total != nil,
		"tax", res.Tax != nil,
		"currency", res.Currency,
		"confidence", res.Confidence,
		"status", res.Status,
	)
	return res, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
