package extract

import "github.com/instant-receipts/extraction/internal/document"

// FieldExtractor turns one OCR document into structured receipt fields. The
// shells depend on this boundary rather than the concrete Extractor.
type FieldExtractor interface {
	Extract(doc document.Document) (Result, error)
}

var _ FieldExtractor = (*Extractor)(nil)
