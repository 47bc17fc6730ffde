// Package document holds the shared OCR data shapes flowing through every
// extractor: recognized words, their quadrilateral locations, and the
// assembled document.
package document

import "strings"

// Point is an (x, y) coordinate pair in pixel space.
type Point [2]float64

// Box is a word's quadrilateral location: top-left, top-right, bottom-right,
// bottom-left. Point order is fixed by the OCR engine; consumers pass it
// through unmodified and never validate it.
type Box [4]Point

// Word is one OCR-recognized token plus its location.
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Box        Box     `json:"box"`
}

// Document is the output of one OCR run. Text is the whitespace-joined
// concatenation of Words[i].Text in reading order; grounding lookups rely on
// that correspondence, so producers must keep word order aligned with text
// order.
type Document struct {
	ID         string  `json:"doc_id"`
	Text       string  `json:"text"`
	Words      []Word  `json:"words"`
	Confidence float64 `json:"confidence"`
}

// New assembles a Document from recognized words, joining their text in
// reading order.
func New(id string, words []Word, confidence float64) Document {
	texts := make([]string, 0, len(words))
	for _, w := range words {
		texts = append(texts, w.Text)
	}
	return Document{
		ID:         id,
		Text:       strings.Join(texts, " "),
		Words:      words,
		Confidence: confidence,
	}
}
