package extract

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/instant-receipts/extraction/internal/document"
)

// Date patterns in priority order: structured numeric forms first, month-name
// forms after, so stray numbers don't shadow an explicit date further on.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`),                                           // 03/15/2024, 15-03-24
	regexp.MustCompile(`\b\d{4}[-/]\d{1,2}[-/]\d{1,2}\b`),                                             // 2024-03-15
	regexp.MustCompile(`(?i)\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]* \d{1,2},? \d{4}\b`), // March 15, 2024
}

const isoDate = "2006-01-02"

// extractDate scans text with the layered date patterns and returns the first
// substring that parses as a calendar date, formatted as YYYY-MM-DD, plus the
// box of the first word overlapping the matched substring (nil when no word
// matches). If no pattern yields a parseable match it falls back to parsing
// each word's raw text in order.
//
// Ambiguous numeric dates (01/02/2024) resolve month-first; dateparse keeps
// the US preference and we pin that rather than guessing per document.
func extractDate(text string, words []document.Word) (string, *document.Box, bool) {
	for _, pattern := range datePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			parsed, err := dateparse.ParseAny(match)
			if err != nil {
				continue
			}

			if box := groundDate(match, words); box != nil {
				return parsed.Format(isoDate), box, true
			}
			return parsed.Format(isoDate), nil, true
		}
	}

	// Fallback: noisy OCR sometimes splits or mangles the date beyond the
	// patterns above; try every word on its own.
	for _, w := range words {
		parsed, err := dateparse.ParseAny(w.Text)
		if err != nil {
			continue
		}
		box := w.Box
		return parsed.Format(isoDate), &box, true
	}

	return "", nil, false
}

// groundDate returns the box of the first word where the matched substring
// contains the word's text or vice versa.
func groundDate(match string, words []document.Word) *document.Box {
	for _, w := range words {
		if strings.Contains(w.Text, match) || strings.Contains(match, w.Text) {
			box := w.Box
			return &box
		}
	}
	return nil
}
