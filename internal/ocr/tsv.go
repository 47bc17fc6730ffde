package ocr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/instant-receipts/extraction/internal/document"
)

var reBoxNoise = regexp.MustCompile(`^[_\-|]{3,}$`)

// parseTSV turns tesseract TSV output into words with quadrilateral boxes
// and returns the mean word confidence in 0..1. TSV columns:
// level page block par line word left top width height conf text.
// Word rows carry level 5; rows with negative confidence or noise-only text
// are skipped.
func parseTSV(out []byte) ([]document.Word, float64) {
	var words []document.Word
	var sum float64

	lines := strings.Split(string(out), "\n")
	for i, ln := range lines {
		if i == 0 || ln == "" { // header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		if cols[0] != "5" {
			continue
		}

		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}

		text := strings.TrimSpace(cols[11])
		if text == "" || reBoxNoise.MatchString(text) {
			continue
		}

		left, err1 := strconv.ParseFloat(cols[6], 64)
		top, err2 := strconv.ParseFloat(cols[7], 64)
		width, err3 := strconv.ParseFloat(cols[8], 64)
		height, err4 := strconv.ParseFloat(cols[9], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}

		words = append(words, document.Word{
			Text:       text,
			Confidence: conf / 100.0,
			Box: document.Box{
				{left, top},
				{left + width, top},
				{left + width, top + height},
				{left, top + height},
			},
		})
		sum += conf / 100.0
	}

	if len(words) == 0 {
		return nil, 0
	}
	return words, sum / float64(len(words))
}
