package extract

import (
	"strings"

	"github.com/instant-receipts/extraction/internal/document"
)

// extractMerchant takes the first few recognized words as the merchant name.
// On real receipts the merchant is usually the first line(s), so no content
// validation is done. The grounding box is the first word's box, not a union
// over the joined words.
func extractMerchant(words []document.Word) (string, *document.Box, bool) {
	if len(words) == 0 {
		return "", nil, false
	}

	n := min(3, len(words))
	texts := make([]string, 0, n)
	for _, w := range words[:n] {
		texts = append(texts, w.Text)
	}

	box := words[0].Box
	return strings.Join(texts, " "), &box, true
}
