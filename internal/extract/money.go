package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/instant-receipts/extraction/internal/document"
)

// Hint tells extractMoney which semantic role the wanted amount plays,
// driving the selection policy among candidates.
type Hint int

const (
	HintNone Hint = iota
	HintTotal
	HintTax
)

// ParseHint maps caller-supplied labels onto the closed hint set. Unknown
// labels fall back to HintNone, which selects the first-scanned candidate.
func ParseHint(s string) Hint {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "total", "grand total", "amount":
		return HintTotal
	case "tax":
		return HintTax
	}
	return HintNone
}

// Money patterns: a currency marker followed by a decimal-like number
// (capturing the numeric group), and a decimal number with an optional
// trailing marker (taking the whole match, cleaned afterwards).
var moneyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:USD|PHP|₱|\$)?\s*([0-9]+[,.]?[0-9]{2})`),
	regexp.MustCompile(`(?i)([0-9]+\.[0-9]{2})\s*(?:USD|PHP|₱|\$)?`),
}

var currencyStripper = strings.NewReplacer(",", "", "$", "", "₱", "", "PHP", "", "USD", "")

// candidate is one regex match that parsed into an amount, paired with its
// grounding box and its byte offset in the source text.
type candidate struct {
	amount float64
	box    *document.Box
	pos    int
}

// extractMoney scans text for monetary amounts and picks one according to
// hint. Matches that fail to parse are dropped silently; they are simply not
// candidates.
func extractMoney(text string, words []document.Word, hint Hint) (float64, *document.Box, bool) {
	var candidates []candidate

	for i, pattern := range moneyPatterns {
		for _, idx := range pattern.FindAllStringSubmatchIndex(text, -1) {
			// First pattern: numeric capture group. Second: whole match, the
			// trailing marker is stripped below.
			raw := text[idx[0]:idx[1]]
			if i == 0 && idx[2] >= 0 {
				raw = text[idx[2]:idx[3]]
			}

			cleaned := strings.TrimSpace(currencyStripper.Replace(raw))
			dec, err := decimal.NewFromString(cleaned)
			if err != nil {
				continue
			}

			candidates = append(candidates, candidate{
				amount: dec.InexactFloat64(),
				box:    groundAmount(cleaned, words),
				pos:    idx[0],
			})
		}
	}

	if len(candidates) == 0 {
		return 0, nil, false
	}

	switch hint {
	case HintTotal:
		// The grand total is typically the largest figure on the receipt.
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].amount > candidates[j].amount
		})
		return candidates[0].amount, candidates[0].box, true
	case HintTax:
		// When a "tax" word exists anywhere, return the first-scanned
		// candidate. This is NOT proximity-based: the candidate picked may be
		// far from the "tax" word (see DESIGN.md). Without a "tax" word the
		// hint falls through to the default arm.
		for _, w := range words {
			if strings.Contains(strings.ToLower(w.Text), "tax") {
				return candidates[0].amount, candidates[0].box, true
			}
		}
	}

	// Default arm: earliest candidate in scan order, not the largest.
	return candidates[0].amount, candidates[0].box, true
}

// groundAmount returns the box of the first word whose text contains the
// cleaned numeric string, or equals it after the same comma/currency
// stripping.
func groundAmount(cleaned string, words []document.Word) *document.Box {
	for _, w := range words {
		stripped := strings.ReplaceAll(strings.ReplaceAll(w.Text, ",", ""), "$", "")
		if strings.Contains(w.Text, cleaned) || stripped == cleaned {
			box := w.Box
			return &box
		}
	}
	return nil
}
