package extract

import "strings"

// detectCurrency classifies the document's currency from symbols or keywords.
// Rules are checked in fixed priority order and the first hit wins; there is
// no counting of occurrences. Always returns a code, defaulting to USD.
func detectCurrency(text string) string {
	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(text, "$") || strings.Contains(upper, "USD"):
		return "USD"
	case strings.Contains(text, "₱") || strings.Contains(upper, "PHP") || strings.Contains(upper, "PESO"):
		return "PHP"
	case strings.Contains(text, "¥") || strings.Contains(upper, "JPY") || strings.Contains(upper, "YEN"):
		return "JPY"
	case strings.Contains(text, "€") || strings.Contains(upper, "EUR"):
		return "EUR"
	default:
		return "USD"
	}
}
