package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectCurrency(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{"dollar symbol", "Total $12.50", "USD"},
		{"usd keyword lowercase", "total 12.50 usd", "USD"},
		{"peso symbol", "Kabuuan ₱150.00", "PHP"},
		{"peso keyword", "150.00 pesos", "PHP"},
		{"yen symbol", "¥1500", "JPY"},
		{"jpy keyword", "1500 JPY", "JPY"},
		{"euro symbol", "Gesamt 12,50 €", "EUR"},
		{"eur keyword", "12.50 eur", "EUR"},
		{"empty text defaults", "", "USD"},
		{"no markers defaults", "Thanks for shopping", "USD"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, detectCurrency(tc.text))
		})
	}
}

func TestDetectCurrencyPriorityOrder(t *testing.T) {
	// USD is checked first regardless of position in the text.
	require.Equal(t, "USD", detectCurrency("€ 12.50 and $ 10.00"))
	require.Equal(t, "USD", detectCurrency("pesos preferred but USD mentioned"))

	// Without a USD marker the later rules get their turn.
	require.Equal(t, "PHP", detectCurrency("peso and ¥ both present"))
}
