package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/instant-receipts/extraction/internal/document"
)

func word(text string, x float64) document.Word {
	return document.Word{
		Text:       text,
		Confidence: 0.9,
		Box: document.Box{
			{x, 0}, {x + 10, 0}, {x + 10, 10}, {x, 10},
		},
	}
}

func TestExtractMerchantEmpty(t *testing.T) {
	_, _, ok := extractMerchant(nil)
	require.False(t, ok)

	_, _, ok = extractMerchant([]document.Word{})
	require.False(t, ok)
}

func TestExtractMerchantSingleWord(t *testing.T) {
	words := []document.Word{word("Walmart", 0)}

	merchant, box, ok := extractMerchant(words)
	require.True(t, ok)
	require.Equal(t, "Walmart", merchant)
	require.NotNil(t, box)
	require.Equal(t, words[0].Box, *box)
}

func TestExtractMerchantJoinsFirstThreeWords(t *testing.T) {
	words := []document.Word{
		word("Mega", 0),
		word("Mart", 50),
		word("Inc", 100),
		word("Receipt", 150),
	}

	merchant, box, ok := extractMerchant(words)
	require.True(t, ok)
	require.Equal(t, "Mega Mart Inc", merchant)

	// The box is the first word's, not a union over the joined words.
	require.NotNil(t, box)
	require.Equal(t, words[0].Box, *box)
}
