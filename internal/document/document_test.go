package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJoinsWordTexts(t *testing.T) {
	words := []Word{
		{Text: "Mega", Confidence: 0.9},
		{Text: "Mart", Confidence: 0.8},
	}

	doc := New("doc-1", words, 0.85)
	require.Equal(t, "Mega Mart", doc.Text)
	require.Equal(t, "doc-1", doc.ID)
	require.InDelta(t, 0.85, doc.Confidence, 1e-9)
}

func TestNewEmpty(t *testing.T) {
	doc := New("doc-2", nil, 0)
	require.Equal(t, "", doc.Text)
	require.Empty(t, doc.Words)
}

func TestBoxJSONShape(t *testing.T) {
	w := Word{
		Text:       "Total",
		Confidence: 0.95,
		Box:        Box{{1, 2}, {3, 2}, {3, 4}, {1, 4}},
	}

	raw, err := json.Marshal(w)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"text": "Total",
		"confidence": 0.95,
		"box": [[1,2],[3,2],[3,4],[1,4]]
	}`, string(raw))
}
