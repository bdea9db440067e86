package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMarkdownPrefersParagraphBoundaries(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph.\n\nThird paragraph."

	chunks := SplitMarkdown(text, 40)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 40)
	}
	// Small paragraphs that fit together are packed into one chunk.
	assert.Contains(t, chunks[0], "First paragraph.")
}

func TestSplitMarkdownHardSplitsLongParagraphs(t *testing.T) {
	long := strings.Repeat("слово ", 100)

	chunks := SplitMarkdown(long, 50)

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 50)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitMarkdownEmptyInput(t *testing.T) {
	assert.Empty(t, SplitMarkdown("", 100))
	assert.Empty(t, SplitMarkdown("\n\n\n\n", 100))
}

func TestSplitMarkdownRoundTripsContent(t *testing.T) {
	text := "# Returns\n\nItems can be returned within 14 days of delivery.\n\nRefunds are issued to the original payment method."

	chunks := SplitMarkdown(text, 400)

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "14 days")
}
