package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	assert.Nil(t, SplitText("", 1000, 200))

	chunks := SplitText("demam sejak kemarin", 1000, 200)
	assert.Equal(t, []string{"demam sejak kemarin"}, chunks)
}

func TestSplitTextChunkBounds(t *testing.T) {
	text := strings.Repeat("abcde ", 500) // 3000 chars, no sentence breaks
	chunks := SplitText(text, 1000, 200)

	assert.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 1000, "chunk %d exceeds size", i)
	}
}

func TestSplitTextOverlapReconstruction(t *testing.T) {
	// Without sentence boundaries every split lands on the hard limit, so
	// trimming the overlap from each chunk after the first must rebuild
	// the input exactly.
	text := strings.Repeat("x", 2500)
	overlap := 200
	chunks := SplitText(text, 1000, overlap)

	var b strings.Builder
	b.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		runes := []rune(c)
		b.WriteString(string(runes[overlap:]))
	}
	assert.Equal(t, text, b.String())
}

func TestSplitTextPrefersSentenceBoundary(t *testing.T) {
	// A period past the halfway point of the window should win over the
	// hard limit.
	sentence := strings.Repeat("a", 800) + ". " + strings.Repeat("b", 700)
	chunks := SplitText(sentence, 1000, 0)

	assert.True(t, strings.HasSuffix(chunks[0], "."), "first chunk should end at the sentence boundary, got %q", chunks[0][len(chunks[0])-5:])
}

func TestSplitTextIgnoresEarlyBoundary(t *testing.T) {
	// A period before the halfway point must not shrink the chunk.
	sentence := strings.Repeat("a", 100) + ". " + strings.Repeat("b", 1500)
	chunks := SplitText(sentence, 1000, 0)

	assert.Equal(t, 1000, len([]rune(chunks[0])))
}

func TestSplitTextDegenerateOverlap(t *testing.T) {
	// overlap >= chunkSize would never progress; it falls back to zero.
	text := strings.Repeat("y", 120)
	chunks := SplitText(text, 50, 50)

	assert.Equal(t, 3, len(chunks))
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplitTextMultibyteSafe(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 300)
	chunks := SplitText(text, 100, 20)

	// rune-based slicing must never split a multi-byte character
	joined := chunks[0]
	for _, c := range chunks[1:] {
		joined += string([]rune(c)[20:])
	}
	assert.Equal(t, text, joined)
}
