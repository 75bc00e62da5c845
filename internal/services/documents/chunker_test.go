package documents

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunker_Split(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		text    string
		want    []string
	}{
		{name: "blank", size: 50, text: "  \n ", want: nil},
		{name: "fits in one chunk", size: 50, text: "  Short onboarding note.  ", want: []string{"Short onboarding note."}},
		{
			name:    "paragraphs become chunks",
			size:    50,
			overlap: 5,
			text:    strings.Repeat("a", 40) + "\n\n" + strings.Repeat("b", 40),
			want:    []string{strings.Repeat("a", 40), strings.Repeat("b", 40)},
		},
		{
			name: "unbroken text splits on characters",
			size: 50,
			text: strings.Repeat("x", 120),
			want: []string{strings.Repeat("x", 50), strings.Repeat("x", 50), strings.Repeat("x", 20)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewChunker(tt.size, tt.overlap).Split(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChunker_BoundsAndOverlap(t *testing.T) {
	var words []string
	for i := 0; i < 200; i++ {
		words = append(words, fmt.Sprintf("word%03d", i))
	}
	text := strings.Join(words, " ")

	chunks := NewChunker(100, 20).Split(text)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 100)
	}

	// Every word survives
	joined := strings.Join(chunks, " ")
	for _, w := range words {
		assert.Contains(t, joined, w)
	}

	// Consecutive chunks share their boundary words
	for i := 1; i < len(chunks); i++ {
		first := strings.Fields(chunks[i])[0]
		assert.Contains(t, chunks[i-1], first, "chunk %d should start inside chunk %d", i, i-1)
	}
}

func TestNewChunker_Defaults(t *testing.T) {
	c := NewChunker(0, -1)
	assert.Equal(t, 600, c.Size)
	assert.Equal(t, 0, c.Overlap)

	c = NewChunker(100, 100)
	assert.Equal(t, 10, c.Overlap)
}
