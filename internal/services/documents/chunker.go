package documents

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits text into overlapping chunks of at most Size characters,
// preferring paragraph breaks, then line breaks, then spaces.
type Chunker struct {
	Size    int
	Overlap int
}

var chunkSeparators = []string{"\n\n", "\n", " ", ""}

// NewChunker creates a chunker. Overlap is clamped below size.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = 600
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &Chunker{Size: size, Overlap: overlap}
}

// Split returns the chunks of text. Text that fits in one chunk yields one chunk;
// blank text yields none.
func (c *Chunker) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return c.split(text, chunkSeparators)
}

func (c *Chunker) split(text string, separators []string) []string {
	// First separator present in text; "" always matches
	sep := separators[len(separators)-1]
	var rest []string
	for i, s := range separators {
		if s == "" || strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		for _, r := range text {
			pieces = append(pieces, string(r))
		}
	} else {
		pieces = strings.Split(text, sep)
	}

	var chunks, fitting []string
	for _, piece := range pieces {
		if piece == "" {
			continue
		}
		if runeLen(piece) < c.Size {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			chunks = append(chunks, c.merge(fitting, sep)...)
			fitting = nil
		}
		if len(rest) == 0 {
			chunks = append(chunks, piece)
		} else {
			chunks = append(chunks, c.split(piece, rest)...)
		}
	}
	if len(fitting) > 0 {
		chunks = append(chunks, c.merge(fitting, sep)...)
	}
	return chunks
}

// merge packs pieces joined by sep into chunks, carrying up to Overlap
// characters of trailing pieces into the next chunk.
func (c *Chunker) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)

	var chunks, current []string
	total := 0
	for _, piece := range pieces {
		n := runeLen(piece)
		joined := 0
		if len(current) > 0 {
			joined = sepLen
		}

		if total+n+joined > c.Size && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				chunks = append(chunks, chunk)
			}
			for total > c.Overlap || (total+n+joined > c.Size && total > 0) {
				total -= runeLen(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
				if len(current) == 0 {
					joined = 0
				}
			}
		}

		current = append(current, piece)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}

	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
