package corpus

import (
	"sort"
	"unicode/utf8"
)

// Passage selects grounding text for id: the chunks most similar to query,
// restored to document order, until maxChars is reached. Documents without
// chunks yield their text truncated to maxChars. maxChars <= 0 means no limit.
func (idx *Index) Passage(id, query string, maxChars int) string {
	pos, ok := idx.Position(id)
	if !ok {
		return ""
	}
	entry := idx.entries[pos]

	if len(entry.Chunks) == 0 || (maxChars > 0 && len(entry.Text) <= maxChars) || maxChars <= 0 {
		return truncate(entry.Text, maxChars)
	}

	q := idx.tfidf.Vectorizer.Transform(query)
	type scored struct {
		pos   int
		score float64
	}
	ranked := make([]scored, len(entry.Chunks))
	for i := range entry.Chunks {
		ranked[i] = scored{pos: i, score: q.Dot(idx.chunkVecs[pos][i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	var chosen []int
	used := 0
	for _, r := range ranked {
		size := len(entry.Chunks[r.pos])
		if used+size > maxChars {
			if len(chosen) == 0 {
				return truncate(entry.Chunks[r.pos], maxChars)
			}
			continue
		}
		chosen = append(chosen, r.pos)
		used += size + 2
	}
	sort.Ints(chosen)

	out := make([]byte, 0, used)
	for i, c := range chosen {
		if i > 0 {
			out = append(out, '\n', '\n')
		}
		out = append(out, entry.Chunks[c]...)
	}
	return string(out)
}

func truncate(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
