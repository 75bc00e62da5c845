package corpus

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/ternarybob/onboard/internal/services/embeddings"
	"golang.org/x/sync/errgroup"
)

// maxEmbedChars bounds the text sent to the embedder per document
const maxEmbedChars = 8000

// embedAll returns one unit-length vector per entry. Cached vectors are reused
// and misses are embedded in concurrent batches.
func (b *Builder) embedAll(ctx context.Context, entries []Entry) ([][]float32, error) {
	model := b.embedder.ModelName()
	dim := b.embedder.Dimension()

	vectors := make([][]float32, len(entries))
	keys := make([]string, len(entries))
	var missing []int

	for i, e := range entries {
		text := embeddingText(e.Text)
		keys[i] = embeddings.CacheKey(model, dim, text)

		if b.cache != nil {
			vec, found, err := b.cache.GetEmbedding(keys[i])
			if err != nil {
				b.logger.Warn().Err(err).Str("id", e.ID).Msg("Embedding cache read failed")
			} else if found && len(vec) == dim {
				vectors[i] = embeddings.Normalize(vec)
				continue
			}
		}
		missing = append(missing, i)
	}

	b.logger.Debug().
		Int("documents", len(entries)).
		Int("cached", len(entries)-len(missing)).
		Int("to_embed", len(missing)).
		Msg("Embedding corpus")

	batchSize := b.opts.BatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	concurrency := b.opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for start := 0; start < len(missing); start += batchSize {
		batch := missing[start:min(start+batchSize, len(missing))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for j, pos := range batch {
				texts[j] = embeddingText(entries[pos].Text)
			}

			raw, err := b.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(raw) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d texts", len(raw), len(batch))
			}

			for j, pos := range batch {
				if len(raw[j]) != dim {
					return fmt.Errorf("document %q: embedding dimension %d, expected %d", entries[pos].ID, len(raw[j]), dim)
				}
				vectors[pos] = embeddings.Normalize(raw[j])

				if b.cache != nil {
					if err := b.cache.SaveEmbedding(keys[pos], model, raw[j]); err != nil {
						b.logger.Warn().Err(err).Str("id", entries[pos].ID).Msg("Embedding cache write failed")
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// embeddingText truncates text to maxEmbedChars on a rune boundary
func embeddingText(text string) string {
	if len(text) <= maxEmbedChars {
		return text
	}
	cut := maxEmbedChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
