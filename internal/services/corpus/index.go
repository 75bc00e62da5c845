// Package corpus builds the immutable document index that retrieval runs against.
package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/ternarybob/onboard/internal/services/fuzzy"
)

// Options tunes index construction
type Options struct {
	Stopwords       []string
	MaxDF           float64
	MinDF           float64
	CollisionPolicy common.CollisionPolicy
	BatchSize       int // Texts per embedding request
	Concurrency     int // Embedding requests in flight
}

// OptionsFromConfig maps the corpus and embeddings configuration onto Options
func OptionsFromConfig(cfg *common.Config) Options {
	return Options{
		Stopwords:       cfg.Corpus.Stopwords,
		MaxDF:           cfg.Corpus.MaxDF,
		MinDF:           cfg.Corpus.MinDF,
		CollisionPolicy: cfg.Corpus.CollisionPolicy,
		BatchSize:       cfg.Embeddings.BatchSize,
		Concurrency:     2,
	}
}

// Entry is one indexed document
type Entry struct {
	ID       string
	Source   string // Source name before normalization
	Path     string
	Format   string
	Text     string
	Chunks   []string
	Metadata models.Metadata
}

// LexicalView is the identifier-side representation used by fuzzy matching
type LexicalView struct {
	Processed []string   // Identifier after fuzzy processing, per document
	Tokens    [][]string // Identifier tokens, per document
}

// TFIDFView holds the fitted vectorizer and one vector per document
type TFIDFView struct {
	Vectorizer *Vectorizer
	Vectors    []SparseVector
}

// Similarities returns the cosine similarity of query against every document, in corpus order.
// It returns nil when the query shares no terms with the vocabulary.
func (v *TFIDFView) Similarities(query string) []float64 {
	if v == nil || v.Vectorizer == nil {
		return nil
	}
	q := v.Vectorizer.Transform(query)
	if q.IsZero() {
		return nil
	}
	scores := make([]float64, len(v.Vectors))
	for i, doc := range v.Vectors {
		scores[i] = q.Dot(doc)
	}
	return scores
}

// Index is the immutable corpus: entries plus three aligned derived views.
// It is safe for concurrent readers and is replaced wholesale on rebuild.
type Index struct {
	entries   []Entry
	positions map[string]int
	lexical   LexicalView
	tfidf     *TFIDFView
	chunkVecs [][]SparseVector

	embeddings     [][]float32
	embeddingModel string
	embeddingDim   int

	builtAt time.Time
}

// Stats summarises an index for logs and the API
type Stats struct {
	Documents      int       `json:"documents"`
	Chunks         int       `json:"chunks"`
	Vocabulary     int       `json:"vocabulary"`
	EmbeddingModel string    `json:"embedding_model,omitempty"`
	EmbeddingDim   int       `json:"embedding_dim"`
	BuiltAt        time.Time `json:"built_at"`
}

// Builder builds indexes with a fixed set of options and collaborators
type Builder struct {
	opts     Options
	embedder interfaces.EmbeddingService
	cache    interfaces.EmbeddingCache
	logger   arbor.ILogger
}

// NewBuilder creates an index builder. embedder and cache may be nil; without an
// embedder the semantic view is empty.
func NewBuilder(opts Options, embedder interfaces.EmbeddingService, cache interfaces.EmbeddingCache, logger arbor.ILogger) *Builder {
	return &Builder{
		opts:     opts,
		embedder: embedder,
		cache:    cache,
		logger:   logger,
	}
}

// Build normalizes identifiers and computes every view eagerly. It fails with
// ErrEmptyCorpus for zero documents and with *CollisionError when two sources
// share an identifier under the fail policy.
func (b *Builder) Build(ctx context.Context, docs []models.SourceDocument) (*Index, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyCorpus
	}

	startTime := time.Now()

	entries, err := b.assignIDs(docs)
	if err != nil {
		return nil, err
	}

	idx := &Index{
		entries:   entries,
		positions: make(map[string]int, len(entries)),
		builtAt:   time.Now(),
	}
	for i, e := range entries {
		idx.positions[e.ID] = i
	}

	idx.buildLexical()
	idx.buildTFIDF(b.opts)

	if b.embedder != nil {
		vectors, err := b.embedAll(ctx, entries)
		if err != nil {
			return nil, fmt.Errorf("failed to embed corpus: %w", err)
		}
		idx.embeddings = vectors
		idx.embeddingModel = b.embedder.ModelName()
		idx.embeddingDim = b.embedder.Dimension()
	}

	stats := idx.Stats()
	b.logger.Info().
		Int("documents", stats.Documents).
		Int("chunks", stats.Chunks).
		Int("vocabulary", stats.Vocabulary).
		Str("embedding_model", stats.EmbeddingModel).
		Dur("duration", time.Since(startTime)).
		Msg("Corpus index built")

	return idx, nil
}

func (b *Builder) assignIDs(docs []models.SourceDocument) ([]Entry, error) {
	entries := make([]Entry, 0, len(docs))
	owners := make(map[string]string, len(docs))

	for _, doc := range docs {
		id := NormalizeID(doc.Name)
		if id == "" {
			return nil, fmt.Errorf("document %q normalizes to an empty identifier", doc.Name)
		}

		if first, taken := owners[id]; taken {
			if b.opts.CollisionPolicy != common.CollisionSuffix {
				return nil, &CollisionError{ID: id, First: first, Second: doc.Name}
			}
			suffixed := nextFreeID(id, owners)
			b.logger.Warn().
				Str("id", id).
				Str("first", first).
				Str("second", doc.Name).
				Str("assigned", suffixed).
				Msg("Identifier collision resolved with suffix")
			id = suffixed
		}
		owners[id] = doc.Name

		entries = append(entries, Entry{
			ID:       id,
			Source:   doc.Name,
			Path:     doc.Path,
			Format:   doc.Format,
			Text:     doc.Text,
			Chunks:   doc.Chunks,
			Metadata: doc.Metadata,
		})
	}

	return entries, nil
}

func nextFreeID(id string, owners map[string]string) string {
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d", id, n)
		if _, taken := owners[candidate]; !taken {
			return candidate
		}
	}
}

func (idx *Index) buildLexical() {
	idx.lexical = LexicalView{
		Processed: make([]string, len(idx.entries)),
		Tokens:    make([][]string, len(idx.entries)),
	}
	for i, e := range idx.entries {
		idx.lexical.Processed[i] = fuzzy.Process(e.ID)
		idx.lexical.Tokens[i] = Tokenize(e.ID)
	}
}

func (idx *Index) buildTFIDF(opts Options) {
	texts := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		texts[i] = e.Text
	}

	vectorizer := FitVectorizer(texts, opts.Stopwords, opts.MinDF, opts.MaxDF)
	view := &TFIDFView{
		Vectorizer: vectorizer,
		Vectors:    make([]SparseVector, len(texts)),
	}
	idx.chunkVecs = make([][]SparseVector, len(idx.entries))
	for i, text := range texts {
		view.Vectors[i] = vectorizer.Transform(text)

		chunks := idx.entries[i].Chunks
		idx.chunkVecs[i] = make([]SparseVector, len(chunks))
		for j, chunk := range chunks {
			idx.chunkVecs[i][j] = vectorizer.Transform(chunk)
		}
	}
	idx.tfidf = view
}

// Len returns the number of documents
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// DocumentIDs returns identifiers in corpus order
func (idx *Index) DocumentIDs() []string {
	if idx == nil {
		return nil
	}
	ids := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		ids[i] = e.ID
	}
	return ids
}

// Position returns the corpus-order position of id
func (idx *Index) Position(id string) (int, bool) {
	if idx == nil {
		return 0, false
	}
	pos, ok := idx.positions[id]
	return pos, ok
}

// Entry returns the indexed document for id
func (idx *Index) Entry(id string) (Entry, bool) {
	pos, ok := idx.Position(id)
	if !ok {
		return Entry{}, false
	}
	return idx.entries[pos], true
}

// GetText returns the raw text of id
func (idx *Index) GetText(id string) (string, bool) {
	e, ok := idx.Entry(id)
	return e.Text, ok
}

// LexicalView returns the identifier view. Callers must not modify it.
func (idx *Index) LexicalView() LexicalView {
	if idx == nil {
		return LexicalView{}
	}
	return idx.lexical
}

// TFIDFView returns the TF-IDF view. Callers must not modify it.
func (idx *Index) TFIDFView() *TFIDFView {
	if idx == nil {
		return nil
	}
	return idx.tfidf
}

// EmbeddingView returns unit-length document embeddings in corpus order,
// or nil when the index was built without an embedder. Callers must not modify it.
func (idx *Index) EmbeddingView() [][]float32 {
	if idx == nil {
		return nil
	}
	return idx.embeddings
}

// EmbeddingModel returns the model the embedding view was built with
func (idx *Index) EmbeddingModel() string {
	if idx == nil {
		return ""
	}
	return idx.embeddingModel
}

// Stats summarises the index
func (idx *Index) Stats() Stats {
	if idx == nil {
		return Stats{}
	}
	chunks := 0
	for _, e := range idx.entries {
		chunks += len(e.Chunks)
	}
	vocab := 0
	if idx.tfidf != nil && idx.tfidf.Vectorizer != nil {
		vocab = idx.tfidf.Vectorizer.VocabularySize()
	}
	return Stats{
		Documents:      len(idx.entries),
		Chunks:         chunks,
		Vocabulary:     vocab,
		EmbeddingModel: idx.embeddingModel,
		EmbeddingDim:   idx.embeddingDim,
		BuiltAt:        idx.builtAt,
	}
}
