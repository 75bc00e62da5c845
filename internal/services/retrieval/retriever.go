// Package retrieval selects the single best onboarding document for a query by
// combining fuzzy identifier matching, TF-IDF similarity and embedding similarity.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/services/corpus"
	"github.com/ternarybob/onboard/internal/services/embeddings"
	"github.com/ternarybob/onboard/internal/services/fuzzy"
	"golang.org/x/sync/errgroup"
)

// maxFuzzyQueryRunes bounds the query handed to the partial-ratio scorers,
// whose cost grows with the square of the shorter string.
const maxFuzzyQueryRunes = 256

// Config holds thresholds and weights for one retriever
type Config struct {
	FuzzyTopK         int
	FuzzyShortCircuit int // 0-100
	TFIDFThreshold    float64
	SemanticThreshold float64
	Weights           Weights
	MinFusedScore     float64 // 0 disables the floor
	ParallelPasses    bool
}

// ConfigFromCommon maps the retrieval configuration section onto Config
func ConfigFromCommon(cfg *common.RetrievalConfig) Config {
	return Config{
		FuzzyTopK:         cfg.FuzzyTopK,
		FuzzyShortCircuit: int(cfg.FuzzyShortCircuit),
		TFIDFThreshold:    cfg.TFIDFThreshold,
		SemanticThreshold: cfg.SemanticThreshold,
		Weights: Weights{
			TFIDF:    cfg.TFIDFWeight,
			Fuzzy:    cfg.FuzzyWeight,
			Semantic: cfg.SemanticWeight,
		},
		MinFusedScore:  cfg.MinFusedScore,
		ParallelPasses: cfg.ParallelPasses,
	}
}

// Retriever runs the three passes against an index. It holds no per-query state.
type Retriever struct {
	cfg      Config
	embedder interfaces.EmbeddingService
	logger   arbor.ILogger
}

// NewRetriever creates a retriever. embedder may be nil, which disables the semantic pass.
func NewRetriever(cfg Config, embedder interfaces.EmbeddingService, logger arbor.ILogger) *Retriever {
	if cfg.FuzzyTopK <= 0 {
		cfg.FuzzyTopK = 5
	}
	return &Retriever{
		cfg:      cfg,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve selects one document from idx for query, or returns NoMatch.
// A nil or empty index yields NoMatch. The only error is context cancellation;
// a failing embedder degrades to a missing semantic signal.
func (r *Retriever) Retrieve(ctx context.Context, query string, idx *corpus.Index) (Result, error) {
	if idx.Len() == 0 {
		return NoMatch(), nil
	}
	if err := ctx.Err(); err != nil {
		return NoMatch(), err
	}

	startTime := time.Now()
	ids := idx.DocumentIDs()

	// Fuzzy pass over identifiers
	fuzzyScores := fuzzy.Scores(truncateRunes(strings.ToLower(query), maxFuzzyQueryRunes), idx.LexicalView().Processed)
	fuzzyNorm := make([]float64, len(fuzzyScores))
	for i, s := range fuzzyScores {
		fuzzyNorm[i] = float64(s) / 100
	}
	result := Result{
		Signal: SignalNone,
		Fuzzy:  rank(ids, fuzzyNorm, SignalFuzzy, r.cfg.FuzzyTopK),
	}

	// Identifiers that process to the same string all score 100, so an exact hit wins first
	if pos, ok := idx.Position(strings.ToLower(strings.TrimSpace(query))); ok {
		result.DocumentID = ids[pos]
		result.Score = 1.0
		result.Signal = SignalFuzzy
		r.logResult(query, result, startTime)
		return result, nil
	}

	if best := argmax(fuzzyNorm); fuzzyScores[best] >= r.cfg.FuzzyShortCircuit {
		result.DocumentID = ids[best]
		result.Score = fuzzyNorm[best]
		result.Signal = SignalFuzzy
		r.logResult(query, result, startTime)
		return result, nil
	}

	// TF-IDF and semantic passes are independent reads of the index
	var tfidfScores, semanticScores []float64
	tfidfPass := func(context.Context) error {
		tfidfScores = idx.TFIDFView().Similarities(query)
		return nil
	}
	semanticPass := func(ctx context.Context) error {
		scores, err := r.semanticScores(ctx, query, idx)
		if err != nil {
			return err
		}
		semanticScores = scores
		return nil
	}

	if r.cfg.ParallelPasses {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return tfidfPass(gctx) })
		g.Go(func() error { return semanticPass(gctx) })
		if err := g.Wait(); err != nil {
			return NoMatch(), err
		}
	} else {
		_ = tfidfPass(ctx)
		if err := semanticPass(ctx); err != nil {
			return NoMatch(), err
		}
	}

	result.TFIDF = rank(ids, tfidfScores, SignalTFIDF, r.cfg.FuzzyTopK)
	result.Semantic = rank(ids, semanticScores, SignalSemantic, r.cfg.FuzzyTopK)

	// Single-signal candidates, semantic preferred
	if best := argmax(tfidfScores); best >= 0 && tfidfScores[best] >= r.cfg.TFIDFThreshold {
		result.DocumentID, result.Score, result.Signal = ids[best], tfidfScores[best], SignalTFIDF
	}
	if best := argmax(semanticScores); best >= 0 && semanticScores[best] >= r.cfg.SemanticThreshold {
		result.DocumentID, result.Score, result.Signal = ids[best], semanticScores[best], SignalSemantic
	}

	// Fusion overrides the single-signal candidate when every signal has something to say
	if len(result.Fuzzy) > 0 && len(result.TFIDF) > 0 && len(result.Semantic) > 0 {
		best, score := Fuse(r.cfg.Weights, tfidfScores, fuzzyNorm, semanticScores)
		if r.cfg.MinFusedScore <= 0 || score >= r.cfg.MinFusedScore {
			result.DocumentID, result.Score, result.Signal = ids[best], score, SignalFusion
		} else {
			r.logger.Debug().
				Float64("fused_score", score).
				Float64("min_fused_score", r.cfg.MinFusedScore).
				Msg("Fused score below floor")
		}
	}

	r.logResult(query, result, startTime)
	return result, nil
}

// semanticScores embeds query and returns its cosine against every document.
// It returns nil, without error, when the semantic view is unavailable.
func (r *Retriever) semanticScores(ctx context.Context, query string, idx *corpus.Index) ([]float64, error) {
	view := idx.EmbeddingView()
	if r.embedder == nil || len(view) == 0 {
		return nil, nil
	}
	if model := idx.EmbeddingModel(); model != "" && model != r.embedder.ModelName() {
		r.logger.Warn().
			Str("index_model", model).
			Str("query_model", r.embedder.ModelName()).
			Msg("Embedding model mismatch - skipping semantic pass")
		return nil, nil
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("semantic pass: %w", ctx.Err())
		}
		r.logger.Warn().Err(err).Msg("Query embedding failed - continuing without semantic signal")
		return nil, nil
	}

	q := embeddings.Normalize(vectors[0])
	scores := make([]float64, len(view))
	for i, doc := range view {
		scores[i] = embeddings.Dot(q, doc)
	}
	return scores, nil
}

// rank returns up to k documents with a positive score, best first, ties in corpus order
func rank(ids []string, scores []float64, signal Signal, k int) []Candidate {
	var out []Candidate
	for i, s := range scores {
		if s > 0 {
			out = append(out, Candidate{DocumentID: ids[i], Score: s, Signal: signal})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (r *Retriever) logResult(query string, result Result, startTime time.Time) {
	r.logger.Debug().
		Int("query_length", len(query)).
		Str("document_id", result.DocumentID).
		Str("signal", string(result.Signal)).
		Float64("score", result.Score).
		Int("fuzzy_candidates", len(result.Fuzzy)).
		Int("tfidf_candidates", len(result.TFIDF)).
		Int("semantic_candidates", len(result.Semantic)).
		Dur("duration", time.Since(startTime)).
		Msg("Retrieval complete")
}
