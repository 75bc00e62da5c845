package retrieval

// Signal names the evidence that selected a document
type Signal string

const (
	SignalNone     Signal = "none"
	SignalFuzzy    Signal = "fuzzy"
	SignalTFIDF    Signal = "tfidf"
	SignalSemantic Signal = "semantic"
	SignalFusion   Signal = "fusion"
)

// Candidate is one ranked document from a single pass
type Candidate struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Signal     Signal  `json:"signal"`
}

// Result is the single selected document, or no match when DocumentID is empty.
// Fuzzy, TFIDF and Semantic carry the ranked lists that informed the decision.
type Result struct {
	DocumentID string      `json:"document_id,omitempty"`
	Score      float64     `json:"score"`
	Signal     Signal      `json:"signal"`
	Fuzzy      []Candidate `json:"fuzzy,omitempty"`
	TFIDF      []Candidate `json:"tfidf,omitempty"`
	Semantic   []Candidate `json:"semantic,omitempty"`
}

// Matched reports whether a document was selected
func (r Result) Matched() bool {
	return r.DocumentID != ""
}

// NoMatch is the "no confident match" sentinel
func NoMatch() Result {
	return Result{Signal: SignalNone}
}
