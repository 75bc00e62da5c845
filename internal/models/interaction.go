package models

import (
	"time"
)

// Intent labels produced by the classifier
const (
	IntentJob     = "job"
	IntentGeneral = "general"
)

// Interaction error kinds recorded in the log
const (
	ErrorKindNone           = ""
	ErrorKindClassification = "classification"
	ErrorKindComposition    = "composition"
	ErrorKindRetrieval      = "retrieval"
)

// Interaction is one handled query as recorded in the interaction log
type Interaction struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	BusinessRole string    `json:"business_role,omitempty"`
	Query        string    `json:"query"`
	Intent       string    `json:"intent"`
	DocumentID   string    `json:"document_id,omitempty"`
	Signal       string    `json:"signal,omitempty"` // fuzzy, tfidf, semantic, fusion
	Score        float64   `json:"score"`
	Answer       string    `json:"answer"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}
