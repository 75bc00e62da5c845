package models

import (
	"time"
)

// Document formats produced by the directory source
const (
	FormatMarkdown = "markdown"
	FormatText     = "text"
	FormatHTML     = "html"
	FormatPDF      = "pdf"
	FormatDOCX     = "docx"
)

// SourceDocument is a raw (name, text) pair handed over by a document source.
// Name is the source's own label (usually the file name) and is normalized
// into a Document ID by the corpus index.
type SourceDocument struct {
	Name     string
	Path     string
	Format   string
	Text     string
	Chunks   []string
	Metadata Metadata
}

// Document represents an ingested onboarding document as persisted in storage
type Document struct {
	// Identity
	ID         string `json:"id"`          // Normalized identifier shared with the corpus index
	SourceName string `json:"source_name"` // Original file name before normalization
	SourcePath string `json:"source_path"`
	Format     string `json:"format"`

	// Content
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Chunks      []string `json:"chunks,omitempty"`
	ContentHash string   `json:"content_hash"` // sha256 of Content, used by the embedding cache

	Metadata Metadata `json:"metadata"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DocumentSummary is the listing view of a Document without its content
type DocumentSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SourceName   string    `json:"source_name"`
	Format       string    `json:"format"`
	BusinessRole string    `json:"business_role,omitempty"`
	Chunks       int       `json:"chunks"`
	Characters   int       `json:"characters"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary returns the listing view of d
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:           d.ID,
		Title:        d.Title,
		SourceName:   d.SourceName,
		Format:       d.Format,
		BusinessRole: d.Metadata.BusinessRole,
		Chunks:       len(d.Chunks),
		Characters:   len(d.Content),
		UpdatedAt:    d.UpdatedAt,
	}
}
