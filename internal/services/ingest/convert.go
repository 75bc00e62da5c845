package ingest

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/ternarybob/onboard/internal/models"
	"github.com/ternarybob/onboard/internal/services/corpus"
)

// ToDocuments converts the entries of idx into storable documents, in corpus order
func ToDocuments(idx *corpus.Index) []*models.Document {
	ids := idx.DocumentIDs()
	docs := make([]*models.Document, 0, len(ids))
	for _, id := range ids {
		entry, ok := idx.Entry(id)
		if !ok {
			continue
		}

		title := entry.Metadata.Title
		if title == "" {
			title = entry.Source
		}
		sum := sha256.Sum256([]byte(entry.Text))

		docs = append(docs, &models.Document{
			ID:          entry.ID,
			SourceName:  entry.Source,
			SourcePath:  entry.Path,
			Format:      entry.Format,
			Title:       title,
			Content:     entry.Text,
			Chunks:      entry.Chunks,
			ContentHash: hex.EncodeToString(sum[:]),
			Metadata:    entry.Metadata,
		})
	}
	return docs
}

// ToSourceDocuments turns stored documents back into source input for a rebuild
func ToSourceDocuments(stored []*models.Document) []models.SourceDocument {
	docs := make([]models.SourceDocument, 0, len(stored))
	for _, doc := range stored {
		name := doc.SourceName
		if name == "" {
			name = doc.ID
		}
		docs = append(docs, models.SourceDocument{
			Name:     name,
			Path:     doc.SourcePath,
			Format:   doc.Format,
			Text:     doc.Content,
			Chunks:   doc.Chunks,
			Metadata: doc.Metadata,
		})
	}
	return docs
}
