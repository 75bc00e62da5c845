package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/onboard/internal/models"
	"github.com/ternarybob/onboard/internal/services/chat"
)

// formatAnswer formats an answer with its routing details as markdown
func formatAnswer(answer *chat.Answer) string {
	var sb strings.Builder
	sb.WriteString(answer.Text)
	sb.WriteString("\n\n---\n")
	sb.WriteString(fmt.Sprintf("**Session:** %s\n", answer.SessionID))
	sb.WriteString(fmt.Sprintf("**Intent:** %s\n", answer.Intent))
	if answer.DocumentID != "" {
		sb.WriteString(fmt.Sprintf("**Document:** %s (%s, score %.2f)\n", answer.DocumentID, answer.Signal, answer.Score))
	}
	if answer.ErrorKind != "" {
		sb.WriteString(fmt.Sprintf("**Degraded:** %s\n", answer.ErrorKind))
	}
	return sb.String()
}

// formatDocumentList formats document summaries as markdown
func formatDocumentList(docs []*models.Document, role string) string {
	var sb strings.Builder
	if role != "" {
		sb.WriteString(fmt.Sprintf("## Onboarding Documents for %s (%d)\n\n", role, len(docs)))
	} else {
		sb.WriteString(fmt.Sprintf("## Onboarding Documents (%d)\n\n", len(docs)))
	}

	if len(docs) == 0 {
		sb.WriteString("No documents found.\n")
		return sb.String()
	}

	for i, doc := range docs {
		summary := doc.Summary()
		sb.WriteString(fmt.Sprintf("%d. **%s** (`%s`, %s)\n", i+1, summary.Title, summary.ID, summary.Format))
		if summary.BusinessRole != "" {
			sb.WriteString(fmt.Sprintf("   Role: %s\n", summary.BusinessRole))
		}
		sb.WriteString(fmt.Sprintf("   Updated: %s\n", summary.UpdatedAt.Format(time.RFC3339)))
	}

	return sb.String()
}

// formatDocument formats a single document as markdown
func formatDocument(doc *models.Document) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", doc.Title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", doc.ID))
	sb.WriteString(fmt.Sprintf("**Source:** %s (%s)\n", doc.SourceName, doc.Format))
	if doc.Metadata.BusinessRole != "" {
		sb.WriteString(fmt.Sprintf("**Role:** %s\n", doc.Metadata.BusinessRole))
	}
	if doc.Metadata.Module != "" {
		sb.WriteString(fmt.Sprintf("**Module:** %s\n", doc.Metadata.Module))
	}
	sb.WriteString(fmt.Sprintf("**Updated:** %s\n\n", doc.UpdatedAt.Format(time.RFC3339)))

	sb.WriteString("## Content\n\n")
	sb.WriteString(doc.Content)
	sb.WriteString("\n")

	return sb.String()
}
