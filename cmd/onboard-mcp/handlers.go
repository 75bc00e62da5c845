package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/handlers"
	"github.com/ternarybob/onboard/internal/interfaces"
)

func textResult(text string, isError bool) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
		IsError: isError,
	}
}

// handleAsk implements the ask tool
func handleAsk(answerer handlers.QueryAnswerer, sessions handlers.SessionProvider, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil || question == "" {
			return textResult("Error: question parameter is required", true), nil
		}

		session := sessions.GetOrCreate(request.GetString("session_id", ""))
		if role := request.GetString("business_role", ""); role != "" {
			session.SetBusinessRole(role)
		}

		answer, err := answerer.HandleQuery(ctx, question, session)
		if err != nil {
			logger.Error().Err(err).Str("session_id", session.ID).Msg("Ask failed")
			return textResult(fmt.Sprintf("Ask error: %v", err), true), nil
		}

		return textResult(formatAnswer(answer), false), nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(storage interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 50)
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		role := request.GetString("business_role", "")

		docs, err := storage.ListDocuments(&interfaces.ListOptions{
			BusinessRole: role,
			Limit:        limit,
		})
		if err != nil {
			logger.Error().Err(err).Msg("List documents failed")
			return textResult(fmt.Sprintf("List error: %v", err), true), nil
		}

		return textResult(formatDocumentList(docs, role), false), nil
	}
}

// handleGetDocument implements the get_document tool
func handleGetDocument(storage interfaces.DocumentStorage, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docID, err := request.RequireString("document_id")
		if err != nil || docID == "" {
			return textResult("Error: document_id parameter is required", true), nil
		}

		doc, err := storage.GetDocument(docID)
		if err != nil {
			logger.Debug().Err(err).Str("doc_id", docID).Msg("GetDocument failed")
			return textResult(fmt.Sprintf("Document not found: %s", docID), true), nil
		}

		return textResult(formatDocument(doc), false), nil
	}
}
