package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createAskTool returns the ask tool definition
func createAskTool() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Ask the HR onboarding assistant a question. Job questions are answered from the onboarding documents."),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The new hire's question"),
		),
		mcp.WithString("session_id",
			mcp.Description("Session to continue; omit to start a new one (returned in the answer)"),
		),
		mcp.WithString("business_role",
			mcp.Description("Business role of the new hire, e.g. Engineer"),
		),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the onboarding documents in the index"),
		mcp.WithString("business_role",
			mcp.Description("Only documents for this role plus those that apply to everyone"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Max results (default: 50)"),
		),
	)
}

// createGetDocumentTool returns the get_document tool definition
func createGetDocumentTool() mcp.Tool {
	return mcp.NewTool("get_document",
		mcp.WithDescription("Retrieve one onboarding document with its full text"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("Document ID, the lower-cased file name without extension (e.g. annual leave)"),
		),
	)
}
