package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/onboard/internal/app"
	"github.com/ternarybob/onboard/internal/common"
)

func main() {
	configPath := os.Getenv("ONBOARD_CONFIG")
	if configPath == "" {
		if _, err := os.Stat("onboard.toml"); err == nil {
			configPath = "onboard.toml"
		}
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console writes to stderr; stdout carries the MCP protocol
	logger := common.NewConsoleLogger("warn")

	// Scheduled and watched re-ingestion stay off; the process lives as long as one client
	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	mcpServer := server.NewMCPServer(
		"onboard",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createAskTool(), handleAsk(application.OnboardingService, application.Sessions, logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(application.StorageManager.DocumentStorage(), logger))
	mcpServer.AddTool(createGetDocumentTool(), handleGetDocument(application.StorageManager.DocumentStorage(), logger))

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error().Err(err).Msg("MCP server failed")
	}
}
