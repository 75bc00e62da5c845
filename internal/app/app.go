package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/handlers"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/services/chat"
	"github.com/ternarybob/onboard/internal/services/classifier"
	"github.com/ternarybob/onboard/internal/services/corpus"
	"github.com/ternarybob/onboard/internal/services/documents"
	"github.com/ternarybob/onboard/internal/services/embeddings"
	"github.com/ternarybob/onboard/internal/services/ingest"
	"github.com/ternarybob/onboard/internal/services/llm"
	"github.com/ternarybob/onboard/internal/services/retrieval"
	"github.com/ternarybob/onboard/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	ctx            context.Context
	cancelCtx      context.CancelFunc
	StorageManager interfaces.StorageManager

	// Model providers
	ProviderFactory  *llm.ProviderFactory
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService

	// Corpus and ingestion
	DocumentSource *documents.DirectorySource
	IndexHolder    *corpus.Holder
	IngestService  *ingest.Service

	// Query pipeline
	Classifier        *classifier.Classifier
	Retriever         *retrieval.Retriever
	Composer          *chat.Composer
	OnboardingService *chat.OnboardingService
	Sessions          *chat.SessionStore

	// HTTP handlers
	APIHandler         *handlers.APIHandler
	ChatHandler        *handlers.ChatHandler
	WSHandler          *handlers.WebSocketHandler
	DocumentHandler    *handlers.DocumentHandler
	InteractionHandler *handlers.InteractionHandler

	backgroundStarted bool
}

// New initializes the application with all dependencies and runs the startup
// ingestion when configured. Background work (schedule, watch, session pruning)
// starts with StartBackground.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ctx:       ctx,
		cancelCtx: cancel,
	}

	// Initialize database
	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	if err := app.initServices(); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Initialize handlers
	app.initHandlers()

	if cfg.Ingest.OnStartup {
		app.ingestOnStartup()
	}

	stats := app.IndexHolder.Load().Stats()
	logger.Info().
		Int("documents", stats.Documents).
		Bool("compose_answers", cfg.Chat.ComposeAnswers).
		Str("embedding_model", stats.EmbeddingModel).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Bool("in_memory", a.Config.Storage.Badger.InMemory).
		Msg("Storage layer initialized")

	return nil
}

// initServices initializes all business services in dependency order:
// providers, corpus and ingestion, then the query pipeline.
func (a *App) initServices() error {
	var err error

	// 1. Model providers
	a.ProviderFactory = llm.NewProviderFactory(a.Config, a.Logger)

	a.LLMService, err = llm.NewLLMService(a.Config, a.ProviderFactory, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	a.EmbeddingService, err = embeddings.NewEmbeddingService(a.Config, a.ProviderFactory, a.Logger)
	if err != nil {
		// Retrieval still works on fuzzy and TF-IDF signals with the offline embedder
		a.Logger.Warn().
			Err(err).
			Int("dimension", a.Config.Embeddings.Dimension).
			Msg("Embedding provider unavailable, falling back to local embedder")
		a.EmbeddingService = embeddings.NewLocalEmbedder(a.Config.Embeddings.Dimension)
	}

	// 2. Corpus and ingestion
	var cache interfaces.EmbeddingCache
	if a.Config.Embeddings.Cache {
		cache = a.StorageManager.EmbeddingCache()
	}

	a.DocumentSource = documents.NewDirectorySource(&a.Config.Documents, a.Logger)
	a.IndexHolder = corpus.NewHolder()
	builder := corpus.NewBuilder(corpus.OptionsFromConfig(a.Config), a.EmbeddingService, cache, a.Logger)
	a.IngestService = ingest.NewService(
		a.Config,
		a.DocumentSource,
		builder,
		a.IndexHolder,
		a.StorageManager.DocumentStorage(),
		a.Logger,
	)

	// 3. Query pipeline
	a.Classifier = classifier.NewClassifier(a.LLMService, a.Config.Classifier.FallbackIntent, a.Logger)
	a.Retriever = retrieval.NewRetriever(retrieval.ConfigFromCommon(&a.Config.Retrieval), a.EmbeddingService, a.Logger)
	a.Composer = chat.NewComposer(a.LLMService, a.Config.Chat.DefaultTopic, a.Logger)
	a.OnboardingService = chat.NewOnboardingService(
		a.Config.Chat,
		a.Classifier,
		a.Retriever,
		a.IndexHolder,
		a.Composer,
		a.StorageManager.InteractionStorage(),
		a.Logger,
	)

	idleTimeout := common.ParseDuration(a.Config.Chat.SessionIdleTimeout, 30*time.Minute)
	a.Sessions = chat.NewSessionStore(a.Config.Chat.HistoryTurns, idleTimeout, a.Logger)

	a.Logger.Debug().
		Str("documents_dir", a.DocumentSource.Dir()).
		Bool("embedding_cache", cache != nil).
		Msg("Services initialized")

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler(a.IndexHolder, a.IngestService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.OnboardingService, a.Sessions, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.OnboardingService, a.Sessions, a.Logger, &a.Config.WebSocket)
	a.DocumentHandler = handlers.NewDocumentHandler(a.StorageManager.DocumentStorage(), a.IngestService, a.Logger)
	a.InteractionHandler = handlers.NewInteractionHandler(a.StorageManager.InteractionStorage(), a.Logger)
}

// ingestOnStartup builds the first index. A failure leaves the app running
// without an index; queries then answer from the general prompt or with no match.
func (a *App) ingestOnStartup() {
	if _, err := a.IngestService.Reingest(a.ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Startup ingestion failed, serving without an index")
	}
}

// StartBackground starts scheduled and watched re-ingestion and the session pruner
func (a *App) StartBackground() error {
	if a.backgroundStarted {
		return nil
	}
	if err := a.IngestService.Start(a.ctx); err != nil {
		return fmt.Errorf("failed to start ingest scheduler: %w", err)
	}

	common.SafeGoWithContext(a.ctx, a.Logger, "session-pruner", func() {
		a.pruneSessions(time.Minute)
	})

	a.backgroundStarted = true
	return nil
}

func (a *App) pruneSessions(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case now := <-ticker.C:
			a.Sessions.Prune(now)
		}
	}
}

// Close closes all application resources
func (a *App) Close() error {
	// Cancel background goroutines
	if a.cancelCtx != nil {
		a.cancelCtx()
	}

	if a.IngestService != nil {
		a.IngestService.Stop()
	}

	// Close LLM service (drops the provider clients)
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	// Close storage
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.StorageManager = nil
		a.Logger.Info().Msg("Storage closed")
	}

	return nil
}
