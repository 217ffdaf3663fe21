package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/handlers"
	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/services/chat"
	"github.com/ternarybob/doctrina/internal/services/chunker"
	"github.com/ternarybob/doctrina/internal/services/embeddings"
	"github.com/ternarybob/doctrina/internal/services/extract"
	"github.com/ternarybob/doctrina/internal/services/folders"
	"github.com/ternarybob/doctrina/internal/services/index"
	"github.com/ternarybob/doctrina/internal/services/llm"
	"github.com/ternarybob/doctrina/internal/services/maintenance"
	badgerstorage "github.com/ternarybob/doctrina/internal/storage/badger"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	// Pipeline services
	LLMService       interfaces.LLMService
	EmbeddingService interfaces.EmbeddingService
	ExtractService   interfaces.ExtractService
	ChunkService     interfaces.ChunkService
	IndexService     interfaces.IndexService
	FolderService    interfaces.FolderService
	ChatService      interfaces.ChatService

	// Background maintenance
	MaintenanceService *maintenance.Service

	// HTTP handlers
	APIHandler     *handlers.APIHandler
	UploadHandler  *handlers.UploadHandler
	ChatHandler    *handlers.ChatHandler
	FolderHandler  *handlers.FolderHandler
	SessionHandler *handlers.SessionHandler

	// ctx gates background work; cancelled on Close
	ctx    context.Context
	cancel context.CancelFunc
}

// New wires up storage, the document pipeline and handlers
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}
	app.ctx, app.cancel = context.WithCancel(context.Background())

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.initHandlers()

	// Load persisted folder indexes in the background so first searches
	// don't pay the disk read. Searches fall back to a lazy load for any
	// folder the warmup hasn't reached yet.
	common.SafeGoWithContext(app.ctx, logger, "index-prewarm", func() {
		if err := app.IndexService.Prewarm(app.ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to prewarm folder indexes")
		}
	})

	if cfg.Maintenance.Enabled {
		if err := app.MaintenanceService.Start(); err != nil {
			return nil, fmt.Errorf("failed to start maintenance: %w", err)
		}
	}

	logger.Info().
		Str("provider", string(cfg.LLM.DefaultProvider)).
		Str("data_dir", cfg.Storage.DataDir).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initStorage() error {
	storageManager, err := badgerstorage.NewManager(a.Logger, &a.Config.Storage.Badger)
	if err != nil {
		return err
	}
	a.StorageManager = storageManager

	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")
	return nil
}

func (a *App) initServices() error {
	llmService, err := llm.NewLLMService(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM service: %w", err)
	}
	a.LLMService = llmService

	a.EmbeddingService = embeddings.NewService(llmService, 0, a.Logger)
	a.ExtractService = extract.NewService(a.Logger)
	a.ChunkService = chunker.NewSplitter(&a.Config.Chunking, a.Logger)
	a.IndexService = index.NewRegistry(a.Config.Storage.DataDir, a.EmbeddingService, a.Logger)

	a.FolderService = folders.NewService(
		a.Config.Storage.DataDir,
		a.ExtractService,
		a.ChunkService,
		a.IndexService,
		a.Logger,
	)

	a.ChatService = chat.NewService(
		a.LLMService,
		a.IndexService,
		a.StorageManager.ChatStorage(),
		a.Config,
		a.Logger,
	)

	maintenanceService, err := maintenance.NewService(a.StorageManager, a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to create maintenance service: %w", err)
	}
	a.MaintenanceService = maintenanceService

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.UploadHandler = handlers.NewUploadHandler(a.FolderService, a.Logger)
	a.ChatHandler = handlers.NewChatHandler(a.ChatService, a.Logger)
	a.FolderHandler = handlers.NewFolderHandler(a.FolderService, a.Logger)
	a.SessionHandler = handlers.NewSessionHandler(a.ChatService, a.Logger)
}

// Close shuts down background work and releases storage
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}

	if a.MaintenanceService != nil {
		a.MaintenanceService.Stop()
	}

	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shut down")
	return nil
}
