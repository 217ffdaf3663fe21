package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/services/chat"
	"github.com/ternarybob/doctrina/internal/services/chunker"
	"github.com/ternarybob/doctrina/internal/services/embeddings"
	"github.com/ternarybob/doctrina/internal/services/extract"
	"github.com/ternarybob/doctrina/internal/services/folders"
	"github.com/ternarybob/doctrina/internal/services/index"
	"github.com/ternarybob/doctrina/internal/services/llm"
	badgerstorage "github.com/ternarybob/doctrina/internal/storage/badger"
)

func main() {
	configPath := os.Getenv("DOCTRINA_CONFIG")
	if configPath == "" {
		configPath = "doctrina.toml"
	}

	config, err := common.LoadFromFile(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Minimal console logger so stdio stays clean for the MCP protocol
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	storageManager, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer storageManager.Close()

	llmService, err := llm.NewLLMService(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize LLM service")
	}
	defer llmService.Close()

	embeddingService := embeddings.NewService(llmService, 0, logger)
	indexService := index.NewRegistry(config.Storage.DataDir, embeddingService, logger)
	folderService := folders.NewService(
		config.Storage.DataDir,
		extract.NewService(logger),
		chunker.NewSplitter(&config.Chunking, logger),
		indexService,
		logger,
	)
	chatService := chat.NewService(llmService, indexService, storageManager.ChatStorage(), config, logger)

	mcpServer := server.NewMCPServer(
		"doctrina",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createListFoldersTool(), handleListFolders(folderService, logger))
	mcpServer.AddTool(createListDocumentsTool(), handleListDocuments(folderService, logger))
	mcpServer.AddTool(createSearchFolderTool(), handleSearchFolder(indexService, config.Retrieval.TopK, logger))
	mcpServer.AddTool(createAskFolderTool(), handleAskFolder(chatService, logger))

	// Blocks on stdio
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
