package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
)

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
	}
}

// handleListFolders implements the list_folders tool
func handleListFolders(folderService interfaces.FolderService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folders, err := folderService.ListFolders(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("List folders failed")
			return errorResult(fmt.Sprintf("Error listing folders: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatFolderList(folders)),
			},
		}, nil
	}
}

// handleListDocuments implements the list_documents tool
func handleListDocuments(folderService interfaces.FolderService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folderID, err := request.RequireString("folder_id")
		if err != nil || folderID == "" {
			return errorResult("Error: folder_id parameter is required"), nil
		}

		infos, err := folderService.ListDocumentInfo(ctx, folderID)
		if err != nil {
			logger.Error().Err(err).Str("folder_id", folderID).Msg("List documents failed")
			return errorResult(fmt.Sprintf("Error listing documents: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatDocumentList(folderID, infos)),
			},
		}, nil
	}
}

// handleSearchFolder implements the search_folder tool
func handleSearchFolder(indexService interfaces.IndexService, defaultTopK int, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folderID, err := request.RequireString("folder_id")
		if err != nil || folderID == "" {
			return errorResult("Error: folder_id parameter is required"), nil
		}
		query, err := request.RequireString("query")
		if err != nil || query == "" {
			return errorResult("Error: query parameter is required"), nil
		}

		topK := request.GetInt("top_k", defaultTopK)
		if topK > 20 {
			topK = 20
		}

		results, err := indexService.Search(ctx, folderID, query, topK)
		if err != nil {
			logger.Error().Err(err).Str("folder_id", folderID).Msg("Search failed")
			return errorResult(fmt.Sprintf("Search error: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatSearchResults(folderID, query, results)),
			},
		}, nil
	}
}

// handleAskFolder implements the ask_folder tool
func handleAskFolder(chatService interfaces.ChatService, logger arbor.ILogger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		folderID, err := request.RequireString("folder_id")
		if err != nil || folderID == "" {
			return errorResult("Error: folder_id parameter is required"), nil
		}
		message, err := request.RequireString("message")
		if err != nil || message == "" {
			return errorResult("Error: message parameter is required"), nil
		}

		// Always chat under a session id so the agent can continue the
		// conversation with follow-up calls.
		sessionID := request.GetString("session_id", "")
		if sessionID == "" {
			sessionID = common.NewSessionID()
		}

		response, err := chatService.Answer(ctx, &interfaces.AnswerRequest{
			FolderID:  folderID,
			Message:   message,
			SessionID: sessionID,
		})
		if err != nil {
			logger.Error().Err(err).Str("folder_id", folderID).Msg("Answer failed")
			return errorResult(fmt.Sprintf("Answer error: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewTextContent(formatAnswer(response)),
			},
		}, nil
	}
}
