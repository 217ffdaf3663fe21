package main

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createListFoldersTool returns the list_folders tool definition
func createListFoldersTool() mcp.Tool {
	return mcp.NewTool("list_folders",
		mcp.WithDescription("List folders that hold uploaded documents"),
	)
}

// createListDocumentsTool returns the list_documents tool definition
func createListDocumentsTool() mcp.Tool {
	return mcp.NewTool("list_documents",
		mcp.WithDescription("List the documents stored in a folder"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("Folder identifier"),
		),
	)
}

// createSearchFolderTool returns the search_folder tool definition
func createSearchFolderTool() mcp.Tool {
	return mcp.NewTool("search_folder",
		mcp.WithDescription("Similarity-search a folder's indexed documents and return the matching chunks"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("Folder identifier"),
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language search query"),
		),
		mcp.WithNumber("top_k",
			mcp.Description("Number of chunks to return (default: configured retrieval top_k)"),
		),
	)
}

// createAskFolderTool returns the ask_folder tool definition
func createAskFolderTool() mcp.Tool {
	return mcp.NewTool("ask_folder",
		mcp.WithDescription("Ask a question grounded in a folder's documents and get a generated answer with sources"),
		mcp.WithString("folder_id",
			mcp.Required(),
			mcp.Description("Folder identifier"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("The question to answer"),
		),
		mcp.WithString("session_id",
			mcp.Description("Chat session to continue (format: chat_{uuid}); omit to start a new session"),
		),
	)
}
