package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// formatFolderList formats folder IDs as markdown
func formatFolderList(folders []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Folders (%d)\n\n", len(folders)))

	if len(folders) == 0 {
		sb.WriteString("No folders contain documents yet.\n")
		return sb.String()
	}

	for _, folder := range folders {
		sb.WriteString(fmt.Sprintf("- %s\n", folder))
	}
	return sb.String()
}

// formatDocumentList formats a folder's documents as markdown
func formatDocumentList(folderID string, infos []models.DocumentInfo) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Documents in %s (%d)\n\n", folderID, len(infos)))

	if len(infos) == 0 {
		sb.WriteString("Folder is empty.\n")
		return sb.String()
	}

	for _, info := range infos {
		sb.WriteString(fmt.Sprintf("- **%s** (%d bytes, uploaded %s)\n",
			info.Filename, info.Size, info.UploadedAt.Format(time.RFC3339)))
	}
	return sb.String()
}

// formatSearchResults formats retrieved chunks as markdown
func formatSearchResults(folderID, query string, results []interfaces.SearchResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Search Results in %s for \"%s\" (%d results)\n\n", folderID, query, len(results)))

	if len(results) == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	for i, result := range results {
		sb.WriteString(fmt.Sprintf("### %d. Score %.4f\n\n", i+1, result.Score))
		sb.WriteString(result.Chunk.Content)
		sb.WriteString("\n\n")

		if len(result.Chunk.Metadata) > 0 {
			metadataJSON, _ := json.MarshalIndent(result.Chunk.Metadata, "", "  ")
			sb.WriteString(fmt.Sprintf("**Metadata:** %s\n", string(metadataJSON)))
		}
		sb.WriteString("\n---\n\n")
	}
	return sb.String()
}

// formatAnswer formats a generated answer with its sources as markdown
func formatAnswer(response *interfaces.AnswerResponse) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Session:** %s\n\n", response.SessionID))
	sb.WriteString(response.Response)
	sb.WriteString("\n")

	if len(response.Sources) > 0 {
		sb.WriteString(fmt.Sprintf("\n## Sources (%d)\n\n", len(response.Sources)))
		for i, source := range response.Sources {
			sb.WriteString(fmt.Sprintf("### %d.\n\n", i+1))
			sb.WriteString(source.Content)
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}
