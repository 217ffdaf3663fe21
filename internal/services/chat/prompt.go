package chat

import (
	"fmt"
	"strings"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

// systemPrompt is the persona sent with every completion request
const systemPrompt = "You are a helpful teaching assistant. Your primary goal is to guide learners by providing clear, thorough, and well-structured explanations."

const contextDivider = "---------------------"

// buildContextBlock formats retrieved chunks into the context system
// message. Chunks appear in retrieval order separated by blank lines.
func buildContextBlock(folderID string, results []interfaces.SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	contents := make([]string, len(results))
	for i, result := range results {
		contents[i] = result.Chunk.Content
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Context information from %s is below.\n", folderID))
	b.WriteString(contextDivider + "\n")
	b.WriteString(strings.Join(contents, "\n\n"))
	b.WriteString("\n" + contextDivider)
	return b.String()
}
