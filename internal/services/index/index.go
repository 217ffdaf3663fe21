package index

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

const indexFileName = "index.json"

// entry is one embedded chunk stored in a folder index
type entry struct {
	ID       string                 `json:"id"`
	Vector   []float32              `json:"vector"`
	Content  string                 `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// folderIndex holds the embedded chunks for a single folder. Searches are
// a brute-force cosine scan, which is fine for per-folder document counts.
type folderIndex struct {
	FolderID string  `json:"folder_id"`
	Entries  []entry `json:"entries"`
}

func newFolderIndex(folderID string) *folderIndex {
	return &folderIndex{FolderID: folderID}
}

func (fi *folderIndex) add(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk count %d does not match vector count %d", len(chunks), len(vectors))
	}
	for i, chunk := range chunks {
		fi.Entries = append(fi.Entries, entry{
			ID:       chunk.ID,
			Vector:   vectors[i],
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
		})
	}
	return nil
}

func (fi *folderIndex) search(query []float32, topK int) []interfaces.SearchResult {
	if topK <= 0 || len(fi.Entries) == 0 {
		return nil
	}

	results := make([]interfaces.SearchResult, 0, len(fi.Entries))
	for _, e := range fi.Entries {
		score := cosineSimilarity(query, e.Vector)
		results = append(results, interfaces.SearchResult{
			Chunk: models.Chunk{
				ID:       e.ID,
				Content:  e.Content,
				Metadata: e.Metadata,
			},
			Score: score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// cosineSimilarity returns 0 for mismatched or zero-magnitude vectors
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func (fi *folderIndex) save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	data, err := json.Marshal(fi)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	// Write to a temp file then rename so a crash never leaves a
	// half-written index behind.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace index: %w", err)
	}
	return nil
}

func loadFolderIndex(path string) (*folderIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fi folderIndex
	if err := json.Unmarshal(data, &fi); err != nil {
		return nil, fmt.Errorf("failed to parse index %s: %w", path, err)
	}
	return &fi, nil
}
