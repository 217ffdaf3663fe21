package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

// Registry implements interfaces.IndexService with one in-memory index per
// folder, persisted as JSON under <dataDir>/<folderID>/vectorstore/.
type Registry struct {
	dataDir    string
	embeddings interfaces.EmbeddingService
	logger     arbor.ILogger

	mu      sync.RWMutex
	indexes map[string]*folderIndex
}

func NewRegistry(dataDir string, embeddings interfaces.EmbeddingService, logger arbor.ILogger) *Registry {
	return &Registry{
		dataDir:    dataDir,
		embeddings: embeddings,
		logger:     logger,
		indexes:    make(map[string]*folderIndex),
	}
}

var _ interfaces.IndexService = (*Registry)(nil)

func (r *Registry) indexPath(folderID string) string {
	return filepath.Join(r.dataDir, folderID, "vectorstore", indexFileName)
}

// validFolderID mirrors the folder service's guard so index paths can never
// resolve outside dataDir
func validFolderID(folderID string) error {
	if folderID == "" || folderID == "." || folderID == ".." || strings.ContainsAny(folderID, `/\`) {
		return fmt.Errorf("%w: %q", interfaces.ErrInvalidFolderID, folderID)
	}
	return nil
}

// getOrLoad returns the folder's index, loading it from disk on first use.
// Returns nil when the folder has no index. Caller must hold r.mu.
func (r *Registry) getOrLoad(folderID string) *folderIndex {
	if fi, ok := r.indexes[folderID]; ok {
		return fi
	}
	fi, err := loadFolderIndex(r.indexPath(folderID))
	if err != nil {
		if !os.IsNotExist(err) {
			r.logger.Warn().Err(err).Str("folder_id", folderID).Msg("Failed to load persisted index")
		}
		return nil
	}
	r.indexes[folderID] = fi
	return fi
}

func (r *Registry) AddChunks(ctx context.Context, folderID string, chunks []models.Chunk) error {
	if err := validFolderID(folderID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := r.embeddings.EmbedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks for folder %s: %w", folderID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Extend a copy and swap it in only after a successful persist, so a
	// failed save never leaves cached entries with no on-disk counterpart.
	fi := newFolderIndex(folderID)
	if existing := r.getOrLoad(folderID); existing != nil {
		fi.Entries = append(fi.Entries, existing.Entries...)
	}

	if err := fi.add(chunks, vectors); err != nil {
		return err
	}
	if err := fi.save(r.indexPath(folderID)); err != nil {
		return err
	}
	r.indexes[folderID] = fi

	r.logger.Info().
		Str("folder_id", folderID).
		Int("added", len(chunks)).
		Int("total", len(fi.Entries)).
		Msg("Chunks added to index")
	return nil
}

func (r *Registry) Rebuild(ctx context.Context, folderID string, chunks []models.Chunk) error {
	if err := validFolderID(folderID); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return r.Remove(folderID)
	}

	vectors, err := r.embeddings.EmbedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks for folder %s: %w", folderID, err)
	}

	fi := newFolderIndex(folderID)
	if err := fi.add(chunks, vectors); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := fi.save(r.indexPath(folderID)); err != nil {
		return err
	}
	r.indexes[folderID] = fi

	r.logger.Info().
		Str("folder_id", folderID).
		Int("chunks", len(chunks)).
		Msg("Index rebuilt")
	return nil
}

func (r *Registry) Search(ctx context.Context, folderID string, query string, topK int) ([]interfaces.SearchResult, error) {
	if err := validFolderID(folderID); err != nil {
		return nil, err
	}

	r.mu.RLock()
	fi, ok := r.indexes[folderID]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		fi = r.getOrLoad(folderID)
		r.mu.Unlock()
	}
	if fi == nil || len(fi.Entries) == 0 {
		return nil, interfaces.ErrNoIndex
	}

	queryVector, err := r.embeddings.GenerateQueryEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return fi.search(queryVector, topK), nil
}

func (r *Registry) HasIndex(folderID string) bool {
	if validFolderID(folderID) != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fi := r.getOrLoad(folderID)
	return fi != nil && len(fi.Entries) > 0
}

func (r *Registry) Remove(folderID string) error {
	if err := validFolderID(folderID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.indexes, folderID)

	if err := os.RemoveAll(filepath.Dir(r.indexPath(folderID))); err != nil {
		return fmt.Errorf("failed to remove index for folder %s: %w", folderID, err)
	}
	r.logger.Info().Str("folder_id", folderID).Msg("Index removed")
	return nil
}

func (r *Registry) Prewarm(ctx context.Context) error {
	entries, err := os.ReadDir(r.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read data directory: %w", err)
	}

	loaded := 0
	for _, dirEntry := range entries {
		if !dirEntry.IsDir() {
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		folderID := dirEntry.Name()
		r.mu.Lock()
		fi := r.getOrLoad(folderID)
		r.mu.Unlock()
		if fi != nil {
			loaded++
		}
	}

	r.logger.Info().Int("indexes", loaded).Msg("Prewarmed folder indexes")
	return nil
}
