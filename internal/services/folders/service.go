package folders

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

const uploadsDirName = "uploads"

// Service manages per-folder document collections on disk. Files live
// under <dataDir>/<folderID>/uploads/ and feed the folder's vector index.
type Service struct {
	dataDir string
	extract interfaces.ExtractService
	chunker interfaces.ChunkService
	index   interfaces.IndexService
	logger  arbor.ILogger

	// mu serializes mutations per folder so concurrent uploads and deletes
	// never race on the uploads directory or the index
	mu          sync.Mutex
	folderLocks map[string]*sync.Mutex
}

func NewService(
	dataDir string,
	extract interfaces.ExtractService,
	chunker interfaces.ChunkService,
	index interfaces.IndexService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		dataDir:     dataDir,
		extract:     extract,
		chunker:     chunker,
		index:       index,
		logger:      logger,
		folderLocks: make(map[string]*sync.Mutex),
	}
}

var _ interfaces.FolderService = (*Service)(nil)

func (s *Service) lockFolder(folderID string) func() {
	s.mu.Lock()
	lock, ok := s.folderLocks[folderID]
	if !ok {
		lock = &sync.Mutex{}
		s.folderLocks[folderID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *Service) uploadsDir(folderID string) string {
	return filepath.Join(s.dataDir, folderID, uploadsDirName)
}

// sanitizeFolderID rejects identifiers with path separators or dot
// components so folder operations can never touch paths outside dataDir
func sanitizeFolderID(folderID string) (string, error) {
	clean := strings.TrimSpace(folderID)
	if clean == "" || clean == "." || clean == ".." || strings.ContainsAny(clean, `/\`) {
		return "", fmt.Errorf("%w: %q", interfaces.ErrInvalidFolderID, folderID)
	}
	return clean, nil
}

// sanitizeFilename strips any path components so uploads cannot escape the
// folder's uploads directory
func sanitizeFilename(filename string) (string, error) {
	clean := filepath.Base(strings.TrimSpace(filename))
	if clean == "" || clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	return clean, nil
}

// Upload implements the FolderService interface
func (s *Service) Upload(ctx context.Context, folderID string, filename string, r io.Reader) (*interfaces.UploadResult, error) {
	folderID, err := sanitizeFolderID(folderID)
	if err != nil {
		return nil, err
	}
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}
	if !s.extract.Supports(name) {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrUnsupportedFormat, filepath.Ext(name))
	}

	unlock := s.lockFolder(folderID)
	defer unlock()

	dir := s.uploadsDir(folderID)
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrDuplicateDocument, name)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	if err := s.writeFile(path, r); err != nil {
		return nil, err
	}

	chunks, err := s.processDocument(ctx, path, name)
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	if err := s.index.AddChunks(ctx, folderID, chunks); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to index document %s: %w", name, err)
	}

	s.logger.Info().
		Str("folder_id", folderID).
		Str("filename", name).
		Int("chunks", len(chunks)).
		Msg("Document uploaded")

	return &interfaces.UploadResult{
		Filename: name,
		Chunks:   len(chunks),
		FolderID: folderID,
	}, nil
}

func (s *Service) writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to save upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// processDocument extracts and chunks a saved file
func (s *Service) processDocument(ctx context.Context, path, filename string) ([]models.Chunk, error) {
	segments, err := s.extract.Extract(ctx, path, filename)
	if err != nil {
		return nil, err
	}
	return s.chunker.Chunk(segments), nil
}

// ListDocuments implements the FolderService interface
func (s *Service) ListDocuments(ctx context.Context, folderID string) ([]string, error) {
	folderID, err := sanitizeFolderID(folderID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.uploadsDir(folderID))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read folder %s: %w", folderID, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListDocumentInfo implements the FolderService interface
func (s *Service) ListDocumentInfo(ctx context.Context, folderID string) ([]models.DocumentInfo, error) {
	folderID, err := sanitizeFolderID(folderID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.uploadsDir(folderID))
	if err != nil {
		if os.IsNotExist(err) {
			return []models.DocumentInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read folder %s: %w", folderID, err)
	}

	infos := make([]models.DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		fileInfo, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, models.DocumentInfo{
			Filename:   entry.Name(),
			Size:       fileInfo.Size(),
			UploadedAt: fileInfo.ModTime(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Filename < infos[j].Filename })
	return infos, nil
}

// DeleteDocument implements the FolderService interface. The index is
// rebuilt from every remaining document so stale chunks never linger.
func (s *Service) DeleteDocument(ctx context.Context, folderID string, filename string) ([]string, error) {
	folderID, err := sanitizeFolderID(folderID)
	if err != nil {
		return nil, err
	}
	name, err := sanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	unlock := s.lockFolder(folderID)
	defer unlock()

	path := filepath.Join(s.uploadsDir(folderID), name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrDocumentNotFound, name)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", name, err)
	}
	if err := os.Remove(path); err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", name, err)
	}

	remaining, err := s.ListDocuments(ctx, folderID)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, remainingName := range remaining {
		docChunks, err := s.processDocument(ctx, filepath.Join(s.uploadsDir(folderID), remainingName), remainingName)
		if err != nil {
			return nil, fmt.Errorf("failed to reprocess %s: %w", remainingName, err)
		}
		chunks = append(chunks, docChunks...)
	}

	if err := s.index.Rebuild(ctx, folderID, chunks); err != nil {
		return nil, fmt.Errorf("failed to rebuild index for folder %s: %w", folderID, err)
	}

	s.logger.Info().
		Str("folder_id", folderID).
		Str("filename", name).
		Int("remaining", len(remaining)).
		Msg("Document deleted, index rebuilt")
	return remaining, nil
}

// DeleteFolder implements the FolderService interface
func (s *Service) DeleteFolder(ctx context.Context, folderID string) error {
	folderID, err := sanitizeFolderID(folderID)
	if err != nil {
		return err
	}

	unlock := s.lockFolder(folderID)
	defer unlock()

	if err := s.index.Remove(folderID); err != nil {
		return err
	}
	if err := os.RemoveAll(filepath.Join(s.dataDir, folderID)); err != nil {
		return fmt.Errorf("failed to delete folder %s: %w", folderID, err)
	}

	s.logger.Info().Str("folder_id", folderID).Msg("Folder deleted")
	return nil
}

// ListFolders implements the FolderService interface
func (s *Service) ListFolders(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	folders := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		docs, err := s.ListDocuments(ctx, entry.Name())
		if err != nil || len(docs) == 0 {
			continue
		}
		folders = append(folders, entry.Name())
	}
	sort.Strings(folders)
	return folders, nil
}
