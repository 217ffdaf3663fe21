package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

// maxUploadSize caps multipart form memory before spilling to disk
const maxUploadSize = 32 << 20

// UploadHandler handles document ingestion requests
type UploadHandler struct {
	folderService interfaces.FolderService
	logger        arbor.ILogger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(folderService interfaces.FolderService, logger arbor.ILogger) *UploadHandler {
	return &UploadHandler{
		folderService: folderService,
		logger:        logger,
	}
}

// UploadDocumentHandler handles POST /upload/{folderId} requests with a
// multipart "file" field
func (h *UploadHandler) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	folderID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/upload/"), "/")
	if folderID == "" || strings.Contains(folderID, "/") {
		WriteError(w, http.StatusBadRequest, "Folder ID is required")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.folderService.Upload(r.Context(), folderID, header.Filename, file)
	if err != nil {
		h.logger.Warn().Err(err).
			Str("folder_id", folderID).
			Str("filename", header.Filename).
			Msg("Upload rejected")
		writeServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
