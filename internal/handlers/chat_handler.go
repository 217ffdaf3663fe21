package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

// ChatHandler handles question-answering HTTP requests
type ChatHandler struct {
	chatService interfaces.ChatService
	logger      arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// AskHandler handles POST /chat/{folderId} requests
func (h *ChatHandler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	folderID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/chat/"), "/")
	if folderID == "" || strings.Contains(folderID, "/") {
		WriteError(w, http.StatusBadRequest, "Folder ID is required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		WriteError(w, http.StatusBadRequest, "Message field is required")
		return
	}

	response, err := h.chatService.Answer(r.Context(), &interfaces.AnswerRequest{
		FolderID:  folderID,
		Message:   req.Message,
		SessionID: req.SessionID,
	})
	if err != nil {
		h.logger.Error().Err(err).
			Str("folder_id", folderID).
			Msg("Failed to answer question")
		writeServiceError(w, err)
		return
	}

	// sources is always present, an empty array when nothing was retrieved
	if response.Sources == nil {
		response.Sources = []interfaces.Source{}
	}
	WriteJSON(w, http.StatusOK, response)
}

// HealthHandler handles GET /chat/health requests
func (h *ChatHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	if err := h.chatService.HealthCheck(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
