package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

// SessionHandler handles chat history management HTTP requests
type SessionHandler struct {
	chatService interfaces.ChatService
	logger      arbor.ILogger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(chatService interfaces.ChatService, logger arbor.ILogger) *SessionHandler {
	return &SessionHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// DeleteSessionHandler handles DELETE /chats/{chatId} requests. Deleting an
// unknown session succeeds so clients can clear state blindly.
func (h *SessionHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	sessionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/chats/"), "/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		WriteError(w, http.StatusBadRequest, "Chat ID is required")
		return
	}

	if err := h.chatService.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to delete session")
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Chat %s deleted", sessionID),
	})
}
