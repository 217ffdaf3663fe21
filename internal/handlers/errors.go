package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/doctrina/internal/interfaces"
)

// writeServiceError maps service sentinel errors to HTTP status codes.
// Anything unmapped becomes a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, interfaces.ErrUnsupportedFormat),
		errors.Is(err, interfaces.ErrDuplicateDocument),
		errors.Is(err, interfaces.ErrInvalidFolderID),
		errors.Is(err, interfaces.ErrNoIndex):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, interfaces.ErrDocumentNotFound),
		errors.Is(err, interfaces.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
