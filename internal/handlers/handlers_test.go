package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

type mockFolderService struct {
	uploadFunc         func(ctx context.Context, folderID, filename string, r io.Reader) (*interfaces.UploadResult, error)
	listDocumentsFunc  func(ctx context.Context, folderID string) ([]string, error)
	deleteDocumentFunc func(ctx context.Context, folderID, filename string) ([]string, error)
	deleteFolderFunc   func(ctx context.Context, folderID string) error
	listFoldersFunc    func(ctx context.Context) ([]string, error)
}

func (m *mockFolderService) Upload(ctx context.Context, folderID, filename string, r io.Reader) (*interfaces.UploadResult, error) {
	return m.uploadFunc(ctx, folderID, filename, r)
}

func (m *mockFolderService) ListDocuments(ctx context.Context, folderID string) ([]string, error) {
	return m.listDocumentsFunc(ctx, folderID)
}

func (m *mockFolderService) ListDocumentInfo(ctx context.Context, folderID string) ([]models.DocumentInfo, error) {
	return nil, nil
}

func (m *mockFolderService) DeleteDocument(ctx context.Context, folderID, filename string) ([]string, error) {
	return m.deleteDocumentFunc(ctx, folderID, filename)
}

func (m *mockFolderService) DeleteFolder(ctx context.Context, folderID string) error {
	return m.deleteFolderFunc(ctx, folderID)
}

func (m *mockFolderService) ListFolders(ctx context.Context) ([]string, error) {
	return m.listFoldersFunc(ctx)
}

type mockChatService struct {
	answerFunc func(ctx context.Context, req *interfaces.AnswerRequest) (*interfaces.AnswerResponse, error)
	deleteFunc func(ctx context.Context, sessionID string) error
}

func (m *mockChatService) Answer(ctx context.Context, req *interfaces.AnswerRequest) (*interfaces.AnswerResponse, error) {
	return m.answerFunc(ctx, req)
}

func (m *mockChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockChatService) HealthCheck(ctx context.Context) error { return nil }

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	service := &mockFolderService{
		uploadFunc: func(ctx context.Context, folderID, filename string, r io.Reader) (*interfaces.UploadResult, error) {
			if folderID != "biology" {
				t.Errorf("Expected folder biology, got %s", folderID)
			}
			content, _ := io.ReadAll(r)
			if string(content) != "cell notes" {
				t.Errorf("File content not forwarded: %s", content)
			}
			return &interfaces.UploadResult{Filename: filename, Chunks: 4, FolderID: folderID}, nil
		},
	}
	handler := NewUploadHandler(service, arbor.NewLogger())

	body, contentType := multipartBody(t, "cells.txt", "cell notes")
	req := httptest.NewRequest(http.MethodPost, "/upload/biology", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.UploadDocumentHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["filename"] != "cells.txt" || resp["folderId"] != "biology" || resp["chunks"] != float64(4) {
		t.Errorf("Unexpected response: %v", resp)
	}
}

func TestUploadErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"duplicate", interfaces.ErrDuplicateDocument, http.StatusBadRequest},
		{"unsupported", interfaces.ErrUnsupportedFormat, http.StatusBadRequest},
		{"index failure", errors.New("embedding server down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockFolderService{
				uploadFunc: func(ctx context.Context, folderID, filename string, r io.Reader) (*interfaces.UploadResult, error) {
					return nil, tt.err
				},
			}
			handler := NewUploadHandler(service, arbor.NewLogger())

			body, contentType := multipartBody(t, "cells.txt", "content")
			req := httptest.NewRequest(http.MethodPost, "/upload/biology", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			handler.UploadDocumentHandler(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestUploadMissingFileField(t *testing.T) {
	handler := NewUploadHandler(&mockFolderService{}, arbor.NewLogger())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("notfile", "x")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload/biology", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.UploadDocumentHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestChatAsk(t *testing.T) {
	service := &mockChatService{
		answerFunc: func(ctx context.Context, req *interfaces.AnswerRequest) (*interfaces.AnswerResponse, error) {
			if req.FolderID != "biology" || req.Message != "What is a cell?" || req.SessionID != "chat_abc" {
				t.Errorf("Request not forwarded: %+v", req)
			}
			return &interfaces.AnswerResponse{
				Response:  "A cell is the basic unit of life.",
				Sources:   []interfaces.Source{{Content: "chunk", Metadata: map[string]interface{}{"source": "cells.txt"}}},
				SessionID: "chat_abc",
			}, nil
		},
	}
	handler := NewChatHandler(service, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat/biology",
		strings.NewReader(`{"message":"What is a cell?","sessionId":"chat_abc"}`))
	rec := httptest.NewRecorder()

	handler.AskHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["response"] != "A cell is the basic unit of life." {
		t.Errorf("Unexpected response: %v", resp)
	}
	if resp["sessionId"] != "chat_abc" {
		t.Errorf("Session ID missing: %v", resp)
	}
	sources, ok := resp["sources"].([]interface{})
	if !ok || len(sources) != 1 {
		t.Fatalf("Expected sources array: %v", resp)
	}
	source := sources[0].(map[string]interface{})
	if source["content"] != "chunk" {
		t.Errorf("Source content missing: %v", source)
	}
}

func TestChatEmptySourcesSerializedAsArray(t *testing.T) {
	service := &mockChatService{
		answerFunc: func(ctx context.Context, req *interfaces.AnswerRequest) (*interfaces.AnswerResponse, error) {
			return &interfaces.AnswerResponse{Response: "answer"}, nil
		},
	}
	handler := NewChatHandler(service, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat/biology", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)

	if !strings.Contains(rec.Body.String(), `"sources":[]`) {
		t.Errorf("Expected empty sources array, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "sessionId") {
		t.Errorf("Stateless answer should omit sessionId, got %s", rec.Body.String())
	}
}

func TestChatValidation(t *testing.T) {
	handler := NewChatHandler(&mockChatService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat/biology", strings.NewReader(`{"message":"  "}`))
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Blank message should be 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/chat/biology", strings.NewReader(`not json`))
	rec = httptest.NewRecorder()
	handler.AskHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Invalid JSON should be 400, got %d", rec.Code)
	}
}

func TestChatNoIndexStrictMode(t *testing.T) {
	service := &mockChatService{
		answerFunc: func(ctx context.Context, req *interfaces.AnswerRequest) (*interfaces.AnswerResponse, error) {
			return nil, interfaces.ErrNoIndex
		},
	}
	handler := NewChatHandler(service, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat/empty", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	handler.AskHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ErrNoIndex should map to 400, got %d", rec.Code)
	}
}

func TestFolderRouting(t *testing.T) {
	service := &mockFolderService{
		listDocumentsFunc: func(ctx context.Context, folderID string) ([]string, error) {
			return []string{"atp.txt", "cells.txt"}, nil
		},
		deleteFolderFunc: func(ctx context.Context, folderID string) error { return nil },
		deleteDocumentFunc: func(ctx context.Context, folderID, filename string) ([]string, error) {
			if filename == "missing.txt" {
				return nil, interfaces.ErrDocumentNotFound
			}
			return []string{"atp.txt"}, nil
		},
		listFoldersFunc: func(ctx context.Context) ([]string, error) {
			return []string{"biology"}, nil
		},
	}
	handler := NewFolderHandler(service, arbor.NewLogger())

	t.Run("list documents", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/folders/biology/documents", nil)
		rec := httptest.NewRecorder()
		handler.RouteFolderRequest(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		docs := resp["documents"].([]interface{})
		if len(docs) != 2 || docs[0] != "atp.txt" {
			t.Errorf("Unexpected documents: %v", resp)
		}
	})

	t.Run("delete folder", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/folders/biology", nil)
		rec := httptest.NewRecorder()
		handler.RouteFolderRequest(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var resp map[string]string
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["folderId"] != "biology" || resp["message"] == "" {
			t.Errorf("Unexpected response: %v", resp)
		}
	})

	t.Run("delete file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/folders/biology/files/cells.txt", nil)
		rec := httptest.NewRecorder()
		handler.RouteFolderRequest(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var resp map[string]interface{}
		json.Unmarshal(rec.Body.Bytes(), &resp)
		remaining := resp["remainingFiles"].([]interface{})
		if len(remaining) != 1 || remaining[0] != "atp.txt" {
			t.Errorf("Unexpected remaining files: %v", resp)
		}
	})

	t.Run("delete missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/folders/biology/files/missing.txt", nil)
		rec := httptest.NewRecorder()
		handler.RouteFolderRequest(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("list folders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/folders/", nil)
		rec := httptest.NewRecorder()
		handler.RouteFolderRequest(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "biology") {
			t.Errorf("Folder list missing: %s", rec.Body.String())
		}
	})

	t.Run("unknown path shape", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/folders/biology/extra/bits/here", nil)
		rec := httptest.NewRecorder()
		handler.RouteFolderRequest(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})
}

func TestDeleteSession(t *testing.T) {
	var deletedID string
	service := &mockChatService{
		deleteFunc: func(ctx context.Context, sessionID string) error {
			deletedID = sessionID
			return nil
		},
	}
	handler := NewSessionHandler(service, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodDelete, "/chats/chat_abc", nil)
	rec := httptest.NewRecorder()
	handler.DeleteSessionHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if deletedID != "chat_abc" {
		t.Errorf("Expected chat_abc deleted, got %s", deletedID)
	}
	if !strings.Contains(rec.Body.String(), "message") {
		t.Errorf("Expected message in response: %s", rec.Body.String())
	}
}

func TestDeleteSessionMissingID(t *testing.T) {
	handler := NewSessionHandler(&mockChatService{}, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodDelete, "/chats/", nil)
	rec := httptest.NewRecorder()
	handler.DeleteSessionHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}
