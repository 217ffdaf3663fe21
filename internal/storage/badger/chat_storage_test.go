package badger

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/doctrina/internal/interfaces"
	"github.com/ternarybob/doctrina/internal/models"
)

func newTestStorage(t *testing.T) interfaces.ChatStorage {
	t.Helper()

	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Dir = tmpDir
	options.ValueDir = tmpDir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewChatStorage(db, arbor.NewLogger())
}

func TestChatSessionRoundTrip(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	session := &models.ChatSession{
		ID:       "chat-test-1",
		FolderID: "biology",
	}
	session.Append(models.RoleUser, "What is osmosis?")
	session.Append(models.RoleAssistant, "Osmosis is the movement of water across a membrane.")

	if err := storage.SaveSession(ctx, session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	loaded, err := storage.GetSession(ctx, "chat-test-1")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	if loaded.FolderID != "biology" {
		t.Errorf("Expected folder biology, got %s", loaded.FolderID)
	}
	if len(loaded.Turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(loaded.Turns))
	}
	if loaded.Turns[0].Role != models.RoleUser {
		t.Errorf("Expected first turn from user, got %s", loaded.Turns[0].Role)
	}
	if loaded.Turns[1].Content != "Osmosis is the movement of water across a membrane." {
		t.Errorf("Unexpected assistant content: %s", loaded.Turns[1].Content)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	storage := newTestStorage(t)

	_, err := storage.GetSession(context.Background(), "missing")
	if err != interfaces.ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteSessionIdempotent(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	session := &models.ChatSession{ID: "chat-test-2", FolderID: "history"}
	session.Append(models.RoleUser, "When did the war end?")
	if err := storage.SaveSession(ctx, session); err != nil {
		t.Fatal(err)
	}

	if err := storage.DeleteSession(ctx, "chat-test-2"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Deleting again should not error
	if err := storage.DeleteSession(ctx, "chat-test-2"); err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}

	if _, err := storage.GetSession(ctx, "chat-test-2"); err != interfaces.ErrSessionNotFound {
		t.Errorf("Expected session gone, got %v", err)
	}
}

func TestDeleteIdleSince(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	old := &models.ChatSession{
		ID:        "chat-old",
		FolderID:  "math",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		UpdatedAt: time.Now().Add(-48 * time.Hour),
	}
	fresh := &models.ChatSession{ID: "chat-fresh", FolderID: "math"}
	fresh.Append(models.RoleUser, "hello")

	if err := storage.SaveSession(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveSession(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	deleted, err := storage.DeleteIdleSince(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteIdleSince failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted session, got %d", deleted)
	}

	if _, err := storage.GetSession(ctx, "chat-old"); err != interfaces.ErrSessionNotFound {
		t.Errorf("Expected old session removed, got %v", err)
	}
	if _, err := storage.GetSession(ctx, "chat-fresh"); err != nil {
		t.Errorf("Expected fresh session kept, got %v", err)
	}

	count, err := storage.CountSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 remaining session, got %d", count)
	}
}
