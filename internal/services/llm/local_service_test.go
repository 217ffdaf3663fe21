package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
)

func newTestLocalService(t *testing.T, handler http.Handler) *LocalLLMService {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := &common.LocalConfig{
		BaseURL:        ts.URL,
		EmbeddingModel: "test-embed",
		Timeout:        "10s",
	}
	chatCfg := &common.ChatConfig{Temperature: 0.7, MaxTokens: 256}

	service, err := NewLocalLLMService(cfg, chatCfg, arbor.NewLogger())
	if err != nil {
		t.Fatalf("Failed to create local service: %v", err)
	}
	return service
}

func TestLocalChatCompletion(t *testing.T) {
	var gotReq openAIChatRequest

	service := newTestLocalService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"The mitochondria is the powerhouse of the cell."}}]}`))
	}))

	response, err := service.Chat(context.Background(), []interfaces.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "What is a mitochondria?"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	if response != "The mitochondria is the powerhouse of the cell." {
		t.Errorf("Unexpected response: %s", response)
	}
	if gotReq.Stream {
		t.Error("Expected stream=false")
	}
	if gotReq.Temperature != 0.7 {
		t.Errorf("Expected temperature 0.7, got %f", gotReq.Temperature)
	}
	if len(gotReq.Messages) != 2 {
		t.Errorf("Expected 2 messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" {
		t.Errorf("Expected system message first, got %s", gotReq.Messages[0].Role)
	}
}

func TestLocalChatServerError(t *testing.T) {
	service := newTestLocalService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))

	_, err := service.Chat(context.Background(), []interfaces.Message{
		{Role: "user", Content: "hello"},
	})
	if err == nil {
		t.Fatal("Expected error from server failure")
	}
}

func TestLocalEmbed(t *testing.T) {
	service := newTestLocalService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var req openAIEmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Input != "photosynthesis" {
			t.Errorf("Unexpected input: %s", req.Input)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}]}`))
	}))

	embedding, err := service.Embed(context.Background(), "photosynthesis")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(embedding) != 3 {
		t.Fatalf("Expected 3 dimensions, got %d", len(embedding))
	}
	if embedding[1] != 0.2 {
		t.Errorf("Unexpected embedding value: %f", embedding[1])
	}
}

func TestParseEmbeddingResponseFormats(t *testing.T) {
	cases := []struct {
		name string
		body string
		dim  int
	}{
		{"openai", `{"data":[{"embedding":[0.1,0.2]}]}`, 2},
		{"llama", `{"embedding":[0.1,0.2,0.3]}`, 3},
		{"raw", `[0.5,0.6,0.7,0.8]`, 4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			embedding, err := parseEmbeddingResponse([]byte(tc.body))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if len(embedding) != tc.dim {
				t.Errorf("Expected %d dims, got %d", tc.dim, len(embedding))
			}
		})
	}

	if _, err := parseEmbeddingResponse([]byte(`{"unknown":true}`)); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestMockEmbeddingDeterministic(t *testing.T) {
	service := NewMockLocalLLMService(arbor.NewLogger())

	a, err := service.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatal(err)
	}
	b, err := service.Embed(context.Background(), "same text")
	if err != nil {
		t.Fatal(err)
	}
	c, err := service.Embed(context.Background(), "different text")
	if err != nil {
		t.Fatal(err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatal("Same input produced different embeddings")
		}
	}

	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Different inputs produced identical embeddings")
	}
}
