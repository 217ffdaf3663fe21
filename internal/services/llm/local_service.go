package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doctrina/internal/common"
	"github.com/ternarybob/doctrina/internal/interfaces"
)

// LocalLLMService talks to an OpenAI-compatible server running on this
// machine (LM Studio, llama.cpp server, Ollama). It serves both chat
// completions and embeddings over localhost HTTP.
// SECURITY: The transport rejects any non-localhost address.
type LocalLLMService struct {
	baseURL        string
	chatModel      string
	embeddingModel string
	temperature    float32
	maxTokens      int
	client         *http.Client
	logger         arbor.ILogger
	mockMode       bool

	healthMutex        sync.RWMutex
	cachedHealthStatus error
	healthCheckTime    time.Time
}

// openAIEmbeddingRequest represents an embedding request to the server
type openAIEmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

// openAIEmbeddingResponse represents an embedding response from the server
type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// llamaEmbeddingResponse is the bare llama-server response shape
type llamaEmbeddingResponse struct {
	Embedding []float32 `json:"embedding"`
}

// openAIChatRequest represents a chat request to the server
type openAIChatRequest struct {
	Model       string              `json:"model,omitempty"`
	Messages    []openAIChatMessage `json:"messages"`
	Temperature float32             `json:"temperature"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Stream      bool                `json:"stream"`
}

// openAIChatMessage represents a single message in a chat request
type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIChatResponse represents a chat response from the server
type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewLocalLLMService creates a local LLM service from configuration
func NewLocalLLMService(cfg *common.LocalConfig, chatCfg *common.ChatConfig, logger arbor.ILogger) (*LocalLLMService, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}

	timeout := 2 * time.Minute
	if cfg.Timeout != "" {
		parsed, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid local timeout duration '%s': %w", cfg.Timeout, err)
		}
		timeout = parsed
	}

	service := &LocalLLMService{
		baseURL:        baseURL,
		chatModel:      cfg.ChatModel,
		embeddingModel: cfg.EmbeddingModel,
		temperature:    chatCfg.Temperature,
		maxTokens:      chatCfg.MaxTokens,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					// SECURITY: Reject any non-localhost connections
					if !isLocalhostAddr(addr) {
						return nil, fmt.Errorf("security violation: attempt to connect to non-localhost address: %s", addr)
					}
					return (&net.Dialer{}).DialContext(ctx, network, addr)
				},
			},
		},
		logger: logger,
	}

	logger.Info().
		Str("base_url", baseURL).
		Str("embedding_model", cfg.EmbeddingModel).
		Dur("timeout", timeout).
		Msg("Local LLM service initialized")

	return service, nil
}

// NewMockLocalLLMService creates a local LLM service in mock mode for testing.
// Embeddings are deterministic hashes of the input; chat echoes the last message.
func NewMockLocalLLMService(logger arbor.ILogger) *LocalLLMService {
	logger.Warn().Msg("Created local LLM service in MOCK mode - using fake responses")

	return &LocalLLMService{
		baseURL:     "",
		temperature: 0.7,
		mockMode:    true,
		logger:      logger,
	}
}

func isLocalhostAddr(addr string) bool {
	return strings.HasPrefix(addr, "127.0.0.1:") ||
		strings.HasPrefix(addr, "localhost:") ||
		strings.HasPrefix(addr, "[::1]:")
}

// Embed generates an embedding vector for the given text
func (s *LocalLLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.mockMode {
		return s.generateMockEmbedding(text), nil
	}

	reqBody := openAIEmbeddingRequest{
		Input: text,
		Model: s.embeddingModel,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/embeddings", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Embedding generation failed")
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("response", string(bodyBytes)).
			Msg("Embedding server returned error")
		return nil, fmt.Errorf("embedding server returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	embedding, err := parseEmbeddingResponse(bodyBytes)
	if err != nil {
		preview := bodyBytes
		if len(preview) > 200 {
			preview = preview[:200]
		}
		s.logger.Error().
			Err(err).
			Str("response_preview", string(preview)).
			Msg("Failed to parse embedding response")
		return nil, err
	}

	s.logger.Debug().
		Int("dimension", len(embedding)).
		Msg("Embedding generated")

	return embedding, nil
}

// parseEmbeddingResponse accepts the response shapes produced by LM Studio,
// llama-server and Ollama: OpenAI {"data":[{"embedding":[...]}]}, bare
// {"embedding":[...]} and a raw array.
func parseEmbeddingResponse(bodyBytes []byte) ([]float32, error) {
	var openAIResp openAIEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &openAIResp); err == nil && len(openAIResp.Data) > 0 && len(openAIResp.Data[0].Embedding) > 0 {
		return openAIResp.Data[0].Embedding, nil
	}

	var bareResp llamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &bareResp); err == nil && len(bareResp.Embedding) > 0 {
		return bareResp.Embedding, nil
	}

	var raw []float32
	if err := json.Unmarshal(bodyBytes, &raw); err == nil && len(raw) > 0 {
		return raw, nil
	}

	return nil, fmt.Errorf("failed to parse embedding response in any known format")
}

// Chat generates a completion response based on conversation history
func (s *LocalLLMService) Chat(ctx context.Context, messages []interfaces.Message) (string, error) {
	if s.mockMode {
		return s.generateMockResponse(messages), nil
	}

	if len(messages) == 0 {
		return "", fmt.Errorf("messages cannot be empty for chat completion")
	}

	chatMessages := make([]openAIChatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openAIChatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := openAIChatRequest{
		Model:       s.chatModel,
		Messages:    chatMessages,
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
		Stream:      false,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Msg("Chat completion failed")
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Error().
			Int("status_code", resp.StatusCode).
			Str("response", string(bodyBytes)).
			Msg("Chat server returned error")
		return "", fmt.Errorf("chat server returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chatResponse openAIChatResponse
	if err := json.Unmarshal(bodyBytes, &chatResponse); err != nil {
		return "", fmt.Errorf("failed to parse chat JSON: %w", err)
	}

	if len(chatResponse.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}

	response := chatResponse.Choices[0].Message.Content

	s.logger.Debug().
		Int("response_length", len(response)).
		Dur("duration", time.Since(startTime)).
		Msg("Chat completion generated")

	return response, nil
}

// HealthCheck verifies the local server is reachable.
// The result is cached for 60 seconds to keep request paths cheap.
func (s *LocalLLMService) HealthCheck(ctx context.Context) error {
	if s.mockMode {
		return nil
	}

	s.healthMutex.RLock()
	if time.Since(s.healthCheckTime) < 60*time.Second {
		status := s.cachedHealthStatus
		s.healthMutex.RUnlock()
		return status
	}
	s.healthMutex.RUnlock()

	status := s.performHealthCheck(ctx)

	s.healthMutex.Lock()
	s.cachedHealthStatus = status
	s.healthCheckTime = time.Now()
	s.healthMutex.Unlock()

	return status
}

func (s *LocalLLMService) performHealthCheck(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, "GET", s.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("local LLM server unreachable at %s: %w", s.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("local LLM server returned status %d", resp.StatusCode)
	}

	return nil
}

// GetMode returns the offline mode marker
func (s *LocalLLMService) GetMode() interfaces.LLMMode {
	return interfaces.LLMModeOffline
}

// Close releases resources
func (s *LocalLLMService) Close() error {
	s.client = nil
	return nil
}

// generateMockEmbedding returns a deterministic vector derived from the text
// so similarity ordering is stable across test runs
func (s *LocalLLMService) generateMockEmbedding(text string) []float32 {
	const dim = 64

	embedding := make([]float32, dim)
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	for i := range embedding {
		seed = seed*1664525 + 1013904223
		embedding[i] = float32(seed%2000)/1000.0 - 1.0
	}

	return embedding
}

// generateMockResponse echoes the last user message
func (s *LocalLLMService) generateMockResponse(messages []interfaces.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return "Mock response to: " + messages[i].Content
		}
	}
	return "Mock response"
}
