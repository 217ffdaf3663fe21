package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string            `toml:"environment"` // "development" or "production"
	Server      ServerConfig      `toml:"server"`
	Storage     StorageConfig     `toml:"storage"`
	Logging     LoggingConfig     `toml:"logging"`
	Chunking    ChunkingConfig    `toml:"chunking"`
	Retrieval   RetrievalConfig   `toml:"retrieval"`
	Chat        ChatConfig        `toml:"chat"`
	LLM         LLMConfig         `toml:"llm"`
	Local       LocalConfig       `toml:"local"`
	Claude      ClaudeConfig      `toml:"claude"`
	Gemini      GeminiConfig      `toml:"gemini"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	DataDir string       `toml:"data_dir" validate:"required"` // Root for per-folder uploads and vector stores
	Badger  BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// ChunkingConfig controls how extracted text is split before embedding
type ChunkingConfig struct {
	Size    int `toml:"size" validate:"gt=0"`     // Target chunk size in characters
	Overlap int `toml:"overlap" validate:"gte=0"` // Overlap carried between consecutive chunks
}

// RetrievalConfig controls similarity search behavior
type RetrievalConfig struct {
	TopK int `toml:"top_k" validate:"gt=0"` // Number of chunks retrieved per question
}

// ChatConfig controls chat completion behavior
type ChatConfig struct {
	RequireIndex bool    `toml:"require_index"` // Reject questions for folders with no indexed documents
	MaxTokens    int     `toml:"max_tokens"`    // Maximum tokens in a completion (default: 2048)
	Temperature  float32 `toml:"temperature"`   // Completion temperature (default: 0.7)
	HistoryTTL   string  `toml:"history_ttl"`   // Retention for idle chat sessions, duration string (default: "720h")
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderLocal uses an OpenAI-compatible server on the local network
	LLMProviderLocal LLMProvider = "local"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "local", "claude" or "gemini" (default: "local")
}

// LocalConfig contains configuration for an OpenAI-compatible local server
// (LM Studio, llama.cpp server, Ollama). Embeddings always come from here.
type LocalConfig struct {
	BaseURL        string `toml:"base_url"`        // Server base URL (default: "http://localhost:1234")
	ChatModel      string `toml:"chat_model"`      // Chat model name, empty uses server default
	EmbeddingModel string `toml:"embedding_model"` // Embedding model name (default: "nomic-embed-text-v1.5")
	Timeout        string `toml:"timeout"`         // Request timeout as duration string (default: "2m")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for chat completions (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit"`  // Minimum spacing between requests (default: "1s")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for chat completions (default: "gemini-3-flash-preview")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "5m")
	RateLimit   string  `toml:"rate_limit"`  // Minimum spacing between requests (default: "4s" for 15 RPM)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// MaintenanceConfig controls the background maintenance schedule
type MaintenanceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // Cron schedule with seconds field (default: every 6 hours)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
// Only user-facing settings should be exposed in doctrina.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			DataDir: "./data/folders",
			Badger: BadgerConfig{
				Path: "./data/db",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Chunking: ChunkingConfig{
			Size:    1000,
			Overlap: 200,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Chat: ChatConfig{
			RequireIndex: false,
			MaxTokens:    2048,
			Temperature:  0.7,
			HistoryTTL:   "720h", // 30 days
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderLocal,
		},
		Local: LocalConfig{
			BaseURL:        "http://localhost:1234",
			EmbeddingModel: "nomic-embed-text-v1.5",
			Timeout:        "2m",
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-3-flash-preview",
			Timeout:     "5m",
			RateLimit:   "4s",
			Temperature: 0.7,
		},
		Maintenance: MaintenanceConfig{
			Enabled:  true,
			Schedule: "0 0 */6 * * *", // Every 6 hours
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env -> CLI
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.LLM.DefaultProvider {
	case LLMProviderLocal, LLMProviderClaude, LLMProviderGemini:
	default:
		return fmt.Errorf("invalid llm.default_provider %q: must be local, claude or gemini", c.LLM.DefaultProvider)
	}

	if c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap (%d) must be smaller than chunking.size (%d)", c.Chunking.Overlap, c.Chunking.Size)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DOCTRINA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("DOCTRINA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("DOCTRINA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if dataDir := os.Getenv("DOCTRINA_DATA_DIR"); dataDir != "" {
		config.Storage.DataDir = dataDir
	}
	if badgerPath := os.Getenv("DOCTRINA_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("DOCTRINA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("DOCTRINA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("DOCTRINA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Chunking configuration
	if size := os.Getenv("DOCTRINA_CHUNK_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			config.Chunking.Size = s
		}
	}
	if overlap := os.Getenv("DOCTRINA_CHUNK_OVERLAP"); overlap != "" {
		if o, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = o
		}
	}

	// Retrieval configuration
	if topK := os.Getenv("DOCTRINA_RETRIEVAL_TOP_K"); topK != "" {
		if k, err := strconv.Atoi(topK); err == nil {
			config.Retrieval.TopK = k
		}
	}

	// Chat configuration
	if requireIndex := os.Getenv("DOCTRINA_CHAT_REQUIRE_INDEX"); requireIndex != "" {
		if ri, err := strconv.ParseBool(requireIndex); err == nil {
			config.Chat.RequireIndex = ri
		}
	}
	if maxTokens := os.Getenv("DOCTRINA_CHAT_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Chat.MaxTokens = mt
		}
	}
	if temperature := os.Getenv("DOCTRINA_CHAT_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Chat.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("DOCTRINA_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Local server configuration
	if baseURL := os.Getenv("DOCTRINA_LOCAL_BASE_URL"); baseURL != "" {
		config.Local.BaseURL = baseURL
	}
	if chatModel := os.Getenv("DOCTRINA_LOCAL_CHAT_MODEL"); chatModel != "" {
		config.Local.ChatModel = chatModel
	}
	if embeddingModel := os.Getenv("DOCTRINA_LOCAL_EMBEDDING_MODEL"); embeddingModel != "" {
		config.Local.EmbeddingModel = embeddingModel
	}
	if timeout := os.Getenv("DOCTRINA_LOCAL_TIMEOUT"); timeout != "" {
		config.Local.Timeout = timeout
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("DOCTRINA_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // DOCTRINA_ prefix takes priority
	}
	if model := os.Getenv("DOCTRINA_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("DOCTRINA_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("DOCTRINA_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if rateLimit := os.Getenv("DOCTRINA_CLAUDE_RATE_LIMIT"); rateLimit != "" {
		config.Claude.RateLimit = rateLimit
	}

	// Gemini configuration
	if apiKey := os.Getenv("DOCTRINA_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("DOCTRINA_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("DOCTRINA_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if rateLimit := os.Getenv("DOCTRINA_GEMINI_RATE_LIMIT"); rateLimit != "" {
		config.Gemini.RateLimit = rateLimit
	}

	// Maintenance configuration
	if enabled := os.Getenv("DOCTRINA_MAINTENANCE_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Maintenance.Enabled = e
		}
	}
	if schedule := os.Getenv("DOCTRINA_MAINTENANCE_SCHEDULE"); schedule != "" {
		config.Maintenance.Schedule = schedule
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
