package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Ingest      IngestConfig  `toml:"ingest"`
	Index       IndexConfig   `toml:"index"`
	Claude      ClaudeConfig  `toml:"claude"`
	Gemini      GeminiConfig  `toml:"gemini"`
	LLM         LLMConfig     `toml:"llm"`
	Filings     FilingsConfig `toml:"filings"`
	Summary     SummaryConfig `toml:"summary"`
	Market      MarketConfig  `toml:"market"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Format string   `toml:"format"`                                      // "json" or "text"
	Output []string `toml:"output"`                                      // "stdout", "file"
}

// IngestConfig controls the document ingestion pipeline
type IngestConfig struct {
	WatchDir       string        `toml:"watch_dir" validate:"required"` // Directory of *.pdf source documents
	ChunkSize      int           `toml:"chunk_size" validate:"min=1"`   // Chunk threshold in characters
	BatchSize      int           `toml:"batch_size" validate:"min=1"`   // Chunks per index add call
	BatchPause     time.Duration `toml:"batch_pause"`                   // Pause between batch inserts
	ContextResults int           `toml:"context_results" validate:"min=1"`
}

// IndexConfig configures the vector index store
type IndexConfig struct {
	Mode       string        `toml:"mode" validate:"oneof=chroma memory"` // "chroma" or "memory"
	URL        string        `toml:"url"`                                 // Chroma server base URL
	Collection string        `toml:"collection" validate:"required"`      // Collection name
	Timeout    time.Duration `toml:"timeout"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model name (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 1000)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"` // Model name (default: "gemini-2.5-flash")
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains unified configuration for all AI providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=claude gemini"`
}

// FilingsConfig configures SEC filing discovery and download
type FilingsConfig struct {
	APIURL          string `toml:"api_url"`          // SEC search API endpoint
	APIKey          string `toml:"api_key"`          // SEC API token
	PDFReaderURL    string `toml:"pdf_reader_url"`   // Filing-to-PDF conversion endpoint
	ConstituentsCSV string `toml:"constituents_csv"` // CSV of tickers to fetch (Symbol column)
	SaveDir         string `toml:"save_dir"`         // Root directory for downloaded PDFs
}

// SummaryConfig configures filing summarization
type SummaryConfig struct {
	CacheTTL     time.Duration `toml:"cache_ttl"`      // Summary cache lifetime (default: 168h)
	MaxPromptLen int           `toml:"max_prompt_len"` // Cap on assembled prompt characters
}

// MarketConfig configures the Polygon market data integration
type MarketConfig struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	WebSocketURL string `toml:"websocket_url"`
	RateLimit    int    `toml:"rate_limit"` // Requests per second to the REST API
	Enabled      bool   `toml:"enabled"`
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability;
// only user-facing settings should be exposed in quaestor.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Ingest: IngestConfig{
			WatchDir:       "./edgar_files",
			ChunkSize:      1000,
			BatchSize:      20,
			BatchPause:     100 * time.Millisecond,
			ContextResults: 8,
		},
		Index: IndexConfig{
			Mode:       "chroma",
			URL:        "http://localhost:8000",
			Collection: "edgar_documents",
			Timeout:    30 * time.Second,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   1000,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			MaxTokens:   1000,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Filings: FilingsConfig{
			APIURL:          "https://api.sec-api.io",
			PDFReaderURL:    "https://api.sec-api.io/filing-reader",
			ConstituentsCSV: "./constituents.csv",
			SaveDir:         "./sec_filings",
		},
		Summary: SummaryConfig{
			CacheTTL:     7 * 24 * time.Hour,
			MaxPromptLen: 12000,
		},
		Market: MarketConfig{
			BaseURL:      "https://api.polygon.io/v2/aggs/ticker",
			WebSocketURL: "wss://socket.polygon.io/stocks",
			RateLimit:    5,
			Enabled:      false,
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files; later files
// override earlier files, environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against struct-level constraints
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("QUAESTOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("QUAESTOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("QUAESTOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("QUAESTOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("QUAESTOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("QUAESTOR_LOG_OUTPUT"); output != "" {
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

	if dir := os.Getenv("QUAESTOR_WATCH_DIR"); dir != "" {
		config.Ingest.WatchDir = dir
	}

	if url := os.Getenv("QUAESTOR_INDEX_URL"); url != "" {
		config.Index.URL = url
	}
	if collection := os.Getenv("QUAESTOR_INDEX_COLLECTION"); collection != "" {
		config.Index.Collection = collection
	}
	if mode := os.Getenv("QUAESTOR_INDEX_MODE"); mode != "" {
		config.Index.Mode = mode
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("QUAESTOR_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if provider := os.Getenv("QUAESTOR_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	if key := os.Getenv("SEC_API_KEY"); key != "" {
		config.Filings.APIKey = key
	}
	if url := os.Getenv("SEC_API_URL"); url != "" {
		config.Filings.APIURL = url
	}

	if key := os.Getenv("POLYGON_API_KEY"); key != "" {
		config.Market.APIKey = key
	}
}
