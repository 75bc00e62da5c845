package common

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	LLM         LLMConfig        `toml:"llm"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Embeddings  EmbeddingsConfig `toml:"embeddings"`
	Documents   DocumentsConfig  `toml:"documents"`
	Corpus      CorpusConfig     `toml:"corpus"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	Classifier  ClassifierConfig `toml:"classifier"`
	Chat        ChatConfig       `toml:"chat"`
	Ingest      IngestConfig     `toml:"ingest"`
	WebSocket   WebSocketConfig  `toml:"websocket"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean runs
	InMemory       bool   `toml:"in_memory"`        // Keep everything in memory (tests, one-shot CLI runs)
	SyncWrites     bool   `toml:"sync_writes"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
	FileName   string   `toml:"file_name"`   // Log file name inside ./logs (default: "onboard.log")
}

// LLMProvider represents the chat provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig holds settings shared by every chat provider
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "gemini" or "claude"
	Timeout         string      `toml:"timeout"`          // Per-call timeout; a call that exceeds it fails
	MaxRetries      int         `toml:"max_retries"`      // Provider-level retries on rate limit (0 = none)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	RateLimit   string  `toml:"rate_limit"` // Minimum spacing between calls, e.g. "1s"
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration for chat and embeddings
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// EmbeddingProvider selects how dense vectors are produced
type EmbeddingProvider string

const (
	// EmbeddingProviderGemini calls the Gemini embedding endpoint
	EmbeddingProviderGemini EmbeddingProvider = "gemini"
	// EmbeddingProviderLocal uses the offline hashed bag-of-words embedder
	EmbeddingProviderLocal EmbeddingProvider = "local"
)

type EmbeddingsConfig struct {
	Provider  EmbeddingProvider `toml:"provider"`
	Model     string            `toml:"model"`
	Dimension int               `toml:"dimension"`
	BatchSize int               `toml:"batch_size"` // Texts per embedding request during index build
	Cache     bool              `toml:"cache"`      // Persist document embeddings in badger keyed by content hash
}

// DocumentsConfig controls the directory document source
type DocumentsConfig struct {
	Dir          string   `toml:"dir"`
	Extensions   []string `toml:"extensions"`
	ChunkSize    int      `toml:"chunk_size"`
	ChunkOverlap int      `toml:"chunk_overlap"`
	MaxFileSize  int64    `toml:"max_file_size"`
}

// CollisionPolicy decides what happens when two sources normalize to one identifier
type CollisionPolicy string

const (
	CollisionFail   CollisionPolicy = "fail"
	CollisionSuffix CollisionPolicy = "suffix"
)

type CorpusConfig struct {
	Stopwords       []string        `toml:"stopwords"`
	MaxDF           float64         `toml:"max_df"` // Drop terms present in more than this fraction of documents
	MinDF           float64         `toml:"min_df"` // Drop terms present in fewer than this fraction of documents
	CollisionPolicy CollisionPolicy `toml:"collision_policy"`
	BuildTimeout    string          `toml:"build_timeout"`
}

type RetrievalConfig struct {
	FuzzyTopK         int     `toml:"fuzzy_top_k"`
	FuzzyShortCircuit float64 `toml:"fuzzy_short_circuit"` // 0-100
	TFIDFThreshold    float64 `toml:"tfidf_threshold"`
	SemanticThreshold float64 `toml:"semantic_threshold"`
	TFIDFWeight       float64 `toml:"tfidf_weight"`
	FuzzyWeight       float64 `toml:"fuzzy_weight"`
	SemanticWeight    float64 `toml:"semantic_weight"`
	MinFusedScore     float64 `toml:"min_fused_score"` // 0 disables the floor
	ParallelPasses    bool    `toml:"parallel_passes"`
}

type ClassifierConfig struct {
	FallbackIntent string `toml:"fallback_intent"` // Label used when classification fails
}

type ChatConfig struct {
	HistoryTurns       int    `toml:"history_turns"`
	ComposeAnswers     bool   `toml:"compose_answers"` // false returns matched document text verbatim
	MaxGroundingChars  int    `toml:"max_grounding_chars"`
	DefaultTopic       string `toml:"default_topic"`
	SessionIdleTimeout string `toml:"session_idle_timeout"`
}

type IngestConfig struct {
	OnStartup bool   `toml:"on_startup"`
	Schedule  string `toml:"schedule"` // Cron schedule (6 fields with seconds); empty disables
	Watch     bool   `toml:"watch"`    // Re-ingest when files change under documents.dir
	Debounce  string `toml:"debounce"`
}

type WebSocketConfig struct {
	ReadLimit    int64  `toml:"read_limit"`
	WriteTimeout string `toml:"write_timeout"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
			FileName:   "onboard.log",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
			Timeout:         "30s", // Model calls fail rather than hang
			MaxRetries:      0,     // Callers decide whether to retry
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   1024,
			RateLimit:   "1s",
			Temperature: 0.3,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			RateLimit:   "4s", // 15 RPM free tier
			Temperature: 0.3,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  EmbeddingProviderGemini,
			Model:     "gemini-embedding-001",
			Dimension: 768,
			BatchSize: 32,
			Cache:     true,
		},
		Documents: DocumentsConfig{
			Dir:          "./documents",
			Extensions:   []string{".md", ".markdown", ".txt", ".html", ".htm", ".pdf", ".docx"},
			ChunkSize:    600,
			ChunkOverlap: 50,
			MaxFileSize:  20 * 1024 * 1024, // 20 MB
		},
		Corpus: CorpusConfig{
			Stopwords:       []string{"vp", "manager", "director", "role", "responsibilities"},
			MaxDF:           0.6,
			MinDF:           0.05,
			CollisionPolicy: CollisionFail,
			BuildTimeout:    "5m",
		},
		Retrieval: RetrievalConfig{
			FuzzyTopK:         5,
			FuzzyShortCircuit: 85,
			TFIDFThreshold:    0.30,
			SemanticThreshold: 0.30,
			TFIDFWeight:       0.15,
			FuzzyWeight:       0.15,
			SemanticWeight:    0.70,
			MinFusedScore:     0,
			ParallelPasses:    true,
		},
		Classifier: ClassifierConfig{
			FallbackIntent: "general",
		},
		Chat: ChatConfig{
			HistoryTurns:       3,
			ComposeAnswers:     true,
			MaxGroundingChars:  6000,
			DefaultTopic:       "company_policies",
			SessionIdleTimeout: "30m",
		},
		Ingest: IngestConfig{
			OnStartup: true,
			Schedule:  "", // Disabled by default
			Watch:     false,
			Debounce:  "2s",
		},
		WebSocket: WebSocketConfig{
			ReadLimit:    64 * 1024,
			WriteTimeout: "10s",
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

// LoadFromFiles loads configuration from multiple files with priority: default -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
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
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ONBOARD_ENV"); env != "" {
		config.Environment = env
	}

	// Server
	if port := os.Getenv("ONBOARD_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ONBOARD_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage
	if path := os.Getenv("ONBOARD_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if inMemory := os.Getenv("ONBOARD_BADGER_IN_MEMORY"); inMemory != "" {
		if b, err := strconv.ParseBool(inMemory); err == nil {
			config.Storage.Badger.InMemory = b
		}
	}

	// Logging
	if level := os.Getenv("ONBOARD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("ONBOARD_LOG_OUTPUT"); output != "" {
		if outputs := splitList(output); len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// LLM
	if provider := os.Getenv("ONBOARD_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}
	if timeout := os.Getenv("ONBOARD_LLM_TIMEOUT"); timeout != "" {
		config.LLM.Timeout = timeout
	}

	// Claude (ONBOARD_ prefix takes priority over the SDK variable)
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("ONBOARD_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if model := os.Getenv("ONBOARD_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}

	// Gemini
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("ONBOARD_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("ONBOARD_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// Embeddings
	if provider := os.Getenv("ONBOARD_EMBEDDINGS_PROVIDER"); provider != "" {
		config.Embeddings.Provider = EmbeddingProvider(provider)
	}
	if dim := os.Getenv("ONBOARD_EMBEDDINGS_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Embeddings.Dimension = d
		}
	}

	// Documents
	if dir := os.Getenv("ONBOARD_DOCUMENTS_DIR"); dir != "" {
		config.Documents.Dir = dir
	}

	// Corpus
	if stopwords := os.Getenv("ONBOARD_CORPUS_STOPWORDS"); stopwords != "" {
		config.Corpus.Stopwords = splitList(stopwords)
	}
	if policy := os.Getenv("ONBOARD_CORPUS_COLLISION_POLICY"); policy != "" {
		config.Corpus.CollisionPolicy = CollisionPolicy(policy)
	}

	// Retrieval weights
	if w := os.Getenv("ONBOARD_RETRIEVAL_SEMANTIC_WEIGHT"); w != "" {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			config.Retrieval.SemanticWeight = f
		}
	}
	if w := os.Getenv("ONBOARD_RETRIEVAL_TFIDF_WEIGHT"); w != "" {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			config.Retrieval.TFIDFWeight = f
		}
	}
	if w := os.Getenv("ONBOARD_RETRIEVAL_FUZZY_WEIGHT"); w != "" {
		if f, err := strconv.ParseFloat(w, 64); err == nil {
			config.Retrieval.FuzzyWeight = f
		}
	}

	// Chat
	if turns := os.Getenv("ONBOARD_CHAT_HISTORY_TURNS"); turns != "" {
		if n, err := strconv.Atoi(turns); err == nil {
			config.Chat.HistoryTurns = n
		}
	}

	// Ingest
	if schedule := os.Getenv("ONBOARD_INGEST_SCHEDULE"); schedule != "" {
		config.Ingest.Schedule = schedule
	}
	if watch := os.Getenv("ONBOARD_INGEST_WATCH"); watch != "" {
		if b, err := strconv.ParseBool(watch); err == nil {
			config.Ingest.Watch = b
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string, docsDir string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
	if docsDir != "" {
		config.Documents.Dir = docsDir
	}
}

// Validate checks value ranges that would otherwise surface as confusing runtime behaviour
func (c *Config) Validate() error {
	r := c.Retrieval
	for name, w := range map[string]float64{
		"retrieval.tfidf_weight":    r.TFIDFWeight,
		"retrieval.fuzzy_weight":    r.FuzzyWeight,
		"retrieval.semantic_weight": r.SemanticWeight,
	} {
		if w < 0 || math.IsNaN(w) {
			return fmt.Errorf("%s must be >= 0, got %v", name, w)
		}
	}
	if r.TFIDFWeight+r.FuzzyWeight+r.SemanticWeight == 0 {
		return fmt.Errorf("retrieval weights cannot all be zero")
	}
	if r.FuzzyShortCircuit < 0 || r.FuzzyShortCircuit > 100 {
		return fmt.Errorf("retrieval.fuzzy_short_circuit must be within 0-100, got %v", r.FuzzyShortCircuit)
	}
	if r.FuzzyTopK <= 0 {
		return fmt.Errorf("retrieval.fuzzy_top_k must be positive, got %d", r.FuzzyTopK)
	}

	if c.Corpus.MinDF < 0 || c.Corpus.MaxDF > 1 || c.Corpus.MinDF > c.Corpus.MaxDF {
		return fmt.Errorf("corpus document-frequency bounds invalid: min_df=%v max_df=%v", c.Corpus.MinDF, c.Corpus.MaxDF)
	}
	switch c.Corpus.CollisionPolicy {
	case CollisionFail, CollisionSuffix:
	default:
		return fmt.Errorf("corpus.collision_policy must be %q or %q, got %q", CollisionFail, CollisionSuffix, c.Corpus.CollisionPolicy)
	}

	switch c.Embeddings.Provider {
	case EmbeddingProviderGemini, EmbeddingProviderLocal:
	default:
		return fmt.Errorf("embeddings.provider must be %q or %q, got %q", EmbeddingProviderGemini, EmbeddingProviderLocal, c.Embeddings.Provider)
	}
	if c.Embeddings.Dimension <= 0 {
		return fmt.Errorf("embeddings.dimension must be positive, got %d", c.Embeddings.Dimension)
	}

	if c.Chat.HistoryTurns < 0 {
		return fmt.Errorf("chat.history_turns must be >= 0, got %d", c.Chat.HistoryTurns)
	}
	if c.Documents.ChunkSize <= 0 || c.Documents.ChunkOverlap < 0 || c.Documents.ChunkOverlap >= c.Documents.ChunkSize {
		return fmt.Errorf("documents chunking invalid: chunk_size=%d chunk_overlap=%d", c.Documents.ChunkSize, c.Documents.ChunkOverlap)
	}

	if c.Ingest.Schedule != "" {
		if err := ValidateSchedule(c.Ingest.Schedule); err != nil {
			return fmt.Errorf("ingest.schedule: %w", err)
		}
	}

	for name, d := range map[string]string{
		"llm.timeout":               c.LLM.Timeout,
		"corpus.build_timeout":      c.Corpus.BuildTimeout,
		"chat.session_idle_timeout": c.Chat.SessionIdleTimeout,
		"ingest.debounce":           c.Ingest.Debounce,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", name, d, err)
		}
	}

	return nil
}

// ValidateSchedule validates a cron expression in the 6-field (seconds) format used by the ingest scheduler
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ParseDuration parses s, returning fallback when s is empty or malformed
func ParseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// splitList splits a comma-separated env value, dropping blanks
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
