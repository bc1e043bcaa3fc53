package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application, loaded once at
// worker/server startup and passed down explicitly rather than read
// from globals.
type Config struct {
	Database  DatabaseConfig
	Content   ContentStoreConfig
	Whisper   WhisperConfig
	Chunking  ChunkingConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Activity  ActivityConfig
	Temporal  TemporalConfig
	Server    ServerConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type ContentStoreConfig struct {
	UploadDir   string
	MaxFileSize int64
}

type WhisperConfig struct {
	ModelSize string
	ModelDir  string
}

type ChunkingConfig struct {
	Enabled       bool
	Strategy      string // llm | sentence | single
	MinTokens     int
	MaxTokens     int
	OverlapTokens int
}

type LLMConfig struct {
	BaseURL        string
	Model          string
	Timeout        time.Duration
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	MaxRetries     int
}

// EmbeddingConfig drives C6's encoder, which always produces a fixed
// 384-dim output. It shares LLM.BaseURL's endpoint by default since
// most OpenAI-compatible local servers (Ollama, vLLM, text-embeddings-
// inference) expose embeddings alongside chat completions.
type EmbeddingConfig struct {
	Model            string
	Dimensions       int
	MaxCharsPerChunk int
}

type ActivityConfig struct {
	HeartbeatInterval time.Duration
	HeartbeatTimeout  time.Duration
}

type TemporalConfig struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

type ServerConfig struct {
	Port string
	Env  string
}

// Load loads configuration from environment variables, overlaying
// whatever a local .env provides (godotenv.Load is a no-op if no file
// is present).
func Load() (*Config, error) {
	godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "ingestpipe"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Content: ContentStoreConfig{
			UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
			MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 1<<30),
		},
		Whisper: WhisperConfig{
			ModelSize: getEnv("WHISPER_MODEL_SIZE", "base"),
			ModelDir:  getEnv("WHISPER_MODEL_DIR", "models"),
		},
		Chunking: ChunkingConfig{
			Enabled:       getEnvBool("ENABLE_SEMANTIC_CHUNKING", true),
			Strategy:      getEnv("CHUNKING_STRATEGY", "llm"),
			MinTokens:     getEnvInt("CHUNK_MIN_TOKENS", 100),
			MaxTokens:     getEnvInt("CHUNK_MAX_TOKENS", 400),
			OverlapTokens: getEnvInt("CHUNK_OVERLAP_TOKENS", 20),
		},
		LLM: LLMConfig{
			BaseURL:        getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
			Model:          getEnv("LLM_MODEL", "llama3.1"),
			Timeout:        getEnvDuration("LLM_TIMEOUT", 60*time.Second),
			ConnectTimeout: getEnvDuration("LLM_CONNECT_TIMEOUT", 5*time.Second),
			ReadTimeout:    getEnvDuration("LLM_READ_TIMEOUT", 10*time.Second),
			MaxRetries:     getEnvInt("LLM_MAX_RETRIES", 3),
		},
		Embedding: EmbeddingConfig{
			Model:            getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
			Dimensions:       getEnvInt("EMBEDDING_DIMENSIONS", 384),
			MaxCharsPerChunk: getEnvInt("EMBEDDING_MAX_CHARS", 5000),
		},
		Activity: ActivityConfig{
			HeartbeatInterval: getEnvDuration("ACTIVITY_HEARTBEAT_INTERVAL", 5*time.Second),
			HeartbeatTimeout:  getEnvDuration("ACTIVITY_HEARTBEAT_TIMEOUT", 5*time.Minute),
		},
		Temporal: TemporalConfig{
			HostPort:  getEnv("TEMPORAL_HOST_PORT", "localhost:7233"),
			Namespace: getEnv("TEMPORAL_NAMESPACE", "default"),
			TaskQueue: getEnv("TEMPORAL_TASK_QUEUE", "ingestpipe-pipeline"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("APP_ENV", "development"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return time.Duration(parsed) * time.Second
		}
	}
	return defaultValue
}
