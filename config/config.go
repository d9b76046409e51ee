package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Redis     RedisConfig     `yaml:"redis"`
	Chroma    ChromaConfig    `yaml:"chroma"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadMB     int64         `yaml:"max_upload_mb"`
	PresetsFile     string        `yaml:"presets_file"`
}

type StorageConfig struct {
	BaseDir      string `yaml:"base_dir"`
	TempDir      string `yaml:"temp_dir"`
	IndexBackend string `yaml:"index_backend"` // "local" or "chroma"
}

type IngestionConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	BatchSize    int `yaml:"batch_size"`
	LoadWorkers  int `yaml:"load_workers"`
	RetrievalK   int `yaml:"retrieval_k"`
}

type EmbeddingConfig struct {
	Model        string `yaml:"model"` // "hash" or "gemini:<model>"
	Dimension    int    `yaml:"dimension"`
	GeminiAPIKey string `yaml:"-"`
}

type LLMConfig struct {
	Timeout          time.Duration `yaml:"timeout"`
	DeepSeekBaseURL  string        `yaml:"deepseek_base_url"`
	DeepSeekModel    string        `yaml:"deepseek_model"`
	OpenAIBaseURL    string        `yaml:"openai_base_url"`
	OpenAIModel      string        `yaml:"openai_model"`
	GeminiModel      string        `yaml:"gemini_model"`
	RequestsPerMin   int           `yaml:"requests_per_minute"`
	BreakerThreshold uint32        `yaml:"breaker_threshold"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type ChromaConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Tenant   string        `yaml:"tenant"`
	Database string        `yaml:"database"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	DuplicateWindow time.Duration `yaml:"duplicate_window"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Debug bool   `yaml:"debug"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadMB:     200,
		},
		Storage: StorageConfig{
			BaseDir:      "chroma_dbs",
			TempDir:      os.TempDir(),
			IndexBackend: "local",
		},
		Ingestion: IngestionConfig{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			BatchSize:    30,
			LoadWorkers:  4,
			RetrievalK:   3,
		},
		Embedding: EmbeddingConfig{
			Model:     "hash",
			Dimension: 384,
		},
		LLM: LLMConfig{
			Timeout:          60 * time.Second,
			DeepSeekBaseURL:  "https://api.deepseek.com",
			DeepSeekModel:    "deepseek-chat",
			OpenAIBaseURL:    "https://api.openai.com/v1",
			OpenAIModel:      "gpt-3.5-turbo",
			GeminiModel:      "gemini-pro",
			RequestsPerMin:   60,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     "localhost",
			Port:     6379,
			PoolSize: 10,
		},
		Chroma: ChromaConfig{
			Host:     "localhost",
			Port:     8001,
			Tenant:   "default_tenant",
			Database: "default_database",
			Timeout:  30 * time.Second,
		},
		Session: SessionConfig{
			DuplicateWindow: 3 * time.Second,
			IdleTimeout:     2 * time.Hour,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional .env file,
// an optional YAML file (CONFIG_FILE) and finally environment variables.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("BACKEND_PORT", c.Server.Port)
	c.Server.MaxUploadMB = int64(getEnvInt("MAX_UPLOAD_MB", int(c.Server.MaxUploadMB)))
	c.Server.PresetsFile = getEnv("PRESETS_FILE", c.Server.PresetsFile)

	c.Storage.BaseDir = getEnv("CHROMA_BASE_DIR", c.Storage.BaseDir)
	c.Storage.TempDir = getEnv("INGEST_TEMP_DIR", c.Storage.TempDir)
	c.Storage.IndexBackend = strings.ToLower(getEnv("INDEX_BACKEND", c.Storage.IndexBackend))

	c.Ingestion.ChunkSize = getEnvInt("CHUNK_SIZE", c.Ingestion.ChunkSize)
	c.Ingestion.ChunkOverlap = getEnvInt("CHUNK_OVERLAP", c.Ingestion.ChunkOverlap)
	c.Ingestion.BatchSize = getEnvInt("EMBED_BATCH_SIZE", c.Ingestion.BatchSize)
	c.Ingestion.RetrievalK = getEnvInt("RETRIEVAL_K", c.Ingestion.RetrievalK)

	c.Embedding.Model = getEnv("EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.Dimension = getEnvInt("EMBEDDING_DIMENSION", c.Embedding.Dimension)
	c.Embedding.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.Embedding.GeminiAPIKey)

	c.LLM.Timeout = getEnvDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.DeepSeekBaseURL = getEnv("DEEPSEEK_BASE_URL", c.LLM.DeepSeekBaseURL)
	c.LLM.DeepSeekModel = getEnv("DEEPSEEK_MODEL", c.LLM.DeepSeekModel)
	c.LLM.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.LLM.OpenAIBaseURL)
	c.LLM.OpenAIModel = getEnv("OPENAI_MODEL", c.LLM.OpenAIModel)
	c.LLM.GeminiModel = getEnv("GEMINI_MODEL", c.LLM.GeminiModel)
	c.LLM.RequestsPerMin = getEnvInt("LLM_REQUESTS_PER_MINUTE", c.LLM.RequestsPerMin)

	c.Redis.Enabled = getEnvBool("REDIS_ENABLED", c.Redis.Enabled)
	c.Redis.Host = getEnv("REDIS_HOST", c.Redis.Host)
	c.Redis.Port = getEnvInt("REDIS_PORT", c.Redis.Port)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvInt("REDIS_DB", c.Redis.DB)
	c.Redis.PoolSize = getEnvInt("REDIS_POOL_SIZE", c.Redis.PoolSize)

	c.Chroma.Host = getEnv("CHROMA_HOST", c.Chroma.Host)
	c.Chroma.Port = getEnvInt("CHROMA_PORT", c.Chroma.Port)
	c.Chroma.Tenant = getEnv("CHROMA_TENANT", c.Chroma.Tenant)
	c.Chroma.Database = getEnv("CHROMA_DATABASE", c.Chroma.Database)

	c.Session.DuplicateWindow = getEnvDuration("DUPLICATE_WINDOW", c.Session.DuplicateWindow)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Debug = getEnvBool("DEBUG_MODE", c.Logging.Debug)
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	if c.Ingestion.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.Ingestion.ChunkSize)
	}
	if c.Ingestion.ChunkOverlap < 0 || c.Ingestion.ChunkOverlap >= c.Ingestion.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.Ingestion.ChunkSize, c.Ingestion.ChunkOverlap)
	}
	if c.Ingestion.BatchSize <= 0 {
		return fmt.Errorf("embedding batch size must be positive, got %d", c.Ingestion.BatchSize)
	}
	switch c.Storage.IndexBackend {
	case "local", "chroma":
	default:
		return fmt.Errorf("unknown index backend %q", c.Storage.IndexBackend)
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base dir is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
