package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/tatianab/narrative-engine/internal/chat"
	"github.com/tatianab/narrative-engine/internal/logging"
	"github.com/tatianab/narrative-engine/internal/storage"
)

// Config holds the application configuration.
type Config struct {
	ChatProvider  string        `envconfig:"CHAT_PROVIDER" default:"gemini"`
	ChatModel     string        `envconfig:"CHAT_MODEL"`
	ChatTimeout   time.Duration `envconfig:"CHAT_TIMEOUT" default:"120s"`
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL"`
	OllamaURL     string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`

	StoreBackend  string `envconfig:"STORE_BACKEND" default:"file"`
	SaveDir       string `envconfig:"SAVE_DIR" default:".saves"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:".saves/saves.db"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	SaveKey       string `envconfig:"SAVE_KEY" default:"narrative-save-v1"`

	WorldFile  string `envconfig:"WORLD_FILE"`
	ShareToken string `envconfig:"SHARE_TOKEN"`
	ShareBase  string `envconfig:"SHARE_BASE_URL" default:"https://example.com/play"`

	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	LogFile     string `envconfig:"LOG_FILE" default:"game.log"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// LoadConfig reads .env if present, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected provider can be reached.
func (c *Config) Validate() error {
	switch c.ChatProvider {
	case chat.ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
	case chat.ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
	case chat.ProviderOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("OLLAMA_URL environment variable is not set")
		}
	default:
		return fmt.Errorf("unknown CHAT_PROVIDER %q", c.ChatProvider)
	}
	return nil
}

func (c *Config) Chat() chat.Settings {
	return chat.Settings{
		Provider:      c.ChatProvider,
		Model:         c.ChatModel,
		GeminiAPIKey:  c.GeminiAPIKey,
		OpenAIAPIKey:  c.OpenAIAPIKey,
		OpenAIBaseURL: c.OpenAIBaseURL,
		OllamaURL:     c.OllamaURL,
		Timeout:       c.ChatTimeout,
	}
}

func (c *Config) Storage() storage.Settings {
	return storage.Settings{
		Backend:       c.StoreBackend,
		Dir:           c.SaveDir,
		SQLitePath:    c.SQLitePath,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
	}
}

func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Encoding:   c.LogEncoding,
		OutputPath: c.LogFile,
	}
}
