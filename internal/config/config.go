package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LLM provider identifiers.
const (
	ProviderGoogleAI = "googleai"
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Generation
	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	OpenAIAPIKey string
	OllamaHost   string

	// Upstream proxy
	ProxyOrigin          string
	DefaultClientVersion string

	// HTTP server
	ListenAddr string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "cardforge"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "main"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:  getEnv("CARDFORGE_LLM_PROVIDER", ProviderGoogleAI),
		LLMModel:     getEnv("CARDFORGE_LLM_MODEL", "gemini-1.5-flash"),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),

		ProxyOrigin:          getEnv("CARDFORGE_PROXY_ORIGIN", "https://generativelanguage.googleapis.com"),
		DefaultClientVersion: getEnv("CARDFORGE_DEFAULT_CLIENT_VERSION", "revert-to-1.5"),

		ListenAddr: getEnv("CARDFORGE_LISTEN_ADDR", ":8787"),

		LogFile:  getEnv("CARDFORGE_LOG_FILE", "/tmp/cardforge.log"),
		LogLevel: parseLogLevel(getEnv("CARDFORGE_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
