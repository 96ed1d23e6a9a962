package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by SHEETQA_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("SHEETQA_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Missing files are fine; the environment may already be populated.
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// KnowledgeSource returns where facts are loaded from.
// Defaults to "sheets". Valid values: sheets, postgres, csv
func KnowledgeSource() string {
	s := strings.ToLower(strings.TrimSpace(os.Getenv("KB_SOURCE")))
	if s == "" {
		return "sheets"
	}
	return s
}

func SheetID() string {
	return os.Getenv("SHEET_ID")
}

func SheetRange() string {
	r := os.Getenv("SHEET_RANGE")
	if r == "" {
		return "Sheet1!A:B"
	}
	return r
}

func GoogleCredentialsFile() string {
	f := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if f == "" {
		return "readspreadsheets.json"
	}
	return f
}

func GoogleAPIKey() string {
	return os.Getenv("GOOGLE_API_KEY")
}

func FactsCSVPath() string {
	p := os.Getenv("FACTS_CSV_PATH")
	if p == "" {
		return "facts.csv"
	}
	return p
}

// WatchKnowledge reports whether a file-backed source should be watched
// for changes.
func WatchKnowledge() bool {
	w, err := strconv.ParseBool(os.Getenv("KB_WATCH"))
	return err == nil && w
}

// RefreshInterval returns how often the knowledge base is reloaded.
// Zero disables periodic refresh.
func RefreshInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("KB_REFRESH_INTERVAL"))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// MatchCutoff returns the minimum similarity for a knowledge base hit.
// Defaults to 0.7 if unset or outside (0, 1].
func MatchCutoff() float64 {
	c, err := strconv.ParseFloat(os.Getenv("MATCH_CUTOFF"), 64)
	if err != nil || c <= 0 || c > 1 {
		return 0.7
	}
	return c
}

// FallbackTimeout bounds a single fallback call.
// Defaults to 30s if not set.
func FallbackTimeout() time.Duration {
	d, err := time.ParseDuration(os.Getenv("FALLBACK_TIMEOUT"))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "openai" if not set.
// Valid values: openai, anthropic, gemini, cerebras, mock
func LLMProvider() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

// LLMModel returns a model override; empty means the provider default.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "gemini":
		return GeminiAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// AdminAPIKey guards the refresh endpoint. Empty leaves it open.
func AdminAPIKey() string {
	return os.Getenv("ADMIN_API_KEY")
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
