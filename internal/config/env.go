package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

// Config is built once at startup and read-only afterwards. Which generative
// strategies the extraction pipeline runs is decided here: a provider with
// no API key is simply not configured.
type Config struct {
	// Generative providers (both optional; the heuristic extractor always runs last)
	AnthropicAPIKey string
	AnthropicModel  string
	OpenAIAPIKey    string
	OpenAIModel     string
	LLMTemperature  float64

	// Google Calendar
	GoogleCredentialsFile string
	GoogleTokenFile       string
	CalendarID            string

	// Server
	HTTPPort        int
	DefaultTimezone string
	Debug           bool
}

func LoadFromEnv() *Config {
	cfg := &Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnvOrDefault("PLANBUDDY_ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnvOrDefault("PLANBUDDY_OPENAI_MODEL", "gpt-4o-mini"),
		LLMTemperature:  getEnvAsFloatOrDefault("PLANBUDDY_LLM_TEMPERATURE", 0.1),

		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),
		GoogleTokenFile:       getEnvOrDefault("GOOGLE_TOKEN_FILE", "./token.json"),
		CalendarID:            getEnvOrDefault("PLANBUDDY_CALENDAR_ID", "primary"),

		HTTPPort:        getEnvAsIntOrDefault("PLANBUDDY_HTTP_PORT", 8080),
		DefaultTimezone: getEnvOrDefault("PLANBUDDY_DEFAULT_TIMEZONE", "UTC"),
		Debug:           getEnvAsBoolOrDefault("PLANBUDDY_DEBUG", false),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
