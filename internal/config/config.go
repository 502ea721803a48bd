package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiBaseURL        string
	GeminiTransport      string // "rest" | "sdk"
	GeminiConcurrentReqs int

	// Persona baked into this deployment
	Persona string

	// HTTP
	AllowedOrigins []string
	MaxBodyBytes   int64

	// Terminal client
	RelayURL string
}

// Load reads .env (if present) and the process environment once at startup.
// A missing GEMINI_API_KEY is not fatal: the relay reports it on each request.
func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		GeminiAPIKey:         strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL:        strings.TrimRight(getEnvOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"), "/"),
		GeminiTransport:      strings.ToLower(getEnvOrDefault("GEMINI_TRANSPORT", "rest")),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 0),
		Persona:              strings.ToLower(getEnvOrDefault("PERSONA", "odindev")),
		AllowedOrigins:       getEnvAsListOrDefault("ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:         int64(getEnvAsIntOrDefault("MAX_BODY_BYTES", 1<<20)),
		RelayURL:             strings.TrimRight(getEnvOrDefault("RELAY_URL", "http://localhost:8080"), "/"),
	}

	return cfg
}

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	var out []string
	for _, entry := range strings.Split(val, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
