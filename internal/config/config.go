package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Pipeline modes
const (
	ModeVenues = "venues"
	ModeEvents = "events"
)

// Config holds everything the API reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string

	GooglePlacesAPIKey string
	OpenAIAPIKey       string
	OpenAIModel        string
	FirecrawlAPIKey    string
	FirecrawlBaseURL   string

	PipelineMode  string
	CacheTTL      time.Duration
	ScrapeTimeout time.Duration

	RateLimitRPS   float64
	RateLimitBurst int

	MetricsUser string
	MetricsPass string
	LogLevel    string
}

// Load reads the .env file (if any) and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system env vars")
	}

	return &Config{
		Port:        getEnv("PORT", "3333"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		GooglePlacesAPIKey: getEnv("GOOGLE_PLACES_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		FirecrawlAPIKey:    getEnv("FIRECRAWL_API_KEY", ""),
		FirecrawlBaseURL:   getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),

		PipelineMode:  NormaliseMode(getEnv("PIPELINE_MODE", ModeVenues)),
		CacheTTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),
		ScrapeTimeout: getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 30),

		MetricsUser: getEnv("METRICS_USER", ""),
		MetricsPass: getEnv("METRICS_PASS", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// NormaliseMode maps anything other than "events" to the venues pipeline.
func NormaliseMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), ModeEvents) {
		return ModeEvents
	}
	return ModeVenues
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
