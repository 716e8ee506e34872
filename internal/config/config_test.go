package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "PIPELINE_MODE", "CACHE_TTL", "SCRAPE_TIMEOUT", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3333", cfg.Port)
	assert.Equal(t, ":3333", cfg.Addr())
	assert.Equal(t, ModeVenues, cfg.PipelineMode)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.ScrapeTimeout)
	assert.Zero(t, cfg.RateLimitRPS)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("PIPELINE_MODE", " Events ")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg := Load()

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, ModeEvents, cfg.PipelineMode)
	assert.Equal(t, 90*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestBadDurationFallsBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "soon")
	assert.Equal(t, 24*time.Hour, Load().CacheTTL)
}

func TestNormaliseMode(t *testing.T) {
	assert.Equal(t, ModeEvents, NormaliseMode("events"))
	assert.Equal(t, ModeEvents, NormaliseMode("EVENTS"))
	assert.Equal(t, ModeVenues, NormaliseMode(""))
	assert.Equal(t, ModeVenues, NormaliseMode("v2"))
}
