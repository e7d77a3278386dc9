package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, 50, cfg.Scraper.MaxResultsPerKeyword)
	assert.Equal(t, 10, cfg.Scraper.MaxScrollAttempts)
	assert.Equal(t, 2, cfg.Scraper.ExtractAttempts)
	assert.Equal(t, 3, cfg.Scraper.StaleRetryBudget)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "output", cfg.Output.Directory)
	assert.True(t, cfg.Output.GenerateSummary)
}

func TestLoadConfig(t *testing.T) {
	content := `
scraper:
  max_results_per_keyword: 25
  max_scroll_attempts: 4
browser:
  headless: false
  page_timeout_sec: 20
output:
  directory: results
filters:
  require_website: true
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Scraper.MaxResultsPerKeyword)
	assert.Equal(t, 4, cfg.Scraper.MaxScrollAttempts)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 20*time.Second, cfg.Browser.PageTimeout())
	assert.Equal(t, "results", cfg.Output.Directory)
	assert.True(t, cfg.Filters.RequireWebsite)

	// Values absent from the file keep their defaults.
	assert.Equal(t, 2, cfg.Scraper.ExtractAttempts)
	assert.Equal(t, 3, cfg.Scraper.StaleRetryBudget)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestSettleDelayBounds(t *testing.T) {
	c := &ScraperConfig{SettleDelayMinMs: 100, SettleDelayMaxMs: 200}
	for i := 0; i < 50; i++ {
		d := c.SettleDelay()
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 200*time.Millisecond)
	}

	// Degenerate range falls back to the minimum.
	c = &ScraperConfig{SettleDelayMinMs: 300, SettleDelayMaxMs: 0}
	assert.Equal(t, 300*time.Millisecond, c.SettleDelay())
}
