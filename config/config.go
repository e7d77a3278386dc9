package config

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full application configuration
type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
	Browser BrowserConfig `yaml:"browser"`
	Output  OutputConfig  `yaml:"output"`
	Filters FilterConfig  `yaml:"filters"`
	Sheets  SheetsConfig  `yaml:"sheets"`
	Enrich  EnrichConfig  `yaml:"enrich"`
}

// ScraperConfig controls the extraction engine
type ScraperConfig struct {
	MaxResultsPerKeyword int    `yaml:"max_results_per_keyword"`
	MaxScrollAttempts    int    `yaml:"max_scroll_attempts"`
	ExtractAttempts      int    `yaml:"extract_attempts"`
	StaleRetryBudget     int    `yaml:"stale_retry_budget"`
	MaxConsecutiveSkips  int    `yaml:"max_consecutive_skips"`
	SettleDelayMinMs     int    `yaml:"settle_delay_min_ms"`
	SettleDelayMaxMs     int    `yaml:"settle_delay_max_ms"`
	StaleRetryDelayMs    int    `yaml:"stale_retry_delay_ms"`
	KeywordDelayMs       int    `yaml:"keyword_delay_ms"`
	PhoneRegion          string `yaml:"phone_region"`
}

// BrowserConfig controls the browser session
type BrowserConfig struct {
	Headless       bool   `yaml:"headless"`
	UserAgent      string `yaml:"user_agent"`
	WindowWidth    int    `yaml:"window_width"`
	WindowHeight   int    `yaml:"window_height"`
	PageTimeoutSec int    `yaml:"page_timeout_sec"`
	UserDataDir    string `yaml:"user_data_dir"`
}

// OutputConfig controls file output
type OutputConfig struct {
	Directory       string `yaml:"directory"`
	LogFile         string `yaml:"log_file"`
	GenerateSummary bool   `yaml:"generate_summary"`
}

// FilterConfig represents the record filter criteria
type FilterConfig struct {
	RequireWebsite bool `yaml:"require_website"`
	RequirePhone   bool `yaml:"require_phone"`
}

// SheetsConfig controls the optional Google Sheets export
type SheetsConfig struct {
	SpreadsheetURL  string `yaml:"spreadsheet_url"`
	CredentialsPath string `yaml:"credentials_path"`
}

// EnrichConfig controls the website email enrichment crawl
type EnrichConfig struct {
	MaxPagesPerSite   int  `yaml:"max_pages_per_site"`
	RequestTimeoutSec int  `yaml:"request_timeout_sec"`
	CheckMX           bool `yaml:"check_mx"`
	DelayMs           int  `yaml:"delay_ms"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Scraper.MaxResultsPerKeyword = 50
	cfg.Scraper.MaxScrollAttempts = 10
	cfg.Scraper.ExtractAttempts = 2
	cfg.Scraper.StaleRetryBudget = 3
	cfg.Scraper.MaxConsecutiveSkips = 5
	cfg.Scraper.SettleDelayMinMs = 1500
	cfg.Scraper.SettleDelayMaxMs = 3000
	cfg.Scraper.StaleRetryDelayMs = 1000
	cfg.Scraper.KeywordDelayMs = 3000
	cfg.Scraper.PhoneRegion = "ID"
	cfg.Browser.Headless = true
	cfg.Browser.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	cfg.Browser.WindowWidth = 1920
	cfg.Browser.WindowHeight = 1080
	cfg.Browser.PageTimeoutSec = 10
	cfg.Output.Directory = "output"
	cfg.Output.LogFile = "scraper.log"
	cfg.Output.GenerateSummary = true
	cfg.Enrich.MaxPagesPerSite = 8
	cfg.Enrich.RequestTimeoutSec = 15
	cfg.Enrich.CheckMX = true
	cfg.Enrich.DelayMs = 1500
	return cfg
}

// SettleDelay returns a randomized pause between page interactions,
// drawn from [settle_delay_min_ms, settle_delay_max_ms].
func (c *ScraperConfig) SettleDelay() time.Duration {
	return randomDelay(c.SettleDelayMinMs, c.SettleDelayMaxMs)
}

// StaleRetryDelay returns the pause before re-resolving a stale listing.
func (c *ScraperConfig) StaleRetryDelay() time.Duration {
	return time.Duration(c.StaleRetryDelayMs) * time.Millisecond
}

// KeywordDelay returns a randomized pause between keywords.
func (c *ScraperConfig) KeywordDelay() time.Duration {
	return randomDelay(c.KeywordDelayMs/2, c.KeywordDelayMs)
}

// PageTimeout returns the bound for individual page interactions.
func (c *BrowserConfig) PageTimeout() time.Duration {
	if c.PageTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.PageTimeoutSec) * time.Second
}

// RequestTimeout returns the bound for one enrichment HTTP request.
func (c *EnrichConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSec <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Delay returns the pause between enrichment page fetches.
func (c *EnrichConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func randomDelay(minMs, maxMs int) time.Duration {
	if maxMs <= minMs {
		return time.Duration(minMs) * time.Millisecond
	}
	ms := minMs + rand.Intn(maxMs-minMs+1)
	return time.Duration(ms) * time.Millisecond
}
