package config

import (
	"time"

	"golang-deal-scout/pkg/config"
)

// Gemini holds the configuration for the Gemini agent.
type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	Temperature         float32       `mapstructure:"temperature"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Storage holds S3 object storage configuration.
type Storage struct {
	Region        string        `mapstructure:"region"`
	Bucket        string        `mapstructure:"bucket"`
	Endpoint      string        `mapstructure:"endpoint"`
	UsePathStyle  bool          `mapstructure:"use_path_style"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
	MaxUploadMB   int64         `mapstructure:"max_upload_mb"`
}

// Auth holds session token configuration. An empty secret disables authentication.
type Auth struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Screening holds screening evaluation configuration.
type Screening struct {
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	IncludeNews      bool          `mapstructure:"include_news"`
	NewsFeedURL      string        `mapstructure:"news_feed_url"`
	MaxNewsItems     int           `mapstructure:"max_news_items"`
	NewsFetchTimeout time.Duration `mapstructure:"news_fetch_timeout"`
}

// Enrichment holds enrichment configuration.
type Enrichment struct {
	FetchWebsite   bool          `mapstructure:"fetch_website"`
	WebsiteTimeout time.Duration `mapstructure:"website_timeout"`
	MaxExcerptLen  int           `mapstructure:"max_excerpt_len"`
}

// Scanner holds discovery scan configuration.
type Scanner struct {
	AutoScan          bool          `mapstructure:"auto_scan"`
	PollSchedule      string        `mapstructure:"poll_schedule"`
	ScanTimeout       time.Duration `mapstructure:"scan_timeout"`
	DefaultCandidates int           `mapstructure:"default_candidates"`
	MaxCandidates     int           `mapstructure:"max_candidates"`
}

// Config holds the full configuration for the pipeline services.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Gemini     Gemini          `mapstructure:"gemini"`
	Storage    Storage         `mapstructure:"storage"`
	Auth       Auth            `mapstructure:"auth"`
	Telegram   Telegram        `mapstructure:"telegram"`
	Screening  Screening       `mapstructure:"screening"`
	Enrichment Enrichment      `mapstructure:"enrichment"`
	Scanner    Scanner         `mapstructure:"scanner"`
}

// Load loads the pipeline configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.0-flash"
	}
	if c.Gemini.Timeout <= 0 {
		c.Gemini.Timeout = 90 * time.Second
	}
	if c.Gemini.MaxRequestPerMinute <= 0 {
		c.Gemini.MaxRequestPerMinute = 15
	}
	if c.Storage.PresignExpiry <= 0 {
		c.Storage.PresignExpiry = 15 * time.Minute
	}
	if c.Storage.MaxUploadMB <= 0 {
		c.Storage.MaxUploadMB = 25
	}
	if c.Screening.CacheTTL <= 0 {
		c.Screening.CacheTTL = 10 * time.Minute
	}
	if c.Screening.MaxNewsItems <= 0 {
		c.Screening.MaxNewsItems = 5
	}
	if c.Screening.NewsFetchTimeout <= 0 {
		c.Screening.NewsFetchTimeout = 10 * time.Second
	}
	if c.Enrichment.WebsiteTimeout <= 0 {
		c.Enrichment.WebsiteTimeout = 15 * time.Second
	}
	if c.Enrichment.MaxExcerptLen <= 0 {
		c.Enrichment.MaxExcerptLen = 4000
	}
	if c.Scanner.PollSchedule == "" {
		c.Scanner.PollSchedule = "@every 5m"
	}
	if c.Scanner.ScanTimeout <= 0 {
		c.Scanner.ScanTimeout = 5 * time.Minute
	}
	if c.Scanner.DefaultCandidates <= 0 {
		c.Scanner.DefaultCandidates = 10
	}
	if c.Scanner.MaxCandidates <= 0 {
		c.Scanner.MaxCandidates = 50
	}
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
}
