package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/pkg/htmltext"
	"golang-deal-scout/pkg/logger"
)

// maxPageBytes bounds how much of a page is read.
const maxPageBytes = 2 << 20

// WebsiteRepository fetches a readable excerpt of a company website.
type WebsiteRepository interface {
	FetchExcerpt(ctx context.Context, website string) (string, error)
}

type websiteRepository struct {
	client *http.Client
	cfg    config.Enrichment
	logger *logger.Logger
}

// NewWebsiteRepository creates a new WebsiteRepository.
func NewWebsiteRepository(cfg *config.Config, log *logger.Logger) WebsiteRepository {
	return &websiteRepository{
		client: &http.Client{Timeout: cfg.Enrichment.WebsiteTimeout},
		cfg:    cfg.Enrichment,
		logger: log,
	}
}

func (r *websiteRepository) FetchExcerpt(ctx context.Context, website string) (string, error) {
	target, err := NormalizeURL(website)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; deal-scout/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("Failed to fetch website", logger.ErrorField(err), logger.StringField("url", target))
		return "", fmt.Errorf("failed to fetch website: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch website, status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	text, err := htmltext.Extract(string(body))
	if err != nil {
		return "", err
	}
	if title := htmltext.Title(string(body)); title != "" && !strings.HasPrefix(text, title) {
		text = title + ". " + text
	}
	return htmltext.Truncate(text, r.cfg.MaxExcerptLen), nil
}

// NormalizeURL adds a scheme to bare hosts and rejects anything that is not http(s).
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid url %q: missing host", raw)
	}
	return u.String(), nil
}
