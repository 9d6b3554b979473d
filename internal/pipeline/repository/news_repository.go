package repository

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/pkg/logger"

	"github.com/mmcdole/gofeed"
)

// NewsRepository looks up recent headlines about a company.
type NewsRepository interface {
	Headlines(ctx context.Context, companyName string) ([]string, error)
}

type newsRepository struct {
	parser *gofeed.Parser
	cfg    config.Screening
	logger *logger.Logger
}

// NewNewsRepository creates a NewsRepository reading an RSS search feed. The
// feed URL contains one %s verb that receives the escaped company name.
func NewNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &newsRepository{
		parser: gofeed.NewParser(),
		cfg:    cfg.Screening,
		logger: log,
	}
}

func (r *newsRepository) Headlines(ctx context.Context, companyName string) ([]string, error) {
	if r.cfg.NewsFeedURL == "" {
		return nil, nil
	}
	feedURL := fmt.Sprintf(r.cfg.NewsFeedURL, url.QueryEscape(`"`+companyName+`"`))

	ctx, cancel := context.WithTimeout(ctx, r.cfg.NewsFetchTimeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		r.logger.Warn("Failed to parse news feed", logger.ErrorField(err), logger.StringField("company", companyName))
		return nil, fmt.Errorf("failed to parse news feed: %w", err)
	}
	return latestHeadlines(feed.Items, r.cfg.MaxNewsItems), nil
}

// latestHeadlines formats up to max items, newest first.
func latestHeadlines(items []*gofeed.Item, max int) []string {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PublishedParsed == nil || items[j].PublishedParsed == nil {
			return items[j].PublishedParsed == nil && items[i].PublishedParsed != nil
		}
		return items[i].PublishedParsed.After(*items[j].PublishedParsed)
	})

	var headlines []string
	for _, item := range items {
		if len(headlines) == max {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		if item.PublishedParsed != nil {
			title = fmt.Sprintf("%s (%s)", title, item.PublishedParsed.Format("2006-01-02"))
		}
		headlines = append(headlines, title)
	}
	return headlines
}
