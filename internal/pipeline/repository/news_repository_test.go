package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang-deal-scout/internal/pipeline/config"
	"golang-deal-scout/pkg/logger"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Search</title>
<item><title>Acme opens plant in Poland</title><pubDate>Mon, 01 Jul 2024 10:00:00 GMT</pubDate></item>
<item><title>Acme appoints new CFO</title><pubDate>Wed, 10 Jul 2024 10:00:00 GMT</pubDate></item>
<item><title>Undated item</title></item>
<item><title>Acme wins award</title><pubDate>Fri, 05 Jul 2024 10:00:00 GMT</pubDate></item>
</channel></rss>`

func TestNewsRepository_Headlines(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	cfg := &config.Config{Screening: config.Screening{
		NewsFeedURL:      srv.URL + "/rss?q=%s",
		MaxNewsItems:     2,
		NewsFetchTimeout: 5 * time.Second,
	}}
	headlines, err := NewNewsRepository(cfg, logger.NewNop()).Headlines(context.Background(), "Acme Inc")
	require.NoError(t, err)

	assert.Equal(t, `"Acme Inc"`, query)
	assert.Equal(t, []string{
		"Acme appoints new CFO (2024-07-10)",
		"Acme wins award (2024-07-05)",
	}, headlines)
}

func TestNewsRepository_DisabledWithoutFeed(t *testing.T) {
	headlines, err := NewNewsRepository(&config.Config{}, logger.NewNop()).Headlines(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Empty(t, headlines)
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename=report.pdf`, ContentDisposition("report.pdf"))
	assert.Equal(t, `attachment; filename="Q3 report.pdf"`, ContentDisposition("Q3 report.pdf"))
}
