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

func TestNormalizeURL(t *testing.T) {
	got, err := NormalizeURL("acme.com/about")
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/about", got)

	got, err = NormalizeURL(" http://acme.com ")
	require.NoError(t, err)
	assert.Equal(t, "http://acme.com", got)

	for _, bad := range []string{"", "ftp://acme.com", "https://"} {
		_, err := NormalizeURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestWebsiteRepository_FetchExcerpt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Acme</title></head><body><article>
<p>Acme builds scheduling software for mid-sized manufacturers across Europe, serving more than four hundred plants
in twelve countries with planning, utilisation tracking and demand forecasting products.</p></article></body></html>`))
	}))
	defer srv.Close()

	cfg := &config.Config{Enrichment: config.Enrichment{WebsiteTimeout: 5 * time.Second, MaxExcerptLen: 60}}
	repo := NewWebsiteRepository(cfg, logger.NewNop())

	excerpt, err := repo.FetchExcerpt(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(excerpt), 60)
	assert.Contains(t, excerpt, "Acme")

	_, err = repo.FetchExcerpt(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")
}
