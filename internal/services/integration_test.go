package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshiba/webqa/internal/fetcher"
	"github.com/yshiba/webqa/internal/models"
	"github.com/yshiba/webqa/internal/repository"
	"github.com/yshiba/webqa/internal/search"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Full pipeline against stub search and content servers, with a real
// sqlite-backed cache.

type pipelineEnv struct {
	service     *AnswerService
	cache       models.QACache
	db          *gorm.DB
	searchHits  *atomic.Int64
	contentHits *atomic.Int64
}

func setupPipeline(t *testing.T) *pipelineEnv {
	t.Helper()

	var contentHits atomic.Int64
	contentServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentHits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
			<p>France is a country in Western Europe with a long history.</p>
			<p>The capital of France is Paris, its largest city and seat of government.</p>
		</body></html>`)
	}))
	t.Cleanup(contentServer.Close)

	var searchHits atomic.Int64
	searchServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		searchHits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"query": {"original": %q},
			"web": {"results": [{"title": "France", "url": %q, "description": "about France"}]}
		}`, r.URL.Query().Get("q"), contentServer.URL+"/france")
	}))
	t.Cleanup(searchServer.Close)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "qa_cache.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Query{},
		&models.SearchResult{},
		&models.WebContent{},
		&models.Answer{},
	))

	log := logrus.New()
	cache := repository.NewQACacheRepository(db)
	client := search.NewClient(searchServer.URL, "test-key", 5*time.Second, log)
	pageFetcher := fetcher.New(5*time.Second, log)

	return &pipelineEnv{
		service:     NewAnswerService(cache, client, pageFetcher, 3, 5, log),
		cache:       cache,
		db:          db,
		searchHits:  &searchHits,
		contentHits: &contentHits,
	}
}

func TestAsk_FullCycleThenCacheHit(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	result, err := env.service.Ask(ctx, "capital of France")
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Contains(t, result.Answer, "Paris")
	assert.Contains(t, result.SourceURL, "/france")

	// The whole cycle was recorded
	_, found, err := env.cache.LookupAnswer("capital of France")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = env.cache.LookupSearchResponse("capital of France")
	require.NoError(t, err)
	assert.True(t, found)

	contents, err := env.cache.LookupWebContents([]string{result.SourceURL})
	require.NoError(t, err)
	assert.Len(t, contents, 1)

	// Second ask is served entirely from the cache
	repeat, err := env.service.Ask(ctx, "capital of France")
	require.NoError(t, err)
	assert.True(t, repeat.FromCache)
	assert.Equal(t, result.Answer, repeat.Answer)
	assert.Equal(t, result.SourceURL, repeat.SourceURL)

	assert.Equal(t, int64(1), env.searchHits.Load(), "cached question must not hit the search provider again")
	assert.Equal(t, int64(1), env.contentHits.Load(), "cached question must not refetch pages")
}

func TestAsk_ReplaysCachedSearchResponseAndContents(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	result, err := env.service.Ask(ctx, "capital of France")
	require.NoError(t, err)
	require.False(t, result.FromCache)

	// Drop the answer rows so the answer lookup misses while the search
	// response and page bodies stay cached, as after a crashed extraction
	require.NoError(t, env.db.Where("1 = 1").Delete(&models.Answer{}).Error)

	searchBefore := env.searchHits.Load()
	contentBefore := env.contentHits.Load()

	repeat, err := env.service.Ask(ctx, "capital of France")
	require.NoError(t, err)
	assert.False(t, repeat.FromCache)
	assert.Contains(t, repeat.Answer, "Paris")

	assert.Equal(t, searchBefore, env.searchHits.Load(), "cached search response must be replayed")
	assert.Equal(t, contentBefore, env.contentHits.Load(), "cached page bodies must be reused")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	env := setupPipeline(t)

	_, err := env.service.Ask(context.Background(), "   ")
	assert.Error(t, err)
}

func TestAsk_TrimsQuestionOnce(t *testing.T) {
	env := setupPipeline(t)
	ctx := context.Background()

	_, err := env.service.Ask(ctx, "  capital of France  ")
	require.NoError(t, err)

	// The service trims before caching, so the canonical form is cached
	_, found, err := env.cache.LookupAnswer("capital of France")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = env.cache.LookupAnswer("  capital of France  ")
	require.NoError(t, err)
	assert.False(t, found)
}
