package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yshiba/webqa/internal/models"
	"github.com/yshiba/webqa/internal/repository"
	"github.com/yshiba/webqa/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCachedAnswerRouter(t *testing.T) (*gin.Engine, models.QACache) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	cache := repository.NewQACacheRepository(db)
	handler := NewAskHandler(nil, cache, logrus.New())

	router := gin.New()
	router.GET("/api/v1/answers", handler.HandleCachedAnswer)
	return router, cache
}

func TestHandleCachedAnswer_Hit(t *testing.T) {
	router, cache := setupCachedAnswerRouter(t)

	require.NoError(t, cache.RecordCycle(&models.CacheCycle{
		Question:       "capital of France",
		SearchResponse: map[string]any{"web": map[string]any{}},
		AnswerText:     "Paris",
		SourceURL:      "http://example/france",
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/answers?question=capital+of+France", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Success)

	data := response.Data.(map[string]any)
	assert.Equal(t, "Paris", data["answer"])
	assert.Equal(t, "http://example/france", data["source_url"])
	assert.Equal(t, true, data["from_cache"])
}

func TestHandleCachedAnswer_Miss(t *testing.T) {
	router, _ := setupCachedAnswerRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/answers?question=capital+of+Germany", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleCachedAnswer_MissingParam(t *testing.T) {
	router, _ := setupCachedAnswerRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/answers", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
