package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"query": {"original": "capital of France"},
	"web": {"results": [
		{"title": "France - Wikipedia", "url": "https://en.wikipedia.org/wiki/France", "description": "France country page"},
		{"title": "Paris - Wikipedia", "url": "https://en.wikipedia.org/wiki/Paris", "description": "Paris city page"}
	]},
	"mixed": {"type": "mixed"}
}`

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "capital of France", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("count"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0, logrus.New())

	response, err := client.Search(context.Background(), "capital of France", 5)
	require.NoError(t, err)

	assert.Equal(t, "capital of France", response.Query.Original)
	require.Len(t, response.Web.Results, 2)
	assert.Equal(t, "https://en.wikipedia.org/wiki/France", response.Web.Results[0].URL)

	// Raw carries the full body, fields the typed view does not map included
	assert.JSONEq(t, sampleResponse, string(response.Raw))
}

func TestClient_ErrorHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Invalid subscription token"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", 0, logrus.New())

	_, err := client.Search(context.Background(), "anything", 3)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_SearchWithRetry(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 0, logrus.New())
	client.retry = RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond}

	response, err := client.SearchWithRetry(context.Background(), "capital of France", 5)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, response.Web.Results, 2)
}

func TestWebSearchResponse_TopURLs(t *testing.T) {
	response, err := ParseResponse([]byte(sampleResponse))
	require.NoError(t, err)

	assert.Equal(t, []string{"https://en.wikipedia.org/wiki/France"}, response.TopURLs(1))
	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/France",
		"https://en.wikipedia.org/wiki/Paris",
	}, response.TopURLs(10))
}
