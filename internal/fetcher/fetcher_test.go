package fetcher

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>France</title><style>body { color: red }</style></head>
<body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<script>trackVisitor();</script>
<h1>France</h1>
<p>France is a country in Western Europe.</p>
<p>Paris is the capital of France and its largest city, known for art and culture.</p>
<footer>Copyright 2024, all rights reserved, cookie policy applies here.</footer>
</body>
</html>`

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	f := New(5*time.Second, logrus.New())

	content, err := f.Fetch(server.URL)
	require.NoError(t, err)

	assert.Contains(t, content, "France is a country in Western Europe.")
	assert.Contains(t, content, "Paris is the capital of France")

	// Boilerplate is stripped
	assert.NotContains(t, content, "trackVisitor")
	assert.NotContains(t, content, "color: red")
	assert.NotContains(t, content, "Copyright 2024")

	// Paragraph boundaries survive for the answer extractor
	assert.Contains(t, content, "\n\n")
}

func TestFetcher_FetchAll_SkipsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(samplePage))
	}))
	defer server.Close()

	f := New(5*time.Second, logrus.New())

	pages := f.FetchAll([]string{
		server.URL + "/first",
		server.URL + "/missing",
		server.URL + "/second",
	})

	require.Len(t, pages, 2)
	assert.Equal(t, server.URL+"/first", pages[0].URL)
	assert.Equal(t, server.URL+"/second", pages[1].URL)
}

func TestFetcher_FetchAll_Empty(t *testing.T) {
	f := New(5*time.Second, logrus.New())
	assert.Empty(t, f.FetchAll(nil))
}
