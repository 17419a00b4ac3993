package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yshiba/webqa/internal/fetcher"
	"github.com/yshiba/webqa/internal/models"
	"github.com/yshiba/webqa/internal/repository"
	"github.com/yshiba/webqa/internal/search"
)

// AnswerService runs the full question-answering pipeline: cache lookup,
// web search, page fetching, answer extraction, and cache write-back.
type AnswerService struct {
	cache          models.QACache
	searchClient   *search.Client
	pageFetcher    *fetcher.Fetcher
	logger         *logrus.Logger
	maxContentURLs int
	maxParagraphs  int
}

type AskResult struct {
	Answer    string
	SourceURL string
	FromCache bool
}

func NewAnswerService(
	cache models.QACache,
	searchClient *search.Client,
	pageFetcher *fetcher.Fetcher,
	maxContentURLs int,
	maxParagraphs int,
	logger *logrus.Logger,
) *AnswerService {
	return &AnswerService{
		cache:          cache,
		searchClient:   searchClient,
		pageFetcher:    pageFetcher,
		logger:         logger,
		maxContentURLs: maxContentURLs,
		maxParagraphs:  maxParagraphs,
	}
}

// Ask answers a question, serving from the cache when possible and
// recording the full cycle when fresh work was done.
func (s *AnswerService) Ask(ctx context.Context, question string) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}

	// Cached answer short-circuits everything
	cached, found, err := s.cache.LookupAnswer(question)
	if err != nil {
		// A broken lookup is not a miss; report it but fall through to
		// fresh work so the caller still gets an answer
		s.logger.WithError(err).Error("Answer cache lookup failed")
	}
	if found {
		s.logger.WithField("question", question).Debug("Answer served from cache")
		return &AskResult{
			Answer:    cached.AnswerText,
			SourceURL: cached.SourceURL,
			FromCache: true,
		}, nil
	}

	response, err := s.resolveSearchResponse(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	urls := response.TopURLs(s.maxContentURLs)
	pages, err := s.resolveWebContents(urls)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no usable content found for question")
	}

	answer, sourceURL := s.extractAnswer(question, pages)
	if answer == "" {
		return nil, fmt.Errorf("no answer could be extracted")
	}

	cycle := &models.CacheCycle{
		Question:       question,
		SearchResponse: response.Raw,
		WebContents:    pages,
		AnswerText:     answer,
		SourceURL:      sourceURL,
	}
	if err := s.cache.RecordCycle(cycle); err != nil {
		// Lost caching opportunity, not a lost answer; loud so a broken
		// store shows up in monitoring
		s.logger.WithError(err).WithField("question", question).Error("Failed to record qa cycle")
	}

	return &AskResult{
		Answer:    answer,
		SourceURL: sourceURL,
	}, nil
}

// resolveSearchResponse replays the cached provider response for this
// question if one exists, otherwise performs a fresh search.
func (s *AnswerService) resolveSearchResponse(ctx context.Context, question string) (*search.WebSearchResponse, error) {
	raw, found, err := s.cache.LookupSearchResponse(question)
	if err != nil {
		if errors.Is(err, repository.ErrCorruptRecord) {
			s.logger.WithError(err).Error("Cached search response is corrupt, searching fresh")
		} else {
			s.logger.WithError(err).Error("Search response cache lookup failed")
		}
	}
	if found {
		response, err := search.ParseResponse(raw)
		if err == nil {
			s.logger.WithField("question", question).Debug("Search response served from cache")
			return response, nil
		}
		s.logger.WithError(err).Error("Failed to parse cached search response, searching fresh")
	}

	return s.searchClient.SearchWithRetry(ctx, question, s.maxContentURLs*2)
}

// resolveWebContents assembles page bodies for the given URLs, reusing
// cached ones and fetching only what is missing. Order follows the URL
// ranking.
func (s *AnswerService) resolveWebContents(urls []string) ([]models.FetchedPage, error) {
	cachedContents, err := s.cache.LookupWebContents(urls)
	if err != nil {
		s.logger.WithError(err).Error("Web content cache lookup failed")
		cachedContents = map[string]string{}
	}

	var missing []string
	for _, u := range urls {
		if _, ok := cachedContents[u]; !ok {
			missing = append(missing, u)
		}
	}

	fetched := map[string]string{}
	if len(missing) > 0 {
		for _, page := range s.pageFetcher.FetchAll(missing) {
			fetched[page.URL] = page.Content
		}
	}

	pages := make([]models.FetchedPage, 0, len(urls))
	for _, u := range urls {
		if content, ok := cachedContents[u]; ok {
			pages = append(pages, models.FetchedPage{URL: u, Content: content})
		} else if content, ok := fetched[u]; ok {
			pages = append(pages, models.FetchedPage{URL: u, Content: content})
		}
	}

	s.logger.WithFields(logrus.Fields{
		"urls":       len(urls),
		"from_cache": len(urls) - len(missing),
		"fetched":    len(fetched),
	}).Debug("Web contents resolved")

	return pages, nil
}
