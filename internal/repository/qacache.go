package repository

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yshiba/webqa/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QACacheRepositoryImpl implements models.QACache on a relational store.
type QACacheRepositoryImpl struct {
	db *gorm.DB
}

func NewQACacheRepository(db *gorm.DB) models.QACache {
	return &QACacheRepositoryImpl{db: db}
}

// LookupAnswer returns the most recently recorded answer for the exact
// question text. A miss is (nil, false, nil); questions are matched as-is,
// normalization is the caller's job.
func (r *QACacheRepositoryImpl) LookupAnswer(question string) (*models.CachedAnswer, bool, error) {
	var answer models.Answer
	err := r.db.Model(&models.Answer{}).
		Joins("JOIN queries ON queries.id = answers.query_id").
		Where("queries.question = ?", question).
		Order("answers.created_at DESC, answers.id DESC").
		First(&answer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up cached answer: %w", err)
	}

	return &models.CachedAnswer{
		AnswerText: answer.AnswerText,
		SourceURL:  answer.SourceURL,
	}, true, nil
}

// LookupSearchResponse returns the most recently stored raw search-provider
// response for the question. A stored row that is not valid JSON surfaces
// ErrCorruptRecord rather than a miss.
func (r *QACacheRepositoryImpl) LookupSearchResponse(question string) (json.RawMessage, bool, error) {
	var result models.SearchResult
	err := r.db.Model(&models.SearchResult{}).
		Joins("JOIN queries ON queries.id = search_results.query_id").
		Where("queries.question = ?", question).
		Order("search_results.created_at DESC, search_results.id DESC").
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up cached search response: %w", err)
	}

	raw := json.RawMessage(result.ResponseJSON)
	if !json.Valid(raw) {
		return nil, false, fmt.Errorf("%w: search result %d for question %q", ErrCorruptRecord, result.ID, question)
	}

	return raw, true, nil
}

// LookupWebContents returns the stored body for each URL that has one.
// URLs never fetched are simply omitted; an empty input yields an empty map.
func (r *QACacheRepositoryImpl) LookupWebContents(urls []string) (map[string]string, error) {
	contents := make(map[string]string, len(urls))
	if len(urls) == 0 {
		return contents, nil
	}

	var rows []models.WebContent
	err := r.db.Where("url IN ?", urls).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up cached web contents: %w", err)
	}

	for _, row := range rows {
		contents[row.URL] = row.Content
	}
	return contents, nil
}

// RecordCycle durably stores one full question cycle in a single
// transaction: find-or-create the query row, append the search response,
// insert each page body that is not already cached, append the answer.
// Any failure rolls the whole cycle back and wraps ErrWriteFailed.
func (r *QACacheRepositoryImpl) RecordCycle(cycle *models.CacheCycle) error {
	responseJSON, err := json.Marshal(cycle.SearchResponse)
	if err != nil {
		return fmt.Errorf("%w: cannot serialize search response: %v", ErrWriteFailed, err)
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		// The unique index on queries.question resolves concurrent inserts:
		// a duplicate attempt is ignored and the existing row re-read, so
		// two racing cycles for one question share one identity.
		query := models.Query{Question: cycle.Question}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "question"}},
			DoNothing: true,
		}).Create(&query).Error; err != nil {
			return fmt.Errorf("upserting query: %w", err)
		}
		if query.ID == 0 {
			if err := tx.Where("question = ?", cycle.Question).First(&query).Error; err != nil {
				return fmt.Errorf("resolving query identity: %w", err)
			}
		}

		result := models.SearchResult{
			QueryID:      query.ID,
			ResponseJSON: string(responseJSON),
		}
		if err := tx.Create(&result).Error; err != nil {
			return fmt.Errorf("inserting search result: %w", err)
		}

		// First write wins per URL; a page another cycle already cached is
		// left untouched and does not fail this one.
		for _, page := range cycle.WebContents {
			content := models.WebContent{URL: page.URL, Content: page.Content}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "url"}},
				DoNothing: true,
			}).Create(&content).Error; err != nil {
				return fmt.Errorf("inserting web content for %s: %w", page.URL, err)
			}
		}

		answer := models.Answer{
			QueryID:    query.ID,
			AnswerText: cycle.AnswerText,
			SourceURL:  cycle.SourceURL,
		}
		if err := tx.Create(&answer).Error; err != nil {
			return fmt.Errorf("inserting answer: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}
