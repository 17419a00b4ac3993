package models

// GORM models for the QA cache schema

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Query represents a distinct question ever asked. The unique index on
// Question is the authority for question identity: concurrent inserts for
// the same text resolve to one row.
type Query struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Question  string    `json:"question" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`

	// Associations
	SearchResults []SearchResult `json:"search_results,omitempty" gorm:"foreignKey:QueryID"`
	Answers       []Answer       `json:"answers,omitempty" gorm:"foreignKey:QueryID"`
}

// SearchResult stores one raw search-provider response for a query.
// Rows are append-only; lookups take the newest one.
type SearchResult struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QueryID      uint      `json:"query_id" gorm:"not null;index"`
	ResponseJSON string    `json:"response_json" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`

	// Associations
	Query Query `json:"query,omitempty" gorm:"foreignKey:QueryID"`
}

// WebContent stores the extracted text body for a URL. First write wins:
// re-inserting a URL already present is a no-op.
type WebContent struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	URL       string    `json:"url" gorm:"uniqueIndex;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	FetchedAt time.Time `json:"fetched_at" gorm:"autoCreateTime"`
}

// Answer stores one extracted answer for a query. Rows are append-only;
// lookups take the newest one.
type Answer struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QueryID    uint      `json:"query_id" gorm:"not null;index"`
	AnswerText string    `json:"answer_text" gorm:"type:text;not null"`
	SourceURL  string    `json:"source_url"`
	CreatedAt  time.Time `json:"created_at"`

	// Associations
	Query Query `json:"query,omitempty" gorm:"foreignKey:QueryID"`
}

// CachedAnswer is what an answer lookup returns.
type CachedAnswer struct {
	AnswerText string `json:"answer_text"`
	SourceURL  string `json:"source_url"`
}

// FetchedPage is one (URL, extracted text) pair handed in by the fetcher.
type FetchedPage struct {
	URL     string `json:"url"`
	Content string `json:"content"`
}

// CacheCycle is the full input of one recorded question cycle.
type CacheCycle struct {
	Question       string
	SearchResponse any // serialized to JSON on write
	WebContents    []FetchedPage
	AnswerText     string
	SourceURL      string
}

// QACache is the persistence contract for the question-answering pipeline.
// Lookups report misses via the bool, never through the error.
type QACache interface {
	LookupAnswer(question string) (*CachedAnswer, bool, error)
	LookupSearchResponse(question string) (json.RawMessage, bool, error)
	LookupWebContents(urls []string) (map[string]string, error)
	RecordCycle(cycle *CacheCycle) error
}

// TableName methods for custom table names
func (Query) TableName() string        { return "queries" }
func (SearchResult) TableName() string { return "search_results" }
func (WebContent) TableName() string   { return "web_contents" }
func (Answer) TableName() string       { return "answers" }

// Model validation methods
func (q *Query) Validate() error {
	if q.Question == "" {
		return fmt.Errorf("question is required")
	}
	return nil
}

func (sr *SearchResult) Validate() error {
	if sr.QueryID == 0 {
		return fmt.Errorf("query ID is required")
	}
	if sr.ResponseJSON == "" {
		return fmt.Errorf("response JSON is required")
	}
	return nil
}

func (wc *WebContent) Validate() error {
	if wc.URL == "" {
		return fmt.Errorf("URL is required")
	}
	return nil
}

func (a *Answer) Validate() error {
	if a.QueryID == 0 {
		return fmt.Errorf("query ID is required")
	}
	if a.AnswerText == "" {
		return fmt.Errorf("answer text is required")
	}
	return nil
}

// GORM hooks
func (q *Query) BeforeCreate(tx *gorm.DB) error {
	return q.Validate()
}

func (sr *SearchResult) BeforeCreate(tx *gorm.DB) error {
	return sr.Validate()
}

func (wc *WebContent) BeforeCreate(tx *gorm.DB) error {
	return wc.Validate()
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	return a.Validate()
}
