package fetcher

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
	"github.com/yshiba/webqa/internal/models"
)

// Fetcher downloads pages and extracts their readable text body.
type Fetcher struct {
	timeout   time.Duration
	userAgent string
	logger    *logrus.Logger
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func New(timeout time.Duration, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		timeout:   timeout,
		userAgent: "webqa-bot/1.0 (+https://github.com/yshiba/webqa)",
		logger:    logger,
	}
}

// FetchAll fetches each URL in order and returns the pages that yielded
// usable text. A URL that fails or produces no body is logged and skipped;
// one bad link never fails the batch.
func (f *Fetcher) FetchAll(urls []string) []models.FetchedPage {
	pages := make([]models.FetchedPage, 0, len(urls))

	for _, pageURL := range urls {
		content, err := f.Fetch(pageURL)
		if err != nil {
			f.logger.WithError(err).WithField("url", pageURL).Warn("Failed to fetch page")
			continue
		}
		if content == "" {
			f.logger.WithField("url", pageURL).Debug("Page yielded no text content")
			continue
		}

		pages = append(pages, models.FetchedPage{URL: pageURL, Content: content})
	}

	f.logger.WithFields(logrus.Fields{
		"requested": len(urls),
		"fetched":   len(pages),
	}).Debug("Page fetching completed")

	return pages
}

// Fetch downloads a single page and extracts its text.
func (f *Fetcher) Fetch(pageURL string) (string, error) {
	// A fresh collector per page keeps OnHTML callbacks from piling up
	// across fetches.
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
	)
	c.SetRequestTimeout(f.timeout)

	var content string
	var fetchErr error

	c.OnHTML("body", func(e *colly.HTMLElement) {
		content = f.extractText(e)
	})

	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	if fetchErr != nil {
		return "", fetchErr
	}

	return content, nil
}

func (f *Fetcher) extractText(e *colly.HTMLElement) string {
	// Remove boilerplate before taking the text
	e.DOM.Find("script, style, noscript, iframe, nav, header, footer, aside, form").Remove()
	e.DOM.Find(".navbox, .sidebar, .toc, .advertisement, .cookie-banner").Remove()

	// Keep block boundaries as blank lines; the answer extractor scores
	// paragraphs, so flattening everything to one line would ruin it
	var blocks []string
	e.DOM.Find("p, li, blockquote, pre, dd").Each(func(i int, s *goquery.Selection) {
		block := strings.TrimSpace(whitespacePattern.ReplaceAllString(s.Text(), " "))
		if block != "" {
			blocks = append(blocks, block)
		}
	})

	text := strings.Join(blocks, "\n\n")
	if text == "" {
		text = strings.TrimSpace(whitespacePattern.ReplaceAllString(e.DOM.Text(), " "))
	}

	// Pages that are all chrome and no prose are useless to the answerer
	if len(text) < 50 {
		return ""
	}

	return text
}
