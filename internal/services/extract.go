package services

import (
	"sort"
	"strings"

	"github.com/yshiba/webqa/internal/models"
)

// Words that carry no signal when matching a question against page text.
var noiseWords = map[string]bool{
	"please": true, "help": true, "how": true, "what": true, "when": true,
	"where": true, "which": true, "who": true, "why": true, "do": true,
	"does": true, "did": true, "can": true, "could": true, "should": true,
	"would": true, "will": true, "may": true, "might": true, "must": true,
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "being": true, "have": true,
	"has": true, "had": true, "of": true, "for": true, "and": true,
	"you": true, "me": true, "my": true, "it": true, "its": true,
	"this": true, "that": true, "with": true, "about": true,
}

type scoredParagraph struct {
	text      string
	sourceURL string
	score     float64
	position  int
}

// extractAnswer picks the paragraph that best matches the question's
// keywords across all fetched pages and returns it with its source URL.
func (s *AnswerService) extractAnswer(question string, pages []models.FetchedPage) (string, string) {
	keywords := significantWords(question)
	if len(keywords) == 0 {
		return "", ""
	}

	var candidates []scoredParagraph
	position := 0
	for _, page := range pages {
		for _, paragraph := range strings.Split(page.Content, "\n\n") {
			paragraph = strings.TrimSpace(paragraph)
			if len(paragraph) < 40 || len(paragraph) > 2000 {
				continue
			}
			score := scoreParagraph(paragraph, keywords)
			if score > 0 {
				candidates = append(candidates, scoredParagraph{
					text:      paragraph,
					sourceURL: page.URL,
					score:     score,
					position:  position,
				})
			}
			position++
		}
	}

	if len(candidates) == 0 {
		return "", ""
	}

	// Higher score wins; earlier paragraph breaks ties since pages arrive
	// in search-ranking order
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].position < candidates[j].position
	})

	if len(candidates) > s.maxParagraphs {
		candidates = candidates[:s.maxParagraphs]
	}

	best := candidates[0]
	return condense(best.text), best.sourceURL
}

// significantWords lowercases the question and drops noise words and
// short tokens.
func significantWords(question string) []string {
	words := strings.Fields(strings.ToLower(question))
	var filtered []string
	for _, word := range words {
		word = strings.Trim(word, ".,;:!?\"'()")
		if len(word) > 2 && !noiseWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// scoreParagraph rewards distinct keyword coverage first and raw
// occurrence count second, normalized a little against paragraph length
// so walls of text don't always win.
func scoreParagraph(paragraph string, keywords []string) float64 {
	lower := strings.ToLower(paragraph)

	distinct := 0
	occurrences := 0
	for _, keyword := range keywords {
		count := strings.Count(lower, keyword)
		if count > 0 {
			distinct++
			occurrences += count
		}
	}
	if distinct == 0 {
		return 0
	}

	coverage := float64(distinct) / float64(len(keywords))
	density := float64(occurrences) / float64(len(strings.Fields(paragraph)))

	return coverage*10 + density
}

// condense trims an answer paragraph down to a few sentences.
func condense(paragraph string) string {
	const maxLen = 600
	if len(paragraph) <= maxLen {
		return paragraph
	}

	cut := paragraph[:maxLen]
	if idx := strings.LastIndexAny(cut, ".!?"); idx > maxLen/2 {
		return strings.TrimSpace(cut[:idx+1])
	}
	return strings.TrimSpace(cut)
}
