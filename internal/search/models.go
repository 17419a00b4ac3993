package search

import "encoding/json"

// Typed view of the Brave web search response. Only the fields the
// pipeline actually reads are mapped; the full body is kept verbatim in
// Raw so the cache can store it without interpreting its shape.
type WebSearchResponse struct {
	Query QueryInfo  `json:"query"`
	Web   WebResults `json:"web"`

	Raw json.RawMessage `json:"-"`
}

type QueryInfo struct {
	Original string `json:"original"`
}

type WebResults struct {
	Results []WebResult `json:"results"`
}

type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// TopURLs returns up to n result URLs in ranking order.
func (r *WebSearchResponse) TopURLs(n int) []string {
	urls := make([]string, 0, n)
	for _, result := range r.Web.Results {
		if result.URL == "" {
			continue
		}
		urls = append(urls, result.URL)
		if len(urls) == n {
			break
		}
	}
	return urls
}

// ParseResponse decodes a raw response body, e.g. one replayed from the
// cache, back into the typed view.
func ParseResponse(raw json.RawMessage) (*WebSearchResponse, error) {
	var response WebSearchResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, err
	}
	response.Raw = raw
	return &response, nil
}
