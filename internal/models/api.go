package models

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type AskResponse struct {
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	SourceURL    string `json:"source_url,omitempty"`
	FromCache    bool   `json:"from_cache"`
	ResponseTime int    `json:"response_time_ms"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
