package api

import "time"

// SummaryRequest is the payload for creating a summary.
type SummaryRequest struct {
	Text         string `json:"text,omitempty"`
	SourceURL    string `json:"source_url,omitempty"`
	Language     string `json:"language,omitempty"`
	MaxSentences int    `json:"max_sentences,omitempty"`
}

// Summary is a stored summarization result.
type Summary struct {
	ID        string    `json:"id"`
	SourceURL string    `json:"source_url,omitempty"`
	Title     string    `json:"title,omitempty"`
	Text      string    `json:"text"`
	Language  string    `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryList is a paginated page of summaries.
type SummaryList struct {
	Items   []Summary `json:"items"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Total   int       `json:"total"`
}

// ProfileUpdate is the payload for updating the caller's profile.
type ProfileUpdate struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
}

// Profile is the caller's account profile.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Website   string    `json:"website,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
