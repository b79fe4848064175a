package domain

import "time"

// Donation records a direct gift to a nonprofit found through cause search.
type Donation struct {
	ID          string    `json:"id"`
	NonprofitID string    `json:"nonprofitId"`
	Amount      float64   `json:"amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// Cause is a nonprofit returned by the upstream search collaborator.
type Cause struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Link        string `json:"link,omitempty"`
}
