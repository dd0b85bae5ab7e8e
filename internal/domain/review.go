package domain

import "time"

// MaxListedReviews caps how many reviews the board returns.
const MaxListedReviews = 50

type Review struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
