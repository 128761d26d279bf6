package models

import (
	"time"
)

// Job is a listing in the jobs catalog (mongo-backed). Listings are fed in
// by an external scraper; this service only stores, searches and ranks them.
type Job struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Company     string    `bson:"company" json:"company"`
	Location    string    `bson:"location" json:"location"`
	Description string    `bson:"description" json:"description"`
	URL         string    `bson:"url" json:"url"`
	Source      string    `bson:"source" json:"source"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`

	// Relevance is computed per search, not stored.
	Relevance float64 `bson:"-" json:"relevance"`
}
