// Package models defines the data structures shared by the corpus, research engine, server and CLI.
package models

import (
	"time"

	"github.com/hyperjump/kiji/internal/sentiment"
)

// Article is one news item from the dataset.
type Article struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Link        string              `json:"link,omitempty"`
	GUID        string              `json:"guid,omitempty"`
	PubDate     *time.Time          `json:"pubdate,omitempty"`
	Sentiment   sentiment.Sentiment `json:"sentiment"`
}
