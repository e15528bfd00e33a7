package models

import "time"

// NewsItem é uma notícia importada de um feed RSS
type NewsItem struct {
	ID          int64
	Category    string
	Title       string
	URL         string
	PublishedAt time.Time
}
