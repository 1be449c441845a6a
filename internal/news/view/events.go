package view

import "github.com/zappabad/optionsim/internal/news"

// NewsEvent is delivered to subscribers each time a news item is published.
type NewsEvent struct {
	Item news.Item
}
