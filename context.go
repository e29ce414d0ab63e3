package inkwell

import (
	"time"

	"github.com/inkwell-blog/inkwell/blog"
)

// PageMeta is the shared metadata handed to the template layer with every
// context: page title, the route being served, hit counters, and how long
// the page took to generate.
type PageMeta struct {
	Title     string
	Route     string
	PageHits  uint64
	TotalHits uint64
	Generated time.Duration
}

// ArticlesContext is the success payload for paginated listings: index,
// tag pages, author pages, and search results.
type ArticlesContext struct {
	Meta       PageMeta
	Articles   []blog.Article
	Total      uint32
	Navigation string
	Info       string
}

// ArticleContext is the success payload for a single article page.
type ArticleContext struct {
	Meta    PageMeta
	Article blog.Article
}

// TagsContext is the success payload for the tag cloud page.
type TagsContext struct {
	Meta PageMeta
	Tags []blog.TagCount
}

// ErrorContext is the failure payload: a user-visible informational message
// rendered as a normal page, not a 5xx.
type ErrorContext struct {
	Meta    PageMeta
	Message string
}
