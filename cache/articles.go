// Package cache holds the in-memory article and association caches.
//
// Both caches expose an immutable snapshot behind an atomically swapped
// pointer: readers load the current snapshot without locking, the single
// writer builds a complete replacement and swaps it in. A reader therefore
// sees either the pre-load or post-load state in full, never a mix.
package cache

import (
	"sort"
	"sync/atomic"

	"github.com/inkwell-blog/inkwell/blog"
	"github.com/inkwell-blog/inkwell/pkg/collate"
)

type articleSnapshot struct {
	byAID map[uint32]blog.Article
	// ordered by the recency key, most recently modified first
	ordered []blog.Article
}

// ArticleCache is a read-heavy map from article id to article content.
// A nil snapshot means the cache has never been populated, which is distinct
// from a populated-but-empty snapshot.
type ArticleCache struct {
	snap atomic.Pointer[articleSnapshot]
}

// NewArticleCache returns an unpopulated cache.
func NewArticleCache() *ArticleCache {
	return &ArticleCache{}
}

// Load replaces the cache contents with the given articles.
// This is the only mutating operation; it is expected to run rarely
// (startup, timer refresh, explicit invalidation) relative to reads.
func (c *ArticleCache) Load(articles []blog.Article) {
	snap := &articleSnapshot{
		byAID:   make(map[uint32]blog.Article, len(articles)),
		ordered: make([]blog.Article, len(articles)),
	}
	copy(snap.ordered, articles)
	sort.SliceStable(snap.ordered, func(i, j int) bool {
		return snap.ordered[i].Modified.After(snap.ordered[j].Modified)
	})
	for _, a := range snap.ordered {
		snap.byAID[a.AID] = a
	}
	c.snap.Store(snap)
}

// RetrieveArticle looks up a single article by id.
func (c *ArticleCache) RetrieveArticle(aid uint32) (blog.Article, bool) {
	snap := c.snap.Load()
	if snap == nil {
		return blog.Article{}, false
	}
	a, ok := snap.byAID[aid]
	return a, ok
}

// AllArticles returns a snapshot of every cached article in recency order.
// It returns nil if the cache has never been populated.
func (c *ArticleCache) AllArticles() []blog.Article {
	snap := c.snap.Load()
	if snap == nil {
		return nil
	}
	out := make([]blog.Article, len(snap.ordered))
	copy(out, snap.ordered)
	return out
}

// NumArticles returns the number of cached articles.
func (c *ArticleCache) NumArticles() uint32 {
	snap := c.snap.Load()
	if snap == nil {
		return 0
	}
	return uint32(len(snap.ordered))
}

// PaginatedArticles returns the slice of articles for the requested page
// plus the total count needed to render page links. The page number is
// clamped, so out-of-range requests saturate instead of erroring.
// The bool is false on an unpopulated cache, which callers treat as a miss.
func (c *ArticleCache) PaginatedArticles(page collate.Page) ([]blog.Article, uint32, bool) {
	snap := c.snap.Load()
	if snap == nil {
		return nil, 0, false
	}
	articles, total := paginate(snap.ordered, page)
	return articles, total, true
}

// paginate slices the clamped page window out of articles.
// The window is additionally clamped against the actual slice length, so a
// total that shrank since the page was computed can never index out of
// bounds.
func paginate(articles []blog.Article, page collate.Page) ([]blog.Article, uint32) {
	total := uint32(len(articles))
	if total == 0 {
		return nil, 0
	}
	start, end := page.Window(total)
	if start >= total {
		return nil, total
	}
	if end >= total {
		end = total - 1
	}
	out := make([]blog.Article, end-start+1)
	copy(out, articles[start:end+1])
	return out, total
}
