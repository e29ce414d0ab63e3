package cache

import (
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/inkwell-blog/inkwell/blog"
	"github.com/inkwell-blog/inkwell/pkg/collate"
)

type aidSnapshot struct {
	// route-shaped key ("tag/rust", "author/42") to ordered article ids
	aids map[string][]uint32
	tags []blog.TagCount
}

// AidCache maps route-shaped keys to the ordered article ids belonging to
// them. It is populated from the same article snapshot as the ArticleCache,
// so association lists share the article recency order.
type AidCache struct {
	snap atomic.Pointer[aidSnapshot]
}

// TagKey and AuthorKey build the composite keys used by the cache.
func TagKey(tag string) string {
	return "tag/" + strings.ToLower(tag)
}

func AuthorKey(userID uint32) string {
	return "author/" + strconv.FormatUint(uint64(userID), 10)
}

// NewAidCache returns an unpopulated association cache.
func NewAidCache() *AidCache {
	return &AidCache{}
}

// Load derives tag and author associations plus the tag cloud from an
// article list. The list must already be in recency order.
func (c *AidCache) Load(articles []blog.Article) {
	snap := &aidSnapshot{
		aids: make(map[string][]uint32),
	}
	counts := make(map[string]uint32)
	display := make(map[string]string)
	for _, a := range articles {
		authorKey := AuthorKey(a.UserID)
		snap.aids[authorKey] = append(snap.aids[authorKey], a.AID)
		for _, tag := range a.Tags {
			key := TagKey(tag)
			snap.aids[key] = append(snap.aids[key], a.AID)
			lower := strings.ToLower(tag)
			counts[lower]++
			if _, ok := display[lower]; !ok {
				display[lower] = tag
			}
		}
	}
	snap.tags = make([]blog.TagCount, 0, len(counts))
	for lower, count := range counts {
		snap.tags = append(snap.tags, blog.TagCount{Tag: display[lower], Count: count})
	}
	sort.Slice(snap.tags, func(i, j int) bool {
		return strings.ToLower(snap.tags[i].Tag) < strings.ToLower(snap.tags[j].Tag)
	})
	c.snap.Store(snap)
}

// RetrieveAids returns the raw id list for a composite key, nil if unknown.
func (c *AidCache) RetrieveAids(key string) []uint32 {
	snap := c.snap.Load()
	if snap == nil {
		return nil
	}
	aids, ok := snap.aids[key]
	if !ok {
		return nil
	}
	out := make([]uint32, len(aids))
	copy(out, aids)
	return out
}

// RetrieveTags returns the full tag cloud with per-tag counts.
// It returns nil if the cache has never been populated.
func (c *AidCache) RetrieveTags() []blog.TagCount {
	snap := c.snap.Load()
	if snap == nil {
		return nil
	}
	out := make([]blog.TagCount, len(snap.tags))
	copy(out, snap.tags)
	return out
}

// TagArticles resolves a tag to its articles via the article cache and
// paginates the joined result. The bool is false when the tag is unknown or
// yields no articles.
func (c *AidCache) TagArticles(articles *ArticleCache, tag string, page collate.Page) ([]blog.Article, uint32, bool) {
	return c.join(articles, TagKey(tag), page)
}

// AuthorArticles is TagArticles keyed by author id.
func (c *AidCache) AuthorArticles(articles *ArticleCache, userID uint32, page collate.Page) ([]blog.Article, uint32, bool) {
	return c.join(articles, AuthorKey(userID), page)
}

func (c *AidCache) join(articles *ArticleCache, key string, page collate.Page) ([]blog.Article, uint32, bool) {
	aids := c.RetrieveAids(key)
	if len(aids) == 0 {
		return nil, 0, false
	}
	// ids can be stale relative to the article snapshot during a reload;
	// missing ids are dropped rather than surfaced
	joined := make([]blog.Article, 0, len(aids))
	for _, aid := range aids {
		if a, ok := articles.RetrieveArticle(aid); ok {
			joined = append(joined, a)
		}
	}
	if len(joined) == 0 {
		return nil, 0, false
	}
	slice, total := paginate(joined, page)
	return slice, total, true
}
