package blog

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// DescriptionLimit caps the length of a generated summary, in characters.
const DescriptionLimit = 200

// Article is a single blog post as loaded from the store.
// The AID is assigned by the store and never changes afterwards.
type Article struct {
	AID         uint32
	Title       string
	Posted      time.Time
	Body        string
	Tags        []string
	Description string
	UserID      uint32
	UserName    string
	Image       string
	Markdown    bool
	Modified    time.Time
}

// Clone returns a full copy of the article.
func (a Article) Clone() Article {
	out := a
	out.Tags = append([]string(nil), a.Tags...)
	return out
}

// ShortClone returns a summary copy used in feeds: the body is dropped and
// the description falls back to a truncated body when not set explicitly.
func (a Article) ShortClone() Article {
	out := a.Clone()
	if out.Description == "" {
		out.Description = Truncate(out.Body, DescriptionLimit)
	}
	out.Body = ""
	return out
}

// HasTag reports whether the article carries the given tag.
// Matching is case-insensitive; tags keep their original case for display.
func (a Article) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Permalink returns the canonical URL of the article under the given base
// URL, e.g. "https://example.com/article/42/Some%20Title".
func (a Article) Permalink(base string) string {
	return fmt.Sprintf("%sarticle/%d/%s", base, a.AID, url.PathEscape(a.Title))
}

// Truncate shortens s to at most limit characters.
// The cut is made on a rune boundary, never inside a multi-byte sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// TagCount pairs a tag with the number of articles carrying it.
// The tag cloud is a list of these, recomputed on every cache load.
type TagCount struct {
	Tag   string
	Count uint32
}
