// Package feed filters articles and assembles the RSS document.
package feed

import (
	"errors"
	"time"

	"github.com/gorilla/feeds"
	"github.com/rs/zerolog"

	"github.com/inkwell-blog/inkwell/blog"
)

// DefaultTTLMinutes is the channel TTL when no override is given: half a day.
const DefaultTTLMinutes = 720

// ErrEmptyFeed is returned when filtering leaves no articles to publish.
var ErrEmptyFeed = errors.New("feed: no matching articles")

// Config is the channel-level metadata, injected so tests can substitute
// fixtures. Link must be the base URL of the site including trailing slash.
type Config struct {
	Title       string
	Link        string
	Description string
	Copyright   string
	TTLMinutes  int
}

// Boilerplate returns the fixed fallback channel metadata for a site.
func Boilerplate(siteTitle, baseURL, description, copyright string) Config {
	return Config{
		Title:       siteTitle,
		Link:        baseURL,
		Description: description,
		Copyright:   copyright,
		TTLMinutes:  DefaultTTLMinutes,
	}
}

// Filter selects the articles for a feed. Both filters present means author
// AND tag; absent filters (empty tag, zero author) do not constrain. The
// tag match is case-insensitive. Articles are cloned in short or full form
// per the short flag. A nil result is the empty-feed failure signal.
func Filter(articles []blog.Article, tag string, author uint32, short bool) []blog.Article {
	var out []blog.Article
	for _, a := range articles {
		if tag != "" && !a.HasTag(tag) {
			continue
		}
		if author != 0 && a.UserID != author {
			continue
		}
		if short {
			out = append(out, a.ShortClone())
		} else {
			out = append(out, a.Clone())
		}
	}
	return out
}

// Build assembles the RSS XML document for the given articles. Entries that
// cannot be constructed are logged and skipped; only an entirely empty feed
// is an error.
func Build(cfg Config, articles []blog.Article, log zerolog.Logger) (string, error) {
	ttl := cfg.TTLMinutes
	if ttl == 0 {
		ttl = DefaultTTLMinutes
	}
	rss := &feeds.RssFeed{
		Title:         cfg.Title,
		Link:          cfg.Link,
		Description:   cfg.Description,
		Copyright:     cfg.Copyright,
		Ttl:           ttl,
		LastBuildDate: time.Now().Format(time.RFC1123Z),
		TextInput: &feeds.RssTextInput{
			Title:       "Search",
			Description: "Search the site",
			Name:        "q",
			Link:        cfg.Link + "search",
		},
	}
	for _, a := range articles {
		item, err := buildItem(cfg, a)
		if err != nil {
			log.Warn().Err(err).Uint32("aid", a.AID).Msg("Skipping feed entry")
			continue
		}
		rss.Items = append(rss.Items, item)
	}
	if len(rss.Items) == 0 {
		return "", ErrEmptyFeed
	}
	return feeds.ToXML(rss)
}

// buildItem constructs one syndication entry. The permalink doubles as the
// entry's globally unique identifier.
func buildItem(cfg Config, a blog.Article) (*feeds.RssItem, error) {
	if a.AID == 0 {
		return nil, errors.New("article has no id")
	}
	if a.Title == "" {
		return nil, errors.New("article has no title")
	}
	desc := a.Description
	if desc == "" {
		desc = blog.Truncate(a.Body, blog.DescriptionLimit)
	}
	link := a.Permalink(cfg.Link)
	return &feeds.RssItem{
		Title:       a.Title,
		Link:        link,
		Description: desc,
		Author:      a.UserName,
		Guid:        link,
		PubDate:     a.Posted.Format(time.RFC1123Z),
	}, nil
}
