package inkwell

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-blog/inkwell/blog"
	"github.com/inkwell-blog/inkwell/cache"
	"github.com/inkwell-blog/inkwell/pkg/collate"
	"github.com/inkwell-blog/inkwell/pkg/express"
	"github.com/inkwell-blog/inkwell/pkg/feed"
)

const rssContentType = "application/rss+xml; charset=utf-8"

// respond negotiates compression from the request and consumes the envelope.
// A send failure at this point means no headers were written yet, so a plain
// server error is still possible.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, ex express.Express) {
	ex = ex.Compress(express.FromRequest(r)).WithTTL(s.cfg.DefaultTTL)
	if err := ex.Send(w); err != nil {
		s.log.Error().Err(err).Str("url", r.URL.String()).Msg("Could not send response")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// meta records the hit and assembles the shared page metadata.
func (s *Server) meta(title string, r *http.Request, start time.Time) PageMeta {
	pageHits, totalHits := s.hits.Hit(r.URL.Path)
	return PageMeta{
		Title:     title,
		Route:     r.URL.Path,
		PageHits:  pageHits,
		TotalHits: totalHits,
		Generated: time.Since(start),
	}
}

func (s *Server) serveError(w http.ResponseWriter, r *http.Request, start time.Time, title, msg string) {
	ctx := ErrorContext{Meta: s.meta(title, r, start), Message: msg}
	s.respond(w, r, express.NewRendered(renderError(s.cfg.SiteTitle, ctx)))
}

// checkServable guards every content route against the configuration
// violation of having neither cache nor fallback enabled. The binary refuses
// to start in that state; if it is reached anyway the user gets a soft error
// page instead of content.
func (s *Server) checkServable(w http.ResponseWriter, r *http.Request, start time.Time) bool {
	if s.cfg.UseCache || s.cfg.UseFallback {
		return true
	}
	s.log.Error().Msg("SUPER ERROR: cache and store fallback are both disabled, cannot serve content")
	s.serveError(w, r, start, "Server Error", "The server is misconfigured and cannot serve content.")
	return false
}

// paginatedArticles reads the requested page from the article cache, falling
// back to store queries on a miss.
func (s *Server) paginatedArticles(r *http.Request, page collate.Page) ([]blog.Article, uint32, bool) {
	if s.cfg.UseCache {
		if articles, total, ok := s.articles.PaginatedArticles(page); ok {
			return articles, total, true
		}
	}
	if s.cfg.UseFallback {
		s.log.Debug().Str("route", page.Route).Msg("Article cache miss, falling back to store")
		total, err := s.store.CountAll(r.Context())
		if err != nil || total == 0 {
			return nil, 0, false
		}
		limit, offset := clampedLimits(page, total)
		articles, err := s.store.Paginated(r.Context(), limit, offset)
		if err != nil {
			s.log.Error().Err(err).Msg("Store fallback failed")
			return nil, 0, false
		}
		return articles, total, len(articles) > 0
	}
	return nil, 0, false
}

// clampedLimits derives LIMIT/OFFSET from the clamped page so the fallback
// query and the rendered page links agree.
func clampedLimits(page collate.Page, total uint32) (uint32, uint32) {
	start, _ := page.Window(total)
	limit, _ := page.Limits()
	return limit, start
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	page := collate.FromRequest(r)
	articles, total, ok := s.paginatedArticles(r, page)
	if !ok {
		s.serveError(w, r, start, "Viewing Articles", "There are no articles.")
		return
	}
	_, cur, numPages := page.PageData(total)
	ctx := ArticlesContext{
		Meta:       s.meta(fmt.Sprintf("Viewing Articles - Page %d of %d", cur, numPages), r, start),
		Articles:   articles,
		Total:      total,
		Navigation: page.Navigation(total),
		Info:       page.PageInfo(total),
	}
	s.respond(w, r, express.NewRendered(renderArticles(s.cfg.SiteTitle, ctx)))
}

// lookupArticle reads one article from the cache, then the store.
func (s *Server) lookupArticle(r *http.Request, aid uint32) (blog.Article, bool) {
	if s.cfg.UseCache {
		if a, ok := s.articles.RetrieveArticle(aid); ok {
			return a, true
		}
	}
	if s.cfg.UseFallback {
		s.log.Debug().Uint32("aid", aid).Msg("Article cache miss, falling back to store")
		a, ok, err := s.store.ByAID(r.Context(), aid)
		if err != nil {
			s.log.Error().Err(err).Uint32("aid", aid).Msg("Store fallback failed")
			return blog.Article{}, false
		}
		return a, ok
	}
	return blog.Article{}, false
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	aid64, err := strconv.ParseUint(chi.URLParam(r, "aid"), 10, 32)
	if err != nil || aid64 == 0 {
		s.serveError(w, r, start, "Article Not Found", "Article not found.")
		return
	}
	aid := uint32(aid64)
	article, ok := s.lookupArticle(r, aid)
	if !ok {
		s.serveError(w, r, start, "Article Not Found", fmt.Sprintf("Article %d not found.", aid))
		return
	}
	ctx := ArticleContext{Meta: s.meta(article.Title, r, start), Article: article}
	s.respond(w, r, express.NewRendered(renderArticle(s.cfg.SiteTitle, ctx)))
}

func (s *Server) handleTag(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	tag := chi.URLParam(r, "tag")
	page := collate.FromRequest(r)

	var articles []blog.Article
	var total uint32
	ok := false
	if s.cfg.UseCache {
		articles, total, ok = s.aids.TagArticles(s.articles, tag, page)
	}
	if !ok && s.cfg.UseFallback {
		s.log.Debug().Str("tag", tag).Msg("Tag cache miss, falling back to store")
		articles, total, ok = s.tagFallback(r, tag, page)
	}
	if !ok {
		s.serveError(w, r, start, "Articles Not Found",
			"Could not find any articles with the specified tag.")
		return
	}
	ctx := ArticlesContext{
		Meta:       s.meta("Viewing Articles with Tag: "+tag, r, start),
		Articles:   articles,
		Total:      total,
		Navigation: page.Navigation(total),
		Info:       page.PageInfo(total),
	}
	s.respond(w, r, express.NewRendered(renderArticles(s.cfg.SiteTitle, ctx)))
}

func (s *Server) tagFallback(r *http.Request, tag string, page collate.Page) ([]blog.Article, uint32, bool) {
	total, err := s.store.CountTag(r.Context(), tag)
	if err != nil || total == 0 {
		return nil, 0, false
	}
	limit, offset := clampedLimits(page, total)
	articles, err := s.store.ByTag(r.Context(), tag, limit, offset)
	if err != nil {
		s.log.Error().Err(err).Str("tag", tag).Msg("Store fallback failed")
		return nil, 0, false
	}
	return articles, total, len(articles) > 0
}

func (s *Server) handleAuthor(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	id64, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id64 == 0 {
		s.serveError(w, r, start, "Author Not Found", "Author not found.")
		return
	}
	userID := uint32(id64)
	page := collate.FromRequest(r)

	var articles []blog.Article
	var total uint32
	ok := false
	if s.cfg.UseCache {
		articles, total, ok = s.aids.AuthorArticles(s.articles, userID, page)
	}
	if !ok && s.cfg.UseFallback {
		s.log.Debug().Uint32("author", userID).Msg("Author cache miss, falling back to store")
		articles, total, ok = s.authorFallback(r, userID, page)
	}
	if !ok {
		s.serveError(w, r, start, "Articles Not Found",
			"Could not find any articles by the specified author.")
		return
	}
	title := "Viewing Articles by Author"
	if len(articles) > 0 {
		title = "Viewing Articles by " + articles[0].UserName
	}
	ctx := ArticlesContext{
		Meta:       s.meta(title, r, start),
		Articles:   articles,
		Total:      total,
		Navigation: page.Navigation(total),
		Info:       page.PageInfo(total),
	}
	s.respond(w, r, express.NewRendered(renderArticles(s.cfg.SiteTitle, ctx)))
}

func (s *Server) authorFallback(r *http.Request, userID uint32, page collate.Page) ([]blog.Article, uint32, bool) {
	total, err := s.store.CountAuthor(r.Context(), userID)
	if err != nil || total == 0 {
		return nil, 0, false
	}
	limit, offset := clampedLimits(page, total)
	articles, err := s.store.ByAuthor(r.Context(), userID, limit, offset)
	if err != nil {
		s.log.Error().Err(err).Uint32("author", userID).Msg("Store fallback failed")
		return nil, 0, false
	}
	return articles, total, len(articles) > 0
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	var tags []blog.TagCount
	if s.cfg.UseCache {
		tags = s.aids.RetrieveTags()
	}
	if tags == nil && s.cfg.UseFallback {
		s.log.Debug().Msg("Tag cloud cache miss, falling back to store")
		if articles, err := s.store.All(r.Context()); err == nil {
			aids := cache.NewAidCache()
			aids.Load(articles)
			tags = aids.RetrieveTags()
		}
	}
	if len(tags) == 0 {
		s.serveError(w, r, start, "Viewing All Tags", "There are no tags yet.")
		return
	}
	ctx := TagsContext{Meta: s.meta("Viewing All Tags", r, start), Tags: tags}
	s.respond(w, r, express.NewRendered(renderTags(s.cfg.SiteTitle, ctx)))
}

// allArticles returns the full article snapshot for feed building.
func (s *Server) allArticles(r *http.Request) []blog.Article {
	if s.cfg.UseCache {
		if articles := s.articles.AllArticles(); articles != nil {
			return articles
		}
	}
	if s.cfg.UseFallback {
		s.log.Debug().Msg("Article cache unpopulated, falling back to store for feed")
		if articles, err := s.store.All(r.Context()); err == nil {
			return articles
		}
	}
	return nil
}

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	query := r.URL.Query()
	tag := query.Get("tag")
	var author uint32
	if v, err := strconv.ParseUint(query.Get("author"), 10, 32); err == nil {
		author = uint32(v)
	}

	cfg := feed.Boilerplate(s.cfg.SiteTitle, s.cfg.BlogURL, s.cfg.SiteDescription, s.cfg.Copyright)
	if tag != "" {
		cfg.Title = s.cfg.SiteTitle + " - Tag: " + tag
		cfg.Link = s.cfg.BlogURL + "tag/" + strings.ToLower(tag)
	} else if author != 0 {
		cfg.Title = fmt.Sprintf("%s - Author %d", s.cfg.SiteTitle, author)
		cfg.Link = fmt.Sprintf("%sauthor/%d", s.cfg.BlogURL, author)
	}

	selected := feed.Filter(s.allArticles(r), tag, author, true)
	xml, err := feed.Build(cfg, selected, s.log)
	if err != nil {
		s.log.Warn().Err(err).Str("tag", tag).Uint32("author", author).Msg("Could not build feed")
		fallback := express.NewString("The feed is currently unavailable.").
			WithContentType(rssContentType)
		s.respond(w, r, fallback)
		return
	}
	s.hits.Hit(r.URL.Path)
	s.respond(w, r, express.NewString(xml).WithContentType(rssContentType))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if !s.checkServable(w, r, start) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		s.serveError(w, r, start, "Search", "Enter a search term.")
		return
	}
	var matches []blog.Article
	for _, a := range s.allArticles(r) {
		if strings.Contains(strings.ToLower(a.Title), strings.ToLower(q)) ||
			strings.Contains(strings.ToLower(a.Body), strings.ToLower(q)) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		s.serveError(w, r, start, "Search Results", "No articles matched the search.")
		return
	}
	page := collate.FromRequest(r)
	total := uint32(len(matches))
	startIdx, endIdx := page.Window(total)
	if endIdx >= total {
		endIdx = total - 1
	}
	ctx := ArticlesContext{
		Meta:       s.meta("Search Results: "+q, r, start),
		Articles:   matches[startIdx : endIdx+1],
		Total:      total,
		Navigation: page.Navigation(total),
		Info:       page.PageInfo(total),
	}
	s.respond(w, r, express.NewRendered(renderArticles(s.cfg.SiteTitle, ctx)))
}

func (s *Server) handlePageviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var b strings.Builder
	b.WriteString("<ul>\n")
	for route, count := range s.hits.Pages() {
		fmt.Fprintf(&b, "<li>%s: %d</li>\n", route, count)
	}
	fmt.Fprintf(&b, "</ul>\n<p>Total: %d</p>", s.hits.Total())
	ctx := s.meta("Page Views", r, start)
	s.respond(w, r, express.NewRendered(renderPage(s.cfg.SiteTitle, ctx, b.String())))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	rel := chi.URLParam(r, "*")
	// reject path escapes before touching the filesystem
	clean := path.Clean("/" + rel)
	full := filepath.Join(s.cfg.StaticDir, filepath.FromSlash(clean))
	ex := express.NewFile(full).Compress(express.FromRequest(r)).WithTTL(s.cfg.DefaultTTL)
	if err := ex.Send(w); err != nil {
		s.log.Debug().Err(err).Str("path", full).Msg("Could not serve static file")
		http.NotFound(w, r)
	}
}
