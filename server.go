// Package inkwell is the blog server: route handlers assemble page contexts
// from the in-memory caches (falling back to the store on a miss), render
// them, and ship the result through an express envelope with
// client-negotiated compression.
package inkwell

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-blog/inkwell/cache"
	"github.com/inkwell-blog/inkwell/store"
)

// Server wires the caches, the store, and the route handlers together.
type Server struct {
	cfg      Config
	store    *store.Store
	articles *cache.ArticleCache
	aids     *cache.AidCache
	hits     *Hits
	log      zerolog.Logger
}

// NewServer creates the server and, when configured, starts the background
// cache refresh loop.
func NewServer(cfg Config, st *store.Store, logger *zerolog.Logger) *Server {
	// use the global logger if not specified in config
	l := log.Logger
	if logger != nil {
		l = *logger
	}
	l = l.With().Str("site", cfg.BlogURL).Logger()

	s := &Server{
		cfg:      cfg,
		store:    st,
		articles: cache.NewArticleCache(),
		aids:     cache.NewAidCache(),
		hits:     LoadHits(cfg.HitsDir, l),
		log:      l,
	}
	if cfg.RefreshInterval > 0 {
		go s.refreshLoop(time.Duration(cfg.RefreshInterval) * time.Second)
	}
	return s
}

// Reload rebuilds both cache snapshots from the store. Readers keep serving
// the previous snapshot until the swap.
func (s *Server) Reload(ctx context.Context) error {
	articles, err := s.store.All(ctx)
	if err != nil {
		return err
	}
	s.articles.Load(articles)
	s.aids.Load(s.articles.AllArticles())
	s.log.Info().Int("articles", len(articles)).Msg("Caches reloaded")
	return nil
}

// refreshLoop periodically reloads the caches. Reload failures keep the
// previous snapshot in place and are retried next tick.
func (s *Server) refreshLoop(interval time.Duration) {
	s.log.Info().Msgf("Starting cache refresh loop with interval %s", interval)
	for {
		time.Sleep(interval)
		if err := s.Reload(context.Background()); err != nil {
			s.log.Error().Err(err).Msg("Could not refresh caches")
		}
	}
}

// Handler returns the site's routes.
func (s *Server) Handler() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.handleIndex)
	r.Get("/view", s.handleIndex)
	r.Get("/article/{aid}", s.handleArticle)
	r.Get("/article/{aid}/*", s.handleArticle)
	r.Get("/tag/{tag}", s.handleTag)
	r.Get("/all_tags", s.handleTags)
	r.Get("/author/{id}", s.handleAuthor)
	r.Get("/author/{id}/*", s.handleAuthor)
	r.Get("/rss.xml", s.handleRSS)
	r.Get("/search", s.handleSearch)
	r.Get("/pageviews", s.handlePageviews)
	r.Get("/static/*", s.handleStatic)
	return r
}
