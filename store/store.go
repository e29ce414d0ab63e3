// Package store persists articles in sqlite. It is the load source for the
// caches and the fallback query path when a cache misses.
package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/inkwell-blog/inkwell/blog"
)

const articleColumns = "aid, title, posted, body, tags, description, userid, username, image, markdown, modified"

// Store wraps the sqlite database holding the articles.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the article database.
// Use "file::memory:?cache=shared" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS articles (
		aid INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		posted INTEGER NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		userid INTEGER NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		image TEXT NOT NULL DEFAULT '',
		markdown INTEGER NOT NULL DEFAULT 0,
		modified INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS modified_idx ON articles (modified DESC)")
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Insert stores a new article and returns its assigned id.
func (s *Store) Insert(ctx context.Context, a blog.Article) (uint32, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO articles (title, posted, body, tags, description, userid, username, image, markdown, modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Title, a.Posted.Unix(), a.Body, joinTags(a.Tags), a.Description,
		a.UserID, a.UserName, a.Image, boolToInt(a.Markdown), a.Modified.Unix())
	if err != nil {
		return 0, err
	}
	aid, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint32(aid), nil
}

// All returns every article, most recently modified first.
// It is the cache load path.
func (s *Store) All(ctx context.Context) ([]blog.Article, error) {
	return s.queryArticles(ctx,
		"SELECT "+articleColumns+" FROM articles ORDER BY modified DESC")
}

// ByAID returns a single article by id.
func (s *Store) ByAID(ctx context.Context, aid uint32) (blog.Article, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE aid = ?", aid)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return blog.Article{}, false, nil
	}
	if err != nil {
		return blog.Article{}, false, err
	}
	return a, true, nil
}

// Paginated returns a page of articles in recency order.
func (s *Store) Paginated(ctx context.Context, limit, offset uint32) ([]blog.Article, error) {
	return s.queryArticles(ctx,
		"SELECT "+articleColumns+" FROM articles ORDER BY modified DESC LIMIT ? OFFSET ?",
		limit, offset)
}

// ByTag returns a page of articles carrying the given tag.
// Tags are stored as a comma-separated list; matching is case-insensitive.
func (s *Store) ByTag(ctx context.Context, tag string, limit, offset uint32) ([]blog.Article, error) {
	return s.queryArticles(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE (','||lower(tags)||',') LIKE '%,'||?||',%' ORDER BY modified DESC LIMIT ? OFFSET ?",
		strings.ToLower(tag), limit, offset)
}

// ByAuthor returns a page of articles by the given author.
func (s *Store) ByAuthor(ctx context.Context, userID uint32, limit, offset uint32) ([]blog.Article, error) {
	return s.queryArticles(ctx,
		"SELECT "+articleColumns+" FROM articles WHERE userid = ? ORDER BY modified DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
}

// CountAll returns the total number of articles.
func (s *Store) CountAll(ctx context.Context) (uint32, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM articles")
}

// CountTag returns the number of articles carrying the given tag.
func (s *Store) CountTag(ctx context.Context, tag string) (uint32, error) {
	return s.count(ctx,
		"SELECT COUNT(*) FROM articles WHERE (','||lower(tags)||',') LIKE '%,'||?||',%'",
		strings.ToLower(tag))
}

// CountAuthor returns the number of articles by the given author.
func (s *Store) CountAuthor(ctx context.Context, userID uint32) (uint32, error) {
	return s.count(ctx, "SELECT COUNT(*) FROM articles WHERE userid = ?", userID)
}

func (s *Store) count(ctx context.Context, query string, args ...any) (uint32, error) {
	var n uint32
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]blog.Article, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var articles []blog.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row scanner) (blog.Article, error) {
	var a blog.Article
	var posted, modified int64
	var tags string
	var markdown int
	err := row.Scan(&a.AID, &a.Title, &posted, &a.Body, &tags, &a.Description,
		&a.UserID, &a.UserName, &a.Image, &markdown, &modified)
	if err != nil {
		return blog.Article{}, err
	}
	a.Posted = time.Unix(posted, 0).UTC()
	a.Modified = time.Unix(modified, 0).UTC()
	a.Tags = splitTags(tags)
	a.Markdown = markdown != 0
	return a, nil
}

func joinTags(tags []string) string {
	trimmed := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return strings.Join(trimmed, ",")
}

func splitTags(tags string) []string {
	if tags == "" {
		return nil
	}
	parts := strings.Split(tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
