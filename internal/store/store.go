// Package store provides SQLite persistence for the development backend.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when an article or user does not exist.
var ErrNotFound = errors.New("store: not found")

// DateLayout is how publication dates are stored and served.
const DateLayout = "2006-01-02T15:04:05"

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Article is a stored research paper.
type Article struct {
	ID        int64
	Title     string
	Authors   []string
	Abstract  string
	FullText  string
	Summary   string
	Published time.Time // zero when unknown
	ArxivID   string    // empty for hand-entered articles
	Relevance float64
	Favorite  bool
}

// Open creates a Store at dbPath, creating tables if needed. ":memory:"
// gives a private in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One connection per in-memory database, otherwise each pooled
	// connection sees its own empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		authors TEXT NOT NULL,
		abstract TEXT NOT NULL,
		full_text TEXT,
		summary TEXT,
		publication_date TEXT,
		arxiv_id TEXT UNIQUE,
		relevance REAL DEFAULT 0,
		is_favorite INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_articles_date ON articles(publication_date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveArticles inserts articles and returns how many were new. Articles
// whose arXiv id is already stored are skipped. Articles without an arXiv
// id are always inserted.
func (s *Store) SaveArticles(articles []Article) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO articles (
			title, authors, abstract, full_text, summary,
			publication_date, arxiv_id, relevance, is_favorite
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	added := 0
	for _, a := range articles {
		res, err := stmt.Exec(
			a.Title,
			strings.Join(a.Authors, ", "),
			a.Abstract,
			nullString(a.FullText),
			nullString(a.Summary),
			formatDate(a.Published),
			nullString(a.ArxivID),
			a.Relevance,
			boolToInt(a.Favorite),
		)
		if err != nil {
			return 0, fmt.Errorf("insert %q: %w", a.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return added, nil
}

const articleColumns = `id, title, authors, abstract, full_text, summary,
	publication_date, arxiv_id, relevance, is_favorite`

// All returns every article in insertion order.
func (s *Store) All() ([]Article, error) {
	return s.query(`SELECT ` + articleColumns + ` FROM articles ORDER BY id`)
}

// List returns the first limit articles in insertion order.
func (s *Store) List(limit int) ([]Article, error) {
	return s.query(`SELECT `+articleColumns+` FROM articles ORDER BY id LIMIT ?`, limit)
}

// Search returns articles whose title, abstract or full text contains
// query, ignoring ASCII case. An empty query returns every article.
func (s *Store) Search(query string) ([]Article, error) {
	if query == "" {
		return s.All()
	}
	pattern := "%" + escapeLike(query) + "%"
	return s.query(`
		SELECT `+articleColumns+` FROM articles
		WHERE title LIKE ? ESCAPE '\'
			OR abstract LIKE ? ESCAPE '\'
			OR full_text LIKE ? ESCAPE '\'
		ORDER BY id`, pattern, pattern, pattern)
}

// Favorites returns articles marked as favorite.
func (s *Store) Favorites() ([]Article, error) {
	return s.query(`SELECT ` + articleColumns + ` FROM articles WHERE is_favorite = 1 ORDER BY id`)
}

// Get returns one article by id.
func (s *Store) Get(id int64) (Article, error) {
	articles, err := s.query(`SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	if err != nil {
		return Article{}, err
	}
	if len(articles) == 0 {
		return Article{}, ErrNotFound
	}
	return articles[0], nil
}

// Count returns the number of stored articles.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}

// SetFavorite sets or clears the favorite flag on article id.
func (s *Store) SetFavorite(id int64, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE articles SET is_favorite = ? WHERE id = ?`, boolToInt(favorite), id)
	if err != nil {
		return fmt.Errorf("set favorite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) query(q string, args ...any) ([]Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var (
			a                          Article
			authors                    string
			fullText, summary, arxivID sql.NullString
			date                       sql.NullString
			fav                        int
		)
		if err := rows.Scan(&a.ID, &a.Title, &authors, &a.Abstract, &fullText, &summary,
			&date, &arxivID, &a.Relevance, &fav); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Authors = splitAuthors(authors)
		a.FullText = fullText.String
		a.Summary = summary.String
		a.ArxivID = arxivID.String
		a.Favorite = fav != 0
		if date.Valid {
			a.Published = parseDate(date.String)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func splitAuthors(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func formatDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(DateLayout)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
