package llm

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

// Cache persists model answers keyed by provider and prompt so that re-running
// a search over the same sites costs no additional API calls.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens or creates the response cache at path.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL",
		`CREATE TABLE IF NOT EXISTS responses (
			key        TEXT PRIMARY KEY,
			provider   TEXT NOT NULL,
			prompt     TEXT NOT NULL,
			answer     TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
	}

	return &Cache{db: db, path: path}, nil
}

// Get returns a cached answer.
func (c *Cache) Get(ctx context.Context, provider, prompt string) (string, bool) {
	var answer string
	err := c.db.QueryRowContext(ctx,
		"SELECT answer FROM responses WHERE key = ?", cacheKey(provider, prompt),
	).Scan(&answer)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Debug().Err(err).Msg("LLM cache lookup failed")
		}
		return "", false
	}
	return answer, true
}

// Put stores an answer. Failures are logged and otherwise ignored.
func (c *Cache) Put(ctx context.Context, provider, prompt, answer string) {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO responses (key, provider, prompt, answer, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET answer = excluded.answer, created_at = excluded.created_at`,
		cacheKey(provider, prompt), provider, prompt, answer, time.Now().Unix(),
	)
	if err != nil {
		log.Debug().Err(err).Msg("LLM cache write failed")
	}
}

// Len returns the number of cached answers.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM responses").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Path returns the database file location.
func (c *Cache) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

func cacheKey(provider, prompt string) string {
	sum := sha256.Sum256([]byte(provider + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}
