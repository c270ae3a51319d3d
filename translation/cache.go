package translation

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// missTTL bounds how long a "no video exists" answer is remembered.
// The dictionary gains entries over time, so misses expire much faster
// than hits.
const missTTL = 6 * time.Hour

// VideoCache is a persistent word -> video URL cache backed by BadgerDB.
// An empty value records a confirmed miss so the scraper is not hammered
// for words that have no sign video.
type VideoCache struct {
	db  *badger.DB
	log *slog.Logger
	ttl time.Duration
}

func NewVideoCache(db *badger.DB, log *slog.Logger, ttl time.Duration) *VideoCache {
	return &VideoCache{db: db, log: log, ttl: ttl}
}

func cacheKey(word string) []byte {
	return []byte(fmt.Sprintf("video:%s", word))
}

// Get returns the cached URL for word. The second return reports whether
// the word was in the cache at all; a cached miss yields ("", true, nil).
func (c *VideoCache) Get(word string) (string, bool, error) {
	var cached []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(word))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			cached = append([]byte(nil), val...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cache for %q: %w", word, err)
	}
	return string(cached), true, nil
}

func (c *VideoCache) Set(word, videoURL string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(word), []byte(videoURL)).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// SetMissing records that no video exists for word.
func (c *VideoCache) SetMissing(word string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(word), nil).WithTTL(missTTL)
		return txn.SetEntry(entry)
	})
}
