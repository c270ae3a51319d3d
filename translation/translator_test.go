package translation

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"sign-relay/errors"
)

// fakeLookup serves canned URLs and counts calls per word.
type fakeLookup struct {
	videos map[string]string
	calls  map[string]int
	fail   bool
}

func newFakeLookup(videos map[string]string) *fakeLookup {
	return &fakeLookup{videos: videos, calls: make(map[string]int)}
}

func (f *fakeLookup) LookupVideo(_ context.Context, word string) (string, error) {
	f.calls[word]++
	if f.fail {
		return "", fmt.Errorf("connection refused")
	}
	url, ok := f.videos[word]
	if !ok {
		return "", errors.ErrNoVideoFound
	}
	return url, nil
}

func newTestCache(t *testing.T) *VideoCache {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewVideoCache(db, slog.Default(), time.Hour)
}

func TestTranslator_Mixes_Video_And_Spelling(t *testing.T) {
	req := require.New(t)
	lookup := newFakeLookup(map[string]string{
		"hello": "https://media.example.com/hello.mp4",
	})
	translator := NewTranslator(slog.Default(), newTestCache(t), lookup)

	segments, err := translator.Translate(context.Background(), "Hello friend")
	req.NoError(err)
	req.Equal([]Segment{
		{Type: "video", Word: "hello", URL: "https://media.example.com/hello.mp4"},
		{Type: "spelling", Word: "friend"},
	}, segments)
}

func TestTranslator_Serves_Hits_From_Cache(t *testing.T) {
	req := require.New(t)
	lookup := newFakeLookup(map[string]string{
		"hello": "https://media.example.com/hello.mp4",
	})
	translator := NewTranslator(slog.Default(), newTestCache(t), lookup)

	for range 3 {
		segments, err := translator.Translate(context.Background(), "hello")
		req.NoError(err)
		req.Equal("video", segments[0].Type)
	}

	// One scrape, the other two answered from Badger
	req.Equal(1, lookup.calls["hello"])
}

func TestTranslator_Caches_Misses(t *testing.T) {
	req := require.New(t)
	lookup := newFakeLookup(nil)
	translator := NewTranslator(slog.Default(), newTestCache(t), lookup)

	for range 2 {
		segments, err := translator.Translate(context.Background(), "unsignable")
		req.NoError(err)
		req.Equal([]Segment{{Type: "spelling", Word: "unsignable"}}, segments)
	}
	req.Equal(1, lookup.calls["unsignable"])
}

func TestTranslator_Transient_Failure_Is_Not_Cached(t *testing.T) {
	req := require.New(t)
	lookup := newFakeLookup(map[string]string{
		"hello": "https://media.example.com/hello.mp4",
	})
	translator := NewTranslator(slog.Default(), newTestCache(t), lookup)

	// First pass fails at the scraper: the word is spelled out
	lookup.fail = true
	segments, err := translator.Translate(context.Background(), "hello")
	req.NoError(err)
	req.Equal("spelling", segments[0].Type)

	// Scraper recovers: the word resolves to a video on the next pass
	lookup.fail = false
	segments, err = translator.Translate(context.Background(), "hello")
	req.NoError(err)
	req.Equal("video", segments[0].Type)
	req.Equal(2, lookup.calls["hello"])
}

func TestTranslator_NonEnglish_Spells_Everything(t *testing.T) {
	req := require.New(t)
	lookup := newFakeLookup(map[string]string{
		"bonjour": "https://media.example.com/should-not-be-used.mp4",
	})
	translator := NewTranslator(slog.Default(), newTestCache(t), lookup)

	text := "Bonjour, je voudrais discuter avec vous aujourd'hui de plusieurs choses importantes"
	segments, err := translator.Translate(context.Background(), text)
	req.NoError(err)
	req.NotEmpty(segments)
	for _, segment := range segments {
		req.Equal("spelling", segment.Type)
	}
	req.Empty(lookup.calls)
}
