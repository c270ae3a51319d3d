package translation

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/abadojack/whatlanggo"
	"github.com/samber/lo"

	"sign-relay/errors"
)

// Segment is one element of a translated sequence: either a hosted video
// for the word, or an instruction to finger-spell it.
type Segment struct {
	Type string `json:"type"` // "video" or "spelling"
	Word string `json:"word"`
	URL  string `json:"url,omitempty"`
}

type ITranslator interface {
	Translate(ctx context.Context, text string) ([]Segment, error)
}

type Translator struct {
	log    *slog.Logger
	cache  *VideoCache
	lookup ILookup
}

func NewTranslator(log *slog.Logger, cache *VideoCache, lookup ILookup) *Translator {
	return &Translator{log: log, cache: cache, lookup: lookup}
}

// Translate maps every word of text to a Segment, in order.
// The sign dictionary is English-only, so text reliably detected as
// another language short-circuits to a finger-spelling sequence.
func (t *Translator) Translate(ctx context.Context, text string) ([]Segment, error) {
	tokens := Tokenize(text)

	if info := whatlanggo.Detect(text); info.IsReliable() && info.Lang != whatlanggo.Eng {
		t.log.Debug("Non-English text, spelling everything",
			"lang", info.Lang.String())
		return lo.Map(tokens, func(word string, _ int) Segment {
			return Segment{Type: "spelling", Word: word}
		}), nil
	}

	segments := make([]Segment, 0, len(tokens))
	for _, word := range tokens {
		segments = append(segments, t.resolve(ctx, word))
	}
	return segments, nil
}

func (t *Translator) resolve(ctx context.Context, word string) Segment {
	videoURL, cached, err := t.cache.Get(word)
	if err != nil {
		t.log.Warn("Cache read failed, falling back to scraper", "word", word, "error", err)
	}

	if !cached {
		videoURL, err = t.lookup.LookupVideo(ctx, word)
		switch {
		case err == nil:
			if err := t.cache.Set(word, videoURL); err != nil {
				t.log.Warn("Cache write failed", "word", word, "error", err)
			}
		case stderrors.Is(err, errors.ErrNoVideoFound):
			videoURL = ""
			if err := t.cache.SetMissing(word); err != nil {
				t.log.Warn("Cache write failed", "word", word, "error", err)
			}
		default:
			// Transient scraper failure: spell the word now, retry next time
			t.log.Warn("Video lookup failed", "word", word, "error", err)
			videoURL = ""
		}
	}

	if videoURL == "" {
		return Segment{Type: "spelling", Word: word}
	}
	return Segment{Type: "video", Word: word, URL: videoURL}
}
