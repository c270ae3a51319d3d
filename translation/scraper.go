package translation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sign-relay/errors"
)

// signasl.org serves plain HTML pages but rejects anonymous clients,
// so requests must carry a browser User-Agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type ILookup interface {
	LookupVideo(ctx context.Context, word string) (string, error)
}

// Scraper resolves a word to a hosted sign-language video URL by parsing
// the dictionary page for that word. The video is hotlinked, never
// downloaded; the frontend loads it directly.
type Scraper struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
}

func NewScraper(log *slog.Logger) *Scraper {
	return &Scraper{
		log:     log,
		client:  &http.Client{Timeout: 5 * time.Second},
		baseURL: "https://www.signasl.org",
	}
}

// LookupVideo fetches the dictionary page for word and returns the first
// usable .mp4 source. ErrNoVideoFound means the word has no sign video;
// any other error is a transport or parse failure.
func (s *Scraper) LookupVideo(ctx context.Context, word string) (string, error) {
	clean := strings.ToLower(strings.TrimSpace(word))
	pageURL := fmt.Sprintf("%s/sign/%s", s.baseURL, url.PathEscape(clean))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	// A 429 or 5xx error page has no video tags; it must not be read as
	// a confirmed miss, or rate limiting would poison the miss cache.
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: unexpected status %d", pageURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing page for %q: %w", clean, err)
	}

	found := ""
	doc.Find("video").EachWithBreak(func(_ int, video *goquery.Selection) bool {
		if src, ok := video.Find("source").First().Attr("src"); ok && strings.Contains(src, ".mp4") {
			found = src
			return false
		}
		// Some entries put the src on the video tag itself
		if src, ok := video.Attr("src"); ok && strings.Contains(src, ".mp4") {
			found = src
			return false
		}
		return true
	})

	if found == "" {
		return "", errors.ErrNoVideoFound
	}
	return found, nil
}
