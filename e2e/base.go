package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"

	"sign-relay/auth"
	"sign-relay/errors"
	"sign-relay/handlers"
	"sign-relay/moderation"
	"sign-relay/repositories"
	"sign-relay/runtime"
	"sign-relay/services"
	"sign-relay/translation"
)

// staticLookup serves video URLs from a fixed map, so the suite never
// touches the real dictionary site.
type staticLookup struct {
	videos map[string]string
}

func (l *staticLookup) LookupVideo(_ context.Context, word string) (string, error) {
	if url, ok := l.videos[word]; ok {
		return url, nil
	}
	return "", errors.ErrNoVideoFound
}

// BaseHTTPSuite assembles the whole application in-process on temporary
// storage, and drives it through the same fiber app the server binary
// runs.
type BaseHTTPSuite struct {
	suite.Suite
	Config   Config
	App      *fiber.App
	Messages repositories.MessageRepository
	Router   *runtime.Router
	Registry *runtime.Registry

	cacheDB *badger.DB
	db      io.Closer
}

func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	log := slog.Default()

	db, err := repositories.OpenStore(filepath.Join(s.T().TempDir(), "e2e.db"))
	s.Require().NoError(err)
	s.db = db

	s.cacheDB, err = badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	s.Require().NoError(err)

	moderator, err := moderation.NewDefaultModerator('*')
	s.Require().NoError(err)

	s.Registry = runtime.NewRegistry(log)
	s.Messages = repositories.NewMessageRepository(db, log)
	users := repositories.NewUserRepository(db)
	s.Router = runtime.NewRouter(log, s.Registry, s.Messages, moderator)

	issuer := auth.NewTokenIssuer([]byte("e2e-test-secret"), time.Hour)
	authService := services.NewAuthService(users, issuer)

	cache := translation.NewVideoCache(s.cacheDB, log, time.Hour)
	lookup := &staticLookup{videos: map[string]string{
		"hello": "https://media.example.com/hello.mp4",
		"world": "https://media.example.com/world.mp4",
	}}
	translator := translation.NewTranslator(log, cache, lookup)

	httpHandler := handlers.NewHTTPHandler(log, authService, s.Messages, translator)
	wsHandler := handlers.NewWSHandler(log, s.Router, s.Registry, 16)
	healthHandler := handlers.NewHealthHandler(log)
	s.App = handlers.NewApp(httpHandler, wsHandler, healthHandler, "")
}

func (s *BaseHTTPSuite) TearDownSuite() {
	if s.cacheDB != nil {
		_ = s.cacheDB.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

// Step prints a colorized header so suite logs read as a scenario.
func (s *BaseHTTPSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// JSON sends one request through the app and decodes the response body
// into out when out is non-nil. It returns the HTTP status code.
func (s *BaseHTTPSuite) JSON(method, path string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.App.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	logBuilder := strings.Builder{}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if s.Config.DebugJSON {
		fmt.Fprintln(&logBuilder, "\nRESPONSE:")
		fmt.Fprintln(&logBuilder, string(raw))
	}
	s.T().Log(logBuilder.String())

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		s.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}
