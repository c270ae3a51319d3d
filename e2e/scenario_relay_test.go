package e2e

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"sign-relay/domain"
	"sign-relay/services"
)

type testRelaySuite struct {
	BaseHTTPSuite
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, &testRelaySuite{})
}

// capturingSink collects frames delivered to one registered user.
type capturingSink struct {
	mu     sync.Mutex
	frames []string
}

func (s *capturingSink) Deliver(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, string(payload))
	return nil
}

func (s *capturingSink) Close() {}

func (s *capturingSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.frames...)
}

const (
	alicePhone = "33612345678"
	bobPhone   = "33698765432"
)

func (s *testRelaySuite) TestFullRelayFlow() {
	req := s.Require()

	s.Step("Step 1: Register two accounts")
	var alice services.Account
	status := s.JSON(http.MethodPost, "/register", map[string]string{
		"username": "alice", "phone": alicePhone, "password": "correct-horse", "role": "deaf",
	}, &alice)
	req.Equal(http.StatusCreated, status)
	req.Equal("alice", alice.Username)
	req.NotEmpty(alice.Token)

	var bob services.Account
	status = s.JSON(http.MethodPost, "/register", map[string]string{
		"username": "bob", "phone": bobPhone, "password": "staple-battery", "role": "hearing",
	}, &bob)
	req.Equal(http.StatusCreated, status)

	s.Step("Step 2: Reject duplicates and invalid payloads")
	status = s.JSON(http.MethodPost, "/register", map[string]string{
		"username": "mallory", "phone": alicePhone, "password": "whatever-12", "role": "deaf",
	}, nil)
	req.Equal(http.StatusBadRequest, status)

	status = s.JSON(http.MethodPost, "/register", map[string]string{
		"username": "eve", "phone": "33600000001", "password": "short", "role": "deaf",
	}, nil)
	req.Equal(http.StatusBadRequest, status)

	s.Step("Step 3: Login")
	var account services.Account
	status = s.JSON(http.MethodPost, "/login", map[string]string{
		"phone": alicePhone, "password": "correct-horse",
	}, &account)
	req.Equal(http.StatusOK, status)
	req.Equal("alice", account.Username)
	req.Equal("deaf", account.Role)
	req.NotEmpty(account.Token)

	status = s.JSON(http.MethodPost, "/login", map[string]string{
		"phone": alicePhone, "password": "wrong-password",
	}, nil)
	req.Equal(http.StatusUnauthorized, status)

	s.Step("Step 4: Search")
	var profile services.Profile
	status = s.JSON(http.MethodGet, "/search/"+bobPhone, nil, &profile)
	req.Equal(http.StatusOK, status)
	req.Equal("bob", profile.Username)

	status = s.JSON(http.MethodGet, "/search/33600009999", nil, nil)
	req.Equal(http.StatusNotFound, status)

	s.Step("Step 5: Relay a message and a typing signal")
	bobSink := &capturingSink{}
	s.Registry.Register(bobPhone, bobSink)

	err := s.Router.HandleEvent(context.Background(), alicePhone,
		[]byte(`{"type":"message","receiver":"`+bobPhone+`","text":"hello bob"}`))
	req.NoError(err)
	err = s.Router.HandleEvent(context.Background(), alicePhone,
		[]byte(`{"type":"typing","receiver":"`+bobPhone+`"}`))
	req.NoError(err)

	frames := bobSink.all()
	req.Len(frames, 2)
	req.JSONEq(`{"type":"message","sender":"`+alicePhone+`","text":"hello bob"}`, frames[0])
	req.JSONEq(`{"type":"typing","sender":"`+alicePhone+`"}`, frames[1])
	s.Registry.Deregister(bobPhone, bobSink)

	s.Step("Step 6: History shows the persisted message")
	var history []domain.HistoryEntry
	status = s.JSON(http.MethodGet, "/messages/"+bobPhone+"/"+alicePhone, nil, &history)
	req.Equal(http.StatusOK, status)
	req.Len(history, 1)
	req.Equal(alicePhone, history[0].Sender)
	req.Equal("hello bob", history[0].Text)

	s.Step("Step 7: Recents lists the peer only")
	var recents []services.Profile
	status = s.JSON(http.MethodGet, "/recents/"+alicePhone, nil, &recents)
	req.Equal(http.StatusOK, status)
	req.Len(recents, 1)
	req.Equal(bobPhone, recents[0].Phone)

	s.Step("Step 8: Translate with video fallback to spelling")
	var translated struct {
		Sequence []struct {
			Type string `json:"type"`
			Word string `json:"word"`
			URL  string `json:"url"`
		} `json:"sequence"`
	}
	status = s.JSON(http.MethodGet, "/translate?text=hello%20world%20xyzzy", nil, &translated)
	req.Equal(http.StatusOK, status)
	req.Len(translated.Sequence, 3)
	req.Equal("video", translated.Sequence[0].Type)
	req.Equal("https://media.example.com/hello.mp4", translated.Sequence[0].URL)
	req.Equal("video", translated.Sequence[1].Type)
	req.Equal("spelling", translated.Sequence[2].Type)
	req.Equal("xyzzy", translated.Sequence[2].Word)

	status = s.JSON(http.MethodGet, "/translate", nil, nil)
	req.Equal(http.StatusBadRequest, status)

	s.Step("Step 9: Health")
	status = s.JSON(http.MethodGet, "/healthz", nil, nil)
	req.Equal(http.StatusOK, status)
}
