package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sign-relay/domain"
	"sign-relay/errors"
	"sign-relay/moderation"
	"sign-relay/repositories"
)

// memoryMessages is an in-memory IMessageRepository, with an optional
// forced failure to exercise the write-before-forward rule.
type memoryMessages struct {
	mu       sync.Mutex
	stored   []domain.Message
	failNext bool
}

func (m *memoryMessages) Store(_ context.Context, sender, receiver, text string) (domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return domain.Message{}, fmt.Errorf("disk full")
	}
	msg := domain.Message{
		ID:        int64(len(m.stored) + 1),
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	m.stored = append(m.stored, msg)
	return msg, nil
}

func (m *memoryMessages) History(_ context.Context, userID, peerID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Message
	for _, msg := range m.stored {
		if (msg.Sender == userID && msg.Receiver == peerID) ||
			(msg.Sender == peerID && msg.Receiver == userID) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memoryMessages) RecentPeers(_ context.Context, _ string) ([]repositories.User, error) {
	return nil, nil
}

func (m *memoryMessages) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stored)
}

func newTestRouter(t *testing.T) (*Router, *Registry, *memoryMessages) {
	t.Helper()
	moderator, err := moderation.NewModerator([]string{"badger"}, '*')
	require.NoError(t, err)
	registry := NewRegistry(slog.Default())
	messages := &memoryMessages{}
	return NewRouter(slog.Default(), registry, messages, moderator), registry, messages
}

func TestRouter_Message_Delivered_And_Persisted(t *testing.T) {
	req := require.New(t)
	router, registry, messages := newTestRouter(t)
	receiver := &recordingSink{}
	registry.Register("B", receiver)

	err := router.HandleEvent(context.Background(), "A", []byte(`{"type":"message","receiver":"B","text":"hi"}`))
	req.NoError(err)

	// Exactly one outbound frame, with sender and original text
	req.Equal([]string{`{"type":"message","sender":"A","text":"hi"}`}, receiver.delivered())

	// Exactly one durable row
	req.Equal(1, messages.count())
	history, err := messages.History(context.Background(), "A", "B")
	req.NoError(err)
	req.Equal("hi", history[0].Text)
	req.Equal("A", history[0].Sender)
}

func TestRouter_Message_Persisted_When_Receiver_Offline(t *testing.T) {
	req := require.New(t)
	router, _, messages := newTestRouter(t)

	err := router.HandleEvent(context.Background(), "A", []byte(`{"receiver":"B","text":"hi"}`))
	req.NoError(err)
	req.Equal(1, messages.count())
}

func TestRouter_Typing_Forwarded_Never_Persisted(t *testing.T) {
	req := require.New(t)
	router, registry, messages := newTestRouter(t)
	receiver := &recordingSink{}
	registry.Register("B", receiver)

	err := router.HandleEvent(context.Background(), "A", []byte(`{"type":"typing","receiver":"B"}`))
	req.NoError(err)
	req.Equal([]string{`{"type":"typing","sender":"A"}`}, receiver.delivered())
	req.Zero(messages.count())

	// Same when the receiver is offline
	err = router.HandleEvent(context.Background(), "A", []byte(`{"type":"typing","receiver":"C"}`))
	req.NoError(err)
	req.Zero(messages.count())
}

func TestRouter_Malformed_Frame(t *testing.T) {
	req := require.New(t)
	router, registry, messages := newTestRouter(t)
	receiver := &recordingSink{}
	registry.Register("B", receiver)

	for _, raw := range []string{
		`not json at all`,
		`{"type":"message","text":"no receiver"}`,
		`{"type":"message","receiver":"B"}`,
	} {
		err := router.HandleEvent(context.Background(), "A", []byte(raw))
		req.ErrorIs(err, errors.ErrMalformedEvent)
	}

	req.Zero(messages.count())
	req.Empty(receiver.delivered())
}

func TestRouter_Store_Failure_Blocks_Delivery(t *testing.T) {
	req := require.New(t)
	router, registry, messages := newTestRouter(t)
	receiver := &recordingSink{}
	registry.Register("B", receiver)
	messages.failNext = true

	err := router.HandleEvent(context.Background(), "A", []byte(`{"receiver":"B","text":"hi"}`))
	req.Error(err)
	req.NotErrorIs(err, errors.ErrMalformedEvent)

	// Never deliver-then-fail-to-persist
	req.Empty(receiver.delivered())
	req.Zero(messages.count())
}

func TestRouter_Censors_Message_Text(t *testing.T) {
	req := require.New(t)
	router, registry, messages := newTestRouter(t)
	receiver := &recordingSink{}
	registry.Register("B", receiver)

	err := router.HandleEvent(context.Background(), "A", []byte(`{"receiver":"B","text":"you badger"}`))
	req.NoError(err)

	// The stored and the delivered text are the same censored form
	req.Equal([]string{`{"type":"message","sender":"A","text":"you ******"}`}, receiver.delivered())
	history, err := messages.History(context.Background(), "A", "B")
	req.NoError(err)
	req.Equal("you ******", history[0].Text)
}
