package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"sign-relay/contract"
	"sign-relay/domain"
	"sign-relay/moderation"
	"sign-relay/repositories"
)

// Router classifies each inbound event, persists chat messages and
// forwards to the receiver's sink when one is registered.
type Router struct {
	log       *slog.Logger
	registry  contract.IRegistry
	messages  repositories.IMessageRepository
	moderator *moderation.Moderator
}

func NewRouter(log *slog.Logger, registry contract.IRegistry,
	messages repositories.IMessageRepository, moderator *moderation.Moderator) *Router {
	return &Router{
		log:       log,
		registry:  registry,
		messages:  messages,
		moderator: moderator,
	}
}

// HandleEvent processes one raw frame from senderID.
//
// The returned error is never fatal to the connection: a malformed frame
// (ErrMalformedEvent) and a failed persistence write are both logged by
// the session, which keeps reading. A chat message is written to the
// store before any forwarding; if the write fails the event is not
// delivered, so a message can never be received without existing in
// history.
func (ro *Router) HandleEvent(ctx context.Context, senderID string, raw []byte) error {
	event, err := domain.DecodeEvent(raw)
	if err != nil {
		return err
	}

	switch e := event.(type) {
	case domain.TypingEvent:
		ro.forward(e.To, domain.Outbound{Type: "typing", Sender: senderID})
		return nil

	case domain.MessageEvent:
		text := ro.moderator.Censor(e.Text)
		if _, err := ro.messages.Store(ctx, senderID, e.To, text); err != nil {
			return fmt.Errorf("persisting message from %s: %w", senderID, err)
		}
		ro.forward(e.To, domain.Outbound{Type: "message", Sender: senderID, Text: text})
		return nil

	default:
		return fmt.Errorf("unhandled event %T", event)
	}
}

func (ro *Router) forward(receiverID string, payload domain.Outbound) {
	data, err := json.Marshal(payload)
	if err != nil {
		ro.log.Error("Marshaling outbound frame failed", "receiver", receiverID, "error", err)
		return
	}
	ro.registry.Send(receiverID, data)
}
