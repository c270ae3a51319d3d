package domain

import (
	"encoding/json"
	"fmt"

	"sign-relay/errors"
)

// Event is an inbound frame decoded once at the connection boundary.
// Two variants exist: MessageEvent (persisted, forwarded) and
// TypingEvent (ephemeral, forwarded only).
type Event interface {
	Receiver() string
}

type MessageEvent struct {
	To   string
	Text string
}

func (e MessageEvent) Receiver() string { return e.To }

type TypingEvent struct {
	To string
}

func (e TypingEvent) Receiver() string { return e.To }

// Outbound is the frame delivered to a receiver's connection.
// Typing frames carry no text.
type Outbound struct {
	Type   string `json:"type"`
	Sender string `json:"sender"`
	Text   string `json:"text,omitempty"`
}

// DecodeEvent parses a raw frame into a typed Event.
// A frame without a "type" field is treated as a chat message, which is
// what older clients send. Any decode failure is reported as
// ErrMalformedEvent; the caller decides whether that is fatal.
func DecodeEvent(raw []byte) (Event, error) {
	var frame struct {
		Type     string `json:"type"`
		Receiver string `json:"receiver"`
		Text     string `json:"text"`
	}
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedEvent, err)
	}
	if frame.Receiver == "" {
		return nil, fmt.Errorf("%w: missing receiver", errors.ErrMalformedEvent)
	}
	switch frame.Type {
	case "typing":
		return TypingEvent{To: frame.Receiver}, nil
	case "message", "":
		if frame.Text == "" {
			return nil, fmt.Errorf("%w: missing text", errors.ErrMalformedEvent)
		}
		return MessageEvent{To: frame.Receiver, Text: frame.Text}, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrMalformedEvent, frame.Type)
	}
}
