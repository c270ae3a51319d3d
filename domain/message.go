// Package domain contains core concepts of the relay.
// Messages are immutable once persisted.
package domain

import "time"

// Message is a persisted chat message between two users.
type Message struct {
	ID        int64
	Sender    string
	Receiver  string
	Text      string
	CreatedAt time.Time
}

// HistoryEntry is the shape history queries expose to clients,
// matching the wire format of the history endpoint.
type HistoryEntry struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}
