package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"sign-relay/domain"
)

type IMessageRepository interface {
	Store(ctx context.Context, sender, receiver, text string) (domain.Message, error)
	History(ctx context.Context, userID, peerID string) ([]domain.Message, error)
	RecentPeers(ctx context.Context, userID string) ([]User, error)
}

type MessageRepository struct {
	db  *sql.DB
	log *slog.Logger
}

func NewMessageRepository(db *sql.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// Store inserts exactly one row for a routed chat message.
// The timestamp is server-assigned here so ordering within a conversation
// reflects whichever insert commits first.
func (m MessageRepository) Store(ctx context.Context, sender, receiver, text string) (domain.Message, error) {
	now := time.Now().UTC()
	insert := sq.Insert("messages").
		Columns("sender", "receiver", "text", "created_on").
		Values(sender, receiver, text, now.UnixNano())

	result, err := insert.RunWith(m.db).ExecContext(ctx)
	if err != nil {
		return domain.Message{}, fmt.Errorf("storing message from %s to %s: %w", sender, receiver, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return domain.Message{}, fmt.Errorf("reading message id: %w", err)
	}
	return domain.Message{
		ID:        id,
		Sender:    sender,
		Receiver:  receiver,
		Text:      text,
		CreatedAt: now,
	}, nil
}

// History returns both directions of a conversation in ascending timestamp
// order. The auto-incremented id breaks ties between inserts that landed on
// the same nanosecond, so the order always matches insertion order.
func (m MessageRepository) History(ctx context.Context, userID, peerID string) ([]domain.Message, error) {
	query := sq.Select("id", "sender", "receiver", "text", "created_on").
		From("messages").
		Where(sq.Or{
			sq.Eq{"sender": userID, "receiver": peerID},
			sq.Eq{"sender": peerID, "receiver": userID},
		}).
		OrderBy("created_on ASC", "id ASC")

	rows, err := query.RunWith(m.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching history %s/%s: %w", userID, peerID, err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		var createdOn int64
		if err := rows.Scan(&msg.ID, &msg.Sender, &msg.Receiver, &msg.Text, &createdOn); err != nil {
			m.log.Warn("Skipping unreadable message row", "error", err)
			continue
		}
		msg.CreatedAt = time.Unix(0, createdOn).UTC()
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// RecentPeers returns every user the given user has exchanged at least one
// message with, in either direction.
func (m MessageRepository) RecentPeers(ctx context.Context, userID string) ([]User, error) {
	query := sq.Select("DISTINCT u.username, u.phone, u.role").
		From("users u").
		Join("messages m ON (u.phone = m.sender OR u.phone = m.receiver)").
		Where("m.sender = ? OR m.receiver = ?", userID, userID).
		Where(sq.NotEq{"u.phone": userID})

	rows, err := query.RunWith(m.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching recent peers for %s: %w", userID, err)
	}
	defer rows.Close()

	var peers []User
	for rows.Next() {
		var peer User
		if err := rows.Scan(&peer.Username, &peer.Phone, &peer.Role); err != nil {
			m.log.Warn("Skipping unreadable peer row", "error", err)
			continue
		}
		peers = append(peers, peer)
	}
	return peers, rows.Err()
}
