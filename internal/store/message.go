package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// InsertMessage appends a message to its thread. It assigns ID, Seq and
// CreatedAt on m.
func (db *DB) InsertMessage(ctx context.Context, m *Message) error {
	id := uuid.New().String()
	now := time.Now().UnixMilli()
	res, err := db.ExecContext(ctx, `
		INSERT INTO messages (id, application_id, sender_id, receiver_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, m.ApplicationID, m.SenderID, m.ReceiverID, m.Content, now)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("message seq: %w", err)
	}
	m.ID = id
	m.Seq = seq
	m.CreatedAt = now
	return nil
}

// ListMessages returns the whole thread of an application in ascending
// (created_at, seq) order.
func (db *DB) ListMessages(ctx context.Context, applicationID string) ([]Message, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, seq, application_id, sender_id, receiver_id, content, created_at
		FROM messages
		WHERE application_id = ?
		ORDER BY created_at ASC, seq ASC`, applicationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.Seq, &m.ApplicationID, &m.SenderID, &m.ReceiverID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MessageCount returns the total number of messages.
func (db *DB) MessageCount(ctx context.Context) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}
