package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Hassanskary/unistay/internal/model"
)

// ChatRepo provides access to the chats table.
type ChatRepo struct {
	db *sql.DB
}

// NewChatRepo returns a new ChatRepo bound to the given database.
func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{db: db} }

// Create inserts a message and populates the generated ID and
// creation timestamp on the record.
func (r *ChatRepo) Create(ctx context.Context, c *model.Chat) error {
	const q = `INSERT INTO chats (sender_id, receiver_id, home_id, content) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.SenderID, c.ReceiverID, c.HomeID, c.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	c.CreatedAt = time.Now().UTC()
	return nil
}

// Thread returns the full conversation between two users in
// chronological order, capped at the most recent limit messages.
func (r *ChatRepo) Thread(ctx context.Context, a, b uint64, limit int) ([]model.Chat, error) {
	const q = `SELECT id, sender_id, receiver_id, home_id, content, read_at, created_at
	           FROM (SELECT * FROM chats
	                 WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	                 ORDER BY id DESC LIMIT ?) t
	           ORDER BY t.id ASC`
	rows, err := r.db.QueryContext(ctx, q, a, b, b, a, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Chat, 0)
	for rows.Next() {
		var c model.Chat
		var homeID sql.NullInt64
		var readAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.SenderID, &c.ReceiverID, &homeID, &c.Content, &readAt, &c.CreatedAt); err != nil {
			return nil, err
		}
		if homeID.Valid {
			hid := uint64(homeID.Int64)
			c.HomeID = &hid
		}
		if readAt.Valid {
			t := readAt.Time
			c.ReadAt = &t
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkRead stamps every unread message sent to reader by partner.
func (r *ChatRepo) MarkRead(ctx context.Context, reader, partner uint64) error {
	const q = `UPDATE chats SET read_at = UTC_TIMESTAMP() WHERE receiver_id = ? AND sender_id = ? AND read_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, reader, partner)
	return err
}

// ChatPartner summarizes a conversation for the inbox view.
type ChatPartner struct {
	UserID      uint64 `json:"user_id"`
	Name        string `json:"name"`
	LastMessage string `json:"last_message"`
	LastAt      string `json:"last_at"`
	Unread      int64  `json:"unread"`
}

// Partners lists everyone the user has exchanged messages with,
// most recent conversation first.
func (r *ChatRepo) Partners(ctx context.Context, userID uint64) ([]ChatPartner, error) {
	const q = `SELECT p.partner_id, u.name,
	                  (SELECT content FROM chats c2
	                   WHERE (c2.sender_id = ? AND c2.receiver_id = p.partner_id)
	                      OR (c2.sender_id = p.partner_id AND c2.receiver_id = ?)
	                   ORDER BY c2.id DESC LIMIT 1),
	                  DATE_FORMAT(p.last_at, '%Y-%m-%dT%TZ'),
	                  (SELECT COUNT(*) FROM chats c3
	                   WHERE c3.sender_id = p.partner_id AND c3.receiver_id = ? AND c3.read_at IS NULL)
	           FROM (SELECT IF(sender_id = ?, receiver_id, sender_id) AS partner_id, MAX(created_at) AS last_at
	                 FROM chats WHERE sender_id = ? OR receiver_id = ?
	                 GROUP BY partner_id) p
	           JOIN users u ON u.id = p.partner_id
	           ORDER BY p.last_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, userID, userID, userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ChatPartner, 0)
	for rows.Next() {
		var p ChatPartner
		if err := rows.Scan(&p.UserID, &p.Name, &p.LastMessage, &p.LastAt, &p.Unread); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
