package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Hassanskary/unistay/internal/model"
)

// CommentRepo provides access to the comments table.
type CommentRepo struct{ db *sql.DB }

func NewCommentRepo(db *sql.DB) *CommentRepo { return &CommentRepo{db: db} }

// Create inserts a comment and populates the generated ID.
func (r *CommentRepo) Create(ctx context.Context, c *model.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (user_id, home_id, content) VALUES (?, ?, ?)`,
		c.UserID, c.HomeID, c.Content)
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

// CommentRow joins a comment with its author's name for display.
type CommentRow struct {
	ID        uint64 `json:"id"`
	UserID    uint64 `json:"user_id"`
	UserName  string `json:"user_name"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ListByHome returns a home's comments in chronological order.
func (r *CommentRepo) ListByHome(ctx context.Context, homeID uint64) ([]CommentRow, error) {
	const q = `SELECT c.id, c.user_id, u.name, c.content, DATE_FORMAT(c.created_at, '%Y-%m-%dT%TZ')
	           FROM comments c JOIN users u ON u.id = c.user_id
	           WHERE c.home_id = ? ORDER BY c.id ASC`
	rows, err := r.db.QueryContext(ctx, q, homeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]CommentRow, 0)
	for rows.Next() {
		var c CommentRow
		if err := rows.Scan(&c.ID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes a comment.  The author may always delete their own
// comment; admins pass isAdmin to bypass the ownership check.
func (r *CommentRepo) Delete(ctx context.Context, commentID, userID uint64, isAdmin bool) error {
	var authorID uint64
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM comments WHERE id=?`, commentID).Scan(&authorID)
	if err != nil {
		return err
	}
	if !isAdmin && authorID != userID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM comments WHERE id=?`, commentID)
	return err
}

// RatingRepo provides access to the ratings table.
type RatingRepo struct{ db *sql.DB }

func NewRatingRepo(db *sql.DB) *RatingRepo { return &RatingRepo{db: db} }

// Upsert writes a user's score for a home, overwriting any previous
// score thanks to the (user_id, home_id) unique key.
func (r *RatingRepo) Upsert(ctx context.Context, userID, homeID uint64, score uint8) error {
	const q = `INSERT INTO ratings (user_id, home_id, score) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE score = VALUES(score)`
	_, err := r.db.ExecContext(ctx, q, userID, homeID, score)
	return err
}

// SaveRepo provides access to the saves (bookmarks) table.
type SaveRepo struct{ db *sql.DB }

func NewSaveRepo(db *sql.DB) *SaveRepo { return &SaveRepo{db: db} }

// Add bookmarks a home for a user.  Re-saving is a no-op.
func (r *SaveRepo) Add(ctx context.Context, userID, homeID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO saves (user_id, home_id) VALUES (?, ?)`, userID, homeID)
	return err
}

// Remove deletes a bookmark.
func (r *SaveRepo) Remove(ctx context.Context, userID, homeID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM saves WHERE user_id=? AND home_id=?`, userID, homeID)
	return err
}

// ListHomes returns the homes a user has saved, newest bookmark
// first.  Homes that have since lost approval are filtered out.
func (r *SaveRepo) ListHomes(ctx context.Context, userID uint64) ([]model.Home, error) {
	const q = `SELECT h.id, h.owner_id, h.title, h.description, h.city, h.gender, h.home_type,
	                  h.floor, h.distance_m, h.contract_photo, h.status, h.created_at, h.updated_at
	           FROM saves s JOIN homes h ON h.id = s.home_id
	           WHERE s.user_id = ? AND h.status = ?
	           ORDER BY s.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID, model.HomeStatusApproved)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Home, 0)
	for rows.Next() {
		h, err := scanHome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
