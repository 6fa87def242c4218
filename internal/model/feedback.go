package model

import "time"

// Comment is a public remark a student leaves on a home listing.
type Comment struct {
	ID        uint64    // comments.id
	UserID    uint64    // comments.user_id
	HomeID    uint64    // comments.home_id
	Content   string    // comments.content
	CreatedAt time.Time // comments.created_at
}

// Rating is a 1..5 score a student gives a home.  One row per
// (user, home) pair; repeated ratings overwrite the score.
type Rating struct {
	ID        uint64    // ratings.id
	UserID    uint64    // ratings.user_id
	HomeID    uint64    // ratings.home_id
	Score     uint8     // ratings.score (1..5)
	CreatedAt time.Time // ratings.created_at
	UpdatedAt time.Time // ratings.updated_at
}

// Save marks a home as saved (bookmarked) by a user.  One row per
// (user, home) pair.
type Save struct {
	ID        uint64    // saves.id
	UserID    uint64    // saves.user_id
	HomeID    uint64    // saves.home_id
	CreatedAt time.Time // saves.created_at
}
