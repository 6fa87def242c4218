package model

import "time"

// Chat is a direct message between two users, optionally anchored to
// a home listing.  Messages are pushed live over the websocket hub
// and persisted here for history.
//
// Fields:
//  ID         - primary key identifier.
//  SenderID   - user who sent the message.
//  ReceiverID - user who receives the message.
//  HomeID     - home the conversation refers to (nullable).
//  Content    - message body.
//  ReadAt     - when the receiver opened the thread (null while unread).
//  CreatedAt  - creation timestamp.
type Chat struct {
	ID         uint64     // chats.id
	SenderID   uint64     // chats.sender_id
	ReceiverID uint64     // chats.receiver_id
	HomeID     *uint64    // chats.home_id (nullable)
	Content    string     // chats.content
	ReadAt     *time.Time // chats.read_at (nullable)
	CreatedAt  time.Time  // chats.created_at
}
