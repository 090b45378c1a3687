package domain

import "time"

// User represents an application user.
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          *string   `db:"email" json:"email,omitempty"`
	HashedPassword string    `db:"hashed_password" json:"-"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	IsOnline       bool      `db:"is_online" json:"is_online"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	LastSeen       time.Time `db:"last_seen" json:"last_seen"`
}

// Conversation represents a direct conversation between two or more users.
type Conversation struct {
	ID        int64     `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	// LastActivityAt is the timestamp of the latest message, or CreatedAt
	// when the conversation has no messages yet. Populated on list queries.
	LastActivityAt time.Time `db:"last_activity_at" json:"last_activity_at"`
}

// ConversationParticipant represents the membership of a user in a conversation.
type ConversationParticipant struct {
	UserID         int64      `db:"user_id"`
	ConversationID int64      `db:"conversation_id"`
	JoinedAt       *time.Time `db:"joined_at"`
}

// Message represents a single chat message. Content is ciphertext at rest;
// plaintext only exists in memory on the way in and out of the store.
type Message struct {
	ID             int64     `db:"id"`
	Content        string    `db:"content"` // encrypted at rest
	ConversationID int64     `db:"conversation_id"`
	SenderID       int64     `db:"sender_id"`
	CreatedAt      time.Time `db:"created_at"`
	IsRead         bool      `db:"is_read"` // read by the non-sender participant(s)
}
