package domain

import (
	"context"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListActive(ctx context.Context, offset, limit int) ([]*User, error)
	ListOnline(ctx context.Context) ([]*User, error)
	SetOnlineStatus(ctx context.Context, id int64, isOnline bool) error
}

// ConversationRepository defines persistence operations for conversations.
type ConversationRepository interface {
	// Create inserts the conversation and its participant rows in one
	// transaction and fills in the assigned ID and CreatedAt.
	Create(ctx context.Context, c *Conversation, participantIDs []int64) error
	GetByID(ctx context.Context, id int64) (*Conversation, error)
	// ListForUser returns the user's conversations ordered by latest
	// activity, most recent first.
	ListForUser(ctx context.Context, userID int64) ([]*Conversation, error)
	// Delete removes the conversation, its participants and its messages.
	Delete(ctx context.Context, id int64) error
}

// MessageRepository defines persistence operations for messages. Content is
// expected to be ciphertext by the time it reaches this layer.
type MessageRepository interface {
	// Create inserts the message; ID and CreatedAt are assigned by the
	// store at commit time and filled in on return.
	Create(ctx context.Context, m *Message) error
	// ListForConversation returns messages in chronological order, oldest
	// first.
	ListForConversation(ctx context.Context, conversationID int64) ([]*Message, error)
	// MarkAllRead flips is_read for every unread message in the
	// conversation not authored by readerID and reports how many rows
	// changed. Zero is a valid outcome, not an error.
	MarkAllRead(ctx context.Context, conversationID, readerID int64) (int64, error)
	// UnreadCountForUser counts unread messages authored by others across
	// every conversation the user participates in. The count is always
	// derived from message rows; there is no stored counter to drift.
	UnreadCountForUser(ctx context.Context, userID int64) (int, error)
	CountForConversation(ctx context.Context, conversationID int64) (int, error)
}

// ParticipantRepository defines operations around conversation participants.
type ParticipantRepository interface {
	ListParticipants(ctx context.Context, conversationID int64) ([]*User, error)
	IsParticipant(ctx context.Context, conversationID, userID int64) (bool, error)
}
