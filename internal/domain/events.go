package domain

import "time"

// Event kinds pushed to live connections.
const (
	EventNewMessage         = "new_message"
	EventUnreadCountChanged = "unread_count_changed"
)

// Event is a fan-out notification addressed to one or more users. Delivery
// is best-effort and at-most-once: recipients without a live connection
// simply miss the event and catch up on their next fetch.
type Event struct {
	ID             string    `json:"event_id"`
	Type           string    `json:"type"`
	Recipients     []int64   `json:"-"`
	ConversationID int64     `json:"conversation_id"`
	MessageID      int64     `json:"message_id,omitempty"`
	SenderID       int64     `json:"sender_id,omitempty"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Content        string    `json:"content,omitempty"`
	CreatedAt      time.Time `json:"timestamp,omitzero"`
	// UnreadCount is set only on unread_count_changed events. A pointer so
	// a legitimate zero (everything just read) still serializes.
	UnreadCount *int `json:"unread_count,omitempty"`
}
