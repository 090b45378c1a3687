package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"messenger/internal/domain"
	"messenger/internal/security"
)

const maxMessageRunes = 5000

// EventPublisher hands an event to the fan-out layer. Implementations must
// never block: publishing happens on the request path, after the store
// write has committed.
type EventPublisher interface {
	Publish(ev domain.Event)
}

type MessageService struct {
	participants domain.ParticipantRepository
	messages     domain.MessageRepository
	encryptor    *security.Encryptor
	events       EventPublisher
}

func NewMessageService(
	participants domain.ParticipantRepository,
	messages domain.MessageRepository,
	encryptor *security.Encryptor,
	events EventPublisher,
) *MessageService {
	return &MessageService{
		participants: participants,
		messages:     messages,
		encryptor:    encryptor,
		events:       events,
	}
}

// MessageResponse is a message as seen by clients: content decrypted,
// sender identified by the minimal display info.
type MessageResponse struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
	IsRead         bool      `json:"is_read"`
}

// SendMessageResult pairs the stored message with whether it opened the
// conversation (first message ever sent into it).
type SendMessageResult struct {
	Message           *MessageResponse `json:"message"`
	IsNewConversation bool             `json:"is_new_conversation"`
}

type SendMessageInput struct {
	ConversationID int64
	Content        string
}

// SendMessage validates, encrypts and persists a message, then fans the
// event out to the other participants. Fan-out is strictly best-effort: by
// the time events are published the message is durable and the response is
// already decided.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput, sender *domain.User) (*SendMessageResult, error) {
	if in.Content == "" {
		return nil, domain.ErrEmptyMessage
	}
	if len([]rune(in.Content)) > maxMessageRunes {
		return nil, domain.New(domain.CodeInvalidArgument, "message content exceeds 5000 characters")
	}

	if err := s.requireParticipant(ctx, in.ConversationID, sender.ID); err != nil {
		return nil, err
	}

	priorCount, err := s.messages.CountForConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	encrypted, err := s.encryptor.Encrypt(in.Content)
	if err != nil {
		return nil, fmt.Errorf("encrypt content: %w", err)
	}

	msg := &domain.Message{
		Content:        encrypted,
		ConversationID: in.ConversationID,
		SenderID:       sender.ID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	resp := &MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       sender.ID,
		SenderUsername: sender.Username,
		Content:        in.Content,
		CreatedAt:      msg.CreatedAt,
		IsRead:         false,
	}

	s.publishNewMessage(ctx, resp)

	return &SendMessageResult{
		Message:           resp,
		IsNewConversation: priorCount == 0,
	}, nil
}

// publishNewMessage pushes a new_message event to the other participants
// and an unread_count_changed event to each of them. Failures are logged
// and swallowed; the message is already persisted.
func (s *MessageService) publishNewMessage(ctx context.Context, msg *MessageResponse) {
	members, err := s.participants.ListParticipants(ctx, msg.ConversationID)
	if err != nil {
		log.Printf("fanout: list participants for %d: %v", msg.ConversationID, err)
		return
	}

	var recipients []int64
	for _, m := range members {
		if m.ID != msg.SenderID {
			recipients = append(recipients, m.ID)
		}
	}
	if len(recipients) == 0 {
		return
	}

	s.events.Publish(domain.Event{
		Type:           domain.EventNewMessage,
		Recipients:     recipients,
		ConversationID: msg.ConversationID,
		MessageID:      msg.ID,
		SenderID:       msg.SenderID,
		SenderUsername: msg.SenderUsername,
		Content:        msg.Content,
		CreatedAt:      msg.CreatedAt,
	})

	for _, rid := range recipients {
		unread, err := s.messages.UnreadCountForUser(ctx, rid)
		if err != nil {
			log.Printf("fanout: unread count for %d: %v", rid, err)
			continue
		}
		s.events.Publish(domain.Event{
			Type:           domain.EventUnreadCountChanged,
			Recipients:     []int64{rid},
			ConversationID: msg.ConversationID,
			UnreadCount:    &unread,
		})
	}
}

// ListMessages returns the conversation's messages in chronological order
// with content decrypted. A row that no key can decrypt aborts the read:
// surfacing ciphertext or guessing is worse than a loud failure.
func (s *MessageService) ListMessages(ctx context.Context, conversationID, callerID int64) ([]*MessageResponse, error) {
	if err := s.requireParticipant(ctx, conversationID, callerID); err != nil {
		return nil, err
	}

	msgs, err := s.messages.ListForConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	members, err := s.participants.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	usernames := make(map[int64]string, len(members))
	for _, m := range members {
		usernames[m.ID] = m.Username
	}

	res := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		plain, err := s.encryptor.Decrypt(m.Content)
		if err != nil {
			log.Printf("decrypt: message %d in conversation %d: %v", m.ID, m.ConversationID, err)
			return nil, domain.Wrap(domain.CodeDecryptionFailed, "message payload could not be decrypted", err)
		}
		res = append(res, &MessageResponse{
			ID:             m.ID,
			ConversationID: m.ConversationID,
			SenderID:       m.SenderID,
			SenderUsername: usernames[m.SenderID],
			Content:        plain,
			CreatedAt:      m.CreatedAt,
			IsRead:         m.IsRead,
		})
	}
	return res, nil
}

// MarkRead flips every unread message from other senders in the
// conversation and returns how many rows changed. Zero is a normal outcome.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, callerID int64) (int64, error) {
	if err := s.requireParticipant(ctx, conversationID, callerID); err != nil {
		return 0, err
	}

	count, err := s.messages.MarkAllRead(ctx, conversationID, callerID)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		unread, err := s.messages.UnreadCountForUser(ctx, callerID)
		if err != nil {
			log.Printf("fanout: unread count for %d: %v", callerID, err)
		} else {
			s.events.Publish(domain.Event{
				Type:           domain.EventUnreadCountChanged,
				Recipients:     []int64{callerID},
				ConversationID: conversationID,
				UnreadCount:    &unread,
			})
		}
	}
	return count, nil
}

// UnreadCount returns the caller's total unread messages across all their
// conversations.
func (s *MessageService) UnreadCount(ctx context.Context, callerID int64) (int, error) {
	return s.messages.UnreadCountForUser(ctx, callerID)
}

// requireParticipant is the access guard for every message operation. A
// nonexistent conversation and a foreign conversation are indistinguishable
// on purpose: both answer with the same generic denial.
func (s *MessageService) requireParticipant(ctx context.Context, conversationID, userID int64) error {
	isParticipant, err := s.participants.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !isParticipant {
		return domain.ErrNotParticipant
	}
	return nil
}
