package service

import (
	"context"
	"fmt"
	"time"

	"messenger/internal/domain"
)

type ConversationService struct {
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
	users         domain.UserRepository
}

func NewConversationService(
	conversations domain.ConversationRepository,
	participants domain.ParticipantRepository,
	users domain.UserRepository,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		participants:  participants,
		users:         users,
	}
}

// ParticipantInfo is the minimal display form of a conversation member.
type ParticipantInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsOnline bool   `json:"is_online"`
}

// ConversationSummary is a conversation with the display info a client
// needs to render its conversation list.
type ConversationSummary struct {
	ID             int64             `json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	LastActivityAt time.Time         `json:"last_activity_at"`
	Participants   []ParticipantInfo `json:"participants"`
}

// CreateConversation validates the other-participant list and creates the
// conversation with the creator implicitly included. Explicitly listing the
// creator again is a no-op; duplicate other ids are rejected.
func (s *ConversationService) CreateConversation(
	ctx context.Context,
	otherParticipantIDs []int64,
	creatorID int64,
) (*domain.Conversation, error) {
	if len(otherParticipantIDs) == 0 {
		return nil, domain.ErrMissingParticipants
	}

	seen := make(map[int64]struct{}, len(otherParticipantIDs))
	others := make([]int64, 0, len(otherParticipantIDs))
	for _, id := range otherParticipantIDs {
		if id == creatorID {
			continue
		}
		if _, ok := seen[id]; ok {
			return nil, domain.ErrDuplicateParticipants
		}
		seen[id] = struct{}{}
		others = append(others, id)
	}
	if len(others) == 0 {
		return nil, domain.ErrMissingParticipants
	}

	for _, id := range others {
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("check participant %d: %w", id, err)
		}
		if u == nil || !u.IsActive {
			return nil, domain.ErrParticipantNotFound
		}
	}

	conv := &domain.Conversation{}
	if err := s.conversations.Create(ctx, conv, append([]int64{creatorID}, others...)); err != nil {
		return nil, err
	}
	return conv, nil
}

// ListForUser returns the caller's conversations, most recently active
// first, with participant display info attached.
func (s *ConversationService) ListForUser(ctx context.Context, userID int64) ([]*ConversationSummary, error) {
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := make([]*ConversationSummary, 0, len(convs))
	for _, c := range convs {
		members, err := s.participants.ListParticipants(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("list participants for %d: %w", c.ID, err)
		}
		summary := &ConversationSummary{
			ID:             c.ID,
			CreatedAt:      c.CreatedAt,
			LastActivityAt: c.LastActivityAt,
			Participants:   make([]ParticipantInfo, 0, len(members)),
		}
		for _, m := range members {
			summary.Participants = append(summary.Participants, ParticipantInfo{
				ID:       m.ID,
				Username: m.Username,
				IsOnline: m.IsOnline,
			})
		}
		res = append(res, summary)
	}
	return res, nil
}

// DeleteConversation hard-deletes a conversation and its messages. Unlike
// the other operations, a missing conversation is reported as not found
// here; deletion is the one place the caller may learn a conversation id is
// gone.
func (s *ConversationService) DeleteConversation(ctx context.Context, conversationID, callerID int64) error {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return domain.ErrConversationNotFound
	}

	isParticipant, err := s.participants.IsParticipant(ctx, conversationID, callerID)
	if err != nil {
		return fmt.Errorf("check participant: %w", err)
	}
	if !isParticipant {
		return domain.ErrNotParticipant
	}

	return s.conversations.Delete(ctx, conversationID)
}
