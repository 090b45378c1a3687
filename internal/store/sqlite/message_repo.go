package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"messenger/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO messages (content, conversation_id, sender_id, created_at, is_read)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, 0)
	`, m.Content, m.ConversationID, m.SenderID)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	m.IsRead = false

	if err := r.db.QueryRowContext(ctx, `
		SELECT created_at FROM messages WHERE id = ?
	`, id).Scan(&m.CreatedAt); err != nil {
		return fmt.Errorf("read created_at: %w", err)
	}
	return nil
}

func (r *MessageRepo) ListForConversation(ctx context.Context, conversationID int64) ([]*domain.Message, error) {
	// id is the tiebreak: CURRENT_TIMESTAMP has second resolution, so
	// concurrent appends can share a created_at value.
	query := `
		SELECT id, content, conversation_id, sender_id, created_at, is_read
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.Content,
			&m.ConversationID,
			&m.SenderID,
			&m.CreatedAt,
			&m.IsRead,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r *MessageRepo) MarkAllRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages
		SET is_read = 1
		WHERE conversation_id = ? AND sender_id <> ? AND is_read = 0
	`, conversationID, readerID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func (r *MessageRepo) UnreadCountForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversation_participants cp
			ON cp.conversation_id = m.conversation_id AND cp.user_id = ?
		WHERE m.sender_id <> ? AND m.is_read = 0
	`, userID, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *MessageRepo) CountForConversation(ctx context.Context, conversationID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE conversation_id = ?
	`, conversationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return count, nil
}
