package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"messenger/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A single connection keeps concurrent writers serialized at the pool
	// instead of surfacing SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("close test db: %v", err)
		}
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func mustCreateUser(t *testing.T, db *sql.DB, username string) *domain.User {
	t.Helper()

	u := &domain.User{
		Username:       username,
		HashedPassword: "hashed-" + username,
	}
	if err := NewUserRepo(db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

func mustCreateConversation(t *testing.T, db *sql.DB, participantIDs ...int64) *domain.Conversation {
	t.Helper()

	c := &domain.Conversation{}
	if err := NewConversationRepo(db).Create(context.Background(), c, participantIDs); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return c
}

func mustSendMessage(t *testing.T, db *sql.DB, conversationID, senderID int64, content string) *domain.Message {
	t.Helper()

	m := &domain.Message{
		Content:        content,
		ConversationID: conversationID,
		SenderID:       senderID,
	}
	if err := NewMessageRepo(db).Create(context.Background(), m); err != nil {
		t.Fatalf("send message: %v", err)
	}
	return m
}
