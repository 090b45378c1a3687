package sqlite

import (
	"context"
	"errors"
	"testing"

	"messenger/internal/domain"
)

func TestConversationCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice")
	bob := mustCreateUser(t, db, "bob")

	conv := mustCreateConversation(t, db, alice.ID, bob.ID)
	if conv.ID == 0 {
		t.Fatal("expected assigned conversation id")
	}
	if conv.CreatedAt.IsZero() {
		t.Fatal("expected assigned created_at")
	}

	repo := NewConversationRepo(db)
	got, err := repo.GetByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ID != conv.ID {
		t.Fatalf("GetByID returned %+v, want id %d", got, conv.ID)
	}

	parts := NewParticipantRepo(db)
	for _, uid := range []int64{alice.ID, bob.ID} {
		ok, err := parts.IsParticipant(ctx, conv.ID, uid)
		if err != nil {
			t.Fatalf("IsParticipant(%d): %v", uid, err)
		}
		if !ok {
			t.Fatalf("expected user %d to be a participant", uid)
		}
	}

	stranger := mustCreateUser(t, db, "mallory")
	ok, err := parts.IsParticipant(ctx, conv.ID, stranger.ID)
	if err != nil {
		t.Fatalf("IsParticipant(stranger): %v", err)
	}
	if ok {
		t.Fatal("stranger must not be a participant")
	}
}

func TestConversationGetMissing(t *testing.T) {
	db := newTestDB(t)

	got, err := NewConversationRepo(db).GetByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing conversation, got %+v", got)
	}
}

func TestConversationListOrderedByActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice")
	bob := mustCreateUser(t, db, "bob")

	first := mustCreateConversation(t, db, alice.ID, bob.ID)
	second := mustCreateConversation(t, db, alice.ID, bob.ID)

	// Push both conversations into the past so a new message clearly
	// dominates the activity ordering despite second-resolution timestamps.
	if _, err := db.Exec(`UPDATE conversations SET created_at = datetime('now', '-1 day')`); err != nil {
		t.Fatalf("backdate conversations: %v", err)
	}

	repo := NewConversationRepo(db)
	convs, err := repo.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(convs) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(convs))
	}
	// No messages: newest conversation first.
	if convs[0].ID != second.ID || convs[1].ID != first.ID {
		t.Fatalf("expected order [%d %d], got [%d %d]", second.ID, first.ID, convs[0].ID, convs[1].ID)
	}

	// A message in the older conversation moves it to the front.
	mustSendMessage(t, db, first.ID, bob.ID, "ciphertext")
	convs, err = repo.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListForUser after message: %v", err)
	}
	if convs[0].ID != first.ID {
		t.Fatalf("expected conversation %d first after new message, got %d", first.ID, convs[0].ID)
	}
	if convs[0].LastActivityAt.Before(convs[1].LastActivityAt) {
		t.Fatal("list is not ordered by last activity")
	}
}

func TestConversationDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := mustCreateUser(t, db, "alice")
	bob := mustCreateUser(t, db, "bob")

	conv := mustCreateConversation(t, db, alice.ID, bob.ID)
	mustSendMessage(t, db, conv.ID, alice.ID, "one")
	mustSendMessage(t, db, conv.ID, bob.ID, "two")

	repo := NewConversationRepo(db)
	if err := repo.Delete(ctx, conv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	got, err := repo.GetByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if got != nil {
		t.Fatal("conversation still present after delete")
	}

	count, err := NewMessageRepo(db).CountForConversation(ctx, conv.ID)
	if err != nil {
		t.Fatalf("CountForConversation: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cascade to remove messages, %d remain", count)
	}

	ok, err := NewParticipantRepo(db).IsParticipant(ctx, conv.ID, alice.ID)
	if err != nil {
		t.Fatalf("IsParticipant after delete: %v", err)
	}
	if ok {
		t.Fatal("participant row survived delete")
	}

	if err := repo.Delete(ctx, conv.ID); !errors.Is(err, domain.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound on second delete, got %v", err)
	}
}
