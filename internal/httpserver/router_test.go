package httpserver_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"messenger/internal/config"
	"messenger/internal/domain"
	"messenger/internal/httpserver"
	"messenger/internal/security"
	"messenger/internal/store/sqlite"
	"messenger/internal/ws"
)

type routerEnv struct {
	router   http.Handler
	db       *sql.DB
	tokens   *security.TokenService
	messages *sqlite.MessageRepo
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := sqlite.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	cfg := &config.Config{
		AppName:        "Messenger API",
		CORSOrigins:    []string{"http://localhost:3000"},
		SendRateLimit:  30,
		SendRateWindow: time.Minute,
	}
	tokens := security.NewTokenService("router-test-secret", time.Hour)
	hasher := security.NewPasswordHasher(4)
	encryptor, err := security.NewEncryptor([]byte("router-test-encryption-key"), nil)
	if err != nil {
		t.Fatalf("new encryptor: %v", err)
	}

	hub := ws.NewHub()
	notifier := ws.NewNotifier(hub, 8)
	go notifier.Run()
	t.Cleanup(notifier.Close)

	repos := httpserver.Repos{
		Users:         sqlite.NewUserRepo(db),
		Conversations: sqlite.NewConversationRepo(db),
		Messages:      sqlite.NewMessageRepo(db),
		Participants:  sqlite.NewParticipantRepo(db),
	}
	return &routerEnv{
		router:   httpserver.NewRouter(cfg, repos, hub, notifier, tokens, hasher, encryptor),
		db:       db,
		tokens:   tokens,
		messages: sqlite.NewMessageRepo(db),
	}
}

func (env *routerEnv) createUser(t *testing.T, username string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, HashedPassword: "hashed-" + username}
	if err := sqlite.NewUserRepo(env.db).Create(context.Background(), u); err != nil {
		t.Fatalf("create user %q: %v", username, err)
	}
	return u
}

func (env *routerEnv) createConversation(t *testing.T, participantIDs ...int64) *domain.Conversation {
	t.Helper()
	c := &domain.Conversation{}
	if err := sqlite.NewConversationRepo(env.db).Create(context.Background(), c, participantIDs); err != nil {
		t.Fatalf("create conversation: %v", err)
	}
	return c
}

func (env *routerEnv) postMessage(t *testing.T, conversationID int64, bearer, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/conversations/%d/messages", conversationID),
		bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *routerEnv) messageCount(t *testing.T, conversationID int64) int {
	t.Helper()
	count, err := env.messages.CountForConversation(context.Background(), conversationID)
	if err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return count
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) (code, msg string) {
	t.Helper()
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code, body.Error
}

func TestSendMessageRejectsStaleSession(t *testing.T) {
	env := newRouterEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	conv := env.createConversation(t, alice.ID, bob.ID)

	t.Run("ExpiredToken", func(t *testing.T) {
		expired, err := env.tokens.CreateWithTTL("alice", -time.Minute)
		if err != nil {
			t.Fatalf("create expired token: %v", err)
		}

		rec := env.postMessage(t, conv.ID, expired, "should not land")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		code, _ := decodeErrorBody(t, rec)
		if code != string(domain.CodeUnauthenticated) {
			t.Fatalf("error code = %q, want %q", code, domain.CodeUnauthenticated)
		}
		if got := env.messageCount(t, conv.ID); got != 0 {
			t.Fatalf("store holds %d messages after rejected send, want 0", got)
		}
	})

	t.Run("GarbageToken", func(t *testing.T) {
		rec := env.postMessage(t, conv.ID, "not-a-jwt", "should not land")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if got := env.messageCount(t, conv.ID); got != 0 {
			t.Fatalf("store holds %d messages after rejected send, want 0", got)
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		rec := env.postMessage(t, conv.ID, "", "should not land")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
		}
		if got := env.messageCount(t, conv.ID); got != 0 {
			t.Fatalf("store holds %d messages after rejected send, want 0", got)
		}
	})

	// Control: the same request with a live session lands.
	t.Run("ValidToken", func(t *testing.T) {
		token, err := env.tokens.CreateForUser("alice")
		if err != nil {
			t.Fatalf("create token: %v", err)
		}

		rec := env.postMessage(t, conv.ID, token, "hello bob")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
		}
		if got := env.messageCount(t, conv.ID); got != 1 {
			t.Fatalf("store holds %d messages after accepted send, want 1", got)
		}
	})
}
