package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"messenger/internal/config"
	"messenger/internal/domain"
	"messenger/internal/security"
	"messenger/internal/service"
	"messenger/internal/ws"
)

// Repos bundles the store implementations the router wires into services.
// Filled by main from either the sqlite or the postgres store.
type Repos struct {
	Users         domain.UserRepository
	Conversations domain.ConversationRepository
	Messages      domain.MessageRepository
	Participants  domain.ParticipantRepository
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	repos Repos,
	hub *ws.Hub,
	notifier *ws.Notifier,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	encryptor *security.Encryptor,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Services
	authSvc := service.NewAuthService(repos.Users, tokenSvc, passwordHasher)
	userSvc := service.NewUserService(repos.Users)
	convSvc := service.NewConversationService(repos.Conversations, repos.Participants, repos.Users)
	msgSvc := service.NewMessageService(repos.Participants, repos.Messages, encryptor, notifier)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName,
			"version": "1.0.0",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes (no auth required)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, repos.Users))

			r.Post("/auth/logout", handleLogout(authSvc))
			r.Get("/auth/me", handleMe())

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Get("/", handleListUsers(userSvc))
				r.Get("/online", handleListOnlineUsers(userSvc))
				r.Get("/{userID}", handleGetUser(userSvc))
			})

			// Conversations and messages
			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", handleCreateConversation(convSvc))
				r.Get("/", handleListConversations(convSvc))
				r.Delete("/{conversationID}", handleDeleteConversation(convSvc))
				r.Post("/{conversationID}/read", handleMarkConversationRead(msgSvc))
				r.Get("/{conversationID}/messages", handleListMessages(msgSvc))
				// The send path is the hot path; it alone carries the
				// per-caller rate limit.
				r.With(sendRateLimiter(cfg.SendRateLimit, cfg.SendRateWindow)).
					Post("/{conversationID}/messages", handleCreateMessage(msgSvc))
			})

			r.Get("/messages/unread-count", handleUnreadCount(msgSvc))
		})
	})

	// WebSocket endpoint (fan-out subscription)
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, repos.Users, cfg.CORSOrigins))

	return r
}
