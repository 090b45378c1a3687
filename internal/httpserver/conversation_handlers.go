package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"messenger/internal/domain"
	"messenger/internal/service"
)

type conversationCreateRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
}

func handleCreateConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.New(domain.CodeUnauthenticated, "unauthorized"))
			return
		}
		var req conversationCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.New(domain.CodeInvalidArgument, "invalid JSON body"))
			return
		}

		conv, err := convSvc.CreateConversation(r.Context(), req.ParticipantIDs, currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, conv)
	}
}

func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.New(domain.CodeUnauthenticated, "unauthorized"))
			return
		}
		convs, err := convSvc.ListForUser(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func handleDeleteConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.New(domain.CodeUnauthenticated, "unauthorized"))
			return
		}
		convID, err := conversationIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if err := convSvc.DeleteConversation(r.Context(), convID, currentUser.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleMarkConversationRead(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.New(domain.CodeUnauthenticated, "unauthorized"))
			return
		}
		convID, err := conversationIDParam(r)
		if err != nil {
			writeError(w, err)
			return
		}

		count, err := msgSvc.MarkRead(r.Context(), convID, currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		if count == 0 {
			writeJSON(w, http.StatusOK, map[string]any{
				"marked_read": 0,
				"detail":      "no messages were marked as read",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"marked_read": count})
	}
}

func conversationIDParam(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "conversationID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, domain.New(domain.CodeInvalidArgument, "invalid conversation id")
	}
	return id, nil
}
