package httpserver

import (
	"encoding/json"
	"net/http"

	"messenger/internal/domain"
	"messenger/internal/service"
)

type messageCreateRequest struct {
	Content string `json:"content"`
}

func handleCreateMessage(msgSvc *service.MessageService) http.HandlerFunc {
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
		var req messageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, domain.New(domain.CodeInvalidArgument, "invalid JSON body"))
			return
		}

		result, err := msgSvc.SendMessage(r.Context(), service.SendMessageInput{
			ConversationID: convID,
			Content:        req.Content,
		}, currentUser)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, result)
	}
}

func handleListMessages(msgSvc *service.MessageService) http.HandlerFunc {
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

		msgs, err := msgSvc.ListMessages(r.Context(), convID, currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

func handleUnreadCount(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		if currentUser == nil {
			writeError(w, domain.New(domain.CodeUnauthenticated, "unauthorized"))
			return
		}
		count, err := msgSvc.UnreadCount(r.Context(), currentUser.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"unread_count": count})
	}
}
