package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"messenger/internal/domain"
)

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func statusForCode(code domain.Code) int {
	switch code {
	case domain.CodeInvalidArgument:
		return http.StatusBadRequest
	case domain.CodeUnauthenticated:
		return http.StatusUnauthorized
	case domain.CodePermissionDenied:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeAlreadyExists:
		return http.StatusConflict
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps a classified error to its status and a stable JSON body.
// Unclassified errors become opaque 500s; details go to the log only.
func writeError(w http.ResponseWriter, err error) {
	var appErr *domain.Error
	if !errors.As(err, &appErr) {
		appErr = domain.Wrap(domain.CodeInternal, "internal server error", err)
	}
	status := statusForCode(appErr.Code)
	if status >= http.StatusInternalServerError {
		log.Printf("http: %s: %v", appErr.Code, err)
	}
	writeJSON(w, status, errorResponse{Code: string(appErr.Code), Error: appErr.Message})
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
