package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"messenger/internal/domain"
)

// sendRateLimiter caps message sends per caller over a fixed window. The
// key is the authenticated user id, falling back to the client IP for
// anything that slips through unauthenticated. Exceeding the quota yields
// the stable RATE_LIMITED error, not a generic failure.
func sendRateLimiter(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(rateKeyByUser),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, domain.ErrRateLimited)
		}),
	)
}

func rateKeyByUser(r *http.Request) (string, error) {
	if u := CurrentUser(r); u != nil {
		return strconv.FormatInt(u.ID, 10), nil
	}
	return httprate.KeyByRealIP(r)
}
