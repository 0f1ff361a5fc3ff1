package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"

	"github.com/gitshopapp/merchconfig/internal/observability"
)

// SecurityHeaders sets baseline security headers for all responses.
func (h *Handlers) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		headers.Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}

// RequireAccessKey guards the widget API with the shared access key, sent
// as the X-Access-Key header or the key query parameter.
func (h *Handlers) RequireAccessKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get("X-Access-Key"))
		if key == "" {
			key = strings.TrimSpace(r.URL.Query().Get("key"))
		}
		if !h.checkSecret(r, "access_key", key, h.config.WidgetAccessKey) {
			writeError(w, http.StatusUnauthorized, "Invalid access key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdminToken guards the admin API with a bearer token.
func (h *Handlers) RequireAdminToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok || !h.checkSecret(r, "admin_token", token, h.config.AdminAPIToken) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) checkSecret(r *http.Request, kind, got, want string) bool {
	if want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
		return true
	}

	reason := "invalid"
	if got == "" {
		reason = "missing"
	}
	observability.MeterFromContext(r.Context()).Count("security.auth.rejected", 1, sentry.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("reason", reason),
	))
	h.loggerFromContext(r.Context()).Warn("rejected unauthenticated request", "kind", kind, "reason", reason, "path", r.URL.Path)
	return false
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
