// Package request holds helpers shared by the HTML and JSON handlers:
// session cookies and the analyse form.
package request

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultSessionCookie is used when no cookie name is configured.
const DefaultSessionCookie = "mentor_session"

// SessionHeader lets API clients without a cookie jar name their session.
const SessionHeader = "X-Session-ID"

// Session returns the caller's session id, issuing a new cookie when the
// request carries none or carries one that is not a UUID. A valid
// SessionHeader takes precedence over the cookie.
func Session(w http.ResponseWriter, r *http.Request, cookieName string) string {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	if id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(SessionHeader))); err == nil {
		return id.String()
	}
	if c, err := r.Cookie(cookieName); err == nil {
		if id, err := uuid.Parse(strings.TrimSpace(c.Value)); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
