package session

import (
	"net/http"
	"time"
)

// CookieName uses the __Host- prefix so browsers refuse the cookie
// unless it is Secure, has Path=/, and carries no Domain.
const CookieName = "__Host-session"

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	Secure   bool
	SameSite http.SameSite
	Domain   string // must stay empty for __Host- cookies
}

func (o CookieOptions) cookie(value string) *http.Cookie {
	path := o.Path
	if path == "" {
		path = "/" // required for __Host-
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     path,
		Domain:   o.Domain,
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: o.SameSite,
	}
}

// SetCookie issues the session cookie to the client.
func SetCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time, opts CookieOptions) {
	c := opts.cookie(sessionID)
	c.Expires = expiresAt
	http.SetCookie(w, c)
}

// ClearCookie removes the session cookie from the client.
func ClearCookie(w http.ResponseWriter, opts CookieOptions) {
	c := opts.cookie("")
	c.MaxAge = -1
	http.SetCookie(w, c)
}
