package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/mcoot/hptracker/internal/model"
	"github.com/mcoot/hptracker/internal/session"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"

	identityCookieMaxAge = 30 * 24 * 60 * 60
)

// CookieStore persists session keys as browser cookies. Values are query
// escaped on the wire. Writes are visible to later reads within the same
// request.
type CookieStore struct {
	w       http.ResponseWriter
	r       *http.Request
	overlay map[string]*string
}

// NewCookieStore creates a CookieStore for one request
func NewCookieStore(w http.ResponseWriter, r *http.Request) *CookieStore {
	return &CookieStore{w: w, r: r, overlay: make(map[string]*string)}
}

// Ensure CookieStore implements KeyStore
var _ session.KeyStore = (*CookieStore)(nil)

func (c *CookieStore) Get(key string) (string, bool) {
	if v, ok := c.overlay[key]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	cookie, err := c.r.Cookie(key)
	if err != nil {
		return "", false
	}
	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", false
	}
	return value, true
}

func (c *CookieStore) Set(key, value string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		MaxAge:   identityCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.overlay[key] = &value
	return nil
}

func (c *CookieStore) Delete(key string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.overlay[key] = nil
	return nil
}

// GetIdentity retrieves the identity from the request context
// Returns false if the user has not entered a room
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(model.Identity)
	return id, ok
}

// RequireIdentity returns middleware that only admits users who have
// entered a room. Others are redirected to the login screen.
func RequireIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := session.Load(NewCookieStore(w, r))
			if !ok {
				SetFlash(w, "error", "Please enter a room first")
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
