package middleware

import (
	"context"
	"net/http"
	"time"

	"user-service/internal/session"
	"user-service/internal/user"
)

// unexported, collision-proof context key
type signedInUserContextKeyType struct{}

var signedInUserKey = signedInUserContextKeyType{}

// SignedInUserFromContext extracts the resolved signed-in user from
// the request context.
func SignedInUserFromContext(ctx context.Context) (*user.SignedInUser, bool) {
	u, ok := ctx.Value(signedInUserKey).(*user.SignedInUser)
	return u, ok
}

// SignedInUserResolver is the slice of the user service the middleware
// needs: the cached signed-in user lookup.
type SignedInUserResolver interface {
	GetSignedInUserWithCache(ctx context.Context, query *user.GetSignedInUserQuery) (*user.SignedInUser, error)
}

type AuthMiddleware struct {
	Store    session.Store
	Resolver SignedInUserResolver
}

func NewAuthMiddleware(store session.Store, resolver SignedInUserResolver) *AuthMiddleware {
	return &AuthMiddleware{Store: store, Resolver: resolver}
}

// RequireAuth authenticates the request from its session cookie and
// attaches the resolved signed-in user to the context. The resolution
// goes through the per-process cache, so bursts of requests within the
// cache TTL hit the store once.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(session.CookieName)
		if err != nil || cookie.Value == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sessionID := cookie.Value

		sess, err := a.Store.Get(r.Context(), sessionID)
		if err != nil || sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// enforce session expiry even if the backend missed it
		if time.Now().After(sess.ExpiresAt) {
			_ = a.Store.Delete(r.Context(), sessionID)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		signedInUser, err := a.Resolver.GetSignedInUserWithCache(r.Context(), &user.GetSignedInUserQuery{
			OrgID:  sess.OrgID,
			UserID: sess.UserID,
		})
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if signedInUser.IsDisabled {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), signedInUserKey, signedInUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
