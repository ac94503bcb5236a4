package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/session"
	"user-service/internal/user"
)

type fakeSessionStore struct {
	sessions map[string]*session.Session
	deleted  []string
}

func (f *fakeSessionStore) Create(_ context.Context, s session.Session) error {
	f.sessions[s.SessionID] = &s
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, sessionID string) (*session.Session, error) {
	return f.sessions[sessionID], nil
}

func (f *fakeSessionStore) Update(_ context.Context, s session.Session) error {
	f.sessions[s.SessionID] = &s
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	delete(f.sessions, sessionID)
	return nil
}

type fakeResolver struct {
	signedInUser *user.SignedInUser
	err          error
	lastQuery    *user.GetSignedInUserQuery
}

func (f *fakeResolver) GetSignedInUserWithCache(_ context.Context, query *user.GetSignedInUserQuery) (*user.SignedInUser, error) {
	f.lastQuery = query
	return f.signedInUser, f.err
}

func doRequest(t *testing.T, mw *AuthMiddleware, cookieValue string) (*httptest.ResponseRecorder, *user.SignedInUser) {
	t.Helper()

	var got *user.SignedInUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = SignedInUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: cookieValue})
	}

	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)
	return rec, got
}

func TestRequireAuthResolvesSignedInUser(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*session.Session{
		"sid": {SessionID: "sid", UserID: 10, OrgID: 2, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	resolver := &fakeResolver{signedInUser: &user.SignedInUser{UserID: 10, OrgID: 2, Login: "alice"}}
	mw := NewAuthMiddleware(store, resolver)

	rec, got := doRequest(t, mw, "sid")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Login)

	require.NotNil(t, resolver.lastQuery)
	assert.EqualValues(t, 2, resolver.lastQuery.OrgID, "resolution uses the session's active org")
}

func TestRequireAuthMissingCookie(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionStore{sessions: map[string]*session.Session{}}, &fakeResolver{})

	rec, _ := doRequest(t, mw, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthUnknownSession(t *testing.T) {
	mw := NewAuthMiddleware(&fakeSessionStore{sessions: map[string]*session.Session{}}, &fakeResolver{})

	rec, _ := doRequest(t, mw, "sid")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthExpiredSessionDeleted(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*session.Session{
		"sid": {SessionID: "sid", UserID: 10, OrgID: 2, ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	mw := NewAuthMiddleware(store, &fakeResolver{})

	rec, _ := doRequest(t, mw, "sid")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, []string{"sid"}, store.deleted)
}

func TestRequireAuthResolverFailure(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*session.Session{
		"sid": {SessionID: "sid", UserID: 10, OrgID: 2, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	resolver := &fakeResolver{err: user.ErrUserNotFound}
	mw := NewAuthMiddleware(store, resolver)

	rec, _ := doRequest(t, mw, "sid")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthDisabledUser(t *testing.T) {
	store := &fakeSessionStore{sessions: map[string]*session.Session{
		"sid": {SessionID: "sid", UserID: 10, OrgID: 2, ExpiresAt: time.Now().Add(time.Hour)},
	}}
	resolver := &fakeResolver{signedInUser: &user.SignedInUser{UserID: 10, OrgID: 2, IsDisabled: true}}
	mw := NewAuthMiddleware(store, resolver)

	rec, _ := doRequest(t, mw, "sid")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
