package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrift/datadrift/pkg/models"
)

// carryCookies copies response cookies onto a fresh request.
func carryCookies(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := NewSessionStore("s3cret", CookieSettings{Secure: false}, time.Hour)
	sess := &models.Session{User: testUser, AccessToken: "tok"}

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil), sess))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	got, ok := store.Load(carryCookies(rec))
	require.True(t, ok)
	assert.Equal(t, sess, got)
}

func TestSessionStore_NoCookie(t *testing.T) {
	store := NewSessionStore("s3cret", CookieSettings{}, time.Hour)
	_, ok := store.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestSessionStore_TamperedOrForeignCookie(t *testing.T) {
	a := NewSessionStore("secret-a", CookieSettings{}, time.Hour)
	b := NewSessionStore("secret-b", CookieSettings{}, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, a.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), &models.Session{User: testUser, AccessToken: "tok"}))

	_, ok := b.Load(carryCookies(rec))
	assert.False(t, ok)
}

func TestSessionStore_Clear(t *testing.T) {
	store := NewSessionStore("s3cret", CookieSettings{}, time.Hour)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(rec, httptest.NewRequest(http.MethodPost, "/", nil), &models.Session{User: testUser, AccessToken: "tok"}))

	clearRec := httptest.NewRecorder()
	require.NoError(t, store.Clear(clearRec, carryCookies(rec)))

	cookies := clearRec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].MaxAge < 0)
}
