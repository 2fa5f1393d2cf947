package auth

import (
	"crypto/sha256"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/datadrift/datadrift/pkg/models"
)

// SessionName is the name of the console session cookie.
const SessionName = "datadrift-session"

// Session value keys.
const (
	SessionKeyUser  = "user"
	SessionKeyToken = "access_token"
)

// SessionStore keeps the signed-in user and their token in a signed cookie
// so a browser can recover its session with GET /api/session.
type SessionStore struct {
	store *sessions.CookieStore
}

// NewSessionStore creates the cookie-based session store.
//
// The secret can be any passphrase; it is SHA-256 hashed to derive a 32-byte
// signing key. It must be consistent across restarts and replicas.
//
// Security settings:
// - HttpOnly: true (inaccessible to JavaScript)
// - Secure: from CookieSettings (HTTPS only outside localhost)
// - SameSite: Strict (prevents CSRF)
func NewSessionStore(secret string, cookie CookieSettings, maxAge time.Duration) *SessionStore {
	key := sha256.Sum256([]byte(secret))

	store := sessions.NewCookieStore(key[:])
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cookie.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	return &SessionStore{store: store}
}

// Save writes sess into the session cookie.
func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, sess *models.Session) error {
	cookie, _ := s.store.Get(r, SessionName)

	user, err := json.Marshal(sess.User)
	if err != nil {
		return err
	}
	cookie.Values[SessionKeyUser] = string(user)
	cookie.Values[SessionKeyToken] = sess.AccessToken
	return cookie.Save(r, w)
}

// Load returns the session stored in the request's cookie. ok is false when
// there is none or it cannot be decoded.
func (s *SessionStore) Load(r *http.Request) (*models.Session, bool) {
	cookie, err := s.store.Get(r, SessionName)
	if err != nil || cookie.IsNew {
		return nil, false
	}

	rawUser, _ := cookie.Values[SessionKeyUser].(string)
	token, _ := cookie.Values[SessionKeyToken].(string)

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return nil, false
	}

	sess := &models.Session{User: &user, AccessToken: token}
	if !sess.Valid() {
		return nil, false
	}
	return sess, true
}

// Clear expires the session cookie.
func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	cookie, _ := s.store.Get(r, SessionName)
	cookie.Values = map[interface{}]interface{}{}
	cookie.Options.MaxAge = -1
	return cookie.Save(r, w)
}
