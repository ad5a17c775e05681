package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookieName carries the signed client session
	SessionCookieName = "snake_session"

	// DefaultSessionSecret is used when SESSION_KEY is unset
	DefaultSessionSecret = "default-secret"

	keyClaim = "generated_key"
)

var errNoSession = errors.New("no session cookie")

// SessionStore keeps the derived key client side in an HS256-signed cookie
type SessionStore struct {
	secret []byte
	maxAge time.Duration
	secure bool
}

// NewSessionStore creates a cookie store signing with secret. An empty
// secret falls back to DefaultSessionSecret.
func NewSessionStore(secret string, maxAge time.Duration) *SessionStore {
	if secret == "" {
		secret = DefaultSessionSecret
	}
	if maxAge <= 0 {
		maxAge = 14 * 24 * time.Hour
	}
	return &SessionStore{secret: []byte(secret), maxAge: maxAge}
}

// SetSecure marks issued cookies Secure
func (s *SessionStore) SetSecure(secure bool) {
	s.secure = secure
}

// Issue stores key in the session cookie, replacing any earlier key
func (s *SessionStore) Issue(w http.ResponseWriter, key string) error {
	now := time.Now()
	exp := now.Add(s.maxAge)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		keyClaim: key,
		"iat":    now.Unix(),
		"exp":    exp.Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Key returns the stored key, or an error when the cookie is absent,
// tampered with or expired
func (s *SessionStore) Key(r *http.Request) (string, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return "", errNoSession
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session: %w", err)
	}

	key, _ := claims[keyClaim].(string)
	return key, nil
}
