// Package middleware содержит HTTP middleware панели продаж.
package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

const (
	sessionCookieName = "dashboard_session"
	sessionCookieTTL  = 365 * 24 * time.Hour
)

// SessionMiddleware привязывает запрос к сессии панели по подписанному cookie.
type SessionMiddleware struct {
	secretKey []byte
	secure    bool
}

// NewSessionMiddleware создаёт новый экземпляр SessionMiddleware с указанным секретным ключом.
// Пустой ключ заменяется случайным, и сессии не переживают перезапуск процесса.
func NewSessionMiddleware(secret string, secure bool) *SessionMiddleware {
	key := []byte(secret)
	if len(key) == 0 {
		randomKey := make([]byte, 32)
		if _, err := rand.Read(randomKey); err == nil {
			key = randomKey
		} else {
			key = []byte("default-secret-key")
		}
	}

	return &SessionMiddleware{
		secretKey: key,
		secure:    secure,
	}
}

// Middleware читает cookie сессии и добавляет идентификатор сессии в контекст запроса.
// Если cookie нет или подпись неверна, создаётся новая сессия.
func (m *SessionMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if id, ok := m.parseCookie(cookie.Value); ok {
				sessionID = id
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
			m.SetSessionCookie(w, sessionID)
		}

		ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SetSessionCookie устанавливает cookie сессии для указанного идентификатора.
func (m *SessionMiddleware) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    m.sign(sessionID),
		Path:     "/",
		Expires:  time.Now().Add(sessionCookieTTL),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}

	http.SetCookie(w, cookie)
}

func (m *SessionMiddleware) sign(sessionID string) string {
	mac := hmac.New(sha256.New, m.secretKey)
	mac.Write([]byte(sessionID))
	return sessionID + "." + hex.EncodeToString(mac.Sum(nil))
}

func (m *SessionMiddleware) parseCookie(cookieValue string) (string, bool) {
	id, signature, found := strings.Cut(cookieValue, ".")
	if !found {
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}

	_, expected, _ := strings.Cut(m.sign(id), ".")
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return "", false
	}

	return id, true
}

// SessionIDFromContext извлекает идентификатор сессии из контекста запроса.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
