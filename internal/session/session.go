package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avgordeev/user-portal/internal/logger"
	"github.com/avgordeev/user-portal/internal/models"
)

// CookieName is the cookie carrying the signed session token.
const CookieName = "session_token"

// FlashKind selects one of the two one-shot message slots of a session.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flashes holds the drained one-shot messages for a render. Empty string
// means no pending message of that kind.
type Flashes struct {
	Success string
	Error   string
}

// Manager stores session identities and one-shot flash messages in Redis.
// The cookie value is an HS256 JWT whose sid claim names the Redis key, so
// a forged cookie fails signature verification before Redis is consulted.
type Manager struct {
	client *redis.Client
	secret string
	ttl    time.Duration
}

// New creates a Manager with the given signing secret and session TTL.
func New(client *redis.Client, secret string, ttl time.Duration) *Manager {
	return &Manager{
		client: client,
		secret: secret,
		ttl:    ttl,
	}
}

func sessionKey(sid string) string { return "session:" + sid }

func flashKey(sid string, kind FlashKind) string { return "flash:" + sid + ":" + string(kind) }

// Create persists the identity under a fresh session id and returns the
// cookie to set on the response.
func (m *Manager) Create(ctx context.Context, identity models.Identity) (*http.Cookie, error) {
	sid := uuid.NewString()

	data, err := json.Marshal(identity)
	if err != nil {
		return nil, err
	}

	if err := m.client.Set(ctx, sessionKey(sid), data, m.ttl).Err(); err != nil {
		logger.Log.Errorw("failed to store session", "err", err)
		return nil, err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sid,
		"exp": now.Add(m.ttl).Unix(),
		"iat": now.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Get resolves a cookie value to the stored identity and session id.
// An invalid token or a missing session yields (nil, "", nil); only
// infrastructure failures return an error.
func (m *Manager) Get(ctx context.Context, cookieValue string) (*models.Identity, string, error) {
	sid, err := m.parseSID(cookieValue)
	if err != nil {
		return nil, "", nil
	}

	data, err := m.client.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, "", nil
	}
	if err != nil {
		logger.Log.Errorw("failed to load session", "err", err)
		return nil, "", err
	}

	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		logger.Log.Errorw("corrupt session payload", "sid", sid, "err", err)
		return nil, "", nil
	}

	return &identity, sid, nil
}

// Destroy removes the session and any pending flash messages.
// It never fails the caller's request path on a partial delete.
func (m *Manager) Destroy(ctx context.Context, sid string) error {
	err := m.client.Del(ctx,
		sessionKey(sid),
		flashKey(sid, FlashSuccess),
		flashKey(sid, FlashError),
	).Err()
	if err != nil {
		logger.Log.Errorw("failed to destroy session", "sid", sid, "err", err)
	}
	return err
}

// PutFlash stores at most one pending message per kind; a second put
// overwrites the first.
func (m *Manager) PutFlash(ctx context.Context, sid string, kind FlashKind, msg string) error {
	err := m.client.Set(ctx, flashKey(sid, kind), msg, m.ttl).Err()
	if err != nil {
		logger.Log.Errorw("failed to store flash", "sid", sid, "kind", kind, "err", err)
	}
	return err
}

// TakeFlashes drains both flash slots atomically with GETDEL, so each
// message is readable exactly once and never reappears on later renders.
func (m *Manager) TakeFlashes(ctx context.Context, sid string) Flashes {
	return Flashes{
		Success: m.takeFlash(ctx, sid, FlashSuccess),
		Error:   m.takeFlash(ctx, sid, FlashError),
	}
}

func (m *Manager) takeFlash(ctx context.Context, sid string, kind FlashKind) string {
	msg, err := m.client.GetDel(ctx, flashKey(sid, kind)).Result()
	if errors.Is(err, redis.Nil) {
		return ""
	}
	if err != nil {
		logger.Log.Errorw("failed to take flash", "sid", sid, "kind", kind, "err", err)
		return ""
	}
	return msg
}

// parseSID verifies the token signature and extracts the sid claim.
func (m *Manager) parseSID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(m.secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", errors.New("missing sid claim")
	}

	return sid, nil
}

// ExpiredCookie returns a cookie that clears the session cookie on the
// client.
func ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
