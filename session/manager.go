package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidCredential signals a credential that cannot be trusted.
var ErrInvalidCredential = errors.New("session: invalid credential")

// DefaultTTL is the lifetime of a session credential.
const DefaultTTL = 48 * time.Hour

// Credential is the signed value handed to the client after a session begins.
type Credential struct {
	Token     string
	SessionID string
	UserID    int64
	ExpiresAt time.Time
}

// Manager starts, resolves and ends login sessions.
type Manager struct {
	store       Store
	secret      []byte
	ttl         time.Duration
	now         func() time.Time
	idGenerator func() string
}

// NewManager creates a session manager signing credentials with secret.
func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:       store,
		secret:      []byte(secret),
		ttl:         ttl,
		now:         time.Now,
		idGenerator: func() string { return uuid.NewString() },
	}
}

// WithClock replaces the time source used for issuing and expiring sessions.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// WithIDGenerator replaces the session id source, uuid.NewString by default.
func (m *Manager) WithIDGenerator(gen func() string) *Manager {
	m.idGenerator = gen
	return m
}

// Begin starts a session for userID and returns its credential.
func (m *Manager) Begin(ctx context.Context, userID int64) (Credential, error) {
	if userID <= 0 {
		return Credential{}, fmt.Errorf("session: invalid user id %d", userID)
	}

	now := m.now()
	rec := Record{
		ID:        m.idGenerator(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return Credential{}, err
	}

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        rec.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(rec.ExpiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return Credential{}, fmt.Errorf("session: sign credential: %w", err)
	}

	return Credential{
		Token:     token,
		SessionID: rec.ID,
		UserID:    userID,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// End destroys the session. An empty id is a no-op.
func (m *Manager) End(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}

// Resolve verifies a credential token and returns the live session it names.
func (m *Manager) Resolve(ctx context.Context, token string) (Record, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return Record{}, ErrInvalidCredential
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return Record{}, ErrInvalidCredential
	}

	rec, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrInvalidCredential
		}
		return Record{}, err
	}
	if rec.UserID != userID || !m.now().Before(rec.ExpiresAt) {
		return Record{}, ErrInvalidCredential
	}
	return rec, nil
}
