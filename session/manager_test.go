package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type memoryStore struct {
	records map[string]Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: make(map[string]Record)}
}

func (m *memoryStore) Create(_ context.Context, rec Record) error {
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (Record, error) {
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

func newTestManager(store Store, now *time.Time) *Manager {
	seq := 0
	return NewManager(store, "session-secret", time.Hour).
		WithClock(func() time.Time { return *now }).
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("sess-%d", seq)
		})
}

func TestManager_BeginResolveEnd(t *testing.T) {
	now := time.Date(2024, 10, 31, 15, 4, 5, 0, time.UTC)
	store := newMemoryStore()
	mgr := newTestManager(store, &now)
	ctx := context.Background()

	cred, err := mgr.Begin(ctx, 42)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if cred.SessionID != "sess-1" || cred.UserID != 42 {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if !cred.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected expiry %s got %s", now.Add(time.Hour), cred.ExpiresAt)
	}

	rec, err := mgr.Resolve(ctx, cred.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.UserID != 42 || rec.ID != "sess-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if err := mgr.End(ctx, cred.SessionID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := mgr.Resolve(ctx, cred.Token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential after end, got %v", err)
	}
}

func TestManager_ResolveRejectsTamperedAndExpired(t *testing.T) {
	now := time.Date(2024, 10, 31, 15, 4, 5, 0, time.UTC)
	store := newMemoryStore()
	mgr := newTestManager(store, &now)
	ctx := context.Background()

	cred, err := mgr.Begin(ctx, 7)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := mgr.Resolve(ctx, cred.Token+"x"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected tampered token to fail, got %v", err)
	}

	other := NewManager(store, "another-secret", time.Hour)
	if _, err := other.Resolve(ctx, cred.Token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected foreign secret to fail, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := mgr.Resolve(ctx, cred.Token); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}
}

func TestManager_BeginRejectsAnonymous(t *testing.T) {
	now := time.Now()
	mgr := newTestManager(newMemoryStore(), &now)
	if _, err := mgr.Begin(context.Background(), 0); err == nil {
		t.Fatal("expected error for user id 0")
	}
	if err := mgr.End(context.Background(), ""); err != nil {
		t.Fatalf("end with empty id: %v", err)
	}
}

func TestCookieRoundTrip(t *testing.T) {
	if _, ok := ReadCookie(nil); ok {
		t.Fatal("expected nil request to have no session cookie")
	}

	req := httptest.NewRequest(http.MethodGet, "https://shop.example.test/my-account/", nil)
	rec := httptest.NewRecorder()
	WriteCookie(rec, req, Credential{Token: "tok-1", ExpiresAt: time.Now().Add(time.Hour)})

	cookie, err := http.ParseSetCookie(rec.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}
	if cookie.Name != CookieName || cookie.Value != "tok-1" {
		t.Fatalf("unexpected cookie %s=%s", cookie.Name, cookie.Value)
	}
	if !cookie.Secure || !cookie.HttpOnly {
		t.Fatalf("expected secure http-only cookie, got %+v", cookie)
	}

	next := httptest.NewRequest(http.MethodGet, "http://shop.example.test/", nil)
	next.AddCookie(&http.Cookie{Name: CookieName, Value: "  tok-1  "})
	value, ok := ReadCookie(next)
	if !ok || value != "tok-1" {
		t.Fatalf("ReadCookie = %q, %v", value, ok)
	}

	cleared := httptest.NewRecorder()
	ClearCookie(cleared, next)
	cookie, err = http.ParseSetCookie(cleared.Header().Get("Set-Cookie"))
	if err != nil {
		t.Fatalf("ParseSetCookie() error = %v", err)
	}
	if cookie.MaxAge >= 0 && cookie.Value != "" {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
	if cookie.Secure {
		t.Fatal("expected insecure cookie for plain http request")
	}
}
