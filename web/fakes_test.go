package web

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"userswitch/auth"
	"userswitch/fields"
	"userswitch/nonce"
	"userswitch/session"
	"userswitch/switcher"
)

const testPassword = "correct-horse"

type fakeAccounts struct {
	mu    sync.Mutex
	users []auth.User
}

func (f *fakeAccounts) find(id int64) (int, bool) {
	for i, u := range f.users {
		if u.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (f *fakeAccounts) Login(_ context.Context, req auth.LoginRequest) (auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Login == req.Login && req.Password == testPassword {
			return u, nil
		}
	}
	return auth.User{}, auth.ErrInvalidCredentials
}

func (f *fakeAccounts) GetUserByID(_ context.Context, userID int64) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(userID)
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	user := f.users[i]
	return &user, nil
}

func (f *fakeAccounts) AssignSalesRep(_ context.Context, customerID int64, repID *int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, ok := f.find(customerID)
	if !ok {
		return auth.ErrUserNotFound
	}
	if f.users[i].Role != auth.RoleCustomer {
		return auth.ErrNotCustomer
	}
	f.users[i].SalesRepID = repID
	return nil
}

func (f *fakeAccounts) ListBySalesRep(_ context.Context, repID int64) ([]auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auth.User
	for _, u := range f.users {
		var assigned int64
		if u.SalesRepID != nil {
			assigned = *u.SalesRepID
		}
		if assigned == repID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeAccounts) ListByRole(_ context.Context, role auth.Role) ([]auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auth.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeAccounts) ListByCapability(_ context.Context, capability auth.Capability) ([]auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []auth.User
	for _, u := range f.users {
		if u.Can(capability) {
			out = append(out, u)
		}
	}
	return out, nil
}

type memoryStore struct {
	mu      sync.Mutex
	records map[string]session.Record
}

func (m *memoryStore) Create(_ context.Context, rec session.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (session.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return session.Record{}, session.ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

const (
	adminID    int64 = 1
	repID      int64 = 7
	customerID int64 = 300
	orphanID   int64 = 200
)

func seedUsers() []auth.User {
	rep := repID
	rep2 := int64(8)
	admin := adminID
	users := []auth.User{
		{ID: adminID, Login: "admin", DisplayName: "Ada Admin", Role: auth.RoleAdministrator},
		{ID: repID, Login: "rep", DisplayName: "Rex Rep", Role: auth.RoleSalesRep},
		{ID: 8, Login: "rep2", DisplayName: "Bea Rep", Role: auth.RoleSalesRep},
	}
	for i := 1; i <= 25; i++ {
		users = append(users, auth.User{
			ID:          int64(100 + i),
			Login:       fmt.Sprintf("customer%02d", i),
			FirstName:   "Cus",
			LastName:    fmt.Sprintf("Tomer%02d", i),
			DisplayName: fmt.Sprintf("customer-%02d", i),
			Role:        auth.RoleCustomer,
			SalesRepID:  &rep,
		})
	}
	users = append(users,
		auth.User{ID: 150, Login: "admincust", FirstName: "Ad", LastName: "Min", DisplayName: "admin-customer", Role: auth.RoleCustomer, SalesRepID: &admin},
		auth.User{ID: orphanID, Login: "orphan", DisplayName: "orphan", Role: auth.RoleCustomer},
		auth.User{ID: customerID, Login: "plain", DisplayName: "plain", Role: auth.RoleCustomer, SalesRepID: &rep2},
	)
	return users
}

type testEnv struct {
	handler  http.Handler
	accounts *fakeAccounts
	sessions *session.Manager
	store    *memoryStore
}

func newTestEnv(t *testing.T, limit RateLimitConfig) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &memoryStore{records: make(map[string]session.Record)}
	sessions := session.NewManager(store, "session-secret-for-tests", time.Hour)
	tokens := nonce.NewIssuer("nonce-secret-for-tests", time.Hour)
	accounts := &fakeAccounts{users: seedUsers()}

	flow := switcher.NewFlow(accounts, sessions, tokens, switcher.Config{
		AccountURL: "/my-account",
		AdminURL:   "/wp-admin/",
	}, logger)
	registry := fields.NewRegistry()
	flow.RegisterFields(registry)

	srv := NewServer(flow, accounts, sessions, registry, limit, logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return &testEnv{
		handler:  srv.Handler(ctx),
		accounts: accounts,
		sessions: sessions,
		store:    store,
	}
}

func unlimited() RateLimitConfig {
	return RateLimitConfig{Rate: rate.Inf, Burst: 1, StaleAfter: time.Minute, CleanEvery: time.Minute}
}

// login starts a session for userID and returns its cookie.
func (e *testEnv) login(t *testing.T, userID int64) *http.Cookie {
	t.Helper()
	cred, err := e.sessions.Begin(context.Background(), userID)
	if err != nil {
		t.Fatalf("begin session: %v", err)
	}
	return &http.Cookie{Name: session.CookieName, Value: cred.Token}
}

func (e *testEnv) do(req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}
