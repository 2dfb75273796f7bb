package switcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"userswitch/auth"
	"userswitch/session"
)

type fakeDirectory struct {
	users   []auth.User
	listErr error
	roleErr error
	capErr  error
	lastRep int64
}

func (f *fakeDirectory) ListBySalesRep(_ context.Context, repID int64) ([]auth.User, error) {
	f.lastRep = repID
	if f.listErr != nil {
		return nil, f.listErr
	}
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

func (f *fakeDirectory) ListByRole(_ context.Context, role auth.Role) ([]auth.User, error) {
	if f.roleErr != nil {
		return nil, f.roleErr
	}
	var out []auth.User
	for _, u := range f.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeDirectory) ListByCapability(_ context.Context, capability auth.Capability) ([]auth.User, error) {
	if f.capErr != nil {
		return nil, f.capErr
	}
	var out []auth.User
	for _, u := range f.users {
		if u.Can(capability) {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeSessions struct {
	current  map[string]int64
	ended    []string
	begun    []int64
	endErr   error
	beginErr error
	next     int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{current: make(map[string]int64)}
}

func (f *fakeSessions) End(_ context.Context, sessionID string) error {
	if f.endErr != nil {
		return f.endErr
	}
	f.ended = append(f.ended, sessionID)
	delete(f.current, sessionID)
	return nil
}

func (f *fakeSessions) Begin(_ context.Context, userID int64) (session.Credential, error) {
	if f.beginErr != nil {
		return session.Credential{}, f.beginErr
	}
	f.next++
	id := fmt.Sprintf("sess-%d", f.next)
	f.current[id] = userID
	f.begun = append(f.begun, userID)
	return session.Credential{Token: "cred-" + id, SessionID: id, UserID: userID}, nil
}

// fakeTokens encodes the binding in clear text; enough to exercise the flow.
type fakeTokens struct {
	issueErr error
}

func (f *fakeTokens) Issue(userID int64, sessionID string, purpose string) (string, error) {
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return fmt.Sprintf("%d|%s|%s", userID, sessionID, purpose), nil
}

func (f *fakeTokens) Verify(token string, userID int64, sessionID string, purpose string) bool {
	return token == fmt.Sprintf("%d|%s|%s", userID, sessionID, purpose)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func customersOf(repID int64, n int) []auth.User {
	users := make([]auth.User, 0, n)
	for i := 1; i <= n; i++ {
		rep := repID
		users = append(users, auth.User{
			ID:          int64(100 + i),
			Login:       fmt.Sprintf("customer%02d", i),
			FirstName:   "First",
			LastName:    fmt.Sprintf("Last%02d", i),
			DisplayName: fmt.Sprintf("Customer %02d", i),
			Role:        auth.RoleCustomer,
			SalesRepID:  &rep,
		})
	}
	return users
}

var (
	repActor   = Actor{ID: 7, SessionID: "rep-session", Capabilities: []auth.Capability{auth.CapSalesRep, auth.CapRead}}
	adminActor = Actor{ID: 1, SessionID: "admin-session", Capabilities: []auth.Capability{auth.CapManageOptions, auth.CapRead}}
)

func newTestFlow(dir Directory, sessions Sessions, tokens Tokens) *Flow {
	return NewFlow(dir, sessions, tokens, Config{
		AccountURL: "https://shop.example.test/my-account/",
		AdminURL:   "https://shop.example.test/wp-admin/",
	}, discardLogger())
}
