// Package switcher lets an administrator or sales rep take over the session of
// a customer assigned to them. It lists the actor's customers, renders the data
// each switch form needs, and executes a submitted switch once its token checks
// out. Storage, sessions and tokens are reached through the interfaces below.
package switcher

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"userswitch/auth"
	"userswitch/session"
)

const (
	// Endpoint is the account-area path segment of the Users tab.
	Endpoint = "user-switcher"
	// FieldSalesRep is the custom field linking a customer to its sales rep.
	FieldSalesRep = "customer_sales_rep"
	// ParamTargetID carries the switch target in the posted form.
	ParamTargetID = "user-switcher-user-id"
	// ParamNonce carries the switch token in the posted form.
	ParamNonce = "user-switcher-nonce"
	// ParamPage selects the listing page.
	ParamPage = "paged"
	// ParamPerPage selects the listing page size.
	ParamPerPage = "per_page"

	DefaultPage     = 1
	DefaultPageSize = 10

	purposePrefix = "user-switch-"
)

// Directory answers user queries.
type Directory interface {
	ListBySalesRep(ctx context.Context, repID int64) ([]auth.User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]auth.User, error)
	ListByCapability(ctx context.Context, capability auth.Capability) ([]auth.User, error)
}

// Sessions ends and begins login sessions.
type Sessions interface {
	End(ctx context.Context, sessionID string) error
	Begin(ctx context.Context, userID int64) (session.Credential, error)
}

// Tokens issues and verifies purpose-bound form tokens.
type Tokens interface {
	Issue(userID int64, sessionID string, purpose string) (string, error)
	Verify(token string, userID int64, sessionID string, purpose string) bool
}

// Actor is the principal of the current request. The zero value is an
// anonymous visitor.
type Actor struct {
	ID           int64
	SessionID    string
	Capabilities []auth.Capability
}

// ActorFromUser builds the actor for a user logged in under sessionID.
func ActorFromUser(user auth.User, sessionID string) Actor {
	return Actor{
		ID:           user.ID,
		SessionID:    sessionID,
		Capabilities: user.Grants(),
	}
}

// Authenticated reports whether the actor is logged in.
func (a Actor) Authenticated() bool {
	return a.ID > 0
}

// Can reports whether the actor holds capability.
func (a Actor) Can(capability auth.Capability) bool {
	return slices.Contains(a.Capabilities, capability)
}

// Config holds the URLs and defaults of the flow.
type Config struct {
	// AccountURL is the account page, used as form target base and redirect.
	AccountURL string
	// AdminURL is the base of the administrative screens.
	AdminURL string
	// PageSize is the listing page size used when the request names none.
	PageSize int
}

// Flow wires the switch operations to their collaborators.
type Flow struct {
	directory Directory
	sessions  Sessions
	tokens    Tokens
	cfg       Config
	logger    *slog.Logger
}

// NewFlow builds a Flow. A nil logger falls back to slog.Default.
func NewFlow(directory Directory, sessions Sessions, tokens Tokens, cfg Config, logger *slog.Logger) *Flow {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		directory: directory,
		sessions:  sessions,
		tokens:    tokens,
		cfg:       cfg,
		logger:    logger,
	}
}

// CanSwitch reports whether the switch feature is visible to actor.
func (f *Flow) CanSwitch(actor Actor) bool {
	if !actor.Authenticated() {
		return false
	}
	return actor.Can(auth.CapManageOptions) || actor.Can(auth.CapSalesRep)
}

// AccountURL returns the account page URL without a trailing slash.
func (f *Flow) AccountURL() string {
	return strings.TrimRight(f.cfg.AccountURL, "/")
}

// FormAction is where every switch form posts to.
func (f *Flow) FormAction() string {
	return f.AccountURL() + "/" + Endpoint
}

// Purpose returns the token purpose for switching to targetID.
func Purpose(targetID int64) string {
	return purposePrefix + strconv.FormatInt(targetID, 10)
}
