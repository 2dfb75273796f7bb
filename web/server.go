// Package web serves the account area: login, the account dashboard, the
// Users tab listing switchable customers, and the admin field endpoints.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"userswitch/auth"
	"userswitch/fields"
	"userswitch/i18n"
	"userswitch/session"
	"userswitch/switcher"
)

// Accounts is the account service used by the handlers.
type Accounts interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.User, error)
	GetUserByID(ctx context.Context, userID int64) (*auth.User, error)
	AssignSalesRep(ctx context.Context, customerID int64, repID *int64) error
}

// Sessions begins, resolves and ends login sessions.
type Sessions interface {
	Begin(ctx context.Context, userID int64) (session.Credential, error)
	End(ctx context.Context, sessionID string) error
	Resolve(ctx context.Context, token string) (session.Record, error)
}

// Server holds the HTTP handlers of the account area.
type Server struct {
	flow      *switcher.Flow
	accounts  Accounts
	sessions  Sessions
	registry  *fields.Registry
	rateLimit RateLimitConfig
	logger    *slog.Logger
}

// NewServer wires the handlers. A nil logger falls back to slog.Default.
func NewServer(flow *switcher.Flow, accounts Accounts, sessions Sessions, registry *fields.Registry, rateLimit RateLimitConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		flow:      flow,
		accounts:  accounts,
		sessions:  sessions,
		registry:  registry,
		rateLimit: rateLimit,
		logger:    logger,
	}
}

// Handler returns the routed handler. ctx bounds background work such as the
// rate limiter cleanup.
func (s *Server) Handler(ctx context.Context) http.Handler {
	base := s.flow.AccountURL()

	mux := http.NewServeMux()
	mux.HandleFunc(base+"/{$}", s.handleAccount)
	mux.HandleFunc(base+"/"+switcher.Endpoint, s.handleUsers)
	mux.HandleFunc("POST "+base+"/login", s.handleLogin)
	mux.HandleFunc("POST "+base+"/logout", s.handleLogout)
	mux.HandleFunc("GET /api/fields/{name}", s.handleField)
	mux.HandleFunc("PUT /api/users/{id}/sales-rep", s.handleAssignSalesRep)
	if base != "" {
		mux.Handle(base, http.RedirectHandler(base+"/", http.StatusMovedPermanently))
	}

	return chain(mux,
		s.logRequests,
		rateLimitPosts(ctx, s.rateLimit, s.logger),
		s.identify,
		s.switchUser,
	)
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	msgs := i18n.Account(i18n.Match(r.Header.Get("Accept-Language")))
	if !actor.Authenticated() {
		s.renderLogin(w, r, msgs, false, http.StatusOK)
		return
	}

	user, err := s.accounts.GetUserByID(r.Context(), actor.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "load account", "user_id", actor.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, pageView{
		Title:  msgs.PageTitleAccount,
		Menu:   s.menuItems(actor, msgs),
		Active: menuDashboard,
		Copy:   msgs,
		Body:   dashboard(msgs, *user),
	})
}

// handleUsers renders the Users tab. Actors that fail the switch gate get the
// account page without the listing.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	msgs := i18n.Account(i18n.Match(r.Header.Get("Accept-Language")))
	if !actor.Authenticated() {
		s.renderLogin(w, r, msgs, false, http.StatusOK)
		return
	}

	view := pageView{
		Title:  msgs.PageTitleAccount,
		Menu:   s.menuItems(actor, msgs),
		Active: switcher.Endpoint,
		Copy:   msgs,
	}
	if !s.flow.CanSwitch(actor) {
		s.render(w, r, http.StatusOK, view)
		return
	}

	req := switcher.ParseRequest(r.URL.Query(), r.PostForm)
	listing, err := s.flow.List(r.Context(), actor, req.Page, req.PerPage)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "list customers", "actor_id", actor.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	rows, err := s.flow.Rows(actor, listing)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "build switch forms", "actor_id", actor.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var carry url.Values
	if v := r.URL.Query().Get(switcher.ParamPerPage); v != "" {
		carry = url.Values{switcher.ParamPerPage: {v}}
	}
	links := pageLinks(listing.TotalPages, listing.CurrentPage, msgs.Previous, msgs.Next, carry)

	view.Title = msgs.Users
	view.Body = usersList(msgs, s.flow.FormAction(), rows, links)
	s.render(w, r, http.StatusOK, view)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	msgs := i18n.Account(i18n.Match(r.Header.Get("Accept-Language")))

	user, err := s.accounts.Login(r.Context(), auth.LoginRequest{
		Login:    r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.ErrorContext(r.Context(), "login", "error", err)
		}
		s.renderLogin(w, r, msgs, true, http.StatusUnauthorized)
		return
	}

	if previous := ActorFrom(r.Context()); previous.Authenticated() {
		if err := s.sessions.End(r.Context(), previous.SessionID); err != nil {
			s.logger.WarnContext(r.Context(), "end previous session", "user_id", previous.ID, "error", err)
		}
	}

	cred, err := s.sessions.Begin(r.Context(), user.ID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "begin session", "user_id", user.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.logger.InfoContext(r.Context(), "logged in", "user_id", user.ID)
	session.WriteCookie(w, r, cred)
	http.Redirect(w, r, s.flow.AccountURL()+"/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor := ActorFrom(r.Context())
	if actor.Authenticated() {
		if err := s.sessions.End(r.Context(), actor.SessionID); err != nil {
			s.logger.ErrorContext(r.Context(), "end session", "user_id", actor.ID, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}
	session.ClearCookie(w, r)
	http.Redirect(w, r, s.flow.AccountURL()+"/", http.StatusFound)
}

type salesRepRequest struct {
	SalesRep string `json:"sales_rep"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	if !ActorFrom(r.Context()).Can(auth.CapManageOptions) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	field, err := s.registry.Load(r.Context(), r.PathValue("name"))
	if err != nil {
		if errors.Is(err, fields.ErrUnknownField) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "field not found"})
			return
		}
		s.logger.ErrorContext(r.Context(), "load field", "name", r.PathValue("name"), "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, field)
}

func (s *Server) handleAssignSalesRep(w http.ResponseWriter, r *http.Request) {
	if !ActorFrom(r.Context()).Can(auth.CapManageOptions) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	customerID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || customerID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	var body salesRepRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body"})
		return
	}
	value := strings.TrimSpace(body.SalesRep)

	field, err := s.registry.Load(r.Context(), switcher.FieldSalesRep)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "load field", "name", switcher.FieldSalesRep, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if err := fields.Validate(field, value); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	var repID *int64
	if value != "" {
		id, _ := strconv.ParseInt(value, 10, 64)
		repID = &id
	}

	if err := s.accounts.AssignSalesRep(r.Context(), customerID, repID); err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "user not found"})
		case errors.Is(err, auth.ErrNotCustomer):
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		default:
			s.logger.ErrorContext(r.Context(), "assign sales rep", "user_id", customerID, "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, msgs i18n.AccountCopy, failed bool, status int) {
	s.render(w, r, status, pageView{
		Title: msgs.PageTitleAccount,
		Copy:  msgs,
		Body:  loginForm(msgs, s.flow.AccountURL()+"/login", failed),
	})
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := layout(view).Render(r.Context(), w); err != nil {
		s.logger.ErrorContext(r.Context(), "render page", "path", r.URL.Path, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
