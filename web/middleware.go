package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"userswitch/session"
	"userswitch/switcher"
)

// chain applies middleware to a handler in the given order.
// The first middleware in the list wraps outermost (runs first).
func chain(h http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

type actorKey struct{}

// ActorFrom returns the actor resolved for the request, or the anonymous
// actor.
func ActorFrom(ctx context.Context) switcher.Actor {
	actor, _ := ctx.Value(actorKey{}).(switcher.Actor)
	return actor
}

func withActor(ctx context.Context, actor switcher.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// identify resolves the session cookie into an actor. Unknown, expired or
// ended sessions leave the request anonymous and clear the cookie.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := session.ReadCookie(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		rec, err := s.sessions.Resolve(r.Context(), token)
		if err != nil {
			s.logger.DebugContext(r.Context(), "session rejected", "error", err)
			session.ClearCookie(w, r)
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.accounts.GetUserByID(r.Context(), rec.UserID)
		if err != nil {
			s.logger.WarnContext(r.Context(), "session user lookup failed", "user_id", rec.UserID, "error", err)
			session.ClearCookie(w, r)
			next.ServeHTTP(w, r)
			return
		}

		actor := switcher.ActorFromUser(*user, rec.ID)
		next.ServeHTTP(w, r.WithContext(withActor(r.Context(), actor)))
	})
}

// switchUser runs the switch executor on every request. A successful switch
// writes the new session cookie, redirects to the account page and stops the
// request there.
func (s *Server) switchUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := parseForm(r); err != nil {
			next.ServeHTTP(w, r)
			return
		}

		req := switcher.ParseRequest(r.URL.Query(), r.PostForm)
		if !req.HasSwitch {
			next.ServeHTTP(w, r)
			return
		}

		out, err := s.flow.Switch(r.Context(), ActorFrom(r.Context()), req)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "switch failed", "target_id", req.TargetID, "error", err)
			http.Error(w, "switch failed", http.StatusInternalServerError)
			return
		}
		if !out.Switched {
			next.ServeHTTP(w, r)
			return
		}

		session.WriteCookie(w, r, out.Credential)
		http.Redirect(w, r, out.Redirect, http.StatusFound)
	})
}

// maxFormMemory bounds the multipart body kept in memory; larger parts spill
// to temporary files.
const maxFormMemory = 1 << 20

// parseForm fills r.PostForm from urlencoded and multipart bodies alike.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// RateLimitConfig holds rate limiter settings.
type RateLimitConfig struct {
	Rate       rate.Limit
	Burst      int
	StaleAfter time.Duration
	CleanEvery time.Duration
}

// DefaultRateLimitConfig allows a handful of form posts per second per client.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Rate:       5,
		Burst:      20,
		StaleAfter: 5 * time.Minute,
		CleanEvery: 3 * time.Minute,
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimitPosts returns per-IP rate limiting middleware for POST requests,
// which carry logins and switch attempts.
// The ctx parameter controls the lifetime of the background cleanup goroutine.
func rateLimitPosts(ctx context.Context, cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	var (
		mu       sync.Mutex
		visitors = make(map[string]*visitor)
	)

	go func() {
		ticker := time.NewTicker(cfg.CleanEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				mu.Lock()
				for ip, v := range visitors {
					if time.Since(v.lastSeen) > cfg.StaleAfter {
						delete(visitors, ip)
					}
				}
				mu.Unlock()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			mu.Lock()
			v, ok := visitors[ip]
			if !ok {
				v = &visitor{limiter: rate.NewLimiter(cfg.Rate, cfg.Burst)}
				visitors[ip] = v
			}
			v.lastSeen = time.Now()
			mu.Unlock()

			if !v.limiter.Allow() {
				logger.WarnContext(r.Context(), "rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
