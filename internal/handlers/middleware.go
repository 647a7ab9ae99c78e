package handlers

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/models"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

func recoverer(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					log.Error(r.Context(), "panic serving request", "path", r.URL.Path, "panic", v)
					writeFail(w, http.StatusInternalServerError, CodeInternal, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// sessionReader attaches the caller's session, if any, to the request context.
type sessionReader struct {
	sessions *auth.Sessions
	cookie   string
}

func (s *sessionReader) token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
	}
	if c, err := r.Cookie(s.cookie); err == nil {
		return c.Value
	}
	return ""
}

// Middleware validates the token on every request. A missing or invalid token
// leaves the request anonymous; guards decide what that means.
func (s *sessionReader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.token(r); tok != "" {
			if sess, err := s.sessions.Validate(tok); err == nil {
				r = r.WithContext(auth.WithSession(r.Context(), sess))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole rejects anonymous callers with 401 and callers lacking one of
// roles with 403. No roles means any signed-in user.
func requireRole(log logging.Logger, h http.HandlerFunc, roles ...string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := auth.FromContext(r.Context())
		if !ok {
			writeError(w, r, log, errUnauthorized)
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, sess.Role) {
			writeError(w, r, log, errForbidden)
			return
		}
		h(w, r)
	})
}

func adminOnly(log logging.Logger, h http.HandlerFunc) http.Handler {
	return requireRole(log, h, models.RoleAdmin)
}

// pageGate guards the presentation pages: /profile/ is for signed-in
// customers and /dashboard/ for admins. Everyone else is sent to the login
// page with a return path.
func pageGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var allow func(*auth.Session) bool
		switch {
		case under(r.URL.Path, "/profile"):
			allow = func(s *auth.Session) bool { return s.Role != models.RoleAdmin }
		case under(r.URL.Path, "/dashboard"):
			allow = func(s *auth.Session) bool { return s.Role == models.RoleAdmin }
		default:
			next.ServeHTTP(w, r)
			return
		}

		sess, ok := auth.FromContext(r.Context())
		if !ok || !allow(sess) {
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
