package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/mnemoflash/internal/errors"
	"github.com/vytor/mnemoflash/internal/logger"
	"github.com/vytor/mnemoflash/internal/models"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

type contextKey string

const (
	profileContextKey contextKey = "profile"
	profileCookieName            = "profile_id"
)

func profileFromContext(ctx context.Context) *models.Profile {
	if v := ctx.Value(profileContextKey); v != nil {
		if p, ok := v.(*models.Profile); ok {
			return p
		}
	}
	return nil
}

// profileMiddleware loads the profile named by the profile cookie into the
// request context. Requests without a valid cookie pass through without one.
func (s *Server) profileMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())
		cookie, err := r.Cookie(profileCookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		profileID, err := strconv.ParseInt(cookie.Value, 10, 64)
		if err != nil {
			log.Warn("invalid profile cookie, clearing")
			clearProfileCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		profile, err := s.ProfileService.GetProfile(r.Context(), profileID)
		if err != nil {
			// only a deleted profile drops the cookie; lookup failures keep it
			if appErr, ok := errors.As(err); !ok || appErr.Status != http.StatusNotFound {
				log.Error("failed to load profile %d from cookie: %v", profileID, err)
				handleError(w, r, err)
				return
			}
			log.Warn("profile %d from cookie no longer exists, clearing", profileID)
			clearProfileCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), profileContextKey, profile)
		ctx = logger.NewContext(ctx, log.WithField("profile_id", profile.ID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireProfile rejects requests that have no active profile.
func requireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if profileFromContext(r.Context()) == nil {
			handleError(w, r, errors.NewForbiddenError("select a profile first"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clearProfileCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    profileCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func setProfileCookie(w http.ResponseWriter, id int64) {
	http.SetCookie(w, &http.Cookie{
		Name:     profileCookieName,
		Value:    strconv.FormatInt(id, 10),
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// loggingMiddleware logs HTTP requests with timing, status codes, and request IDs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		log := logger.Default().WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})
		if r.RemoteAddr != "" {
			log = log.WithField("remote_addr", r.RemoteAddr)
		}

		r = r.WithContext(logger.NewContext(r.Context(), log))
		w.Header().Set("X-Request-ID", requestID)
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		log.Debug("request started")
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": duration.Milliseconds(),
		})

		if wrapped.status >= 500 {
			log.Error("request completed with server error")
		} else if wrapped.status >= 400 {
			log.Warn("request completed with client error")
		} else {
			log.Info("request completed")
		}
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic recovered: %v", rec)
				handleError(w, r, errors.NewInternalError(nil))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// timeoutMiddleware wraps a handler with a timeout.
func timeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, `{"error":{"code":"TIMEOUT","message":"request timeout"}}`)
	}
}
