// Package transport wraps the MCP HTTP endpoint with the ambient concerns a
// production listener needs: request IDs, structured logging, panic recovery,
// JWT authentication, and per-caller rate limiting.
package transport

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aa5177-adm/ticket-ai/internal/auth"
	"github.com/aa5177-adm/ticket-ai/internal/ratelimit"
)

type contextKey string

const contextKeyRequestID contextKey = "request_id"

// RequestIDFromContext extracts the request ID set by RequestIDMiddleware.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

type callerClaimsKey struct{}

// ClaimsFromContext extracts the JWT claims set by AuthMiddleware, if any.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(callerClaimsKey{}).(*auth.Claims)
	return claims
}

// RequestIDMiddleware assigns a request ID to each request, accepting a
// client-supplied X-Request-ID when it is safe to log and echo.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if !isValidRequestID(reqID) {
			reqID = uuid.New().String()
		}
		ctx := context.WithValue(r.Context(), contextKeyRequestID, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func isValidRequestID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// LoggingMiddleware logs each request with structured fields.
func LoggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFromContext(r.Context()),
		}
		if claims := ClaimsFromContext(r.Context()); claims != nil {
			attrs = append(attrs, "caller_id", claims.CallerID)
		}

		level := slog.LevelInfo
		switch {
		case wrapped.statusCode >= 500:
			level = slog.LevelError
		case wrapped.statusCode >= 400:
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "http request", attrs...)
	})
}

// RecoveryMiddleware catches panics in downstream handlers and returns a 500
// instead of crashing the listener.
func RecoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					"error", rec,
					"stack", string(debug.Stack()),
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestIDFromContext(r.Context()),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// noAuthPaths skip JWT authentication entirely.
var noAuthPaths = map[string]bool{
	"/health": true,
}

// AuthMiddleware validates a caller's credentials on every path except
// noAuthPaths and stores the resulting claims in the request context.
//
// Supported schemes:
//   - Bearer <jwt>        — Ed25519-signed JWT, validated via jwtMgr.
//   - ApiKey <caller>:<key> — a pre-shared key for machine clients (ticket-
//     system bots) that can't do token refresh, verified against
//     apiKeyHash via Argon2id. Skipped entirely when apiKeyHash is empty.
func AuthMiddleware(jwtMgr *auth.JWTManager, apiKeyHash string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if noAuthPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		scheme, credential, ok := strings.Cut(authHeader, " ")
		if !ok {
			http.Error(w, "invalid authorization format", http.StatusUnauthorized)
			return
		}

		var claims *auth.Claims
		switch {
		case strings.EqualFold(scheme, "Bearer"):
			var err error
			claims, err = jwtMgr.ValidateToken(credential)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

		case strings.EqualFold(scheme, "ApiKey") && apiKeyHash != "":
			callerID, key, ok := strings.Cut(credential, ":")
			if !ok || callerID == "" || key == "" {
				auth.DummyVerify()
				http.Error(w, "invalid api key format", http.StatusUnauthorized)
				return
			}
			valid, err := auth.VerifyAPIKey(key, apiKeyHash)
			if err != nil || !valid {
				http.Error(w, "invalid api key", http.StatusUnauthorized)
				return
			}
			claims = &auth.Claims{CallerID: callerID}

		default:
			http.Error(w, "unsupported authorization scheme (use Bearer or ApiKey)", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), callerClaimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware rejects requests once a caller exceeds its token
// bucket. Callers are keyed by JWT caller id when authenticated, falling
// back to remote IP (request's RemoteAddr, or X-Forwarded-For when
// trustProxy is set).
func RateLimitMiddleware(limiter ratelimit.Limiter, logger *slog.Logger, trustProxy bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rateLimitKey(r, trustProxy)

		allowed, err := limiter.Allow(r.Context(), key)
		if err != nil {
			logger.Warn("rate limiter error, allowing request", "error", err, "key", key)
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request, trustProxy bool) string {
	if claims := ClaimsFromContext(r.Context()); claims != nil && claims.CallerID != "" {
		return "caller:" + claims.CallerID
	}
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			if ip, _, found := strings.Cut(fwd, ","); found || ip != "" {
				return "ip:" + strings.TrimSpace(ip)
			}
		}
	}
	return "ip:" + r.RemoteAddr
}
