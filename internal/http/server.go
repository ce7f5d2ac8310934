// Package http serves the cash-book JSON API: authentication, transaction
// CRUD, monthly reports and exports. Every data read goes through the
// ledger snapshot, refreshed on demand from storage.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/auth"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/core"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyToken
	ctxKeyTraceID
)

// sessionCookie carries the token for browser clients that cannot set an
// Authorization header on downloads.
const sessionCookie = "kas_token"

type Server struct {
	http.Server
	ledger       *ledger.Store
	auth         *auth.Service
	logger       *log.Logger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

type Options struct {
	Addr            string
	RateLimitBurst  int
	RateLimitWindow time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, store *ledger.Store, authSvc *auth.Service, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = 60
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: mux,
		},
		ledger:      store,
		auth:        authSvc,
		logger:      logger,
		rateLimiter: newRateLimiter(opts.RateLimitBurst, opts.RateLimitWindow),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/login", s.public(s.handleLogin))
	mux.HandleFunc("POST /api/auth/logout", s.public(s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.protected(s.handleMe))
	mux.HandleFunc("PUT /api/auth/password", s.protected(s.handleChangePassword))
	mux.HandleFunc("PUT /api/auth/profile", s.protected(s.handleUpdateProfile))

	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /api/reports", s.protected(s.handleReports))
	mux.HandleFunc("GET /api/reports/{month}/recap", s.protected(s.handleRecap))
	mux.HandleFunc("GET /api/export/csv", s.protected(s.handleExportCSV))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// public wraps a handler with tracing, security headers and rate limiting.
func (s *Server) public(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := clientAddr(r)
		traceID := generateTraceID()
		ctx := context.WithValue(r.Context(), ctxKeyTraceID, traceID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "request started",
			log.FieldTraceID, traceID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldRemoteAddr, clientIP)

		// Rate limit mutations only; reads are served from the snapshot
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			s.logger.WarnContext(ctx, "rate limit exceeded",
				log.FieldRemoteAddr, clientIP,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "no-store")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "request completed",
			log.FieldTraceID, traceID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatus, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

// protected additionally resolves the session and puts the member on the
// request context.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.public(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "not signed in")
			return
		}

		user, err := s.auth.CurrentUser(r.Context(), token)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		ctx = context.WithValue(ctx, ctxKeyToken, token)
		next(w, r.WithContext(ctx))
	})
}

// bearerToken pulls the session token from the Authorization header, the
// token query parameter (downloads) or the session cookie, in that order.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && h[:7] == "Bearer " {
		return h[7:]
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

func requestUser(r *http.Request) core.User {
	user, _ := r.Context().Value(ctxKeyUser).(core.User)
	return user
}

func requestToken(r *http.Request) string {
	token, _ := r.Context().Value(ctxKeyToken).(string)
	return token
}

func clientAddr(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateTraceID creates a unique request ID for log correlation
func generateTraceID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
