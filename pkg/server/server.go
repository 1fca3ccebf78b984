package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	metrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/buyers"
	"github.com/vipul69-eng/leadbook/pkg/ratelimit"
)

type contextKey string

const sessionContextKey contextKey = "session"

// sessionCookieName carries the access token for browser clients; API clients
// use the Authorization header instead.
const sessionCookieName = "sid"

// Server is the HTTP API for the lead book: auth, buyer CRUD, CSV import and
// export, history and tag suggestions.
type Server struct {
	listenAddr string
	authSvc    *auth.Service
	buyerSvc   *buyers.Service
	limiter    ratelimit.Limiter
	httpServer *http.Server
}

func New(listenAddr string, authSvc *auth.Service, buyerSvc *buyers.Service, limiter ratelimit.Limiter) *Server {
	return &Server{
		listenAddr: listenAddr,
		authSvc:    authSvc,
		buyerSvc:   buyerSvc,
		limiter:    limiter,
	}
}

func (s *Server) handler() http.Handler {
	serveMux := http.NewServeMux()

	serveMux.HandleFunc("/api/health", s.healthz)
	serveMux.HandleFunc("/api/auth/signup", s.signup)
	serveMux.HandleFunc("/api/auth/login", s.login)
	serveMux.HandleFunc("/api/auth/me", s.requireSession(s.me))
	serveMux.HandleFunc("/api/buyers", s.requireSession(s.buyersCollection))
	serveMux.HandleFunc("/api/buyers/import", s.requireSession(s.importBuyers))
	serveMux.HandleFunc("/api/buyers/export", s.requireSession(s.exportBuyers))
	serveMux.HandleFunc("/api/buyers/", s.requireSession(s.buyerItem))
	serveMux.HandleFunc("/api/tags", s.requireSession(s.tags))

	return serveMux
}

// Serve blocks, listening on the configured address until the server is shut
// down or fails.
func (s *Server) Serve() error {
	metricsMiddleware := middleware.New(middleware.Config{
		Recorder: metrics.NewRecorder(metrics.Config{}),
	})

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           std.Handler("", metricsMiddleware, s.handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// ServeMetrics exposes the Prometheus registry on its own listener, kept off
// the API port.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return server.ListenAndServe()
}

func (s *Server) healthz(w http.ResponseWriter, req *http.Request) {
	RespondWithJSON(http.StatusOK, w, map[string]string{"status": "ok"})
}

// requireSession verifies the caller's token, from the Authorization header
// or the session cookie, and attaches the session to the request context.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token := bearerToken(req)
		if token == "" {
			if cookie, err := req.Cookie(sessionCookieName); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			respondError(http.StatusUnauthorized, w, "unauthorized")
			return
		}

		session, err := s.authSvc.Verify(token)
		if err != nil {
			respondError(http.StatusUnauthorized, w, "unauthorized")
			return
		}
		ctx := context.WithValue(req.Context(), sessionContextKey, session)
		next(w, req.WithContext(ctx))
	}
}

func bearerToken(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func sessionFromContext(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}
