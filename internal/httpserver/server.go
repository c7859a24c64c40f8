package httpserver

import (
	"context"
	"net/http"
	"strings"

	"kudos/backend/internal/config"
	authdomain "kudos/backend/internal/domain/auth"
	kudosdomain "kudos/backend/internal/domain/kudos"
	"kudos/backend/internal/logging"
	"kudos/backend/internal/session"
	authusecase "kudos/backend/internal/usecase/auth"
	kudosusecase "kudos/backend/internal/usecase/kudos"
	profileusecase "kudos/backend/internal/usecase/profile"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// AuthService is the credential store and token service as seen by handlers.
type AuthService interface {
	Login(ctx context.Context, creds authdomain.Credentials) (string, error)
	CreateAccount(ctx context.Context, input authusecase.RegisterInput) (*authdomain.Identity, error)
	Authorize(ctx context.Context, token string) (*authdomain.Identity, error)
}

// ProfileService manages the caller's profile.
type ProfileService interface {
	Get(ctx context.Context, id string) (*authdomain.Profile, error)
	ListOthers(ctx context.Context, selfID string) ([]*authdomain.Profile, error)
	Update(ctx context.Context, id string, input profileusecase.UpdateInput) (*authdomain.Profile, error)
	UploadPicture(ctx context.Context, id string, data []byte) (*authdomain.Profile, error)
}

// KudosService posts and lists kudos.
type KudosService interface {
	Post(ctx context.Context, authorProfileID string, input kudosusecase.PostInput) (*kudosdomain.Kudos, error)
	ListReceived(ctx context.Context, profileID string, input kudosusecase.ListInput) ([]*kudosdomain.Kudos, error)
	ListRecent(ctx context.Context, limit int) ([]*kudosdomain.Kudos, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps groups the collaborators of the HTTP layer.
type Deps struct {
	DB       Pinger
	Auth     AuthService
	Profiles ProfileService
	Kudos    KudosService
	Sessions *session.Store
	Logger   *zap.Logger
}

// Server wraps the HTTP server lifecycle.
type Server struct {
	httpServer     *http.Server
	router         chi.Router
	db             Pinger
	auth           AuthService
	profiles       ProfileService
	kudos          KudosService
	sessions       *session.Store
	logger         *zap.Logger
	allowedOrigins []string
	uploadMaxBytes int64
	addr           string
}

// NewServer constructs a new Server with configured dependencies.
func NewServer(cfg config.Config, deps Deps) *Server {
	addr := cfg.HTTPPort
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &Server{
		router:         chi.NewRouter(),
		db:             deps.DB,
		auth:           deps.Auth,
		profiles:       deps.Profiles,
		kudos:          deps.Kudos,
		sessions:       deps.Sessions,
		logger:         logger,
		allowedOrigins: cfg.AllowedOrigins,
		uploadMaxBytes: cfg.UploadMaxBytes,
		addr:           addr,
	}
	srv.registerRoutes()
	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return srv
}

func (s *Server) registerRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(withCORS(s.allowedOrigins))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.Post("/register", s.handleRegister)
		r.Get("/session", s.handleSession)
	})
	r.Post("/actions/auth/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/protected/home", s.handleHome)
		r.Get("/protected/me", s.handleMe)
		r.Get("/protected/chat", s.handleChat)
		r.Get("/profiles", s.handleListProfiles)
		r.Put("/actions/profile", s.handleUpdateProfile)
		r.Post("/actions/profile/picture", s.handleUploadPicture)
		r.Post("/actions/kudos/post", s.handlePostKudos)
	})
}

// Handler exposes the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start bootstraps the HTTP server on the configured address.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured network address for the HTTP server.
func (s *Server) Addr() string {
	return s.addr
}
