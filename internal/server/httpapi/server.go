package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
	"github.com/dmitrijs2005/taskhub/internal/server/config"
	"github.com/dmitrijs2005/taskhub/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// authRateLimit caps login/registration attempts per client IP.
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

// Server is the HTTP transport. It owns the router and delegates all
// business logic to the services.
type Server struct {
	address       string
	logger        logging.Logger
	auth          *AuthMiddleware
	users         *services.UserService
	tasks         *services.TaskService
	notifications *services.NotificationService
	tokenValidity time.Duration
}

func NewServer(cfg *config.Config, logger logging.Logger,
	users *services.UserService, tasks *services.TaskService, notifications *services.NotificationService) *Server {
	return &Server{
		address:       cfg.Address,
		logger:        logger.With("module", "http_server"),
		auth:          NewAuthMiddleware(users, cfg.SecretKey, logger),
		users:         users,
		tasks:         tasks,
		notifications: notifications,
		tokenValidity: cfg.TokenValidityDuration,
	}
}

// requestLogger logs one line per request through the structured logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Routes builds the router. Exposed for handler tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(authRateLimit, authRateWindow))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.With(s.auth.OptionalAuth).Get("/session", s.handleSession)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(s.auth.RequireAuth)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", s.handleMe)
				r.Patch("/", s.handleUpdateMe)
				r.Patch("/password", s.handleChangePassword)
				r.Delete("/", s.handleDeleteMe)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireRole(common.RoleAdmin))
				r.Get("/", s.handleListUsers)
				r.Get("/{id}", s.handleGetUser)
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(s.auth.RequireAuth)

			r.Post("/", s.handleCreateTask)
			r.Get("/", s.handleListTasks)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(RequireOwner(s.tasks.GetOwnerID, "id"))
				r.Get("/", s.handleGetTask)
				r.Patch("/", s.handleUpdateTask)
				r.Delete("/", s.handleDeleteTask)
				r.Post("/attachment", s.handleAttachmentUpload)
				r.Get("/attachment", s.handleAttachmentDownload)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.auth.RequireAuth)
			r.Get("/", s.handleListNotifications)
			r.Patch("/{id}/read", s.handleMarkNotificationRead)
			r.Delete("/", s.handleClearNotifications)
		})
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
