package api

import (
	"log/slog"
	"net/http"
	"time"

	"sahaya_api/internal/api/handler"
	"sahaya_api/internal/app/service"
	"sahaya_api/internal/platform/logger"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	AllowedOrigins []string
	Cookie         handler.SessionCookie
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	tokenAuth *jwtauth.JWTAuth,
	log *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(logger.StructuredLogger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	authHandler := handler.NewAuthHandler(authService, cfg.Cookie, log)
	userHandler := handler.NewUserHandler(userService, authHandler, tokenAuth, log)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", authHandler.RegisterRoutes)
		api.Route("/user", userHandler.RegisterRoutes)
	})

	return r
}
