package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/propdesk/propdesk/internal/api/handlers"
	"github.com/propdesk/propdesk/internal/api/middleware"
	"github.com/propdesk/propdesk/internal/auth"
	"github.com/propdesk/propdesk/internal/tenant"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	AuthService    auth.Authenticator
	Resolver       *tenant.Resolver
	Dev            bool
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow localhost in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Resolver, cfg.Logger, cfg.Dev)
	listingHandler := handlers.NewListingHandler(cfg.DB, cfg.Logger, cfg.Dev)
	employeeHandler := handlers.NewEmployeeHandler(cfg.DB, cfg.Resolver, cfg.Logger, cfg.Dev)
	appointmentHandler := handlers.NewAppointmentHandler(cfg.DB, cfg.Resolver, cfg.Logger, cfg.Dev)
	rentHandler := handlers.NewRentHandler(cfg.DB, cfg.Resolver, cfg.Logger, cfg.Dev)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Post("/auth/forgot-password", authHandler.ForgotPassword)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.AuthService))

			r.Get("/me", authHandler.Me)
			r.Post("/auth/assign-company", authHandler.AssignCompany)
			r.Get("/auth/company-users", authHandler.CompanyUsers)

			// Legacy per-user listings
			r.Route("/listings", func(r chi.Router) {
				r.Get("/", listingHandler.List)
				r.Post("/", listingHandler.Create)
				r.Get("/{id}", listingHandler.Get)
				r.Put("/{id}", listingHandler.Update)
				r.Delete("/{id}", listingHandler.Delete)
			})

			// Company-scoped resources
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.Post("/", employeeHandler.Create)
				r.Get("/{id}", employeeHandler.Get)
				r.Put("/{id}", employeeHandler.Update)
				r.Delete("/{id}", employeeHandler.Delete)
			})

			r.Route("/appointments", func(r chi.Router) {
				r.Get("/", appointmentHandler.List)
				r.Post("/", appointmentHandler.Create)
				r.Get("/{id}", appointmentHandler.Get)
				r.Put("/{id}", appointmentHandler.Update)
				r.Put("/{id}/status", appointmentHandler.UpdateStatus)
				r.Delete("/{id}", appointmentHandler.Delete)
			})

			r.Route("/rents", func(r chi.Router) {
				r.Get("/", rentHandler.List)
				r.Post("/", rentHandler.Create)
				r.Get("/{id}", rentHandler.Get)
				r.Post("/{id}/collect", rentHandler.Collect)
				r.Delete("/{id}", rentHandler.Delete)
			})
		})
	})

	return &Router{r}
}
