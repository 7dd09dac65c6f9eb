package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osdatum/backend/internal/auth"
	"github.com/osdatum/backend/internal/service"
	"github.com/osdatum/backend/pkg/health"
	"github.com/osdatum/backend/pkg/middleware"
)

// NewRouter creates a chi router with all backend routes registered.
func NewRouter(
	authService *service.AuthService,
	entitlementService *service.EntitlementService,
	tokens *auth.TokenManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("osdatum"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(authService, logger)
	userHandler := NewUserHandler(entitlementService, logger)
	subscriptionHandler := NewSubscriptionHandler(entitlementService, logger)

	// Token validator that bridges to the internal TokenManager.
	tokenValidator := func(token string) (*middleware.Claims, error) {
		claims, err := tokens.Verify(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
		}, nil
	}

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints
		r.Route("/auth", func(r chi.Router) {
			r.Use(ContentTypeJSON)

			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/firebase", authHandler.Firebase)
		})

		// Authenticated user endpoints
		r.Route("/user", func(r chi.Router) {
			r.Use(middleware.Auth(tokenValidator))

			r.Get("/access", userHandler.GetAccess)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Post("/purchase/grid", userHandler.PurchaseGrid)
				r.Post("/subscribe", userHandler.Subscribe)
			})
		})

		// Legacy purchase and subscription endpoints
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(middleware.Auth(tokenValidator))

			r.Post("/purchase/grid", subscriptionHandler.PurchaseGrid)
			r.Post("/subscription", subscriptionHandler.Upgrade)
		})

		// Public application form
		r.With(ContentTypeJSON).Post("/subscription/apply", subscriptionHandler.Apply)
	})

	return r
}
