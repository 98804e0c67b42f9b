package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PeHo89/backend-template/pkg/health"
	"github.com/PeHo89/backend-template/pkg/middleware"

	"github.com/PeHo89/backend-template/internal/service"
)

// NewRouter creates a chi router with all account service routes registered.
func NewRouter(
	accountService *service.AccountService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsConfig CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(corsConfig))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("account"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(accountService)
	accountHandler := NewAccountHandler(accountService)

	// Auth endpoints (public)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/refresh", authHandler.Refresh)
	})

	r.Route("/api/v1/account", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Token-based flows reached from emailed instructions (public).
		r.Put("/resend-confirmation", accountHandler.ResendConfirmation)
		r.Put("/confirm-email", accountHandler.ConfirmEmail)
		r.Put("/reset-password", accountHandler.ResetPassword)
		r.Put("/set-new-password", accountHandler.SetNewPassword)

		// Account management (auth required).
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(accountService.VerifyAccessToken))

			r.Get("/", accountHandler.Get)
			r.Patch("/", accountHandler.Update)
			r.Delete("/", accountHandler.Deactivate)
		})
	})

	return r
}
