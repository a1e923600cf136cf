package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forgecloud/identity-service/internal/application"
	"github.com/forgecloud/identity-service/internal/domain"
)

// Handler is the HTTP adapter entrypoint. Keeping only the application
// dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers routes and the middleware stack. Centralizing routes
// here keeps auth and error behavior consistent across endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/auth/v1", func(r chi.Router) {
		r.Post("/signup", handler.signup)
		r.Post("/signup/verify-email", handler.verifyEmail)
		r.Post("/signup/set-password", handler.setPassword)
		r.Post("/login", handler.login)
		r.Post("/login/verify-otp", handler.verifyLoginOTP)
		r.Post("/password/forgot", handler.forgotPassword)
		r.Post("/password/verify-otp", handler.verifyResetOTP)
		r.Post("/password/reset", handler.setNewPassword)

		r.With(handler.optionalAuthenticate).Get("/plans", handler.plans)

		r.Group(func(r chi.Router) {
			r.Use(handler.authenticate)
			r.Post("/refresh", handler.refresh)
			r.Post("/logout", handler.logout)
			r.With(handler.enforceRequestQuota).Get("/me", handler.me)
			r.With(handler.requireSubscription(domain.PlanDeveloper)).
				Get("/login-history", handler.loginHistory)
			r.With(handler.requireRole(domain.RoleAdmin, domain.RoleModerator)).
				Get("/accounts/{account_id}/login-history", handler.accountLoginHistory)
		})
	})

	return r
}
