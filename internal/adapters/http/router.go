package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kulltaa/masterCondo/internal/application"
)

// Handler is the HTTP adapter entrypoint for the account use-cases.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the account routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/users", func(r chi.Router) {
		r.Post("/", handler.register)
		r.Post("/login", handler.login)
		r.Post("/logout", handler.logout)
		r.Get("/verify", handler.verify)
		r.Post("/forgot", handler.forgot)
		r.Get("/validate_forgot_params", handler.validateForgotParams)
		r.Post("/recover", handler.recover)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Get("/status", handler.status)
		})
	})

	return r
}
