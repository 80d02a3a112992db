package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mathtrail/mathtrail-api/internal/api"
	apiMiddleware "github.com/mathtrail/mathtrail-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)
	r.Use(apiMiddleware.Session(app.sessions))

	authHandler := api.NewAuthHandler(app.authService, app.logger)
	adminHandler := api.NewAdminHandler(app.authService, app.logger)
	profileHandler := api.NewProfileHandler(app.authService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.SignUp)
		r.Post("/auth/signin", authHandler.SignIn)
		r.Post("/auth/signout", authHandler.SignOut)
		r.Get("/auth/me", authHandler.Me)

		// Authorization happens in the service layer: the admin listing
		// rejects non-admin sessions and the profile update rejects
		// anonymous ones. No route-level gate is needed.
		r.Get("/admin/users", adminHandler.ListUsers)
		r.Put("/account/profile", profileHandler.Update)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
