package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upb/genproxy/app"
	"github.com/upb/genproxy/handlers"
	"github.com/upb/genproxy/middleware"
	"github.com/upb/genproxy/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))

	origins := []string{"*"}
	if deps.Config != nil && len(deps.Config.Server.CORSAllowedOrigins) > 0 {
		origins = deps.Config.Server.CORSAllowedOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	// Set before mounting so sub-routers inherit them
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	generate := handlers.NewGenerateHandler(deps.Dispatcher, deps.Logger)
	health := handlers.NewHealthHandler(deps.Dispatcher, deps.Logger)

	mount := func(r chi.Router) {
		r.Post("/generate", generate.Generate)
		r.Get("/ping", health.Ping)
		r.Get("/providers", health.Providers)
	}

	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	mount(r)

	if deps.Config != nil && deps.Config.Server.RoutePrefix != "" {
		r.Route(deps.Config.Server.RoutePrefix, mount)
	}

	return r
}
