package http

import (
	"net/http"

	"github.com/atinyakov/RecipeVault/internal/middleware"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter constructs the HTTP handler serving the recipe API.
//
// Public routes:
//
//	POST /users/create  → userHandler.Create
//	POST /users/token   → userHandler.Token
//
// Everything else requires a valid bearer token resolved by the TokenAuth
// middleware; unsupported verbs on known routes yield 405 via chi.
func NewRouter(
	userHandler *UserHandler,
	tagHandler *AttributeHandler,
	ingredientHandler *AttributeHandler,
	recipeHandler *RecipeHandler,
	resolver middleware.TokenResolver,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// JSON everywhere except the multipart image upload
	r.Use(chiMiddleware.AllowContentType("application/json", "multipart/form-data"))

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/users", func(r chi.Router) {
		// Public endpoints
		r.Post("/create", userHandler.Create)
		r.Post("/token", userHandler.Token)

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.TokenAuth(resolver))
			r.Get("/", userHandler.Me)
			r.Patch("/", userHandler.UpdateMe)
		})
	})

	r.Route("/recipe", func(r chi.Router) {
		// Protected group: every owned-resource endpoint
		r.Use(middleware.TokenAuth(resolver))

		mountAttribute := func(r chi.Router, h *AttributeHandler) {
			r.Get("/", h.List)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		}
		r.Route("/tags", func(r chi.Router) { mountAttribute(r, tagHandler) })
		r.Route("/ingredients", func(r chi.Router) { mountAttribute(r, ingredientHandler) })

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", recipeHandler.Get)
				r.Put("/", recipeHandler.Replace)
				r.Patch("/", recipeHandler.Patch)
				r.Delete("/", recipeHandler.Delete)

				r.Post("/upload-image", recipeHandler.UploadImage)
				r.Delete("/upload-image", recipeHandler.RemoveImage)
			})
		})
	})

	return r
}
