// Package main: HTTP route registration.
//
// initRoutes binds every endpoint to the mux. The auth helper wraps a handler
// with the bearer token check.
package main

import (
	"net/http"

	"github.com/akinalp/shopapi/middleware"
	"github.com/akinalp/shopapi/repository"
	"github.com/akinalp/shopapi/services"
)

// initRoutes registers the API on mux.
//
// The product routes keep their historical names (getProducts,
// updateProducts, deleteProduct); clients depend on them. Update and delete
// accept the id either in the path or in the body/query, hence two patterns
// each.
func initRoutes(
	mux *http.ServeMux,
	h *Handlers,
	tokens services.TokenService,
	userRepo repository.UserRepository,
	uploadsPath string,
) {
	authMw := middleware.NewAuthMiddleware(tokens, userRepo)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}

	// Health
	mux.HandleFunc("GET /api/health", h.Health.Check)

	// Users
	mux.HandleFunc("POST /api/register", h.Auth.Register)
	mux.HandleFunc("POST /api/login", h.Auth.Login)
	mux.Handle("GET /api/profile", auth(h.Auth.Profile))
	mux.Handle("PUT /api/update-profile", auth(h.Auth.UpdateProfile))

	// Products
	mux.HandleFunc("POST /api/products", h.Product.Create)
	mux.HandleFunc("GET /api/getProducts", h.Product.List)
	mux.HandleFunc("GET /api/product/{id}", h.Product.Get)
	mux.HandleFunc("PUT /api/updateProducts", h.Product.Update)
	mux.HandleFunc("PUT /api/updateProducts/{id}", h.Product.Update)
	mux.HandleFunc("DELETE /api/deleteProduct", h.Product.Delete)
	mux.HandleFunc("DELETE /api/deleteProduct/{id}", h.Product.Delete)

	// Stored images. {name} matches a single segment; the handler rejects
	// anything else that could leave the upload directory.
	mux.HandleFunc("GET "+uploadsPath+"{name}", h.Uploads.Serve)
}
