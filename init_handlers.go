// Package main: handler layer setup.
//
// Handlers are thin: parse the request, call a service, write the envelope.
package main

import (
	"github.com/akinalp/shopapi/config"
	"github.com/akinalp/shopapi/handlers"
)

// serviceName is reported by the health endpoint and tagged on every log line.
const serviceName = "shopapi"

// Handlers holds every handler instance.
type Handlers struct {
	Auth    *handlers.AuthHandler
	Product *handlers.ProductHandler
	Uploads *handlers.UploadsHandler
	Health  *handlers.HealthHandler
}

// initHandlers creates the handlers from the services and limiters.
func initHandlers(svcs *Services, limiters *RateLimiters, db handlers.Pinger, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:    handlers.NewAuthHandler(svcs.Auth, limiters.Login, limiters.ClientIP),
		Product: handlers.NewProductHandler(svcs.Product, svcs.Upload, cfg.Upload.MaxSize),
		Uploads: handlers.NewUploadsHandler(cfg.Upload.Dir),
		Health:  handlers.NewHealthHandler(db, serviceName),
	}
}
