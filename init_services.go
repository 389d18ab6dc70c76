// Package main: service layer setup.
//
// initServices builds the services and the login limiter. Each service gets
// the repository interfaces and settings it needs through its constructor.
package main

import (
	"fmt"

	"github.com/akinalp/shopapi/config"
	"github.com/akinalp/shopapi/pkg/crypto"
	"github.com/akinalp/shopapi/pkg/ratelimit"
	"github.com/akinalp/shopapi/services"
)

// Services holds every service instance.
type Services struct {
	Tokens  services.TokenService
	Auth    services.AuthService
	Upload  services.UploadService
	Product services.ProductService
}

// RateLimiters holds the login limiter and the client ip resolver it keys
// on. The limiter's sweep goroutine must be stopped on shutdown.
type RateLimiters struct {
	Login    *ratelimit.Limiter
	ClientIP *ratelimit.IPResolver
}

// Stop ends every limiter's background cleanup.
func (l *RateLimiters) Stop() {
	l.Login.Stop()
}

// initServices creates the services. Tokens is created first because Auth
// signs with it.
func initServices(repos *Repositories, cfg *config.Config) (*Services, *RateLimiters, error) {
	tokens, err := services.NewTokenService(services.TokenConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token service: %w", err)
	}

	hasher := crypto.NewPasswordHasher(cfg.Auth.PasswordIterations)
	uploads := services.NewUploadService(cfg.Upload.Dir, cfg.Upload.MaxSize, cfg.Upload.AllowWebP)

	svcs := &Services{
		Tokens:  tokens,
		Auth:    services.NewAuthService(repos.User, hasher, tokens),
		Upload:  uploads,
		Product: services.NewProductService(repos.Product, uploads),
	}

	clientIPs, err := ratelimit.NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse trusted proxies: %w", err)
	}

	limiters := &RateLimiters{
		Login:    ratelimit.New(cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow),
		ClientIP: clientIPs,
	}

	return svcs, limiters, nil
}
