package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/charlesng35/accountd/internal/app"
	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/auth/providers"
	"github.com/charlesng35/accountd/internal/handlers"
	"github.com/charlesng35/accountd/internal/middleware"
	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
)

// Dependencies bundles the collaborators the router wires into handlers.
type Dependencies struct {
	Config     *app.Config
	Identities store.IdentityStore
	JWT        *iauth.JWTService
	Sessions   *iauth.SessionService
	Activation *services.ActivationService
	Recovery   *services.RecoveryService
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(deps Dependencies) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.Identities == nil {
		return nil, fmt.Errorf("identity store must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session service must be provided")
	}
	if deps.Activation == nil {
		return nil, fmt.Errorf("activation service must be provided")
	}
	if deps.Recovery == nil {
		return nil, fmt.Errorf("recovery service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	if deps.Config.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}

	if deps.Config.Monitoring.Prometheus.Enabled {
		endpoint := deps.Config.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	accountsHandler := handlers.NewAccountsHandler(deps.Activation, deps.Recovery)

	// Public account lifecycle routes
	accounts := r.Group("/api/accounts")
	{
		accounts.POST("/register", accountsHandler.Register)
		accounts.GET("/activate/:token", accountsHandler.Activate)
		accounts.POST("/recover", accountsHandler.RequestReset)
		accounts.GET("/recover/:token", accountsHandler.ResolveResetToken)
		accounts.POST("/reset", accountsHandler.CompleteReset)
	}

	localProvider, err := providers.NewLocalProvider(deps.Identities)
	if err != nil {
		return nil, err
	}

	authHandler := handlers.NewAuthHandler(localProvider, deps.Sessions, deps.Identities)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Authenticated auth routes
	requireAuth := middleware.Auth(deps.JWT)
	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)
	api.POST("/auth/logout", authHandler.Logout)

	return r, nil
}
