package app

import (
	"context"

	"user-service/internal/api"
	"user-service/internal/auth/handler"
	"user-service/internal/auth/provider"
	"user-service/internal/auth/provider/google"
	"user-service/internal/auth/provider/oidc"
	"user-service/internal/auth/resolver"
	"user-service/internal/cache"
	"user-service/internal/config"
	"user-service/internal/logger"
	"user-service/internal/middleware"
	"user-service/internal/org"
	"user-service/internal/session"
	"user-service/internal/team"
	"user-service/internal/user"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	localCache := cache.NewLocal()
	sessionStore := session.NewRedisStore(infra.Redis.Client)

	orgService := org.NewService(infra.DB, cfg.AutoAssignOrg, cfg.AutoAssignOrgName)
	teamService := team.NewService(infra.DB)
	userService := user.NewService(
		infra.DB,
		orgService,
		teamService,
		localCache,
		cfg.SignedInUserCacheTTL,
		cfg.AutoAssignOrgRole,
	)

	identityResolver := resolver.NewUserResolver(userService)

	providers, err := setupProviders(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewHandler(
		providers,
		sessionStore,
		identityResolver,
		userService,
		cfg.SessionTTL,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore, userService)

	apiHandler := api.NewHandler(userService, orgService, teamService, sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	protected := router.Group("/api")
	protected.Use(middleware.GinRequireAuth(authMiddleware))

	apiHandler.RegisterRoutes(protected)

	return router, func() error {
		return infra.DB.Close()
	}, nil
}

// setupProviders registers only the externally configured providers;
// password login works without any.
func setupProviders(ctx context.Context, cfg config.Config) (*provider.Registry, error) {
	var list []provider.OAuthProvider

	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, googleProvider)
		logger.Info("google oauth enabled", nil)
	}

	if cfg.OIDCIssuer != "" {
		oidcProvider, err := oidc.New(
			ctx,
			cfg.OIDCIssuer,
			cfg.OIDCClientID,
			cfg.OIDCRedirectURL,
		)
		if err != nil {
			return nil, err
		}
		list = append(list, oidcProvider)
		logger.Info("oidc oauth enabled", map[string]any{"issuer": cfg.OIDCIssuer})
	}

	return provider.NewRegistry(list...), nil
}
