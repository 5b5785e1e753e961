package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"
	"go.uber.org/zap"

	"studiokit/internal/authflow"
	"studiokit/internal/caching"
	"studiokit/internal/common"
	"studiokit/internal/config"
	"studiokit/internal/handlers"
	"studiokit/internal/jobs/background"
	"studiokit/internal/middleware"
	"studiokit/internal/repositories"
	"studiokit/internal/services"
	"studiokit/pkg/database"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.Production() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		cfg.JWTSecret = random.String(32) // Generate random secret for development
		logger.Warn("JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	pool, err := database.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Repositories
	tenantRepo := repositories.NewTenantRepository(pool)
	userRepo := repositories.NewUserRepository(pool)
	membershipRepo := repositories.NewMembershipRepository(pool)
	assignmentRepo := repositories.NewRoleAssignmentRepository(pool)
	customRoleRepo := repositories.NewCustomRoleRepository(pool)
	featureFlagRepo := repositories.NewFeatureFlagRepository(pool)

	// Services
	cacheSvc := caching.NewRedisCacheService(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	vaultSvc := services.NewVaultService(cfg.EncryptionSecret)
	notifierSvc := services.NewNotifierService(cfg, logger)
	authSvc := services.NewAuthService(cacheSvc, cfg.JWTSecret, 900, 30*24*3600)

	tasks := common.NewTaskRunner(logger, 10*time.Second)

	// The per-request tenant & authorization pipeline
	pipeline := authflow.New(authflow.Deps{
		Config:          cfg,
		Logger:          logger,
		Tasks:           tasks,
		Vault:           vaultSvc,
		TenantRepo:      tenantRepo,
		UserRepo:        userRepo,
		MembershipRepo:  membershipRepo,
		AssignmentRepo:  assignmentRepo,
		CustomRoleRepo:  customRoleRepo,
		FeatureFlagRepo: featureFlagRepo,
	})

	jwtMiddleware, err := middleware.JWTMiddleware(cfg.JWTSecret, cfg.JWKSURL)
	if err != nil {
		logger.Fatal("Failed to set up JWT middleware", zap.Error(err))
	}
	rbac := middleware.NewRBACMiddleware()
	audit := middleware.NewAuditMiddleware(logger)

	// Handlers
	authHandlers := handlers.NewAuthHandlers(authSvc, cacheSvc, userRepo, tenantRepo, membershipRepo, assignmentRepo)
	tenantHandlers := handlers.NewTenantHandlers(tenantRepo, featureFlagRepo, vaultSvc)
	memberHandlers := handlers.NewMemberHandlers(membershipRepo, assignmentRepo, userRepo)
	customRoleHandlers := handlers.NewCustomRoleHandlers(customRoleRepo, membershipRepo)
	adminHandlers := handlers.NewAdminHandlers(authSvc, userRepo, tenantRepo)

	// Background jobs
	scheduler, err := background.NewJobScheduler(userRepo, notifierSvc, logger)
	if err != nil {
		logger.Fatal("Failed to create job scheduler", zap.Error(err))
	}
	scheduler.Start()

	e := echo.New()
	e.HideBanner = true

	// Global middleware
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Health endpoints (no tenant context required)
	e.GET("/health", handlers.HealthCheck)
	e.GET("/health/ready", handlers.ReadinessCheck(pool))

	v1 := e.Group("/v1")
	v1.Use(versionMiddleware.VersionHeader("v1"))

	// Signup, login and refresh run before any tenant is resolved.
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	// Everything else flows through the pipeline.
	protected := v1.Group("", jwtMiddleware, pipeline.Middleware(), audit.AuditRequest())

	protected.GET("/me", authHandlers.Me)

	protected.GET("/tenant", tenantHandlers.GetTenant)
	protected.PUT("/tenant", tenantHandlers.UpdateTenant, rbac.RequirePermission(common.PermManageSettings))
	protected.PUT("/tenant/credentials", tenantHandlers.SetCredentials, rbac.RequirePermission(common.PermManageSettings))
	protected.GET("/tenant/features", tenantHandlers.ListFeatures, rbac.RequirePermission(common.PermManageSettings))
	protected.PUT("/tenant/features", tenantHandlers.SetFeature, rbac.RequirePermission(common.PermManageFeatures))
	protected.POST("/tenant/archive", tenantHandlers.ArchiveTenant, rbac.RequirePlatformAdmin())
	protected.POST("/tenant/restore", tenantHandlers.RestoreTenant, rbac.RequirePlatformAdmin())

	protected.GET("/members", memberHandlers.ListMembers, rbac.RequirePermission(common.PermViewMembers))
	protected.POST("/members", memberHandlers.AddMember, rbac.RequirePermission(common.PermManageMembers))
	protected.DELETE("/members/:id", memberHandlers.RemoveMember, rbac.RequirePermission(common.PermManageMembers))
	protected.POST("/members/:id/roles", memberHandlers.AssignRole, rbac.RequirePermission(common.PermManageRoles))
	protected.DELETE("/members/:id/roles/:assignmentId", memberHandlers.RevokeRole, rbac.RequirePermission(common.PermManageRoles))

	customRoles := protected.Group("/custom-roles", rbac.RequirePermission(common.PermManageRoles), middleware.RequireFeature("custom_roles"))
	customRoles.GET("", customRoleHandlers.ListCustomRoles)
	customRoles.POST("", customRoleHandlers.CreateCustomRole)
	customRoles.PUT("/:id", customRoleHandlers.UpdateCustomRole)
	customRoles.DELETE("/:id", customRoleHandlers.DeleteCustomRole)
	customRoles.POST("/:id/memberships/:membershipId", customRoleHandlers.AttachCustomRole)
	customRoles.DELETE("/:id/memberships/:membershipId", customRoleHandlers.DetachCustomRole)

	admin := protected.Group("/admin", rbac.RequirePlatformAdmin())
	admin.POST("/impersonate", adminHandlers.Impersonate)
	admin.GET("/tenants", adminHandlers.ListTenants)

	// Serve until signalled, then drain detached tasks before exit.
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("studiokit server starting", zap.String("version", version), zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown failed", zap.Error(err))
	}
	if err := scheduler.Stop(); err != nil {
		logger.Warn("scheduler shutdown failed", zap.Error(err))
	}
	if err := tasks.Wait(shutdownCtx); err != nil {
		logger.Warn("detached tasks did not drain before shutdown", zap.Error(err))
	}
}
