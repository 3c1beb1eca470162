package main

import (
	"context"
	"log"
	"net/http"

	"sharebite/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sharebite/internal/auth"
	"sharebite/internal/cache"
	"sharebite/internal/config"
	"sharebite/internal/db"
	"sharebite/internal/handler"
	"sharebite/internal/metrics"
	"sharebite/internal/model"
	"sharebite/internal/projection"
	"sharebite/internal/repository"
	"sharebite/internal/router"
	"sharebite/internal/service"
)

// @title ShareBite API
// @version 1.0
// @description Food-donation marketplace API: donors post surplus-food listings, collectors and NGOs claim them.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Ngo{},
		&model.FoodListing{},
		&model.ClaimRecord{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	m := metrics.New()

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	ngoRepo := repository.NewNgoRepository(gormDB)
	listingRepo := repository.NewListingRepository(gormDB)
	claimRepo := repository.NewClaimRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Projection cache
	projCache := projection.New(cacheClient)

	// Services
	authService := service.NewAuthService(userRepo, ngoRepo, jwtService, tokenStore)
	listingService := service.NewListingService(listingRepo, claimRepo, userRepo, projCache, m)
	claimService := service.NewClaimService(listingRepo, claimRepo, userRepo, projCache, m)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	ngoHandler := handler.NewNgoHandler(authService)
	listingHandler := handler.NewListingHandler(listingService)
	claimHandler := handler.NewClaimHandler(claimService)
	notificationHandler := handler.NewNotificationHandler(projCache)
	seedHandler := handler.NewSeedHandler(userRepo, listingRepo)

	router.Register(
		e,
		cfg,
		jwtService,
		authService,
		authHandler,
		ngoHandler,
		listingHandler,
		claimHandler,
		notificationHandler,
		seedHandler,
	)

	// Expiry sweeper runs until shutdown.
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	sweeper := service.NewSweeper(listingRepo, cfg.SweepInterval, m)
	go sweeper.Run(sweepCtx)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
