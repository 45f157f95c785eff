package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"inkthread/internal/canvas"
	"inkthread/internal/config"
	custommiddleware "inkthread/internal/middleware"
	"inkthread/internal/repository"
	"inkthread/internal/service"
	"inkthread/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db *sql.DB) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.Env == "development"))

	// Redis-backed rate limiting across the whole API
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: 300,
		Window:            time.Minute,
		KeyPrefix:         "ratelimit",
	}, logger))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Fetch garment mockups before taking traffic; rendering falls back to
	// solid fills for any variant that failed to load.
	mockupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	mockups := canvas.LoadMockups(mockupCtx, http.DefaultClient, cfg.Mockup.BaseURL, cfg.Mockup.Colors, logger)
	renderer := canvas.NewRenderer(mockups)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	designRepo := repository.NewDesignRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Initialize services
	userService := service.NewUserService(userRepo, refreshTokenRepo, cfg.JWT.Secret)
	catalogService := service.NewCatalogService(productRepo, categoryRepo)
	studioService := service.NewStudioService(productRepo, designRepo, cartRepo, renderer)
	cartService := service.NewCartService(cartRepo, productRepo)
	orderService := service.NewOrderService(orderRepo, cartRepo)

	// Initialize handlers
	userHandler := transport.NewUserHandler(userService, logger)
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	studioHandler := transport.NewStudioHandler(studioService, logger)
	cartHandler := transport.NewCartHandler(cartService, logger)
	orderHandler := transport.NewOrderHandler(orderService, logger)

	// Create auth middleware
	authMiddleware := custommiddleware.AuthMiddleware(cfg.JWT.Secret, logger)
	adminMiddleware := custommiddleware.RequireAdmin(logger)

	// Register routes
	userHandler.RegisterRoutes(router, authMiddleware)
	catalogHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)
	studioHandler.RegisterRoutes(router, authMiddleware)
	cartHandler.RegisterRoutes(router, authMiddleware)
	orderHandler.RegisterRoutes(router, authMiddleware, adminMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	// Close redis connection
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
