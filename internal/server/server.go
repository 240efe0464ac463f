package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"beststore/internal/catalog"
	"beststore/internal/clock"
	"beststore/internal/config"
	"beststore/internal/database"
	"beststore/internal/events"
	custommiddleware "beststore/internal/middleware"
	"beststore/internal/repository"
	"beststore/internal/service"
	"beststore/internal/storage"
	"beststore/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "beststore:ratelimit"

type Server struct {
	*http.Server
	config      *config.Config
	logger      *zap.Logger
	db          database.Service
	redis       *redis.Client
	publisher   events.Publisher
	userService service.UserService
}

// NewServer wires repositories, services and handlers onto one router
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) (*Server, error) {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	images, err := storage.NewLocalImageStore(cfg.Storage.ImageDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open image store: %w", err)
	}
	router.Handle(transport.ImagePathPrefix+"*",
		http.StripPrefix(strings.TrimSuffix(transport.ImagePathPrefix, "/"), images.Handler()))

	// Repositories
	userRepo := repository.NewUserRepository(db.DB())
	refreshTokenRepo := repository.NewRefreshTokenRepository(db.DB())
	resetRepo := repository.NewPasswordResetRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	publisher := events.NewPublisher(cfg.Kafka, logger)
	clk := clock.NewRealClock()

	// Services
	userService := service.NewUserService(
		userRepo,
		refreshTokenRepo,
		resetRepo,
		service.NewBcryptHasher(),
		service.NewLogMailer(logger),
		clk,
		service.TokenConfig{
			Secret:          cfg.JWT.Secret,
			AccessTokenTTL:  time.Duration(cfg.JWT.AccessExpiry) * time.Minute,
			RefreshTokenTTL: time.Duration(cfg.JWT.RefreshExpiry) * 24 * time.Hour,
			ResetURL:        cfg.Server.BaseURL + "/reset-password",
		},
		logger,
	)
	productService := service.NewProductService(productRepo, images, publisher, clk, logger)
	storeService := service.NewStoreService(productRepo)
	listings := catalog.NewService(productRepo, logger,
		catalog.PublicView(cfg.Catalog.PublicPageSize, cfg.Catalog.LegacyNameFilters),
		catalog.AdminView(cfg.Catalog.AdminPageSize),
	)

	authMiddleware := custommiddleware.AuthMiddleware(userService, logger)

	var redisClient *redis.Client
	var rateLimit func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rateLimit = custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.RequestsPerWindow,
			Window:            time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
			KeyPrefix:         rateLimitKeyPrefix,
		}, logger)
	}

	// Handlers
	transport.NewUserHandler(userService, logger).RegisterRoutes(router, authMiddleware, rateLimit)
	transport.NewStoreHandler(listings, storeService, logger).RegisterRoutes(router)
	transport.NewAdminProductHandler(listings, productService, int64(cfg.Storage.MaxUploadMB)<<20, logger).
		RegisterRoutes(router, authMiddleware)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:      cfg,
		logger:      logger,
		db:          db,
		redis:       redisClient,
		publisher:   publisher,
		userService: userService,
	}

	return server, nil
}

// EnsureAdmin creates the configured administrator account if it is missing
func (s *Server) EnsureAdmin(ctx context.Context) error {
	if s.config.Admin.Email == "" || s.config.Admin.Password == "" {
		return nil
	}
	return s.userService.EnsureAdmin(ctx, s.config.Admin.Email, s.config.Admin.Password)
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if err := s.publisher.Close(); err != nil {
		s.logger.Error("Failed to close event publisher", zap.Error(err))
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
