package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"promocart/internal/api/handlers"
	"promocart/internal/api/middleware"
	"promocart/internal/config"
	"promocart/internal/database"
	"promocart/internal/logger"
	"promocart/internal/services/reconcile"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, service *reconcile.Service) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// Initialize handlers
	offerHandler := handlers.NewOfferHandler(db.DB, logger, service)
	cartHandler := handlers.NewCartHandler(service, logger)
	claimHandler := handlers.NewClaimHandler(db.DB, logger)
	runHandler := handlers.NewRunHandler(db.DB, logger)
	healthHandler := handlers.NewHealthHandler(db.DB)

	router.GET("/healthz", healthHandler.Check)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Offers
		offerRoutes := v1.Group("/offers")
		{
			offerRoutes.GET("", offerHandler.List)
			offerRoutes.GET("/:id", offerHandler.Get)
			offerRoutes.POST("", offerHandler.Create)
			offerRoutes.POST("/import", offerHandler.Import)
			offerRoutes.PUT("/:id", offerHandler.Update)
			offerRoutes.DELETE("/:id", offerHandler.Delete)
			offerRoutes.POST("/:id/availability", offerHandler.RefreshAvailability)
		}

		// Carts
		carts := v1.Group("/carts")
		{
			carts.POST("/reconcile", cartHandler.Reconcile)
			carts.POST("/reconcile/page", cartHandler.ReconcilePage)
		}

		// Claims
		claims := v1.Group("/claims")
		{
			claims.GET("", claimHandler.List)
			claims.POST("", claimHandler.Create)
		}

		// Reconciliation history
		v1.GET("/runs", runHandler.List)
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine, e.g. for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
