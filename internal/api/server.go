package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalogsync/internal/api/handlers"
	"catalogsync/internal/api/middleware"
	"catalogsync/internal/config"
	"catalogsync/internal/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	store  *handlers.CatalogStore
	router *gin.Engine
	server *http.Server
}

// New builds the preview server for the artifact at artifactPath.
func New(cfg *config.Config, logger *logger.Logger, artifactPath string) *Server {
	// Set Gin mode
	if cfg.Square.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	store := handlers.NewCatalogStore(artifactPath)
	catalogHandler := handlers.NewCatalogHandler(store, logger)

	router.GET("/healthz", catalogHandler.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/catalog", catalogHandler.Catalog)

		products := v1.Group("/products")
		{
			products.GET("", catalogHandler.List)
			products.GET("/:id", catalogHandler.Get)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		store:  store,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.API.Host, s.config.API.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("serving %s on %s", s.store.Path(), addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
