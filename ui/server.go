package ui

import (
	"github.com/gin-gonic/gin"

	"gosynth/app"
	"gosynth/internal"
)

// Server exposes the synthesis services over HTTP
type Server struct {
	router    *gin.Engine
	synthesis *app.SynthesisService
	quality   *app.QualityService
	logger    *internal.Logger
}

// NewServer creates a new web server instance
func NewServer(synthesis *app.SynthesisService, quality *app.QualityService, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:    gin.Default(),
		synthesis: synthesis,
		quality:   quality,
		logger:    logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	api.POST("/patterns", s.handleLearnPatterns)
	api.GET("/patterns", s.handleListPatternSets)
	api.GET("/patterns/:id", s.handleGetPatternSet)
	api.DELETE("/patterns/:id", s.handleDeletePatternSet)
	api.POST("/synthesize", s.handleSynthesize)
	api.POST("/pseudonymize", s.handlePseudonymize)
	api.POST("/quality", s.handleQuality)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting synthesis API on http://%s", addr)
	return s.router.Run(addr)
}

// Router exposes the underlying engine
func (s *Server) Router() *gin.Engine {
	return s.router
}
