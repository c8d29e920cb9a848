package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"peajes/app"
	"peajes/internal"
)

// Server is the dashboard's HTTP surface: the JSON API, rendered charts and
// the artifact files themselves.
type Server struct {
	router     *gin.Engine
	dispatcher *app.Dispatcher
	artifacts  http.Handler
	logger     *internal.Logger
}

// NewServer creates a server whose artifact routes serve artifactsDir. A nil
// logger uses internal.DefaultLogger.
func NewServer(dispatcher *app.Dispatcher, artifactsDir string, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &Server{
		router:     gin.New(),
		dispatcher: dispatcher,
		artifacts:  NewArtifactHandler(artifactsDir),
		logger:     logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)

	// Dashboard views
	s.router.GET("/api/views", s.handleViews)
	s.router.GET("/api/views/:view/current", s.handleCurrentView)
	s.router.GET("/api/eda", s.handleEDA)
	s.router.GET("/api/models/summary", s.handleModelsSummary)
	s.router.GET("/api/trafico/summary", s.handleTrafficSummary)
	s.router.GET("/api/trafico/sample.csv", s.handleTrafficSample)
	s.router.GET("/api/peajes", s.handleStations)
	s.router.GET("/api/peajes/:peaje/model", s.handleStationModel)

	// Rendered charts
	s.router.GET("/charts/:file", s.handleChart)

	// Precomputed artifacts, same origin
	s.router.GET("/artifacts/*path", gin.WrapH(http.StripPrefix("/artifacts", s.artifacts)))
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("[Server] Starting peajes dashboard on http://%s", addr)
	return s.router.Run(addr)
}
