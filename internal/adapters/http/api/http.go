// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/okian/swatch/internal/domain/analysis"
	"github.com/okian/swatch/internal/domain/garment"
	"github.com/okian/swatch/internal/domain/model"
	"github.com/okian/swatch/pkg/logger"
	"github.com/okian/swatch/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Classify(ctx context.Context, req analysis.Request) (analysis.Classification, error)
	ScoreGarment(ctx context.Context, req garment.Request) model.GarmentColorScore
	ScoreBatch(ctx context.Context, reqs []garment.Request) ([]model.GarmentColorScore, error)
	Palette(name string) (garment.Palette, error)
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	classifyHandler *ClassifyHandler
	garmentHandler  *GarmentHandler
	paletteHandler  *PaletteHandler

	maxBodyBytes int64
	metrics      *metrics.Manager
	logger       logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMetrics sets the metrics manager used by the middleware.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Server) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, version string, opts ...Option) *Server {
	s := &Server{
		healthHandler:   NewHealthHandler(version),
		statsHandler:    NewStatsHandler(deps),
		classifyHandler: NewClassifyHandler(deps),
		garmentHandler:  NewGarmentHandler(deps),
		paletteHandler:  NewPaletteHandler(deps),
		maxBodyBytes:    16 << 20,
		metrics:         metrics.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}
	return s
}

// Router builds a gin engine with the middleware chain and every route.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = s.maxBodyBytes
	router.Use(
		RequestIDMiddleware(),
		LoggerMiddleware(s.logger),
		MetricsMiddleware(s.metrics),
		gin.Recovery(),
	)
	s.Register(router)
	return router
}

// Register attaches all HTTP routes to router.
func (s *Server) Register(router gin.IRouter) {
	router.GET("/healthz", s.healthHandler.HandleHealth)
	router.GET("/metrics", s.healthHandler.HandleMetrics)
	router.GET("/stats", s.statsHandler.HandleStats)

	v1 := router.Group("/v1", BodyLimitMiddleware(s.maxBodyBytes))
	v1.POST("/classify", s.classifyHandler.HandleClassify)
	v1.POST("/garments/score", s.garmentHandler.HandleScore)
	v1.POST("/garments/score/batch", s.garmentHandler.HandleBatch)
	v1.GET("/palettes", s.paletteHandler.HandleList)
	v1.GET("/palettes/:season", s.paletteHandler.HandleGet)
}
