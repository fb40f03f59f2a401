// Package server exposes the suggestion engine over HTTP. The API is
// advisory by default: /suggest never runs anything, and /execute only
// runs a tool the caller explicitly confirmed.
package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/executor"
	"eda-copilot/internal/history"
	"eda-copilot/internal/intent"
	"eda-copilot/internal/registry"
)

// ContextStore remembers conversation context between turns. A nil
// store disables carry-over; every query then stands alone.
type ContextStore interface {
	Load(ctx context.Context, sessionID string) (intent.ConversationContext, error)
	Save(ctx context.Context, sessionID string, cc intent.ConversationContext) error
}

// HistoryStore records answered queries. A nil store disables history.
type HistoryStore interface {
	Insert(ctx context.Context, rec history.Record) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]history.Record, error)
}

// Server wires the engine, registry, and optional stores into handlers.
type Server struct {
	engine      *intent.Engine
	reg         *registry.Registry
	contexts    ContextStore
	histories   HistoryStore
	runner      executor.Runner
	execTimeout time.Duration
	dryRunOnly  bool
	log         logger.Logger
}

// Options carries the optional collaborators.
type Options struct {
	Contexts    ContextStore
	Histories   HistoryStore
	Runner      executor.Runner
	ExecTimeout time.Duration
	DryRunOnly  bool
}

// New assembles a server.
func New(engine *intent.Engine, reg *registry.Registry, log logger.Logger, opts Options) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	if opts.ExecTimeout <= 0 {
		opts.ExecTimeout = 5 * time.Minute
	}
	return &Server{
		engine:      engine,
		reg:         reg,
		contexts:    opts.Contexts,
		histories:   opts.Histories,
		runner:      opts.Runner,
		execTimeout: opts.ExecTimeout,
		dryRunOnly:  opts.DryRunOnly,
		log:         log,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		api.POST("/suggest", s.handleSuggest)
		api.POST("/execute", s.handleExecute)
		api.GET("/tools", s.handleTools)
		api.GET("/history", s.handleHistory)
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok", "tools": s.reg.Len()})
}
