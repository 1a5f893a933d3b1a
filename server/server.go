// Package server hosts the viewer surfaces: home, viewer, sandboxed frame,
// error page and the JSON command channel.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meshbrowse/daemon"
	"meshbrowse/httpserver"
	"meshbrowse/logger"
	"meshbrowse/navigation"
	"meshbrowse/render"
	"meshbrowse/store"
)

// StatusView is the daemon status owner. *daemon.Poller implements it.
type StatusView interface {
	daemon.StatusSource
	Snapshot() daemon.Status
}

// Options wires a Server.
type Options struct {
	Status     StatusView
	Retriever  navigation.Retriever
	Backend    store.Backend
	SessionTTL time.Duration
	// RewriteLinks routes ctt:// anchors inside HTML content back through /open.
	RewriteLinks bool
	// Registry collects metrics for /metrics. Nil creates a private one.
	Registry *prometheus.Registry
	Log      logger.Logger
}

// Server is the viewer HTTP server.
type Server struct {
	status       StatusView
	retriever    navigation.Retriever
	backend      store.Backend
	rewriteLinks bool
	log          logger.Logger

	sessions *sessions
	surfaces *render.Registry
	metrics  *metrics
	registry *prometheus.Registry
	engine   *gin.Engine
}

// New builds the server and its routes.
func New(o Options) *Server {
	if o.Log == nil {
		o.Log = logger.NewNop()
	}
	if o.Registry == nil {
		o.Registry = prometheus.NewRegistry()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = 12 * time.Hour
	}
	s := &Server{
		status:       o.Status,
		retriever:    o.Retriever,
		backend:      o.Backend,
		rewriteLinks: o.RewriteLinks,
		log:          o.Log,
		surfaces:     render.NewRegistry(),
		metrics:      newMetrics(o.Registry),
		registry:     o.Registry,
	}
	s.sessions = newSessions(o.SessionTTL, s.newSession)
	s.sessions.onEvict = s.surfaces.Release
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled or a shutdown signal arrives.
func (s *Server) Run(ctx context.Context, addr string) error {
	return httpserver.New("viewer", addr, s.engine, s.log).Run(ctx)
}

func (s *Server) routes() *gin.Engine {
	r := httpserver.NewEngine(s.log)
	r.SetHTMLTemplate(pages)

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	// frame content is addressed by unguessable tokens, not by session
	r.GET("/surface/:token", s.surface)
	r.GET("/surface/:token/download", s.download)
	r.GET("/error", s.errorPage)

	ui := r.Group("/", s.session)
	ui.GET("/", s.home)
	ui.GET("/open", s.open)
	ui.POST("/nav/:action", s.nav)
	ui.GET("/view", s.view)
	ui.POST("/api/command", s.command)
	return r
}
