// Package api exposes the operational HTTP surface: liveness and Prometheus.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Pinger is any dependency whose reachability gates /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	log    *logrus.Entry
	router *gin.Engine
	checks map[string]Pinger
	srv    *http.Server
}

func NewServer(addr string, gatherer prometheus.Gatherer, checks map[string]Pinger, log *logrus.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		log:    log.WithField("component", "http"),
		router: gin.New(),
		checks: checks,
	}
	r := s.router
	r.Use(gin.Recovery())
	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := gin.H{}
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			deps[name] = err.Error()
			continue
		}
		deps[name] = "ok"
	}
	c.JSON(status, gin.H{"ok": status == http.StatusOK, "deps": deps})
}

// ListenAndServe blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) ListenAndServe() error {
	s.log.WithField("addr", s.srv.Addr).Info("🌐 http listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
