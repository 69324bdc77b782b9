package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/cubescout/internal/web/handlers"
	"github.com/kozaktomas/cubescout/internal/web/static"
)

func (s *Server) setupRoutes() {
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/presence", s.status.Presence)
		r.Get("/stats", s.status.Stats)
		r.Get("/frame.jpg", s.status.Frame)
	})

	s.router.Get("/", s.serveIndex)
	s.router.Handle("/*", http.FileServer(static.GetFileSystem()))
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(static.Index())
}
