package server

import (
	"net/http"

	"vanish-go/cmd/web"
)

// Page Handlers
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := web.Files.ReadFile("assets/index.html")
	if err != nil {
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(page); err != nil {
		return
	}
}

// API Handlers
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.sendJSON(w, http.StatusOK, true, "Health check successful", map[string]string{"status": "up"})
		return
	}
	health := s.db.Health(r.Context())
	s.sendJSON(w, http.StatusOK, true, "Health check successful", health)
}

// Error Handlers
func (s *Server) handleError404(w http.ResponseWriter, r *http.Request) {
	http.NotFound(w, r)
}
