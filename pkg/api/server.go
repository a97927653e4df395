package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vrypan/bsearch/pkg/log"
	"github.com/vrypan/bsearch/pkg/realtime"
	"github.com/vrypan/bsearch/pkg/render"
	"github.com/vrypan/bsearch/pkg/search"
)

// Server exposes the search controller over HTTP: a JSON API plus the
// live WebSocket channel. Page rendering stays in the web layer; the
// Server only deals in JSON frames and pre-rendered result cards.
type Server struct {
	controller *search.Controller
	renderers  *render.Registry
	hub        *realtime.Hub
	debounce   time.Duration
	logger     *log.Logger
}

// NewServer wires the API around an existing controller. hub may be nil
// when no reload notifications are wanted (tests, one-shot tools).
func NewServer(controller *search.Controller, renderers *render.Registry, hub *realtime.Hub, debounce time.Duration) *Server {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	return &Server{
		controller: controller,
		renderers:  renderers,
		hub:        hub,
		debounce:   debounce,
		logger:     log.ForComponent("api"),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, errText, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   errText,
		Message: message,
	})
}

// CorsMiddleware allows cross-origin access to the API, matching the
// static site's ability to call it from any page.
func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
