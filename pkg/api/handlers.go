package api

import (
	"net/http"
	"time"

	"github.com/vrypan/bsearch/pkg/search"
	"github.com/vrypan/bsearch/pkg/version"
)

// HandleSearch answers GET /api/search. An empty q lists documents
// passing the facet filters (browse mode); a non-empty q runs a ranked
// prefix query.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	session := s.controller.Session()
	if session == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Index not loaded", s.controller.StatusLine())
		return
	}

	params := search.ParseParams(r.URL.Query())
	var results search.Results
	if params.Blank() {
		results = session.Browse(params)
	} else {
		results = session.Query(params)
	}

	s.writeJSON(w, http.StatusOK, s.searchResponse(results))
}

// HandleFacets answers GET /api/facets with the filterable dimensions of
// the loaded index.
func (s *Server) HandleFacets(w http.ResponseWriter, r *http.Request) {
	session := s.controller.Session()
	if session == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Index not loaded", s.controller.StatusLine())
		return
	}

	facets := session.Facets()
	s.writeJSON(w, http.StatusOK, FacetsResponse{
		Languages: session.Languages(),
		Types:     facets.Types,
		Tags:      facets.Tags,
		Years:     facets.Years,
	})
}

// HandleHealth answers GET /health. The service reports healthy even in
// the unavailable state: a missing index is a degraded feature, not a
// dead process.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   version.APIVersion(),
	}
	if session := s.controller.Session(); session != nil {
		response.Documents = session.Documents()
	}
	s.writeJSON(w, http.StatusOK, response)
}
