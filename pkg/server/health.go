package server

import (
	"net/http"

	"github.com/getmockd/songbook/pkg/httputil"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Authors int    `json:"authors"`
	Songs   int    `json:"songs"`
	Uptime  int    `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		httputil.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	authors, songs := s.store.Counts()
	httputil.WriteOK(w, HealthResponse{
		Status:  "ok",
		Authors: authors,
		Songs:   songs,
		Uptime:  s.Uptime(),
	})
}
