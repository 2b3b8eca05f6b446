package http

import (
	"net/http"

	"opsboard/internal/finance"
)

// handleDashboard serves the filtered finance view for ?range=&status=&urgency=&type=.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filters := finance.Filters{
		Status:  queryFilter(r, "status"),
		Urgency: queryFilter(r, "urgency"),
		Type:    queryFilter(r, "type"),
	}
	res, err := s.finance.Dashboard(r.Context(), r.URL.Query().Get("range"), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCube(w http.ResponseWriter, r *http.Request) {
	summary, err := s.finance.Cube(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
