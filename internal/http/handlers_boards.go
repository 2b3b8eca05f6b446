package http

import (
	"fmt"
	"net/http"
	"strings"

	"opsboard/internal/boards"
)

func (s *Server) board(w http.ResponseWriter, r *http.Request) (*boards.Board, bool) {
	b, err := s.boards.Configure(r.Context(), r.PathValue("board"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return b, true
}

// handleBoardRows lists an entity and renders it through the board view.
// The entity defaults to the board name.
func (s *Server) handleBoardRows(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	entity := strings.TrimSpace(r.URL.Query().Get("entity"))
	if entity == "" {
		entity = r.PathValue("board")
	}

	coll, err := s.store.Collection(entity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	records, err := coll.List(r.Context())
	if err != nil {
		writeError(w, r, fmt.Errorf("list %s: %w", entity, err))
		return
	}
	writeJSON(w, http.StatusOK, b.Rows(records))
}

func (s *Server) handleBoardView(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleApplySort(w http.ResponseWriter, r *http.Request) {
	var spec boards.SortSpec
	if err := decodeJSON(w, r, &spec); err != nil {
		writeError(w, r, err)
		return
	}
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	if err := b.ApplySort(r.Context(), spec); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleToggleSort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Column string `json:"column"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	if _, err := b.ToggleSort(r.Context(), body.Column); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleClearSort(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	if err := b.ClearSort(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleApplyFilters(w http.ResponseWriter, r *http.Request) {
	var specs []boards.FilterSpec
	if err := decodeJSON(w, r, &specs); err != nil {
		writeError(w, r, err)
		return
	}
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	if err := b.ApplyFilters(r.Context(), specs); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}

func (s *Server) handleClearFilters(w http.ResponseWriter, r *http.Request) {
	b, ok := s.board(w, r)
	if !ok {
		return
	}
	if err := b.ClearFilters(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b.View())
}
