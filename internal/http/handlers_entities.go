package http

import (
	"fmt"
	"net/http"

	"opsboard/internal/core"
	"opsboard/internal/log"
	"opsboard/internal/ports"
)

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (ports.Collection, bool) {
	coll, err := s.store.Collection(r.PathValue("entity"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return coll, true
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.collection(w, r)
	if !ok {
		return
	}
	records, err := coll.List(r.Context())
	if err != nil {
		writeError(w, r, fmt.Errorf("list %s: %w", r.PathValue("entity"), err))
		return
	}
	if records == nil {
		records = []core.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.collection(w, r)
	if !ok {
		return
	}
	rec, err := coll.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.collection(w, r)
	if !ok {
		return
	}
	var fields core.Record
	if err := decodeJSON(w, r, &fields); err != nil {
		writeError(w, r, err)
		return
	}
	delete(fields, core.FieldID)

	created, err := coll.Create(r.Context(), fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Record created",
		log.NewFields().WithRecord(r.PathValue("entity"), created.ID()).WithOperation(log.OpCreate).ToSlice()...)
	writeJSON(w, http.StatusCreated, created)
}

// handleUpdateRecord routes every update through the automation service so
// status transitions can fire their rules. A failed side effect still
// answers 200: the primary update is committed and the failure travels as an
// error notification.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	entity, id := r.PathValue("entity"), r.PathValue("id")
	var payload core.Record
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	delete(payload, core.FieldID)

	out, err := s.automation.Update(r.Context(), entity, id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	coll, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := coll.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Record deleted",
		log.NewFields().WithRecord(r.PathValue("entity"), id).WithOperation(log.OpDelete).ToSlice()...)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.automation.Rules())
}
