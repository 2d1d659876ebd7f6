package web

import (
	"encoding/json"
	"net/http"

	"recordbook/internal/core"
	"recordbook/internal/logging"
)

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "OK"})
}

// handleListRecords returns records as JSON, newest first. Accepts
// optional search, skip and limit query parameters. When auto export is
// enabled a CSV/JSON snapshot of the full table is written server-side as
// a side effect of the read.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	skip := parseIntParam(r, "skip", core.DefaultSkip)
	limit := parseIntParam(r, "limit", core.DefaultLimit)

	records, err := s.service.Search(r.Context(), search, skip, limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.autoExport(r)

	writeJSON(w, r, http.StatusOK, records)
}

// handleCreateRecord creates a record from a JSON body and returns it
// with status 201.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var in core.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, r, &core.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	rec, err := s.service.Create(r.Context(), in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, rec)
}

// handleUpdateRecord applies a partial update from a JSON body and
// returns the refreshed record.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, r, core.ErrNotFound)
		return
	}

	var in core.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondError(w, r, &core.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	rec, err := s.service.Update(r.Context(), id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, rec)
}

// handleDeleteRecord removes a record and responds 204 on success.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		s.respondError(w, r, core.ErrNotFound)
		return
	}

	if err := s.service.Delete(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type searchRequest struct {
	Query string `json:"query"`
}

// handleSearchRecords returns the records matching a free-text query from
// a JSON body. A blank query returns the full set.
func (s *Server) handleSearchRecords(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, &core.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	records, err := s.service.Search(r.Context(), req.Query, core.DefaultSkip, core.DefaultLimit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, records)
}

// autoExport writes the full record set to the export directory when
// enabled. Failures are logged and never surfaced to the client.
func (s *Server) autoExport(r *http.Request) {
	if s.files == nil || (!s.cfg.Export.AutoCSV && !s.cfg.Export.AutoJSON) {
		return
	}

	log := logging.FromContext(r.Context())

	records, err := s.service.ExportAll(r.Context())
	if err != nil {
		log.Warn("auto export read failed", "error", err)
		return
	}

	if s.cfg.Export.AutoCSV {
		if path, err := s.files.ExportCSV(records); err != nil {
			log.Warn("csv auto export failed", "error", err)
		} else {
			log.Info("csv exported", "path", path, "records", len(records))
		}
	}
	if s.cfg.Export.AutoJSON {
		if path, err := s.files.ExportJSON(records); err != nil {
			log.Warn("json auto export failed", "error", err)
		} else {
			log.Info("json exported", "path", path, "records", len(records))
		}
	}
}
